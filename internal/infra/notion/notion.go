// Package notion adapts the ledger collaborator to the Notion pages API.
// Each confirmed transaction becomes a page in a configured database with
// Name (title), Amount (number), Date (date), and an optional Category
// relation. Writes are bounded, single-shot calls — no internal retries.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nota-bridge/nota/internal/domain"
)

const apiVersion = "2022-06-28"

// Config identifies the target database.
type Config struct {
	Token      string        // integration token
	DatabaseID string        // destination database
	CategoryID string        // optional related category page id
	BaseURL    string        // override for tests; default https://api.notion.com
	Timeout    time.Duration // per-request bound (default 15s)
}

// Ledger implements domain.Ledger against Notion.
type Ledger struct {
	cfg  Config
	http *http.Client
}

// New creates a Notion-backed ledger. Token and DatabaseID must be set.
func New(cfg Config) (*Ledger, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("notion: token is required")
	}
	if cfg.DatabaseID == "" {
		return nil, fmt.Errorf("notion: database_id is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.notion.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Ledger{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Create writes one page and returns its Notion page id.
func (l *Ledger) Create(ctx context.Context, entry domain.LedgerEntry) (string, error) {
	amount, _ := entry.Amount.Float64()
	properties := map[string]interface{}{
		"Name": map[string]interface{}{
			"title": []map[string]interface{}{
				{"text": map[string]interface{}{"content": entry.Name}},
			},
		},
		"Amount": map[string]interface{}{
			"number": amount,
		},
		"Date": map[string]interface{}{
			"date": map[string]interface{}{"start": entry.Date.Format(time.DateOnly)},
		},
	}

	category := entry.Category
	if category == "" {
		category = l.cfg.CategoryID
	}
	if category != "" {
		properties["Category"] = map[string]interface{}{
			"relation": []map[string]interface{}{{"id": category}},
		}
	}

	body, err := json.Marshal(map[string]interface{}{
		"parent":     map[string]interface{}{"database_id": l.cfg.DatabaseID},
		"properties": properties,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		l.cfg.BaseURL+"/v1/pages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+l.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", apiVersion)

	resp, err := l.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: create page returned %d", domain.ErrLedgerUnavailable, resp.StatusCode)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode create response: %w", err)
	}
	return created.ID, nil
}
