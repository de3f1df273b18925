// Package telegram adapts the chat collaborator to the Telegram Bot API.
// Outbound sends are single-shot calls with a bounded timeout; inbound
// replies arrive through getUpdates long polling. Retry policy, if any,
// belongs here at the adapter boundary — this implementation deliberately
// performs no retries.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/nota-bridge/nota/internal/domain"
)

// Config holds the bot credentials and the single authorized chat.
type Config struct {
	Token       string        // bot token from BotFather
	ChatID      string        // the one chat the bridge talks to
	BaseURL     string        // override for tests; default https://api.telegram.org
	PollTimeout time.Duration // long-poll timeout (default 30s)
}

// Client is a minimal Telegram Bot API client implementing domain.Messenger.
type Client struct {
	cfg    Config
	http   *http.Client
	offset int64 // next update id to request
}

// New creates a client. Token and ChatID must be set.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram: token is required")
	}
	if cfg.ChatID == "" {
		return nil, fmt.Errorf("telegram: chat_id is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.telegram.org"
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 30 * time.Second
	}
	return &Client{
		cfg: cfg,
		// Client timeout must outlast the long-poll hold.
		http: &http.Client{Timeout: cfg.PollTimeout + 15*time.Second},
	}, nil
}

// ─── Outbound ───────────────────────────────────────────────────────────────

// Send posts text to the configured chat.
func (c *Client) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(map[string]string{
		"chat_id": c.cfg.ChatID,
		"text":    text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.methodURL("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMessengerDown, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: sendMessage returned %d", domain.ErrMessengerDown, resp.StatusCode)
	}
	return nil
}

// ─── Inbound ────────────────────────────────────────────────────────────────

type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		From struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

type updatesResponse struct {
	OK     bool     `json:"ok"`
	Result []update `json:"result"`
}

// Poll long-polls getUpdates until ctx is cancelled, forwarding each text
// message to handler. Sender identity is the numeric chat id as a string;
// authorization against the configured identity happens in the engine.
func (c *Client) Poll(ctx context.Context, handler domain.ReplyHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := c.getUpdates(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("telegram: getUpdates failed, backing off: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= c.offset {
				c.offset = u.UpdateID + 1
			}
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			sender := strconv.FormatInt(u.Message.Chat.ID, 10)
			if err := handler.HandleReply(ctx, u.Message.Text, sender); err != nil {
				// Outcome sentinels (unauthorized, nothing pending) are
				// already logged and answered by the engine.
				log.Printf("telegram: reply handled with: %v", err)
			}
		}
	}
}

func (c *Client) getUpdates(ctx context.Context) ([]update, error) {
	url := fmt.Sprintf("%s?offset=%d&timeout=%d",
		c.methodURL("getUpdates"), c.offset, int(c.cfg.PollTimeout.Seconds()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("getUpdates returned %d", resp.StatusCode)
	}

	var parsed updatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("getUpdates reported not ok")
	}
	return parsed.Result, nil
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.cfg.BaseURL, c.cfg.Token, method)
}
