package sqlite

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nota-bridge/nota/internal/domain"
)

// ─── Local Ledger ───────────────────────────────────────────────────────────

// Ledger implements domain.Ledger on the local database. Selected at startup
// when no remote ledger credentials are configured.
type Ledger struct {
	db *DB
}

// NewLedger creates a local ledger over an open database.
func NewLedger(db *DB) *Ledger {
	return &Ledger{db: db}
}

// Create inserts the entry and returns its row id as the opaque record id.
func (l *Ledger) Create(ctx context.Context, entry domain.LedgerEntry) (string, error) {
	res, err := l.db.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (name, amount, entry_date, category)
		VALUES (?, ?, ?, ?)
	`, entry.Name, entry.Amount.String(), entry.Date.Format(time.DateOnly), nullable(entry.Category))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

// List returns entries ordered oldest first.
func (l *Ledger) List(ctx context.Context) ([]domain.LedgerEntry, error) {
	rows, err := l.db.db.QueryContext(ctx, `
		SELECT name, amount, entry_date, COALESCE(category, '')
		FROM ledger_entries ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LedgerEntry
	for rows.Next() {
		var name, amount, date, category string
		if err := rows.Scan(&name, &amount, &date, &category); err != nil {
			return nil, err
		}
		a, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("stored amount %q: %w", amount, err)
		}
		d, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return nil, fmt.Errorf("stored date %q: %w", date, err)
		}
		out = append(out, domain.LedgerEntry{Name: name, Amount: a, Date: d, Category: category})
	}
	return out, rows.Err()
}

// ─── Archiving Wrapper ──────────────────────────────────────────────────────

// ArchivingLedger wraps a primary (remote) ledger and mirrors every
// successful write into the local archive table. Archive failures are
// swallowed: the remote write already succeeded and the confirmation must
// not be turned into a user-visible error.
type ArchivingLedger struct {
	primary domain.Ledger
	db      *DB
}

// NewArchiving wraps primary with local archiving.
func NewArchiving(primary domain.Ledger, db *DB) *ArchivingLedger {
	return &ArchivingLedger{primary: primary, db: db}
}

// Create writes to the primary ledger, then archives locally best-effort.
func (a *ArchivingLedger) Create(ctx context.Context, entry domain.LedgerEntry) (string, error) {
	recordID, err := a.primary.Create(ctx, entry)
	if err != nil {
		return "", err
	}

	if _, aerr := a.db.db.ExecContext(ctx, `
		INSERT INTO archive_entries (record_id, name, amount, entry_date, category)
		VALUES (?, ?, ?, ?, ?)
	`, recordID, entry.Name, entry.Amount.String(), entry.Date.Format(time.DateOnly), nullable(entry.Category)); aerr != nil {
		// Local mirror only; the entry is already durable remotely.
		log.Printf("sqlite: archive write failed for record %s: %v", recordID, aerr)
	}
	return recordID, nil
}

// ArchivedCount returns the number of archived entries.
func (a *ArchivingLedger) ArchivedCount(ctx context.Context) (int, error) {
	var n int
	err := a.db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM archive_entries`).Scan(&n)
	return n, err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
