// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ─── Observation Types ──────────────────────────────────────────────────────

// AmountObservation is a single raw amount event reported by the sensor.
// It is ephemeral: consumed immediately by the deduplicator, never stored.
type AmountObservation struct {
	Amount     decimal.Decimal `json:"amount"`
	ObservedAt time.Time       `json:"observed_at"`
}

// ─── Pending Transaction ────────────────────────────────────────────────────

// PendingTransaction is an amount observation awaiting human classification
// before it is committed to the ledger.
type PendingTransaction struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	ReceivedAt time.Time       `json:"received_at"`
}

// Age returns how long the transaction has been pending as of now.
func (p PendingTransaction) Age(now time.Time) time.Duration {
	return now.Sub(p.ReceivedAt)
}

// Expired reports whether the transaction has outlived ttl as of now.
func (p PendingTransaction) Expired(now time.Time, ttl time.Duration) bool {
	return p.Age(now) > ttl
}

// ─── Ledger Entry ───────────────────────────────────────────────────────────

// LedgerEntry is the terminal artifact of a resolved transaction. It is
// write-only from the core's perspective: handed to the ledger collaborator
// and never read back.
type LedgerEntry struct {
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Date     time.Time       `json:"date"`     // calendar date; time component ignored
	Category string          `json:"category"` // optional opaque reference
}

// Summary formats the entry for chat confirmation messages.
func (e LedgerEntry) Summary() string {
	return fmt.Sprintf("%s — %s on %s", e.Name, e.Amount.String(), e.Date.Format(time.DateOnly))
}

// ─── Status ─────────────────────────────────────────────────────────────────

// Status is the read-only operational snapshot served by the health endpoint.
type Status struct {
	OK           bool      `json:"ok"`
	CurrentTime  time.Time `json:"current_time"`
	PendingCount int       `json:"pending_count"`
}

// ─── Validation ─────────────────────────────────────────────────────────────

// ValidateAmount checks that an amount is usable as a transaction value.
// Zero and negative amounts are rejected.
func ValidateAmount(a decimal.Decimal) error {
	if a.Sign() <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, a.String())
	}
	return nil
}
