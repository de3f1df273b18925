// Package dedup suppresses repeated amount observations within a short
// trailing window. The sensor is known to sometimes re-deliver the same
// notification; exact-amount matching inside the window is a pragmatic
// heuristic for catching those repeats.
//
// Known limitation: two genuinely distinct transactions of identical amount
// inside one window are conflated — the second is dropped. State lives only
// in memory and resets on process restart.
package dedup

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultWindow is the trailing interval during which a repeated amount is
// treated as a re-delivery of the same event.
const DefaultWindow = 5000 * time.Millisecond

type entry struct {
	amount     decimal.Decimal
	insertedAt time.Time
}

// Deduplicator tracks recently observed amounts.
// Safe for concurrent use.
type Deduplicator struct {
	mu      sync.Mutex
	window  time.Duration
	entries []entry
}

// New creates a deduplicator with the given window.
// A non-positive window falls back to DefaultWindow.
func New(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Deduplicator{window: window}
}

// Observe records an observation and reports whether it is a duplicate of a
// live window entry. Entries older than the window are pruned first; a fresh
// amount is inserted, a duplicate is not.
func (d *Deduplicator) Observe(amount decimal.Decimal, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.prune(now)

	for _, e := range d.entries {
		// Equal is scale-insensitive: 50000 matches 50000.00.
		if e.amount.Equal(amount) {
			return true
		}
	}

	d.entries = append(d.entries, entry{amount: amount, insertedAt: now})
	return false
}

// Len returns the number of live window entries as of the last Observe.
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// prune drops entries whose age exceeds the window. Caller holds d.mu.
func (d *Deduplicator) prune(now time.Time) {
	live := d.entries[:0]
	for _, e := range d.entries {
		if now.Sub(e.insertedAt) <= d.window {
			live = append(live, e)
		}
	}
	// Nil out dropped tail slots so the backing array does not retain them.
	for i := len(live); i < len(d.entries); i++ {
		d.entries[i] = entry{}
	}
	d.entries = live
}
