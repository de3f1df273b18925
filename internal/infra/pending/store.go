// Package pending implements the time-expiring mailbox of unconfirmed
// transactions. Entries wait here between the sensor event and the human
// reply that classifies them.
//
// FIFO is a structural property: entries live in an explicit insertion-order
// queue alongside an id index, so oldest-first resolution never depends on
// map iteration order. State is process-lifetime only — a restart drops every
// pending entry.
package pending

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nota-bridge/nota/internal/domain"
)

// DefaultTTL is the maximum age a pending transaction may reach before the
// sweep treats it as expired.
const DefaultTTL = time.Hour

// Store holds pending transactions in insertion order.
// All operations are atomic with respect to each other.
type Store struct {
	mu    sync.Mutex
	queue []domain.PendingTransaction // oldest first
	index map[string]struct{}         // live ids
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		index: make(map[string]struct{}),
	}
}

// Put stores a new pending transaction and returns its generated id.
// Ids combine the receive timestamp with a UUID suffix so they stay unique
// and unguessable across the process lifetime.
func (s *Store) Put(amount decimal.Decimal, now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString())
	s.queue = append(s.queue, domain.PendingTransaction{
		ID:         id,
		Amount:     amount,
		ReceivedAt: now,
	})
	s.index[id] = struct{}{}
	return id
}

// PopOldest removes and returns the earliest-inserted live entry.
// The second return is false when the store is empty.
func (s *Store) PopOldest() (domain.PendingTransaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return domain.PendingTransaction{}, false
	}

	tx := s.queue[0]
	s.dropHead(1)
	delete(s.index, tx.ID)
	return tx, true
}

// Delete removes an entry by id if present.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; !ok {
		return
	}
	delete(s.index, id)
	for i, tx := range s.queue {
		if tx.ID == id {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}

// SweepExpired removes every entry older than ttl as of now and returns the
// number removed. Expiry is routine cleanup, not an error: callers invoke it
// lazily before reads instead of running a background timer.
func (s *Store) SweepExpired(now time.Time, ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Queue is insertion-ordered, so expired entries form a prefix.
	n := 0
	for n < len(s.queue) && s.queue[n].Expired(now, ttl) {
		delete(s.index, s.queue[n].ID)
		n++
	}
	if n > 0 {
		s.dropHead(n)
	}
	return n
}

// Size returns the count of live entries. Exposed for observability.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Snapshot returns a copy of the live entries, oldest first.
func (s *Store) Snapshot() []domain.PendingTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.PendingTransaction, len(s.queue))
	copy(out, s.queue)
	return out
}

// dropHead removes the first n queue slots, zeroing them so the backing
// array does not retain the popped entries. Caller holds s.mu.
func (s *Store) dropHead(n int) {
	copy(s.queue, s.queue[n:])
	tail := len(s.queue) - n
	for i := tail; i < len(s.queue); i++ {
		s.queue[i] = domain.PendingTransaction{}
	}
	s.queue = s.queue[:tail]
}
