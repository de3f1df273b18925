// Package engine implements the transaction correlation workflow: it accepts
// fire-and-forget amount events from the sensor, holds each as a pending
// record, and resolves exactly one pending record per human reply into a
// durable ledger entry.
//
// Per-transaction states are Pending → Resolved or Pending → Expired; the
// engine itself is stateless request/response logic over the pending store.
// Resolution is strictly FIFO: a reply always classifies the oldest live
// entry, because content alone cannot identify which transaction the human
// means when several are pending.
package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nota-bridge/nota/internal/domain"
	"github.com/nota-bridge/nota/internal/infra/dedup"
	"github.com/nota-bridge/nota/internal/infra/observability"
	"github.com/nota-bridge/nota/internal/infra/pending"
)

// Config controls engine behavior.
type Config struct {
	AuthorizedSender string        // the single chat identity allowed to classify
	PendingTTL       time.Duration // max age of an unconfirmed transaction
	DedupWindow      time.Duration // trailing window for repeat suppression
	NotifyQueue      int           // buffered notification queue size (default 16)
	SendTimeout      time.Duration // per-send bound for chat messages (default 10s)
	LedgerBackend    string        // metrics label: "notion" or "sqlite"
}

// DefaultConfig returns engine defaults matching personal-scale use.
func DefaultConfig() Config {
	return Config{
		PendingTTL:  pending.DefaultTTL,
		DedupWindow: dedup.DefaultWindow,
		NotifyQueue: 16,
		SendTimeout: 10 * time.Second,
	}
}

// Engine is the correlation state machine. Construct once at startup and
// share between the event receiver and the reply handler; it owns the dedup
// window and pending store lifecycles. Neither survives a restart — pending
// and dedup state are silently dropped, a documented limitation.
type Engine struct {
	cfg       Config
	dedup     *dedup.Deduplicator
	store     *pending.Store
	messenger domain.Messenger
	ledger    domain.Ledger
	notifyCh  chan string
}

// New creates an engine wired to its collaborators.
func New(cfg Config, messenger domain.Messenger, ledger domain.Ledger) *Engine {
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = pending.DefaultTTL
	}
	if cfg.NotifyQueue <= 0 {
		cfg.NotifyQueue = 16
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	return &Engine{
		cfg:       cfg,
		dedup:     dedup.New(cfg.DedupWindow),
		store:     pending.NewStore(),
		messenger: messenger,
		ledger:    ledger,
		notifyCh:  make(chan string, cfg.NotifyQueue),
	}
}

// Run drains the notification queue until ctx is cancelled. Notification
// sends are an explicit asynchronous boundary: the event-accept path returns
// after the store mutation, and a failed send never invalidates the stored
// pending entry.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-e.notifyCh:
			sendCtx, cancel := context.WithTimeout(ctx, e.cfg.SendTimeout)
			if err := e.messenger.Send(sendCtx, text); err != nil {
				observability.NotifyFailures.Inc()
				log.Printf("engine: notification send failed (entry stays resolvable): %v", err)
			}
			cancel()
		}
	}
}

// ─── Amount Events ──────────────────────────────────────────────────────────

// HandleAmountEvent processes one sensor observation. Duplicates within the
// dedup window are dropped silently (log only, no store mutation, no
// notification). Fresh amounts become pending transactions, and a chat
// notification asking for classification is queued asynchronously.
func (e *Engine) HandleAmountEvent(ctx context.Context, amount decimal.Decimal, now time.Time) (string, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		observability.EventsReceived.WithLabelValues("invalid").Inc()
		return "", err
	}

	if e.dedup.Observe(amount, now) {
		observability.EventsReceived.WithLabelValues("duplicate").Inc()
		observability.DuplicatesSuppressed.Inc()
		log.Printf("engine: suppressed duplicate amount %s", amount.String())
		return "", domain.ErrDuplicateAmount
	}

	e.sweep(now)
	id := e.store.Put(amount, now)
	observability.EventsReceived.WithLabelValues("accepted").Inc()
	observability.PendingDepth.Set(float64(e.store.Size()))

	e.queueNotification(fmt.Sprintf(
		"New transaction detected: %s. Reply with a name to record it.",
		amount.String()))

	return id, nil
}

// ─── Replies ────────────────────────────────────────────────────────────────

// HandleReply resolves the oldest pending transaction with the given reply
// text as its ledger name. Unauthorized senders are ignored (logged, no
// response). An empty store yields a "nothing pending" chat message. On
// ledger-write failure the popped entry is NOT reinserted: the transaction is
// lost from the queue and the sender is told so. Restoring it would risk a
// duplicate ledger row when the create succeeded but the response was lost.
func (e *Engine) HandleReply(ctx context.Context, text, sender string) error {
	return e.handleReply(ctx, text, sender, time.Now())
}

func (e *Engine) handleReply(ctx context.Context, text, sender string, now time.Time) error {
	if sender != e.cfg.AuthorizedSender {
		observability.Replies.WithLabelValues("unauthorized").Inc()
		log.Printf("engine: ignored reply from unauthorized sender %q", sender)
		return domain.ErrUnauthorizedSender
	}

	e.sweep(now)

	tx, ok := e.store.PopOldest()
	observability.PendingDepth.Set(float64(e.store.Size()))
	if !ok {
		observability.Replies.WithLabelValues("nothing_pending").Inc()
		e.send(ctx, "No pending transaction to confirm.")
		return domain.ErrNothingPending
	}

	y, m, d := now.Date()
	entry := domain.LedgerEntry{
		Name:   text,
		Amount: tx.Amount,
		Date:   time.Date(y, m, d, 0, 0, 0, 0, now.Location()),
	}

	if _, err := e.ledger.Create(ctx, entry); err != nil {
		observability.Replies.WithLabelValues("ledger_error").Inc()
		observability.LedgerWrites.WithLabelValues(e.cfg.LedgerBackend, "error").Inc()
		log.Printf("engine: ledger write failed, pending entry %s dropped: %v", tx.ID, err)
		e.send(ctx, fmt.Sprintf("Failed to record %q (%s): ledger unavailable. The transaction was dropped.",
			text, tx.Amount.String()))
		return fmt.Errorf("create ledger entry: %w", err)
	}

	observability.Replies.WithLabelValues("resolved").Inc()
	observability.LedgerWrites.WithLabelValues(e.cfg.LedgerBackend, "ok").Inc()
	e.send(ctx, "Recorded: "+entry.Summary())
	return nil
}

// ─── Status ─────────────────────────────────────────────────────────────────

// Status reports the operational snapshot for the health endpoint.
func (e *Engine) Status(now time.Time) domain.Status {
	e.sweep(now)
	return domain.Status{
		OK:           true,
		CurrentTime:  now,
		PendingCount: e.store.Size(),
	}
}

// PendingCount returns the live pending entry count after a sweep.
func (e *Engine) PendingCount(now time.Time) int {
	e.sweep(now)
	return e.store.Size()
}

// ─── Internals ──────────────────────────────────────────────────────────────

// sweep lazily expires stale entries. Expiry is routine cleanup, never an
// error surfaced to the user.
func (e *Engine) sweep(now time.Time) {
	if n := e.store.SweepExpired(now, e.cfg.PendingTTL); n > 0 {
		observability.PendingExpired.Add(float64(n))
		observability.PendingDepth.Set(float64(e.store.Size()))
		log.Printf("engine: expired %d pending transaction(s)", n)
	}
}

// queueNotification hands text to the async dispatch loop without blocking
// the intake path. A full queue is treated like a failed send.
func (e *Engine) queueNotification(text string) {
	select {
	case e.notifyCh <- text:
	default:
		observability.NotifyFailures.Inc()
		log.Printf("engine: notification queue full, dropping message")
	}
}

// send delivers a reply-path message synchronously with a bounded timeout.
// Failures are logged only — chat delivery is best-effort.
func (e *Engine) send(ctx context.Context, text string) {
	sendCtx, cancel := context.WithTimeout(ctx, e.cfg.SendTimeout)
	defer cancel()
	if err := e.messenger.Send(sendCtx, text); err != nil {
		log.Printf("engine: send failed: %v", err)
	}
}
