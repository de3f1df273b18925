// Package observability defines the Prometheus metrics for the bridge.
// Metrics cover the full event lifecycle: intake → dedup → pending → reply →
// ledger write, plus the fire-and-forget notification path.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Intake Metrics ─────────────────────────────────────────────────────────

// EventsReceived counts inbound amount events by result
// (accepted, duplicate, invalid).
var EventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "nota",
	Subsystem: "intake",
	Name:      "events_received_total",
	Help:      "Total inbound amount events by result.",
}, []string{"result"})

// DuplicatesSuppressed counts events dropped by the dedup window.
var DuplicatesSuppressed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "nota",
	Subsystem: "intake",
	Name:      "duplicates_suppressed_total",
	Help:      "Total events suppressed as window duplicates.",
})

// ─── Pending Store Metrics ──────────────────────────────────────────────────

// PendingDepth tracks the current number of unconfirmed transactions.
var PendingDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "nota",
	Subsystem: "pending",
	Name:      "depth",
	Help:      "Current number of pending transactions awaiting a reply.",
})

// PendingExpired counts entries dropped by the TTL sweep.
var PendingExpired = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "nota",
	Subsystem: "pending",
	Name:      "expired_total",
	Help:      "Total pending transactions expired before a reply arrived.",
})

// ─── Reply Metrics ──────────────────────────────────────────────────────────

// Replies counts inbound chat replies by result
// (resolved, nothing_pending, unauthorized, ledger_error).
var Replies = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "nota",
	Subsystem: "reply",
	Name:      "replies_total",
	Help:      "Total inbound replies by result.",
}, []string{"result"})

// ─── Collaborator Metrics ───────────────────────────────────────────────────

// LedgerWrites counts ledger create calls by backend and result.
var LedgerWrites = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "nota",
	Subsystem: "ledger",
	Name:      "writes_total",
	Help:      "Total ledger create operations by backend and result.",
}, []string{"backend", "result"})

// NotifyFailures counts chat notification sends that failed.
// Failures here are non-fatal: the pending entry stays resolvable.
var NotifyFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "nota",
	Subsystem: "chat",
	Name:      "notify_failures_total",
	Help:      "Total failed outbound chat notifications.",
})
