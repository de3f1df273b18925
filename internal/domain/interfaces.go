package domain

import "context"

// ─── Collaborator Interfaces ────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; the application layer depends on them.

// Messenger abstracts the outbound side of the chat collaborator.
// Sends are bounded, single-shot network calls: any retry policy belongs to
// the implementing adapter, never to the engine.
type Messenger interface {
	// Send delivers text to the configured chat. A failed send never
	// invalidates engine state.
	Send(ctx context.Context, text string) error
}

// Ledger abstracts the durable store of confirmed, classified transactions.
type Ledger interface {
	// Create persists an entry and returns an opaque record identifier.
	Create(ctx context.Context, entry LedgerEntry) (string, error)
}

// ReplyHandler consumes inbound chat messages. The telegram adapter feeds
// each received (sender, text) pair into it; the api package exposes the same
// path over HTTP for webhook-style providers.
type ReplyHandler interface {
	HandleReply(ctx context.Context, text, sender string) error
}
