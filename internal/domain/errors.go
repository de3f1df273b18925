package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Intake errors
	ErrInvalidAmount   = errors.New("amount must be a positive number")
	ErrDuplicateAmount = errors.New("duplicate amount within dedup window")

	// Reply errors
	ErrUnauthorizedSender = errors.New("reply from unauthorized sender")
	ErrNothingPending     = errors.New("no pending transaction to confirm")

	// Collaborator errors
	ErrLedgerUnavailable = errors.New("ledger collaborator unreachable")
	ErrMessengerDown     = errors.New("chat collaborator unreachable")
)
