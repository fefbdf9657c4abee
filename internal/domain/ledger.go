package domain

import "time"

// TransactionType tags gem ledger entries by the flow that produced them.
type TransactionType string

const (
	TransactionAvatar TransactionType = "avatar"
	TransactionVideo  TransactionType = "video"
)

// GemTransaction is an append-only ledger entry. The amount is negative for
// debits; the running balance lives on the user row and is adjusted in the
// same database transaction that appends the entry.
type GemTransaction struct {
	ID          string
	UserID      string
	Amount      int
	Type        TransactionType
	Description string
	ReferenceID string
	CreatedAt   time.Time
}

// AnalyticsEvent is fire-and-forget bookkeeping; it is never read back.
type AnalyticsEvent struct {
	ID         string
	UserID     string
	EventName  string
	Properties map[string]any
	CreatedAt  time.Time
}
