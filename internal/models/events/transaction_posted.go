package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostedEntry is one leg of a posted transaction as carried on the event
// stream.
type PostedEntry struct {
	AccountID string          `json:"account_id"`
	EntryType string          `json:"entry_type"`
	Layer     string          `json:"layer"`
	Direction string          `json:"direction"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

// TransactionPosted is emitted after a templated posting commits.
type TransactionPosted struct {
	TransactionID string        `json:"transaction_id"`
	TemplateCode  string        `json:"template_code"`
	JournalID     string        `json:"journal_id"`
	Effective     time.Time     `json:"effective"`
	Entries       []PostedEntry `json:"entries"`
	OccurredAt    time.Time     `json:"occurred_at"`
}
