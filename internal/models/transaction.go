package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry is one concrete leg of a posted transaction, with all template
// expressions resolved to values.
type Entry struct {
	ID            uuid.UUID       `json:"id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	EntryType     string          `json:"entry_type"`
	Layer         Layer           `json:"layer"`
	Direction     Direction       `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SignedAmount is the entry amount with credit-positive sign.
func (e Entry) SignedAmount() decimal.Decimal {
	if e.Direction == Debit {
		return e.Amount.Neg()
	}
	return e.Amount
}

// PostedTransaction is a durable transaction produced by posting bound
// parameter values against a registered template.
type PostedTransaction struct {
	ID           uuid.UUID `json:"id"`
	TemplateID   uuid.UUID `json:"template_id"`
	TemplateCode string    `json:"template_code"`
	JournalID    uuid.UUID `json:"journal_id"`
	Effective    time.Time `json:"effective"`
	Entries      []Entry   `json:"entries"`
	CreatedAt    time.Time `json:"created_at"`
}
