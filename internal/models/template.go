package models

import "github.com/google/uuid"

// Layer is the settlement tier an entry books against.
type Layer string

const (
	LayerSettled    Layer = "SETTLED"
	LayerPending    Layer = "PENDING"
	LayerEncumbered Layer = "ENCUMBERED"
)

// Direction is the side of a double-entry posting.
type Direction string

const (
	Debit  Direction = "DEBIT"
	Credit Direction = "CREDIT"
)

// TemplateEntry is one leg of a templated posting. The account and amount
// are expressions resolved against parameter bindings at posting time.
type TemplateEntry struct {
	EntryType string     `json:"entry_type"`
	AccountID Expression `json:"account_id"`
	Layer     Layer      `json:"layer"`
	Direction Direction  `json:"direction"`
	Amount    Expression `json:"amount"`
	Currency  string     `json:"currency"`
}

// TransactionClause carries the transaction-level expressions of a template:
// which journal to book into and the effective date of the posting.
type TransactionClause struct {
	JournalID Expression `json:"journal_id"`
	Effective Expression `json:"effective"`
}

// TxTemplate is a reusable, parameterized definition of a balanced
// multi-entry posting. Templates are immutable once built and are looked up
// by code at posting time.
type TxTemplate struct {
	ID          uuid.UUID         `json:"id"`
	Code        string            `json:"code"`
	Params      []ParamDefinition `json:"params"`
	Transaction TransactionClause `json:"transaction"`
	Entries     []TemplateEntry   `json:"entries"`
}

// ParamTypes returns the declared parameters as a lookup map.
func (t TxTemplate) ParamTypes() map[string]ParamType {
	m := make(map[string]ParamType, len(t.Params))
	for _, p := range t.Params {
		m[p.Name] = p.Type
	}
	return m
}
