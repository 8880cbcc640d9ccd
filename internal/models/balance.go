package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceDetails breaks a balance down by side and layer. Balances are
// stored credit-positive: credits increase, debits decrease. A debit-normal
// account therefore shows a negative settled balance after inflows.
type BalanceDetails struct {
	JournalID  uuid.UUID       `json:"journal_id"`
	SubjectID  uuid.UUID       `json:"subject_id"` // account or account-set id
	Currency   string          `json:"currency"`
	DrBalance  decimal.Decimal `json:"dr_balance"`
	CrBalance  decimal.Decimal `json:"cr_balance"`
	PendingDr  decimal.Decimal `json:"pending_dr"`
	PendingCr  decimal.Decimal `json:"pending_cr"`
	EntryCount int             `json:"entry_count"`
}

// Balance is the result of a balance query. The same shape is returned for
// a single account and for an account set (the sum over current members).
type Balance struct {
	Details BalanceDetails `json:"details"`
}

// Settled is the net settled-layer balance, credit-positive.
func (b Balance) Settled() decimal.Decimal {
	return b.Details.CrBalance.Sub(b.Details.DrBalance)
}

// Pending is the net pending-layer balance, credit-positive.
func (b Balance) Pending() decimal.Decimal {
	return b.Details.PendingCr.Sub(b.Details.PendingDr)
}

// Add merges another balance into this one. Used when aggregating a set.
func (b Balance) Add(o Balance) Balance {
	b.Details.DrBalance = b.Details.DrBalance.Add(o.Details.DrBalance)
	b.Details.CrBalance = b.Details.CrBalance.Add(o.Details.CrBalance)
	b.Details.PendingDr = b.Details.PendingDr.Add(o.Details.PendingDr)
	b.Details.PendingCr = b.Details.PendingCr.Add(o.Details.PendingCr)
	b.Details.EntryCount += o.Details.EntryCount
	return b
}
