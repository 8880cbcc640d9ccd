package models

import "github.com/google/uuid"

// Account is a bookable ledger account. Code is the human-readable lookup
// key; NormalBalanceType marks which side increases the account (customer
// accounts are credit-normal, the external assets account is debit-normal).
type Account struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Code              string    `json:"code"`
	NormalBalanceType Direction `json:"normal_balance_type"`
}

// Journal groups transactions; every posting books into exactly one journal.
type Journal struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
