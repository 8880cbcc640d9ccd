package models

import "github.com/google/uuid"

// BalanceLimit caps cumulative movement in one direction at one layer. The
// threshold is an expression so a control attachment can bind it per
// account; the canonical overdraft limit uses a literal zero.
type BalanceLimit struct {
	Layer     Layer      `json:"layer"`
	Amount    Expression `json:"amount"`
	Direction Direction  `json:"enforcement_direction"`
}

// WindowClause is one clause of a rolling-window definition. An empty window
// list on a limit means the limit is evaluated against the running settled
// balance directly.
type WindowClause struct {
	Key   string     `json:"key"`
	Value Expression `json:"value"`
}

// VelocityLimit is a named set of balance limits, optionally windowed.
type VelocityLimit struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Window      []WindowClause `json:"window"`
	Limits      []BalanceLimit `json:"limits"`
}

// VelocityControl is a named bundle of velocity limits. Controls are
// attached to accounts; an attachment may carry its own parameter bindings.
type VelocityControl struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}
