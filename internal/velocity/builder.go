package velocity

import (
	"github.com/google/uuid"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/models"
	"github.com/shopspring/decimal"
)

// LimitBuilder assembles a velocity limit. A limit needs a name and at
// least one balance limit; literal thresholds must be non-negative (zero
// models "never allow this direction at all").
type LimitBuilder struct {
	id          uuid.UUID
	name        string
	description string
	window      []models.WindowClause
	limits      []models.BalanceLimit
}

func NewLimitBuilder(name string) *LimitBuilder {
	return &LimitBuilder{id: uuid.New(), name: name}
}

func (b *LimitBuilder) ID(id uuid.UUID) *LimitBuilder {
	b.id = id
	return b
}

func (b *LimitBuilder) Description(d string) *LimitBuilder {
	b.description = d
	return b
}

func (b *LimitBuilder) Window(clauses ...models.WindowClause) *LimitBuilder {
	b.window = append(b.window, clauses...)
	return b
}

func (b *LimitBuilder) BalanceLimit(l models.BalanceLimit) *LimitBuilder {
	b.limits = append(b.limits, l)
	return b
}

func (b *LimitBuilder) Build() (models.VelocityLimit, error) {
	if b.name == "" {
		return models.VelocityLimit{}, &models.BuildError{Field: "name", Detail: "must not be empty"}
	}
	if len(b.limits) == 0 {
		return models.VelocityLimit{}, &models.BuildError{Field: "limits", Detail: "a velocity limit needs at least one balance limit"}
	}
	for _, l := range b.limits {
		if l.Direction != models.Debit && l.Direction != models.Credit {
			return models.VelocityLimit{}, &models.BuildError{Field: "limits", Detail: "balance limit with invalid enforcement direction"}
		}
		if l.Amount.IsZero() {
			return models.VelocityLimit{}, &models.BuildError{Field: "limits", Detail: "balance limit without a threshold"}
		}
		if l.Amount.Kind == models.ExprLiteral {
			d, ok := models.DecimalValue(l.Amount.Value)
			if !ok {
				return models.VelocityLimit{}, &models.BuildError{Field: "limits", Detail: "threshold literal is not a decimal"}
			}
			if d.LessThan(decimal.Zero) {
				return models.VelocityLimit{}, &models.BuildError{Field: "limits", Detail: "threshold must be non-negative"}
			}
		}
	}
	return models.VelocityLimit{
		ID:          b.id,
		Name:        b.name,
		Description: b.description,
		Window:      append([]models.WindowClause(nil), b.window...),
		Limits:      append([]models.BalanceLimit(nil), b.limits...),
	}, nil
}

// ControlBuilder assembles a velocity control, a named bundle of limits.
// Limits are linked to the control when both are created in one engine
// operation.
type ControlBuilder struct {
	id          uuid.UUID
	name        string
	description string
}

func NewControlBuilder(name string) *ControlBuilder {
	return &ControlBuilder{id: uuid.New(), name: name}
}

func (b *ControlBuilder) ID(id uuid.UUID) *ControlBuilder {
	b.id = id
	return b
}

func (b *ControlBuilder) Description(d string) *ControlBuilder {
	b.description = d
	return b
}

func (b *ControlBuilder) Build() (models.VelocityControl, error) {
	if b.name == "" {
		return models.VelocityControl{}, &models.BuildError{Field: "name", Detail: "must not be empty"}
	}
	return models.VelocityControl{ID: b.id, Name: b.name, Description: b.description}, nil
}
