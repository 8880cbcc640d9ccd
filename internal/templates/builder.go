package templates

import (
	"github.com/google/uuid"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/models"
	"github.com/shopspring/decimal"
)

// Builder assembles a transaction template. All validation happens in Build:
// required fields, parameter declarations, reference resolution and the
// zero-sum invariant. A built template is immutable.
type Builder struct {
	code        string
	params      []models.ParamDefinition
	transaction models.TransactionClause
	entries     []models.TemplateEntry
}

func NewBuilder(code string) *Builder {
	return &Builder{code: code}
}

func (b *Builder) Param(name string, t models.ParamType) *Builder {
	b.params = append(b.params, models.ParamDefinition{Name: name, Type: t})
	return b
}

func (b *Builder) Transaction(journalID, effective models.Expression) *Builder {
	b.transaction = models.TransactionClause{JournalID: journalID, Effective: effective}
	return b
}

func (b *Builder) Entry(e models.TemplateEntry) *Builder {
	b.entries = append(b.entries, e)
	return b
}

// Build validates the assembled template and returns it with a fresh id.
// Building twice with identical inputs yields structurally identical output
// modulo that id.
func (b *Builder) Build() (models.TxTemplate, error) {
	if b.code == "" {
		return models.TxTemplate{}, &models.BuildError{Field: "code", Detail: "must not be empty"}
	}
	if len(b.entries) < 2 {
		return models.TxTemplate{}, &models.BuildError{Field: "entries", Detail: "a template needs at least two entries"}
	}
	if b.transaction.JournalID.IsZero() || b.transaction.Effective.IsZero() {
		return models.TxTemplate{}, &models.BuildError{Field: "transaction", Detail: "journal and effective expressions are required"}
	}

	declared := make(map[string]models.ParamType, len(b.params))
	for _, p := range b.params {
		if p.Name == "" {
			return models.TxTemplate{}, &models.BuildError{Field: "params", Detail: "parameter with empty name"}
		}
		if _, dup := declared[p.Name]; dup {
			return models.TxTemplate{}, &models.BuildError{Field: "params", Detail: "duplicate parameter " + p.Name}
		}
		declared[p.Name] = p.Type
	}

	if err := b.transaction.JournalID.Validate(declared); err != nil {
		return models.TxTemplate{}, err
	}
	if err := b.transaction.Effective.Validate(declared); err != nil {
		return models.TxTemplate{}, err
	}
	for _, e := range b.entries {
		if e.EntryType == "" {
			return models.TxTemplate{}, &models.BuildError{Field: "entries", Detail: "entry with empty entry type"}
		}
		if e.Direction != models.Debit && e.Direction != models.Credit {
			return models.TxTemplate{}, &models.BuildError{Field: "entries", Detail: "entry with invalid direction"}
		}
		if e.Currency == "" {
			return models.TxTemplate{}, &models.BuildError{Field: "entries", Detail: "entry with empty currency"}
		}
		if err := e.AccountID.Validate(declared); err != nil {
			return models.TxTemplate{}, err
		}
		if err := e.Amount.Validate(declared); err != nil {
			return models.TxTemplate{}, err
		}
	}

	if err := checkZeroSum(b.entries, declared); err != nil {
		return models.TxTemplate{}, err
	}

	return models.TxTemplate{
		ID:          uuid.New(),
		Code:        b.code,
		Params:      append([]models.ParamDefinition(nil), b.params...),
		Transaction: b.transaction,
		Entries:     append([]models.TemplateEntry(nil), b.entries...),
	}, nil
}

// checkZeroSum verifies that debits and credits cancel per currency. Amounts
// are symbolic, so the check is structural: for every currency the multiset
// of debit-side amount parameters must equal the credit-side multiset, and
// literal amounts must sum to the same value on both sides.
func checkZeroSum(entries []models.TemplateEntry, declared map[string]models.ParamType) error {
	type side struct {
		params   map[string]int
		literals decimal.Decimal
	}
	newSide := func() *side { return &side{params: make(map[string]int)} }

	byCurrency := make(map[string]map[models.Direction]*side)
	for _, e := range entries {
		sides, ok := byCurrency[e.Currency]
		if !ok {
			sides = map[models.Direction]*side{models.Debit: newSide(), models.Credit: newSide()}
			byCurrency[e.Currency] = sides
		}
		s := sides[e.Direction]

		switch e.Amount.Kind {
		case models.ExprParam:
			if declared[e.Amount.Name] != models.ParamDecimal {
				return &models.SchemaError{Ref: e.Amount.Name, Detail: "amount must reference a decimal parameter"}
			}
			s.params[e.Amount.Name]++
		case models.ExprLiteral:
			d, ok := models.DecimalValue(e.Amount.Value)
			if !ok {
				return &models.SchemaError{Ref: e.EntryType, Detail: "literal amount is not a decimal"}
			}
			s.literals = s.literals.Add(d)
		default:
			return &models.SchemaError{Ref: e.EntryType, Detail: "amount must be a parameter reference or a decimal literal"}
		}
	}

	for currency, sides := range byCurrency {
		dr, cr := sides[models.Debit], sides[models.Credit]
		if !dr.literals.Equal(cr.literals) {
			return &models.SchemaError{Ref: currency, Detail: "literal debit and credit amounts do not balance"}
		}
		if len(dr.params) != len(cr.params) {
			return &models.SchemaError{Ref: currency, Detail: "debit and credit entries do not balance"}
		}
		for name, n := range dr.params {
			if cr.params[name] != n {
				return &models.SchemaError{Ref: currency, Detail: "debit and credit entries do not balance"}
			}
		}
	}
	return nil
}
