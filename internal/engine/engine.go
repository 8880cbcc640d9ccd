package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/interfaces"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/models"
	"github.com/shopspring/decimal"
)

// Engine is a reference implementation of interfaces.LedgerEngine over an
// EngineStore. It owns template execution: binding validation, expression
// evaluation, velocity enforcement and atomic persistence of postings.
type Engine struct {
	store EngineStore

	muMap map[uuid.UUID]*sync.Mutex // per-account lock for posting
	mapMu sync.Mutex                // protects muMap itself
}

func New(store EngineStore) *Engine {
	return &Engine{
		store: store,
		muMap: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (e *Engine) CreateTemplate(ctx context.Context, tpl models.TxTemplate) error {
	return e.store.SaveTemplate(ctx, tpl)
}

func (e *Engine) FindTemplate(ctx context.Context, code string) (models.TxTemplate, error) {
	return e.store.TemplateByCode(ctx, code)
}

func (e *Engine) CreateJournal(ctx context.Context, journal models.Journal) error {
	return e.store.SaveJournal(ctx, journal)
}

func (e *Engine) CreateAccount(ctx context.Context, account models.Account) error {
	return e.store.SaveAccount(ctx, account)
}

func (e *Engine) FindAccountByCode(ctx context.Context, code string) (models.Account, error) {
	return e.store.AccountByCode(ctx, code)
}

func (e *Engine) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return e.store.Accounts(ctx)
}

func (e *Engine) CreateAccountSet(ctx context.Context, set models.AccountSet) error {
	if _, err := e.store.JournalByID(ctx, set.JournalID); err != nil {
		return err
	}
	return e.store.SaveAccountSet(ctx, set)
}

func (e *Engine) AddSetMember(ctx context.Context, setID, accountID uuid.UUID) error {
	return e.store.AddSetMember(ctx, setID, accountID)
}

func (e *Engine) Begin(ctx context.Context) (interfaces.OperationScope, error) {
	return e.store.Begin(ctx)
}

func (e *Engine) AttachControlToAccount(ctx context.Context, controlID, accountID uuid.UUID, bindings models.TxParams) error {
	if _, err := e.store.ControlByID(ctx, controlID); err != nil {
		return err
	}
	if _, err := e.store.AccountByID(ctx, accountID); err != nil {
		return err
	}
	if bindings == nil {
		bindings = models.NewTxParams()
	}
	return e.store.AttachControl(ctx, controlID, accountID, bindings)
}

// QueryBalance answers for either an account or an account set. A set
// balance is the sum over current members, computed at query time.
func (e *Engine) QueryBalance(ctx context.Context, journalID, subjectID uuid.UUID, currency string) (models.Balance, error) {
	if _, err := e.store.SetByID(ctx, subjectID); err == nil {
		members, err := e.store.SetMembers(ctx, subjectID)
		if err != nil {
			return models.Balance{}, err
		}
		total := models.Balance{Details: models.BalanceDetails{
			JournalID: journalID,
			SubjectID: subjectID,
			Currency:  currency,
		}}
		for _, accountID := range members {
			b, err := e.store.BalanceFor(ctx, journalID, accountID, currency)
			if err != nil {
				return models.Balance{}, err
			}
			total = total.Add(b)
		}
		return total, nil
	}

	if _, err := e.store.AccountByID(ctx, subjectID); err != nil {
		return models.Balance{}, err
	}
	return e.store.BalanceFor(ctx, journalID, subjectID, currency)
}

// PostTransaction executes a registered template against concrete bindings:
// validate the bindings, resolve every expression, evaluate attached
// velocity controls, then persist transaction and entries as one unit. A
// velocity rejection leaves all balances untouched.
func (e *Engine) PostTransaction(ctx context.Context, id uuid.UUID, templateCode string, params models.TxParams) (models.PostedTransaction, error) {
	tpl, err := e.store.TemplateByCode(ctx, templateCode)
	if err != nil {
		return models.PostedTransaction{}, err
	}

	if err := checkBindings(tpl, params); err != nil {
		return models.PostedTransaction{}, err
	}

	journalID, err := evalUUID(tpl.Transaction.JournalID, params)
	if err != nil {
		return models.PostedTransaction{}, err
	}
	if _, err := e.store.JournalByID(ctx, journalID); err != nil {
		return models.PostedTransaction{}, err
	}

	effective, err := evalEffective(tpl.Transaction.Effective, params)
	if err != nil {
		return models.PostedTransaction{}, err
	}

	now := time.Now().UTC()
	tx := models.PostedTransaction{
		ID:           id,
		TemplateID:   tpl.ID,
		TemplateCode: tpl.Code,
		JournalID:    journalID,
		Effective:    effective,
		CreatedAt:    now,
	}
	for _, te := range tpl.Entries {
		accountID, err := evalUUID(te.AccountID, params)
		if err != nil {
			return models.PostedTransaction{}, err
		}
		if _, err := e.store.AccountByID(ctx, accountID); err != nil {
			return models.PostedTransaction{}, err
		}
		amount, err := evalDecimal(te.Amount, params)
		if err != nil {
			return models.PostedTransaction{}, err
		}
		tx.Entries = append(tx.Entries, models.Entry{
			ID:            uuid.New(),
			TransactionID: id,
			AccountID:     accountID,
			EntryType:     te.EntryType,
			Layer:         te.Layer,
			Direction:     te.Direction,
			Amount:        amount,
			Currency:      te.Currency,
			CreatedAt:     now,
		})
	}

	accounts := affectedAccounts(tx.Entries)

	// Velocity evaluation and persistence must see a stable balance per
	// account, so all affected accounts are locked for the duration.
	// Locking in sorted order avoids deadlocks between concurrent postings.
	unlock := e.lockAccounts(accounts)
	defer unlock()

	for _, accountID := range accounts {
		if err := e.checkVelocity(ctx, journalID, accountID, tx.Entries); err != nil {
			return models.PostedTransaction{}, err
		}
	}

	if err := e.store.SaveTransaction(ctx, tx); err != nil {
		return models.PostedTransaction{}, err
	}
	return tx, nil
}

func (e *Engine) lockAccounts(accounts []uuid.UUID) func() {
	e.mapMu.Lock()
	locks := make([]*sync.Mutex, 0, len(accounts))
	for _, id := range accounts {
		mu, ok := e.muMap[id]
		if !ok {
			mu = &sync.Mutex{}
			e.muMap[id] = mu
		}
		locks = append(locks, mu)
	}
	e.mapMu.Unlock()

	for _, mu := range locks {
		mu.Lock()
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

// checkVelocity evaluates every control attached to the account against the
// balance the posting would produce. Empty-window limits are evaluated
// against the running balance of the limit's layer; windowed limits are not
// supported by this engine and fail loudly instead of being ignored.
func (e *Engine) checkVelocity(ctx context.Context, journalID, accountID uuid.UUID, entries []models.Entry) error {
	attachments, err := e.store.AttachedControls(ctx, accountID)
	if err != nil {
		return err
	}
	if len(attachments) == 0 {
		return nil
	}

	deltas := entryDeltas(accountID, entries)

	for _, att := range attachments {
		for _, limit := range att.Limits {
			if len(limit.Window) > 0 {
				return &models.EngineError{
					Op:  "velocity",
					Err: &models.SchemaError{Ref: limit.Name, Detail: "windowed limits are not supported by this engine"},
				}
			}
			for _, bl := range limit.Limits {
				threshold, err := evalDecimal(bl.Amount, att.Bindings)
				if err != nil {
					return err
				}
				for currency, layers := range deltas {
					delta, ok := layers[bl.Layer]
					if !ok {
						continue
					}
					current, err := e.store.BalanceFor(ctx, journalID, accountID, currency)
					if err != nil {
						return err
					}
					if violates(bl, threshold, layerBalance(current, bl.Layer), delta) {
						return &models.LimitExceededError{
							ControlName: att.Control.Name,
							LimitName:   limit.Name,
							AccountID:   accountID.String(),
						}
					}
				}
			}
		}
	}
	return nil
}

// violates applies the enforcement rule: with DEBIT enforcement the
// projected balance may not drop below -threshold (threshold zero forbids
// going negative); with CREDIT enforcement it may not rise above threshold.
// A limit only fires when the posting actually moves in its direction.
func violates(bl models.BalanceLimit, threshold, current, delta decimal.Decimal) bool {
	projected := current.Add(delta)
	switch bl.Direction {
	case models.Debit:
		return delta.IsNegative() && projected.LessThan(threshold.Neg())
	case models.Credit:
		return delta.IsPositive() && projected.GreaterThan(threshold)
	}
	return false
}

func layerBalance(b models.Balance, layer models.Layer) decimal.Decimal {
	if layer == models.LayerPending {
		return b.Pending()
	}
	return b.Settled()
}

// entryDeltas nets this posting's movement for one account, keyed by
// currency then layer, credit-positive.
func entryDeltas(accountID uuid.UUID, entries []models.Entry) map[string]map[models.Layer]decimal.Decimal {
	deltas := make(map[string]map[models.Layer]decimal.Decimal)
	for _, entry := range entries {
		if entry.AccountID != accountID {
			continue
		}
		layers, ok := deltas[entry.Currency]
		if !ok {
			layers = make(map[models.Layer]decimal.Decimal)
			deltas[entry.Currency] = layers
		}
		layers[entry.Layer] = layers[entry.Layer].Add(entry.SignedAmount())
	}
	return deltas
}

func affectedAccounts(entries []models.Entry) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var accounts []uuid.UUID
	for _, entry := range entries {
		if !seen[entry.AccountID] {
			seen[entry.AccountID] = true
			accounts = append(accounts, entry.AccountID)
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].String() < accounts[j].String()
	})
	return accounts
}

// checkBindings verifies that every declared parameter is bound with a
// value of the declared type and that no undeclared bindings were passed.
func checkBindings(tpl models.TxTemplate, params models.TxParams) error {
	declared := make(map[string]bool, len(tpl.Params))
	for _, def := range tpl.Params {
		declared[def.Name] = true
		value, ok := params[def.Name]
		if !ok {
			return &models.SchemaError{Ref: def.Name, Detail: "missing binding for declared parameter"}
		}
		if err := models.CheckBinding(def, value); err != nil {
			return err
		}
	}
	for name := range params {
		if !declared[name] {
			return &models.SchemaError{Ref: name, Detail: "binding for undeclared parameter"}
		}
	}
	return nil
}

func evalUUID(expr models.Expression, params models.TxParams) (uuid.UUID, error) {
	switch expr.Kind {
	case models.ExprParam:
		if id, ok := models.UUIDValue(params[expr.Name]); ok {
			return id, nil
		}
		return uuid.Nil, &models.SchemaError{Ref: expr.Name, Detail: "binding is not a uuid"}
	case models.ExprLiteral:
		if id, ok := models.UUIDValue(expr.Value); ok {
			return id, nil
		}
		return uuid.Nil, &models.SchemaError{Detail: "literal is not a uuid"}
	}
	return uuid.Nil, &models.SchemaError{Detail: "expression does not evaluate to a uuid"}
}

func evalDecimal(expr models.Expression, params models.TxParams) (decimal.Decimal, error) {
	switch expr.Kind {
	case models.ExprParam:
		if d, ok := models.DecimalValue(params[expr.Name]); ok {
			return d, nil
		}
		return decimal.Decimal{}, &models.SchemaError{Ref: expr.Name, Detail: "binding is not a decimal"}
	case models.ExprLiteral:
		if d, ok := models.DecimalValue(expr.Value); ok {
			return d, nil
		}
		return decimal.Decimal{}, &models.SchemaError{Detail: "literal is not a decimal"}
	}
	return decimal.Decimal{}, &models.SchemaError{Detail: "expression does not evaluate to a decimal"}
}

func evalEffective(expr models.Expression, params models.TxParams) (time.Time, error) {
	switch expr.Kind {
	case models.ExprFn:
		if expr.Name == models.FnDate {
			return time.Now().UTC().Truncate(24 * time.Hour), nil
		}
		return time.Time{}, &models.SchemaError{Ref: expr.Name, Detail: "unknown effective-date function"}
	case models.ExprParam:
		if t, ok := params[expr.Name].(time.Time); ok {
			return t, nil
		}
		return time.Time{}, &models.SchemaError{Ref: expr.Name, Detail: "binding is not a date"}
	case models.ExprLiteral:
		if t, ok := expr.Value.(time.Time); ok {
			return t, nil
		}
		return time.Time{}, &models.SchemaError{Detail: "literal is not a date"}
	}
	return time.Time{}, &models.SchemaError{Detail: "expression does not evaluate to a date"}
}

var _ interfaces.LedgerEngine = (*Engine)(nil)
