package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/engine"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/interfaces"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/models"
)

// Store is a postgres-backed engine.EngineStore. Template and velocity
// definitions are stored as jsonb; balances are computed with SUM queries
// over the entries table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the tables if they do not exist yet.
func (p *Store) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS tx_templates (
	id UUID PRIMARY KEY,
	code TEXT UNIQUE NOT NULL,
	definition JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS journals (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS accounts (
	id UUID PRIMARY KEY,
	code TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL,
	normal_balance_type TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS account_sets (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	journal_id UUID NOT NULL REFERENCES journals(id)
);
CREATE TABLE IF NOT EXISTS account_set_members (
	set_id UUID NOT NULL REFERENCES account_sets(id),
	account_id UUID NOT NULL REFERENCES accounts(id),
	PRIMARY KEY (set_id, account_id)
);
CREATE TABLE IF NOT EXISTS velocity_limits (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	definition JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS velocity_controls (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS velocity_control_limits (
	control_id UUID NOT NULL REFERENCES velocity_controls(id),
	limit_id UUID NOT NULL REFERENCES velocity_limits(id),
	PRIMARY KEY (control_id, limit_id)
);
CREATE TABLE IF NOT EXISTS velocity_control_attachments (
	control_id UUID NOT NULL REFERENCES velocity_controls(id),
	account_id UUID NOT NULL REFERENCES accounts(id),
	bindings JSONB NOT NULL DEFAULT '{}',
	PRIMARY KEY (control_id, account_id)
);
CREATE TABLE IF NOT EXISTS transactions (
	id UUID PRIMARY KEY,
	template_id UUID NOT NULL,
	template_code TEXT NOT NULL,
	journal_id UUID NOT NULL REFERENCES journals(id),
	effective DATE NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
	id UUID PRIMARY KEY,
	transaction_id UUID NOT NULL REFERENCES transactions(id),
	journal_id UUID NOT NULL,
	account_id UUID NOT NULL REFERENCES accounts(id),
	entry_type TEXT NOT NULL,
	layer TEXT NOT NULL,
	direction TEXT NOT NULL,
	amount NUMERIC NOT NULL,
	currency TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS entries_account_idx ON entries (journal_id, account_id, currency);
`
	_, err := p.db.ExecContext(ctx, schema)
	return err
}

// translate maps unique-key violations onto the duplicate error of the
// taxonomy; everything else stays an opaque engine error.
func translate(op, kind, key string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return &models.DuplicateError{Kind: kind, Key: key}
	}
	return &models.EngineError{Op: op, Err: err}
}

func (p *Store) SaveTemplate(ctx context.Context, tpl models.TxTemplate) error {
	definition, err := json.Marshal(tpl)
	if err != nil {
		return err
	}
	const query = `INSERT INTO tx_templates (id, code, definition) VALUES ($1, $2, $3)`
	_, err = p.db.ExecContext(ctx, query, tpl.ID, tpl.Code, definition)
	return translate("save template", "template", tpl.Code, err)
}

func (p *Store) TemplateByCode(ctx context.Context, code string) (models.TxTemplate, error) {
	const query = `SELECT definition FROM tx_templates WHERE code = $1`

	var definition []byte
	err := p.db.QueryRowContext(ctx, query, code).Scan(&definition)
	if err == sql.ErrNoRows {
		return models.TxTemplate{}, &models.NotFoundError{Kind: "template", Key: code}
	}
	if err != nil {
		return models.TxTemplate{}, &models.EngineError{Op: "find template", Err: err}
	}

	var tpl models.TxTemplate
	if err := json.Unmarshal(definition, &tpl); err != nil {
		return models.TxTemplate{}, &models.EngineError{Op: "find template", Err: err}
	}
	return tpl, nil
}

func (p *Store) SaveJournal(ctx context.Context, journal models.Journal) error {
	const query = `INSERT INTO journals (id, name) VALUES ($1, $2)`
	_, err := p.db.ExecContext(ctx, query, journal.ID, journal.Name)
	return translate("save journal", "journal", journal.ID.String(), err)
}

func (p *Store) JournalByID(ctx context.Context, id uuid.UUID) (models.Journal, error) {
	const query = `SELECT id, name FROM journals WHERE id = $1`

	var journal models.Journal
	err := p.db.QueryRowContext(ctx, query, id).Scan(&journal.ID, &journal.Name)
	if err == sql.ErrNoRows {
		return models.Journal{}, &models.NotFoundError{Kind: "journal", Key: id.String()}
	}
	if err != nil {
		return models.Journal{}, &models.EngineError{Op: "find journal", Err: err}
	}
	return journal, nil
}

func (p *Store) SaveAccount(ctx context.Context, account models.Account) error {
	const query = `INSERT INTO accounts (id, code, name, normal_balance_type) VALUES ($1, $2, $3, $4)`
	_, err := p.db.ExecContext(ctx, query, account.ID, account.Code, account.Name, account.NormalBalanceType)
	return translate("save account", "account", account.Code, err)
}

func (p *Store) AccountByID(ctx context.Context, id uuid.UUID) (models.Account, error) {
	const query = `SELECT id, code, name, normal_balance_type FROM accounts WHERE id = $1`
	return p.scanAccount(p.db.QueryRowContext(ctx, query, id), id.String())
}

func (p *Store) AccountByCode(ctx context.Context, code string) (models.Account, error) {
	const query = `SELECT id, code, name, normal_balance_type FROM accounts WHERE code = $1`
	return p.scanAccount(p.db.QueryRowContext(ctx, query, code), code)
}

func (p *Store) scanAccount(row *sql.Row, key string) (models.Account, error) {
	var account models.Account
	err := row.Scan(&account.ID, &account.Code, &account.Name, &account.NormalBalanceType)
	if err == sql.ErrNoRows {
		return models.Account{}, &models.NotFoundError{Kind: "account", Key: key}
	}
	if err != nil {
		return models.Account{}, &models.EngineError{Op: "find account", Err: err}
	}
	return account, nil
}

func (p *Store) Accounts(ctx context.Context) ([]models.Account, error) {
	const query = `SELECT id, code, name, normal_balance_type FROM accounts ORDER BY code`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &models.EngineError{Op: "list accounts", Err: err}
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.ID, &account.Code, &account.Name, &account.NormalBalanceType); err != nil {
			return nil, &models.EngineError{Op: "list accounts", Err: err}
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.EngineError{Op: "list accounts", Err: err}
	}
	return accounts, nil
}

func (p *Store) SaveAccountSet(ctx context.Context, set models.AccountSet) error {
	const query = `INSERT INTO account_sets (id, name, journal_id) VALUES ($1, $2, $3)`
	_, err := p.db.ExecContext(ctx, query, set.ID, set.Name, set.JournalID)
	return translate("save account set", "account set", set.ID.String(), err)
}

func (p *Store) SetByID(ctx context.Context, id uuid.UUID) (models.AccountSet, error) {
	const query = `SELECT id, name, journal_id FROM account_sets WHERE id = $1`

	var set models.AccountSet
	err := p.db.QueryRowContext(ctx, query, id).Scan(&set.ID, &set.Name, &set.JournalID)
	if err == sql.ErrNoRows {
		return models.AccountSet{}, &models.NotFoundError{Kind: "account set", Key: id.String()}
	}
	if err != nil {
		return models.AccountSet{}, &models.EngineError{Op: "find account set", Err: err}
	}
	return set, nil
}

func (p *Store) AddSetMember(ctx context.Context, setID, accountID uuid.UUID) error {
	if _, err := p.SetByID(ctx, setID); err != nil {
		return err
	}
	if _, err := p.AccountByID(ctx, accountID); err != nil {
		return err
	}
	// ON CONFLICT keeps re-adding an existing member a no-op.
	const query = `INSERT INTO account_set_members (set_id, account_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := p.db.ExecContext(ctx, query, setID, accountID)
	if err != nil {
		return &models.EngineError{Op: "add set member", Err: err}
	}
	return nil
}

func (p *Store) SetMembers(ctx context.Context, setID uuid.UUID) ([]uuid.UUID, error) {
	const query = `SELECT account_id FROM account_set_members WHERE set_id = $1`

	rows, err := p.db.QueryContext(ctx, query, setID)
	if err != nil {
		return nil, &models.EngineError{Op: "set members", Err: err}
	}
	defer rows.Close()

	var members []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, &models.EngineError{Op: "set members", Err: err}
		}
		members = append(members, id)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.EngineError{Op: "set members", Err: err}
	}
	return members, nil
}

func (p *Store) Begin(ctx context.Context) (interfaces.OperationScope, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &models.EngineError{Op: "begin", Err: err}
	}
	return &operation{tx: tx}, nil
}

func (p *Store) ControlByID(ctx context.Context, id uuid.UUID) (models.VelocityControl, error) {
	const query = `SELECT id, name, description FROM velocity_controls WHERE id = $1`

	var control models.VelocityControl
	err := p.db.QueryRowContext(ctx, query, id).Scan(&control.ID, &control.Name, &control.Description)
	if err == sql.ErrNoRows {
		return models.VelocityControl{}, &models.NotFoundError{Kind: "velocity control", Key: id.String()}
	}
	if err != nil {
		return models.VelocityControl{}, &models.EngineError{Op: "find velocity control", Err: err}
	}
	return control, nil
}

func (p *Store) AttachControl(ctx context.Context, controlID, accountID uuid.UUID, bindings models.TxParams) error {
	data, err := json.Marshal(bindings)
	if err != nil {
		return err
	}
	const query = `INSERT INTO velocity_control_attachments (control_id, account_id, bindings)
	VALUES ($1, $2, $3)
	ON CONFLICT (control_id, account_id) DO UPDATE SET bindings = EXCLUDED.bindings`
	_, err = p.db.ExecContext(ctx, query, controlID, accountID, data)
	if err != nil {
		return &models.EngineError{Op: "attach control", Err: err}
	}
	return nil
}

func (p *Store) AttachedControls(ctx context.Context, accountID uuid.UUID) ([]engine.ControlAttachment, error) {
	const query = `
	SELECT c.id, c.name, c.description, a.bindings, l.definition
	FROM velocity_control_attachments a
	JOIN velocity_controls c ON c.id = a.control_id
	LEFT JOIN velocity_control_limits cl ON cl.control_id = c.id
	LEFT JOIN velocity_limits l ON l.id = cl.limit_id
	WHERE a.account_id = $1
	ORDER BY c.id`

	rows, err := p.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, &models.EngineError{Op: "attached controls", Err: err}
	}
	defer rows.Close()

	byControl := make(map[uuid.UUID]*engine.ControlAttachment)
	var order []uuid.UUID
	for rows.Next() {
		var (
			control    models.VelocityControl
			bindings   []byte
			definition []byte
		)
		if err := rows.Scan(&control.ID, &control.Name, &control.Description, &bindings, &definition); err != nil {
			return nil, &models.EngineError{Op: "attached controls", Err: err}
		}
		att, ok := byControl[control.ID]
		if !ok {
			att = &engine.ControlAttachment{Control: control, Bindings: models.NewTxParams()}
			if err := json.Unmarshal(bindings, &att.Bindings); err != nil {
				return nil, &models.EngineError{Op: "attached controls", Err: err}
			}
			byControl[control.ID] = att
			order = append(order, control.ID)
		}
		if definition != nil {
			var limit models.VelocityLimit
			if err := json.Unmarshal(definition, &limit); err != nil {
				return nil, &models.EngineError{Op: "attached controls", Err: err}
			}
			att.Limits = append(att.Limits, limit)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &models.EngineError{Op: "attached controls", Err: err}
	}

	attachments := make([]engine.ControlAttachment, 0, len(order))
	for _, id := range order {
		attachments = append(attachments, *byControl[id])
	}
	return attachments, nil
}

func (p *Store) SaveTransaction(ctx context.Context, tx models.PostedTransaction) (err error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return &models.EngineError{Op: "save transaction", Err: err}
	}
	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	const txQuery = `INSERT INTO transactions (id, template_id, template_code, journal_id, effective, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = dbTx.ExecContext(ctx, txQuery, tx.ID, tx.TemplateID, tx.TemplateCode, tx.JournalID, tx.Effective, tx.CreatedAt)
	if err != nil {
		return translate("save transaction", "transaction", tx.ID.String(), err)
	}

	const entryQuery = `INSERT INTO entries (id, transaction_id, journal_id, account_id, entry_type, layer, direction, amount, currency, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, e := range tx.Entries {
		_, err = dbTx.ExecContext(ctx, entryQuery,
			e.ID, e.TransactionID, tx.JournalID, e.AccountID, e.EntryType, e.Layer, e.Direction, e.Amount, e.Currency, e.CreatedAt)
		if err != nil {
			return translate("save entry", "entry", e.ID.String(), err)
		}
	}
	return dbTx.Commit()
}

func (p *Store) BalanceFor(ctx context.Context, journalID, accountID uuid.UUID, currency string) (models.Balance, error) {
	const query = `
	SELECT
		COALESCE(SUM(amount) FILTER (WHERE direction = 'DEBIT' AND layer <> 'PENDING'), 0),
		COALESCE(SUM(amount) FILTER (WHERE direction = 'CREDIT' AND layer <> 'PENDING'), 0),
		COALESCE(SUM(amount) FILTER (WHERE direction = 'DEBIT' AND layer = 'PENDING'), 0),
		COALESCE(SUM(amount) FILTER (WHERE direction = 'CREDIT' AND layer = 'PENDING'), 0),
		COUNT(*)
	FROM entries
	WHERE journal_id = $1 AND account_id = $2 AND currency = $3`

	b := models.Balance{Details: models.BalanceDetails{
		JournalID: journalID,
		SubjectID: accountID,
		Currency:  currency,
	}}
	err := p.db.QueryRowContext(ctx, query, journalID, accountID, currency).Scan(
		&b.Details.DrBalance,
		&b.Details.CrBalance,
		&b.Details.PendingDr,
		&b.Details.PendingCr,
		&b.Details.EntryCount,
	)
	if err != nil {
		return models.Balance{}, &models.EngineError{Op: "balance", Err: err}
	}
	return b, nil
}

// operation runs the velocity limit/control creation sequence inside one
// database transaction.
type operation struct {
	tx *sql.Tx
}

func (op *operation) CreateLimit(ctx context.Context, limit models.VelocityLimit) error {
	definition, err := json.Marshal(limit)
	if err != nil {
		return err
	}
	const query = `INSERT INTO velocity_limits (id, name, definition) VALUES ($1, $2, $3)`
	_, err = op.tx.ExecContext(ctx, query, limit.ID, limit.Name, definition)
	return translate("create limit", "velocity limit", limit.ID.String(), err)
}

func (op *operation) CreateControl(ctx context.Context, control models.VelocityControl) error {
	const query = `INSERT INTO velocity_controls (id, name, description) VALUES ($1, $2, $3)`
	_, err := op.tx.ExecContext(ctx, query, control.ID, control.Name, control.Description)
	return translate("create control", "velocity control", control.ID.String(), err)
}

func (op *operation) LinkLimitToControl(ctx context.Context, controlID, limitID uuid.UUID) error {
	const query = `INSERT INTO velocity_control_limits (control_id, limit_id) VALUES ($1, $2)`
	_, err := op.tx.ExecContext(ctx, query, controlID, limitID)
	return translate("link limit", "velocity control limit", controlID.String(), err)
}

func (op *operation) Commit(ctx context.Context) error {
	if err := op.tx.Commit(); err != nil {
		return &models.EngineError{Op: "commit", Err: err}
	}
	return nil
}

func (op *operation) Rollback() error {
	return op.tx.Rollback()
}

var _ engine.EngineStore = (*Store)(nil)
