package interfaces

import (
	"context"

	"github.com/google/uuid"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/models"
)

// OperationScope is a multi-step unit of work against the engine. Velocity
// limits, controls and their linkage are created inside one scope so that
// partial state is never observable; the scope either commits as a whole or
// rolls back.
type OperationScope interface {
	CreateLimit(ctx context.Context, limit models.VelocityLimit) error
	CreateControl(ctx context.Context, control models.VelocityControl) error
	LinkLimitToControl(ctx context.Context, controlID, limitID uuid.UUID) error
	Commit(ctx context.Context) error
	Rollback() error
}

// LedgerEngine is the external collaborator that owns all durable state:
// templates, journals, accounts, sets, velocity constructs, transactions and
// balances. The accounting core only constructs definitions and issues
// create/attach/post calls against it.
type LedgerEngine interface {
	CreateTemplate(ctx context.Context, tpl models.TxTemplate) error
	FindTemplate(ctx context.Context, code string) (models.TxTemplate, error)

	CreateJournal(ctx context.Context, journal models.Journal) error
	CreateAccount(ctx context.Context, account models.Account) error
	FindAccountByCode(ctx context.Context, code string) (models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)

	CreateAccountSet(ctx context.Context, set models.AccountSet) error
	AddSetMember(ctx context.Context, setID, accountID uuid.UUID) error

	Begin(ctx context.Context) (OperationScope, error)
	AttachControlToAccount(ctx context.Context, controlID, accountID uuid.UUID, bindings models.TxParams) error

	// QueryBalance accepts either an account id or an account-set id as the
	// subject. For a set the result is the sum over current members.
	QueryBalance(ctx context.Context, journalID, subjectID uuid.UUID, currency string) (models.Balance, error)

	PostTransaction(ctx context.Context, id uuid.UUID, templateCode string, params models.TxParams) (models.PostedTransaction, error)
}
