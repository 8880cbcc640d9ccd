package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/interfaces"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/models"
)

// ControlAttachment is a velocity control attached to an account, with its
// linked limits and the bindings given at attachment time.
type ControlAttachment struct {
	Control  models.VelocityControl
	Limits   []models.VelocityLimit
	Bindings models.TxParams
}

// EngineStore is the persistence boundary of the engine. Implementations
// return the models error taxonomy: DuplicateError on unique-key reuse,
// NotFoundError on dangling references. Can be in-memory or postgres.
type EngineStore interface {
	SaveTemplate(ctx context.Context, tpl models.TxTemplate) error
	TemplateByCode(ctx context.Context, code string) (models.TxTemplate, error)

	SaveJournal(ctx context.Context, journal models.Journal) error
	JournalByID(ctx context.Context, id uuid.UUID) (models.Journal, error)

	SaveAccount(ctx context.Context, account models.Account) error
	AccountByID(ctx context.Context, id uuid.UUID) (models.Account, error)
	AccountByCode(ctx context.Context, code string) (models.Account, error)
	Accounts(ctx context.Context) ([]models.Account, error)

	SaveAccountSet(ctx context.Context, set models.AccountSet) error
	SetByID(ctx context.Context, id uuid.UUID) (models.AccountSet, error)
	AddSetMember(ctx context.Context, setID, accountID uuid.UUID) error
	SetMembers(ctx context.Context, setID uuid.UUID) ([]uuid.UUID, error)

	// Begin opens the transactional scope used for velocity limit/control
	// creation and linkage.
	Begin(ctx context.Context) (interfaces.OperationScope, error)
	ControlByID(ctx context.Context, id uuid.UUID) (models.VelocityControl, error)
	AttachControl(ctx context.Context, controlID, accountID uuid.UUID, bindings models.TxParams) error
	AttachedControls(ctx context.Context, accountID uuid.UUID) ([]ControlAttachment, error)

	// SaveTransaction persists the transaction and all its entries
	// atomically.
	SaveTransaction(ctx context.Context, tx models.PostedTransaction) error
	BalanceFor(ctx context.Context, journalID, accountID uuid.UUID, currency string) (models.Balance, error)
}
