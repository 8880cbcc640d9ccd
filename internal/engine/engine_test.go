package engine_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/ledger-accounting-engine/internal/config"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/engine"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/engine/memory"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/models"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/templates"
)

type fixture struct {
	ctx   context.Context
	eng   *engine.Engine
	cfg   config.Config
	alice models.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	cfg := config.Config{
		JournalID:          uuid.New(),
		AssetsAccountID:    uuid.New(),
		LiabilitiesSetID:   uuid.New(),
		OverdraftControlID: uuid.New(),
		Currency:           "BTC",
	}
	eng := engine.New(memory.NewStore())

	require.NoError(t, templates.RegisterCanonical(ctx, eng, cfg))
	require.NoError(t, eng.CreateJournal(ctx, models.Journal{ID: cfg.JournalID, Name: "MAIN JOURNAL"}))
	require.NoError(t, eng.CreateAccount(ctx, models.Account{
		ID: cfg.AssetsAccountID, Name: "ASSETS", Code: "ASSETS", NormalBalanceType: models.Debit,
	}))

	alice := models.Account{ID: uuid.New(), Name: "alice", Code: "alice", NormalBalanceType: models.Credit}
	require.NoError(t, eng.CreateAccount(ctx, alice))

	return &fixture{ctx: ctx, eng: eng, cfg: cfg, alice: alice}
}

func (f *fixture) depositParams() models.TxParams {
	return models.NewTxParams().
		SetUUID("journal_id", f.cfg.JournalID).
		SetUUID("assets", f.cfg.AssetsAccountID).
		SetUUID("recipient", f.alice.ID).
		SetDecimal("amount", decimal.NewFromInt(100))
}

func TestPostTransaction(t *testing.T) {
	f := newFixture(t)

	tx, err := f.eng.PostTransaction(f.ctx, uuid.New(), templates.CodeDeposit, f.depositParams())
	require.NoError(t, err)

	assert.Equal(t, templates.CodeDeposit, tx.TemplateCode)
	assert.Equal(t, f.cfg.JournalID, tx.JournalID)
	require.Len(t, tx.Entries, 2)
	for _, e := range tx.Entries {
		assert.Equal(t, tx.ID, e.TransactionID)
		assert.True(t, e.Amount.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, "BTC", e.Currency)
	}
	assert.False(t, tx.Effective.IsZero())
}

func TestPostTransactionBindingErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		params  models.TxParams
		wantErr error
	}{
		{
			name:    "empty bindings",
			params:  models.NewTxParams(),
			wantErr: models.ErrSchema,
		},
		{
			name: "missing amount binding",
			params: models.NewTxParams().
				SetUUID("journal_id", f.cfg.JournalID).
				SetUUID("assets", f.cfg.AssetsAccountID).
				SetUUID("recipient", f.alice.ID),
			wantErr: models.ErrSchema,
		},
		{
			name: "mistyped amount binding",
			params: models.NewTxParams().
				SetUUID("journal_id", f.cfg.JournalID).
				SetUUID("assets", f.cfg.AssetsAccountID).
				SetUUID("recipient", f.alice.ID).
				SetBool("amount", true),
			wantErr: models.ErrSchema,
		},
		{
			name:    "undeclared binding",
			params:  f.depositParams().SetString("memo", "hi"),
			wantErr: models.ErrSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.eng.PostTransaction(f.ctx, uuid.New(), templates.CodeDeposit, tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := f.eng.PostTransaction(f.ctx, uuid.New(), "MISSING", models.NewTxParams())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPostTransactionUnknownEntities(t *testing.T) {
	f := newFixture(t)

	// A uuid binding has to resolve to a real account.
	params := f.depositParams().SetUUID("recipient", uuid.New())
	_, err := f.eng.PostTransaction(f.ctx, uuid.New(), templates.CodeDeposit, params)
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Same for the journal.
	params = f.depositParams().SetUUID("journal_id", uuid.New())
	_, err = f.eng.PostTransaction(f.ctx, uuid.New(), templates.CodeDeposit, params)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPostTransactionDuplicateID(t *testing.T) {
	f := newFixture(t)

	id := uuid.New()
	_, err := f.eng.PostTransaction(f.ctx, id, templates.CodeDeposit, f.depositParams())
	require.NoError(t, err)

	_, err = f.eng.PostTransaction(f.ctx, id, templates.CodeDeposit, f.depositParams())
	assert.ErrorIs(t, err, models.ErrDuplicate)
}

func TestCreateTemplateDuplicateCode(t *testing.T) {
	f := newFixture(t)

	tpl, err := templates.Deposit(f.cfg)
	require.NoError(t, err)
	assert.ErrorIs(t, f.eng.CreateTemplate(f.ctx, tpl), models.ErrDuplicate)
}

func TestQueryBalanceSubjects(t *testing.T) {
	f := newFixture(t)

	_, err := f.eng.PostTransaction(f.ctx, uuid.New(), templates.CodeDeposit, f.depositParams())
	require.NoError(t, err)

	// Account subject.
	balance, err := f.eng.QueryBalance(f.ctx, f.cfg.JournalID, f.alice.ID, "BTC")
	require.NoError(t, err)
	assert.True(t, balance.Settled().Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 1, balance.Details.EntryCount)

	// Set subject: the same call shape answers for a group.
	setID := uuid.New()
	require.NoError(t, f.eng.CreateAccountSet(f.ctx, models.AccountSet{
		ID: setID, Name: "LIABILITIES", JournalID: f.cfg.JournalID,
	}))
	require.NoError(t, f.eng.AddSetMember(f.ctx, setID, f.alice.ID))

	balance, err = f.eng.QueryBalance(f.ctx, f.cfg.JournalID, setID, "BTC")
	require.NoError(t, err)
	assert.True(t, balance.Settled().Equal(decimal.NewFromInt(100)))
	assert.Equal(t, setID, balance.Details.SubjectID)

	// Unknown subject.
	_, err = f.eng.QueryBalance(f.ctx, f.cfg.JournalID, uuid.New(), "BTC")
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Unqueried currency reads as zero, not as an error.
	balance, err = f.eng.QueryBalance(f.ctx, f.cfg.JournalID, f.alice.ID, "ETH")
	require.NoError(t, err)
	assert.True(t, balance.Settled().IsZero())
}

func TestCreateAccountSetUnknownJournal(t *testing.T) {
	f := newFixture(t)

	err := f.eng.CreateAccountSet(f.ctx, models.AccountSet{
		ID: uuid.New(), Name: "ORPHAN", JournalID: uuid.New(),
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAttachControlUnknownControl(t *testing.T) {
	f := newFixture(t)

	err := f.eng.AttachControlToAccount(f.ctx, uuid.New(), f.alice.ID, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
