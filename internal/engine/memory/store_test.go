package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/ledger-accounting-engine/internal/models"
)

func TestOperationStagesUntilCommit(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	limit := models.VelocityLimit{ID: uuid.New(), Name: "limit", Limits: []models.BalanceLimit{{
		Layer:     models.LayerSettled,
		Amount:    models.Lit(decimal.Zero),
		Direction: models.Debit,
	}}}
	control := models.VelocityControl{ID: uuid.New(), Name: "control"}

	op, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, op.CreateLimit(ctx, limit))
	require.NoError(t, op.CreateControl(ctx, control))
	require.NoError(t, op.LinkLimitToControl(ctx, control.ID, limit.ID))

	// Nothing is visible before commit.
	_, err = store.ControlByID(ctx, control.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, op.Commit(ctx))
	found, err := store.ControlByID(ctx, control.ID)
	require.NoError(t, err)
	assert.Equal(t, control, found)
}

func TestOperationRollbackDiscards(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	control := models.VelocityControl{ID: uuid.New(), Name: "control"}

	op, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, op.CreateControl(ctx, control))
	require.NoError(t, op.Rollback())

	_, err = store.ControlByID(ctx, control.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	// The id stays free for the next scope.
	op, err = store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, op.CreateControl(ctx, control))
	assert.NoError(t, op.Commit(ctx))
}

func TestCommitRejectsDuplicatesAtomically(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	control := models.VelocityControl{ID: uuid.New(), Name: "control"}
	op, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, op.CreateControl(ctx, control))
	require.NoError(t, op.Commit(ctx))

	limit := models.VelocityLimit{ID: uuid.New(), Name: "limit", Limits: []models.BalanceLimit{{
		Layer:     models.LayerSettled,
		Amount:    models.Lit(decimal.Zero),
		Direction: models.Debit,
	}}}

	op, err = store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, op.CreateLimit(ctx, limit))
	require.NoError(t, op.CreateControl(ctx, control))
	assert.ErrorIs(t, op.Commit(ctx), models.ErrDuplicate)

	// The limit staged next to the duplicate control never landed.
	op, err = store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, op.CreateLimit(ctx, limit))
	fresh := models.VelocityControl{ID: uuid.New(), Name: "fresh"}
	require.NoError(t, op.CreateControl(ctx, fresh))
	assert.NoError(t, op.Commit(ctx))
}

func TestSaveTransactionAndBalance(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	journalID := uuid.New()
	accountID := uuid.New()
	txID := uuid.New()

	require.NoError(t, store.SaveJournal(ctx, models.Journal{ID: journalID, Name: "J"}))
	require.NoError(t, store.SaveAccount(ctx, models.Account{ID: accountID, Name: "a", Code: "a", NormalBalanceType: models.Credit}))

	tx := models.PostedTransaction{
		ID:        txID,
		JournalID: journalID,
		Entries: []models.Entry{
			{ID: uuid.New(), TransactionID: txID, AccountID: accountID, Layer: models.LayerSettled, Direction: models.Credit, Amount: decimal.NewFromInt(7), Currency: "BTC"},
			{ID: uuid.New(), TransactionID: txID, AccountID: accountID, Layer: models.LayerPending, Direction: models.Credit, Amount: decimal.NewFromInt(3), Currency: "BTC"},
		},
	}
	require.NoError(t, store.SaveTransaction(ctx, tx))
	assert.ErrorIs(t, store.SaveTransaction(ctx, tx), models.ErrDuplicate)

	balance, err := store.BalanceFor(ctx, journalID, accountID, "BTC")
	require.NoError(t, err)
	assert.True(t, balance.Settled().Equal(decimal.NewFromInt(7)))
	assert.True(t, balance.Pending().Equal(decimal.NewFromInt(3)))
	assert.Equal(t, 2, balance.Details.EntryCount)

	// A different journal sees none of it.
	balance, err = store.BalanceFor(ctx, uuid.New(), accountID, "BTC")
	require.NoError(t, err)
	assert.True(t, balance.Settled().IsZero())
}
