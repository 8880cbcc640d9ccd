package accountsets_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/ledger-accounting-engine/internal/accountsets"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/config"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/engine"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/engine/memory"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/ledger"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/models"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/templates"
)

func testConfig() config.Config {
	return config.Config{
		JournalID:          uuid.New(),
		AssetsAccountID:    uuid.New(),
		LiabilitiesSetID:   uuid.New(),
		OverdraftControlID: uuid.New(),
		Currency:           "BTC",
	}
}

type fixture struct {
	cfg  config.Config
	eng  *engine.Engine
	svc  *ledger.Service
	sets *accountsets.Aggregator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	cfg := testConfig()
	eng := engine.New(memory.NewStore())
	svc := ledger.New(eng, cfg)

	require.NoError(t, templates.RegisterCanonical(ctx, eng, cfg))
	_, err := svc.CreateJournal(ctx)
	require.NoError(t, err)
	_, err = svc.InitAssetsAccount(ctx)
	require.NoError(t, err)

	return &fixture{cfg: cfg, eng: eng, svc: svc, sets: accountsets.New(eng, cfg)}
}

func TestAggregateBalanceIsSumOfMembers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice, err := f.svc.CreateAccount(ctx, "alice")
	require.NoError(t, err)
	bob, err := f.svc.CreateAccount(ctx, "bob")
	require.NoError(t, err)

	_, err = f.svc.Deposit(ctx, "alice", decimal.NewFromInt(100))
	require.NoError(t, err)
	_, err = f.svc.Deposit(ctx, "bob", decimal.NewFromInt(50))
	require.NoError(t, err)

	setID, err := f.sets.CreateLiabilitiesSet(ctx)
	require.NoError(t, err)
	require.NoError(t, f.sets.AddMember(ctx, setID, alice.ID))
	require.NoError(t, f.sets.AddMember(ctx, setID, bob.ID))

	balance, err := f.sets.AggregateBalance(ctx, setID, f.cfg.Currency)
	require.NoError(t, err)

	aliceBalance, err := f.svc.AccountBalance(ctx, "alice", f.cfg.Currency)
	require.NoError(t, err)
	bobBalance, err := f.svc.AccountBalance(ctx, "bob", f.cfg.Currency)
	require.NoError(t, err)

	expected := aliceBalance.Settled().Add(bobBalance.Settled())
	assert.True(t, balance.Settled().Equal(expected))
	assert.True(t, balance.Settled().Equal(decimal.NewFromInt(150)))
}

func TestAggregateBalanceReflectsCurrentMembership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice, err := f.svc.CreateAccount(ctx, "alice")
	require.NoError(t, err)
	bob, err := f.svc.CreateAccount(ctx, "bob")
	require.NoError(t, err)

	_, err = f.svc.Deposit(ctx, "alice", decimal.NewFromInt(100))
	require.NoError(t, err)
	_, err = f.svc.Deposit(ctx, "bob", decimal.NewFromInt(50))
	require.NoError(t, err)

	setID, err := f.sets.CreateLiabilitiesSet(ctx)
	require.NoError(t, err)
	require.NoError(t, f.sets.AddMember(ctx, setID, alice.ID))

	balance, err := f.sets.AggregateBalance(ctx, setID, f.cfg.Currency)
	require.NoError(t, err)
	assert.True(t, balance.Settled().Equal(decimal.NewFromInt(100)))

	// Membership added after the first query shows up in the next one.
	require.NoError(t, f.sets.AddMember(ctx, setID, bob.ID))
	balance, err = f.sets.AggregateBalance(ctx, setID, f.cfg.Currency)
	require.NoError(t, err)
	assert.True(t, balance.Settled().Equal(decimal.NewFromInt(150)))
}

func TestAddMemberIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice, err := f.svc.CreateAccount(ctx, "alice")
	require.NoError(t, err)
	_, err = f.svc.Deposit(ctx, "alice", decimal.NewFromInt(100))
	require.NoError(t, err)

	setID, err := f.sets.CreateLiabilitiesSet(ctx)
	require.NoError(t, err)
	require.NoError(t, f.sets.AddMember(ctx, setID, alice.ID))
	require.NoError(t, f.sets.AddMember(ctx, setID, alice.ID))

	// The balance is not double counted.
	balance, err := f.sets.AggregateBalance(ctx, setID, f.cfg.Currency)
	require.NoError(t, err)
	assert.True(t, balance.Settled().Equal(decimal.NewFromInt(100)))
}

func TestAddMemberUnknownIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	setID, err := f.sets.CreateLiabilitiesSet(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, f.sets.AddMember(ctx, setID, uuid.New()), models.ErrNotFound)
	assert.ErrorIs(t, f.sets.AddMember(ctx, uuid.New(), uuid.New()), models.ErrNotFound)
}

func TestCreateSetDuplicateID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.sets.CreateLiabilitiesSet(ctx)
	require.NoError(t, err)

	// The well-known id is a singleton; reusing it for any other set fails.
	_, err = f.sets.CreateSet(ctx, f.cfg.LiabilitiesSetID, "EQUITY", f.cfg.JournalID)
	assert.ErrorIs(t, err, models.ErrDuplicate)
}

func TestAddLiabilitiesMemberByCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateAccount(ctx, "alice")
	require.NoError(t, err)
	_, err = f.svc.Deposit(ctx, "alice", decimal.NewFromInt(40))
	require.NoError(t, err)

	_, err = f.sets.CreateLiabilitiesSet(ctx)
	require.NoError(t, err)
	require.NoError(t, f.sets.AddLiabilitiesMember(ctx, "alice"))

	balance, err := f.sets.LiabilitiesBalance(ctx, f.cfg.Currency)
	require.NoError(t, err)
	assert.True(t, balance.Settled().Equal(decimal.NewFromInt(40)))

	assert.ErrorIs(t, f.sets.AddLiabilitiesMember(ctx, "nobody"), models.ErrNotFound)
}
