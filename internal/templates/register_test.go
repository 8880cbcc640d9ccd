package templates_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/config"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/engine"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/engine/memory"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestRegisterIdempotent(t *testing.T) {
	ctx := context.Background()
	eng := engine.New(memory.NewStore())
	cfg := testConfig()

	first, err := templates.Deposit(cfg)
	require.NoError(t, err)
	require.NoError(t, templates.Register(ctx, eng, first))

	// Re-registering the same code is swallowed, and the original template
	// stays live.
	second, err := templates.Deposit(cfg)
	require.NoError(t, err)
	assert.NoError(t, templates.Register(ctx, eng, second))

	live, err := eng.FindTemplate(ctx, templates.CodeDeposit)
	require.NoError(t, err)
	assert.Equal(t, first.ID, live.ID)
}

func TestRegisterCanonicalRepeatable(t *testing.T) {
	ctx := context.Background()
	eng := engine.New(memory.NewStore())
	cfg := testConfig()

	require.NoError(t, templates.RegisterCanonical(ctx, eng, cfg))
	assert.NoError(t, templates.RegisterCanonical(ctx, eng, cfg))

	for _, code := range []string{templates.CodeDeposit, templates.CodeWithdrawal, templates.CodeTransfer} {
		_, err := eng.FindTemplate(ctx, code)
		assert.NoError(t, err)
	}
}
