package accountsets

import (
	"context"

	"github.com/google/uuid"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/config"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/interfaces"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/models"
)

const LiabilitiesSetName = "LIABILITIES"

// Aggregator maintains named groups of accounts and answers group-level
// balance queries. It holds no membership state itself; the engine owns the
// sets, so a balance always reflects membership at query time.
type Aggregator struct {
	engine interfaces.LedgerEngine
	cfg    config.Config
}

func New(engine interfaces.LedgerEngine, cfg config.Config) *Aggregator {
	return &Aggregator{engine: engine, cfg: cfg}
}

// CreateSet registers a new account set. Reusing an existing id, for a
// different name or otherwise, fails with a duplicate error from the engine.
func (a *Aggregator) CreateSet(ctx context.Context, id uuid.UUID, name string, journalID uuid.UUID) (uuid.UUID, error) {
	set := models.AccountSet{ID: id, Name: name, JournalID: journalID}
	if err := a.engine.CreateAccountSet(ctx, set); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// AddMember adds an account to a set. Re-adding an existing member is a
// no-op.
func (a *Aggregator) AddMember(ctx context.Context, setID, accountID uuid.UUID) error {
	return a.engine.AddSetMember(ctx, setID, accountID)
}

// AggregateBalance returns the summed balance over the set's current
// members, in the same shape as a single-account balance query.
func (a *Aggregator) AggregateBalance(ctx context.Context, setID uuid.UUID, currency string) (models.Balance, error) {
	return a.engine.QueryBalance(ctx, a.cfg.JournalID, setID, currency)
}

// CreateLiabilitiesSet creates the canonical liabilities set under its
// well-known id.
func (a *Aggregator) CreateLiabilitiesSet(ctx context.Context) (uuid.UUID, error) {
	return a.CreateSet(ctx, a.cfg.LiabilitiesSetID, LiabilitiesSetName, a.cfg.JournalID)
}

// AddLiabilitiesMember resolves an account by code and adds it to the
// liabilities set.
func (a *Aggregator) AddLiabilitiesMember(ctx context.Context, accountCode string) error {
	account, err := a.engine.FindAccountByCode(ctx, accountCode)
	if err != nil {
		return err
	}
	return a.AddMember(ctx, a.cfg.LiabilitiesSetID, account.ID)
}

// LiabilitiesBalance is the aggregate balance of the liabilities set.
func (a *Aggregator) LiabilitiesBalance(ctx context.Context, currency string) (models.Balance, error) {
	return a.AggregateBalance(ctx, a.cfg.LiabilitiesSetID, currency)
}
