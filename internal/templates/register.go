package templates

import (
	"context"
	"errors"

	"github.com/sheikh-saqib/ledger-accounting-engine/internal/config"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/interfaces"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/models"
)

// Register creates the template in the engine's registry. Registration is
// idempotent: a duplicate-code failure means the template is already live
// and is swallowed. Every other engine failure surfaces, so a broken
// bootstrap is not mistaken for a completed one.
func Register(ctx context.Context, engine interfaces.LedgerEngine, tpl models.TxTemplate) error {
	err := engine.CreateTemplate(ctx, tpl)
	if errors.Is(err, models.ErrDuplicate) {
		return nil
	}
	return err
}

// RegisterCanonical builds and registers the three canonical templates.
// Safe to call on every process start.
func RegisterCanonical(ctx context.Context, engine interfaces.LedgerEngine, cfg config.Config) error {
	for _, build := range []func(config.Config) (models.TxTemplate, error){Deposit, Withdrawal, Transfer} {
		tpl, err := build(cfg)
		if err != nil {
			return err
		}
		if err := Register(ctx, engine, tpl); err != nil {
			return err
		}
	}
	return nil
}
