package velocity

import (
	"context"

	"github.com/google/uuid"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/config"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/interfaces"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/models"
	"github.com/shopspring/decimal"
)

// CreateControlWithLimits creates the limits, the control and their linkage
// inside one engine operation. A concurrent reader never observes a limit
// without its control or an unlinked control; on any failure the whole
// scope rolls back.
func CreateControlWithLimits(ctx context.Context, engine interfaces.LedgerEngine, control models.VelocityControl, limits []models.VelocityLimit) (err error) {
	op, err := engine.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = op.Rollback()
		}
	}()

	for _, limit := range limits {
		if err = op.CreateLimit(ctx, limit); err != nil {
			return err
		}
	}
	if err = op.CreateControl(ctx, control); err != nil {
		return err
	}
	for _, limit := range limits {
		if err = op.LinkLimitToControl(ctx, control.ID, limit.ID); err != nil {
			return err
		}
	}
	return op.Commit(ctx)
}

// AttachToAccount attaches a control to an account. Bindings may be empty;
// a control with no parameters applies unconditionally.
func AttachToAccount(ctx context.Context, engine interfaces.LedgerEngine, controlID, accountID uuid.UUID, bindings models.TxParams) error {
	if bindings == nil {
		bindings = models.NewTxParams()
	}
	return engine.AttachControlToAccount(ctx, controlID, accountID, bindings)
}

// OverdraftLimit is the canonical overdraft-protection limit: a single
// zero-threshold debit limit on the settled layer with no window, so any
// posting that would take settled funds below zero is refused.
func OverdraftLimit() (models.VelocityLimit, error) {
	return NewLimitBuilder("Overdraft Protection").
		Description("Limit to prevent an account going negative").
		BalanceLimit(models.BalanceLimit{
			Layer:     models.LayerSettled,
			Amount:    models.Lit(decimal.Zero),
			Direction: models.Debit,
		}).
		Build()
}

// OverdraftControl bundles the overdraft limit under the process-wide
// control id from the bootstrap config.
func OverdraftControl(cfg config.Config) (models.VelocityControl, error) {
	return NewControlBuilder("Customer Account Control").
		ID(cfg.OverdraftControlID).
		Description("Constrains movements of funds on customer accounts").
		Build()
}

// InitOverdraftProtection creates the canonical overdraft limit and control
// as one atomic unit.
func InitOverdraftProtection(ctx context.Context, engine interfaces.LedgerEngine, cfg config.Config) error {
	limit, err := OverdraftLimit()
	if err != nil {
		return err
	}
	control, err := OverdraftControl(cfg)
	if err != nil {
		return err
	}
	return CreateControlWithLimits(ctx, engine, control, []models.VelocityLimit{limit})
}

// AttachOverdraft resolves an account by code and puts it under the
// canonical overdraft control.
func AttachOverdraft(ctx context.Context, engine interfaces.LedgerEngine, cfg config.Config, accountCode string) error {
	account, err := engine.FindAccountByCode(ctx, accountCode)
	if err != nil {
		return err
	}
	return AttachToAccount(ctx, engine, cfg.OverdraftControlID, account.ID, nil)
}
