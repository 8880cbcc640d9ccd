package templates

import (
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/config"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/models"
)

const CodeDeposit = "DEPOSIT"

// Deposit models an external inflow: the recipient account is credited and
// the external assets account carries the contra debit, so the two legs net
// to zero.
func Deposit(cfg config.Config) (models.TxTemplate, error) {
	return NewBuilder(CodeDeposit).
		Param("recipient", models.ParamUUID).
		Param("assets", models.ParamUUID).
		Param("journal_id", models.ParamUUID).
		Param("amount", models.ParamDecimal).
		Transaction(models.Param("journal_id"), models.Fn(models.FnDate)).
		Entry(models.TemplateEntry{
			EntryType: "DEPOSIT_CR",
			AccountID: models.Param("recipient"),
			Layer:     models.LayerSettled,
			Direction: models.Credit,
			Amount:    models.Param("amount"),
			Currency:  cfg.Currency,
		}).
		Entry(models.TemplateEntry{
			EntryType: "DEPOSIT_DR",
			AccountID: models.Param("assets"),
			Layer:     models.LayerSettled,
			Direction: models.Debit,
			Amount:    models.Param("amount"),
			Currency:  cfg.Currency,
		}).
		Build()
}
