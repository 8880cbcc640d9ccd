package templates

import (
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/config"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/models"
)

const CodeWithdrawal = "WITHDRAWAL"

// Withdrawal is the mirror of Deposit: the sender account is debited and
// the external assets account is credited.
func Withdrawal(cfg config.Config) (models.TxTemplate, error) {
	return NewBuilder(CodeWithdrawal).
		Param("sender", models.ParamUUID).
		Param("assets", models.ParamUUID).
		Param("journal_id", models.ParamUUID).
		Param("amount", models.ParamDecimal).
		Transaction(models.Param("journal_id"), models.Fn(models.FnDate)).
		Entry(models.TemplateEntry{
			EntryType: "WITHDRAWAL_DR",
			AccountID: models.Param("sender"),
			Layer:     models.LayerSettled,
			Direction: models.Debit,
			Amount:    models.Param("amount"),
			Currency:  cfg.Currency,
		}).
		Entry(models.TemplateEntry{
			EntryType: "WITHDRAWAL_CR",
			AccountID: models.Param("assets"),
			Layer:     models.LayerSettled,
			Direction: models.Credit,
			Amount:    models.Param("amount"),
			Currency:  cfg.Currency,
		}).
		Build()
}
