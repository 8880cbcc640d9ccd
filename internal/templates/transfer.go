package templates

import (
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/config"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/models"
)

const CodeTransfer = "TRANSFER"

// Transfer moves funds between two internal accounts; no external account
// is involved.
func Transfer(cfg config.Config) (models.TxTemplate, error) {
	return NewBuilder(CodeTransfer).
		Param("recipient", models.ParamUUID).
		Param("sender", models.ParamUUID).
		Param("journal_id", models.ParamUUID).
		Param("amount", models.ParamDecimal).
		Transaction(models.Param("journal_id"), models.Fn(models.FnDate)).
		Entry(models.TemplateEntry{
			EntryType: "TRANSFER_DR",
			AccountID: models.Param("sender"),
			Layer:     models.LayerSettled,
			Direction: models.Debit,
			Amount:    models.Param("amount"),
			Currency:  cfg.Currency,
		}).
		Entry(models.TemplateEntry{
			EntryType: "TRANSFER_CR",
			AccountID: models.Param("recipient"),
			Layer:     models.LayerSettled,
			Direction: models.Credit,
			Amount:    models.Param("amount"),
			Currency:  cfg.Currency,
		}).
		Build()
}
