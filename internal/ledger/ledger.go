package ledger

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/config"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/interfaces"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/models"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/models/events"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/templates"
	"github.com/shopspring/decimal"
)

// TopicTransactionPosted is the event-stream topic for committed postings.
const TopicTransactionPosted = "transaction_posted"

// Service is the posting invocation layer: it resolves accounts, binds
// concrete parameter values to registered templates and forwards them to
// the engine. It holds no mutable state of its own.
type Service struct {
	engine    interfaces.LedgerEngine
	publisher interfaces.EventPublisher
	cfg       config.Config
}

func New(engine interfaces.LedgerEngine, cfg config.Config) *Service {
	return &Service{engine: engine, cfg: cfg}
}

// WithPublisher enables event publishing for committed postings.
func (s *Service) WithPublisher(p interfaces.EventPublisher) *Service {
	s.publisher = p
	return s
}

// CreateJournal creates the canonical journal under its configured id.
func (s *Service) CreateJournal(ctx context.Context) (models.Journal, error) {
	journal := models.Journal{ID: s.cfg.JournalID, Name: "MAIN JOURNAL"}
	if err := s.engine.CreateJournal(ctx, journal); err != nil {
		return models.Journal{}, err
	}
	return journal, nil
}

// CreateAccount creates a credit-normal customer account. The name doubles
// as the lookup code.
func (s *Service) CreateAccount(ctx context.Context, name string) (models.Account, error) {
	account := models.Account{
		ID:                uuid.New(),
		Name:              name,
		Code:              name,
		NormalBalanceType: models.Credit,
	}
	if err := s.engine.CreateAccount(ctx, account); err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// InitAssetsAccount creates the debit-normal external assets account under
// its configured id.
func (s *Service) InitAssetsAccount(ctx context.Context) (models.Account, error) {
	account := models.Account{
		ID:                s.cfg.AssetsAccountID,
		Name:              "ASSETS",
		Code:              "ASSETS",
		NormalBalanceType: models.Debit,
	}
	if err := s.engine.CreateAccount(ctx, account); err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.engine.ListAccounts(ctx)
}

// Post binds the given parameters to a registered template and submits the
// posting. On success the resulting transaction is published to the event
// stream when a publisher is configured.
func (s *Service) Post(ctx context.Context, templateCode string, params models.TxParams) (models.PostedTransaction, error) {
	tx, err := s.engine.PostTransaction(ctx, uuid.New(), templateCode, params)
	if err != nil {
		return models.PostedTransaction{}, err
	}
	s.publish(tx)
	return tx, nil
}

// Deposit posts an external inflow to the account with the given code.
func (s *Service) Deposit(ctx context.Context, accountCode string, amount decimal.Decimal) (models.PostedTransaction, error) {
	recipient, err := s.engine.FindAccountByCode(ctx, accountCode)
	if err != nil {
		return models.PostedTransaction{}, err
	}
	params := models.NewTxParams().
		SetUUID("journal_id", s.cfg.JournalID).
		SetUUID("assets", s.cfg.AssetsAccountID).
		SetUUID("recipient", recipient.ID).
		SetDecimal("amount", amount)
	return s.Post(ctx, templates.CodeDeposit, params)
}

// Withdraw posts an external outflow from the account with the given code.
func (s *Service) Withdraw(ctx context.Context, accountCode string, amount decimal.Decimal) (models.PostedTransaction, error) {
	sender, err := s.engine.FindAccountByCode(ctx, accountCode)
	if err != nil {
		return models.PostedTransaction{}, err
	}
	params := models.NewTxParams().
		SetUUID("journal_id", s.cfg.JournalID).
		SetUUID("assets", s.cfg.AssetsAccountID).
		SetUUID("sender", sender.ID).
		SetDecimal("amount", amount)
	return s.Post(ctx, templates.CodeWithdrawal, params)
}

// Transfer moves funds between two accounts resolved by code.
func (s *Service) Transfer(ctx context.Context, senderCode, recipientCode string, amount decimal.Decimal) (models.PostedTransaction, error) {
	sender, err := s.engine.FindAccountByCode(ctx, senderCode)
	if err != nil {
		return models.PostedTransaction{}, err
	}
	recipient, err := s.engine.FindAccountByCode(ctx, recipientCode)
	if err != nil {
		return models.PostedTransaction{}, err
	}
	params := models.NewTxParams().
		SetUUID("journal_id", s.cfg.JournalID).
		SetUUID("sender", sender.ID).
		SetUUID("recipient", recipient.ID).
		SetDecimal("amount", amount)
	return s.Post(ctx, templates.CodeTransfer, params)
}

// AccountBalance resolves an account by code and returns its balance in the
// given currency.
func (s *Service) AccountBalance(ctx context.Context, accountCode, currency string) (models.Balance, error) {
	account, err := s.engine.FindAccountByCode(ctx, accountCode)
	if err != nil {
		return models.Balance{}, err
	}
	return s.engine.QueryBalance(ctx, s.cfg.JournalID, account.ID, currency)
}

func (s *Service) publish(tx models.PostedTransaction) {
	if s.publisher == nil {
		return
	}
	event := events.TransactionPosted{
		TransactionID: tx.ID.String(),
		TemplateCode:  tx.TemplateCode,
		JournalID:     tx.JournalID.String(),
		Effective:     tx.Effective,
		OccurredAt:    time.Now().UTC(),
	}
	for _, e := range tx.Entries {
		event.Entries = append(event.Entries, events.PostedEntry{
			AccountID: e.AccountID.String(),
			EntryType: e.EntryType,
			Layer:     string(e.Layer),
			Direction: string(e.Direction),
			Amount:    e.Amount,
			Currency:  e.Currency,
		})
	}
	// The posting already committed; a publish failure must not fail it.
	if err := s.publisher.Publish(TopicTransactionPosted, event); err != nil {
		log.Printf("publish %s: %v", TopicTransactionPosted, err)
	}
}
