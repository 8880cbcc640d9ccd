package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/engine"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/interfaces"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/models"
)

var errOperationDone = errors.New("operation already finished")

type storedEntry struct {
	journalID uuid.UUID
	entry     models.Entry
}

// Store is an in-memory engine.EngineStore. All maps are guarded by a
// single mutex; velocity limit/control creation is staged on an operation
// and applied atomically on commit.
type Store struct {
	mu sync.Mutex

	templatesByCode map[string]models.TxTemplate
	journals        map[uuid.UUID]models.Journal
	accounts        map[uuid.UUID]models.Account
	accountsByCode  map[string]uuid.UUID
	sets            map[uuid.UUID]models.AccountSet
	setMembers      map[uuid.UUID]map[uuid.UUID]bool
	limits          map[uuid.UUID]models.VelocityLimit
	controls        map[uuid.UUID]models.VelocityControl
	controlLimits   map[uuid.UUID][]uuid.UUID
	attachments     map[uuid.UUID]map[uuid.UUID]models.TxParams // account -> control -> bindings
	transactions    map[uuid.UUID]models.PostedTransaction
	entries         []storedEntry
}

func NewStore() *Store {
	return &Store{
		templatesByCode: make(map[string]models.TxTemplate),
		journals:        make(map[uuid.UUID]models.Journal),
		accounts:        make(map[uuid.UUID]models.Account),
		accountsByCode:  make(map[string]uuid.UUID),
		sets:            make(map[uuid.UUID]models.AccountSet),
		setMembers:      make(map[uuid.UUID]map[uuid.UUID]bool),
		limits:          make(map[uuid.UUID]models.VelocityLimit),
		controls:        make(map[uuid.UUID]models.VelocityControl),
		controlLimits:   make(map[uuid.UUID][]uuid.UUID),
		attachments:     make(map[uuid.UUID]map[uuid.UUID]models.TxParams),
		transactions:    make(map[uuid.UUID]models.PostedTransaction),
	}
}

func (s *Store) SaveTemplate(ctx context.Context, tpl models.TxTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.templatesByCode[tpl.Code]; exists {
		return &models.DuplicateError{Kind: "template", Key: tpl.Code}
	}
	s.templatesByCode[tpl.Code] = tpl
	return nil
}

func (s *Store) TemplateByCode(ctx context.Context, code string) (models.TxTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tpl, ok := s.templatesByCode[code]
	if !ok {
		return models.TxTemplate{}, &models.NotFoundError{Kind: "template", Key: code}
	}
	return tpl, nil
}

func (s *Store) SaveJournal(ctx context.Context, journal models.Journal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.journals[journal.ID]; exists {
		return &models.DuplicateError{Kind: "journal", Key: journal.ID.String()}
	}
	s.journals[journal.ID] = journal
	return nil
}

func (s *Store) JournalByID(ctx context.Context, id uuid.UUID) (models.Journal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	journal, ok := s.journals[id]
	if !ok {
		return models.Journal{}, &models.NotFoundError{Kind: "journal", Key: id.String()}
	}
	return journal, nil
}

func (s *Store) SaveAccount(ctx context.Context, account models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.ID]; exists {
		return &models.DuplicateError{Kind: "account", Key: account.ID.String()}
	}
	if _, exists := s.accountsByCode[account.Code]; exists {
		return &models.DuplicateError{Kind: "account", Key: account.Code}
	}
	s.accounts[account.ID] = account
	s.accountsByCode[account.Code] = account.ID
	return nil
}

func (s *Store) AccountByID(ctx context.Context, id uuid.UUID) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return models.Account{}, &models.NotFoundError{Kind: "account", Key: id.String()}
	}
	return account, nil
}

func (s *Store) AccountByCode(ctx context.Context, code string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.accountsByCode[code]
	if !ok {
		return models.Account{}, &models.NotFoundError{Kind: "account", Key: code}
	}
	return s.accounts[id], nil
}

func (s *Store) Accounts(ctx context.Context) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make([]models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (s *Store) SaveAccountSet(ctx context.Context, set models.AccountSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sets[set.ID]; exists {
		return &models.DuplicateError{Kind: "account set", Key: set.ID.String()}
	}
	s.sets[set.ID] = set
	s.setMembers[set.ID] = make(map[uuid.UUID]bool)
	return nil
}

func (s *Store) SetByID(ctx context.Context, id uuid.UUID) (models.AccountSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[id]
	if !ok {
		return models.AccountSet{}, &models.NotFoundError{Kind: "account set", Key: id.String()}
	}
	return set, nil
}

// AddSetMember is idempotent: re-adding an existing member is a no-op.
func (s *Store) AddSetMember(ctx context.Context, setID, accountID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.setMembers[setID]
	if !ok {
		return &models.NotFoundError{Kind: "account set", Key: setID.String()}
	}
	if _, ok := s.accounts[accountID]; !ok {
		return &models.NotFoundError{Kind: "account", Key: accountID.String()}
	}
	members[accountID] = true
	return nil
}

func (s *Store) SetMembers(ctx context.Context, setID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.setMembers[setID]
	if !ok {
		return nil, &models.NotFoundError{Kind: "account set", Key: setID.String()}
	}
	ids := make([]uuid.UUID, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) Begin(ctx context.Context) (interfaces.OperationScope, error) {
	return &operation{store: s}, nil
}

func (s *Store) ControlByID(ctx context.Context, id uuid.UUID) (models.VelocityControl, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	control, ok := s.controls[id]
	if !ok {
		return models.VelocityControl{}, &models.NotFoundError{Kind: "velocity control", Key: id.String()}
	}
	return control, nil
}

func (s *Store) AttachControl(ctx context.Context, controlID, accountID uuid.UUID, bindings models.TxParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.controls[controlID]; !ok {
		return &models.NotFoundError{Kind: "velocity control", Key: controlID.String()}
	}
	if _, ok := s.accounts[accountID]; !ok {
		return &models.NotFoundError{Kind: "account", Key: accountID.String()}
	}
	byControl, ok := s.attachments[accountID]
	if !ok {
		byControl = make(map[uuid.UUID]models.TxParams)
		s.attachments[accountID] = byControl
	}
	byControl[controlID] = bindings
	return nil
}

func (s *Store) AttachedControls(ctx context.Context, accountID uuid.UUID) ([]engine.ControlAttachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var attachments []engine.ControlAttachment
	for controlID, bindings := range s.attachments[accountID] {
		att := engine.ControlAttachment{
			Control:  s.controls[controlID],
			Bindings: bindings,
		}
		for _, limitID := range s.controlLimits[controlID] {
			att.Limits = append(att.Limits, s.limits[limitID])
		}
		attachments = append(attachments, att)
	}
	return attachments, nil
}

func (s *Store) SaveTransaction(ctx context.Context, tx models.PostedTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[tx.ID]; exists {
		return &models.DuplicateError{Kind: "transaction", Key: tx.ID.String()}
	}
	s.transactions[tx.ID] = tx
	for _, entry := range tx.Entries {
		s.entries = append(s.entries, storedEntry{journalID: tx.JournalID, entry: entry})
	}
	return nil
}

func (s *Store) BalanceFor(ctx context.Context, journalID, accountID uuid.UUID, currency string) (models.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := models.Balance{Details: models.BalanceDetails{
		JournalID: journalID,
		SubjectID: accountID,
		Currency:  currency,
	}}
	for _, se := range s.entries {
		e := se.entry
		if se.journalID != journalID || e.AccountID != accountID || e.Currency != currency {
			continue
		}
		b.Details.EntryCount++
		switch e.Layer {
		case models.LayerPending:
			if e.Direction == models.Debit {
				b.Details.PendingDr = b.Details.PendingDr.Add(e.Amount)
			} else {
				b.Details.PendingCr = b.Details.PendingCr.Add(e.Amount)
			}
		default:
			if e.Direction == models.Debit {
				b.Details.DrBalance = b.Details.DrBalance.Add(e.Amount)
			} else {
				b.Details.CrBalance = b.Details.CrBalance.Add(e.Amount)
			}
		}
	}
	return b, nil
}

// operation stages velocity creations and applies them on commit under the
// store lock, so readers never observe a limit without its control linkage.
type operation struct {
	store    *Store
	limits   []models.VelocityLimit
	controls []models.VelocityControl
	links    [][2]uuid.UUID // control, limit
	done     bool
}

func (op *operation) CreateLimit(ctx context.Context, limit models.VelocityLimit) error {
	op.limits = append(op.limits, limit)
	return nil
}

func (op *operation) CreateControl(ctx context.Context, control models.VelocityControl) error {
	op.controls = append(op.controls, control)
	return nil
}

func (op *operation) LinkLimitToControl(ctx context.Context, controlID, limitID uuid.UUID) error {
	op.links = append(op.links, [2]uuid.UUID{controlID, limitID})
	return nil
}

func (op *operation) Commit(ctx context.Context) error {
	op.store.mu.Lock()
	defer op.store.mu.Unlock()

	if op.done {
		return &models.EngineError{Op: "commit", Err: errOperationDone}
	}
	op.done = true

	for _, limit := range op.limits {
		if _, exists := op.store.limits[limit.ID]; exists {
			return &models.DuplicateError{Kind: "velocity limit", Key: limit.ID.String()}
		}
	}
	for _, control := range op.controls {
		if _, exists := op.store.controls[control.ID]; exists {
			return &models.DuplicateError{Kind: "velocity control", Key: control.ID.String()}
		}
	}

	for _, limit := range op.limits {
		op.store.limits[limit.ID] = limit
	}
	for _, control := range op.controls {
		op.store.controls[control.ID] = control
	}
	for _, link := range op.links {
		op.store.controlLimits[link[0]] = append(op.store.controlLimits[link[0]], link[1])
	}
	return nil
}

func (op *operation) Rollback() error {
	op.done = true
	op.limits, op.controls, op.links = nil, nil, nil
	return nil
}

var _ engine.EngineStore = (*Store)(nil)
