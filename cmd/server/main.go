package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/ledger-accounting-engine/internal/accountsets"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/config"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/engine"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/engine/memory"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/engine/postgres"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/events/kafka"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/ledger"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/models"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/templates"
	"github.com/sheikh-saqib/ledger-accounting-engine/internal/velocity"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	var store engine.EngineStore
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Fatal(err)
		}
		pgStore := postgres.NewStore(db)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			log.Fatal(err)
		}
		store = pgStore
	} else {
		log.Println("PG_CON not set, using in-memory store")
		store = memory.NewStore()
	}

	eng := engine.New(store)
	svc := ledger.New(eng, cfg)
	sets := accountsets.New(eng, cfg)

	if len(cfg.KafkaBrokers) > 0 {
		svc.WithPublisher(kafka.NewPublisher(cfg.KafkaBrokers, ledger.TopicTransactionPosted))
	}

	// Template registration is idempotent, so every start re-runs it.
	if err := templates.RegisterCanonical(ctx, eng, cfg); err != nil {
		log.Fatal(err)
	}

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	http.HandleFunc("/journal", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		journal, err := svc.CreateJournal(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, journal)
	})

	http.HandleFunc("/accounts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			accounts, err := svc.ListAccounts(r.Context())
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, http.StatusOK, accounts)
		case http.MethodPost:
			var req struct {
				Name string `json:"name"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}
			account, err := svc.CreateAccount(r.Context(), req.Name)
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, account)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	http.HandleFunc("/accounts/assets", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		account, err := svc.InitAssetsAccount(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, account)
	})

	http.HandleFunc("/accounts/balance", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "code is a mandatory field", http.StatusBadRequest)
			return
		}
		balance, err := svc.AccountBalance(r.Context(), code, cfg.Currency)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeBalance(w, balance)
	})

	http.HandleFunc("/deposit", postMovement(func(ctx context.Context, req movementRequest) (models.PostedTransaction, error) {
		return svc.Deposit(ctx, req.Account, req.Amount)
	}))
	http.HandleFunc("/withdraw", postMovement(func(ctx context.Context, req movementRequest) (models.PostedTransaction, error) {
		return svc.Withdraw(ctx, req.Account, req.Amount)
	}))

	http.HandleFunc("/transfer", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Sender    string          `json:"sender"`
			Recipient string          `json:"recipient"`
			Amount    decimal.Decimal `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Amount.Cmp(decimal.Zero) <= 0 {
			http.Error(w, "amount must be positive", http.StatusBadRequest)
			return
		}
		tx, err := svc.Transfer(r.Context(), req.Sender, req.Recipient, req.Amount)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
	})

	http.HandleFunc("/account-sets/liabilities", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		id, err := sets.CreateLiabilitiesSet(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"set_id": id.String()})
	})

	http.HandleFunc("/account-sets/liabilities/members", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Account string `json:"account"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Account == "" {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := sets.AddLiabilitiesMember(r.Context(), req.Account); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	http.HandleFunc("/account-sets/liabilities/balance", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		balance, err := sets.LiabilitiesBalance(r.Context(), cfg.Currency)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeBalance(w, balance)
	})

	http.HandleFunc("/velocity/overdraft", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := velocity.InitOverdraftProtection(r.Context(), eng, cfg); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	http.HandleFunc("/velocity/overdraft/attach", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Account string `json:"account"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Account == "" {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := velocity.AttachOverdraft(r.Context(), eng, cfg, req.Account); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	log.Println("Starting server on", cfg.HTTPAddr)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, nil))
}

type movementRequest struct {
	Account string          `json:"account"`
	Amount  decimal.Decimal `json:"amount"`
}

func postMovement(post func(context.Context, movementRequest) (models.PostedTransaction, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req movementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Amount.Cmp(decimal.Zero) <= 0 {
			http.Error(w, "amount must be positive", http.StatusBadRequest)
			return
		}
		tx, err := post(r.Context(), req)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
	}
}

func writeBalance(w http.ResponseWriter, balance models.Balance) {
	writeJSON(w, http.StatusOK, struct {
		Settled decimal.Decimal       `json:"settled"`
		Pending decimal.Decimal       `json:"pending"`
		Details models.BalanceDetails `json:"details"`
	}{
		Settled: balance.Settled(),
		Pending: balance.Pending(),
		Details: balance.Details,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeErr maps the error taxonomy onto http status codes. Engine failures
// stay 500s; business-rule rejections are client errors.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrDuplicate):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrLimitExceeded):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, models.ErrSchema), errors.Is(err, models.ErrBuild):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
