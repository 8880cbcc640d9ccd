package config

import (
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Config carries the process-wide canonical identifiers and connection
// settings. The fixed ids are injected everywhere instead of being scattered
// as literals, so tests can substitute isolated ids per run.
type Config struct {
	JournalID          uuid.UUID
	AssetsAccountID    uuid.UUID
	LiabilitiesSetID   uuid.UUID
	OverdraftControlID uuid.UUID
	Currency           string

	PostgresDSN  string
	KafkaBrokers []string
	HTTPAddr     string
}

// Default returns the canonical production identifiers.
func Default() Config {
	return Config{
		JournalID:          uuid.MustParse("00000000-0000-0000-0000-000000000000"),
		AssetsAccountID:    uuid.MustParse("00000000-0000-0000-0000-000000000000"),
		LiabilitiesSetID:   uuid.MustParse("10000000-0000-0000-0000-000000000000"),
		OverdraftControlID: uuid.MustParse("20000000-0000-0000-0000-000000000000"),
		Currency:           "BTC",
		HTTPAddr:           ":8080",
	}
}

// Load reads configuration from the environment, with .env support for local
// development. A missing .env file is not an error. Unset variables fall
// back to the defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if v := os.Getenv("LEDGER_JOURNAL_ID"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return Config{}, err
		}
		cfg.JournalID = id
	}
	if v := os.Getenv("LEDGER_ASSETS_ACCOUNT_ID"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return Config{}, err
		}
		cfg.AssetsAccountID = id
	}
	if v := os.Getenv("LEDGER_LIABILITIES_SET_ID"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return Config{}, err
		}
		cfg.LiabilitiesSetID = id
	}
	if v := os.Getenv("LEDGER_OVERDRAFT_CONTROL_ID"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return Config{}, err
		}
		cfg.OverdraftControlID = id
	}
	if v := os.Getenv("LEDGER_CURRENCY"); v != "" {
		cfg.Currency = v
	}
	if v := os.Getenv("PG_CON"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = strings.Split(v, ",")
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}

	return cfg, nil
}
