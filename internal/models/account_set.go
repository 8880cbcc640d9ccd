package models

import "github.com/google/uuid"

// AccountSet is a named group of accounts whose combined balance can be
// queried as one unit. Membership is many-to-many and lives in the engine;
// the set never caches a balance.
type AccountSet struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	JournalID uuid.UUID `json:"journal_id"`
}
