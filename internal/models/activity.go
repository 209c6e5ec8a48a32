package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActivityLogEntry is an append-only audit record. Entries are never mutated
// or deleted.
type ActivityLogEntry struct {
	ID       uuid.UUID
	ShootID  uuid.UUID
	UserID   uuid.NullUUID
	Action   string
	Details  string
	Metadata json.RawMessage

	CreatedAt time.Time
}
