package models

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskQueued     TaskStatus = "queued"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskQueued, TaskProcessing, TaskCompleted, TaskFailed:
		return TaskStatus(s), nil
	}
	return "", fmt.Errorf("unrecognized task status %q", s)
}

func (s TaskStatus) String() string { return string(s) }

// Task is one unit of background work (watermark regeneration, archival).
// Consumed by polling, not by ad hoc spawned processes.
type Task struct {
	ID        uuid.UUID
	ShootID   uuid.UUID
	Kind      string
	Status    TaskStatus
	Payload   json.RawMessage
	Attempts  int
	LastError sql.NullString
	CreatedAt time.Time
	UpdatedAt time.Time
}
