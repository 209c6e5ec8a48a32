// Package tasks is a Postgres-backed background queue. Work triggered by
// workflow transitions (watermark regeneration, archival) is enqueued as a
// row and consumed by a polling runner, so a crash between transition and
// side effect loses nothing.
package tasks

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shootflow-backend/internal/models"
)

type Queue struct {
	db *sql.DB
}

func NewQueue(db *sql.DB) *Queue {
	return &Queue{db: db}
}

func (q *Queue) Enqueue(ctx context.Context, shootID uuid.UUID, kind string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode task payload: %w", err)
	}
	if payload == nil {
		body = []byte("{}")
	}
	now := time.Now()
	_, err = q.db.ExecContext(ctx, `
		INSERT INTO tasks (id, shoot_id, kind, status, payload, attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $6)
	`, uuid.New(), shootID, kind, models.TaskQueued.String(), body, now)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// claim takes the oldest queued task, if any, and marks it processing. The
// SKIP LOCKED read lets multiple runners share one table without contention.
func (q *Queue) claim(ctx context.Context) (*models.Task, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var t models.Task
	var rawStatus string
	var payload []byte
	err = tx.QueryRowContext(ctx, `
		SELECT id, shoot_id, kind, status, payload, attempts, last_error, created_at, updated_at
		FROM tasks
		WHERE status = 'queued'
		ORDER BY created_at
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`).Scan(&t.ID, &t.ShootID, &t.Kind, &rawStatus, &payload, &t.Attempts, &t.LastError, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim task: %w", err)
	}
	t.Payload = payload
	if t.Status, err = models.ParseTaskStatus(rawStatus); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE tasks SET status = 'processing', attempts = attempts + 1, updated_at = NOW()
		WHERE id = $1
	`, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark task processing: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	t.Status = models.TaskProcessing
	t.Attempts++
	return &t, nil
}

func (q *Queue) finish(ctx context.Context, id uuid.UUID, taskErr error) error {
	if taskErr == nil {
		_, err := q.db.ExecContext(ctx,
			`UPDATE tasks SET status = 'completed', last_error = NULL, updated_at = NOW() WHERE id = $1`, id)
		return err
	}
	_, err := q.db.ExecContext(ctx,
		`UPDATE tasks SET status = 'failed', last_error = $2, updated_at = NOW() WHERE id = $1`,
		id, taskErr.Error())
	return err
}
