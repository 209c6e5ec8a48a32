package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"shootflow-backend/internal/models"
)

// Read-side queries for handlers. These run outside the shoot lock; anything
// that mutates goes through WithShoot instead.

func (c *Client) ListFiles(ctx context.Context, shootID uuid.UUID) ([]*models.MediaFile, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+fileColumns+` FROM shoot_files WHERE shoot_id = $1 ORDER BY created_at, id`,
		shootID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []*models.MediaFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (c *Client) GetFile(ctx context.Context, shootID, fileID uuid.UUID) (*models.MediaFile, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM shoot_files WHERE id = $1 AND shoot_id = $2`,
		fileID, shootID)
	f, err := scanFile(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return f, nil
}

func (c *Client) ListLogs(ctx context.Context, shootID uuid.UUID, limit int) ([]*models.ActivityLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, shoot_id, user_id, action, details, metadata, created_at
		FROM shoot_activity_logs
		WHERE shoot_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, shootID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.ActivityLogEntry
	for rows.Next() {
		var e models.ActivityLogEntry
		var metadata []byte
		if err := rows.Scan(&e.ID, &e.ShootID, &e.UserID, &e.Action, &e.Details, &metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		e.Metadata = metadata
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (c *Client) ListReschedules(ctx context.Context, shootID uuid.UUID) ([]*models.RescheduleRequest, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, shoot_id, requested_by, original_date, requested_date,
		       requested_time, reason, status, reviewed_at, approved_by, created_at
		FROM shoot_reschedule_requests
		WHERE shoot_id = $1
		ORDER BY created_at DESC
	`, shootID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reschedule requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.RescheduleRequest
	for rows.Next() {
		r, err := scanReschedule(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}
