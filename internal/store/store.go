// Package store is the database/sql implementation of the workflow's
// persistence contract. One shoot row is the lock boundary: every mutating
// unit opens a transaction and takes the row with SELECT ... FOR UPDATE.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"shootflow-backend/internal/models"
	"shootflow-backend/internal/workflow"
)

type Client struct {
	db *sql.DB
}

func NewClient(connectionString string) (*Client, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Client{db: db}, nil
}

func (c *Client) Close() error { return c.db.Close() }

// DB exposes the underlying handle for components that manage their own
// queries (task queue, availability checker).
func (c *Client) DB() *sql.DB { return c.db }

const shootColumns = `
	id, client_id, photographer_id, editor_id, rep_id,
	address, property_slug,
	scheduled_at, scheduled_time, workflow_status,
	is_flagged, admin_issue_notes, hold_reason,
	photos_uploaded_at, submitted_for_review_at, admin_verified_at, verified_by,
	issues_resolved_at, issues_resolved_by, completed_at,
	approved_at, approved_by, declined_at, declined_by, declined_reason,
	cancellation_requested_at, cancellation_requested_by, cancellation_requested_reason,
	expected_raw_count, expected_final_count, raw_photo_count, edited_photo_count,
	raw_missing_count, edited_missing_count, missing_raw, missing_final,
	created_by, updated_by, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShoot(row rowScanner) (*models.Shoot, error) {
	var s models.Shoot
	var rawStatus string
	err := row.Scan(
		&s.ID, &s.ClientID, &s.PhotographerID, &s.EditorID, &s.RepID,
		&s.Address, &s.PropertySlug,
		&s.ScheduledAt, &s.ScheduledTime, &rawStatus,
		&s.IsFlagged, &s.AdminIssueNotes, &s.HoldReason,
		&s.PhotosUploadedAt, &s.SubmittedForReviewAt, &s.AdminVerifiedAt, &s.VerifiedBy,
		&s.IssuesResolvedAt, &s.IssuesResolvedBy, &s.CompletedAt,
		&s.ApprovedAt, &s.ApprovedBy, &s.DeclinedAt, &s.DeclinedBy, &s.DeclinedReason,
		&s.CancellationRequestedAt, &s.CancellationRequestedBy, &s.CancellationRequestedReason,
		&s.ExpectedRawCount, &s.ExpectedFinalCount, &s.RawPhotoCount, &s.EditedPhotoCount,
		&s.RawMissingCount, &s.EditedMissingCount, &s.MissingRaw, &s.MissingFinal,
		&s.CreatedBy, &s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	// Legacy rows may carry synonym values; normalize once here.
	s.Status, err = models.ParseStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("shoot %s: %w", s.ID, err)
	}
	return &s, nil
}

func (c *Client) GetShoot(ctx context.Context, id uuid.UUID) (*models.Shoot, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+shootColumns+` FROM shoots WHERE id = $1`, id)
	shoot, err := scanShoot(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get shoot: %w", err)
	}
	return shoot, nil
}

func (c *Client) CreateShoot(ctx context.Context, shoot *models.Shoot, entry *models.ActivityLogEntry) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO shoots (
			id, client_id, photographer_id, editor_id, rep_id, address,
			scheduled_at, scheduled_time, status, workflow_status,
			expected_raw_count, expected_final_count,
			created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9, $10, $11, $12, $13, $14)
	`, shoot.ID, shoot.ClientID, shoot.PhotographerID, shoot.EditorID, shoot.RepID,
		shoot.Address, shoot.ScheduledAt, shoot.ScheduledTime, shoot.Status.String(),
		shoot.ExpectedRawCount, shoot.ExpectedFinalCount,
		shoot.CreatedBy, shoot.CreatedAt, shoot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create shoot: %w", err)
	}

	if err := insertLog(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

// WithShoot runs fn inside one transaction with the shoot row locked.
// Concurrent transitions for the same shoot serialize here; different shoots
// never contend.
func (c *Client) WithShoot(ctx context.Context, shootID uuid.UUID, fn func(workflow.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+shootColumns+` FROM shoots WHERE id = $1 FOR UPDATE`, shootID)
	shoot, err := scanShoot(row)
	if err != nil {
		return fmt.Errorf("failed to lock shoot: %w", err)
	}

	if err := fn(&shootTx{ctx: ctx, tx: tx, shoot: shoot}); err != nil {
		return err
	}
	return tx.Commit()
}

func (c *Client) GetReschedule(ctx context.Context, id uuid.UUID) (*models.RescheduleRequest, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, shoot_id, requested_by, original_date, requested_date,
		       requested_time, reason, status, reviewed_at, approved_by, created_at
		FROM shoot_reschedule_requests
		WHERE id = $1
	`, id)
	return scanReschedule(row)
}

func scanReschedule(row rowScanner) (*models.RescheduleRequest, error) {
	var r models.RescheduleRequest
	var rawStatus string
	err := row.Scan(
		&r.ID, &r.ShootID, &r.RequestedBy, &r.OriginalDate, &r.RequestedDate,
		&r.RequestedTime, &r.Reason, &rawStatus, &r.ReviewedAt, &r.ApprovedBy, &r.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get reschedule request: %w", err)
	}
	r.Status, err = models.ParseRescheduleStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func insertLog(ctx context.Context, tx *sql.Tx, e *models.ActivityLogEntry) error {
	metadata := e.Metadata
	if metadata == nil {
		metadata = []byte("{}")
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO shoot_activity_logs (id, shoot_id, user_id, action, details, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.ShootID, e.UserID, e.Action, e.Details, []byte(metadata), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append activity log: %w", err)
	}
	return nil
}
