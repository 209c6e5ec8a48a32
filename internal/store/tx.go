package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shootflow-backend/internal/models"
)

// shootTx is the view inside one WithShoot unit. The shoot row is already
// locked when it is handed to the workflow callback.
type shootTx struct {
	ctx   context.Context
	tx    *sql.Tx
	shoot *models.Shoot
}

func (t *shootTx) Shoot() *models.Shoot { return t.shoot }

func (t *shootTx) SaveShoot() error {
	s := t.shoot
	s.UpdatedAt = time.Now()
	// status and workflow_status stay mirrored on every write so readers of
	// either column see the same value.
	_, err := t.tx.ExecContext(t.ctx, `
		UPDATE shoots SET
			photographer_id = $2, editor_id = $3, rep_id = $4,
			scheduled_at = $5, scheduled_time = $6,
			status = $7, workflow_status = $7,
			is_flagged = $8, admin_issue_notes = $9, hold_reason = $10,
			photos_uploaded_at = $11, submitted_for_review_at = $12,
			admin_verified_at = $13, verified_by = $14,
			issues_resolved_at = $15, issues_resolved_by = $16, completed_at = $17,
			approved_at = $18, approved_by = $19,
			declined_at = $20, declined_by = $21, declined_reason = $22,
			cancellation_requested_at = $23, cancellation_requested_by = $24,
			cancellation_requested_reason = $25,
			expected_raw_count = $26, expected_final_count = $27,
			raw_photo_count = $28, edited_photo_count = $29,
			raw_missing_count = $30, edited_missing_count = $31,
			missing_raw = $32, missing_final = $33,
			updated_by = $34, updated_at = $35
		WHERE id = $1
	`, s.ID,
		s.PhotographerID, s.EditorID, s.RepID,
		s.ScheduledAt, s.ScheduledTime,
		s.Status.String(),
		s.IsFlagged, s.AdminIssueNotes, s.HoldReason,
		s.PhotosUploadedAt, s.SubmittedForReviewAt,
		s.AdminVerifiedAt, s.VerifiedBy,
		s.IssuesResolvedAt, s.IssuesResolvedBy, s.CompletedAt,
		s.ApprovedAt, s.ApprovedBy,
		s.DeclinedAt, s.DeclinedBy, s.DeclinedReason,
		s.CancellationRequestedAt, s.CancellationRequestedBy,
		s.CancellationRequestedReason,
		s.ExpectedRawCount, s.ExpectedFinalCount,
		s.RawPhotoCount, s.EditedPhotoCount,
		s.RawMissingCount, s.EditedMissingCount,
		s.MissingRaw, s.MissingFinal,
		s.UpdatedBy, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update shoot: %w", err)
	}
	return nil
}

const fileColumns = `
	id, shoot_id, filename, kind, workflow_stage, flag_reason,
	is_cover, is_favorite, storage_path, file_size, mime_type,
	verified_at, verified_by, verification_notes, comments,
	created_at, updated_at`

func scanFile(row rowScanner) (*models.MediaFile, error) {
	var f models.MediaFile
	var rawKind, rawStage string
	var comments []byte
	err := row.Scan(
		&f.ID, &f.ShootID, &f.Filename, &rawKind, &rawStage, &f.FlagReason,
		&f.IsCover, &f.IsFavorite, &f.StoragePath, &f.FileSize, &f.MimeType,
		&f.VerifiedAt, &f.VerifiedBy, &f.VerificationNotes, &comments,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if f.Kind, err = models.ParseMediaKind(rawKind); err != nil {
		return nil, fmt.Errorf("file %s: %w", f.ID, err)
	}
	if f.Stage, err = models.ParseStage(rawStage); err != nil {
		return nil, fmt.Errorf("file %s: %w", f.ID, err)
	}
	if len(comments) > 0 {
		if err := json.Unmarshal(comments, &f.Comments); err != nil {
			return nil, fmt.Errorf("file %s: failed to decode comments: %w", f.ID, err)
		}
	}
	return &f, nil
}

func (t *shootTx) Files() ([]*models.MediaFile, error) {
	rows, err := t.tx.QueryContext(t.ctx,
		`SELECT `+fileColumns+` FROM shoot_files WHERE shoot_id = $1 ORDER BY created_at, id`,
		t.shoot.ID)
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

func (t *shootTx) File(id uuid.UUID) (*models.MediaFile, error) {
	row := t.tx.QueryRowContext(t.ctx,
		`SELECT `+fileColumns+` FROM shoot_files WHERE id = $1 AND shoot_id = $2`,
		id, t.shoot.ID)
	f, err := scanFile(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return f, nil
}

func commentsJSON(f *models.MediaFile) ([]byte, error) {
	if len(f.Comments) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(f.Comments)
}

func (t *shootTx) InsertFile(f *models.MediaFile) error {
	comments, err := commentsJSON(f)
	if err != nil {
		return fmt.Errorf("failed to encode comments: %w", err)
	}
	_, err = t.tx.ExecContext(t.ctx, `
		INSERT INTO shoot_files (
			id, shoot_id, filename, kind, workflow_stage, flag_reason,
			is_cover, is_favorite, storage_path, file_size, mime_type,
			verified_at, verified_by, verification_notes, comments,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, f.ID, f.ShootID, f.Filename, f.Kind.String(), f.Stage.String(), f.FlagReason,
		f.IsCover, f.IsFavorite, f.StoragePath, f.FileSize, f.MimeType,
		f.VerifiedAt, f.VerifiedBy, f.VerificationNotes, comments,
		f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}
	return nil
}

func (t *shootTx) SaveFile(f *models.MediaFile) error {
	comments, err := commentsJSON(f)
	if err != nil {
		return fmt.Errorf("failed to encode comments: %w", err)
	}
	f.UpdatedAt = time.Now()
	_, err = t.tx.ExecContext(t.ctx, `
		UPDATE shoot_files SET
			filename = $2, kind = $3, workflow_stage = $4, flag_reason = $5,
			is_cover = $6, is_favorite = $7, storage_path = $8,
			file_size = $9, mime_type = $10,
			verified_at = $11, verified_by = $12, verification_notes = $13,
			comments = $14, updated_at = $15
		WHERE id = $1
	`, f.ID, f.Filename, f.Kind.String(), f.Stage.String(), f.FlagReason,
		f.IsCover, f.IsFavorite, f.StoragePath,
		f.FileSize, f.MimeType,
		f.VerifiedAt, f.VerifiedBy, f.VerificationNotes,
		comments, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update file: %w", err)
	}
	return nil
}

func (t *shootTx) DeleteFile(id uuid.UUID) error {
	_, err := t.tx.ExecContext(t.ctx,
		`DELETE FROM shoot_files WHERE id = $1 AND shoot_id = $2`, id, t.shoot.ID)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (t *shootTx) ClearCover() error {
	_, err := t.tx.ExecContext(t.ctx,
		`UPDATE shoot_files SET is_cover = FALSE WHERE shoot_id = $1 AND is_cover`, t.shoot.ID)
	if err != nil {
		return fmt.Errorf("failed to clear cover: %w", err)
	}
	return nil
}

func (t *shootTx) InsertReschedule(r *models.RescheduleRequest) error {
	_, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO shoot_reschedule_requests (
			id, shoot_id, requested_by, original_date, requested_date,
			requested_time, reason, status, reviewed_at, approved_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, r.ID, r.ShootID, r.RequestedBy, r.OriginalDate, r.RequestedDate,
		r.RequestedTime, r.Reason, r.Status.String(), r.ReviewedAt, r.ApprovedBy, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert reschedule request: %w", err)
	}
	return nil
}

func (t *shootTx) Reschedule(id uuid.UUID) (*models.RescheduleRequest, error) {
	row := t.tx.QueryRowContext(t.ctx, `
		SELECT id, shoot_id, requested_by, original_date, requested_date,
		       requested_time, reason, status, reviewed_at, approved_by, created_at
		FROM shoot_reschedule_requests
		WHERE id = $1 AND shoot_id = $2
	`, id, t.shoot.ID)
	return scanReschedule(row)
}

func (t *shootTx) SaveReschedule(r *models.RescheduleRequest) error {
	_, err := t.tx.ExecContext(t.ctx, `
		UPDATE shoot_reschedule_requests
		SET status = $2, reviewed_at = $3, approved_by = $4
		WHERE id = $1
	`, r.ID, r.Status.String(), r.ReviewedAt, r.ApprovedBy)
	if err != nil {
		return fmt.Errorf("failed to update reschedule request: %w", err)
	}
	return nil
}

func (t *shootTx) AppendLog(e *models.ActivityLogEntry) error {
	return insertLog(t.ctx, t.tx, e)
}
