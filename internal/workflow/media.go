package workflow

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shootflow-backend/internal/models"
)

// UploadItem is one file in a batch upload.
type UploadItem struct {
	Filename    string
	ContentType string
	Data        []byte
}

type UploadError struct {
	Filename string
	Stage    string
	Message  string
}

// UploadResult reports per-file success and failure. A failed file never
// rolls back its predecessors.
type UploadResult struct {
	Uploaded []*models.MediaFile
	Errors   []UploadError
	Shoot    *models.Shoot
}

// canUploadRaw gates raw intake: uploads stay open until the shoot moves
// past raw review.
func canUploadRaw(s *models.Shoot) bool {
	switch s.Status {
	case models.StatusScheduled, models.StatusUploaded:
		return true
	}
	return false
}

// UploadFiles stores a batch of assets and registers them at the stage the
// kind implies (raw/extra intake at todo, edited at completed). Each file is
// independent: a storage failure on one is collected and the rest proceed.
// Counters are reconciled from the surviving set before the call returns.
func (s *Service) UploadFiles(ctx context.Context, actor Actor, shootID uuid.UUID, kind models.MediaKind, items []UploadItem) (*UploadResult, error) {
	if len(items) == 0 {
		return nil, &ValidationError{Field: "files", Msg: "no files provided"}
	}

	stage := models.StageTodo
	if kind == models.MediaKindEdited {
		stage = models.StageCompleted
	}

	result := &UploadResult{}
	err := s.store.WithShoot(ctx, shootID, func(tx Tx) error {
		sh := tx.Shoot()

		if !actor.isAdmin() && !ownsAsPhotographer(actor, sh) && !ownsAsEditor(actor, sh) {
			return ErrForbidden
		}
		// Admins can upload at any stage.
		if !actor.isAdmin() {
			if kind != models.MediaKindEdited && !canUploadRaw(sh) {
				return &TransitionError{From: sh.Status, Action: "upload_raw"}
			}
			if kind == models.MediaKindEdited && sh.Status != models.StatusEditing {
				return &TransitionError{From: sh.Status, Action: "upload_edited"}
			}
		}

		for _, item := range items {
			handle, err := s.storage.Store(ctx, sh.ID, stage, item.Filename, item.Data, item.ContentType)
			if err != nil {
				result.Errors = append(result.Errors, UploadError{
					Filename: item.Filename,
					Stage:    "store",
					Message:  err.Error(),
				})
				continue
			}

			now := time.Now()
			file := &models.MediaFile{
				ID:          uuid.New(),
				ShootID:     sh.ID,
				Filename:    item.Filename,
				Kind:        kind,
				Stage:       stage,
				StoragePath: string(handle),
				FileSize:    sql.NullInt64{Int64: int64(len(item.Data)), Valid: true},
				MimeType:    item.ContentType,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.InsertFile(file); err != nil {
				result.Errors = append(result.Errors, UploadError{
					Filename: item.Filename,
					Stage:    "database",
					Message:  err.Error(),
				})
				continue
			}
			result.Uploaded = append(result.Uploaded, file)
		}

		if len(result.Uploaded) > 0 {
			// First raw intake advances a scheduled shoot to uploaded.
			if kind != models.MediaKindEdited && sh.Status == models.StatusScheduled {
				sh.Status = models.StatusUploaded
				sh.PhotosUploadedAt = nullNow()
			}
			if err := s.reconcile(tx, sh); err != nil {
				return err
			}
			if err := tx.AppendLog(newLogEntry(sh.ID, actor, "media_uploaded",
				fmt.Sprintf("Media uploaded: %d files", len(result.Uploaded)),
				map[string]any{"file_count": len(result.Uploaded), "kind": string(kind)})); err != nil {
				return err
			}
		}

		result.Shoot = sh
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(result.Uploaded) > 0 {
		s.notify(ctx, "media_uploaded", result.Shoot)
	}
	return result, nil
}

// MoveFileToCompleted advances an intake file to the edited tier. The
// relocation must succeed before the stage write commits; a storage timeout
// leaves the stage untouched and surfaces a retryable error.
func (s *Service) MoveFileToCompleted(ctx context.Context, actor Actor, shootID, fileID uuid.UUID) (*models.MediaFile, error) {
	var out *models.MediaFile
	err := s.store.WithShoot(ctx, shootID, func(tx Tx) error {
		sh := tx.Shoot()
		if !actor.isAdmin() && !ownsAsPhotographer(actor, sh) && !ownsAsEditor(actor, sh) {
			return ErrForbidden
		}

		file, err := tx.File(fileID)
		if err != nil {
			return err
		}
		if file.Stage != models.StageTodo {
			return &StageError{From: file.Stage, Op: "move to completed"}
		}

		handle, err := s.storage.Relocate(ctx, Handle(file.StoragePath), models.StageCompleted)
		if err != nil {
			return &StorageError{Op: "relocate", Err: err}
		}

		file.StoragePath = string(handle)
		file.Stage = models.StageCompleted
		if err := tx.SaveFile(file); err != nil {
			return err
		}
		if err := s.reconcile(tx, sh); err != nil {
			return err
		}
		if err := tx.AppendLog(newLogEntry(sh.ID, actor, "file_moved_to_completed",
			"File moved to completed: "+file.Filename, nil)); err != nil {
			return err
		}
		out = file
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyFile moves an edited file to final storage and marks it verified.
// Admin only. When the last file of an editing shoot verifies, the shoot is
// delivered and the client notified.
func (s *Service) VerifyFile(ctx context.Context, actor Actor, shootID, fileID uuid.UUID, notes string) (*models.MediaFile, error) {
	var out *models.MediaFile
	var delivered bool
	var shoot *models.Shoot
	err := s.store.WithShoot(ctx, shootID, func(tx Tx) error {
		sh := tx.Shoot()
		if !actor.isAdmin() {
			return ErrForbidden
		}

		file, err := tx.File(fileID)
		if err != nil {
			return err
		}
		if file.Stage != models.StageCompleted {
			return &StageError{From: file.Stage, Op: "verify"}
		}

		handle, err := s.storage.Relocate(ctx, Handle(file.StoragePath), models.StageVerified)
		if err != nil {
			return &StorageError{Op: "relocate", Err: err}
		}

		file.StoragePath = string(handle)
		file.Stage = models.StageVerified
		file.VerifiedAt = nullNow()
		file.VerifiedBy = uuid.NullUUID{UUID: actor.ID, Valid: true}
		file.VerificationNotes = nullString(notes)
		if err := tx.SaveFile(file); err != nil {
			return err
		}

		files, err := tx.Files()
		if err != nil {
			return err
		}
		unverified := 0
		for _, f := range files {
			if f.Stage != models.StageVerified {
				unverified++
			}
		}
		if unverified == 0 && sh.Status == models.StatusEditing {
			sh.Status = models.StatusDelivered
			sh.AdminVerifiedAt = nullNow()
			sh.VerifiedBy = uuid.NullUUID{UUID: actor.ID, Valid: true}
			delivered = true
		}

		ReconcileCounters(sh, files)
		sh.UpdatedBy = uuid.NullUUID{UUID: actor.ID, Valid: true}
		if err := tx.SaveShoot(); err != nil {
			return err
		}

		if err := tx.AppendLog(newLogEntry(sh.ID, actor, "file_verified",
			"File verified: "+file.Filename, map[string]any{"notes": notes})); err != nil {
			return err
		}
		if delivered {
			if err := tx.AppendLog(newLogEntry(sh.ID, actor, "shoot_delivered",
				"All files verified, shoot delivered", nil)); err != nil {
				return err
			}
		}
		out = file
		shoot = sh
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.enqueue(ctx, shootID, TaskGenerateWatermark, map[string]any{"file_id": fileID.String()})
	if delivered {
		s.notify(ctx, "shoot_delivered", shoot)
	}
	return out, nil
}

// FlagFile diverts a file out of the pipeline with a reason and raises the
// shoot-level flag. Verified files are final and cannot be flagged.
func (s *Service) FlagFile(ctx context.Context, actor Actor, shootID, fileID uuid.UUID, reason string) (*models.MediaFile, error) {
	if reason == "" {
		reason = "Flagged via dashboard"
	}
	var out *models.MediaFile
	err := s.store.WithShoot(ctx, shootID, func(tx Tx) error {
		sh := tx.Shoot()
		if !actor.isAdmin() && !ownsAsPhotographer(actor, sh) && !ownsAsEditor(actor, sh) {
			return ErrForbidden
		}

		file, err := tx.File(fileID)
		if err != nil {
			return err
		}
		if file.Stage == models.StageVerified {
			return &StageError{From: file.Stage, Op: "flag"}
		}

		file.Stage = models.StageFlagged
		file.FlagReason = nullString(reason)
		if err := tx.SaveFile(file); err != nil {
			return err
		}

		sh.IsFlagged = true
		sh.AdminIssueNotes = nullString(reason)
		if err := s.reconcile(tx, sh); err != nil {
			return err
		}
		if err := tx.AppendLog(newLogEntry(sh.ID, actor, "file_flagged",
			"File flagged: "+file.Filename, map[string]any{"reason": reason})); err != nil {
			return err
		}
		out = file
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ClearFlag returns a flagged file to todo. Prior progress is not restored:
// a file flagged from completed re-enters at todo. Clearing an unflagged
// todo file is a no-op with no activity entry.
func (s *Service) ClearFlag(ctx context.Context, actor Actor, shootID, fileID uuid.UUID) (*models.MediaFile, error) {
	var out *models.MediaFile
	err := s.store.WithShoot(ctx, shootID, func(tx Tx) error {
		sh := tx.Shoot()
		if !actor.isAdmin() && !ownsAsPhotographer(actor, sh) && !ownsAsEditor(actor, sh) {
			return ErrForbidden
		}

		file, err := tx.File(fileID)
		if err != nil {
			return err
		}
		if file.Stage == models.StageTodo && !file.FlagReason.Valid {
			out = file
			return nil
		}
		if file.Stage != models.StageFlagged {
			return &StageError{From: file.Stage, Op: "clear flag"}
		}

		file.Stage = models.StageTodo
		file.FlagReason = sql.NullString{}
		if err := tx.SaveFile(file); err != nil {
			return err
		}

		files, err := tx.Files()
		if err != nil {
			return err
		}
		stillFlagged := false
		for _, f := range files {
			if f.FlagReason.Valid {
				stillFlagged = true
				break
			}
		}
		if !stillFlagged {
			sh.IsFlagged = false
			sh.AdminIssueNotes = sql.NullString{}
		}

		ReconcileCounters(sh, files)
		sh.UpdatedBy = uuid.NullUUID{UUID: actor.ID, Valid: true}
		if err := tx.SaveShoot(); err != nil {
			return err
		}
		if err := tx.AppendLog(newLogEntry(sh.ID, actor, "file_flag_cleared",
			"Flag cleared: "+file.Filename, nil)); err != nil {
			return err
		}
		out = file
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetCover makes the file the shoot's single cover image. Runs as one atomic
// unit so two concurrent cover requests cannot both stick.
func (s *Service) SetCover(ctx context.Context, actor Actor, shootID, fileID uuid.UUID) (*models.MediaFile, error) {
	var out *models.MediaFile
	err := s.store.WithShoot(ctx, shootID, func(tx Tx) error {
		sh := tx.Shoot()
		if !actor.isAdmin() && !ownsAsPhotographer(actor, sh) && !ownsAsEditor(actor, sh) {
			return ErrForbidden
		}

		file, err := tx.File(fileID)
		if err != nil {
			return err
		}
		if err := tx.ClearCover(); err != nil {
			return err
		}
		file.IsCover = true
		if err := tx.SaveFile(file); err != nil {
			return err
		}
		out = file
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ToggleFavorite flips the favorite marker. Any participant may favorite.
func (s *Service) ToggleFavorite(ctx context.Context, actor Actor, shootID, fileID uuid.UUID) (*models.MediaFile, error) {
	var out *models.MediaFile
	err := s.store.WithShoot(ctx, shootID, func(tx Tx) error {
		file, err := tx.File(fileID)
		if err != nil {
			return err
		}
		file.IsFavorite = !file.IsFavorite
		if err := tx.SaveFile(file); err != nil {
			return err
		}
		out = file
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CommentFile appends a comment to the file's comment trail.
func (s *Service) CommentFile(ctx context.Context, actor Actor, shootID, fileID uuid.UUID, comment string) (*models.MediaFile, error) {
	if comment == "" {
		return nil, &ValidationError{Field: "comment", Msg: "required"}
	}
	var out *models.MediaFile
	err := s.store.WithShoot(ctx, shootID, func(tx Tx) error {
		file, err := tx.File(fileID)
		if err != nil {
			return err
		}
		file.Comments = append(file.Comments, models.FileComment{
			UserID:    actor.ID,
			Comment:   comment,
			CreatedAt: time.Now(),
		})
		if err := tx.SaveFile(file); err != nil {
			return err
		}
		out = file
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteFile removes an asset and its storage object, then reconciles.
func (s *Service) DeleteFile(ctx context.Context, actor Actor, shootID, fileID uuid.UUID) error {
	return s.store.WithShoot(ctx, shootID, func(tx Tx) error {
		sh := tx.Shoot()
		if !actor.isAdmin() && !ownsAsPhotographer(actor, sh) {
			return ErrForbidden
		}

		file, err := tx.File(fileID)
		if err != nil {
			return err
		}
		if err := s.storage.Delete(ctx, Handle(file.StoragePath)); err != nil {
			// Orphaned objects are cleaned up by the archive task; the
			// record delete proceeds.
			s.log.Warn("failed to delete storage object", "file_id", fileID, "error", err)
		}
		if err := tx.DeleteFile(fileID); err != nil {
			return err
		}
		if err := s.reconcile(tx, sh); err != nil {
			return err
		}
		return tx.AppendLog(newLogEntry(sh.ID, actor, "media_deleted",
			"File deleted: "+file.Filename, nil))
	})
}

// reconcile recomputes counters from the transaction's file set and persists
// the shoot.
func (s *Service) reconcile(tx Tx, sh *models.Shoot) error {
	files, err := tx.Files()
	if err != nil {
		return err
	}
	ReconcileCounters(sh, files)
	return tx.SaveShoot()
}
