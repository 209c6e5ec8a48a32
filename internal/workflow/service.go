package workflow

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"shootflow-backend/internal/models"
)

// Background task kinds enqueued by transitions.
const (
	TaskGenerateWatermark = "generate_watermark"
	TaskArchiveShoot      = "archive_shoot"
)

// Service owns the shoot-level state machine: it validates transitions
// against the fixed table, applies them atomically, reconciles counters when
// media changed, and fans out best-effort notifications.
type Service struct {
	store        Store
	storage      Storage
	notifier     Notifier
	availability AvailabilityChecker
	tasks        TaskQueue
	log          *slog.Logger
}

func NewService(store Store, storage Storage, notifier Notifier, availability AvailabilityChecker, tasks TaskQueue, log *slog.Logger) *Service {
	return &Service{
		store:        store,
		storage:      storage,
		notifier:     notifier,
		availability: availability,
		tasks:        tasks,
		log:          log,
	}
}

// CreateParams carries the booking payload. Client bookings land in
// requested; admin-entered shoots go straight to scheduled, or on hold when
// no time was given.
type CreateParams struct {
	ClientID           uuid.UUID
	PhotographerID     uuid.NullUUID
	RepID              uuid.NullUUID
	Address            string
	ScheduledAt        *time.Time
	ScheduledTime      string
	ExpectedRawCount   int
	ExpectedFinalCount int
}

func (s *Service) CreateShoot(ctx context.Context, actor Actor, p CreateParams) (*models.Shoot, error) {
	now := time.Now()

	status := models.StatusRequested
	logAction := "shoot_requested"
	if actor.Role != models.RoleClient {
		if p.ScheduledAt != nil {
			status = models.StatusScheduled
			logAction = "shoot_scheduled"
		} else {
			status = models.StatusOnHold
			logAction = "shoot_created"
		}
	}

	if status == models.StatusScheduled && p.PhotographerID.Valid {
		ok, err := s.availability.IsAvailable(ctx, p.PhotographerID.UUID, *p.ScheduledAt, uuid.Nil)
		if err != nil {
			return nil, fmt.Errorf("availability check: %w", err)
		}
		if !ok {
			return nil, ErrPhotographerUnavailable
		}
	}

	shoot := &models.Shoot{
		ID:                 uuid.New(),
		ClientID:           p.ClientID,
		PhotographerID:     p.PhotographerID,
		RepID:              p.RepID,
		Address:            nullString(p.Address),
		Status:             status,
		ScheduledTime:      nullString(p.ScheduledTime),
		ExpectedRawCount:   p.ExpectedRawCount,
		ExpectedFinalCount: p.ExpectedFinalCount,
		CreatedBy:          uuid.NullUUID{UUID: actor.ID, Valid: true},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if p.ScheduledAt != nil {
		shoot.ScheduledAt = sql.NullTime{Time: *p.ScheduledAt, Valid: true}
	}

	entry := newLogEntry(shoot.ID, actor, logAction, "Shoot created", map[string]any{
		"status": status.String(),
	})
	if err := s.store.CreateShoot(ctx, shoot, entry); err != nil {
		return nil, err
	}

	if status == models.StatusScheduled {
		s.ensureFolders(ctx, shoot.ID)
	}
	s.notify(ctx, logAction, shoot)
	return shoot, nil
}

// Schedule moves the shoot to scheduled, validating photographer availability
// and creating storage folders if absent. Already-scheduled shoots may be
// rescheduled through the same edge.
func (s *Service) Schedule(ctx context.Context, actor Actor, shootID uuid.UUID, at time.Time, timeOfDay string, photographerID uuid.NullUUID) (*models.Shoot, error) {
	shoot, err := s.transition(ctx, actor, shootID, ActionSchedule, transitionOpts{
		validate: func(sh *models.Shoot) error {
			pid := sh.PhotographerID
			if photographerID.Valid {
				pid = photographerID
			}
			if !pid.Valid {
				return nil
			}
			ok, err := s.availability.IsAvailable(ctx, pid.UUID, at, sh.ID)
			if err != nil {
				return fmt.Errorf("availability check: %w", err)
			}
			if !ok {
				return ErrPhotographerUnavailable
			}
			return nil
		},
		mutate: func(sh *models.Shoot) {
			sh.ScheduledAt = sql.NullTime{Time: at, Valid: true}
			if timeOfDay != "" {
				sh.ScheduledTime = nullString(timeOfDay)
			}
			if photographerID.Valid {
				sh.PhotographerID = photographerID
			}
			sh.HoldReason = sql.NullString{}
		},
		logAction: "shoot_scheduled",
		details:   "Shoot scheduled",
		metadata:  map[string]any{"scheduled_at": at.Format(time.RFC3339)},
	})
	if err != nil {
		return nil, err
	}
	s.ensureFolders(ctx, shoot.ID)
	s.notify(ctx, "shoot_scheduled", shoot)
	return shoot, nil
}

// ApproveRequest accepts a client-submitted booking and schedules it.
func (s *Service) ApproveRequest(ctx context.Context, actor Actor, shootID uuid.UUID, at time.Time, timeOfDay string) (*models.Shoot, error) {
	shoot, err := s.transition(ctx, actor, shootID, ActionApproveRequest, transitionOpts{
		validate: func(sh *models.Shoot) error {
			if !sh.PhotographerID.Valid {
				return nil
			}
			ok, err := s.availability.IsAvailable(ctx, sh.PhotographerID.UUID, at, sh.ID)
			if err != nil {
				return fmt.Errorf("availability check: %w", err)
			}
			if !ok {
				return ErrPhotographerUnavailable
			}
			return nil
		},
		mutate: func(sh *models.Shoot) {
			sh.ScheduledAt = sql.NullTime{Time: at, Valid: true}
			if timeOfDay != "" {
				sh.ScheduledTime = nullString(timeOfDay)
			}
			sh.ApprovedAt = nullNow()
			sh.ApprovedBy = uuid.NullUUID{UUID: actor.ID, Valid: true}
		},
		logAction: "shoot_approved",
		details:   "Booking request approved",
		metadata:  map[string]any{"scheduled_at": at.Format(time.RFC3339)},
	})
	if err != nil {
		return nil, err
	}
	s.ensureFolders(ctx, shoot.ID)
	s.notify(ctx, "shoot_scheduled", shoot)
	return shoot, nil
}

// DeclineRequest turns down a client-submitted booking. Terminal.
func (s *Service) DeclineRequest(ctx context.Context, actor Actor, shootID uuid.UUID, reason string) (*models.Shoot, error) {
	shoot, err := s.transition(ctx, actor, shootID, ActionDeclineRequest, transitionOpts{
		mutate: func(sh *models.Shoot) {
			sh.DeclinedAt = nullNow()
			sh.DeclinedBy = uuid.NullUUID{UUID: actor.ID, Valid: true}
			sh.DeclinedReason = nullString(reason)
		},
		logAction: "shoot_declined",
		details:   "Booking request declined",
		metadata:  map[string]any{"reason": reason},
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, "shoot_declined", shoot)
	return shoot, nil
}

func (s *Service) StartEditing(ctx context.Context, actor Actor, shootID uuid.UUID) (*models.Shoot, error) {
	shoot, err := s.transition(ctx, actor, shootID, ActionStartEditing, transitionOpts{
		logAction: "shoot_editing_started",
		details:   "Editing started",
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, "shoot_editing_started", shoot)
	return shoot, nil
}

// SubmitForReview hands the shoot to admin review and clears any prior flag.
func (s *Service) SubmitForReview(ctx context.Context, actor Actor, shootID uuid.UUID) (*models.Shoot, error) {
	shoot, err := s.transition(ctx, actor, shootID, ActionSubmitReview, transitionOpts{
		mutate: func(sh *models.Shoot) {
			sh.SubmittedForReviewAt = nullNow()
			sh.IsFlagged = false
			sh.AdminIssueNotes = sql.NullString{}
		},
		logAction: "shoot_submitted_for_review",
		details:   "Submitted for review",
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, "shoot_submitted_for_review", shoot)
	return shoot, nil
}

// Approve verifies the shoot and delivers it. Counters are left untouched.
func (s *Service) Approve(ctx context.Context, actor Actor, shootID uuid.UUID) (*models.Shoot, error) {
	shoot, err := s.transition(ctx, actor, shootID, ActionApprove, transitionOpts{
		mutate: func(sh *models.Shoot) {
			sh.AdminVerifiedAt = nullNow()
			sh.VerifiedBy = uuid.NullUUID{UUID: actor.ID, Valid: true}
			sh.IsFlagged = false
			sh.AdminIssueNotes = sql.NullString{}
		},
		logAction: "shoot_admin_verified",
		details:   "Shoot approved by admin",
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, "shoot_delivered", shoot)
	return shoot, nil
}

// Reject sends the shoot back with issue notes. Each reject overwrites the
// live notes; prior notes survive only in the activity log.
func (s *Service) Reject(ctx context.Context, actor Actor, shootID uuid.UUID, notes string) (*models.Shoot, error) {
	if notes == "" {
		return nil, &ValidationError{Field: "notes", Msg: "required when rejecting a shoot"}
	}
	shoot, err := s.transition(ctx, actor, shootID, ActionReject, transitionOpts{
		mutate: func(sh *models.Shoot) {
			sh.IsFlagged = true
			sh.AdminIssueNotes = nullString(notes)
			sh.IssuesResolvedAt = sql.NullTime{}
			sh.IssuesResolvedBy = uuid.NullUUID{}
		},
		logAction: "shoot_rejected",
		details:   "Shoot rejected: " + notes,
		metadata:  map[string]any{"notes": notes},
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, "shoot_rejected", shoot)
	return shoot, nil
}

// ResolveIssues marks the reject cycle addressed and resubmits automatically.
func (s *Service) ResolveIssues(ctx context.Context, actor Actor, shootID uuid.UUID) (*models.Shoot, error) {
	shoot, err := s.transition(ctx, actor, shootID, ActionResolveIssues, transitionOpts{
		mutate: func(sh *models.Shoot) {
			sh.IssuesResolvedAt = nullNow()
			sh.IssuesResolvedBy = uuid.NullUUID{UUID: actor.ID, Valid: true}
			sh.IsFlagged = false
			sh.SubmittedForReviewAt = nullNow()
		},
		logAction: "issues_resolved",
		details:   "Issues marked as resolved, shoot resubmitted for review",
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, "shoot_submitted_for_review", shoot)
	return shoot, nil
}

func (s *Service) PutOnHold(ctx context.Context, actor Actor, shootID uuid.UUID, reason string) (*models.Shoot, error) {
	shoot, err := s.transition(ctx, actor, shootID, ActionPutOnHold, transitionOpts{
		mutate: func(sh *models.Shoot) {
			sh.HoldReason = nullString(reason)
		},
		logAction: "shoot_put_on_hold",
		details:   holdDetails(reason),
		metadata:  map[string]any{"reason": reason},
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, "shoot_put_on_hold", shoot)
	return shoot, nil
}

// Complete finalizes a verified delivery. Counters are left untouched.
func (s *Service) Complete(ctx context.Context, actor Actor, shootID uuid.UUID) (*models.Shoot, error) {
	shoot, err := s.transition(ctx, actor, shootID, ActionComplete, transitionOpts{
		mutate: func(sh *models.Shoot) {
			if !sh.CompletedAt.Valid {
				sh.CompletedAt = nullNow()
			}
		},
		logAction: "shoot_completed",
		details:   "Shoot completed",
	})
	if err != nil {
		return nil, err
	}
	s.enqueue(ctx, shoot.ID, TaskArchiveShoot, nil)
	s.notify(ctx, "shoot_completed", shoot)
	return shoot, nil
}

func (s *Service) Cancel(ctx context.Context, actor Actor, shootID uuid.UUID, reason string) (*models.Shoot, error) {
	shoot, err := s.transition(ctx, actor, shootID, ActionCancel, transitionOpts{
		mutate: func(sh *models.Shoot) {
			sh.CancellationRequestedAt = sql.NullTime{}
			sh.CancellationRequestedBy = uuid.NullUUID{}
			sh.CancellationRequestedReason = sql.NullString{}
		},
		logAction: "shoot_cancelled",
		details:   cancelDetails(reason),
		metadata:  map[string]any{"reason": reason},
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, "shoot_cancelled", shoot)
	return shoot, nil
}

// RequestCancellation records a cancellation ask without changing status.
// Clients may only request on their own shoots; the admin later approves or
// rejects.
func (s *Service) RequestCancellation(ctx context.Context, actor Actor, shootID uuid.UUID, reason string) (*models.Shoot, error) {
	var out *models.Shoot
	err := s.store.WithShoot(ctx, shootID, func(tx Tx) error {
		sh := tx.Shoot()
		if sh.Status.Terminal() {
			return &TransitionError{From: sh.Status, Action: ActionCancel}
		}
		if !actor.isAdmin() && actor.ID != sh.ClientID && !ownsAsPhotographer(actor, sh) {
			return ErrForbidden
		}
		sh.CancellationRequestedAt = nullNow()
		sh.CancellationRequestedBy = uuid.NullUUID{UUID: actor.ID, Valid: true}
		sh.CancellationRequestedReason = nullString(reason)
		sh.UpdatedBy = uuid.NullUUID{UUID: actor.ID, Valid: true}
		if err := tx.SaveShoot(); err != nil {
			return err
		}
		details := "Cancellation requested"
		if reason != "" {
			details += ": " + reason
		}
		if err := tx.AppendLog(newLogEntry(sh.ID, actor, "cancellation_requested", details, map[string]any{"reason": reason})); err != nil {
			return err
		}
		out = sh
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, "cancellation_requested", out)
	return out, nil
}

// ApproveCancellation performs the cancel transition on a pending request.
func (s *Service) ApproveCancellation(ctx context.Context, actor Actor, shootID uuid.UUID) (*models.Shoot, error) {
	shoot, err := s.store.GetShoot(ctx, shootID)
	if err != nil {
		return nil, err
	}
	if !shoot.CancellationRequestedAt.Valid {
		return nil, &ValidationError{Field: "cancellation", Msg: "no pending cancellation request"}
	}
	return s.Cancel(ctx, actor, shootID, shoot.CancellationRequestedReason.String)
}

// RejectCancellation clears a pending cancellation request.
func (s *Service) RejectCancellation(ctx context.Context, actor Actor, shootID uuid.UUID) (*models.Shoot, error) {
	var out *models.Shoot
	err := s.store.WithShoot(ctx, shootID, func(tx Tx) error {
		sh := tx.Shoot()
		if !actor.isAdmin() {
			return ErrForbidden
		}
		if !sh.CancellationRequestedAt.Valid {
			return &ValidationError{Field: "cancellation", Msg: "no pending cancellation request"}
		}
		sh.CancellationRequestedAt = sql.NullTime{}
		sh.CancellationRequestedBy = uuid.NullUUID{}
		sh.CancellationRequestedReason = sql.NullString{}
		sh.UpdatedBy = uuid.NullUUID{UUID: actor.ID, Valid: true}
		if err := tx.SaveShoot(); err != nil {
			return err
		}
		if err := tx.AppendLog(newLogEntry(sh.ID, actor, "cancellation_rejected", "Cancellation request rejected", nil)); err != nil {
			return err
		}
		out = sh
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, "cancellation_rejected", out)
	return out, nil
}

type transitionOpts struct {
	validate  func(*models.Shoot) error
	mutate    func(*models.Shoot)
	logAction string
	details   string
	metadata  map[string]any
}

// transition is the one path every shoot-level state change goes through:
// edge check, role check, mutation, status + legacy mirror write, and exactly
// one activity-log entry, all in a single atomic unit on the locked row.
func (s *Service) transition(ctx context.Context, actor Actor, shootID uuid.UUID, action Action, opts transitionOpts) (*models.Shoot, error) {
	var out *models.Shoot
	err := s.store.WithShoot(ctx, shootID, func(tx Tx) error {
		sh := tx.Shoot()
		from := sh.Status

		to, err := checkTransition(actor, sh, action)
		if err != nil {
			return err
		}
		if opts.validate != nil {
			if err := opts.validate(sh); err != nil {
				return err
			}
		}

		sh.Status = to
		sh.UpdatedBy = uuid.NullUUID{UUID: actor.ID, Valid: true}
		if opts.mutate != nil {
			opts.mutate(sh)
		}
		if err := tx.SaveShoot(); err != nil {
			return err
		}

		meta := opts.metadata
		if meta == nil {
			meta = map[string]any{}
		}
		meta["old_status"] = from.String()
		meta["new_status"] = to.String()
		if err := tx.AppendLog(newLogEntry(sh.ID, actor, opts.logAction, opts.details, meta)); err != nil {
			return err
		}
		out = sh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) ensureFolders(ctx context.Context, shootID uuid.UUID) {
	if err := s.storage.EnsureShootFolders(ctx, shootID); err != nil {
		s.log.Warn("failed to ensure storage folders", "shoot_id", shootID, "error", err)
	}
}

// notify fans out a best-effort event to the shoot's participants. Failures
// are logged and swallowed.
func (s *Service) notify(ctx context.Context, event string, shoot *models.Shoot) {
	recipients := []uuid.UUID{shoot.ClientID}
	if shoot.PhotographerID.Valid {
		recipients = append(recipients, shoot.PhotographerID.UUID)
	}
	if shoot.EditorID.Valid {
		recipients = append(recipients, shoot.EditorID.UUID)
	}
	if err := s.notifier.Notify(ctx, event, shoot, recipients); err != nil {
		s.log.Warn("notification failed", "event", event, "shoot_id", shoot.ID, "error", err)
	}
}

func (s *Service) enqueue(ctx context.Context, shootID uuid.UUID, kind string, payload any) {
	if s.tasks == nil {
		return
	}
	if err := s.tasks.Enqueue(ctx, shootID, kind, payload); err != nil {
		s.log.Warn("failed to enqueue task", "kind", kind, "shoot_id", shootID, "error", err)
	}
}

func newLogEntry(shootID uuid.UUID, actor Actor, action, details string, metadata map[string]any) *models.ActivityLogEntry {
	var raw json.RawMessage
	if metadata != nil {
		raw, _ = json.Marshal(metadata)
	}
	return &models.ActivityLogEntry{
		ID:        uuid.New(),
		ShootID:   shootID,
		UserID:    uuid.NullUUID{UUID: actor.ID, Valid: true},
		Action:    action,
		Details:   details,
		Metadata:  raw,
		CreatedAt: time.Now(),
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullNow() sql.NullTime {
	return sql.NullTime{Time: time.Now(), Valid: true}
}

func holdDetails(reason string) string {
	if reason == "" {
		return "Shoot put on hold"
	}
	return "Shoot put on hold: " + reason
}

func cancelDetails(reason string) string {
	if reason == "" {
		return "Shoot cancelled"
	}
	return "Shoot cancelled: " + reason
}
