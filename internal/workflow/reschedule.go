package workflow

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shootflow-backend/internal/models"
)

// RequestReschedule records a reschedule ask. Requests from admin-level
// actors apply immediately; everyone else's sit pending until review.
func (s *Service) RequestReschedule(ctx context.Context, actor Actor, shootID uuid.UUID, requestedDate time.Time, requestedTime, reason string) (*models.RescheduleRequest, error) {
	var out *models.RescheduleRequest
	err := s.store.WithShoot(ctx, shootID, func(tx Tx) error {
		sh := tx.Shoot()
		if sh.Status.Terminal() {
			return &TransitionError{From: sh.Status, Action: ActionSchedule}
		}
		if !actor.isAdmin() && actor.ID != sh.ClientID && !ownsAsPhotographer(actor, sh) {
			return ErrForbidden
		}

		req := &models.RescheduleRequest{
			ID:            uuid.New(),
			ShootID:       sh.ID,
			RequestedBy:   actor.ID,
			OriginalDate:  sh.ScheduledAt,
			RequestedDate: requestedDate,
			RequestedTime: nullString(requestedTime),
			Reason:        nullString(reason),
			Status:        models.ReschedulePending,
			CreatedAt:     time.Now(),
		}

		if actor.isAdmin() {
			req.Status = models.RescheduleApproved
			req.ReviewedAt = nullNow()
			req.ApprovedBy = uuid.NullUUID{UUID: actor.ID, Valid: true}
		}

		if err := tx.InsertReschedule(req); err != nil {
			return err
		}

		if req.Status == models.RescheduleApproved {
			if err := applyReschedule(tx, sh, req, actor); err != nil {
				return err
			}
		} else {
			if err := tx.AppendLog(newLogEntry(sh.ID, actor, "reschedule_requested",
				fmt.Sprintf("Reschedule requested for %s", requestedDate.Format("2006-01-02")),
				map[string]any{
					"requested_date": requestedDate.Format("2006-01-02"),
					"requested_time": requestedTime,
					"reason":         reason,
				})); err != nil {
				return err
			}
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	shoot, err := s.store.GetShoot(ctx, shootID)
	if err == nil {
		event := "reschedule_requested"
		if out.Status == models.RescheduleApproved {
			event = "shoot_scheduled"
		}
		s.notify(ctx, event, shoot)
	}
	return out, nil
}

// ReviewReschedule is the admin decision on a pending request. Approval
// applies the requested date and time to the shoot atomically with the
// request's own status change.
func (s *Service) ReviewReschedule(ctx context.Context, actor Actor, requestID uuid.UUID, decision models.RescheduleStatus) (*models.RescheduleRequest, error) {
	if !actor.isAdmin() {
		return nil, ErrForbidden
	}
	if decision != models.RescheduleApproved && decision != models.RescheduleRejected {
		return nil, &ValidationError{Field: "status", Msg: "must be approved or rejected"}
	}

	ref, err := s.store.GetReschedule(ctx, requestID)
	if err != nil {
		return nil, err
	}

	var out *models.RescheduleRequest
	err = s.store.WithShoot(ctx, ref.ShootID, func(tx Tx) error {
		// Re-read under the shoot lock: a concurrent reviewer may have
		// decided it already.
		req, err := tx.Reschedule(requestID)
		if err != nil {
			return err
		}
		if req.Status != models.ReschedulePending {
			return ErrAlreadyReviewed
		}
		if decision == models.RescheduleApproved && tx.Shoot().Status.Terminal() {
			return &TransitionError{From: tx.Shoot().Status, Action: ActionSchedule}
		}

		req.Status = decision
		req.ReviewedAt = nullNow()
		req.ApprovedBy = uuid.NullUUID{UUID: actor.ID, Valid: true}
		if err := tx.SaveReschedule(req); err != nil {
			return err
		}

		if decision == models.RescheduleApproved {
			if err := applyReschedule(tx, tx.Shoot(), req, actor); err != nil {
				return err
			}
		} else {
			if err := tx.AppendLog(newLogEntry(req.ShootID, actor, "reschedule_rejected",
				"Reschedule request rejected", nil)); err != nil {
				return err
			}
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	if shoot, err := s.store.GetShoot(ctx, ref.ShootID); err == nil {
		if decision == models.RescheduleApproved {
			s.notify(ctx, "shoot_scheduled", shoot)
		} else {
			s.notify(ctx, "reschedule_rejected", shoot)
		}
	}
	return out, nil
}

// applyReschedule moves the shoot to the requested date and time inside the
// caller's transaction, so the shoot and the request can never disagree.
func applyReschedule(tx Tx, sh *models.Shoot, req *models.RescheduleRequest, actor Actor) error {
	at := req.RequestedDate
	if req.RequestedTime.Valid {
		if h, m, ok := parseTimeOfDay(req.RequestedTime.String); ok {
			at = time.Date(at.Year(), at.Month(), at.Day(), h, m, 0, 0, at.Location())
		}
		sh.ScheduledTime = req.RequestedTime
	}
	sh.ScheduledAt = sql.NullTime{Time: at, Valid: true}
	sh.Status = models.StatusScheduled
	sh.UpdatedBy = uuid.NullUUID{UUID: actor.ID, Valid: true}
	if err := tx.SaveShoot(); err != nil {
		return err
	}

	original := "unscheduled"
	if req.OriginalDate.Valid {
		original = req.OriginalDate.Time.Format("Jan 2, 2006")
	}
	return tx.AppendLog(newLogEntry(sh.ID, actor, "rescheduled",
		fmt.Sprintf("Shoot rescheduled from %s to %s", original, at.Format("Jan 2, 2006")),
		map[string]any{
			"original_date": original,
			"new_date":      req.RequestedDate.Format("2006-01-02"),
			"new_time":      req.RequestedTime.String,
			"reason":        req.Reason.String,
		}))
}

// parseTimeOfDay accepts "15:04", "3:04 PM" and "3 PM" style values.
func parseTimeOfDay(s string) (hour, minute int, ok bool) {
	for _, layout := range []string{"15:04", "3:04 PM", "3:04PM", "3 PM", "3PM"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour(), t.Minute(), true
		}
	}
	return 0, 0, false
}
