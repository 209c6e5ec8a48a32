package workflow_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shootflow-backend/internal/models"
	"shootflow-backend/internal/workflow"
)

func TestRequestReschedule_AdminAutoApproves(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	original := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	sh := env.seedShoot(models.StatusScheduled, func(s *models.Shoot) {
		s.ScheduledAt = sql.NullTime{Time: original, Valid: true}
	})

	requested := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)
	req, err := env.svc.RequestReschedule(ctx, admin(), sh.ID, requested, "1:30 PM", "client asked")
	require.NoError(t, err)
	assert.Equal(t, models.RescheduleApproved, req.Status)
	assert.True(t, req.ReviewedAt.Valid)

	shoot, _ := env.store.GetShoot(ctx, sh.ID)
	assert.Equal(t, models.StatusScheduled, shoot.Status)
	require.True(t, shoot.ScheduledAt.Valid)
	assert.Equal(t, 20, shoot.ScheduledAt.Time.Day())
	assert.Equal(t, 13, shoot.ScheduledAt.Time.Hour())
	assert.Equal(t, "1:30 PM", shoot.ScheduledTime.String)

	actions := []string{}
	for _, e := range env.store.logsFor(sh.ID) {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, "rescheduled")
}

func TestRequestReschedule_NonAdminStaysPending(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	original := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	sh := env.seedShoot(models.StatusScheduled, func(s *models.Shoot) {
		s.ScheduledAt = sql.NullTime{Time: original, Valid: true}
	})

	req, err := env.svc.RequestReschedule(ctx, clientOf(sh), sh.ID,
		time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC), "", "travel conflict")
	require.NoError(t, err)
	assert.Equal(t, models.ReschedulePending, req.Status)

	// The shoot's schedule is untouched while pending.
	shoot, _ := env.store.GetShoot(ctx, sh.ID)
	assert.Equal(t, original, shoot.ScheduledAt.Time)
}

func TestRequestReschedule_StrangerForbidden(t *testing.T) {
	env := newTestEnv()
	sh := env.seedShoot(models.StatusScheduled, nil)
	stranger := workflow.Actor{ID: uuid.New(), Role: models.RolePhotographer}

	_, err := env.svc.RequestReschedule(context.Background(), stranger, sh.ID,
		time.Now().Add(48*time.Hour), "", "")
	assert.ErrorIs(t, err, workflow.ErrForbidden)
}

func TestRequestReschedule_TerminalShootRejected(t *testing.T) {
	env := newTestEnv()
	sh := env.seedShoot(models.StatusCancelled, nil)

	_, err := env.svc.RequestReschedule(context.Background(), admin(), sh.ID,
		time.Now().Add(48*time.Hour), "", "")
	var transitionErr *workflow.TransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestReviewReschedule_ApproveAppliesSchedule(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	sh := env.seedShoot(models.StatusOnHold, func(s *models.Shoot) {
		s.ScheduledAt = sql.NullTime{Time: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC), Valid: true}
	})

	req, err := env.svc.RequestReschedule(ctx, clientOf(sh), sh.ID,
		time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC), "09:30", "")
	require.NoError(t, err)

	reviewed, err := env.svc.ReviewReschedule(ctx, admin(), req.ID, models.RescheduleApproved)
	require.NoError(t, err)
	assert.Equal(t, models.RescheduleApproved, reviewed.Status)
	assert.True(t, reviewed.ApprovedBy.Valid)

	// Approval always lands the shoot back in scheduled.
	shoot, _ := env.store.GetShoot(ctx, sh.ID)
	assert.Equal(t, models.StatusScheduled, shoot.Status)
	assert.Equal(t, 2, shoot.ScheduledAt.Time.Day())
	assert.Equal(t, 9, shoot.ScheduledAt.Time.Hour())
	assert.Equal(t, 30, shoot.ScheduledAt.Time.Minute())
}

func TestReviewReschedule_Reject(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	original := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	sh := env.seedShoot(models.StatusScheduled, func(s *models.Shoot) {
		s.ScheduledAt = sql.NullTime{Time: original, Valid: true}
	})

	req, err := env.svc.RequestReschedule(ctx, clientOf(sh), sh.ID,
		time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC), "", "")
	require.NoError(t, err)

	reviewed, err := env.svc.ReviewReschedule(ctx, admin(), req.ID, models.RescheduleRejected)
	require.NoError(t, err)
	assert.Equal(t, models.RescheduleRejected, reviewed.Status)

	shoot, _ := env.store.GetShoot(ctx, sh.ID)
	assert.Equal(t, original, shoot.ScheduledAt.Time)
}

func TestReviewReschedule_DoubleReviewConflicts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	sh := env.seedShoot(models.StatusScheduled, nil)

	req, err := env.svc.RequestReschedule(ctx, clientOf(sh), sh.ID,
		time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC), "", "")
	require.NoError(t, err)

	_, err = env.svc.ReviewReschedule(ctx, admin(), req.ID, models.RescheduleApproved)
	require.NoError(t, err)

	_, err = env.svc.ReviewReschedule(ctx, admin(), req.ID, models.RescheduleRejected)
	assert.ErrorIs(t, err, workflow.ErrAlreadyReviewed)
}

func TestReviewReschedule_NonAdminForbidden(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	sh := env.seedShoot(models.StatusScheduled, nil)

	req, err := env.svc.RequestReschedule(ctx, clientOf(sh), sh.ID,
		time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC), "", "")
	require.NoError(t, err)

	_, err = env.svc.ReviewReschedule(ctx, clientOf(sh), req.ID, models.RescheduleApproved)
	assert.ErrorIs(t, err, workflow.ErrForbidden)
}

func TestReviewReschedule_InvalidDecision(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.ReviewReschedule(context.Background(), admin(), uuid.New(), models.ReschedulePending)
	var validationErr *workflow.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
