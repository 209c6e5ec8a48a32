package workflow_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shootflow-backend/internal/models"
	"shootflow-backend/internal/workflow"
)

func TestCreateShoot_ClientStartsRequested(t *testing.T) {
	env := newTestEnv()
	actor := workflow.Actor{ID: uuid.New(), Role: models.RoleClient}

	shoot, err := env.svc.CreateShoot(context.Background(), actor, workflow.CreateParams{
		ClientID: actor.ID,
		Address:  "12 Ocean Ave",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRequested, shoot.Status)

	logs := env.store.logsFor(shoot.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, "shoot_requested", logs[0].Action)
}

func TestCreateShoot_AdminWithTimeStartsScheduled(t *testing.T) {
	env := newTestEnv()
	actor := admin()
	at := time.Now().Add(48 * time.Hour)

	shoot, err := env.svc.CreateShoot(context.Background(), actor, workflow.CreateParams{
		ClientID:       uuid.New(),
		PhotographerID: uuid.NullUUID{UUID: uuid.New(), Valid: true},
		ScheduledAt:    &at,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, shoot.Status)
	assert.Contains(t, env.storage.folders, shoot.ID)
}

func TestCreateShoot_AdminWithoutTimeStartsOnHold(t *testing.T) {
	env := newTestEnv()

	shoot, err := env.svc.CreateShoot(context.Background(), admin(), workflow.CreateParams{
		ClientID: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnHold, shoot.Status)
}

func TestCreateShoot_PhotographerUnavailable(t *testing.T) {
	env := newTestEnv()
	env.available.available = false
	at := time.Now().Add(48 * time.Hour)

	_, err := env.svc.CreateShoot(context.Background(), admin(), workflow.CreateParams{
		ClientID:       uuid.New(),
		PhotographerID: uuid.NullUUID{UUID: uuid.New(), Valid: true},
		ScheduledAt:    &at,
	})
	assert.ErrorIs(t, err, workflow.ErrPhotographerUnavailable)
}

// Full happy path: scheduled → uploaded → editing → pending_review →
// delivered → completed, with one activity entry per accepted transition.
func TestLifecycle_HappyPath(t *testing.T) {
	env := newTestEnv()
	actor := admin()
	ctx := context.Background()
	sh := env.seedShoot(models.StatusScheduled, func(s *models.Shoot) {
		s.PhotographerID = uuid.NullUUID{UUID: uuid.New(), Valid: true}
	})

	result, err := env.svc.UploadFiles(ctx, actor, sh.ID, models.MediaKindRaw, []workflow.UploadItem{
		{Filename: "front.jpg", ContentType: "image/jpeg", Data: []byte("a")},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusUploaded, result.Shoot.Status)
	assert.True(t, result.Shoot.PhotosUploadedAt.Valid)

	shoot, err := env.svc.StartEditing(ctx, actor, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusEditing, shoot.Status)

	shoot, err = env.svc.SubmitForReview(ctx, actor, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingReview, shoot.Status)
	assert.True(t, shoot.SubmittedForReviewAt.Valid)

	shoot, err = env.svc.Approve(ctx, actor, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, shoot.Status)
	assert.True(t, shoot.AdminVerifiedAt.Valid)

	shoot, err = env.svc.Complete(ctx, actor, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, shoot.Status)
	assert.True(t, shoot.CompletedAt.Valid)
	assert.Contains(t, env.queue.enqueued(), workflow.TaskArchiveShoot)

	actions := []string{}
	for _, e := range env.store.logsFor(sh.ID) {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []string{
		"media_uploaded",
		"shoot_editing_started",
		"shoot_submitted_for_review",
		"shoot_admin_verified",
		"shoot_completed",
	}, actions)
}

func TestTransition_LogCarriesOldAndNewStatus(t *testing.T) {
	env := newTestEnv()
	sh := env.seedShoot(models.StatusUploaded, nil)

	_, err := env.svc.StartEditing(context.Background(), admin(), sh.ID)
	require.NoError(t, err)

	logs := env.store.logsFor(sh.ID)
	require.Len(t, logs, 1)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(logs[0].Metadata, &meta))
	assert.Equal(t, "uploaded", meta["old_status"])
	assert.Equal(t, "editing", meta["new_status"])
}

func TestRejectionLoop(t *testing.T) {
	env := newTestEnv()
	actor := admin()
	ctx := context.Background()
	sh := env.seedShoot(models.StatusPendingReview, nil)

	// Reject without notes is a validation failure, not a transition.
	_, err := env.svc.Reject(ctx, actor, sh.ID, "")
	var validationErr *workflow.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	shoot, err := env.svc.Reject(ctx, actor, sh.ID, "window reflections in living room")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnHold, shoot.Status)
	assert.True(t, shoot.IsFlagged)
	assert.Equal(t, "window reflections in living room", shoot.AdminIssueNotes.String)

	shoot, err = env.svc.ResolveIssues(ctx, actor, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingReview, shoot.Status)
	assert.False(t, shoot.IsFlagged)
	assert.True(t, shoot.IssuesResolvedAt.Valid)

	// Second reject overwrites the live notes.
	shoot, err = env.svc.Reject(ctx, actor, sh.ID, "sky still blown out")
	require.NoError(t, err)
	assert.Equal(t, "sky still blown out", shoot.AdminIssueNotes.String)
	assert.False(t, shoot.IssuesResolvedAt.Valid)
}

func TestTransition_AbsentEdgesRejected(t *testing.T) {
	env := newTestEnv()
	actor := admin()
	ctx := context.Background()

	cases := []struct {
		name string
		from models.Status
		call func(uuid.UUID) error
	}{
		{"approve from scheduled", models.StatusScheduled, func(id uuid.UUID) error {
			_, err := env.svc.Approve(ctx, actor, id)
			return err
		}},
		{"complete from editing", models.StatusEditing, func(id uuid.UUID) error {
			_, err := env.svc.Complete(ctx, actor, id)
			return err
		}},
		{"start editing from pending_review", models.StatusPendingReview, func(id uuid.UUID) error {
			_, err := env.svc.StartEditing(ctx, actor, id)
			return err
		}},
		{"resolve issues without flag", models.StatusOnHold, func(id uuid.UUID) error {
			_, err := env.svc.ResolveIssues(ctx, actor, id)
			return err
		}},
		{"cancel a cancelled shoot", models.StatusCancelled, func(id uuid.UUID) error {
			_, err := env.svc.Cancel(ctx, actor, id, "")
			return err
		}},
		{"schedule a declined shoot", models.StatusDeclined, func(id uuid.UUID) error {
			_, err := env.svc.Schedule(ctx, actor, id, time.Now().Add(time.Hour), "", uuid.NullUUID{})
			return err
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sh := env.seedShoot(tc.from, nil)
			err := tc.call(sh.ID)
			var transitionErr *workflow.TransitionError
			require.ErrorAs(t, err, &transitionErr)
			assert.Equal(t, tc.from, transitionErr.From)

			// A rejected transition leaves no trace.
			assert.Empty(t, env.store.logsFor(sh.ID))
			after, _ := env.store.GetShoot(ctx, sh.ID)
			assert.Equal(t, tc.from, after.Status)
		})
	}
}

func TestTransition_EdgeCheckedBeforeRole(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	intruder := workflow.Actor{ID: uuid.New(), Role: models.RoleClient}

	// Edge exists, role fails: Forbidden.
	sh := env.seedShoot(models.StatusPendingReview, nil)
	_, err := env.svc.Approve(ctx, intruder, sh.ID)
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	// Edge absent: InvalidTransition even for the unauthorized caller.
	sh = env.seedShoot(models.StatusScheduled, nil)
	_, err = env.svc.Approve(ctx, intruder, sh.ID)
	var transitionErr *workflow.TransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestSubmitReview_FromOnHoldNeedsAddressedFlag(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// Plain on-hold shoot (never rejected): no resubmit edge.
	sh := env.seedShoot(models.StatusOnHold, nil)
	_, err := env.svc.SubmitForReview(ctx, admin(), sh.ID)
	var transitionErr *workflow.TransitionError
	assert.ErrorAs(t, err, &transitionErr)

	// Rejected shoot: resubmit allowed and the flag clears.
	sh = env.seedShoot(models.StatusOnHold, func(s *models.Shoot) {
		s.IsFlagged = true
		s.AdminIssueNotes = sql.NullString{String: "fix staging", Valid: true}
	})
	shoot, err := env.svc.SubmitForReview(ctx, admin(), sh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingReview, shoot.Status)
	assert.False(t, shoot.IsFlagged)
	assert.False(t, shoot.AdminIssueNotes.Valid)
}

func TestSchedule_PhotographerCanScheduleOwnShoot(t *testing.T) {
	env := newTestEnv()
	sh := env.seedShoot(models.StatusOnHold, func(s *models.Shoot) {
		s.PhotographerID = uuid.NullUUID{UUID: uuid.New(), Valid: true}
	})

	shoot, err := env.svc.Schedule(context.Background(), photographerOf(sh), sh.ID,
		time.Now().Add(24*time.Hour), "10:00 AM", uuid.NullUUID{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, shoot.Status)
	assert.False(t, shoot.HoldReason.Valid)
}

func TestSchedule_UnassignedPhotographerForbidden(t *testing.T) {
	env := newTestEnv()
	sh := env.seedShoot(models.StatusOnHold, func(s *models.Shoot) {
		s.PhotographerID = uuid.NullUUID{UUID: uuid.New(), Valid: true}
	})
	other := workflow.Actor{ID: uuid.New(), Role: models.RolePhotographer}

	_, err := env.svc.Schedule(context.Background(), other, sh.ID,
		time.Now().Add(24*time.Hour), "", uuid.NullUUID{})
	assert.ErrorIs(t, err, workflow.ErrForbidden)
}

func TestBookingRequestSubflow(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sh := env.seedShoot(models.StatusRequested, nil)
	shoot, err := env.svc.ApproveRequest(ctx, admin(), sh.ID, time.Now().Add(72*time.Hour), "9:00 AM")
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, shoot.Status)
	assert.True(t, shoot.ApprovedAt.Valid)

	sh = env.seedShoot(models.StatusRequested, nil)
	shoot, err = env.svc.DeclineRequest(ctx, admin(), sh.ID, "outside coverage area")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeclined, shoot.Status)
	assert.Equal(t, "outside coverage area", shoot.DeclinedReason.String)

	// Declined is terminal.
	_, err = env.svc.Schedule(ctx, admin(), sh.ID, time.Now().Add(time.Hour), "", uuid.NullUUID{})
	var transitionErr *workflow.TransitionError
	assert.ErrorAs(t, err, &transitionErr)

	// Clients cannot approve their own request.
	sh = env.seedShoot(models.StatusRequested, nil)
	_, err = env.svc.ApproveRequest(ctx, clientOf(sh), sh.ID, time.Now().Add(time.Hour), "")
	assert.ErrorIs(t, err, workflow.ErrForbidden)
}

func TestCancellationRequestSubflow(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	sh := env.seedShoot(models.StatusScheduled, nil)

	// Request does not change status.
	shoot, err := env.svc.RequestCancellation(ctx, clientOf(sh), sh.ID, "property sold")
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, shoot.Status)
	assert.True(t, shoot.CancellationRequestedAt.Valid)

	// Only admins review.
	_, err = env.svc.RejectCancellation(ctx, clientOf(sh), sh.ID)
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	shoot, err = env.svc.ApproveCancellation(ctx, admin(), sh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, shoot.Status)
	assert.False(t, shoot.CancellationRequestedAt.Valid)
}

func TestRejectCancellation_ClearsRequest(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	sh := env.seedShoot(models.StatusScheduled, nil)

	_, err := env.svc.RequestCancellation(ctx, clientOf(sh), sh.ID, "changed mind")
	require.NoError(t, err)

	shoot, err := env.svc.RejectCancellation(ctx, admin(), sh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, shoot.Status)
	assert.False(t, shoot.CancellationRequestedAt.Valid)
	assert.False(t, shoot.CancellationRequestedReason.Valid)
}

func TestNotifierFailureNeverBlocksTransition(t *testing.T) {
	env := newTestEnv()
	env.notifier.err = context.DeadlineExceeded
	sh := env.seedShoot(models.StatusUploaded, nil)

	shoot, err := env.svc.StartEditing(context.Background(), admin(), sh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusEditing, shoot.Status)
	assert.Contains(t, env.notifier.eventNames(), "shoot_editing_started")
}

func TestCanTransition(t *testing.T) {
	sh := &models.Shoot{Status: models.StatusPendingReview}
	assert.True(t, workflow.CanTransition(admin(), sh, workflow.ActionApprove))
	assert.False(t, workflow.CanTransition(workflow.Actor{ID: uuid.New(), Role: models.RoleClient}, sh, workflow.ActionApprove))

	sh.Status = models.StatusScheduled
	assert.False(t, workflow.CanTransition(admin(), sh, workflow.ActionApprove))
}
