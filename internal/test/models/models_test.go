package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shootflow-backend/internal/models"
)

func TestParseStatus_Canonical(t *testing.T) {
	for _, s := range []models.Status{
		models.StatusRequested, models.StatusScheduled, models.StatusUploaded,
		models.StatusEditing, models.StatusPendingReview, models.StatusDelivered,
		models.StatusOnHold, models.StatusCancelled, models.StatusDeclined,
	} {
		parsed, err := models.ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
}

func TestParseStatus_LegacySynonyms(t *testing.T) {
	cases := map[string]models.Status{
		"booked":           models.StatusScheduled,
		"raw_uploaded":     models.StatusUploaded,
		"photos_uploaded":  models.StatusUploaded,
		"review":           models.StatusPendingReview,
		"ready_for_review": models.StatusPendingReview,
		"qc":               models.StatusPendingReview,
		"admin_verified":   models.StatusDelivered,
		"ready_for_client": models.StatusDelivered,
		"hold_on":          models.StatusOnHold,
		"hold":             models.StatusOnHold,
	}
	for raw, want := range cases {
		parsed, err := models.ParseStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, parsed, raw)
	}
}

func TestParseStatus_UnknownRejected(t *testing.T) {
	_, err := models.ParseStatus("shipped")
	assert.Error(t, err)
	_, err = models.ParseStatus("")
	assert.Error(t, err)
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, models.StatusCancelled.Terminal())
	assert.True(t, models.StatusDeclined.Terminal())
	assert.False(t, models.StatusDelivered.Terminal())
	assert.False(t, models.StatusOnHold.Terminal())
}

func TestParseRole_NormalizesVariants(t *testing.T) {
	cases := map[string]models.Role{
		"client":         models.RoleClient,
		"customer":       models.RoleClient,
		"photographer":   models.RolePhotographer,
		"editor":         models.RoleEditor,
		"rep":            models.RoleRep,
		"representative": models.RoleRep,
		"admin":          models.RoleAdmin,
		"Admin":          models.RoleAdmin,
		"superadmin":     models.RoleSuperAdmin,
		"super_admin":    models.RoleSuperAdmin,
		"super-admin":    models.RoleSuperAdmin,
		" SUPER_ADMIN ":  models.RoleSuperAdmin,
	}
	for raw, want := range cases {
		parsed, err := models.ParseRole(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, parsed, raw)
	}

	_, err := models.ParseRole("intern")
	assert.Error(t, err)
}

func TestRoleIsAdmin(t *testing.T) {
	assert.True(t, models.RoleAdmin.IsAdmin())
	assert.True(t, models.RoleSuperAdmin.IsAdmin())
	assert.False(t, models.RoleRep.IsAdmin())
	assert.False(t, models.RoleClient.IsAdmin())
}

func TestParseStage(t *testing.T) {
	for _, s := range []models.Stage{
		models.StageTodo, models.StageCompleted, models.StageVerified, models.StageFlagged,
	} {
		parsed, err := models.ParseStage(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	_, err := models.ParseStage("done")
	assert.Error(t, err)
}

func TestParseMediaKind(t *testing.T) {
	for _, k := range []models.MediaKind{
		models.MediaKindRaw, models.MediaKindEdited, models.MediaKindExtra,
	} {
		parsed, err := models.ParseMediaKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := models.ParseMediaKind("video")
	assert.Error(t, err)
}
