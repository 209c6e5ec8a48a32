package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shootflow-backend/internal/middleware"
	"shootflow-backend/internal/models"
	"shootflow-backend/internal/workflow"
)

// actorFrom builds the workflow actor from the authenticated request context.
func actorFrom(c *gin.Context) (workflow.Actor, bool) {
	userIDStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return workflow.Actor{}, false
	}
	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return workflow.Actor{}, false
	}
	role, exists := c.Get(middleware.RoleKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "role not found"})
		return workflow.Actor{}, false
	}
	return workflow.Actor{ID: userID, Role: role.(models.Role)}, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps the workflow error taxonomy onto HTTP statuses. Invalid
// transitions and validation failures are 422: the request was well-formed but
// the domain refused it.
func respondError(c *gin.Context, err error) {
	var (
		transitionErr *workflow.TransitionError
		stageErr      *workflow.StageError
		validationErr *workflow.ValidationError
		storageErr    *workflow.StorageError
	)
	switch {
	case errors.Is(err, workflow.ErrForbidden):
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "forbidden"})
	case errors.Is(err, workflow.ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "already reviewed", Message: err.Error()})
	case errors.Is(err, workflow.ErrPhotographerUnavailable):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Error: "photographer unavailable", Message: err.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Error: "invalid transition", Message: err.Error()})
	case errors.As(err, &stageErr):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Error: "invalid stage", Message: err.Error()})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Error: "validation failed", Message: err.Error()})
	case errors.As(err, &storageErr):
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "storage failure", Message: err.Error()})
	case errors.Is(err, sql.ErrNoRows):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found"})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal error", Message: err.Error()})
	}
}

func shootResponse(s *models.Shoot) *models.ShootResponse {
	r := &models.ShootResponse{
		ID:                 s.ID.String(),
		ClientID:           s.ClientID.String(),
		Status:             s.Status.String(),
		WorkflowStatus:     s.Status.String(),
		IsFlagged:          s.IsFlagged,
		ExpectedRawCount:   s.ExpectedRawCount,
		ExpectedFinalCount: s.ExpectedFinalCount,
		RawPhotoCount:      s.RawPhotoCount,
		EditedPhotoCount:   s.EditedPhotoCount,
		RawMissingCount:    s.RawMissingCount,
		EditedMissingCount: s.EditedMissingCount,
		MissingRaw:         s.MissingRaw,
		MissingFinal:       s.MissingFinal,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
	if s.PhotographerID.Valid {
		r.PhotographerID = s.PhotographerID.UUID.String()
	}
	if s.EditorID.Valid {
		r.EditorID = s.EditorID.UUID.String()
	}
	if s.RepID.Valid {
		r.RepID = s.RepID.UUID.String()
	}
	if s.ScheduledAt.Valid {
		t := s.ScheduledAt.Time
		r.ScheduledAt = &t
	}
	r.ScheduledTime = s.ScheduledTime.String
	r.AdminIssueNotes = s.AdminIssueNotes.String
	r.HoldReason = s.HoldReason.String
	if s.SubmittedForReviewAt.Valid {
		t := s.SubmittedForReviewAt.Time
		r.SubmittedForReviewAt = &t
	}
	if s.AdminVerifiedAt.Valid {
		t := s.AdminVerifiedAt.Time
		r.AdminVerifiedAt = &t
	}
	if s.IssuesResolvedAt.Valid {
		t := s.IssuesResolvedAt.Time
		r.IssuesResolvedAt = &t
	}
	if s.CompletedAt.Valid {
		t := s.CompletedAt.Time
		r.CompletedAt = &t
	}
	return r
}

func fileResponse(f *models.MediaFile, storage workflow.Storage) *models.MediaFileResponse {
	r := &models.MediaFileResponse{
		ID:         f.ID.String(),
		ShootID:    f.ShootID.String(),
		Filename:   f.Filename,
		Kind:       f.Kind.String(),
		Stage:      f.Stage.String(),
		IsCover:    f.IsCover,
		IsFavorite: f.IsFavorite,
		MimeType:   f.MimeType,
		CreatedAt:  f.CreatedAt,
	}
	r.FlagReason = f.FlagReason.String
	if f.FileSize.Valid {
		r.FileSize = f.FileSize.Int64
	}
	if storage != nil {
		r.StorageURL = storage.ResolveURL(workflow.Handle(f.StoragePath))
	}
	return r
}

func rescheduleResponse(r *models.RescheduleRequest) *models.RescheduleResponse {
	resp := &models.RescheduleResponse{
		ID:            r.ID.String(),
		ShootID:       r.ShootID.String(),
		RequestedBy:   r.RequestedBy.String(),
		RequestedDate: r.RequestedDate,
		RequestedTime: r.RequestedTime.String,
		Reason:        r.Reason.String,
		Status:        r.Status.String(),
		CreatedAt:     r.CreatedAt,
	}
	if r.OriginalDate.Valid {
		t := r.OriginalDate.Time
		resp.OriginalDate = &t
	}
	if r.ReviewedAt.Valid {
		t := r.ReviewedAt.Time
		resp.ReviewedAt = &t
	}
	if r.ApprovedBy.Valid {
		resp.ApprovedBy = r.ApprovedBy.UUID.String()
	}
	return resp
}

func activityResponse(e *models.ActivityLogEntry) models.ActivityLogResponse {
	r := models.ActivityLogResponse{
		ID:        e.ID.String(),
		Action:    e.Action,
		Details:   e.Details,
		CreatedAt: e.CreatedAt,
	}
	if e.UserID.Valid {
		r.UserID = e.UserID.UUID.String()
	}
	if len(e.Metadata) > 0 {
		r.Metadata = e.Metadata
	}
	return r
}
