package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shootflow-backend/internal/models"
	"shootflow-backend/internal/store"
	"shootflow-backend/internal/workflow"
)

type ShootHandler struct {
	svc   *workflow.Service
	store *store.Client
}

func NewShootHandler(svc *workflow.Service, store *store.Client) *ShootHandler {
	return &ShootHandler{svc: svc, store: store}
}

// Create godoc
// @Summary     Create a shoot
// @Description Books a new shoot. Client bookings start as requested; admin-entered
// @Description shoots go straight to scheduled, or on hold when no time is given.
// @Tags        shoots
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateShootRequest true "Booking details"
// @Success     201 {object} models.ShootResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /shoots [post]
func (h *ShootHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req models.CreateShootRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	params := workflow.CreateParams{
		ClientID:           actor.ID,
		Address:            req.Address,
		ScheduledTime:      req.ScheduledTime,
		ExpectedRawCount:   req.ExpectedRawCount,
		ExpectedFinalCount: req.ExpectedFinalCount,
	}
	if req.ClientID != "" {
		clientID, err := uuid.Parse(req.ClientID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid client_id"})
			return
		}
		params.ClientID = clientID
	}
	if req.PhotographerID != "" {
		pid, err := uuid.Parse(req.PhotographerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid photographer_id"})
			return
		}
		params.PhotographerID = uuid.NullUUID{UUID: pid, Valid: true}
	}
	if req.RepID != "" {
		rid, err := uuid.Parse(req.RepID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid rep_id"})
			return
		}
		params.RepID = uuid.NullUUID{UUID: rid, Valid: true}
	}
	if req.ScheduledAt != "" {
		at, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid scheduled_at", Message: "expected RFC 3339"})
			return
		}
		params.ScheduledAt = &at
	}

	shoot, err := h.svc.CreateShoot(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shootResponse(shoot))
}

// Get godoc
// @Summary     Get a shoot
// @Tags        shoots
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Success     200 {object} models.ShootResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id} [get]
func (h *ShootHandler) Get(c *gin.Context) {
	if _, ok := actorFrom(c); !ok {
		return
	}
	shootID, ok := pathUUID(c, "shoot_id")
	if !ok {
		return
	}
	shoot, err := h.store.GetShoot(c.Request.Context(), shootID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shootResponse(shoot))
}

// scheduleBody parses the shared schedule/approve payload.
func scheduleBody(c *gin.Context) (at time.Time, timeOfDay string, photographerID uuid.NullUUID, ok bool) {
	var req models.ScheduleShootRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	at, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid scheduled_at", Message: "expected RFC 3339"})
		return
	}
	if req.PhotographerID != "" {
		pid, err := uuid.Parse(req.PhotographerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid photographer_id"})
			return
		}
		photographerID = uuid.NullUUID{UUID: pid, Valid: true}
	}
	return at, req.ScheduledTime, photographerID, true
}

// Schedule godoc
// @Summary     Schedule a shoot
// @Description Assigns a date (and optionally a photographer) after checking
// @Description availability. Also used to move an on-hold shoot back onto the calendar.
// @Tags        shoots
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Param       request body models.ScheduleShootRequest true "Schedule details"
// @Success     200 {object} models.ShootResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/schedule [post]
func (h *ShootHandler) Schedule(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	shootID, ok := pathUUID(c, "shoot_id")
	if !ok {
		return
	}
	at, timeOfDay, photographerID, ok := scheduleBody(c)
	if !ok {
		return
	}
	shoot, err := h.svc.Schedule(c.Request.Context(), actor, shootID, at, timeOfDay, photographerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shootResponse(shoot))
}

// ApproveRequest godoc
// @Summary     Approve a booking request
// @Tags        shoots
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Param       request body models.ScheduleShootRequest true "Schedule details"
// @Success     200 {object} models.ShootResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/approve-request [post]
func (h *ShootHandler) ApproveRequest(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	shootID, ok := pathUUID(c, "shoot_id")
	if !ok {
		return
	}
	at, timeOfDay, _, ok := scheduleBody(c)
	if !ok {
		return
	}
	shoot, err := h.svc.ApproveRequest(c.Request.Context(), actor, shootID, at, timeOfDay)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shootResponse(shoot))
}

// DeclineRequest godoc
// @Summary     Decline a booking request
// @Tags        shoots
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Param       request body models.ReasonRequest false "Decline reason"
// @Success     200 {object} models.ShootResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/decline-request [post]
func (h *ShootHandler) DeclineRequest(c *gin.Context) {
	h.reasonAction(c, h.svc.DeclineRequest)
}

// StartEditing godoc
// @Summary     Move an uploaded shoot into editing
// @Tags        shoots
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Success     200 {object} models.ShootResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/start-editing [post]
func (h *ShootHandler) StartEditing(c *gin.Context) {
	h.simpleAction(c, h.svc.StartEditing)
}

// SubmitForReview godoc
// @Summary     Submit a shoot for admin review
// @Tags        shoots
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Success     200 {object} models.ShootResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/submit-for-review [post]
func (h *ShootHandler) SubmitForReview(c *gin.Context) {
	h.simpleAction(c, h.svc.SubmitForReview)
}

// Approve godoc
// @Summary     Approve a reviewed shoot
// @Tags        shoots
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Success     200 {object} models.ShootResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/approve [post]
func (h *ShootHandler) Approve(c *gin.Context) {
	h.simpleAction(c, h.svc.Approve)
}

// Reject godoc
// @Summary     Reject a reviewed shoot with issue notes
// @Tags        shoots
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Param       request body models.RejectShootRequest true "Issue notes"
// @Success     200 {object} models.ShootResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/reject [post]
func (h *ShootHandler) Reject(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	shootID, ok := pathUUID(c, "shoot_id")
	if !ok {
		return
	}
	var req models.RejectShootRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	shoot, err := h.svc.Reject(c.Request.Context(), actor, shootID, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shootResponse(shoot))
}

// ResolveIssues godoc
// @Summary     Mark reject-cycle issues resolved and resubmit
// @Tags        shoots
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Success     200 {object} models.ShootResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/resolve-issues [post]
func (h *ShootHandler) ResolveIssues(c *gin.Context) {
	h.simpleAction(c, h.svc.ResolveIssues)
}

// PutOnHold godoc
// @Summary     Put a shoot on hold
// @Tags        shoots
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Param       request body models.ReasonRequest false "Hold reason"
// @Success     200 {object} models.ShootResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/put-on-hold [post]
func (h *ShootHandler) PutOnHold(c *gin.Context) {
	h.reasonAction(c, h.svc.PutOnHold)
}

// Complete godoc
// @Summary     Complete a delivered shoot
// @Tags        shoots
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Success     200 {object} models.ShootResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/complete [post]
func (h *ShootHandler) Complete(c *gin.Context) {
	h.simpleAction(c, h.svc.Complete)
}

// Cancel godoc
// @Summary     Cancel a shoot
// @Tags        shoots
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Param       request body models.ReasonRequest false "Cancellation reason"
// @Success     200 {object} models.ShootResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/cancel [post]
func (h *ShootHandler) Cancel(c *gin.Context) {
	h.reasonAction(c, h.svc.Cancel)
}

// RequestCancellation godoc
// @Summary     Request cancellation of a shoot
// @Tags        shoots
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Param       request body models.ReasonRequest false "Cancellation reason"
// @Success     200 {object} models.ShootResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/request-cancellation [post]
func (h *ShootHandler) RequestCancellation(c *gin.Context) {
	h.reasonAction(c, h.svc.RequestCancellation)
}

// ApproveCancellation godoc
// @Summary     Approve a pending cancellation request
// @Tags        shoots
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Success     200 {object} models.ShootResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/approve-cancellation [post]
func (h *ShootHandler) ApproveCancellation(c *gin.Context) {
	h.simpleAction(c, h.svc.ApproveCancellation)
}

// RejectCancellation godoc
// @Summary     Reject a pending cancellation request
// @Tags        shoots
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Success     200 {object} models.ShootResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/reject-cancellation [post]
func (h *ShootHandler) RejectCancellation(c *gin.Context) {
	h.simpleAction(c, h.svc.RejectCancellation)
}

// WorkflowStatus godoc
// @Summary     Workflow status summary
// @Description Returns the shoot's status plus per-stage file tallies and recent activity.
// @Tags        shoots
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Success     200 {object} models.WorkflowStatusResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/workflow-status [get]
func (h *ShootHandler) WorkflowStatus(c *gin.Context) {
	if _, ok := actorFrom(c); !ok {
		return
	}
	shootID, ok := pathUUID(c, "shoot_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	shoot, err := h.store.GetShoot(ctx, shootID)
	if err != nil {
		respondError(c, err)
		return
	}
	files, err := h.store.ListFiles(ctx, shootID)
	if err != nil {
		respondError(c, err)
		return
	}
	logs, err := h.store.ListLogs(ctx, shootID, 10)
	if err != nil {
		respondError(c, err)
		return
	}

	stats := models.FileStats{Total: len(files)}
	for _, f := range files {
		switch f.Stage {
		case models.StageTodo:
			stats.Todo++
		case models.StageCompleted:
			stats.Completed++
		case models.StageVerified:
			stats.Verified++
		case models.StageFlagged:
			stats.Flagged++
		}
	}

	resp := models.WorkflowStatusResponse{
		ShootID:        shoot.ID.String(),
		Status:         shoot.Status.String(),
		WorkflowStatus: shoot.Status.String(),
		FileStats:      stats,
	}
	for _, e := range logs {
		resp.RecentActivity = append(resp.RecentActivity, activityResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

// Activity godoc
// @Summary     Activity log
// @Tags        shoots
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Success     200 {array} models.ActivityLogResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/activity [get]
func (h *ShootHandler) Activity(c *gin.Context) {
	if _, ok := actorFrom(c); !ok {
		return
	}
	shootID, ok := pathUUID(c, "shoot_id")
	if !ok {
		return
	}
	logs, err := h.store.ListLogs(c.Request.Context(), shootID, 100)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]models.ActivityLogResponse, 0, len(logs))
	for _, e := range logs {
		resp = append(resp, activityResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

type shootAction func(ctx context.Context, actor workflow.Actor, shootID uuid.UUID) (*models.Shoot, error)

func (h *ShootHandler) simpleAction(c *gin.Context, fn shootAction) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	shootID, ok := pathUUID(c, "shoot_id")
	if !ok {
		return
	}
	shoot, err := fn(c.Request.Context(), actor, shootID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shootResponse(shoot))
}

type reasonAction func(ctx context.Context, actor workflow.Actor, shootID uuid.UUID, reason string) (*models.Shoot, error)

func (h *ShootHandler) reasonAction(c *gin.Context, fn reasonAction) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	shootID, ok := pathUUID(c, "shoot_id")
	if !ok {
		return
	}
	var req models.ReasonRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
			return
		}
	}
	shoot, err := fn(c.Request.Context(), actor, shootID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shootResponse(shoot))
}
