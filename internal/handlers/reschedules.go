package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shootflow-backend/internal/models"
	"shootflow-backend/internal/store"
	"shootflow-backend/internal/workflow"
)

type RescheduleHandler struct {
	svc   *workflow.Service
	store *store.Client
}

func NewRescheduleHandler(svc *workflow.Service, store *store.Client) *RescheduleHandler {
	return &RescheduleHandler{svc: svc, store: store}
}

// Create godoc
// @Summary     Request a reschedule
// @Description Records a reschedule ask. Admin requests apply immediately;
// @Description others are persisted pending and wait for review.
// @Tags        reschedules
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Param       request body models.CreateRescheduleRequest true "Requested date/time"
// @Success     201 {object} models.RescheduleResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/reschedule-requests [post]
func (h *RescheduleHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	shootID, ok := pathUUID(c, "shoot_id")
	if !ok {
		return
	}
	var req models.CreateRescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	requestedDate, err := time.Parse("2006-01-02", req.RequestedDate)
	if err != nil {
		requestedDate, err = time.Parse(time.RFC3339, req.RequestedDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid requested_date", Message: "expected YYYY-MM-DD or RFC 3339"})
			return
		}
	}

	request, err := h.svc.RequestReschedule(c.Request.Context(), actor, shootID, requestedDate, req.RequestedTime, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rescheduleResponse(request))
}

// List godoc
// @Summary     List a shoot's reschedule requests
// @Tags        reschedules
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Success     200 {array} models.RescheduleResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/reschedule-requests [get]
func (h *RescheduleHandler) List(c *gin.Context) {
	if _, ok := actorFrom(c); !ok {
		return
	}
	shootID, ok := pathUUID(c, "shoot_id")
	if !ok {
		return
	}
	requests, err := h.store.ListReschedules(c.Request.Context(), shootID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]*models.RescheduleResponse, 0, len(requests))
	for _, r := range requests {
		resp = append(resp, rescheduleResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

// Review godoc
// @Summary     Approve or reject a pending reschedule request
// @Description Admin only. Approval applies the requested date and time to the
// @Description shoot atomically with the request's own status change.
// @Tags        reschedules
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request_id path string true "Request ID"
// @Param       request body models.ReviewRescheduleRequest true "approved or rejected"
// @Success     200 {object} models.RescheduleResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /reschedule-requests/{request_id} [patch]
func (h *RescheduleHandler) Review(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	requestID, ok := pathUUID(c, "request_id")
	if !ok {
		return
	}
	var req models.ReviewRescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	decision, err := models.ParseRescheduleStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid status", Message: err.Error()})
		return
	}

	request, err := h.svc.ReviewReschedule(c.Request.Context(), actor, requestID, decision)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rescheduleResponse(request))
}
