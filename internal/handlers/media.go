package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shootflow-backend/internal/models"
	"shootflow-backend/internal/store"
	"shootflow-backend/internal/workflow"
)

type MediaHandler struct {
	svc     *workflow.Service
	store   *store.Client
	storage workflow.Storage
}

func NewMediaHandler(svc *workflow.Service, store *store.Client, storage workflow.Storage) *MediaHandler {
	return &MediaHandler{svc: svc, store: store, storage: storage}
}

// Upload godoc
// @Summary     Upload media files
// @Description Uploads a batch of files for a shoot. Each file is processed
// @Description independently: failures are reported per file and never roll back
// @Description the files that succeeded. Raw and extra files land in the todo
// @Description stage, edited files in completed. The first raw upload moves a
// @Description scheduled shoot to uploaded.
// @Tags        media
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Param       files formData file true "Media files (multiple allowed)"
// @Param       kind formData string false "raw | edited | extra (default raw)"
// @Success     200 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/files [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	shootID, ok := pathUUID(c, "shoot_id")
	if !ok {
		return
	}

	kind := models.MediaKindRaw
	if k := c.PostForm("kind"); k != "" {
		parsed, err := models.ParseMediaKind(k)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid kind", Message: err.Error()})
			return
		}
		kind = parsed
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid multipart form", Message: err.Error()})
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no files provided"})
		return
	}

	items := make([]workflow.UploadItem, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to open file " + fh.Filename})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read file " + fh.Filename})
			return
		}
		items = append(items, workflow.UploadItem{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	result, err := h.svc.UploadFiles(c.Request.Context(), actor, shootID, kind, items)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.UploadResponse{
		ShootID:      shootID.String(),
		SuccessCount: len(result.Uploaded),
		ErrorCount:   len(result.Errors),
		Shoot:        shootResponse(result.Shoot),
	}
	for _, f := range result.Uploaded {
		size := int64(0)
		if f.FileSize.Valid {
			size = f.FileSize.Int64
		}
		resp.Uploaded = append(resp.Uploaded, models.UploadedFileInfo{
			ID:       f.ID.String(),
			Filename: f.Filename,
			Stage:    f.Stage.String(),
			Size:     size,
		})
	}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, models.UploadErrorInfo{
			Filename: e.Filename,
			Error:    e.Message,
			Stage:    e.Stage,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary     List a shoot's media files
// @Tags        media
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Success     200 {array} models.MediaFileResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/files [get]
func (h *MediaHandler) List(c *gin.Context) {
	if _, ok := actorFrom(c); !ok {
		return
	}
	shootID, ok := pathUUID(c, "shoot_id")
	if !ok {
		return
	}
	files, err := h.store.ListFiles(c.Request.Context(), shootID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]*models.MediaFileResponse, 0, len(files))
	for _, f := range files {
		resp = append(resp, fileResponse(f, h.storage))
	}
	c.JSON(http.StatusOK, resp)
}

// Complete godoc
// @Summary     Move a file to the completed stage
// @Tags        media
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Param       file_id path string true "File ID"
// @Success     200 {object} models.MediaFileResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/files/{file_id}/complete [post]
func (h *MediaHandler) Complete(c *gin.Context) {
	actor, shootID, fileID, ok := h.fileRequest(c)
	if !ok {
		return
	}
	file, err := h.svc.MoveFileToCompleted(c.Request.Context(), actor, shootID, fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fileResponse(file, h.storage))
}

// Verify godoc
// @Summary     Verify a completed file
// @Description Admin only. Moves the file to final storage. When the last file
// @Description verifies while the shoot is editing, the shoot is delivered.
// @Tags        media
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Param       file_id path string true "File ID"
// @Param       request body models.VerifyFileRequest false "Verification notes"
// @Success     200 {object} models.MediaFileResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/files/{file_id}/verify [post]
func (h *MediaHandler) Verify(c *gin.Context) {
	actor, shootID, fileID, ok := h.fileRequest(c)
	if !ok {
		return
	}
	var req models.VerifyFileRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
			return
		}
	}
	file, err := h.svc.VerifyFile(c.Request.Context(), actor, shootID, fileID, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fileResponse(file, h.storage))
}

// Flag godoc
// @Summary     Flag a file, or clear its flag
// @Description Flagging diverts the file out of the pipeline and raises the
// @Description shoot-level flag. Pass clear_flag=true to return the file to todo.
// @Tags        media
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Param       file_id path string true "File ID"
// @Param       request body models.FlagFileRequest false "Flag details"
// @Success     200 {object} models.MediaFileResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/files/{file_id}/flag [post]
func (h *MediaHandler) Flag(c *gin.Context) {
	actor, shootID, fileID, ok := h.fileRequest(c)
	if !ok {
		return
	}
	var req models.FlagFileRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
			return
		}
	}

	var file *models.MediaFile
	var err error
	if req.ClearFlag {
		file, err = h.svc.ClearFlag(c.Request.Context(), actor, shootID, fileID)
	} else {
		file, err = h.svc.FlagFile(c.Request.Context(), actor, shootID, fileID, req.Reason)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fileResponse(file, h.storage))
}

// Favorite godoc
// @Summary     Toggle a file's favorite marker
// @Tags        media
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Param       file_id path string true "File ID"
// @Success     200 {object} models.MediaFileResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/files/{file_id}/favorite [post]
func (h *MediaHandler) Favorite(c *gin.Context) {
	actor, shootID, fileID, ok := h.fileRequest(c)
	if !ok {
		return
	}
	file, err := h.svc.ToggleFavorite(c.Request.Context(), actor, shootID, fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fileResponse(file, h.storage))
}

// Cover godoc
// @Summary     Make a file the shoot's cover image
// @Tags        media
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Param       file_id path string true "File ID"
// @Success     200 {object} models.MediaFileResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/files/{file_id}/cover [post]
func (h *MediaHandler) Cover(c *gin.Context) {
	actor, shootID, fileID, ok := h.fileRequest(c)
	if !ok {
		return
	}
	file, err := h.svc.SetCover(c.Request.Context(), actor, shootID, fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fileResponse(file, h.storage))
}

// Comment godoc
// @Summary     Comment on a file
// @Tags        media
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Param       file_id path string true "File ID"
// @Param       request body models.CommentFileRequest true "Comment"
// @Success     200 {object} models.MediaFileResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/files/{file_id}/comment [post]
func (h *MediaHandler) Comment(c *gin.Context) {
	actor, shootID, fileID, ok := h.fileRequest(c)
	if !ok {
		return
	}
	var req models.CommentFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	file, err := h.svc.CommentFile(c.Request.Context(), actor, shootID, fileID, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fileResponse(file, h.storage))
}

// Delete godoc
// @Summary     Delete a file
// @Tags        media
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID"
// @Param       file_id path string true "File ID"
// @Success     204
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/files/{file_id} [delete]
func (h *MediaHandler) Delete(c *gin.Context) {
	actor, shootID, fileID, ok := h.fileRequest(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteFile(c.Request.Context(), actor, shootID, fileID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MediaHandler) fileRequest(c *gin.Context) (workflow.Actor, uuid.UUID, uuid.UUID, bool) {
	actor, ok := actorFrom(c)
	if !ok {
		return workflow.Actor{}, uuid.Nil, uuid.Nil, false
	}
	shootID, ok := pathUUID(c, "shoot_id")
	if !ok {
		return workflow.Actor{}, uuid.Nil, uuid.Nil, false
	}
	fileID, ok := pathUUID(c, "file_id")
	if !ok {
		return workflow.Actor{}, uuid.Nil, uuid.Nil, false
	}
	return actor, shootID, fileID, true
}
