package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/draftmint/clausebind-backend/internal/http/response"
	"github.com/draftmint/clausebind-backend/internal/platform/apierr"
	"github.com/draftmint/clausebind-backend/internal/platform/logger"
	"github.com/draftmint/clausebind-backend/internal/services"
	"github.com/draftmint/clausebind-backend/internal/transform"
)

type BindingHandler struct {
	binding services.BindingService
	cleanup services.CleanupService
	log     *logger.Logger
}

func NewBindingHandler(binding services.BindingService, cleanup services.CleanupService, baseLog *logger.Logger) *BindingHandler {
	return &BindingHandler{
		binding: binding,
		cleanup: cleanup,
		log:     baseLog.With("handler", "BindingHandler"),
	}
}

type bindRequest struct {
	TransformID string                 `json:"transform_id"`
	RawText     string                 `json:"raw_text"`
	Receipt     transform.ProbeReceipt `json:"probe_receipt"`
	Mode        string                 `json:"mode"`
}

// Bind handles POST /api/questions/:id/bindings. The idempotency key and the
// etag precondition travel as headers; everything tied to the probed text
// travels in the body.
func (h *BindingHandler) Bind(c *gin.Context) {
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidArgument,
			fmt.Errorf("invalid question id: %w", err), nil)
		return
	}

	var body bindRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadJSON(c, err)
		return
	}

	res, err := h.binding.Bind(c.Request.Context(), services.BindInput{
		QuestionID:       questionID,
		TransformID:      body.TransformID,
		RawText:          body.RawText,
		Receipt:          body.Receipt,
		Mode:             body.Mode,
		IdempotencyKey:   strings.TrimSpace(c.GetHeader("Idempotency-Key")),
		PreconditionEtag: etagHeader(c),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if res.Bound {
		c.Header("ETag", res.NewEtag)
		response.RespondCreated(c, res)
		return
	}
	response.RespondOK(c, res)
}

// Unbind handles DELETE /api/placeholders/:id with an If-Match precondition.
func (h *BindingHandler) Unbind(c *gin.Context) {
	placeholderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidArgument,
			fmt.Errorf("invalid placeholder id: %w", err), nil)
		return
	}

	res, err := h.cleanup.Unbind(c.Request.Context(), services.UnbindInput{
		PlaceholderID:    placeholderID,
		PreconditionEtag: etagHeader(c),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("ETag", res.NewEtag)
	response.RespondOK(c, res)
}

// Purge handles DELETE /api/documents/:id/placeholders.
func (h *BindingHandler) Purge(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidArgument,
			fmt.Errorf("invalid document id: %w", err), nil)
		return
	}

	res, err := h.cleanup.Purge(c.Request.Context(), documentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// etagHeader strips the RFC 7232 quoting clients commonly send on If-Match.
func etagHeader(c *gin.Context) string {
	return strings.Trim(strings.TrimSpace(c.GetHeader("If-Match")), `"`)
}
