package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/draftmint/clausebind-backend/internal/http/response"
	"github.com/draftmint/clausebind-backend/internal/platform/logger"
	"github.com/draftmint/clausebind-backend/internal/services"
)

type RegistryHandler struct {
	registry services.RegistryService
	log      *logger.Logger
}

func NewRegistryHandler(registry services.RegistryService, baseLog *logger.Logger) *RegistryHandler {
	return &RegistryHandler{
		registry: registry,
		log:      baseLog.With("handler", "RegistryHandler"),
	}
}

func (h *RegistryHandler) RegisterDocument(c *gin.Context) {
	var input services.RegisterDocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadJSON(c, err)
		return
	}
	doc, err := h.registry.RegisterDocument(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("ETag", doc.Etag)
	response.RespondCreated(c, doc)
}

func (h *RegistryHandler) RegisterQuestion(c *gin.Context) {
	var input services.RegisterQuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadJSON(c, err)
		return
	}
	question, err := h.registry.RegisterQuestion(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("ETag", question.Etag)
	response.RespondCreated(c, question)
}
