package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/draftmint/clausebind-backend/internal/http/response"
	"github.com/draftmint/clausebind-backend/internal/platform/logger"
	"github.com/draftmint/clausebind-backend/internal/services"
)

type TransformHandler struct {
	suggest services.SuggestService
	log     *logger.Logger
}

func NewTransformHandler(suggest services.SuggestService, baseLog *logger.Logger) *TransformHandler {
	return &TransformHandler{
		suggest: suggest,
		log:     baseLog.With("handler", "TransformHandler"),
	}
}

func (h *TransformHandler) Catalog(c *gin.Context) {
	response.RespondOK(c, gin.H{"transforms": h.suggest.Catalog()})
}

func (h *TransformHandler) Suggest(c *gin.Context) {
	var input services.SuggestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadJSON(c, err)
		return
	}
	suggestion, err := h.suggest.Suggest(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, suggestion)
}

func (h *TransformHandler) SuggestBatch(c *gin.Context) {
	var body struct {
		Items []services.SuggestInput `json:"items"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadJSON(c, err)
		return
	}
	results, err := h.suggest.SuggestBatch(c.Request.Context(), body.Items)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"results": results})
}

