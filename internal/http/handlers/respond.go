package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/draftmint/clausebind-backend/internal/http/response"
	"github.com/draftmint/clausebind-backend/internal/platform/apierr"
)

// respondServiceError maps the service error taxonomy onto the wire. Anything
// that is not an apierr is an internal fault and keeps its detail out of the
// response body.
func respondServiceError(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		response.RespondError(c, ae.Status, ae.Code, ae.Err, ae.Meta)
		return
	}
	response.RespondError(c, http.StatusInternalServerError, apierr.CodeInternal, errors.New("internal error"), nil)
}

func respondBadJSON(c *gin.Context, err error) {
	response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidArgument,
		fmt.Errorf("invalid request body: %w", err), nil)
}
