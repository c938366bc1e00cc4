package services

import (
	"net/http"

	"github.com/draftmint/clausebind-backend/internal/platform/apierr"
)

// Every contract failure leaves persisted state untouched: the transaction
// wrapping the mutating call rolls back on any of these.

func errUnrecognizedPattern(err error) error {
	return apierr.New(http.StatusUnprocessableEntity, apierr.CodeUnrecognizedPattern, err)
}

func errProbeMismatch(err error) error {
	return apierr.New(http.StatusConflict, apierr.CodeProbeMismatch, err)
}

func errModelConflict(err error, meta map[string]any) error {
	return apierr.WithMeta(http.StatusConflict, apierr.CodeModelConflict, err, meta)
}

func errPreconditionFailed(err error, currentEtag string) error {
	return apierr.WithMeta(http.StatusPreconditionFailed, apierr.CodePreconditionFailed, err, map[string]any{
		"current_etag": currentEtag,
	})
}

func errIdempotencyConflict(err error) error {
	return apierr.New(http.StatusConflict, apierr.CodeIdempotencyConflict, err)
}

func errNotFound(err error) error {
	return apierr.New(http.StatusNotFound, apierr.CodeNotFound, err)
}

func errInvalidArgument(err error) error {
	return apierr.New(http.StatusBadRequest, apierr.CodeInvalidArgument, err)
}
