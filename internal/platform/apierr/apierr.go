package apierr

import "fmt"

// Codes for the contract-error classes the binding engine can return.
// Internal faults carry CodeInternal and must never be reported under a
// contract code.
const (
	CodeUnrecognizedPattern = "unrecognized_pattern"
	CodeProbeMismatch       = "probe_mismatch"
	CodeModelConflict       = "model_conflict"
	CodePreconditionFailed  = "precondition_failed"
	CodeIdempotencyConflict = "idempotency_conflict"
	CodeNotFound            = "not_found"
	CodeInvalidArgument     = "invalid_argument"
	CodeInternal            = "internal"
)

type Error struct {
	Status int
	Code   string
	Err    error
	// Meta carries machine-readable context for the caller, e.g. the
	// question's current model on a model_conflict or the current etag on
	// a precondition_failed.
	Meta map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func WithMeta(status int, code string, err error, meta map[string]any) *Error {
	return &Error{Status: status, Code: code, Err: err, Meta: meta}
}
