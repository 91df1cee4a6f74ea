// Package errors provides RFC 7807 Problem Details for the order HTTP API.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail represents an RFC 7807 Problem Details response.
// Code and Recovery are extension members every order error carries so
// clients can branch without parsing Detail.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	// Code is a stable machine-readable identifier such as "not_pending".
	Code string `json:"code,omitempty"`
	// Recovery hints what the client should do next, see the Recovery* constants.
	Recovery string `json:"recovery,omitempty"`
	// Extensions holds additional problem-specific properties.
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error implements the error interface.
func (p ProblemDetail) Error() string {
	msg := p.Title
	if p.Detail != "" {
		msg = fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	if p.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, p.Code)
	}
	return msg
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithCode returns a copy with the given machine-readable code.
func (p ProblemDetail) WithCode(code string) ProblemDetail {
	p.Code = code
	return p
}

// WithRecovery returns a copy with the given recovery hint.
func (p ProblemDetail) WithRecovery(recovery string) ProblemDetail {
	p.Recovery = recovery
	return p
}

// WithExtension returns a copy with an additional extension property.
// The extension map is copied so templates are never mutated.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	extensions := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		extensions[k] = v
	}
	extensions[key] = value
	p.Extensions = extensions
	return p
}

// Recovery hints.
const (
	RecoveryFixInput = "fix-input"
	RecoveryRefetch  = "refetch"
	RecoveryRetry    = "retry"
	RecoveryNone     = "none"
)

// Problem type URI references.
const (
	TypeValidation    = "/problems/validation-error"
	TypeNotFound      = "/problems/not-found"
	TypeConflict      = "/problems/conflict"
	TypeInternal      = "/problems/internal-error"
	TypeUnauthorized  = "/problems/unauthorized"
	TypeForbidden     = "/problems/forbidden"
	TypeBadRequest    = "/problems/bad-request"
	TypeUnprocessable = "/problems/unprocessable-entity"
)

// Problem templates.
var (
	ErrNotFound = ProblemDetail{
		Type:   TypeNotFound,
		Title:  "Resource Not Found",
		Status: http.StatusNotFound,
	}

	// ErrValidation is a request that violates an order invariant.
	ErrValidation = ProblemDetail{
		Type:   TypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
	}

	// ErrBadRequest is a request that could not be decoded or bound.
	ErrBadRequest = ProblemDetail{
		Type:   TypeBadRequest,
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
	}

	ErrConflict = ProblemDetail{
		Type:   TypeConflict,
		Title:  "Conflict",
		Status: http.StatusConflict,
	}

	ErrInternal = ProblemDetail{
		Type:     TypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Code:     "internal",
		Recovery: RecoveryRetry,
	}

	ErrUnauthorized = ProblemDetail{
		Type:     TypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Code:     "unauthenticated",
		Recovery: RecoveryNone,
	}

	ErrForbidden = ProblemDetail{
		Type:     TypeForbidden,
		Title:    "Forbidden",
		Status:   http.StatusForbidden,
		Code:     "forbidden",
		Recovery: RecoveryNone,
	}

	// ErrUnprocessable is a well-formed request that contradicts an earlier one, e.g. a reused idempotency key.
	ErrUnprocessable = ProblemDetail{
		Type:   TypeUnprocessable,
		Title:  "Unprocessable Entity",
		Status: http.StatusUnprocessableEntity,
	}
)

// NewInvalidRequestProblem reports a request rejected before it reached the order service.
// fields maps JSON field names to the failed rule and may be nil.
func NewInvalidRequestProblem(detail string, fields map[string]string) ProblemDetail {
	problem := ErrBadRequest.
		WithDetail(detail).
		WithCode("invalid_request").
		WithRecovery(RecoveryFixInput)
	if len(fields) > 0 {
		problem = problem.WithExtension("fields", fields)
	}
	return problem
}
