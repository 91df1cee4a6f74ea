package errors

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper maps application errors to a ProblemDetail. It reports false for errors it does not know.
type ErrorMapper func(err error) (ProblemDetail, bool)

// Responder writes Problem Details responses, consulting its mappers in order.
type Responder struct {
	// BaseURI is prepended to relative problem type URIs.
	BaseURI string
	mappers []ErrorMapper
	logger  *slog.Logger
}

// ResponderOption configures a Responder.
type ResponderOption func(*Responder)

// WithMapper appends an error mapper to the chain.
func WithMapper(mapper ErrorMapper) ResponderOption {
	return func(r *Responder) {
		if mapper != nil {
			r.mappers = append(r.mappers, mapper)
		}
	}
}

// WithLogger sets the logger used for errors that end up as 5xx responses.
func WithLogger(logger *slog.Logger) ResponderOption {
	return func(r *Responder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResponder creates a responder with an optional base URI.
func NewResponder(baseURI string, opts ...ResponderOption) *Responder {
	r := &Responder{BaseURI: baseURI, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond sends problem with the problem+json content type and aborts the gin chain.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.BaseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.BaseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// RespondError maps err through the chain, then falls back to ProblemDetail
// values and finally to a generic 500 that does not leak err.
func (r *Responder) RespondError(c *gin.Context, err error) {
	problem := r.ProblemFor(err)
	if problem.Status >= 500 {
		r.logger.LogAttrs(c.Request.Context(), slog.LevelError, "request failed",
			slog.String("path", c.Request.URL.Path),
			slog.String("method", c.Request.Method),
			slog.String("error", err.Error()),
		)
	}
	r.Respond(c, problem)
}

// ProblemFor resolves the problem RespondError would send for err.
func (r *Responder) ProblemFor(err error) ProblemDetail {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			return problem
		}
	}
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem
	}
	return ErrInternal.WithDetail("unexpected failure")
}
