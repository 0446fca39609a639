package errors

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper maps an application error to a ProblemDetail.
type ErrorMapper func(err error) (ProblemDetail, bool)

// ChainedResponder writes problems and maps errors through an ordered chain of
// mappers. Errors no mapper recognises become 500s whose detail stays in the
// log; the client only gets the trace id.
type ChainedResponder struct {
	baseURI string
	mappers []ErrorMapper
	logger  *slog.Logger
}

// NewChainedResponder creates a responder. baseURI is prepended to relative
// problem types; empty keeps them relative.
func NewChainedResponder(baseURI string, mappers ...ErrorMapper) *ChainedResponder {
	return &ChainedResponder{baseURI: baseURI, mappers: mappers}
}

// WithLogger returns a copy that logs unmapped errors to logger instead of the
// default slog logger.
func (r *ChainedResponder) WithLogger(logger *slog.Logger) *ChainedResponder {
	clone := *r
	clone.logger = logger
	return &clone
}

// Respond writes problem with the problem+json media type. Server errors carry
// the trace id of the request span when there is one.
func (r *ChainedResponder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.baseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.baseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	if problem.Status >= 500 {
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			problem = problem.WithExtension("traceId", sc.TraceID().String())
		}
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.JSON(problem.Status, problem)
}

// RespondError tries each mapper, then a ProblemDetail carried by err, then
// falls back to an opaque 500.
func (r *ChainedResponder) RespondError(c *gin.Context, err error) {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			r.Respond(c, problem)
			return
		}
	}
	var problem ProblemDetail
	if errors.As(err, &problem) {
		r.Respond(c, problem)
		return
	}
	r.log().LogAttrs(c.Request.Context(), slog.LevelError, "unhandled request error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
	)
	r.Respond(c, ErrInternal.WithDetail("the request could not be completed"))
}

func (r *ChainedResponder) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}
