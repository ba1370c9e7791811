package logging

import (
	"context"
	"log/slog"
)

// Standardized structured logging keys shared across packages.
const (
	// FieldComponent is the structured logging key for component names.
	FieldComponent = "component"
	// FieldWork is the structured logging key for work identifiers.
	FieldWork = "work_id"
	// FieldVerse is the structured logging key for verse identifiers.
	FieldVerse = "verse_id"
	// FieldCommentary is the structured logging key for commentary identifiers.
	FieldCommentary = "commentary_id"
	// FieldActor is the structured logging key for the acting user's email.
	FieldActor = "actor"
	// FieldAction is the structured logging key for review actions.
	FieldAction = "action"
	// FieldRequestID is the structured logging key for request correlation ids.
	FieldRequestID = "request_id"
)

type contextKey string

const (
	workContextKey      contextKey = "kosha.work"
	actorContextKey     contextKey = "kosha.actor"
	requestIDContextKey contextKey = "kosha.request_id"
)

// WithWork attaches a work id to the context for log enrichment.
func WithWork(ctx context.Context, workID string) context.Context {
	return context.WithValue(ctx, workContextKey, workID)
}

// WithActor attaches the acting user's email to the context.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// WithRequestID attaches a request correlation id to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// ContextFields extracts standardized slog attributes from the context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if work, ok := ctx.Value(workContextKey).(string); ok && work != "" {
		fields = append(fields, slog.String(FieldWork, work))
	}
	if actor, ok := ctx.Value(actorContextKey).(string); ok && actor != "" {
		fields = append(fields, slog.String(FieldActor, actor))
	}
	if id, ok := ctx.Value(requestIDContextKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldRequestID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, field := range fields {
		args = append(args, field)
	}
	return logger.With(args...)
}
