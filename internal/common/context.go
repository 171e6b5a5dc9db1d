package common

import (
	"context"

	"github.com/google/uuid"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID     contextKey = "run_id"
	ContextKeyPaperName contextKey = "paper_name"
)

// WithRunID adds a batch run ID to the context
func WithRunID(ctx context.Context, runID uuid.UUID) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the batch run ID from context
func RunIDFromContext(ctx context.Context) uuid.UUID {
	if runID, ok := ctx.Value(ContextKeyRunID).(uuid.UUID); ok {
		return runID
	}
	return uuid.Nil
}

// WithPaperName tags the context with the paper currently being processed
func WithPaperName(ctx context.Context, paperName string) context.Context {
	return context.WithValue(ctx, ContextKeyPaperName, paperName)
}

// PaperNameFromContext extracts the paper name from context
func PaperNameFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(ContextKeyPaperName).(string); ok {
		return name
	}
	return ""
}
