package review

import (
	"context"
	"log/slog"

	"kosha/internal/library"
	"kosha/internal/logging"
)

// ItemError pairs a verse id with the reason its transition failed.
type ItemError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BulkResult reports the outcome of a bulk transition. There is no partial
// rollback: failures do not undo earlier successes or stop later items.
type BulkResult struct {
	Succeeded []string    `json:"succeeded"`
	Failed    []ItemError `json:"failed"`
}

// BulkTransitionVerses applies one review action to each verse id
// independently. Per-item errors (not found, validation) are captured into
// the failed list rather than raised.
func (e *Engine) BulkTransitionVerses(ctx context.Context, workID string, verseIDs []string, action library.Action, actor string, issues []string) BulkResult {
	result := BulkResult{
		Succeeded: []string{},
		Failed:    []ItemError{},
	}
	for _, verseID := range verseIDs {
		if _, err := e.TransitionVerse(ctx, workID, verseID, action, actor, issues); err != nil {
			result.Failed = append(result.Failed, ItemError{ID: verseID, Error: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, verseID)
	}
	if len(result.Failed) > 0 {
		e.logger.WarnContext(ctx, "bulk transition finished with failures",
			slog.String(logging.FieldWork, workID),
			slog.String(logging.FieldAction, string(action)),
			slog.Int("succeeded", len(result.Succeeded)),
			slog.Int("failed", len(result.Failed)))
	}
	return result
}
