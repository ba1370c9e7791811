package review

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"kosha/internal/library"
	"kosha/internal/logging"
)

// Engine applies review actions to stored documents.
type Engine struct {
	store  *library.Store
	audit  *AuditLogger
	logger *slog.Logger

	// requireRejectIssues hardens the permissive core default: when set,
	// reject without at least one issue fails validation.
	requireRejectIssues bool
}

// Option customizes engine construction.
type Option func(*Engine)

// WithRequireRejectIssues enforces a non-empty issues list on reject.
func WithRequireRejectIssues(enabled bool) Option {
	return func(e *Engine) { e.requireRejectIssues = enabled }
}

// NewEngine constructs a review engine over the given store and audit log.
func NewEngine(store *library.Store, audit *AuditLogger, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	engine := &Engine{
		store:  store,
		audit:  audit,
		logger: logger.With(slog.String(logging.FieldComponent, "review")),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// TransitionVerse applies a review action to a verse, persists the updated
// document, and records the transition in the audit log.
func (e *Engine) TransitionVerse(ctx context.Context, workID, verseID string, action library.Action, actor string, issues []string) (*library.Verse, error) {
	verse, err := e.store.GetVerse(ctx, workID, verseID)
	if err != nil {
		return nil, err
	}
	work, err := e.store.GetWork(ctx, workID)
	if err != nil {
		return nil, err
	}
	from, to, err := e.apply(&verse.Review, action, actor, issues, func() error {
		return verseApprovable(verse, work.Canonical)
	})
	if err != nil {
		return nil, err
	}
	verse.Meta.UpdatedAt = time.Now().UTC()
	if _, err := e.store.UpdateVerse(ctx, workID, verseID, verse); err != nil {
		return nil, err
	}
	if err := e.audit.Append(ctx, Record{
		Kind:   library.TypeVerse,
		WorkID: workID,
		ID:     verseID,
		Actor:  actor,
		Action: action,
		From:   from,
		To:     to,
		Issues: issues,
	}); err != nil {
		return nil, err
	}
	e.logger.InfoContext(ctx, "verse transition",
		slog.String(logging.FieldWork, workID),
		slog.String(logging.FieldVerse, verseID),
		slog.String(logging.FieldAction, string(action)),
		slog.String(logging.FieldActor, actor),
		slog.String("from", string(from)),
		slog.String("to", string(to)))
	return verse, nil
}

// TransitionCommentary applies a review action to a commentary entry.
func (e *Engine) TransitionCommentary(ctx context.Context, workID, commentaryID string, action library.Action, actor string, issues []string) (*library.Commentary, error) {
	commentary, err := e.store.FindCommentary(ctx, workID, commentaryID)
	if err != nil {
		return nil, err
	}
	work, err := e.store.GetWork(ctx, workID)
	if err != nil {
		return nil, err
	}
	from, to, err := e.apply(&commentary.Review, action, actor, issues, func() error {
		return commentaryApprovable(commentary, work.Canonical)
	})
	if err != nil {
		return nil, err
	}
	commentary.Meta.UpdatedAt = time.Now().UTC()
	if _, err := e.store.UpdateCommentary(ctx, workID, commentaryID, commentary); err != nil {
		return nil, err
	}
	if err := e.audit.Append(ctx, Record{
		Kind:   library.TypeCommentary,
		WorkID: workID,
		ID:     commentaryID,
		Actor:  actor,
		Action: action,
		From:   from,
		To:     to,
		Issues: issues,
	}); err != nil {
		return nil, err
	}
	e.logger.InfoContext(ctx, "commentary transition",
		slog.String(logging.FieldWork, workID),
		slog.String(logging.FieldCommentary, commentaryID),
		slog.String(logging.FieldAction, string(action)),
		slog.String(logging.FieldActor, actor),
		slog.String("from", string(from)),
		slog.String("to", string(to)))
	return commentary, nil
}

// apply mutates the review block in place: it resolves the target state,
// checks pre-conditions, and appends a history entry. History is append-only;
// even idempotent re-locks add a new entry.
func (e *Engine) apply(review *library.Review, action library.Action, actor string, issues []string, approvable func() error) (library.State, library.State, error) {
	if strings.TrimSpace(actor) == "" {
		return "", "", library.Wrap(library.ErrBadRequest, "review", string(action), "actor must be set", nil)
	}
	from := review.State
	if from == "" {
		from = library.StateDraft
	}

	var to library.State
	switch action {
	case library.ActionSubmit:
		to = library.StateReviewPending
	case library.ActionApprove:
		if err := approvable(); err != nil {
			return "", "", err
		}
		to = library.StateApproved
	case library.ActionReject:
		if e.requireRejectIssues && len(issues) == 0 {
			return "", "", library.Wrap(library.ErrValidation, "review", "reject", "at least one issue is required", nil)
		}
		to = library.StateRejected
	case library.ActionFlag:
		to = library.StateFlagged
	case library.ActionLock:
		to = library.StateLocked
	case library.ActionRollback:
		to = rollbackTarget(review)
	case library.ActionSegmentUpdate:
		to = from
	default:
		return "", "", library.Wrap(library.ErrBadRequest, "review", "transition", "unknown action "+string(action), nil)
	}

	review.State = to
	review.History = append(review.History, library.HistoryEntry{
		Action: action,
		From:   from,
		To:     to,
		Actor:  actor,
		At:     time.Now().UTC(),
		Issues: issues,
	})
	return from, to, nil
}

// rollbackTarget returns the state recorded as From on the most recent
// history entry, or draft when no history exists.
func rollbackTarget(review *library.Review) library.State {
	if len(review.History) == 0 {
		return library.StateDraft
	}
	return review.History[len(review.History)-1].From
}

// verseApprovable checks the approval pre-conditions for a verse: non-empty
// canonical text and a source-edition origin.
func verseApprovable(verse *library.Verse, canonical string) error {
	if strings.TrimSpace(verse.Texts[canonical]) == "" {
		return library.Wrap(library.ErrValidation, "verse", "approve",
			"not ready for approval: canonical text ("+canonical+") is empty", nil)
	}
	if strings.TrimSpace(verse.Origin) == "" {
		return library.Wrap(library.ErrValidation, "verse", "approve",
			"not ready for approval: origin is not set", nil)
	}
	return nil
}

// commentaryApprovable checks the approval pre-conditions for commentary:
// non-empty canonical text. Origin is a verse-only requirement.
func commentaryApprovable(commentary *library.Commentary, canonical string) error {
	if strings.TrimSpace(commentary.Texts[canonical]) == "" {
		return library.Wrap(library.ErrValidation, "commentary", "approve",
			"not ready for approval: canonical text ("+canonical+") is empty", nil)
	}
	return nil
}
