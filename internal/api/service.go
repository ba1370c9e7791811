package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"kosha/internal/export"
	"kosha/internal/library"
	"kosha/internal/review"
)

// Service bundles the store, review engine, and exporter behind the logical
// operations the transports expose.
type Service struct {
	store    *library.Store
	engine   *review.Engine
	exporter *export.Exporter
}

// NewService constructs the facade. All three collaborators are required.
func NewService(store *library.Store, engine *review.Engine, exporter *export.Exporter) *Service {
	if store == nil || engine == nil || exporter == nil {
		return nil
	}
	return &Service{store: store, engine: engine, exporter: exporter}
}

// Store exposes the underlying library store for callers that need direct
// access (CLI table rendering, tests).
func (s *Service) Store() *library.Store { return s.store }

// CreateWork persists a new work.
func (s *Service) CreateWork(ctx context.Context, work *library.Work) (*library.Work, error) {
	return s.store.CreateWork(ctx, work)
}

// GetWork reads a work by id.
func (s *Service) GetWork(ctx context.Context, workID string) (*library.Work, error) {
	return s.store.GetWork(ctx, workID)
}

// ListWorks lists all works.
func (s *Service) ListWorks(ctx context.Context) ([]*library.Work, error) {
	return s.store.ListWorks(ctx)
}

// UpdateWork replaces a work wholesale. The payload must be complete; partial
// work updates are rejected by contract, not merged.
func (s *Service) UpdateWork(ctx context.Context, workID string, work *library.Work) (*library.Work, error) {
	return s.store.UpdateWork(ctx, workID, work)
}

// DeleteWork trashes a work and returns its tombstone.
func (s *Service) DeleteWork(ctx context.Context, workID, actor string) (*library.Tombstone, error) {
	return s.store.DeleteWork(ctx, workID, actor)
}

// CreateVerse persists a new verse. When after is non-empty the verse is
// inserted behind that verse with a suffixed id.
func (s *Service) CreateVerse(ctx context.Context, workID string, verse *library.Verse, after string) (*library.Verse, error) {
	if after != "" {
		return s.store.InsertVerse(ctx, workID, verse, after)
	}
	return s.store.CreateVerse(ctx, workID, verse)
}

// GetVerse reads a verse by id.
func (s *Service) GetVerse(ctx context.Context, workID, verseID string) (*library.Verse, error) {
	return s.store.GetVerse(ctx, workID, verseID)
}

// ListVerses returns a page of the work's verses.
func (s *Service) ListVerses(ctx context.Context, workID string, offset, limit int) (*library.VerseList, error) {
	return s.store.ListVerses(ctx, workID, offset, limit)
}

// ReplaceVerse overwrites a verse document with a complete payload.
func (s *Service) ReplaceVerse(ctx context.Context, workID, verseID string, verse *library.Verse) (*library.Verse, error) {
	return s.store.UpdateVerse(ctx, workID, verseID, verse)
}

// PatchVerse merges the supplied JSON fields over the stored verse document
// and persists the result. Maps supplied in the patch replace the stored
// maps wholesale; merging below field granularity is not supported.
func (s *Service) PatchVerse(ctx context.Context, workID, verseID string, patch json.RawMessage) (*library.Verse, error) {
	existing, err := s.store.GetVerse(ctx, workID, verseID)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(patch, existing); err != nil {
		return nil, library.Wrap(library.ErrBadRequest, "verse", "patch", "malformed patch payload", err)
	}
	return s.store.UpdateVerse(ctx, workID, verseID, existing)
}

// DeleteVerse trashes a verse and returns its tombstone.
func (s *Service) DeleteVerse(ctx context.Context, workID, verseID, actor string) (*library.Tombstone, error) {
	return s.store.DeleteVerse(ctx, workID, verseID, actor)
}

// CreateCommentary persists a new commentary entry.
func (s *Service) CreateCommentary(ctx context.Context, workID string, commentary *library.Commentary) (*library.Commentary, error) {
	return s.store.CreateCommentary(ctx, workID, commentary)
}

// GetCommentary locates a commentary entry by id.
func (s *Service) GetCommentary(ctx context.Context, workID, commentaryID string) (*library.Commentary, error) {
	return s.store.FindCommentary(ctx, workID, commentaryID)
}

// ListCommentary lists the work's commentary, optionally scoped to a verse
// ("work" selects work-level entries).
func (s *Service) ListCommentary(ctx context.Context, workID, scope string) ([]*library.Commentary, error) {
	switch scope {
	case "":
		return s.store.ListCommentary(ctx, workID, nil)
	case "work":
		sc := library.ScopeWork()
		return s.store.ListCommentary(ctx, workID, &sc)
	default:
		sc := library.ScopeVerse(scope)
		return s.store.ListCommentary(ctx, workID, &sc)
	}
}

// ReplaceCommentary overwrites a commentary document with a complete payload.
func (s *Service) ReplaceCommentary(ctx context.Context, workID, commentaryID string, commentary *library.Commentary) (*library.Commentary, error) {
	return s.store.UpdateCommentary(ctx, workID, commentaryID, commentary)
}

// PatchCommentary merges the supplied JSON fields over the stored entry.
func (s *Service) PatchCommentary(ctx context.Context, workID, commentaryID string, patch json.RawMessage) (*library.Commentary, error) {
	existing, err := s.store.FindCommentary(ctx, workID, commentaryID)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(patch, existing); err != nil {
		return nil, library.Wrap(library.ErrBadRequest, "commentary", "patch", "malformed patch payload", err)
	}
	return s.store.UpdateCommentary(ctx, workID, commentaryID, existing)
}

// DeleteCommentary trashes a commentary entry and returns its tombstone.
func (s *Service) DeleteCommentary(ctx context.Context, workID, commentaryID, actor string) (*library.Tombstone, error) {
	return s.store.DeleteCommentary(ctx, workID, commentaryID, actor)
}

// Transition applies a review action to the entity named by the request.
func (s *Service) Transition(ctx context.Context, workID string, req TransitionRequest) (any, error) {
	action, ok := library.ParseAction(req.Action)
	if !ok {
		return nil, library.Wrap(library.ErrBadRequest, "review", "transition", fmt.Sprintf("unknown action %q", req.Action), nil)
	}
	switch req.Kind {
	case library.TypeVerse:
		return s.engine.TransitionVerse(ctx, workID, req.ID, action, req.Actor, req.Issues)
	case library.TypeCommentary:
		return s.engine.TransitionCommentary(ctx, workID, req.ID, action, req.Actor, req.Issues)
	default:
		return nil, library.Wrap(library.ErrBadRequest, "review", "transition", fmt.Sprintf("unknown kind %q", req.Kind), nil)
	}
}

// BulkTransition applies one action to a batch of verse ids, isolating
// per-item failures.
func (s *Service) BulkTransition(ctx context.Context, workID string, req BulkTransitionRequest) (*BulkTransitionResponse, error) {
	action, ok := library.ParseAction(req.Action)
	if !ok {
		return nil, library.Wrap(library.ErrBadRequest, "review", "bulk", fmt.Sprintf("unknown action %q", req.Action), nil)
	}
	result := s.engine.BulkTransitionVerses(ctx, workID, req.VerseIDs, action, req.Actor, req.Issues)
	return &result, nil
}

// ExportMerged returns the full snapshot of a work.
func (s *Service) ExportMerged(ctx context.Context, workID string) (*export.MergedWork, error) {
	return s.exporter.Merged(ctx, workID)
}

// ExportClean returns the stripped snapshot of a work.
func (s *Service) ExportClean(ctx context.Context, workID string) (*export.CleanWork, error) {
	return s.exporter.Clean(ctx, workID)
}

// ExportCleanAll returns the stripped snapshot of every work.
func (s *Service) ExportCleanAll(ctx context.Context) ([]*export.CleanWork, error) {
	return s.exporter.CleanAll(ctx)
}

// ExportTraining returns the training lines of a work.
func (s *Service) ExportTraining(ctx context.Context, workID string) ([]export.TrainingLine, error) {
	return s.exporter.Training(ctx, workID)
}

// ListTombstones returns the append-only deletion record.
func (s *Service) ListTombstones(ctx context.Context) (*TombstoneList, error) {
	tombstones, err := s.store.ListTombstones(ctx)
	if err != nil {
		return nil, err
	}
	if tombstones == nil {
		tombstones = []library.Tombstone{}
	}
	return &TombstoneList{Items: tombstones, Total: len(tombstones)}, nil
}

// Summary aggregates library counts for status displays.
func (s *Service) Summary(ctx context.Context) (*StatusSummary, error) {
	works, err := s.store.ListWorks(ctx)
	if err != nil {
		return nil, err
	}
	summary := &StatusSummary{
		Works:  len(works),
		States: make(map[string]int),
	}
	for _, work := range works {
		verses, err := s.store.ListVerses(ctx, work.WorkID, 0, 0)
		if err != nil {
			if errors.Is(err, library.ErrNotFound) {
				continue
			}
			return nil, err
		}
		summary.Verses += verses.Total
		for _, verse := range verses.Items {
			summary.States[string(verse.Review.State)]++
		}
		commentary, err := s.store.ListCommentary(ctx, work.WorkID, nil)
		if err != nil {
			if errors.Is(err, library.ErrNotFound) {
				continue
			}
			return nil, err
		}
		summary.Commentary += len(commentary)
	}
	return summary, nil
}
