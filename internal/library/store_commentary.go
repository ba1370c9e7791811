package library

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"kosha/internal/fileutil"
	"kosha/internal/logging"
)

// CreateCommentary persists a new commentary entry scoped to a verse, or to
// the work as a whole when the payload carries no verse id. The numeric id
// suffix is strictly ascending per scope; numbers issued to since-deleted
// entries are never reused.
func (s *Store) CreateCommentary(ctx context.Context, workID string, commentary *Commentary) (*Commentary, error) {
	if commentary == nil {
		return nil, Wrap(ErrBadRequest, "commentary", "create", "payload must not be nil", nil)
	}
	work, err := s.GetWork(ctx, workID)
	if err != nil {
		return nil, err
	}
	scope := commentary.Scope()
	if !scope.IsWork() {
		if _, err := s.GetVerse(ctx, workID, scope.VerseID()); err != nil {
			return nil, err
		}
	}

	issued, err := s.issuedCommentaryIDs(workID, scope)
	if err != nil {
		return nil, err
	}
	commentary.CommentaryID = NextCommentaryID(workID, scope, issued)
	commentary.WorkID = workID
	commentary.VerseID = scope.VerseID()

	now := time.Now().UTC()
	commentary.Meta.CreatedAt = now
	commentary.Meta.UpdatedAt = now
	NormalizeCommentary(commentary, ExpectedLanguages(work, s.required))
	if commentary.Review.State == "" {
		commentary.Review = NewReview()
	}

	if err := fileutil.WriteJSON(s.commentaryFile(workID, scope, commentary.CommentaryID), commentary); err != nil {
		return nil, Wrap(ErrStorage, "commentary", "create", "write commentary document", err)
	}
	s.logger.InfoContext(ctx, "commentary created",
		slog.String(logging.FieldWork, workID),
		slog.String(logging.FieldCommentary, commentary.CommentaryID))
	return commentary, nil
}

// GetCommentary reads a commentary document by id within the given scope.
func (s *Store) GetCommentary(ctx context.Context, workID string, scope Scope, commentaryID string) (*Commentary, error) {
	if err := validateWorkID(workID); err != nil {
		return nil, err
	}
	var commentary Commentary
	if err := fileutil.ReadJSON(s.commentaryFile(workID, scope, commentaryID), &commentary); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Wrap(ErrNotFound, "commentary", "get", commentaryID, nil)
		}
		return nil, Wrap(ErrStorage, "commentary", "get", commentaryID, err)
	}
	return &commentary, nil
}

// FindCommentary locates a commentary entry by id without knowing its scope.
func (s *Store) FindCommentary(ctx context.Context, workID, commentaryID string) (*Commentary, error) {
	scopes, err := s.commentaryScopes(workID)
	if err != nil {
		return nil, err
	}
	for _, scope := range scopes {
		commentary, err := s.GetCommentary(ctx, workID, scope, commentaryID)
		if err == nil {
			return commentary, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, Wrap(ErrNotFound, "commentary", "find", commentaryID, nil)
}

// ListCommentary returns the work's commentary, optionally restricted to a
// single scope, ordered by id.
func (s *Store) ListCommentary(ctx context.Context, workID string, scope *Scope) ([]*Commentary, error) {
	if _, err := s.GetWork(ctx, workID); err != nil {
		return nil, err
	}
	var scopes []Scope
	if scope != nil {
		scopes = []Scope{*scope}
	} else {
		var err error
		if scopes, err = s.commentaryScopes(workID); err != nil {
			return nil, err
		}
	}
	var entries []*Commentary
	for _, sc := range scopes {
		scoped, err := s.loadCommentary(workID, sc)
		if err != nil {
			return nil, err
		}
		entries = append(entries, scoped...)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CommentaryID < entries[j].CommentaryID })
	return entries, nil
}

// UpdateCommentary replaces a commentary document wholesale. The scope is
// fixed at creation; moving an entry between verses is a delete + create.
func (s *Store) UpdateCommentary(ctx context.Context, workID, commentaryID string, commentary *Commentary) (*Commentary, error) {
	if commentary == nil {
		return nil, Wrap(ErrBadRequest, "commentary", "update", "payload must not be nil", nil)
	}
	if commentary.CommentaryID != "" && commentary.CommentaryID != commentaryID {
		return nil, Wrap(ErrBadRequest, "commentary", "update", "commentary_id mismatch between path and payload", nil)
	}
	work, err := s.GetWork(ctx, workID)
	if err != nil {
		return nil, err
	}
	existing, err := s.FindCommentary(ctx, workID, commentaryID)
	if err != nil {
		return nil, err
	}
	scope := existing.Scope()
	if commentary.VerseID != "" && commentary.VerseID != existing.VerseID {
		return nil, Wrap(ErrBadRequest, "commentary", "update", "commentary scope is immutable", nil)
	}

	commentary.CommentaryID = commentaryID
	commentary.WorkID = workID
	commentary.VerseID = existing.VerseID
	commentary.Meta.CreatedAt = existing.Meta.CreatedAt
	if commentary.Meta.EnteredBy == "" {
		commentary.Meta.EnteredBy = existing.Meta.EnteredBy
	}
	commentary.Meta.UpdatedAt = time.Now().UTC()
	NormalizeCommentary(commentary, ExpectedLanguages(work, s.required))

	if err := fileutil.WriteJSON(s.commentaryFile(workID, scope, commentaryID), commentary); err != nil {
		return nil, Wrap(ErrStorage, "commentary", "update", "write commentary document", err)
	}
	s.logger.InfoContext(ctx, "commentary updated",
		slog.String(logging.FieldWork, workID),
		slog.String(logging.FieldCommentary, commentaryID))
	return commentary, nil
}

// DeleteCommentary moves the commentary file into the trash tree and records
// a tombstone.
func (s *Store) DeleteCommentary(ctx context.Context, workID, commentaryID, actor string) (*Tombstone, error) {
	existing, err := s.FindCommentary(ctx, workID, commentaryID)
	if err != nil {
		return nil, err
	}
	tombstone, err := s.trash(TypeCommentary, workID, commentaryID, actor,
		s.commentaryFile(workID, existing.Scope(), commentaryID))
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "commentary deleted",
		slog.String(logging.FieldWork, workID),
		slog.String(logging.FieldCommentary, commentaryID),
		slog.String(logging.FieldActor, actor))
	return tombstone, nil
}

// commentaryScopes enumerates the scope directories present in the work.
func (s *Store) commentaryScopes(workID string) ([]Scope, error) {
	dir := filepath.Join(s.workDir(workID), commentaryDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, Wrap(ErrStorage, "commentary", "enumerate scopes", workID, err)
	}
	scopes := make([]Scope, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if entry.Name() == workScopeDir {
			scopes = append(scopes, ScopeWork())
		} else {
			scopes = append(scopes, ScopeVerse(entry.Name()))
		}
	}
	return scopes, nil
}

// loadCommentary reads every active commentary document in a scope.
func (s *Store) loadCommentary(workID string, scope Scope) ([]*Commentary, error) {
	entries, err := os.ReadDir(s.commentaryScopeDir(workID, scope))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, Wrap(ErrStorage, "commentary", "enumerate", scope.Dir(), err)
	}
	var items []*Commentary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		var commentary Commentary
		id := strings.TrimSuffix(entry.Name(), ".json")
		if err := fileutil.ReadJSON(s.commentaryFile(workID, scope, id), &commentary); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, Wrap(ErrStorage, "commentary", "enumerate", entry.Name(), err)
		}
		items = append(items, &commentary)
	}
	return items, nil
}

// issuedCommentaryIDs returns every commentary id ever issued for a scope:
// the active documents plus ids recorded on tombstones, so deletions leave
// gaps rather than freeing numbers for reuse.
func (s *Store) issuedCommentaryIDs(workID string, scope Scope) ([]string, error) {
	active, err := s.loadCommentary(workID, scope)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(active))
	for _, commentary := range active {
		ids = append(ids, commentary.CommentaryID)
	}
	tombstones, err := s.ListTombstones(context.Background())
	if err != nil {
		return nil, err
	}
	for _, tombstone := range tombstones {
		if tombstone.Type == TypeCommentary && tombstone.WorkID == workID {
			ids = append(ids, tombstone.ID)
		}
	}
	return ids, nil
}
