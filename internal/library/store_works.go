package library

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"time"

	"kosha/internal/fileutil"
	"kosha/internal/langtag"
	"kosha/internal/logging"
)

// CreateWork persists a new work. It fails with ErrConflict when the work
// directory already exists; the work id becomes the directory name and is
// immutable afterwards.
func (s *Store) CreateWork(ctx context.Context, work *Work) (*Work, error) {
	if work == nil {
		return nil, Wrap(ErrBadRequest, "work", "create", "payload must not be nil", nil)
	}
	if err := validateWorkID(work.WorkID); err != nil {
		return nil, err
	}
	if err := s.normalizeWorkLanguages(work); err != nil {
		return nil, err
	}

	dir := s.workDir(work.WorkID)
	if _, err := os.Stat(dir); err == nil {
		return nil, Wrap(ErrConflict, "work", "create", "work "+work.WorkID+" already exists", nil)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, Wrap(ErrStorage, "work", "create", "stat work directory", err)
	}

	now := time.Now().UTC()
	work.CreatedAt = now
	work.UpdatedAt = now
	if work.Title == nil {
		work.Title = map[string]string{}
	}

	for _, sub := range []string{dir, s.versesDir(work.WorkID), s.commentaryScopeDir(work.WorkID, ScopeWork())} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return nil, Wrap(ErrStorage, "work", "create", "create directories", err)
		}
	}
	if err := fileutil.WriteJSON(s.workFile(work.WorkID), work); err != nil {
		return nil, Wrap(ErrStorage, "work", "create", "write work.json", err)
	}
	s.logger.InfoContext(ctx, "work created", slog.String(logging.FieldWork, work.WorkID))
	return work, nil
}

// GetWork reads a work document by id.
func (s *Store) GetWork(ctx context.Context, workID string) (*Work, error) {
	if err := validateWorkID(workID); err != nil {
		return nil, err
	}
	var work Work
	if err := fileutil.ReadJSON(s.workFile(workID), &work); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Wrap(ErrNotFound, "work", "get", workID, nil)
		}
		return nil, Wrap(ErrStorage, "work", "get", workID, err)
	}
	return &work, nil
}

// ListWorks returns all works ordered by id. Work directories whose
// work.json vanishes mid-iteration (for example a concurrent delete) are
// skipped rather than failing the listing.
func (s *Store) ListWorks(ctx context.Context) ([]*Work, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, Wrap(ErrStorage, "work", "list", "read library root", err)
	}
	works := make([]*Work, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == trashDirName {
			continue
		}
		var work Work
		if err := fileutil.ReadJSON(s.workFile(entry.Name()), &work); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, Wrap(ErrStorage, "work", "list", entry.Name(), err)
		}
		works = append(works, &work)
	}
	sort.Slice(works, func(i, j int) bool { return works[i].WorkID < works[j].WorkID })
	return works, nil
}

// UpdateWork replaces a work document wholesale. The payload must be a
// complete work whose id matches the path id; there is no field merge at
// this layer.
func (s *Store) UpdateWork(ctx context.Context, workID string, work *Work) (*Work, error) {
	if work == nil {
		return nil, Wrap(ErrBadRequest, "work", "update", "payload must not be nil", nil)
	}
	if work.WorkID != workID {
		return nil, Wrap(ErrBadRequest, "work", "update", "work_id mismatch between path and payload", nil)
	}
	existing, err := s.GetWork(ctx, workID)
	if err != nil {
		return nil, err
	}
	if err := s.normalizeWorkLanguages(work); err != nil {
		return nil, err
	}
	work.CreatedAt = existing.CreatedAt
	work.UpdatedAt = time.Now().UTC()
	if work.Title == nil {
		work.Title = map[string]string{}
	}
	if err := fileutil.WriteJSON(s.workFile(workID), work); err != nil {
		return nil, Wrap(ErrStorage, "work", "update", "write work.json", err)
	}
	s.logger.InfoContext(ctx, "work updated", slog.String(logging.FieldWork, workID))
	return work, nil
}

// DeleteWork moves the entire work directory into the trash tree and records
// a tombstone.
func (s *Store) DeleteWork(ctx context.Context, workID, actor string) (*Tombstone, error) {
	if err := validateWorkID(workID); err != nil {
		return nil, err
	}
	dir := s.workDir(workID)
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Wrap(ErrNotFound, "work", "delete", workID, nil)
		}
		return nil, Wrap(ErrStorage, "work", "delete", "stat work directory", err)
	}
	tombstone, err := s.trash(TypeWork, workID, workID, actor, dir)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "work deleted",
		slog.String(logging.FieldWork, workID),
		slog.String(logging.FieldActor, actor))
	return tombstone, nil
}

// normalizeWorkLanguages canonicalizes the canonical language and language
// list on a work payload.
func (s *Store) normalizeWorkLanguages(work *Work) error {
	canonical, err := langtag.Canonical(work.Canonical)
	if err != nil {
		return Wrap(ErrValidation, "work", "languages", "canonical_lang", err)
	}
	work.Canonical = canonical
	langs, err := langtag.NormalizeList(work.Langs)
	if err != nil {
		return Wrap(ErrValidation, "work", "languages", "langs", err)
	}
	work.Langs = langs
	return nil
}
