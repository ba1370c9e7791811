package library

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"kosha/internal/fileutil"
	"kosha/internal/logging"
)

// VerseList is a paginated slice of verses ordered by position.
type VerseList struct {
	Items []*Verse `json:"items"`
	Total int      `json:"total"`
	// NextCursor is the offset of the next page, or -1 when exhausted.
	NextCursor int `json:"next_cursor"`
}

// CreateVerse persists a new verse in the work. When the payload carries no
// verse id the next sequential id is generated; the manual number must be
// unique within the work. The document is normalized before writing.
func (s *Store) CreateVerse(ctx context.Context, workID string, verse *Verse) (*Verse, error) {
	return s.createVerse(ctx, workID, verse, "")
}

// InsertVerse persists a new verse positioned after an existing verse,
// generating a suffixed insertion id (V0012a between V0012 and V0013).
func (s *Store) InsertVerse(ctx context.Context, workID string, verse *Verse, after string) (*Verse, error) {
	if strings.TrimSpace(after) == "" {
		return nil, Wrap(ErrBadRequest, "verse", "insert", "after verse id must not be empty", nil)
	}
	return s.createVerse(ctx, workID, verse, after)
}

func (s *Store) createVerse(ctx context.Context, workID string, verse *Verse, after string) (*Verse, error) {
	if verse == nil {
		return nil, Wrap(ErrBadRequest, "verse", "create", "payload must not be nil", nil)
	}
	work, err := s.GetWork(ctx, workID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(verse.NumberManual) == "" {
		return nil, Wrap(ErrValidation, "verse", "create", "number_manual must be set", nil)
	}

	existing, err := s.loadVerses(workID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(existing))
	maxOrder := 0
	for _, other := range existing {
		ids = append(ids, other.VerseID)
		if other.Order > maxOrder {
			maxOrder = other.Order
		}
		if other.NumberManual == verse.NumberManual {
			return nil, Wrap(ErrConflict, "verse", "create",
				"manual number "+verse.NumberManual+" already used by "+other.VerseID, nil)
		}
	}

	if after != "" {
		anchor := findVerse(existing, after)
		if anchor == nil {
			return nil, Wrap(ErrNotFound, "verse", "insert", "after verse "+after, nil)
		}
		id, err := InsertVerseID(after, ids)
		if err != nil {
			return nil, err
		}
		verse.VerseID = id
		verse.Order = anchor.Order
	} else if strings.TrimSpace(verse.VerseID) == "" {
		verse.VerseID = NextVerseID(ids)
		verse.Order = maxOrder + 1
	} else {
		for _, id := range ids {
			if id == verse.VerseID {
				return nil, Wrap(ErrConflict, "verse", "create", "verse id "+verse.VerseID+" already exists", nil)
			}
		}
		if verse.Order == 0 {
			verse.Order = maxOrder + 1
		}
	}

	now := time.Now().UTC()
	verse.WorkID = workID
	verse.Meta.CreatedAt = now
	verse.Meta.UpdatedAt = now
	NormalizeVerse(verse, ExpectedLanguages(work, s.required))
	if verse.Review.State == "" {
		verse.Review = NewReview()
	}

	if err := fileutil.WriteJSON(s.verseFile(workID, verse.VerseID), verse); err != nil {
		return nil, Wrap(ErrStorage, "verse", "create", "write verse document", err)
	}
	s.logger.InfoContext(ctx, "verse created",
		slog.String(logging.FieldWork, workID),
		slog.String(logging.FieldVerse, verse.VerseID))
	return verse, nil
}

// GetVerse reads a verse document by id.
func (s *Store) GetVerse(ctx context.Context, workID, verseID string) (*Verse, error) {
	if err := validateWorkID(workID); err != nil {
		return nil, err
	}
	if _, _, ok := ParseVerseID(verseID); !ok {
		return nil, Wrap(ErrBadRequest, "verse", "get", "malformed verse id "+verseID, nil)
	}
	var verse Verse
	if err := fileutil.ReadJSON(s.verseFile(workID, verseID), &verse); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Wrap(ErrNotFound, "verse", "get", workID+"/"+verseID, nil)
		}
		return nil, Wrap(ErrStorage, "verse", "get", workID+"/"+verseID, err)
	}
	return &verse, nil
}

// ListVerses returns a page of the work's verses ordered by position, ties
// broken by verse id so insertion-suffixed verses follow their anchor.
func (s *Store) ListVerses(ctx context.Context, workID string, offset, limit int) (*VerseList, error) {
	if _, err := s.GetWork(ctx, workID); err != nil {
		return nil, err
	}
	verses, err := s.loadVerses(workID)
	if err != nil {
		return nil, err
	}
	sort.Slice(verses, func(i, j int) bool {
		if verses[i].Order != verses[j].Order {
			return verses[i].Order < verses[j].Order
		}
		return CompareVerseIDs(verses[i].VerseID, verses[j].VerseID) < 0
	})

	total := len(verses)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	next := -1
	if end < total {
		next = end
	}
	return &VerseList{Items: verses[offset:end], Total: total, NextCursor: next}, nil
}

// UpdateVerse replaces a verse document wholesale after re-normalizing it.
// Merging of partial payloads over the stored document is the caller's
// responsibility; by the time it reaches the store the payload is complete.
func (s *Store) UpdateVerse(ctx context.Context, workID, verseID string, verse *Verse) (*Verse, error) {
	if verse == nil {
		return nil, Wrap(ErrBadRequest, "verse", "update", "payload must not be nil", nil)
	}
	if verse.VerseID != "" && verse.VerseID != verseID {
		return nil, Wrap(ErrBadRequest, "verse", "update", "verse_id mismatch between path and payload", nil)
	}
	work, err := s.GetWork(ctx, workID)
	if err != nil {
		return nil, err
	}
	existing, err := s.GetVerse(ctx, workID, verseID)
	if err != nil {
		return nil, err
	}
	if verse.NumberManual != existing.NumberManual {
		others, err := s.loadVerses(workID)
		if err != nil {
			return nil, err
		}
		for _, other := range others {
			if other.VerseID != verseID && other.NumberManual == verse.NumberManual {
				return nil, Wrap(ErrConflict, "verse", "update",
					"manual number "+verse.NumberManual+" already used by "+other.VerseID, nil)
			}
		}
	}

	verse.VerseID = verseID
	verse.WorkID = workID
	verse.Meta.CreatedAt = existing.Meta.CreatedAt
	if verse.Meta.EnteredBy == "" {
		verse.Meta.EnteredBy = existing.Meta.EnteredBy
	}
	verse.Meta.UpdatedAt = time.Now().UTC()
	NormalizeVerse(verse, ExpectedLanguages(work, s.required))

	if err := fileutil.WriteJSON(s.verseFile(workID, verseID), verse); err != nil {
		return nil, Wrap(ErrStorage, "verse", "update", "write verse document", err)
	}
	s.logger.InfoContext(ctx, "verse updated",
		slog.String(logging.FieldWork, workID),
		slog.String(logging.FieldVerse, verseID))
	return verse, nil
}

// DeleteVerse moves the verse file into the trash tree and records a
// tombstone. Deleting an id with no active file reports ErrNotFound; the
// underlying move itself is a no-op for absent files, so racing deletes
// cannot produce duplicate tombstones for the same file.
func (s *Store) DeleteVerse(ctx context.Context, workID, verseID, actor string) (*Tombstone, error) {
	if _, err := s.GetVerse(ctx, workID, verseID); err != nil {
		return nil, err
	}
	tombstone, err := s.trash(TypeVerse, workID, verseID, actor, s.verseFile(workID, verseID))
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "verse deleted",
		slog.String(logging.FieldWork, workID),
		slog.String(logging.FieldVerse, verseID),
		slog.String(logging.FieldActor, actor))
	return tombstone, nil
}

// loadVerses reads every active verse document in the work. Enumeration
// failures surface as ErrStorage so id generation can never silently return
// a duplicate.
func (s *Store) loadVerses(workID string) ([]*Verse, error) {
	entries, err := os.ReadDir(s.versesDir(workID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, Wrap(ErrStorage, "verse", "enumerate", workID, err)
	}
	verses := make([]*Verse, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		var verse Verse
		if err := fileutil.ReadJSON(s.verseFile(workID, strings.TrimSuffix(entry.Name(), ".json")), &verse); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, Wrap(ErrStorage, "verse", "enumerate", entry.Name(), err)
		}
		verses = append(verses, &verse)
	}
	return verses, nil
}

func findVerse(verses []*Verse, verseID string) *Verse {
	for _, verse := range verses {
		if verse.VerseID == verseID {
			return verse
		}
	}
	return nil
}
