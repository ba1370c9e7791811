package export

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"kosha/internal/library"
	"kosha/internal/logging"
)

// The clean projection strips everything that identifies reviewers or
// exposes internal review process: review history, meta.entered_by,
// authenticity, and priority. State itself stays visible so consumers can
// filter on approval.

// CleanMeta is entry metadata without the reviewer identity.
type CleanMeta struct {
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CleanReview is the review block reduced to its current state.
type CleanReview struct {
	State library.State `json:"state"`
}

// CleanVerse is a verse without reviewer-identifying fields.
type CleanVerse struct {
	VerseID      string              `json:"verse_id"`
	WorkID       string              `json:"work_id"`
	NumberManual string              `json:"number_manual"`
	Order        int                 `json:"order"`
	Texts        map[string]string   `json:"texts"`
	Segments     map[string][]string `json:"segments"`
	Tags         []string            `json:"tags,omitempty"`
	Origin       string              `json:"origin,omitempty"`
	Meta         CleanMeta           `json:"meta"`
	Review       CleanReview         `json:"review"`
}

// CleanCommentary is a commentary entry without reviewer-identifying,
// authenticity, or priority fields.
type CleanCommentary struct {
	CommentaryID string            `json:"commentary_id"`
	WorkID       string            `json:"work_id"`
	VerseID      string            `json:"verse_id,omitempty"`
	Targets      []string          `json:"targets,omitempty"`
	Texts        map[string]string `json:"texts"`
	Speaker      string            `json:"speaker,omitempty"`
	Source       string            `json:"source,omitempty"`
	Genre        string            `json:"genre,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	Meta         CleanMeta         `json:"meta"`
	Review       CleanReview       `json:"review"`
}

// CleanWork is the clean projection of a whole work.
type CleanWork struct {
	Work       *library.Work     `json:"work"`
	Verses     []CleanVerse      `json:"verses"`
	Commentary []CleanCommentary `json:"commentary"`
}

// Clean assembles the stripped snapshot of a work.
func (e *Exporter) Clean(ctx context.Context, workID string) (*CleanWork, error) {
	merged, err := e.Merged(ctx, workID)
	if err != nil {
		return nil, err
	}
	return cleanFromMerged(merged), nil
}

// CleanAll assembles the clean projection of every work in the library.
// A work whose backing directory disappears mid-iteration is skipped rather
// than aborting the whole export.
func (e *Exporter) CleanAll(ctx context.Context) ([]*CleanWork, error) {
	works, err := e.store.ListWorks(ctx)
	if err != nil {
		return nil, err
	}
	exports := make([]*CleanWork, 0, len(works))
	for _, work := range works {
		cleaned, err := e.Clean(ctx, work.WorkID)
		if err != nil {
			if errors.Is(err, library.ErrNotFound) {
				e.logger.WarnContext(ctx, "work vanished during export, skipping",
					slog.String(logging.FieldWork, work.WorkID))
				continue
			}
			return nil, err
		}
		exports = append(exports, cleaned)
	}
	return exports, nil
}

func cleanFromMerged(merged *MergedWork) *CleanWork {
	cleaned := &CleanWork{
		Work:       merged.Work,
		Verses:     make([]CleanVerse, 0, len(merged.Verses)),
		Commentary: make([]CleanCommentary, 0, len(merged.Commentary)),
	}
	for _, verse := range merged.Verses {
		cleaned.Verses = append(cleaned.Verses, CleanVerse{
			VerseID:      verse.VerseID,
			WorkID:       verse.WorkID,
			NumberManual: verse.NumberManual,
			Order:        verse.Order,
			Texts:        verse.Texts,
			Segments:     verse.Segments,
			Tags:         verse.Tags,
			Origin:       verse.Origin,
			Meta:         cleanMeta(verse.Meta),
			Review:       CleanReview{State: verse.Review.State},
		})
	}
	for _, commentary := range merged.Commentary {
		cleaned.Commentary = append(cleaned.Commentary, CleanCommentary{
			CommentaryID: commentary.CommentaryID,
			WorkID:       commentary.WorkID,
			VerseID:      commentary.VerseID,
			Targets:      commentary.Targets,
			Texts:        commentary.Texts,
			Speaker:      commentary.Speaker,
			Source:       commentary.Source,
			Genre:        commentary.Genre,
			Tags:         commentary.Tags,
			Meta:         cleanMeta(commentary.Meta),
			Review:       CleanReview{State: commentary.Review.State},
		})
	}
	return cleaned
}

func cleanMeta(meta library.Meta) CleanMeta {
	return CleanMeta{
		CreatedAt: meta.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: meta.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
