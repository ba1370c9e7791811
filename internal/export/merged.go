package export

import (
	"context"
	"log/slog"

	"kosha/internal/library"
	"kosha/internal/logging"
)

// Exporter computes projections over a library store.
type Exporter struct {
	store  *library.Store
	logger *slog.Logger
}

// New constructs an exporter over the given store.
func New(store *library.Store, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Exporter{
		store:  store,
		logger: logger.With(slog.String(logging.FieldComponent, "export")),
	}
}

// MergedWork is the full snapshot of a work with nested verses and
// commentary, review metadata intact.
type MergedWork struct {
	Work       *library.Work         `json:"work"`
	Verses     []*library.Verse      `json:"verses"`
	Commentary []*library.Commentary `json:"commentary"`
}

// Merged assembles the full snapshot of a work.
func (e *Exporter) Merged(ctx context.Context, workID string) (*MergedWork, error) {
	work, err := e.store.GetWork(ctx, workID)
	if err != nil {
		return nil, err
	}
	verses, err := e.store.ListVerses(ctx, workID, 0, 0)
	if err != nil {
		return nil, err
	}
	commentary, err := e.store.ListCommentary(ctx, workID, nil)
	if err != nil {
		return nil, err
	}
	if commentary == nil {
		commentary = []*library.Commentary{}
	}
	return &MergedWork{
		Work:       work,
		Verses:     verses.Items,
		Commentary: commentary,
	}, nil
}
