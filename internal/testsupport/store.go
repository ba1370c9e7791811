package testsupport

import (
	"context"
	"testing"

	"kosha/internal/config"
	"kosha/internal/library"
	"kosha/internal/logging"
	"kosha/internal/review"
)

// MustOpenStore opens a library.Store for tests.
func MustOpenStore(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	return store
}

// NewEngine builds a review engine whose audit log lands under the config's
// log directory, matching the daemon wiring.
func NewEngine(t testing.TB, cfg *config.Config, store *library.Store) *review.Engine {
	t.Helper()

	audit := review.NewAuditLogger(cfg.ReviewLogDir())
	return review.NewEngine(store, audit, logging.NewNop(),
		review.WithRequireRejectIssues(cfg.Review.RequireRejectIssues))
}

// SeedWork creates a minimal work for tests using the provided store.
func SeedWork(t testing.TB, store *library.Store, workID string, langs ...string) *library.Work {
	t.Helper()

	canonical := "or"
	if len(langs) > 0 {
		canonical = langs[0]
	}
	work, err := store.CreateWork(context.Background(), &library.Work{
		WorkID:    workID,
		Title:     map[string]string{canonical: workID},
		Langs:     langs,
		Canonical: canonical,
	})
	if err != nil {
		t.Fatalf("store.CreateWork: %v", err)
	}
	return work
}

// SeedVerse appends a verse carrying the given manual number and canonical
// text.
func SeedVerse(t testing.TB, store *library.Store, workID, number, lang, text string) *library.Verse {
	t.Helper()

	verse, err := store.CreateVerse(context.Background(), workID, &library.Verse{
		NumberManual: number,
		Texts:        map[string]string{lang: text},
		Origin:       "manual",
	})
	if err != nil {
		t.Fatalf("store.CreateVerse: %v", err)
	}
	return verse
}

// SeedCommentary attaches commentary to a verse, or to the work when verseID
// is empty.
func SeedCommentary(t testing.TB, store *library.Store, workID, verseID, lang, text string) *library.Commentary {
	t.Helper()

	item, err := store.CreateCommentary(context.Background(), workID, &library.Commentary{
		VerseID: verseID,
		Texts:   map[string]string{lang: text},
		Speaker: "tester",
	})
	if err != nil {
		t.Fatalf("store.CreateCommentary: %v", err)
	}
	return item
}
