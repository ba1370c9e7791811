package review_test

import (
	"context"
	"testing"

	"kosha/internal/library"
	"kosha/internal/testsupport"
)

func TestBulkTransitionContinuesPastFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	engine := testsupport.NewEngine(t, cfg, store)

	ctx := context.Background()
	testsupport.SeedWork(t, store, "GITA", "or")
	first := testsupport.SeedVerse(t, store, "GITA", "1.1", "or", "ପ୍ରଥମ")
	second := testsupport.SeedVerse(t, store, "GITA", "1.2", "or", "ଦ୍ୱିତୀୟ")

	result := engine.BulkTransitionVerses(ctx, "GITA",
		[]string{first.VerseID, "V0042", second.VerseID},
		library.ActionApprove, "reviewer", nil)

	if len(result.Succeeded) != 2 {
		t.Fatalf("succeeded = %v, want both real verses", result.Succeeded)
	}
	if len(result.Failed) != 1 || result.Failed[0].ID != "V0042" {
		t.Fatalf("failed = %#v, want only V0042", result.Failed)
	}
	if result.Failed[0].Error == "" {
		t.Fatal("expected a failure reason")
	}

	for _, verseID := range []string{first.VerseID, second.VerseID} {
		verse, err := store.GetVerse(ctx, "GITA", verseID)
		if err != nil {
			t.Fatalf("GetVerse failed: %v", err)
		}
		if verse.Review.State != library.StateApproved {
			t.Fatalf("verse %s state = %q, want approved", verseID, verse.Review.State)
		}
	}
}

func TestBulkTransitionEmptyInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	engine := testsupport.NewEngine(t, cfg, store)

	testsupport.SeedWork(t, store, "GITA", "or")
	result := engine.BulkTransitionVerses(context.Background(), "GITA", nil, library.ActionApprove, "reviewer", nil)
	if result.Succeeded == nil || result.Failed == nil {
		t.Fatal("expected empty, non-nil result slices")
	}
	if len(result.Succeeded) != 0 || len(result.Failed) != 0 {
		t.Fatalf("unexpected result: %#v", result)
	}
}
