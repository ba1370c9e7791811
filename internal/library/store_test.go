package library_test

import (
	"context"
	"errors"
	"testing"

	"kosha/internal/library"
	"kosha/internal/testsupport"
)

func TestCreateWorkNormalizesLanguages(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRequiredLanguages("en"))
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	work, err := store.CreateWork(ctx, &library.Work{
		WorkID:    "GITA",
		Title:     map[string]string{"en": "Bhagavad Gita"},
		Canonical: "eng",
		Langs:     []string{"eng", "hin", "eng"},
	})
	if err != nil {
		t.Fatalf("CreateWork failed: %v", err)
	}
	if work.Canonical != "en" {
		t.Fatalf("canonical = %q, want en", work.Canonical)
	}
	if len(work.Langs) != 2 || work.Langs[0] != "en" || work.Langs[1] != "hi" {
		t.Fatalf("langs = %v, want [en hi]", work.Langs)
	}
	if work.CreatedAt.IsZero() || work.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}

	fetched, err := store.GetWork(ctx, "GITA")
	if err != nil {
		t.Fatalf("GetWork failed: %v", err)
	}
	if fetched.Title["en"] != "Bhagavad Gita" {
		t.Fatalf("unexpected fetched work: %#v", fetched)
	}
}

func TestCreateWorkRejectsDuplicates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.SeedWork(t, store, "GITA", "or")
	_, err := store.CreateWork(context.Background(), &library.Work{WorkID: "GITA", Canonical: "or"})
	if !errors.Is(err, library.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCreateWorkRejectsBadIDs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	for _, id := range []string{"", "trash", "../escape", ".hidden", "has space"} {
		if _, err := store.CreateWork(context.Background(), &library.Work{WorkID: id, Canonical: "or"}); err == nil {
			t.Errorf("expected error for work id %q", id)
		}
	}
}

func TestUpdateWorkPreservesCreatedAt(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	work := testsupport.SeedWork(t, store, "GITA", "or")
	created := work.CreatedAt

	updated, err := store.UpdateWork(ctx, "GITA", &library.Work{
		WorkID:    "GITA",
		Title:     map[string]string{"or": "ଗୀତା"},
		Canonical: "or",
		Langs:     []string{"or"},
	})
	if err != nil {
		t.Fatalf("UpdateWork failed: %v", err)
	}
	if !updated.CreatedAt.Equal(created) {
		t.Fatal("expected created_at to survive replacement")
	}

	if _, err := store.UpdateWork(ctx, "GITA", &library.Work{WorkID: "OTHER", Canonical: "or"}); !errors.Is(err, library.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest on id mismatch, got %v", err)
	}
}

func TestListWorksSortedAndSkipsTrash(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.SeedWork(t, store, "RAMAYANA", "or")
	testsupport.SeedWork(t, store, "GITA", "or")
	if _, err := store.DeleteWork(ctx, "RAMAYANA", "curator"); err != nil {
		t.Fatalf("DeleteWork failed: %v", err)
	}

	works, err := store.ListWorks(ctx)
	if err != nil {
		t.Fatalf("ListWorks failed: %v", err)
	}
	if len(works) != 1 || works[0].WorkID != "GITA" {
		t.Fatalf("unexpected works: %#v", works)
	}
}

func TestCreateVerseAssignsSequentialIDs(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRequiredLanguages("en"))
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.SeedWork(t, store, "GITA", "or", "en")
	first := testsupport.SeedVerse(t, store, "GITA", "1.1", "or", "ପ୍ରଥମ")
	second := testsupport.SeedVerse(t, store, "GITA", "1.2", "or", "ଦ୍ୱିତୀୟ")

	if first.VerseID != "V0001" || second.VerseID != "V0002" {
		t.Fatalf("ids = %q, %q; want V0001, V0002", first.VerseID, second.VerseID)
	}
	if first.Order != 1 || second.Order != 2 {
		t.Fatalf("orders = %d, %d; want 1, 2", first.Order, second.Order)
	}
	if _, ok := first.Texts["en"]; !ok {
		t.Fatal("expected required language slot on stored verse")
	}
	if first.Review.State != library.StateDraft {
		t.Fatalf("new verse state = %q, want draft", first.Review.State)
	}
}

func TestCreateVerseRejectsDuplicateManualNumber(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.SeedWork(t, store, "GITA", "or")
	testsupport.SeedVerse(t, store, "GITA", "1.1", "or", "ପ୍ରଥମ")

	_, err := store.CreateVerse(context.Background(), "GITA", &library.Verse{
		NumberManual: "1.1",
		Texts:        map[string]string{"or": "ନକଲ"},
	})
	if !errors.Is(err, library.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestInsertVersePositionsAfterAnchor(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.SeedWork(t, store, "GITA", "or")
	testsupport.SeedVerse(t, store, "GITA", "1.1", "or", "ପ୍ରଥମ")
	testsupport.SeedVerse(t, store, "GITA", "1.2", "or", "ଦ୍ୱିତୀୟ")

	inserted, err := store.InsertVerse(ctx, "GITA", &library.Verse{
		NumberManual: "1.1b",
		Texts:        map[string]string{"or": "ମଧ୍ୟ"},
	}, "V0001")
	if err != nil {
		t.Fatalf("InsertVerse failed: %v", err)
	}
	if inserted.VerseID != "V0001a" {
		t.Fatalf("inserted id = %q, want V0001a", inserted.VerseID)
	}

	list, err := store.ListVerses(ctx, "GITA", 0, 0)
	if err != nil {
		t.Fatalf("ListVerses failed: %v", err)
	}
	got := make([]string, 0, len(list.Items))
	for _, verse := range list.Items {
		got = append(got, verse.VerseID)
	}
	want := []string{"V0001", "V0001a", "V0002"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestInsertVerseUnknownAnchor(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.SeedWork(t, store, "GITA", "or")
	_, err := store.InsertVerse(context.Background(), "GITA", &library.Verse{
		NumberManual: "1.1",
	}, "V0042")
	if !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListVersesPagination(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.SeedWork(t, store, "GITA", "or")
	for _, number := range []string{"1.1", "1.2", "1.3", "1.4", "1.5"} {
		testsupport.SeedVerse(t, store, "GITA", number, "or", "ପଦ "+number)
	}

	page, err := store.ListVerses(ctx, "GITA", 0, 2)
	if err != nil {
		t.Fatalf("ListVerses failed: %v", err)
	}
	if len(page.Items) != 2 || page.Total != 5 || page.NextCursor != 2 {
		t.Fatalf("first page = %d items, total %d, next %d", len(page.Items), page.Total, page.NextCursor)
	}

	page, err = store.ListVerses(ctx, "GITA", 4, 2)
	if err != nil {
		t.Fatalf("ListVerses failed: %v", err)
	}
	if len(page.Items) != 1 || page.NextCursor != -1 {
		t.Fatalf("last page = %d items, next %d; want 1 item, cursor -1", len(page.Items), page.NextCursor)
	}

	page, err = store.ListVerses(ctx, "GITA", 99, 2)
	if err != nil {
		t.Fatalf("ListVerses failed: %v", err)
	}
	if len(page.Items) != 0 || page.NextCursor != -1 {
		t.Fatalf("out-of-range page = %d items, next %d", len(page.Items), page.NextCursor)
	}
}

func TestUpdateVersePreservesProvenance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.SeedWork(t, store, "GITA", "or")
	verse, err := store.CreateVerse(ctx, "GITA", &library.Verse{
		NumberManual: "1.1",
		Texts:        map[string]string{"or": "ପ୍ରଥମ"},
		Meta:         library.Meta{EnteredBy: "typist@example.org"},
	})
	if err != nil {
		t.Fatalf("CreateVerse failed: %v", err)
	}

	updated, err := store.UpdateVerse(ctx, "GITA", verse.VerseID, &library.Verse{
		NumberManual: "1.1",
		Texts:        map[string]string{"or": "ସଂଶୋଧିତ"},
	})
	if err != nil {
		t.Fatalf("UpdateVerse failed: %v", err)
	}
	if !updated.Meta.CreatedAt.Equal(verse.Meta.CreatedAt) {
		t.Fatal("expected created_at to survive replacement")
	}
	if updated.Meta.EnteredBy != "typist@example.org" {
		t.Fatalf("entered_by = %q, want original value", updated.Meta.EnteredBy)
	}
}

func TestUpdateVerseManualNumberConflict(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.SeedWork(t, store, "GITA", "or")
	testsupport.SeedVerse(t, store, "GITA", "1.1", "or", "ପ୍ରଥମ")
	second := testsupport.SeedVerse(t, store, "GITA", "1.2", "or", "ଦ୍ୱିତୀୟ")

	_, err := store.UpdateVerse(context.Background(), "GITA", second.VerseID, &library.Verse{
		NumberManual: "1.1",
	})
	if !errors.Is(err, library.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestDeleteVerseLeavesTombstone(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.SeedWork(t, store, "GITA", "or")
	verse := testsupport.SeedVerse(t, store, "GITA", "1.1", "or", "ପ୍ରଥମ")

	tomb, err := store.DeleteVerse(ctx, "GITA", verse.VerseID, "curator")
	if err != nil {
		t.Fatalf("DeleteVerse failed: %v", err)
	}
	if tomb.Type != library.TypeVerse || tomb.ID != verse.VerseID || tomb.Actor != "curator" {
		t.Fatalf("unexpected tombstone: %#v", tomb)
	}

	if _, err := store.GetVerse(ctx, "GITA", verse.VerseID); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	// A second delete of the same id reports not found rather than minting
	// another tombstone.
	if _, err := store.DeleteVerse(ctx, "GITA", verse.VerseID, "curator"); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}

	tombs, err := store.ListTombstones(ctx)
	if err != nil {
		t.Fatalf("ListTombstones failed: %v", err)
	}
	if len(tombs) != 1 {
		t.Fatalf("tombstone count = %d, want 1", len(tombs))
	}
}

func TestVerseIDsNotReusedWithinActiveSet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.SeedWork(t, store, "GITA", "or")
	testsupport.SeedVerse(t, store, "GITA", "1.1", "or", "ପ୍ରଥମ")
	second := testsupport.SeedVerse(t, store, "GITA", "1.2", "or", "ଦ୍ୱିତୀୟ")

	if _, err := store.DeleteVerse(ctx, "GITA", "V0001", "curator"); err != nil {
		t.Fatalf("DeleteVerse failed: %v", err)
	}
	third := testsupport.SeedVerse(t, store, "GITA", "1.3", "or", "ତୃତୀୟ")
	if third.VerseID == second.VerseID {
		t.Fatalf("id %q collides with an active verse", third.VerseID)
	}
	if third.VerseID != "V0003" {
		t.Fatalf("new id = %q, want V0003 (highest active + 1)", third.VerseID)
	}
}

func TestCreateCommentaryScopes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.SeedWork(t, store, "GITA", "or")
	verse := testsupport.SeedVerse(t, store, "GITA", "1.1", "or", "ପ୍ରଥମ")

	workLevel := testsupport.SeedCommentary(t, store, "GITA", "", "or", "ଭୂମିକା")
	verseLevel := testsupport.SeedCommentary(t, store, "GITA", verse.VerseID, "or", "ଟୀକା")

	if workLevel.CommentaryID != "C-GITA-work-0001" {
		t.Fatalf("work-level id = %q", workLevel.CommentaryID)
	}
	if verseLevel.CommentaryID != "C-GITA-V0001-0001" {
		t.Fatalf("verse-level id = %q", verseLevel.CommentaryID)
	}

	scoped, err := store.ListCommentary(ctx, "GITA", ptrScope(library.ScopeVerse(verse.VerseID)))
	if err != nil {
		t.Fatalf("ListCommentary failed: %v", err)
	}
	if len(scoped) != 1 || scoped[0].CommentaryID != verseLevel.CommentaryID {
		t.Fatalf("unexpected scoped listing: %#v", scoped)
	}

	all, err := store.ListCommentary(ctx, "GITA", nil)
	if err != nil {
		t.Fatalf("ListCommentary failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("commentary count = %d, want 2", len(all))
	}
}

func TestCreateCommentaryRequiresVerse(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.SeedWork(t, store, "GITA", "or")
	_, err := store.CreateCommentary(context.Background(), "GITA", &library.Commentary{
		VerseID: "V0099",
		Texts:   map[string]string{"or": "ଟୀକା"},
	})
	if !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing verse, got %v", err)
	}
}

func TestCommentaryIDsNeverReused(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.SeedWork(t, store, "GITA", "or")
	first := testsupport.SeedCommentary(t, store, "GITA", "", "or", "ପ୍ରଥମ")

	if _, err := store.DeleteCommentary(ctx, "GITA", first.CommentaryID, "curator"); err != nil {
		t.Fatalf("DeleteCommentary failed: %v", err)
	}
	second := testsupport.SeedCommentary(t, store, "GITA", "", "or", "ଦ୍ୱିତୀୟ")
	if second.CommentaryID != "C-GITA-work-0002" {
		t.Fatalf("id after deletion = %q, want C-GITA-work-0002", second.CommentaryID)
	}
}

func TestUpdateCommentaryScopeImmutable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.SeedWork(t, store, "GITA", "or")
	verse := testsupport.SeedVerse(t, store, "GITA", "1.1", "or", "ପ୍ରଥମ")
	item := testsupport.SeedCommentary(t, store, "GITA", "", "or", "ଭୂମିକା")

	_, err := store.UpdateCommentary(ctx, "GITA", item.CommentaryID, &library.Commentary{
		VerseID: verse.VerseID,
		Texts:   map[string]string{"or": "ଉଠାଣ"},
	})
	if !errors.Is(err, library.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest when moving scopes, got %v", err)
	}
}

func TestDeleteWorkTrashesEverything(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.SeedWork(t, store, "GITA", "or")
	verse := testsupport.SeedVerse(t, store, "GITA", "1.1", "or", "ପ୍ରଥମ")
	testsupport.SeedCommentary(t, store, "GITA", verse.VerseID, "or", "ଟୀକା")

	tomb, err := store.DeleteWork(ctx, "GITA", "curator")
	if err != nil {
		t.Fatalf("DeleteWork failed: %v", err)
	}
	if tomb.Type != library.TypeWork {
		t.Fatalf("tombstone type = %q", tomb.Type)
	}
	if _, err := store.GetWork(ctx, "GITA"); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after work delete, got %v", err)
	}
}

func ptrScope(scope library.Scope) *library.Scope {
	return &scope
}
