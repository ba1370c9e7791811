package library_test

import (
	"reflect"
	"testing"

	"kosha/internal/library"
)

func TestExpectedLanguages(t *testing.T) {
	work := &library.Work{
		WorkID:    "GITA",
		Canonical: "or",
		Langs:     []string{"or", "sa", "en"},
	}
	got := library.ExpectedLanguages(work, []string{"bn", "en"})
	want := []string{"or", "sa", "en", "bn"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExpectedLanguages = %v, want %v", got, want)
	}
}

func TestExpectedLanguagesNilWork(t *testing.T) {
	got := library.ExpectedLanguages(nil, []string{"en", "hi"})
	want := []string{"en", "hi"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExpectedLanguages(nil) = %v, want %v", got, want)
	}
}

func TestNormalizeVerseFillsLanguageSlots(t *testing.T) {
	verse := &library.Verse{
		Texts: map[string]string{"or": "ଶ୍ଳୋକ"},
	}
	library.NormalizeVerse(verse, []string{"or", "en", "hi"})

	for _, lang := range []string{"or", "en", "hi"} {
		if _, ok := verse.Texts[lang]; !ok {
			t.Errorf("missing text slot for %q", lang)
		}
		segments, ok := verse.Segments[lang]
		if !ok || segments == nil {
			t.Errorf("missing or nil segment slot for %q", lang)
		}
	}
	if verse.Texts["or"] != "ଶ୍ଳୋକ" {
		t.Error("normalization must not overwrite supplied text")
	}
	if verse.Tags == nil {
		t.Error("expected tags to default to an empty list")
	}
	if verse.Review.State != library.StateDraft {
		t.Errorf("expected draft state, got %q", verse.Review.State)
	}
	if verse.Review.History == nil {
		t.Error("expected history to default to an empty list")
	}
}

func TestNormalizeVersePreservesExtraLanguages(t *testing.T) {
	verse := &library.Verse{
		Texts: map[string]string{"fr": "texte"},
	}
	library.NormalizeVerse(verse, []string{"en"})
	if verse.Texts["fr"] != "texte" {
		t.Error("expected extra language to survive normalization")
	}
}

func TestNormalizeCommentaryDefaults(t *testing.T) {
	commentary := &library.Commentary{}
	library.NormalizeCommentary(commentary, []string{"or", "en"})

	if commentary.Authenticity == nil || commentary.Priority == nil {
		t.Fatal("expected default authenticity and priority blocks")
	}
	if commentary.Targets == nil || commentary.Tags == nil {
		t.Fatal("expected targets and tags to default to empty lists")
	}
	if _, ok := commentary.Texts["en"]; !ok {
		t.Fatal("expected text slot for en")
	}
	if commentary.Review.State != library.StateDraft {
		t.Fatalf("expected draft state, got %q", commentary.Review.State)
	}
}
