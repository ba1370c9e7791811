package export_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"kosha/internal/export"
	"kosha/internal/library"
	"kosha/internal/logging"
	"kosha/internal/testsupport"
)

func newExporter(t *testing.T) (*export.Exporter, *library.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithRequiredLanguages("en"))
	store := testsupport.MustOpenStore(t, cfg)
	return export.New(store, logging.NewNop()), store
}

func TestMergedBundlesWorkVersesCommentary(t *testing.T) {
	exporter, store := newExporter(t)

	ctx := context.Background()
	testsupport.SeedWork(t, store, "GITA", "or", "en")
	verse := testsupport.SeedVerse(t, store, "GITA", "1.1", "or", "ପ୍ରଥମ")
	testsupport.SeedCommentary(t, store, "GITA", verse.VerseID, "or", "ଟୀକା")
	testsupport.SeedCommentary(t, store, "GITA", "", "or", "ଭୂମିକା")

	merged, err := exporter.Merged(ctx, "GITA")
	if err != nil {
		t.Fatalf("Merged failed: %v", err)
	}
	if merged.Work.WorkID != "GITA" {
		t.Fatalf("unexpected work: %#v", merged.Work)
	}
	if len(merged.Verses) != 1 || len(merged.Commentary) != 2 {
		t.Fatalf("counts = %d verses, %d commentary; want 1, 2", len(merged.Verses), len(merged.Commentary))
	}
}

func TestCleanStripsCurationMetadata(t *testing.T) {
	exporter, store := newExporter(t)

	ctx := context.Background()
	testsupport.SeedWork(t, store, "GITA", "or")
	verse, err := store.CreateVerse(ctx, "GITA", &library.Verse{
		NumberManual: "1.1",
		Texts:        map[string]string{"or": "ପ୍ରଥମ"},
		Origin:       "manual",
		Meta:         library.Meta{EnteredBy: "typist@example.org"},
	})
	if err != nil {
		t.Fatalf("CreateVerse failed: %v", err)
	}
	testsupport.SeedCommentary(t, store, "GITA", verse.VerseID, "or", "ଟୀକା")

	cleaned, err := exporter.Clean(ctx, "GITA")
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	payload, err := json.Marshal(cleaned)
	if err != nil {
		t.Fatalf("marshal clean export: %v", err)
	}
	for _, forbidden := range []string{"entered_by", "history", "authenticity", "priority", "typist@example.org"} {
		if bytes.Contains(payload, []byte(forbidden)) {
			t.Errorf("clean export leaks %q", forbidden)
		}
	}
	if len(cleaned.Verses) != 1 {
		t.Fatalf("verse count = %d, want 1", len(cleaned.Verses))
	}
	if cleaned.Verses[0].Review.State != library.StateDraft {
		t.Fatal("expected review state to stay visible in clean export")
	}
}

func TestCleanAllSkipsNothingOnHealthyLibrary(t *testing.T) {
	exporter, store := newExporter(t)

	ctx := context.Background()
	testsupport.SeedWork(t, store, "GITA", "or")
	testsupport.SeedWork(t, store, "RAMAYANA", "or")

	exports, err := exporter.CleanAll(ctx)
	if err != nil {
		t.Fatalf("CleanAll failed: %v", err)
	}
	if len(exports) != 2 {
		t.Fatalf("export count = %d, want 2", len(exports))
	}
}

func TestTrainingSkipsEmptyTexts(t *testing.T) {
	exporter, store := newExporter(t)

	ctx := context.Background()
	// Work requires en via store config, so each verse gets an empty en slot.
	testsupport.SeedWork(t, store, "GITA", "or")
	testsupport.SeedVerse(t, store, "GITA", "1.1", "or", "ପ୍ରଥମ")
	testsupport.SeedVerse(t, store, "GITA", "1.2", "or", "ଦ୍ୱିତୀୟ")

	lines, err := exporter.Training(ctx, "GITA")
	if err != nil {
		t.Fatalf("Training failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("line count = %d, want 2 (empty language slots skipped)", len(lines))
	}
	for _, line := range lines {
		if line.Lang != "or" || strings.TrimSpace(line.Text) == "" {
			t.Fatalf("unexpected line: %#v", line)
		}
	}
}

func TestWriteTrainingEmitsNoBlankLines(t *testing.T) {
	exporter, store := newExporter(t)

	ctx := context.Background()
	testsupport.SeedWork(t, store, "GITA", "or")
	verse := testsupport.SeedVerse(t, store, "GITA", "1.1", "or", "ପ୍ରଥମ")
	testsupport.SeedCommentary(t, store, "GITA", verse.VerseID, "or", "ଟୀକା")

	var buf bytes.Buffer
	if err := exporter.WriteTraining(ctx, "GITA", &buf); err != nil {
		t.Fatalf("WriteTraining failed: %v", err)
	}
	output := buf.String()
	if !strings.HasSuffix(output, "\n") {
		t.Fatal("expected trailing newline")
	}
	for i, line := range strings.Split(strings.TrimSuffix(output, "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			t.Fatalf("blank line at %d", i+1)
		}
		var parsed export.TrainingLine
		if err := json.Unmarshal([]byte(line), &parsed); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i+1, err)
		}
	}
}

func TestExportUnknownWork(t *testing.T) {
	exporter, _ := newExporter(t)

	if _, err := exporter.Merged(context.Background(), "NOPE"); err == nil {
		t.Fatal("expected error for unknown work")
	}
}
