package review_test

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"kosha/internal/library"
	"kosha/internal/review"
)

func TestAuditAppendPartitionsByUTCDate(t *testing.T) {
	dir := t.TempDir()
	audit := review.NewAuditLogger(dir)

	ctx := context.Background()
	first := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)
	second := time.Date(2026, 3, 2, 0, 15, 0, 0, time.UTC)

	for _, at := range []time.Time{first, second} {
		err := audit.Append(ctx, review.Record{
			Kind:   library.TypeVerse,
			WorkID: "GITA",
			ID:     "V0001",
			Actor:  "reviewer",
			Action: library.ActionApprove,
			From:   library.StateReviewPending,
			To:     library.StateApproved,
			At:     at,
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	firstPath := audit.Path(first)
	secondPath := audit.Path(second)
	if firstPath == secondPath {
		t.Fatal("expected records on different UTC days to land in different files")
	}
	for _, path := range []string{firstPath, secondPath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected audit file %s: %v", path, err)
		}
	}
}

func TestAuditAppendWritesOneLinePerRecord(t *testing.T) {
	dir := t.TempDir()
	audit := review.NewAuditLogger(dir)

	ctx := context.Background()
	at := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := audit.Append(ctx, review.Record{
			Kind:   library.TypeVerse,
			WorkID: "GITA",
			ID:     "V0001",
			Actor:  "reviewer",
			Action: library.ActionFlag,
			From:   library.StateDraft,
			To:     library.StateFlagged,
			Issues: []string{"needs diacritics"},
			At:     at,
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	file, err := os.Open(audit.Path(at))
	if err != nil {
		t.Fatalf("open audit file: %v", err)
	}
	defer file.Close()

	var lines int
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			t.Fatal("audit log contains a blank line")
		}
		var record review.Record
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines+1, err)
		}
		if record.Action != library.ActionFlag || record.Issues[0] != "needs diacritics" {
			t.Fatalf("unexpected record: %#v", record)
		}
		lines++
	}
	if lines != 3 {
		t.Fatalf("line count = %d, want 3", lines)
	}
}
