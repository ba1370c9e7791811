package main

import (
	"encoding/json"
	"strings"
	"testing"

	"kosha/internal/library"
)

func TestCLIWorkLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "work", "list")
	if err != nil {
		t.Fatalf("work list: %v", err)
	}
	requireContains(t, out, "Library is empty")

	doc := writeDocument(t, env, "work.json", `{
  "work_id": "GITA",
  "title": {"en": "Bhagavad Gita"},
  "langs": ["en", "bn"],
  "canonical_lang": "en"
}`)
	out, _, err = runCLI(t, env, "work", "create", "-f", doc)
	if err != nil {
		t.Fatalf("work create: %v", err)
	}
	var created library.Work
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("decode created work: %v", err)
	}
	if created.WorkID != "GITA" {
		t.Fatalf("work id = %q", created.WorkID)
	}

	out, _, err = runCLI(t, env, "work", "list")
	if err != nil {
		t.Fatalf("work list: %v", err)
	}
	requireContains(t, out, "GITA")
	requireContains(t, out, "Bhagavad Gita")

	out, _, err = runCLI(t, env, "work", "rm", "GITA", "--actor", "curator@example.org")
	if err != nil {
		t.Fatalf("work rm: %v", err)
	}
	requireContains(t, out, "Trashed work GITA")

	out, _, err = runCLI(t, env, "trash", "list")
	if err != nil {
		t.Fatalf("trash list: %v", err)
	}
	requireContains(t, out, "GITA")
	requireContains(t, out, "curator@example.org")
}

func TestCLIVerseAndReviewFlow(t *testing.T) {
	env := setupCLITestEnv(t)

	work := writeDocument(t, env, "work.json", `{
  "work_id": "GITA",
  "title": {"en": "Bhagavad Gita"},
  "langs": ["en"],
  "canonical_lang": "en"
}`)
	if _, _, err := runCLI(t, env, "work", "create", "-f", work); err != nil {
		t.Fatalf("work create: %v", err)
	}

	verse := writeDocument(t, env, "verse.json", `{
  "number_manual": "1.1",
  "texts": {"en": "dharmakshetre kurukshetre"},
  "origin": "manual"
}`)
	out, _, err := runCLI(t, env, "verse", "add", "-w", "GITA", "-f", verse)
	if err != nil {
		t.Fatalf("verse add: %v", err)
	}
	var added library.Verse
	if err := json.Unmarshal([]byte(out), &added); err != nil {
		t.Fatalf("decode verse: %v", err)
	}
	if added.VerseID != "V0001" {
		t.Fatalf("verse id = %q, want V0001", added.VerseID)
	}

	out, _, err = runCLI(t, env, "verse", "list", "-w", "GITA")
	if err != nil {
		t.Fatalf("verse list: %v", err)
	}
	requireContains(t, out, "V0001")
	requireContains(t, out, "draft")

	out, _, err = runCLI(t, env, "review", "submit", "V0001", "-w", "GITA", "--actor", "typist@example.org")
	if err != nil {
		t.Fatalf("review submit: %v", err)
	}
	requireContains(t, out, "review_pending")

	out, _, err = runCLI(t, env, "review", "approve", "V0001", "-w", "GITA", "--actor", "reviewer@example.org")
	if err != nil {
		t.Fatalf("review approve: %v", err)
	}
	requireContains(t, out, `"state": "approved"`)

	out, _, err = runCLI(t, env, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Works: 1")
	requireContains(t, out, "approved")
}

func TestCLIReviewBulk(t *testing.T) {
	env := setupCLITestEnv(t)

	work := writeDocument(t, env, "work.json", `{
  "work_id": "GITA",
  "title": {"en": "Bhagavad Gita"},
  "langs": ["en"],
  "canonical_lang": "en"
}`)
	if _, _, err := runCLI(t, env, "work", "create", "-f", work); err != nil {
		t.Fatalf("work create: %v", err)
	}
	for i, number := range []string{"1.1", "1.2"} {
		verse := writeDocument(t, env, "verse.json", `{
  "number_manual": "`+number+`",
  "texts": {"en": "text"},
  "origin": "manual"
}`)
		if _, _, err := runCLI(t, env, "verse", "add", "-w", "GITA", "-f", verse); err != nil {
			t.Fatalf("verse add %d: %v", i, err)
		}
	}

	out, _, err := runCLI(t, env, "review", "bulk", "approve",
		"V0001", "V0002", "V0042", "-w", "GITA", "--actor", "reviewer@example.org")
	if err != nil {
		t.Fatalf("review bulk: %v", err)
	}
	requireContains(t, out, "Succeeded: 2")
	requireContains(t, out, "Failed V0042")
}

func TestCLIUnknownWorkErrors(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, "work", "show", "MISSING")
	if err == nil {
		t.Fatal("expected error for unknown work")
	}
	if !strings.Contains(err.Error(), "MISSING") {
		t.Fatalf("error does not name the work: %v", err)
	}
}
