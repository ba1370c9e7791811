package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// TrainingLine is one JSON Lines record: a single language rendering of a
// verse or commentary entry.
type TrainingLine struct {
	Kind         string   `json:"kind"`
	WorkID       string   `json:"work_id"`
	ID           string   `json:"id"`
	NumberManual string   `json:"number_manual,omitempty"`
	VerseID      string   `json:"verse_id,omitempty"`
	Lang         string   `json:"lang"`
	Text         string   `json:"text"`
	Segments     []string `json:"segments,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// Training collects the training lines for a work, one per entity per
// language with non-empty text.
func (e *Exporter) Training(ctx context.Context, workID string) ([]TrainingLine, error) {
	merged, err := e.Merged(ctx, workID)
	if err != nil {
		return nil, err
	}
	var lines []TrainingLine
	for _, verse := range merged.Verses {
		for _, lang := range sortedKeys(verse.Texts) {
			text := verse.Texts[lang]
			if strings.TrimSpace(text) == "" {
				continue
			}
			lines = append(lines, TrainingLine{
				Kind:         "verse",
				WorkID:       workID,
				ID:           verse.VerseID,
				NumberManual: verse.NumberManual,
				Lang:         lang,
				Text:         text,
				Segments:     verse.Segments[lang],
				Tags:         verse.Tags,
			})
		}
	}
	for _, commentary := range merged.Commentary {
		for _, lang := range sortedKeys(commentary.Texts) {
			text := commentary.Texts[lang]
			if strings.TrimSpace(text) == "" {
				continue
			}
			lines = append(lines, TrainingLine{
				Kind:    "commentary",
				WorkID:  workID,
				ID:      commentary.CommentaryID,
				VerseID: commentary.VerseID,
				Lang:    lang,
				Text:    text,
				Tags:    commentary.Tags,
			})
		}
	}
	return lines, nil
}

// WriteTraining streams the work's training lines to w in JSON Lines form.
// The output never contains blank lines.
func (e *Exporter) WriteTraining(ctx context.Context, workID string, w io.Writer) error {
	lines, err := e.Training(ctx, workID)
	if err != nil {
		return err
	}
	return EncodeTraining(w, lines)
}

// EncodeTraining writes already-collected training lines as JSON Lines.
func EncodeTraining(w io.Writer, lines []TrainingLine) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	for _, line := range lines {
		buf.Reset()
		if err := encoder.Encode(line); err != nil {
			return fmt.Errorf("encode training line: %w", err)
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("write training line: %w", err)
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
