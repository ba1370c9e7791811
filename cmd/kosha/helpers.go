package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// readDocument decodes a JSON payload from path, or from stdin when path is
// empty or "-".
func readDocument(cmd *cobra.Command, path string, v any) error {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read document %q: %w", path, err)
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}
	return nil
}

// readRaw returns the raw bytes of a JSON payload from path or stdin and
// checks that they parse.
func readRaw(cmd *cobra.Command, path string) ([]byte, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read document %q: %w", path, err)
		}
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("document is not valid JSON")
	}
	return data, nil
}

// preferredText picks a display string from a language-keyed map, trying the
// preferred code first and falling back to the lowest-sorting language.
func preferredText(texts map[string]string, preferred string) string {
	if len(texts) == 0 {
		return ""
	}
	if value := strings.TrimSpace(texts[preferred]); value != "" {
		return value
	}
	langs := make([]string, 0, len(texts))
	for lang := range texts {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	for _, lang := range langs {
		if value := strings.TrimSpace(texts[lang]); value != "" {
			return value
		}
	}
	return ""
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
