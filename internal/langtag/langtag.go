// Package langtag provides unified language code normalization for work
// language lists and document text keys.
//
// All language-related conversions are consolidated here so the config,
// library, and export packages agree on what counts as the same language.
package langtag

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Canonical normalizes a language code to its lowercase BCP-47 base form
// ("Bn" and "ben" both become "bn"). It returns an error for input that does
// not parse as a language tag.
func Canonical(code string) (string, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "", fmt.Errorf("empty language code")
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse language code %q: %w", trimmed, err)
	}
	base, _ := tag.Base()
	return base.String(), nil
}

// NormalizeList canonicalizes and deduplicates a list of language codes,
// preserving first-seen order. Codes that fail to parse are returned in the
// error; the valid prefix is discarded so callers fail whole-list.
func NormalizeList(codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	normalized := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		canonical, err := Canonical(code)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		normalized = append(normalized, canonical)
	}
	return normalized, nil
}

// DisplayName returns a human-readable English name for a language code.
// Unrecognized codes pass through uppercased so tables stay readable.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return strings.ToUpper(trimmed)
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return strings.ToUpper(trimmed)
	}
	return name
}
