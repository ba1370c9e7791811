package library

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Verse identifiers follow V#### with an optional lowercase suffix used for
// manual insertions between existing numeric ids (V0012a sorts between V0012
// and V0013). Commentary identifiers follow C-<WORK>-<VERSE|work>-#### with a
// strictly ascending numeric suffix per scope.

var verseIDPattern = regexp.MustCompile(`^V(\d{4,})([a-z]*)$`)

// ParseVerseID splits a verse id into its numeric part and insertion suffix.
func ParseVerseID(id string) (number int, suffix string, ok bool) {
	match := verseIDPattern.FindStringSubmatch(strings.TrimSpace(id))
	if match == nil {
		return 0, "", false
	}
	number, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, "", false
	}
	return number, match[2], true
}

// NextVerseID returns the next base verse id given the ids currently active
// in a work. Ids of trashed verses are not considered; uniqueness holds
// against the active set only.
func NextVerseID(existing []string) string {
	highest := 0
	for _, id := range existing {
		if number, _, ok := ParseVerseID(id); ok && number > highest {
			highest = number
		}
	}
	return fmt.Sprintf("V%04d", highest+1)
}

// InsertVerseID returns an id that slots a manual insertion after base,
// before the next numeric id. Suffixes cycle a through z, then widen to two
// letters (aa, ab, ...) once the single-letter space is exhausted.
func InsertVerseID(base string, existing []string) (string, error) {
	number, _, ok := ParseVerseID(base)
	if !ok {
		return "", Wrap(ErrBadRequest, "verse", "insert id", fmt.Sprintf("malformed base id %q", base), nil)
	}
	used := make(map[string]struct{})
	for _, id := range existing {
		if n, suffix, ok := ParseVerseID(id); ok && n == number && suffix != "" {
			used[suffix] = struct{}{}
		}
	}
	suffix := nextSuffix(used)
	return fmt.Sprintf("V%04d%s", number, suffix), nil
}

// nextSuffix returns the first unused suffix in insertion order: single
// letters a-z, then two-letter combinations, widening as needed.
func nextSuffix(used map[string]struct{}) string {
	for width := 1; ; width++ {
		suffix := strings.Repeat("a", width)
		for {
			if _, taken := used[suffix]; !taken {
				return suffix
			}
			next, ok := incrementSuffix(suffix)
			if !ok {
				break
			}
			suffix = next
		}
	}
}

func incrementSuffix(suffix string) (string, bool) {
	letters := []byte(suffix)
	for i := len(letters) - 1; i >= 0; i-- {
		if letters[i] < 'z' {
			letters[i]++
			return string(letters), true
		}
		letters[i] = 'a'
	}
	return "", false
}

// CompareVerseIDs orders verse ids by numeric part, with insertion suffixes
// sorting after their base id (shorter suffixes first, then lexicographic).
// Unparseable ids sort after well-formed ones, by plain string compare.
func CompareVerseIDs(a, b string) int {
	an, asuf, aok := ParseVerseID(a)
	bn, bsuf, bok := ParseVerseID(b)
	switch {
	case aok && !bok:
		return -1
	case !aok && bok:
		return 1
	case !aok && !bok:
		return strings.Compare(a, b)
	}
	if an != bn {
		if an < bn {
			return -1
		}
		return 1
	}
	if len(asuf) != len(bsuf) {
		if len(asuf) < len(bsuf) {
			return -1
		}
		return 1
	}
	return strings.Compare(asuf, bsuf)
}

var commentarySuffixPattern = regexp.MustCompile(`-(\d{4,})$`)

// NextCommentaryID returns the next commentary id for the given work and
// scope. The numeric suffix is strictly ascending: gaps left by deletions are
// skipped, never reused.
func NextCommentaryID(workID string, scope Scope, existing []string) string {
	prefix := fmt.Sprintf("C-%s-%s-", workID, scope.Dir())
	highest := 0
	for _, id := range existing {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		match := commentarySuffixPattern.FindStringSubmatch(id)
		if match == nil {
			continue
		}
		if number, err := strconv.Atoi(match[1]); err == nil && number > highest {
			highest = number
		}
	}
	return fmt.Sprintf("%s%04d", prefix, highest+1)
}
