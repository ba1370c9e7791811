package library

// The normalizer runs on every create and update so each stored document has
// a uniform shape regardless of partial client input. Drift introduced by
// schema evolution self-heals on the next write.

// ExpectedLanguages returns the language keys every document in the work must
// carry: the canonical language first, then the work's configured languages,
// then the store-wide required set, deduplicated in that order.
func ExpectedLanguages(work *Work, required []string) []string {
	if work == nil {
		return append([]string(nil), required...)
	}
	expected := make([]string, 0, 1+len(work.Langs)+len(required))
	seen := make(map[string]struct{}, 1+len(work.Langs)+len(required))
	add := func(code string) {
		if code == "" {
			return
		}
		if _, ok := seen[code]; ok {
			return
		}
		seen[code] = struct{}{}
		expected = append(expected, code)
	}
	add(work.Canonical)
	for _, code := range work.Langs {
		add(code)
	}
	for _, code := range required {
		add(code)
	}
	return expected
}

// NormalizeVerse fills missing language slots on a verse: every expected
// language gets an entry in Texts (empty string) and Segments (empty list).
// Extra languages the caller supplied beyond the expected set are preserved.
func NormalizeVerse(verse *Verse, expected []string) {
	if verse == nil {
		return
	}
	if verse.Texts == nil {
		verse.Texts = make(map[string]string, len(expected))
	}
	if verse.Segments == nil {
		verse.Segments = make(map[string][]string, len(expected))
	}
	for _, lang := range expected {
		if _, ok := verse.Texts[lang]; !ok {
			verse.Texts[lang] = ""
		}
		if _, ok := verse.Segments[lang]; !ok {
			verse.Segments[lang] = []string{}
		}
	}
	for lang, segments := range verse.Segments {
		if segments == nil {
			verse.Segments[lang] = []string{}
		}
	}
	if verse.Tags == nil {
		verse.Tags = []string{}
	}
	if verse.Review.State == "" {
		verse.Review = NewReview()
	}
	if verse.Review.History == nil {
		verse.Review.History = []HistoryEntry{}
	}
}

// NormalizeCommentary fills missing language slots and default structure
// blocks on a commentary entry.
func NormalizeCommentary(commentary *Commentary, expected []string) {
	if commentary == nil {
		return
	}
	if commentary.Texts == nil {
		commentary.Texts = make(map[string]string, len(expected))
	}
	for _, lang := range expected {
		if _, ok := commentary.Texts[lang]; !ok {
			commentary.Texts[lang] = ""
		}
	}
	if commentary.Targets == nil {
		commentary.Targets = []string{}
	}
	if commentary.Tags == nil {
		commentary.Tags = []string{}
	}
	if commentary.Authenticity == nil {
		commentary.Authenticity = &Authenticity{}
	}
	if commentary.Priority == nil {
		commentary.Priority = &Priority{}
	}
	if commentary.Review.State == "" {
		commentary.Review = NewReview()
	}
	if commentary.Review.History == nil {
		commentary.Review.History = []HistoryEntry{}
	}
}
