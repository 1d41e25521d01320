package text

import (
	"strings"
	"unicode"
)

const minTermLength = 3

// Extractor normalizes comment text into terms: lowercase tokens split on
// non-alphanumeric boundaries, with short tokens and stop-words dropped.
// Idempotent: extracting an already-normalized term sequence is a no-op.
type Extractor struct {
	stopwords map[string]struct{}
}

// NewExtractor builds an extractor over the default stop-word set plus any
// extra caller-supplied words.
func NewExtractor(extra []string) *Extractor {
	stop := make(map[string]struct{}, len(defaultStopwords)+len(extra))
	for _, w := range defaultStopwords {
		stop[w] = struct{}{}
	}
	for _, w := range extra {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			stop[w] = struct{}{}
		}
	}
	return &Extractor{stopwords: stop}
}

// Extract returns the ordered, finite sequence of normalized terms.
// May be empty; never fails.
func (e *Extractor) Extract(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < minTermLength {
			continue
		}
		if _, stop := e.stopwords[f]; stop {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}
