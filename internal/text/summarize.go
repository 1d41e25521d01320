package text

import (
	"sort"
	"strings"
)

// Summarizer produces extractive summaries: it only selects sentences that
// already exist in the input, never generates new text.
type Summarizer struct {
	extractor *Extractor
}

// NewSummarizer builds a summarizer sharing the given extractor's
// normalization rules.
func NewSummarizer(extractor *Extractor) *Summarizer {
	if extractor == nil {
		extractor = NewExtractor(nil)
	}
	return &Summarizer{extractor: extractor}
}

type scoredSentence struct {
	index int // position in the original sequence; the tie-breaker
	text  string
	score float64
}

// Summarize selects up to maxSentences sentences from comments, ranked by
// term-frequency overlap with the whole set, ties broken by original order.
// Selected sentences are emitted in original order. Empty input yields an
// empty string, never an error.
func (s *Summarizer) Summarize(comments []string, maxSentences int) string {
	if len(comments) == 0 || maxSentences <= 0 {
		return ""
	}

	var sentences []scoredSentence
	freq := make(map[string]int)
	for _, comment := range comments {
		for _, sent := range SplitSentences(comment) {
			sentences = append(sentences, scoredSentence{index: len(sentences), text: sent})
			for _, term := range s.extractor.Extract(sent) {
				freq[term]++
			}
		}
	}
	if len(sentences) == 0 {
		return ""
	}

	// Score: mean corpus frequency of the sentence's terms. Normalizing by
	// term count keeps long sentences from winning on length alone.
	for i := range sentences {
		terms := s.extractor.Extract(sentences[i].text)
		if len(terms) == 0 {
			continue
		}
		total := 0
		for _, term := range terms {
			total += freq[term]
		}
		sentences[i].score = float64(total) / float64(len(terms))
	}

	ranked := make([]scoredSentence, len(sentences))
	copy(ranked, sentences)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].index < ranked[j].index
	})

	if maxSentences > len(ranked) {
		maxSentences = len(ranked)
	}
	selected := ranked[:maxSentences]
	sort.Slice(selected, func(i, j int) bool { return selected[i].index < selected[j].index })

	parts := make([]string, len(selected))
	for i, sent := range selected {
		parts[i] = sent.text
	}
	return strings.Join(parts, " ")
}

// SplitSentences breaks text on sentence-ending punctuation, preserving
// the terminator. Whitespace-only fragments are dropped.
func SplitSentences(text string) []string {
	var out []string
	var b strings.Builder
	flush := func() {
		sent := strings.TrimSpace(b.String())
		if sent != "" {
			out = append(out, sent)
		}
		b.Reset()
	}
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			flush()
		}
	}
	flush()
	return out
}
