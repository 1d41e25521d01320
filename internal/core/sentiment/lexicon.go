package sentiment

import (
	"strings"
	"unicode"

	v1 "github.com/sentio-lab/sentio/internal/api/v1"
)

// Lexicon maps lowercase terms to signed sentiment weights.
// Positive weight leans positive, negative leans negative; terms absent
// from the map score zero.
type Lexicon map[string]float64

// Merge folds other into l, overwriting on collision.
func (l Lexicon) Merge(other Lexicon) {
	for term, w := range other {
		l[term] = w
	}
}

// DefaultLexicon returns the built-in consultation-feedback vocabulary.
// Used whenever no lexicon directory is configured.
func DefaultLexicon() Lexicon {
	l := make(Lexicon, 64)
	positive := []string{
		"excellent", "support", "beneficial", "appreciate", "effective",
		"helpful", "positive", "good", "great", "recommend", "clear",
		"transparent", "efficient", "accessible", "improved", "welcome",
	}
	negative := []string{
		"concern", "issue", "problem", "difficult", "opposed", "unclear",
		"confusing", "inadequate", "disappointing", "frustrating", "terrible",
		"bad", "poor", "worse", "fail", "failure", "delay", "burden",
	}
	for _, term := range positive {
		l[term] = 1
	}
	for _, term := range negative {
		l[term] = -1
	}
	return l
}

// LexiconClassifier is the default rule-based implementation: a weighted
// term score normalized to the three-class set, ties resolved to Neutral.
type LexiconClassifier struct {
	lexicon Lexicon
}

// NewLexiconClassifier builds a classifier over the given lexicon.
// A nil lexicon falls back to the built-in one.
func NewLexiconClassifier(l Lexicon) *LexiconClassifier {
	if l == nil {
		l = DefaultLexicon()
	}
	return &LexiconClassifier{lexicon: l}
}

// Classify scores the text against the lexicon.
//
// Score semantics: score > 0 is Positive, score < 0 is Negative, exactly
// zero is Neutral (ties never lean). Confidence is |score| / magnitude where
// magnitude sums the absolute weights of all matched terms, so it lands in
// [0,1] by construction. Text with no lexicon hits is Neutral with full
// confidence; text that normalizes to nothing is Neutral with zero
// confidence.
func (c *LexiconClassifier) Classify(text string) (v1.Sentiment, float64) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return v1.SentimentNeutral, 0.0
	}

	var score, magnitude float64
	for _, tok := range tokens {
		w := c.lexicon[tok]
		score += w
		if w < 0 {
			magnitude -= w
		} else {
			magnitude += w
		}
	}

	if magnitude == 0 {
		return v1.SentimentNeutral, 1.0
	}

	switch {
	case score > 0:
		return v1.SentimentPositive, score / magnitude
	case score < 0:
		return v1.SentimentNegative, -score / magnitude
	default:
		// Balanced positive/negative evidence: genuinely uncertain.
		return v1.SentimentNeutral, 0.0
	}
}

// tokenize lowercases and splits on non-alphanumeric boundaries.
// Deliberately unfiltered: lexicon lookup decides relevance, not length
// or stop-word rules.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
