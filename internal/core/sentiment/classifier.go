package sentiment

import (
	"log/slog"
	"math"

	v1 "github.com/sentio-lab/sentio/internal/api/v1"
)

// Classifier is the capability every sentiment model must satisfy.
// Implementations must be deterministic and stateless per call: same text,
// same answer. The engine never assumes a concrete model behind it.
type Classifier interface {
	// Classify maps comment text to a sentiment class and a confidence
	// score in [0,1]. It must never fail: text that normalizes to nothing
	// yields (Neutral, 0.0).
	Classify(text string) (v1.Sentiment, float64)
}

// CheckedClassifier is implemented by classifiers that can tell a clean
// answer from a degraded one (fallback path, remote failure). Optional:
// callers type-assert it, plain classifiers never degrade.
type CheckedClassifier interface {
	Classifier
	ClassifyChecked(text string) (sentiment v1.Sentiment, confidence float64, degraded bool)
}

// Apply runs c over a raw comment and returns the classified record.
// Out-of-range confidence is clamped, logged as a data-quality warning,
// and reported as degraded, never propagated as an error.
func Apply(c Classifier, raw v1.RawComment) (v1.ClassifiedComment, bool) {
	var (
		class    v1.Sentiment
		conf     float64
		degraded bool
	)
	if cc, ok := c.(CheckedClassifier); ok {
		class, conf, degraded = cc.ClassifyChecked(raw.Text)
	} else {
		class, conf = c.Classify(raw.Text)
	}

	switch {
	case math.IsNaN(conf) || math.IsInf(conf, 0):
		slog.Warn("Classifier returned non-finite confidence, zeroing",
			"comment_id", raw.ID, "confidence", conf)
		conf = 0
		degraded = true
	case conf < 0 || conf > 1:
		slog.Warn("Classifier returned out-of-range confidence, clamping",
			"comment_id", raw.ID, "confidence", conf)
		conf = clamp01(conf)
		degraded = true
	}

	return v1.ClassifiedComment{
		RawComment: raw,
		Sentiment:  class,
		Confidence: conf,
	}, degraded
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
