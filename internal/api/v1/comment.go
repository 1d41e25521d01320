package v1

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Sentiment is the three-class outcome of comment classification.
// Classification is total: every comment lands in exactly one class.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Sentiments lists all classes in canonical report order.
var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

// Valid reports whether s is one of the three known classes.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Display returns the capitalized label used in report output.
func (s Sentiment) Display() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// RawComment is the atomic unit of ingestion: one valid input row.
// Immutable once created by the corpus reader.
type RawComment struct {
	// ID is taken from the input's id column when present, otherwise
	// synthesized at read time. Opaque to everything downstream.
	ID string `json:"id"`

	// Text is the comment body, whitespace-trimmed, never empty.
	Text string `json:"text"`

	// Timestamp is the optional client-supplied date. Zero means the row
	// carried no parsable timestamp; the comment still counts but cannot
	// be time-bucketed.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// HasTimestamp reports whether the comment can be time-bucketed.
func (c RawComment) HasTimestamp() bool {
	return !c.Timestamp.IsZero()
}

// ClassifiedComment is a RawComment after classification.
type ClassifiedComment struct {
	RawComment

	Sentiment  Sentiment `json:"sentiment"`
	Confidence float64   `json:"confidence"` // in [0,1]
}

// Validate ensures the classified record satisfies the classification
// contract before it is folded into aggregate state.
func (c *ClassifiedComment) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("text is required")
	}
	if !c.Sentiment.Valid() {
		return fmt.Errorf("unknown sentiment %q", c.Sentiment)
	}
	if math.IsNaN(c.Confidence) || math.IsInf(c.Confidence, 0) {
		return fmt.Errorf("confidence %v is not finite", c.Confidence)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range [0,1]", c.Confidence)
	}
	return nil
}

// IngestionResult reports the outcome of one batch ingestion call.
// Row-level skips are counters, never errors: a single bad row must not
// abort the batch.
type IngestionResult struct {
	Accepted         int `json:"accepted"`
	SkippedEmpty     int `json:"skipped_empty"`
	SkippedMalformed int `json:"skipped_malformed"`

	// Degraded counts comments classified on the fallback path
	// (clamped confidence or remote classifier failure).
	Degraded int `json:"degraded"`
}

// Total returns the number of data rows seen by the reader.
func (r IngestionResult) Total() int {
	return r.Accepted + r.SkippedEmpty + r.SkippedMalformed
}
