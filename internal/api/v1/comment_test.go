package v1

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSentiment_Valid(t *testing.T) {
	require.True(t, SentimentPositive.Valid())
	require.True(t, SentimentNeutral.Valid())
	require.True(t, SentimentNegative.Valid())
	require.False(t, Sentiment("mixed").Valid())
	require.False(t, Sentiment("").Valid())
}

func TestSentiment_Display(t *testing.T) {
	require.Equal(t, "Positive", SentimentPositive.Display())
	require.Equal(t, "Neutral", SentimentNeutral.Display())
	require.Equal(t, "Negative", SentimentNegative.Display())
}

func TestClassifiedComment_Validate(t *testing.T) {
	valid := ClassifiedComment{
		RawComment: RawComment{ID: "c-1", Text: "fine work", Timestamp: time.Now()},
		Sentiment:  SentimentPositive,
		Confidence: 0.8,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*ClassifiedComment)
	}{
		{"missing id", func(c *ClassifiedComment) { c.ID = "" }},
		{"blank text", func(c *ClassifiedComment) { c.Text = "   " }},
		{"unknown sentiment", func(c *ClassifiedComment) { c.Sentiment = "angry" }},
		{"confidence below range", func(c *ClassifiedComment) { c.Confidence = -0.1 }},
		{"confidence above range", func(c *ClassifiedComment) { c.Confidence = 1.5 }},
		{"confidence NaN", func(c *ClassifiedComment) { c.Confidence = math.NaN() }},
		{"confidence infinite", func(c *ClassifiedComment) { c.Confidence = math.Inf(1) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}

func TestRawComment_HasTimestamp(t *testing.T) {
	require.False(t, RawComment{}.HasTimestamp())
	require.True(t, RawComment{Timestamp: time.Now()}.HasTimestamp())
}
