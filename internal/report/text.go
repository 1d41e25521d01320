package report

import (
	"bytes"
	"fmt"
	"strings"

	v1 "github.com/sentio-lab/sentio/internal/api/v1"
)

// encodeText renders the human-readable layout: fixed section order, fixed
// headers, values straight from the snapshot.
func encodeText(spec Spec, in Input) ([]byte, error) {
	snap := in.Snapshot
	var b bytes.Buffer

	fmt.Fprintln(&b, "SENTIMENT ANALYSIS REPORT")
	fmt.Fprintf(&b, "Generated on: %s\n", snap.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Report Type: %s\n", titleFor(spec.Type))
	if snap.RangeStart != "" || snap.RangeEnd != "" {
		fmt.Fprintf(&b, "Date Range: %s to %s\n", orAll(snap.RangeStart), orAll(snap.RangeEnd))
	}
	b.WriteByte('\n')

	fmt.Fprintln(&b, "=== EXECUTIVE SUMMARY ===")
	fmt.Fprintf(&b, "Total Comments Analyzed: %d\n", snap.TotalCount)
	for _, class := range v1.Sentiments {
		fmt.Fprintf(&b, "%s Sentiment: %d (%s%%)\n",
			class.Display(), snap.Count(class), snap.Percentage(class).StringFixed(1))
	}

	if spec.Type == TypeRawData {
		b.WriteByte('\n')
		fmt.Fprintln(&b, "=== CLASSIFIED COMMENTS ===")
		for _, c := range in.Comments {
			ts := ""
			if c.HasTimestamp() {
				ts = c.Timestamp.Format("2006-01-02")
			}
			fmt.Fprintf(&b, "[%s] (%s, %.2f) %s %s\n", c.ID, c.Sentiment, c.Confidence, c.Text, ts)
		}
		return b.Bytes(), nil
	}

	if spec.Include.Insights && len(in.Insights) > 0 {
		b.WriteByte('\n')
		fmt.Fprintln(&b, "=== KEY INSIGHTS ===")
		for i, insight := range in.Insights {
			fmt.Fprintf(&b, "%d. %s\n", i+1, insight)
		}
	}

	if spec.Include.TopTerms && spec.Type == TypeComprehensive {
		b.WriteByte('\n')
		fmt.Fprintln(&b, "=== TOP WORDS BY SENTIMENT ===")
		for _, class := range v1.Sentiments {
			terms := snap.TopTerms[string(class)]
			words := make([]string, len(terms))
			for i, tc := range terms {
				words[i] = tc.Term
			}
			fmt.Fprintf(&b, "%s: %s\n", class.Display(), strings.Join(words, ", "))
		}
	}

	if len(snap.TimeSeries) > 0 && spec.Type == TypeComprehensive {
		b.WriteByte('\n')
		fmt.Fprintln(&b, "=== SENTIMENT TREND ===")
		for _, bucket := range snap.TimeSeries {
			fmt.Fprintf(&b, "%s: total=%d positive=%d neutral=%d negative=%d\n",
				bucket.Period, bucket.Total,
				bucket.Counts[string(v1.SentimentPositive)],
				bucket.Counts[string(v1.SentimentNeutral)],
				bucket.Counts[string(v1.SentimentNegative)])
		}
	}

	if spec.Include.Metrics && in.Metrics != nil && spec.Type == TypeComprehensive {
		b.WriteByte('\n')
		fmt.Fprintln(&b, "=== MODEL PERFORMANCE ===")
		fmt.Fprintf(&b, "Accuracy: %.1f%%\n", in.Metrics.Accuracy)
		fmt.Fprintf(&b, "Precision: %.1f%%\n", in.Metrics.Precision)
		fmt.Fprintf(&b, "Recall: %.1f%%\n", in.Metrics.Recall)
		fmt.Fprintf(&b, "F1-Score: %.1f%%\n", in.Metrics.F1)
	}

	return b.Bytes(), nil
}

func titleFor(t Type) string {
	switch t {
	case TypeComprehensive:
		return "Comprehensive Analysis Report"
	case TypeSummary:
		return "Executive Summary"
	default:
		return "Raw Data Export"
	}
}

func orAll(s string) string {
	if s == "" {
		return "(open)"
	}
	return s
}
