package engine

import (
	"time"

	v1 "github.com/sentio-lab/sentio/internal/api/v1"
	"github.com/shopspring/decimal"
)

// TermCount is one entry of a per-sentiment top-terms list.
type TermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// TimeBucket carries per-sentiment counts for one calendar period.
type TimeBucket struct {
	Period string               `json:"period"` // e.g. "2024-03" or "2024-03-17"
	Start  time.Time            `json:"start"`
	Counts map[string]int64     `json:"counts"` // keyed by sentiment
	Total  int64                `json:"total"`
}

// Snapshot is an immutable, internally consistent view of aggregate state.
// Derived on demand, never persisted. Counts always sum to TotalCount and
// percentages always sum to exactly 100.0 (or 0 for an empty snapshot).
type Snapshot struct {
	GeneratedAt time.Time `json:"generated_at"`
	State       State     `json:"state"`

	Range       DateRange   `json:"-"`
	RangeStart  string      `json:"range_start,omitempty"`
	RangeEnd    string      `json:"range_end,omitempty"`
	Granularity Granularity `json:"granularity"`

	TotalCount  int64                      `json:"total_count"`
	Counts      map[string]int64           `json:"counts_by_sentiment"`
	Percentages map[string]decimal.Decimal `json:"percentages_by_sentiment"`
	TopTerms    map[string][]TermCount     `json:"top_terms_by_sentiment"`
	TimeSeries  []TimeBucket               `json:"time_series"`

	// Degraded counts comments classified on a fallback path this session.
	Degraded int64 `json:"degraded"`
}

// Count returns the counter for one sentiment class.
func (s Snapshot) Count(class v1.Sentiment) int64 {
	return s.Counts[string(class)]
}

// Percentage returns the display percentage for one sentiment class.
func (s Snapshot) Percentage(class v1.Sentiment) decimal.Decimal {
	if p, ok := s.Percentages[string(class)]; ok {
		return p
	}
	return decimal.Zero
}

// percentagesFor computes one-decimal display percentages whose sum is
// exactly 100.0, using largest-remainder apportionment over exact integer
// counts. Rounding each share independently could drift the sum by up to
// 0.15; apportionment keeps the invariant airtight. Zero total yields all
// zeros, never a division by zero.
func percentagesFor(counts map[string]int64, total int64) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(v1.Sentiments))
	if total == 0 {
		for _, class := range v1.Sentiments {
			out[string(class)] = decimal.Zero.Round(1)
		}
		return out
	}

	// Work in permille (tenths of a percent) so everything stays integral.
	permille := make(map[v1.Sentiment]int64, len(v1.Sentiments))
	remainder := make(map[v1.Sentiment]int64, len(v1.Sentiments))
	var assigned int64
	for _, class := range v1.Sentiments {
		n := counts[string(class)] * 1000
		permille[class] = n / total
		remainder[class] = n % total
		assigned += permille[class]
	}

	// Hand leftover tenths to the largest remainders; ties follow the
	// canonical sentiment order so the result is deterministic.
	for leftover := int64(1000) - assigned; leftover > 0; leftover-- {
		best := v1.Sentiments[0]
		for _, class := range v1.Sentiments[1:] {
			if remainder[class] > remainder[best] {
				best = class
			}
		}
		permille[best]++
		remainder[best] = -1
	}

	for _, class := range v1.Sentiments {
		out[string(class)] = decimal.New(permille[class], -1)
	}
	return out
}
