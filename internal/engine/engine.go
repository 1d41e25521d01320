package engine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	v1 "github.com/sentio-lab/sentio/internal/api/v1"
	coreerr "github.com/sentio-lab/sentio/internal/core/errors"
)

// State is the lifecycle phase of the aggregation engine.
// Empty → Accumulating on first ingest; Accumulating → Snapshotted on
// snapshot; Snapshotted returns to Accumulating on further ingestion.
// Only Reset returns to Empty.
type State string

const (
	StateEmpty        State = "empty"
	StateAccumulating State = "accumulating"
	StateSnapshotted  State = "snapshotted"
)

const defaultTopTerms = 10

// Options configures a new engine.
type Options struct {
	Granularity Granularity // bucket period; defaults to month
	TopTerms    int         // top-N terms per sentiment; defaults to 10

	// RetainRaw keeps a bounded window of recent comments for raw data
	// export. Off by default: retention costs memory.
	RetainRaw         bool
	RetentionCapacity int
}

// Engine is the single stateful component of the pipeline. It folds
// classified, tokenized comments into running aggregates and answers
// snapshot queries in O(distinct terms + distinct periods), never a
// rescan of raw history.
//
// All mutation is serialized behind one mutex: counter updates are
// commutative, so concurrent ingestion workers may interleave freely
// without losing updates, and snapshots copy state under the same lock so
// a returned view is never torn.
type Engine struct {
	mu sync.Mutex

	granularity Granularity
	topTerms    int

	state    State
	total    int64
	counts   map[v1.Sentiment]int64
	terms    map[v1.Sentiment]map[string]int64
	buckets  map[string]*TimeBucket
	degraded int64

	retained *ring // nil when retention is disabled
}

// New builds an empty engine.
func New(opts Options) *Engine {
	if opts.Granularity == "" {
		opts.Granularity = GranularityMonth
	}
	if opts.TopTerms <= 0 {
		opts.TopTerms = defaultTopTerms
	}
	e := &Engine{
		granularity: opts.Granularity,
		topTerms:    opts.TopTerms,
	}
	if opts.RetainRaw {
		capacity := opts.RetentionCapacity
		if capacity <= 0 {
			capacity = 10000
		}
		e.retained = newRing(capacity)
	}
	e.clearLocked()
	return e
}

// clearLocked resets all stateful maps atomically. Caller holds e.mu
// (or owns the engine exclusively, as in New).
func (e *Engine) clearLocked() {
	e.state = StateEmpty
	e.total = 0
	e.counts = make(map[v1.Sentiment]int64, len(v1.Sentiments))
	e.terms = make(map[v1.Sentiment]map[string]int64, len(v1.Sentiments))
	for _, class := range v1.Sentiments {
		e.counts[class] = 0
		e.terms[class] = make(map[string]int64)
	}
	e.buckets = make(map[string]*TimeBucket)
	e.degraded = 0
	if e.retained != nil {
		e.retained.reset()
	}
}

// Ingest folds one classified comment into aggregate state: the total,
// the sentiment counter, per-sentiment term frequencies, and the lazily
// created time bucket for the comment's period. Safe for concurrent use.
func (e *Engine) Ingest(c v1.ClassifiedComment, terms []string, degraded bool) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("rejecting comment: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.total++
	e.counts[c.Sentiment]++
	for _, term := range terms {
		e.terms[c.Sentiment][term]++
	}
	if degraded {
		e.degraded++
	}

	if c.HasTimestamp() {
		key, start := PeriodFor(c.Timestamp, e.granularity)
		b, ok := e.buckets[key]
		if !ok {
			b = &TimeBucket{
				Period: key,
				Start:  start,
				Counts: make(map[string]int64, len(v1.Sentiments)),
			}
			e.buckets[key] = b
		}
		b.Counts[string(c.Sentiment)]++
		b.Total++
	}

	if e.retained != nil {
		e.retained.push(c)
	}

	e.state = StateAccumulating
	return nil
}

// Snapshot returns a consistent point-in-time view. With a zero range the
// global counters answer; with a bounded range, counts derive from the
// buckets whose period overlaps it, so unaligned bounds widen to whole
// periods (comments without timestamps cannot be range-scoped). An empty
// range yields zero counts, never an error.
func (e *Engine) Snapshot(dateRange DateRange) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	buckets := make([]TimeBucket, 0, len(e.buckets))
	for _, b := range e.buckets {
		if !dateRange.Overlaps(b.Start, periodEnd(b.Start, e.granularity)) {
			continue
		}
		copied := TimeBucket{Period: b.Period, Start: b.Start, Total: b.Total,
			Counts: make(map[string]int64, len(b.Counts))}
		for class, n := range b.Counts {
			copied.Counts[class] = n
		}
		buckets = append(buckets, copied)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Start.Before(buckets[j].Start) })

	counts := make(map[string]int64, len(v1.Sentiments))
	var total int64
	if dateRange.IsZero() {
		for class, n := range e.counts {
			counts[string(class)] = n
		}
		total = e.total
	} else {
		for _, class := range v1.Sentiments {
			counts[string(class)] = 0
		}
		for _, b := range buckets {
			for class, n := range b.Counts {
				counts[class] += n
			}
			total += b.Total
		}
	}

	snap := Snapshot{
		GeneratedAt: time.Now().UTC(),
		State:       e.state,
		Range:       dateRange,
		Granularity: e.granularity,
		TotalCount:  total,
		Counts:      counts,
		Percentages: percentagesFor(counts, total),
		TopTerms:    e.topTermsLocked(),
		TimeSeries:  buckets,
		Degraded:    e.degraded,
	}
	if !dateRange.Start.IsZero() {
		snap.RangeStart = dateRange.Start.Format("2006-01-02")
	}
	if !dateRange.End.IsZero() {
		snap.RangeEnd = dateRange.End.Format("2006-01-02")
	}

	if e.state != StateEmpty {
		e.state = StateSnapshotted
		snap.State = StateSnapshotted
	}
	return snap
}

// topTermsLocked extracts the top-N terms per sentiment, frequency
// descending with lexicographic ascending tie-break. Caller holds e.mu.
func (e *Engine) topTermsLocked() map[string][]TermCount {
	out := make(map[string][]TermCount, len(v1.Sentiments))
	for _, class := range v1.Sentiments {
		freqs := e.terms[class]
		ranked := make([]TermCount, 0, len(freqs))
		for term, n := range freqs {
			ranked = append(ranked, TermCount{Term: term, Count: n})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].Count != ranked[j].Count {
				return ranked[i].Count > ranked[j].Count
			}
			return ranked[i].Term < ranked[j].Term
		})
		if len(ranked) > e.topTerms {
			ranked = ranked[:e.topTerms]
		}
		out[string(class)] = ranked
	}
	return out
}

// Retained returns the bounded window of recent comments, oldest first.
// Fails when retention was not enabled for this session.
func (e *Engine) Retained() ([]v1.ClassifiedComment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.retained == nil {
		return nil, coreerr.ErrDataUnavailable
	}
	return e.retained.items(), nil
}

// RetainsRaw reports whether raw-text retention is enabled.
func (e *Engine) RetainsRaw() bool {
	return e.retained != nil
}

// Reset clears all state back to Empty. The mutex acts as the barrier:
// in-flight ingestions finish first, then everything clears at once.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearLocked()
}

// State returns the current lifecycle phase.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// TotalCount returns the number of comments folded in so far.
func (e *Engine) TotalCount() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.total
}
