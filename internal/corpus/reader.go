package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	v1 "github.com/sentio-lab/sentio/internal/api/v1"
	coreerr "github.com/sentio-lab/sentio/internal/core/errors"
	"github.com/google/uuid"
)

const (
	columnComment   = "comment"
	columnID        = "id"
	columnTimestamp = "timestamp"
	columnDate      = "date"
)

// timeLayouts are the accepted ISO-8601 timestamp shapes, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Reader parses tabular comment input. Stateless: one Reader serves any
// number of Open calls.
type Reader struct {
	maxRows  int
	maxBytes int64
}

// NewReader builds a reader with hard size limits. Zero or negative limits
// disable the corresponding check.
func NewReader(maxRows int, maxBytes int64) *Reader {
	return &Reader{maxRows: maxRows, maxBytes: maxBytes}
}

// Open validates the header row and returns a lazy iterator over the data
// rows. Fails with SchemaError before any row is produced when the comment
// column is missing or duplicated. The iterator is not restartable
// once consumed from a non-seekable source.
func (r *Reader) Open(src io.Reader) (*Iterator, error) {
	counting := &countingReader{r: src}
	cr := csv.NewReader(counting)
	cr.FieldsPerRecord = -1 // column-count mismatches are per-row skips, not fatal
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &coreerr.SchemaError{Column: columnComment, Reason: "is missing (empty input)"}
	}
	if err != nil {
		return nil, fmt.Errorf("reading header row: %w", err)
	}

	commentIdx, idIdx, tsIdx := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case columnComment:
			if commentIdx >= 0 {
				return nil, &coreerr.SchemaError{Column: columnComment, Reason: "appears more than once"}
			}
			commentIdx = i
		case columnID:
			if idIdx < 0 {
				idIdx = i
			}
		case columnTimestamp, columnDate:
			if tsIdx < 0 {
				tsIdx = i
			}
		}
	}
	if commentIdx < 0 {
		return nil, &coreerr.SchemaError{Column: columnComment, Reason: "is missing"}
	}

	return &Iterator{
		cr:         cr,
		counting:   counting,
		columns:    len(header),
		commentIdx: commentIdx,
		idIdx:      idIdx,
		tsIdx:      tsIdx,
		maxRows:    r.maxRows,
		maxBytes:   r.maxBytes,
	}, nil
}

// Iterator produces RawComments one row at a time.
type Iterator struct {
	cr       *csv.Reader
	counting *countingReader
	columns  int

	commentIdx int
	idIdx      int
	tsIdx      int

	maxRows  int
	maxBytes int64

	rows             int
	skippedEmpty     int
	skippedMalformed int
}

// Next returns the next valid comment. ok=false with a nil error means the
// input is exhausted; a non-nil error (size limit, unrecoverable read
// failure) invalidates the whole batch.
func (it *Iterator) Next() (v1.RawComment, bool, error) {
	for {
		record, err := it.cr.Read()
		if err == io.EOF {
			return v1.RawComment{}, false, nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				// Bad quoting on one row; the reader resumes on the next line.
				it.skippedMalformed++
				slog.Warn("Skipping malformed row", "line", parseErr.Line, "error", parseErr.Err)
				continue
			}
			return v1.RawComment{}, false, fmt.Errorf("reading row: %w", err)
		}

		it.rows++
		if it.maxRows > 0 && it.rows > it.maxRows {
			return v1.RawComment{}, false, fmt.Errorf("row count exceeds limit of %d: %w",
				it.maxRows, coreerr.ErrSizeLimitExceeded)
		}
		if it.maxBytes > 0 && it.counting.n > it.maxBytes {
			return v1.RawComment{}, false, fmt.Errorf("input exceeds %d bytes: %w",
				it.maxBytes, coreerr.ErrSizeLimitExceeded)
		}

		if len(record) != it.columns {
			it.skippedMalformed++
			continue
		}

		text := strings.TrimSpace(record[it.commentIdx])
		if text == "" {
			it.skippedEmpty++
			continue
		}

		comment := v1.RawComment{ID: it.rowID(record), Text: text}
		if it.tsIdx >= 0 {
			if ts, ok := parseTimestamp(record[it.tsIdx]); ok {
				comment.Timestamp = ts
			}
			// Unparsable timestamps keep the row; it just cannot be time-bucketed.
		}
		return comment, true, nil
	}
}

// Skipped returns the row-level skip counters accumulated so far.
func (it *Iterator) Skipped() (empty, malformed int) {
	return it.skippedEmpty, it.skippedMalformed
}

func (it *Iterator) rowID(record []string) string {
	if it.idIdx >= 0 {
		if id := strings.TrimSpace(record[it.idIdx]); id != "" {
			return id
		}
	}
	return uuid.NewString()
}

func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// countingReader tracks bytes consumed so the iterator can enforce the
// byte limit without buffering the whole input.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
