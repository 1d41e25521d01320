package ingestion

import (
	"context"
	"io"
	"runtime"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	v1 "github.com/sentio-lab/sentio/internal/api/v1"
	"github.com/sentio-lab/sentio/internal/core/sentiment"
	"github.com/sentio-lab/sentio/internal/corpus"
	"github.com/sentio-lab/sentio/internal/engine"
	"github.com/sentio-lab/sentio/internal/text"
)

// Service runs the ingestion pipeline: corpus reader → parallel
// classification and term extraction → aggregation engine.
type Service struct {
	reader           *corpus.Reader
	classifier       sentiment.Classifier
	extractor        *text.Extractor
	engine           *engine.Engine
	workers          int
	maxBodySizeBytes int
}

// NewService wires the pipeline. Classifier, extractor and engine must not
// be nil; workers defaults to GOMAXPROCS.
func NewService(
	reader *corpus.Reader,
	classifier sentiment.Classifier,
	extractor *text.Extractor,
	eng *engine.Engine,
	workers int,
	maxBodySizeMB int,
) *Service {
	if reader == nil {
		panic("ingestion: reader must not be nil")
	}
	if classifier == nil {
		panic("ingestion: classifier must not be nil")
	}
	if extractor == nil {
		panic("ingestion: extractor must not be nil")
	}
	if eng == nil {
		panic("ingestion: engine must not be nil")
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 50
	}
	return &Service{
		reader:           reader,
		classifier:       classifier,
		extractor:        extractor,
		engine:           eng,
		workers:          workers,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/comments", s.IngestHandler)
	r.POST("/v1/reset", s.ResetHandler)
}

// classifiedRow is one worker output awaiting commit.
type classifiedRow struct {
	comment  v1.ClassifiedComment
	terms    []string
	degraded bool
}

// IngestBatch runs the full pipeline over one CSV stream.
//
// Two phases keep the failure contract honest: classification runs fully
// (and in parallel) before anything touches the engine, so a schema error
// or size-limit failure commits zero state. The commit loop is a single
// writer draining worker outputs, which is the serialization point the
// engine's counters need.
func (s *Service) IngestBatch(ctx context.Context, src io.Reader) (v1.IngestionResult, error) {
	it, err := s.reader.Open(src)
	if err != nil {
		return v1.IngestionResult{}, err
	}

	jobs := make(chan v1.RawComment, s.workers)
	results := make(chan classifiedRow, s.workers)

	g, ctx := errgroup.WithContext(ctx)

	// Producer: drains the lazy iterator.
	g.Go(func() error {
		defer close(jobs)
		for {
			raw, ok, err := it.Next()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			select {
			case jobs <- raw:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	// Workers: stateless classify + extract, embarrassingly parallel.
	workers := &errgroup.Group{}
	for i := 0; i < s.workers; i++ {
		workers.Go(func() error {
			for raw := range jobs {
				classified, degraded := sentiment.Apply(s.classifier, raw)
				row := classifiedRow{
					comment:  classified,
					terms:    s.extractor.Extract(raw.Text),
					degraded: degraded,
				}
				select {
				case results <- row:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		workers.Wait() //nolint:errcheck // worker errors propagate through the collector's context
		close(results)
	}()

	// Collector: buffers everything until the batch is known to be valid.
	var rows []classifiedRow
	g.Go(func() error {
		for row := range results {
			rows = append(rows, row)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return v1.IngestionResult{}, err
	}

	// Commit phase: single writer, nothing was committed if we got here
	// with an error above.
	result := v1.IngestionResult{}
	for _, row := range rows {
		if err := s.engine.Ingest(row.comment, row.terms, row.degraded); err != nil {
			return result, err
		}
		result.Accepted++
		if row.degraded {
			result.Degraded++
		}
	}
	result.SkippedEmpty, result.SkippedMalformed = it.Skipped()
	return result, nil
}

// Reset clears the engine between independent corpora.
func (s *Service) Reset() {
	s.engine.Reset()
}
