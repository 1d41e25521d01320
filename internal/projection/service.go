package projection

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	v1 "github.com/sentio-lab/sentio/internal/api/v1"
	"github.com/sentio-lab/sentio/internal/engine"
	"github.com/sentio-lab/sentio/internal/report"
	"github.com/sentio-lab/sentio/internal/text"
)

// Service answers snapshot and report queries over the live engine.
type Service struct {
	engine     *engine.Engine
	builder    *report.Builder
	summarizer *text.Summarizer

	summarySentences int
	metrics          *report.ModelMetrics
}

// NewService wires the query side of the pipeline. metrics may be nil,
// in which case the model-performance section never renders.
func NewService(
	eng *engine.Engine,
	builder *report.Builder,
	summarizer *text.Summarizer,
	summarySentences int,
	metrics *report.ModelMetrics,
) *Service {
	if eng == nil {
		panic("projection: engine must not be nil")
	}
	if builder == nil {
		builder = report.NewBuilder()
	}
	if summarizer == nil {
		summarizer = text.NewSummarizer(nil)
	}
	if summarySentences <= 0 {
		summarySentences = 3
	}
	return &Service{
		engine:           eng,
		builder:          builder,
		summarizer:       summarizer,
		summarySentences: summarySentences,
		metrics:          metrics,
	}
}

// RegisterRoutes registers the projection service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/snapshot", s.SnapshotHandler)
	r.GET("/v1/reports/:type", s.ReportHandler)
}

// Snapshot returns the current aggregate view for a date range.
func (s *Service) Snapshot(dateRange engine.DateRange) engine.Snapshot {
	return s.engine.Snapshot(dateRange)
}

// BuildReport assembles report input from the engine and renders it.
// Shared by the HTTP surface and the CLI.
func (s *Service) BuildReport(spec report.Spec) (report.Report, error) {
	in := report.Input{
		Snapshot: s.engine.Snapshot(spec.Range),
		Metrics:  s.metrics,
	}

	if s.engine.RetainsRaw() {
		retained, err := s.engine.Retained()
		if err != nil {
			return report.Report{}, fmt.Errorf("loading retained comments: %w", err)
		}
		in.Comments = retained
		if spec.Include.Insights {
			in.Insights = s.insightsFor(retained)
		}
	}

	return s.builder.Build(spec, in)
}

// insightsFor produces one extractive summary per sentiment class that has
// retained comments, in canonical class order.
func (s *Service) insightsFor(retained []v1.ClassifiedComment) []string {
	byClass := make(map[v1.Sentiment][]string, len(v1.Sentiments))
	for _, c := range retained {
		byClass[c.Sentiment] = append(byClass[c.Sentiment], c.Text)
	}

	var insights []string
	for _, class := range v1.Sentiments {
		comments := byClass[class]
		if len(comments) == 0 {
			continue
		}
		if summary := s.summarizer.Summarize(comments, s.summarySentences); summary != "" {
			insights = append(insights, fmt.Sprintf("%s: %s", class.Display(), summary))
		}
	}
	return insights
}

// parseDateRange reads optional start/end query values. Dates accept
// "2006-01-02" or RFC3339; End is widened to the end of its day so the
// bound stays inclusive.
func parseDateRange(start, end string) (engine.DateRange, error) {
	var r engine.DateRange
	if start != "" {
		ts, err := parseDate(start)
		if err != nil {
			return r, fmt.Errorf("invalid start date %q: %w", start, err)
		}
		r.Start = ts
	}
	if end != "" {
		ts, err := parseDate(end)
		if err != nil {
			return r, fmt.Errorf("invalid end date %q: %w", end, err)
		}
		r.End = ts.Add(24*time.Hour - time.Nanosecond)
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return r, fmt.Errorf("end date precedes start date")
	}
	return r, nil
}

func parseDate(raw string) (time.Time, error) {
	if ts, err := time.Parse("2006-01-02", raw); err == nil {
		return ts.UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}
