package report

import (
	"fmt"

	v1 "github.com/sentio-lab/sentio/internal/api/v1"
	"github.com/sentio-lab/sentio/internal/engine"
)

// Type selects the report layout.
type Type string

const (
	TypeComprehensive Type = "comprehensive"
	TypeSummary       Type = "summary"
	TypeRawData       Type = "data"
)

// ParseType validates a report type string.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeComprehensive, TypeSummary, TypeRawData:
		return Type(s), nil
	}
	return "", fmt.Errorf("unknown report type %q", s)
}

// Format selects the output encoding. All formats are projections of the
// same snapshot: the encoding never changes the underlying values.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatCSV, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

func (f Format) mimeType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

func (f Format) extension() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	default:
		return "txt"
	}
}

// IncludeFlags toggles optional report sections.
type IncludeFlags struct {
	Insights bool `json:"insights"`
	TopTerms bool `json:"top_terms"`
	Metrics  bool `json:"metrics"`
}

// Spec describes one report request. Immutable per request.
type Spec struct {
	Type    Type             `json:"type"`
	Format  Format           `json:"format"`
	Range   engine.DateRange `json:"-"`
	Include IncludeFlags     `json:"include"`
}

// ModelMetrics is an externally supplied performance placeholder. The core
// never computes these; they render only when provided.
type ModelMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Input carries everything a report is built from. Comments is nil when
// raw retention is disabled, which is distinct from an empty retained window.
type Input struct {
	Snapshot engine.Snapshot
	Comments []v1.ClassifiedComment
	Insights []string
	Metrics  *ModelMetrics
}

// Report is the serialized output plus transport metadata.
type Report struct {
	Bytes    []byte
	MIMEType string
	Filename string
}
