package report

import (
	"encoding/json"

	v1 "github.com/sentio-lab/sentio/internal/api/v1"
	"github.com/sentio-lab/sentio/internal/engine"
)

// jsonReport is the JSON layout. Struct field order plus encoding/json's
// sorted map keys give a stable byte encoding for identical inputs.
type jsonReport struct {
	ReportType Type            `json:"report_type"`
	Snapshot   engine.Snapshot `json:"snapshot"`

	Insights []string               `json:"insights,omitempty"`
	Metrics  *ModelMetrics          `json:"model_metrics,omitempty"`
	Comments []v1.ClassifiedComment `json:"comments,omitempty"`
}

func encodeJSON(spec Spec, in Input) ([]byte, error) {
	out := jsonReport{
		ReportType: spec.Type,
		Snapshot:   in.Snapshot,
	}
	switch spec.Type {
	case TypeRawData:
		out.Comments = in.Comments
	case TypeComprehensive:
		if spec.Include.Insights {
			out.Insights = in.Insights
		}
		if spec.Include.Metrics {
			out.Metrics = in.Metrics
		}
	case TypeSummary:
		if spec.Include.Insights {
			out.Insights = in.Insights
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
