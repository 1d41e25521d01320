package projection

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	v1 "github.com/sentio-lab/sentio/internal/api/v1"
	coreerr "github.com/sentio-lab/sentio/internal/core/errors"
	"github.com/sentio-lab/sentio/internal/engine"
	"github.com/sentio-lab/sentio/internal/report"
	"github.com/sentio-lab/sentio/internal/text"
)

func seedEngine(t *testing.T, opts engine.Options) *engine.Engine {
	t.Helper()
	eng := engine.New(opts)
	rows := []struct {
		id    string
		text  string
		class v1.Sentiment
		ts    time.Time
	}{
		{"c-1", "The digital filing system is excellent and efficient.", v1.SentimentPositive,
			time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"c-2", "Compliance guidance is confusing and inadequate.", v1.SentimentNegative,
			time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)},
		{"c-3", "Please schedule additional sessions for rural stakeholders.", v1.SentimentNeutral,
			time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
	}
	extractor := text.NewExtractor(nil)
	for _, r := range rows {
		c := v1.ClassifiedComment{
			RawComment: v1.RawComment{ID: r.id, Text: r.text, Timestamp: r.ts},
			Sentiment:  r.class,
			Confidence: 0.8,
		}
		require.NoError(t, eng.Ingest(c, extractor.Extract(r.text), false))
	}
	return eng
}

func newRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc.RegisterRoutes(r)
	return r
}

func TestSnapshotHandler(t *testing.T) {
	svc := NewService(seedEngine(t, engine.Options{}), nil, nil, 0, nil)
	r := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/snapshot", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var snap map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &snap))
	require.EqualValues(t, 3, snap["total_count"])
}

func TestSnapshotHandler_DateRange(t *testing.T) {
	svc := NewService(seedEngine(t, engine.Options{Granularity: engine.GranularityMonth}), nil, nil, 0, nil)
	r := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/snapshot?start=2024-03-01&end=2024-03-31", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var snap map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &snap))
	require.EqualValues(t, 2, snap["total_count"])
}

func TestSnapshotHandler_BadDate(t *testing.T) {
	svc := NewService(seedEngine(t, engine.Options{}), nil, nil, 0, nil)
	r := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/snapshot?start=notadate", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestReportHandler_Text(t *testing.T) {
	svc := NewService(seedEngine(t, engine.Options{}), report.NewBuilder(), nil, 0,
		&report.ModelMetrics{Accuracy: 94.2, Precision: 91.8, Recall: 93.5, F1: 92.6})
	r := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/comprehensive?format=text", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Header().Get("Content-Type"), "text/plain")
	require.Contains(t, resp.Header().Get("Content-Disposition"), "sentiment-analysis-comprehensive-")
	require.Contains(t, resp.Body.String(), "SENTIMENT ANALYSIS REPORT")
	require.Contains(t, resp.Body.String(), "MODEL PERFORMANCE")
}

func TestReportHandler_UnknownType(t *testing.T) {
	svc := NewService(seedEngine(t, engine.Options{}), nil, nil, 0, nil)
	r := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/weekly", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestReportHandler_RawDataWithoutRetention(t *testing.T) {
	svc := NewService(seedEngine(t, engine.Options{}), nil, nil, 0, nil)
	r := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/data?format=csv", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusConflict, resp.Code)
	var errResp coreerr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, coreerr.HttpDataUnavailableError, errResp.ErrorType)

	// Summary on the same session still succeeds.
	req = httptest.NewRequest(http.MethodGet, "/v1/reports/summary?format=csv", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestReportHandler_RawDataWithRetention(t *testing.T) {
	svc := NewService(seedEngine(t, engine.Options{RetainRaw: true, RetentionCapacity: 10}),
		nil, nil, 0, nil)
	r := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/data?format=csv", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "c-1")
	require.Contains(t, resp.Body.String(), "positive")
}

func TestBuildReport_InsightsFromRetainedComments(t *testing.T) {
	svc := NewService(seedEngine(t, engine.Options{RetainRaw: true, RetentionCapacity: 10}),
		nil, text.NewSummarizer(nil), 2, nil)

	rep, err := svc.BuildReport(report.Spec{
		Type:    report.TypeComprehensive,
		Format:  report.FormatText,
		Include: report.IncludeFlags{Insights: true, TopTerms: true},
	})
	require.NoError(t, err)

	out := string(rep.Bytes)
	require.Contains(t, out, "=== KEY INSIGHTS ===")
	require.Contains(t, out, "Positive: ")
	require.Contains(t, out, "digital filing system")
}

func TestParseDateRange(t *testing.T) {
	r, err := parseDateRange("2024-01-01", "2024-06-30")
	require.NoError(t, err)
	require.True(t, r.Contains(time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC)), "end bound is inclusive")
	require.False(t, r.Contains(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)))

	_, err = parseDateRange("2024-06-30", "2024-01-01")
	require.ErrorContains(t, err, "precedes")

	r, err = parseDateRange("", "")
	require.NoError(t, err)
	require.True(t, r.IsZero())
}
