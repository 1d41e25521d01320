//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sentio-lab/sentio/internal/core/sentiment"
	"github.com/sentio-lab/sentio/internal/corpus"
	"github.com/sentio-lab/sentio/internal/engine"
	"github.com/sentio-lab/sentio/internal/ingestion"
	"github.com/sentio-lab/sentio/internal/projection"
	"github.com/sentio-lab/sentio/internal/report"
	"github.com/sentio-lab/sentio/internal/server"
	"github.com/sentio-lab/sentio/internal/text"
)

const sampleCorpus = `id,comment,timestamp
c-1,"This product is great and works perfectly",2024-03-05T10:00:00Z
c-2,"Delivery was okay",2024-03-18T09:30:00Z
c-3,"Terrible quality, very disappointed",2024-04-02T16:45:00Z
`

type integrationHarness struct {
	baseURL    string
	client     *http.Client
	cancel     context.CancelFunc
	serverDone chan error
}

func (h *integrationHarness) close(t *testing.T) {
	t.Helper()

	h.cancel()
	select {
	case <-h.serverDone:
	case <-time.After(5 * time.Second):
		t.Log("server shutdown timed out")
	}
}

func startHarness(t *testing.T) *integrationHarness {
	t.Helper()

	agg := engine.New(engine.Options{
		Granularity:       engine.GranularityMonth,
		TopTerms:          10,
		RetainRaw:         true,
		RetentionCapacity: 100,
	})
	extractor := text.NewExtractor(nil)
	classifier := sentiment.NewLexiconClassifier(sentiment.DefaultLexicon())

	ingestionSvc := ingestion.NewService(
		corpus.NewReader(1000, 1<<20),
		classifier,
		extractor,
		agg,
		2,
		1,
	)
	projectionSvc := projection.NewService(
		agg,
		report.NewBuilder(),
		text.NewSummarizer(extractor),
		3,
		nil,
	)

	port := freePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	httpServer := server.New(addr, agg, "release")
	ingestionSvc.RegisterRoutes(httpServer.Engine)
	projectionSvc.RegisterRoutes(httpServer.Engine)

	ctx, cancel := context.WithCancel(context.Background())
	serverDone := make(chan error, 1)
	go func() { serverDone <- httpServer.Run(ctx) }()

	baseURL := "http://" + addr
	waitForHealthy(t, baseURL)

	return &integrationHarness{
		baseURL:    baseURL,
		client:     &http.Client{Timeout: 5 * time.Second},
		cancel:     cancel,
		serverDone: serverDone,
	}
}

func TestPipeline_IngestSnapshotReport(t *testing.T) {
	h := startHarness(t)
	defer h.close(t)

	status, body := postCSV(t, h.client, h.baseURL+"/v1/comments", sampleCorpus)
	require.Equal(t, http.StatusOK, status, string(body))

	var result struct {
		Accepted         int `json:"accepted"`
		SkippedEmpty     int `json:"skipped_empty"`
		SkippedMalformed int `json:"skipped_malformed"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	require.Equal(t, 3, result.Accepted)
	require.Zero(t, result.SkippedEmpty)
	require.Zero(t, result.SkippedMalformed)

	resp, err := h.client.Get(h.baseURL + "/v1/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	snapBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(snapBody))

	var snapshot struct {
		TotalCount  int64             `json:"total_count"`
		Counts      map[string]int64  `json:"counts_by_sentiment"`
		Percentages map[string]string `json:"percentages_by_sentiment"`
	}
	require.NoError(t, json.Unmarshal(snapBody, &snapshot))
	require.Equal(t, int64(3), snapshot.TotalCount)
	require.Equal(t, int64(1), snapshot.Counts["positive"])
	require.Equal(t, int64(1), snapshot.Counts["neutral"])
	require.Equal(t, int64(1), snapshot.Counts["negative"])
	require.Equal(t, "33.4", snapshot.Percentages["positive"])

	for _, reportType := range []string{"comprehensive", "summary", "data"} {
		for _, format := range []string{"text", "csv", "json"} {
			resp, err := h.client.Get(fmt.Sprintf(
				"%s/v1/reports/%s?format=%s", h.baseURL, reportType, format))
			require.NoError(t, err)
			repBody, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode,
				"%s/%s: %s", reportType, format, string(repBody))
			require.NotEmpty(t, repBody)
			require.Contains(t, resp.Header.Get("Content-Disposition"), "sentiment-analysis-"+reportType)
		}
	}
}

func TestPipeline_DateRangeFilter(t *testing.T) {
	h := startHarness(t)
	defer h.close(t)

	status, body := postCSV(t, h.client, h.baseURL+"/v1/comments", sampleCorpus)
	require.Equal(t, http.StatusOK, status, string(body))

	query := url.Values{}
	query.Set("start", "2024-03-01")
	query.Set("end", "2024-03-31")

	resp, err := h.client.Get(h.baseURL + "/v1/snapshot?" + query.Encode())
	require.NoError(t, err)
	defer resp.Body.Close()
	snapBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(snapBody))

	var snapshot struct {
		TotalCount int64 `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(snapBody, &snapshot))
	require.Equal(t, int64(2), snapshot.TotalCount)
}

func TestPipeline_SchemaErrorAndReset(t *testing.T) {
	h := startHarness(t)
	defer h.close(t)

	status, body := postCSV(t, h.client, h.baseURL+"/v1/comments", "id,body\nx,hello\n")
	require.Equal(t, http.StatusBadRequest, status, string(body))

	var errResp struct {
		ErrorType string `json:"error_type"`
	}
	require.NoError(t, json.Unmarshal(body, &errResp))
	require.Equal(t, "schema_error", errResp.ErrorType)

	status, body = postCSV(t, h.client, h.baseURL+"/v1/comments", sampleCorpus)
	require.Equal(t, http.StatusOK, status, string(body))

	req, err := http.NewRequest(http.MethodPost, h.baseURL+"/v1/reset", nil)
	require.NoError(t, err)
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = h.client.Get(h.baseURL + "/v1/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	snapBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var snapshot struct {
		TotalCount int64  `json:"total_count"`
		State      string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(snapBody, &snapshot))
	require.Zero(t, snapshot.TotalCount)
	require.Equal(t, "empty", snapshot.State)
}

func waitForHealthy(t *testing.T, baseURL string) {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("server did not become healthy at %s", baseURL)
}

func postCSV(t *testing.T, client *http.Client, endpoint, payload string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader([]byte(payload)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/csv")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, respBody
}

func freePort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}
