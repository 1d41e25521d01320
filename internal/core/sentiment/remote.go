package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	v1 "github.com/sentio-lab/sentio/internal/api/v1"
)

// RemoteClassifier calls an external model service over HTTP. It is a
// collaborator boundary: every call carries a timeout, and any failure
// falls back to the local classifier so ingestion is never left hanging.
type RemoteClassifier struct {
	url      string
	client   *http.Client
	timeout  time.Duration
	fallback Classifier
}

// remoteRequest and remoteResponse are the wire shapes of the model service.
type remoteRequest struct {
	Text string `json:"text"`
}

type remoteResponse struct {
	Sentiment  v1.Sentiment `json:"sentiment"`
	Confidence float64      `json:"confidence"`
}

// NewRemoteClassifier wires a remote model endpoint with a local fallback.
// fallback must not be nil: classification always produces an answer.
func NewRemoteClassifier(url string, timeout time.Duration, fallback Classifier) *RemoteClassifier {
	if fallback == nil {
		panic("sentiment: remote classifier requires a fallback")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RemoteClassifier{
		url:      url,
		client:   &http.Client{Timeout: timeout},
		timeout:  timeout,
		fallback: fallback,
	}
}

// Classify satisfies Classifier; degradation is visible via ClassifyChecked.
func (r *RemoteClassifier) Classify(text string) (v1.Sentiment, float64) {
	class, conf, _ := r.ClassifyChecked(text)
	return class, conf
}

// ClassifyChecked asks the remote model and reports degraded=true whenever
// the local fallback answered instead.
func (r *RemoteClassifier) ClassifyChecked(text string) (v1.Sentiment, float64, bool) {
	class, conf, err := r.callRemote(text)
	if err != nil {
		slog.Warn("Remote classifier failed, using local fallback", "error", err)
		class, conf = r.fallback.Classify(text)
		return class, conf, true
	}
	return class, conf, false
}

func (r *RemoteClassifier) callRemote(text string) (v1.Sentiment, float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	body, err := json.Marshal(remoteRequest{Text: text})
	if err != nil {
		return "", 0, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("call model service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("model service returned status %d", resp.StatusCode)
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", 0, fmt.Errorf("decode response: %w", err)
	}
	if !out.Sentiment.Valid() {
		return "", 0, fmt.Errorf("model service returned unknown sentiment %q", out.Sentiment)
	}
	return out.Sentiment, out.Confidence, nil
}
