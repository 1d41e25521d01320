package ingestion

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	coreerr "github.com/sentio-lab/sentio/internal/core/errors"
)

// IngestHandler handles HTTP POST requests carrying a CSV comment batch.
// The batch either fully parses or fails with a named reason; row-level
// problems surface only as counters in the result.
func (s *Service) IngestHandler(c *gin.Context) {
	// Enforce maximum body size to prevent OOM on oversized uploads.
	maxBytes := int64(s.maxBodySizeBytes)
	body := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	result, err := s.IngestBatch(c.Request.Context(), &limitTracker{r: body, max: maxBytes})
	if err != nil {
		writeIngestError(c, err)
		return
	}

	slog.Info("Batch ingested",
		"accepted", result.Accepted,
		"skipped_empty", result.SkippedEmpty,
		"skipped_malformed", result.SkippedMalformed,
		"degraded", result.Degraded)

	c.JSON(http.StatusOK, result)
}

// ResetHandler clears all aggregate state between independent corpora.
func (s *Service) ResetHandler(c *gin.Context) {
	s.Reset()
	slog.Info("Aggregation state reset")
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

func writeIngestError(c *gin.Context, err error) {
	switch {
	case coreerr.IsSchemaError(err):
		slog.Warn("Batch rejected: invalid schema", "error", err)
		c.JSON(http.StatusBadRequest, coreerr.ErrorResponse{
			ErrorType: coreerr.HttpSchemaError,
			Message:   err.Error(),
		})
	case errors.Is(err, coreerr.ErrSizeLimitExceeded):
		slog.Warn("Batch rejected: size limit exceeded", "error", err)
		c.JSON(http.StatusRequestEntityTooLarge, coreerr.ErrorResponse{
			ErrorType: coreerr.HttpSizeLimitExceededError,
			Message:   err.Error(),
		})
	default:
		slog.Error("Batch ingestion failed", "error", err)
		c.JSON(http.StatusInternalServerError, coreerr.ErrorResponse{
			ErrorType: coreerr.HttpInternalError,
			Message:   "Failed to ingest batch",
		})
	}
}

// limitTracker turns reads past max into a size-limit error instead of a
// silent truncation at the LimitReader boundary.
type limitTracker struct {
	r   io.Reader
	n   int64
	max int64
}

func (l *limitTracker) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.n += int64(n)
	if l.n > l.max {
		return n, coreerr.ErrSizeLimitExceeded
	}
	return n, err
}
