package projection

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	coreerr "github.com/sentio-lab/sentio/internal/core/errors"
	"github.com/sentio-lab/sentio/internal/report"
)

// SnapshotHandler serves the current aggregate view as JSON.
func (s *Service) SnapshotHandler(c *gin.Context) {
	dateRange, err := parseDateRange(c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, coreerr.ErrorResponse{
			ErrorType: coreerr.HttpInvalidRequestError,
			Message:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, s.Snapshot(dateRange))
}

// ReportHandler builds and serves one report download.
func (s *Service) ReportHandler(c *gin.Context) {
	spec, err := specFromRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, coreerr.ErrorResponse{
			ErrorType: coreerr.HttpInvalidRequestError,
			Message:   err.Error(),
		})
		return
	}

	rep, err := s.BuildReport(spec)
	if err != nil {
		writeReportError(c, err)
		return
	}

	slog.Info("Report built",
		"type", spec.Type, "format", spec.Format, "bytes", len(rep.Bytes))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.Filename))
	c.Data(http.StatusOK, rep.MIMEType, rep.Bytes)
}

func specFromRequest(c *gin.Context) (report.Spec, error) {
	typ, err := report.ParseType(c.Param("type"))
	if err != nil {
		return report.Spec{}, err
	}

	format := c.DefaultQuery("format", string(report.FormatText))
	f, err := report.ParseFormat(format)
	if err != nil {
		return report.Spec{}, err
	}

	dateRange, err := parseDateRange(c.Query("start"), c.Query("end"))
	if err != nil {
		return report.Spec{}, err
	}

	return report.Spec{
		Type:   typ,
		Format: f,
		Range:  dateRange,
		Include: report.IncludeFlags{
			Insights: c.DefaultQuery("insights", "true") == "true",
			TopTerms: c.DefaultQuery("top_terms", "true") == "true",
			Metrics:  c.DefaultQuery("metrics", "true") == "true",
		},
	}, nil
}

func writeReportError(c *gin.Context, err error) {
	if errors.Is(err, coreerr.ErrDataUnavailable) {
		slog.Warn("Raw data export rejected: retention disabled")
		c.JSON(http.StatusConflict, coreerr.ErrorResponse{
			ErrorType: coreerr.HttpDataUnavailableError,
			Message:   err.Error(),
		})
		return
	}

	slog.Error("Report build failed", "error", err)
	c.JSON(http.StatusInternalServerError, coreerr.ErrorResponse{
		ErrorType: coreerr.HttpInternalError,
		Message:   "Failed to build report",
	})
}
