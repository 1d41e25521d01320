package errors

import (
	"errors"
	"fmt"
)

const (
	HttpInternalError          = "internal_error"
	HttpSchemaError            = "schema_error"
	HttpSizeLimitExceededError = "size_limit_exceeded"
	HttpDataUnavailableError   = "data_unavailable"
	HttpInvalidRequestError    = "invalid_request"
	HttpUnknownReportError     = "unknown_report_type"
)

// ErrorResponse is the error response body for API errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// ErrSizeLimitExceeded aborts ingestion before any state is committed:
// the batch exceeded the configured row or byte limit.
var ErrSizeLimitExceeded = errors.New("input exceeds configured size limit")

// ErrDataUnavailable is returned when a raw data export is requested but
// raw comment retention was not enabled for the session.
var ErrDataUnavailable = errors.New("raw comment retention is not enabled")

// SchemaError reports a broken input header: the comment column is
// missing or appears more than once. Fatal to the whole ingestion call.
type SchemaError struct {
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("input schema invalid: column %q %s", e.Column, e.Reason)
}

// IsSchemaError reports whether err is (or wraps) a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
