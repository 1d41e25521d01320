package report

import (
	"fmt"

	coreerr "github.com/sentio-lab/sentio/internal/core/errors"
)

// Builder serializes snapshots into reports. Pure given (spec, input):
// building twice from identical arguments is byte-for-byte identical.
type Builder struct{}

// NewBuilder returns a report builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build renders one report. A raw data export without retained comments
// fails with ErrDataUnavailable; every other failure mode is a programming
// error surfaced as a plain error. It never emits a truncated report:
// encoding either fully succeeds or the call fails with a named reason.
func (b *Builder) Build(spec Spec, in Input) (Report, error) {
	if _, err := ParseType(string(spec.Type)); err != nil {
		return Report{}, err
	}
	if _, err := ParseFormat(string(spec.Format)); err != nil {
		return Report{}, err
	}
	if spec.Type == TypeRawData && in.Comments == nil {
		return Report{}, coreerr.ErrDataUnavailable
	}

	var (
		data []byte
		err  error
	)
	switch spec.Format {
	case FormatText:
		data, err = encodeText(spec, in)
	case FormatCSV:
		data, err = encodeCSV(spec, in)
	case FormatJSON:
		data, err = encodeJSON(spec, in)
	}
	if err != nil {
		return Report{}, fmt.Errorf("encoding %s report as %s: %w", spec.Type, spec.Format, err)
	}

	return Report{
		Bytes:    data,
		MIMEType: spec.Format.mimeType(),
		Filename: fmt.Sprintf("sentiment-analysis-%s-%s.%s",
			spec.Type, in.Snapshot.GeneratedAt.Format("2006-01-02"), spec.Format.extension()),
	}, nil
}
