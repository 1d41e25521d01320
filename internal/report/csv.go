package report

import (
	"bytes"
	"encoding/csv"
	"strconv"

	v1 "github.com/sentio-lab/sentio/internal/api/v1"
)

// encodeCSV renders the tabular layout: one row per comment for raw data
// exports, one row per sentiment for aggregate reports.
func encodeCSV(spec Spec, in Input) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if spec.Type == TypeRawData {
		if err := w.Write([]string{"id", "comment", "sentiment", "confidence", "timestamp"}); err != nil {
			return nil, err
		}
		for _, c := range in.Comments {
			ts := ""
			if c.HasTimestamp() {
				ts = c.Timestamp.Format("2006-01-02")
			}
			row := []string{
				c.ID, c.Text, string(c.Sentiment),
				strconv.FormatFloat(c.Confidence, 'f', 4, 64), ts,
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
		w.Flush()
		return buf.Bytes(), w.Error()
	}

	if err := w.Write([]string{"sentiment", "count", "percentage"}); err != nil {
		return nil, err
	}
	snap := in.Snapshot
	for _, class := range v1.Sentiments {
		row := []string{
			string(class),
			strconv.FormatInt(snap.Count(class), 10),
			snap.Percentage(class).StringFixed(1),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	if spec.Type == TypeComprehensive {
		for _, bucket := range snap.TimeSeries {
			row := []string{
				"trend:" + bucket.Period,
				strconv.FormatInt(bucket.Total, 10),
				"",
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
