package export

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes t as UTF-8 CSV with RFC 4180 quoting.
func WriteCSV(w io.Writer, t Table, includeHeader bool) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if includeHeader {
		if err := writer.Write(t.Header); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
