package export

import (
	"bytes"
	"fmt"
	"strings"
)

// UTF8BOM prefixes every CSV artifact so spreadsheet consumers that assume a
// legacy regional encoding still decode multi-byte characters correctly.
const UTF8BOM = "\uFEFF"

// Dataset defines tabular export content. Rows are positional and must match
// the header order. Cells are emitted verbatim: callers pre-quote any cell
// that may contain the delimiter (see Wrap and QuoteEscape), which keeps the
// artifact byte-compatible with the legacy export format.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

// CSVExporter renders Dataset records into BOM-prefixed CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	buf.WriteString(UTF8BOM)
	buf.WriteString(strings.Join(data.Headers, ","))
	for _, row := range data.Rows {
		if len(row) != len(data.Headers) {
			return nil, fmt.Errorf("csv row has %d cells, want %d", len(row), len(data.Headers))
		}
		buf.WriteString("\n")
		buf.WriteString(strings.Join(row, ","))
	}
	return buf.Bytes(), nil
}

// Wrap surrounds a cell with quotes without escaping its content.
func Wrap(s string) string {
	return `"` + s + `"`
}

// QuoteEscape doubles embedded quotes and wraps the cell.
func QuoteEscape(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
