// Package table streams rows in and out of delimited (CSV) and spreadsheet
// (XLSX) files. Sources consume the header row on open; sinks write whatever
// rows they are given, header included.
package table

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a table file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DefaultSheet is used for XLSX files when no sheet name is configured.
const DefaultSheet = "Sheet1"

// Source yields data rows one at a time. Next returns io.EOF after the last
// row.
type Source interface {
	Next() ([]string, error)
	Close() error
}

// Sink accepts rows in order. Close flushes buffered rows.
type Sink interface {
	Write(row []string) error
	Close() error
}

// ParseFormat validates a user supplied format name. An empty name is
// returned as is and means "detect from the file extension".
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case "", FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported table format %q: must be 'csv' or 'xlsx'", name)
	}
}

// DetectFormat returns override if set, otherwise the format implied by the
// file extension. Unknown extensions are treated as CSV.
func DetectFormat(path string, override Format) Format {
	if override != "" {
		return override
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Open opens path as a Source of the given format and consumes its header.
func Open(path string, format Format, sheet string) (Source, error) {
	var (
		src Source
		err error
	)
	switch DetectFormat(path, format) {
	case FormatXLSX:
		src, err = openXLSX(path, sheet)
	default:
		src, err = openCSV(path)
	}
	if err != nil {
		return nil, err
	}
	return src, nil
}

// Create creates path as a Sink of the given format, truncating any existing
// file.
func Create(path string, format Format, sheet string) (Sink, error) {
	var (
		sink Sink
		err  error
	)
	switch DetectFormat(path, format) {
	case FormatXLSX:
		sink, err = createXLSX(path, sheet)
	default:
		sink, err = createCSV(path)
	}
	if err != nil {
		return nil, err
	}
	return sink, nil
}
