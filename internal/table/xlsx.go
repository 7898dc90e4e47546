package table

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

type xlsxSource struct {
	file  *excelize.File
	rows  *excelize.Rows
	width int
}

func openXLSX(path, sheet string) (*xlsxSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open sheet %q of %s: %w", sheet, path, err)
	}

	s := &xlsxSource{file: f, rows: rows}
	if rows.Next() {
		header, err := rows.Columns()
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
		}
		s.width = len(header)
	}
	return s, nil
}

// Next returns the next row. Spreadsheets drop trailing empty cells, so rows
// are padded back to the header width.
func (s *xlsxSource) Next() ([]string, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	row, err := s.rows.Columns()
	if err != nil {
		return nil, err
	}
	for len(row) < s.width {
		row = append(row, "")
	}
	return row, nil
}

func (s *xlsxSource) Close() error {
	err := s.rows.Close()
	if closeErr := s.file.Close(); err == nil {
		err = closeErr
	}
	return err
}

type xlsxSink struct {
	path   string
	file   *excelize.File
	stream *excelize.StreamWriter
	next   int
}

func createXLSX(path, sheet string) (*xlsxSink, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}
	f := excelize.NewFile()
	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			f.Close()
			return nil, err
		}
	}
	stream, err := f.NewStreamWriter(sheet)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &xlsxSink{path: path, file: f, stream: stream, next: 1}, nil
}

func (s *xlsxSink) Write(row []string) error {
	cell, err := excelize.CoordinatesToCellName(1, s.next)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	if err := s.stream.SetRow(cell, values); err != nil {
		return err
	}
	s.next++
	return nil
}

func (s *xlsxSink) Close() error {
	err := s.stream.Flush()
	if err == nil {
		err = s.file.SaveAs(s.path)
	}
	if closeErr := s.file.Close(); err == nil {
		err = closeErr
	}
	return err
}
