package table

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

const csvBufferSize = 1 << 20

type csvSource struct {
	file   *os.File
	reader *csv.Reader
}

func openCSV(path string) (*csvSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(bufio.NewReaderSize(file, csvBufferSize))
	// Row width is checked against the configured column count by the
	// caller, not against the header.
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	if _, err := reader.Read(); err != nil && !errors.Is(err, io.EOF) {
		file.Close()
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	return &csvSource{file: file, reader: reader}, nil
}

func (s *csvSource) Next() ([]string, error) {
	return s.reader.Read()
}

func (s *csvSource) Close() error {
	return s.file.Close()
}

type csvSink struct {
	file   *os.File
	buf    *bufio.Writer
	writer *csv.Writer
}

func createCSV(path string) (*csvSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriterSize(file, csvBufferSize)
	return &csvSink{file: file, buf: buf, writer: csv.NewWriter(buf)}, nil
}

func (s *csvSink) Write(row []string) error {
	return s.writer.Write(row)
}

func (s *csvSink) Close() error {
	s.writer.Flush()
	err := s.writer.Error()
	if flushErr := s.buf.Flush(); err == nil {
		err = flushErr
	}
	if closeErr := s.file.Close(); err == nil {
		err = closeErr
	}
	return err
}
