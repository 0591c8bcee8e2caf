package import_feature

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for uploads that are neither CSV nor
// Excel. It is a caller mistake, not an infrastructure failure.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// RawRow is one data row as read from the file: 1-based index plus cell
// values keyed by header name. Headers not present in the template are
// carried through and ignored by the parser.
type RawRow struct {
	Index int
	Cells map[string]string
}

// IsEmpty reports whether every cell is blank. Empty rows are not counted
// toward the run total.
func (r RawRow) IsEmpty() bool {
	for _, v := range r.Cells {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// RowSource streams data rows from an uploaded file one at a time so files
// larger than memory can be imported. Next returns io.EOF when exhausted.
type RowSource interface {
	Headers() []string
	Next() (RawRow, error)
	Close() error
}

// OpenRowSource picks a reader implementation from the file extension.
// The header row may order columns arbitrarily.
func OpenRowSource(file io.Reader, filename string) (RowSource, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return newCSVSource(file)
	case strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls"):
		return newExcelSource(file)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

type csvSource struct {
	reader  *csv.Reader
	headers []string
	index   int
}

func newCSVSource(file io.Reader) (*csvSource, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	return &csvSource{reader: reader, headers: headers}, nil
}

func (s *csvSource) Headers() []string { return s.headers }

func (s *csvSource) Next() (RawRow, error) {
	rec, err := s.reader.Read()
	if err == io.EOF {
		return RawRow{}, io.EOF
	}
	if err != nil {
		return RawRow{}, fmt.Errorf("failed to read CSV row: %w", err)
	}

	s.index++
	cells := make(map[string]string, len(s.headers))
	for i, value := range rec {
		if i < len(s.headers) {
			cells[s.headers[i]] = value
		}
	}
	return RawRow{Index: s.index, Cells: cells}, nil
}

func (s *csvSource) Close() error { return nil }

type excelSource struct {
	file    *excelize.File
	rows    *excelize.Rows
	headers []string
	index   int
}

func newExcelSource(file io.Reader) (*excelSource, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}

	if !rows.Next() {
		rows.Close()
		f.Close()
		return nil, fmt.Errorf("Excel file is empty")
	}
	headers, err := rows.Columns()
	if err != nil {
		rows.Close()
		f.Close()
		return nil, fmt.Errorf("failed to read Excel headers: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	return &excelSource{file: f, rows: rows, headers: headers}, nil
}

func (s *excelSource) Headers() []string { return s.headers }

func (s *excelSource) Next() (RawRow, error) {
	if !s.rows.Next() {
		return RawRow{}, io.EOF
	}
	cells, err := s.rows.Columns()
	if err != nil {
		return RawRow{}, fmt.Errorf("failed to read Excel row: %w", err)
	}

	s.index++
	row := make(map[string]string, len(s.headers))
	for i, value := range cells {
		if i < len(s.headers) {
			row[s.headers[i]] = value
		}
	}
	return RawRow{Index: s.index, Cells: row}, nil
}

func (s *excelSource) Close() error {
	s.rows.Close()
	return s.file.Close()
}
