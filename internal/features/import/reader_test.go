package import_feature

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestCSVSourceStreamsRows(t *testing.T) {
	// Headers in arbitrary order; second data row is ragged.
	input := "first_name,email\nA,a@x.com\nB\n"

	source, err := OpenRowSource(strings.NewReader(input), "clients.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer source.Close()

	headers := source.Headers()
	if len(headers) != 2 || headers[0] != "first_name" || headers[1] != "email" {
		t.Errorf("headers = %v", headers)
	}

	row, err := source.Next()
	if err != nil {
		t.Fatal(err)
	}
	if row.Index != 1 {
		t.Errorf("first data row index = %d, want 1", row.Index)
	}
	if row.Cells["email"] != "a@x.com" || row.Cells["first_name"] != "A" {
		t.Errorf("cells = %v", row.Cells)
	}

	row, err = source.Next()
	if err != nil {
		t.Fatalf("ragged row should not error: %v", err)
	}
	if row.Cells["first_name"] != "B" {
		t.Errorf("cells = %v", row.Cells)
	}
	if _, ok := row.Cells["email"]; ok {
		t.Error("missing trailing cell should be absent, not empty-keyed")
	}

	if _, err := source.Next(); err != io.EOF {
		t.Errorf("exhausted source error = %v, want io.EOF", err)
	}
}

func TestRawRowIsEmpty(t *testing.T) {
	if !(RawRow{Cells: map[string]string{"a": " ", "b": ""}}).IsEmpty() {
		t.Error("whitespace-only row should be empty")
	}
	if (RawRow{Cells: map[string]string{"a": "x"}}).IsEmpty() {
		t.Error("row with a value is not empty")
	}
}

func TestOpenRowSourceRejectsUnknownFormat(t *testing.T) {
	_, err := OpenRowSource(strings.NewReader(""), "data.pdf")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestCSVSourceTrimsHeaderWhitespace(t *testing.T) {
	source, err := OpenRowSource(strings.NewReader(" email , first_name\na@x.com,A\n"), "c.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer source.Close()

	row, err := source.Next()
	if err != nil {
		t.Fatal(err)
	}
	if row.Cells["email"] != "a@x.com" {
		t.Errorf("cells = %v, want trimmed header keys", row.Cells)
	}
}
