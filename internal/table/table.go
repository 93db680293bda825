// Package table reads and writes the delimited files surveysim exchanges
// with the outside world.
package table

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Table holds a loaded delimited file with derived metadata.
type Table struct {
	Path   string
	Hash   string // "sha256:<hex>"
	Header []string
	Rows   [][]string
}

// Read loads a CSV file from disk and hashes its content.
func Read(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	t, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Path = path
	t.Hash = Hash(data)
	return t, nil
}

// Parse reads a header row followed by data rows. Rows may be shorter than
// the header; missing trailing cells read as empty.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty table: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := &Table{Header: header}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading rows: %w", err)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Hash returns the provenance hash of data.
func Hash(data []byte) string {
	return fmt.Sprintf("sha256:%x", sha256.Sum256(data))
}

// Column returns the index of the named header column, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed cell at (row, col), or "" if the row is short.
func (t *Table) Cell(row, col int) string {
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// CellError locates a cell that could not be parsed.
type CellError struct {
	Path   string
	Row    int // 1-based data row, header excluded
	Column string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("%s: row %d, column %s: %v", e.Path, e.Row, e.Column, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }
