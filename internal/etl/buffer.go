package etl

import (
	"fmt"
	"strings"
)

// Buffer is the in-memory tabular representation used to transfer data
// between the store and CSV files: an ordered set of named columns and an
// ordered set of rows, each row aligned to the columns.
//
// Invariants: row arity always equals the column count, and column names
// are unique and order-preserving between read and write.
type Buffer struct {
	Columns []string
	Rows    [][]any
}

// NewBuffer creates an empty buffer for the given columns.
// Column names must be non-empty and unique.
func NewBuffer(columns []string) (*Buffer, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("buffer requires at least one column")
	}

	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if strings.TrimSpace(col) == "" {
			return nil, fmt.Errorf("empty column name")
		}
		if seen[col] {
			return nil, fmt.Errorf("duplicate column name %q", col)
		}
		seen[col] = true
	}

	return &Buffer{Columns: append([]string(nil), columns...)}, nil
}

// Append adds a row to the buffer. The row arity must match the column count.
func (b *Buffer) Append(row []any) error {
	if len(row) != len(b.Columns) {
		return fmt.Errorf("row has %d values, want %d", len(row), len(b.Columns))
	}
	b.Rows = append(b.Rows, row)
	return nil
}

// Len returns the number of rows in the buffer.
func (b *Buffer) Len() int {
	return len(b.Rows)
}

// NormalizeMissing maps every cell holding a missing-value marker to nil,
// the store's NULL, in place. It returns the number of cells normalized.
//
// This is the one transformation the pipelines perform on field values. It
// is mandatory on the import path: the CSV format cannot otherwise
// distinguish an absent value from an empty string, and pandas-style
// producers spell missing numerics as "NaN".
func (b *Buffer) NormalizeMissing() int {
	normalized := 0
	for _, row := range b.Rows {
		for i, cell := range row {
			s, ok := cell.(string)
			if !ok {
				continue
			}
			if isMissing(s) {
				row[i] = nil
				normalized++
			}
		}
	}
	return normalized
}

// isMissing reports whether a raw CSV cell represents an absent value.
func isMissing(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "nan")
}
