package etl

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
)

// Extractor reads an entire source table into a Buffer.
//
// The read is a full unfiltered SELECT with no pagination or streaming: the
// design assumes the form 101 table fits in memory. That is a known scaling
// limit, not a bug.
type Extractor struct {
	db DBTX
}

// NewExtractor returns an extractor using the given store connection.
func NewExtractor(db DBTX) *Extractor {
	return &Extractor{db: db}
}

// Extract materializes every row and column of sourceTable into a Buffer in
// the store's natural column order. The buffer is either fully populated or
// not returned at all.
func (e *Extractor) Extract(ctx context.Context, sourceTable string) (*Buffer, error) {
	rows, err := e.db.Query(ctx, "SELECT * FROM "+quoteTable(sourceTable))
	if err != nil {
		return nil, wrap(ErrExtract, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = fd.Name
	}

	buf, err := NewBuffer(columns)
	if err != nil {
		return nil, wrap(ErrExtract, err)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, wrap(ErrExtract, err)
		}
		if err := buf.Append(values); err != nil {
			return nil, wrap(ErrExtract, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(ErrExtract, err)
	}

	return buf, nil
}

// WriteCSV serializes the buffer to a comma-delimited UTF-8 file at path:
// one header row of column names, then one line per buffer row in original
// order, each cell rendered by the store's natural string conversion.
// Returns the number of data rows written.
func WriteCSV(buf *Buffer, path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, wrap(ErrWrite, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write(buf.Columns); err != nil {
		f.Close()
		return 0, wrap(ErrWrite, err)
	}

	record := make([]string, len(buf.Columns))
	for _, row := range buf.Rows {
		for i, cell := range row {
			record[i] = formatValue(cell)
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return 0, wrap(ErrWrite, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return 0, wrap(ErrWrite, err)
	}
	if err := f.Close(); err != nil {
		return 0, wrap(ErrWrite, fmt.Errorf("close %s: %w", path, err))
	}

	return buf.Len(), nil
}
