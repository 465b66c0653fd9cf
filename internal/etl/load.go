package etl

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
)

// DefaultBatchSize is the number of rows per bulk-insert round trip when no
// batch size is configured. Batching is a throughput optimization only, not
// a correctness boundary: any batch size yields the same final table.
var DefaultBatchSize = 1000

// Loader reconstructs the destination table from a parsed CSV buffer:
// truncate, normalize missing values, bulk-insert.
type Loader struct {
	db        DBTX
	batchSize int
}

// NewLoader returns a loader using the given store connection.
// A non-positive batchSize falls back to DefaultBatchSize.
func NewLoader(db DBTX, batchSize int) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Loader{db: db, batchSize: batchSize}
}

// CheckInput verifies that the import CSV exists. Called before any store
// interaction, so a doomed run never opens a ledger entry.
func CheckInput(path string) error {
	if _, err := os.Stat(path); err != nil {
		return wrap(ErrMissingInput, err)
	}
	return nil
}

// ReadCSV parses the CSV at path into a Buffer, using the first record as the
// column names. Cells stay raw strings; NULL resolution happens later in
// Buffer.NormalizeMissing. Ragged records are a parse error: the buffer is
// fixed-arity.
func ReadCSV(path string) (*Buffer, error) {
	if err := CheckInput(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, wrap(ErrParse, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.LazyQuotes = true // tolerate hand-edited files

	records, err := r.ReadAll()
	if err != nil {
		return nil, wrap(ErrParse, err)
	}
	if len(records) == 0 {
		return nil, wrap(ErrParse, errors.New("empty file: no header row"))
	}

	buf, err := NewBuffer(records[0])
	if err != nil {
		return nil, wrap(ErrParse, err)
	}
	for _, record := range records[1:] {
		row := make([]any, len(record))
		for i, cell := range record {
			row[i] = cell
		}
		if err := buf.Append(row); err != nil {
			return nil, wrap(ErrParse, err)
		}
	}

	return buf, nil
}

// Load clears targetTable and bulk-inserts the buffer's rows, using the
// buffer's column order as the explicit target column list (the destination
// schema may carry extra or reordered columns relative to the file, so
// positional ordering is never relied on).
//
// The truncate is its own committed statement. Inserts are sent in fixed-size
// batches; a failing batch aborts the whole load, leaving the table however
// the store leaves a partial bulk operation. Returns the rows loaded.
func (l *Loader) Load(ctx context.Context, buf *Buffer, targetTable string) (int, error) {
	if _, err := l.db.Exec(ctx, "TRUNCATE TABLE "+quoteTable(targetTable)); err != nil {
		return 0, wrap(ErrLoad, err)
	}

	buf.NormalizeMissing()

	insertSQL := buildInsertSQL(targetTable, buf.Columns)

	batch := &pgx.Batch{}
	for _, row := range buf.Rows {
		batch.Queue(insertSQL, row...)
		if batch.Len() >= l.batchSize {
			if err := l.flush(ctx, batch); err != nil {
				return 0, wrap(ErrLoad, err)
			}
			batch = &pgx.Batch{}
		}
	}
	if err := l.flush(ctx, batch); err != nil {
		return 0, wrap(ErrLoad, err)
	}

	return buf.Len(), nil
}

// flush sends one batch and drains its results.
func (l *Loader) flush(ctx context.Context, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}

	results := l.db.SendBatch(ctx, batch)

	var execErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			execErr = err
			break
		}
	}
	if err := results.Close(); err != nil && execErr == nil {
		execErr = err
	}
	return execErr
}

// buildInsertSQL renders the single-row insert statement reused for every
// queued row of the load.
func buildInsertSQL(table string, columns []string) string {
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteColumn(col)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteTable(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "),
	)
}
