package etl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// RunStatus is the lifecycle state of a run ledger record.
type RunStatus string

const (
	StatusStarted   RunStatus = "started"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Ledger records the lifecycle of each export/import attempt in a durable
// log table. Every write is a single statement executed outside any
// surrounding transaction, so it commits independently: the "started"
// marker survives even when the pipeline later fails before any other
// commit, and the ledger never rolls anything back on its own failure.
type Ledger struct {
	db    DBTX
	table string
}

// NewLedger returns a ledger writing to the given log table
// (possibly schema-qualified, e.g. "logs.etl_logs").
func NewLedger(db DBTX, table string) *Ledger {
	return &Ledger{db: db, table: table}
}

// EnsureSchema creates the ledger schema and table if they do not exist.
// Idempotent; safe to call on every process start.
func (l *Ledger) EnsureSchema(ctx context.Context) error {
	if schema, _, ok := strings.Cut(l.table, "."); ok {
		createSchema := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", quoteColumn(schema))
		if _, err := l.db.Exec(ctx, createSchema); err != nil {
			return wrap(ErrLedgerWrite, err)
		}
	}

	createTable := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	log_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	table_name TEXT NOT NULL,
	start_time TIMESTAMPTZ NOT NULL,
	end_time TIMESTAMPTZ,
	status TEXT NOT NULL,
	records_processed BIGINT NOT NULL DEFAULT 0,
	error_message TEXT
)`, quoteTable(l.table))

	if _, err := l.db.Exec(ctx, createTable); err != nil {
		return wrap(ErrLedgerWrite, err)
	}
	return nil
}

// Begin inserts a run record with status started and zero records processed,
// returning the store-assigned identifier. Failure here is fatal to the whole
// run: there is nothing to log into.
func (l *Ledger) Begin(ctx context.Context, tableName string) (int64, error) {
	query := fmt.Sprintf(
		"INSERT INTO %s (table_name, start_time, status, records_processed) VALUES ($1, $2, $3, 0) RETURNING log_id",
		quoteTable(l.table),
	)

	var runID int64
	if err := l.db.QueryRow(ctx, query, tableName, time.Now(), string(StatusStarted)).Scan(&runID); err != nil {
		return 0, wrap(ErrLedgerWrite, err)
	}
	return runID, nil
}

// End updates the matching run record exactly once with its terminal state.
// An empty errMsg is stored as NULL.
func (l *Ledger) End(ctx context.Context, runID int64, status RunStatus, records int, errMsg string) error {
	query := fmt.Sprintf(
		"UPDATE %s SET end_time = $1, status = $2, records_processed = $3, error_message = $4 WHERE log_id = $5",
		quoteTable(l.table),
	)

	if _, err := l.db.Exec(ctx, query, time.Now(), string(status), records, toPgText(errMsg), runID); err != nil {
		return wrap(ErrLedgerWrite, err)
	}
	return nil
}

// toPgText maps the empty string to NULL.
func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}
