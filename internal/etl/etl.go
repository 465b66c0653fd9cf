// Package etl moves the form 101 reporting table between PostgreSQL and
// flat CSV files.
//
// Two symmetric pipelines share one design: export reads the whole source
// table into an in-memory buffer and serializes it to CSV; import parses a
// CSV file, provisions a structural copy of the reference table, truncates
// it, and bulk-inserts the parsed rows. Every attempt is tracked in a run
// ledger table. Pipelines are single-threaded and synchronous: each step is
// its own committed round trip against the store, and a failure at any point
// aborts the whole run with no retry.
package etl

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the narrow store interface the ETL components need.
// Satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// quoteTable quotes a possibly schema-qualified table name for inclusion
// in SQL text. "dm.dm_f101_round_f" becomes `"dm"."dm_f101_round_f"`.
func quoteTable(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

// quoteColumn quotes a single column name for inclusion in SQL text.
func quoteColumn(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
