package etl

// fake_store_test.go provides an in-memory DBTX used by the package tests.
// It records every statement issued so tests can assert ordering and
// accounting, and it can be told to fail at specific points.

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// stmt is one recorded statement with its arguments.
type stmt struct {
	sql  string
	args []any
}

type fakeDB struct {
	stmts []stmt // every Exec/Query/QueryRow call in order

	nextRunID int64  // id scanned back from INSERT ... RETURNING
	beginErr  error  // forced QueryRow scan failure
	execErr   error  // forced Exec failure
	execErrOn string // substring of SQL that triggers execErr ("" = any)
	queryErr  error  // forced Query failure
	queryRows *fakeRows

	inserted     []stmt // batch-queued statements that committed
	failInsertAt int    // 1-based global insert position that fails (0 = never)
	insertSeen   int
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.stmts = append(f.stmts, stmt{sql: sql, args: args})
	if f.execErr != nil && (f.execErrOn == "" || strings.Contains(sql, f.execErrOn)) {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag("OK"), nil
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.stmts = append(f.stmts, stmt{sql: sql, args: args})
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if f.queryRows != nil {
		return f.queryRows, nil
	}
	return &fakeRows{}, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.stmts = append(f.stmts, stmt{sql: sql, args: args})
	return &fakeRow{id: f.nextRunID, err: f.beginErr}
}

func (f *fakeDB) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	results := &fakeBatchResults{}
	failed := false
	for _, q := range b.QueuedQueries {
		f.insertSeen++
		if failed {
			continue
		}
		if f.failInsertAt > 0 && f.insertSeen == f.failInsertAt {
			results.errs = append(results.errs, errors.New("duplicate key value violates unique constraint"))
			failed = true
			continue
		}
		f.inserted = append(f.inserted, stmt{sql: q.SQL, args: q.Arguments})
		results.errs = append(results.errs, nil)
	}
	return results
}

type fakeRow struct {
	id  int64
	err error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) > 0 {
		if p, ok := dest[0].(*int64); ok {
			*p = r.id
		}
	}
	return nil
}

type fakeRows struct {
	cols      []string
	rows      [][]any
	idx       int
	rowsErr   error // surfaced from Err after iteration
	valuesErr error
}

func (r *fakeRows) Close()                        {}
func (r *fakeRows) Err() error                    { return r.rowsErr }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *fakeRows) RawValues() [][]byte           { return nil }
func (r *fakeRows) Conn() *pgx.Conn               { return nil }
func (r *fakeRows) Scan(dest ...any) error        { return nil }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, len(r.cols))
	for i, col := range r.cols {
		fds[i] = pgconn.FieldDescription{Name: col}
	}
	return fds
}

func (r *fakeRows) Next() bool {
	if r.idx < len(r.rows) {
		r.idx++
		return true
	}
	return false
}

func (r *fakeRows) Values() ([]any, error) {
	if r.valuesErr != nil {
		return nil, r.valuesErr
	}
	return r.rows[r.idx-1], nil
}

type fakeBatchResults struct {
	errs []error
	idx  int
}

func (r *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	if r.idx >= len(r.errs) {
		return pgconn.CommandTag{}, nil
	}
	err := r.errs[r.idx]
	r.idx++
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *fakeBatchResults) Query() (pgx.Rows, error) { return &fakeRows{}, nil }
func (r *fakeBatchResults) QueryRow() pgx.Row        { return &fakeRow{} }
func (r *fakeBatchResults) Close() error             { return nil }
