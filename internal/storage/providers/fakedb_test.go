package providers

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type statement struct {
	sql  string
	args []any
}

// fakeDB records statements and serves queued result sets in call order.
type fakeDB struct {
	execs   []statement
	queries []statement
	rows    [][][]any
	row     []fakeRow
	tag     string
	execErr error
	tx      *fakeTx
}

func newFakeDB() *fakeDB {
	return &fakeDB{tag: "UPDATE 1", tx: &fakeTx{}}
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, statement{sql, args})
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag(f.tag), nil
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.queries = append(f.queries, statement{sql, args})
	if len(f.rows) == 0 {
		return nil, fmt.Errorf("no result set queued for %q", sql)
	}
	data := f.rows[0]
	f.rows = f.rows[1:]
	return &fakeRows{data: data}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.queries = append(f.queries, statement{sql, args})
	if len(f.row) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	r := f.row[0]
	f.row = f.row[1:]
	return r
}

func (f *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	return f.tx, nil
}

func (f *fakeDB) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	panic("SendBatch is not used by these tests")
}

// fakeTx records statements run inside a transaction. failOn makes the first
// statement containing it fail.
type fakeTx struct {
	pgx.Tx
	execs      []statement
	failOn     string
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, statement{sql, args})
	if t.failOn != "" && strings.Contains(sql, t.failOn) {
		return pgconn.CommandTag{}, fmt.Errorf("statement failed")
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

type fakeRows struct {
	pgx.Rows
	data   [][]any
	next   int
	closed bool
}

func (r *fakeRows) Next() bool {
	if r.next >= len(r.data) {
		return false
	}
	r.next++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(r.data[r.next-1], dest)
}

func (r *fakeRows) Err() error { return nil }

func (r *fakeRows) Close() { r.closed = true }

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

func assign(values, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d values into %d destinations", len(values), len(dest))
	}
	for i, v := range values {
		target := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(v))
	}
	return nil
}
