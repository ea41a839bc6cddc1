// Package rlstest provides scripted pgx fakes for unit tests of code built on
// rls.Manager. Only the methods the tenantkit packages call are implemented;
// anything else panics through the embedded nil interfaces.
package rlstest

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Call kinds recorded by DB.
const (
	KindBegin             = "begin"
	KindExec              = "exec"
	KindQuery             = "query"
	KindQueryRow          = "query_row"
	KindCommit            = "commit"
	KindRollback          = "rollback"
	KindSavepoint         = "savepoint"
	KindReleaseSavepoint  = "release_savepoint"
	KindRollbackSavepoint = "rollback_savepoint"
)

// Call is one recorded interaction.
type Call struct {
	Kind string
	SQL  string
	Args []any
}

// DB is a scripted rls.Beginner. Handlers are consulted for every statement;
// nil handlers fall back to empty results. Like pgx, every call fails with
// ctx.Err() once its context is done, and a commit on a done context rolls
// back instead.
type DB struct {
	BeginErr  error
	CommitErr error

	OnExec     func(sql string, args []any) (pgconn.CommandTag, error)
	OnQueryRow func(sql string, args []any) pgx.Row
	OnQuery    func(sql string, args []any) (pgx.Rows, error)

	mu    sync.Mutex
	calls []Call
}

// BeginTx implements rls.Beginner.
func (db *DB) BeginTx(ctx context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	db.record(Call{Kind: KindBegin})
	if db.BeginErr != nil {
		return nil, db.BeginErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{db: db}, nil
}

// Calls returns a copy of the recorded interactions.
func (db *DB) Calls() []Call {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]Call(nil), db.calls...)
}

// Kinds returns the kinds of the recorded interactions in order.
func (db *DB) Kinds() []string {
	calls := db.Calls()
	kinds := make([]string, len(calls))
	for i, c := range calls {
		kinds[i] = c.Kind
	}
	return kinds
}

// Statements returns the SQL of exec, query and query_row calls in order.
func (db *DB) Statements() []string {
	var out []string
	for _, c := range db.Calls() {
		switch c.Kind {
		case KindExec, KindQuery, KindQueryRow:
			out = append(out, c.SQL)
		}
	}
	return out
}

// Find returns the first recorded statement containing fragment.
func (db *DB) Find(fragment string) (Call, bool) {
	for _, c := range db.Calls() {
		if c.SQL != "" && strings.Contains(c.SQL, fragment) {
			return c, true
		}
	}
	return Call{}, false
}

func (db *DB) record(c Call) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.calls = append(db.calls, c)
}

// Tx is a fake transaction or savepoint.
type Tx struct {
	pgx.Tx

	db        *DB
	savepoint bool
	closed    bool
}

func (tx *Tx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx.closed {
		return pgconn.CommandTag{}, pgx.ErrTxClosed
	}
	tx.db.record(Call{Kind: KindExec, SQL: sql, Args: args})
	if err := ctx.Err(); err != nil {
		return pgconn.CommandTag{}, err
	}
	if tx.db.OnExec != nil {
		return tx.db.OnExec(sql, args)
	}
	return pgconn.NewCommandTag("SELECT 1"), nil
}

func (tx *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx.closed {
		return ErrRow(pgx.ErrTxClosed)
	}
	tx.db.record(Call{Kind: KindQueryRow, SQL: sql, Args: args})
	if err := ctx.Err(); err != nil {
		return ErrRow(err)
	}
	if tx.db.OnQueryRow != nil {
		return tx.db.OnQueryRow(sql, args)
	}
	return ErrRow(pgx.ErrNoRows)
}

func (tx *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx.closed {
		return nil, pgx.ErrTxClosed
	}
	tx.db.record(Call{Kind: KindQuery, SQL: sql, Args: args})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tx.db.OnQuery != nil {
		return tx.db.OnQuery(sql, args)
	}
	return NewRows(), nil
}

// Begin opens a savepoint.
func (tx *Tx) Begin(ctx context.Context) (pgx.Tx, error) {
	if tx.closed {
		return nil, pgx.ErrTxClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx.db.record(Call{Kind: KindSavepoint})
	return &Tx{db: tx.db, savepoint: true}, nil
}

// Commit records a rollback and returns ctx.Err() when ctx is done.
func (tx *Tx) Commit(ctx context.Context) error {
	if tx.closed {
		return pgx.ErrTxClosed
	}
	if err := ctx.Err(); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	tx.closed = true
	if tx.savepoint {
		tx.db.record(Call{Kind: KindReleaseSavepoint})
		return nil
	}
	tx.db.record(Call{Kind: KindCommit})
	return tx.db.CommitErr
}

func (tx *Tx) Rollback(_ context.Context) error {
	if tx.closed {
		return pgx.ErrTxClosed
	}
	tx.closed = true
	if tx.savepoint {
		tx.db.record(Call{Kind: KindRollbackSavepoint})
		return nil
	}
	tx.db.record(Call{Kind: KindRollback})
	return nil
}

// Row is a scripted pgx.Row.
type Row struct {
	values []any
	err    error
}

// ValuesRow returns a row scanning values into destinations in order.
func ValuesRow(values ...any) *Row {
	return &Row{values: values}
}

// ErrRow returns a row whose Scan fails with err.
func ErrRow(err error) *Row {
	return &Row{err: err}
}

func (r *Row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

// Rows is a scripted pgx.Rows.
type Rows struct {
	pgx.Rows

	data   [][]any
	pos    int
	err    error
	closed bool
}

// NewRows returns rows yielding each slice as one row.
func NewRows(rows ...[]any) *Rows {
	return &Rows{data: rows, pos: -1}
}

// WithErr makes Err report err after iteration.
func (r *Rows) WithErr(err error) *Rows {
	r.err = err
	return r
}

func (r *Rows) Next() bool {
	if r.closed {
		return false
	}
	r.pos++
	if r.pos >= len(r.data) {
		r.closed = true
		return false
	}
	return true
}

func (r *Rows) Scan(dest ...any) error {
	if r.pos < 0 || r.pos >= len(r.data) {
		return fmt.Errorf("rlstest: scan outside of a row")
	}
	return assign(r.data[r.pos], dest)
}

func (r *Rows) Err() error {
	return r.err
}

func (r *Rows) Close() {
	r.closed = true
}

func (r *Rows) CommandTag() pgconn.CommandTag {
	return pgconn.NewCommandTag(fmt.Sprintf("SELECT %d", len(r.data)))
}

func assign(values, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("rlstest: %d values for %d destinations", len(values), len(dest))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d)
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return fmt.Errorf("rlstest: destination %d is not a pointer", i)
		}
		elem := target.Elem()
		if values[i] == nil {
			elem.Set(reflect.Zero(elem.Type()))
			continue
		}

		v := reflect.ValueOf(values[i])
		switch {
		case v.Type().AssignableTo(elem.Type()):
			elem.Set(v)
		case elem.Kind() == reflect.Pointer && v.Type().AssignableTo(elem.Type().Elem()):
			p := reflect.New(elem.Type().Elem())
			p.Elem().Set(v)
			elem.Set(p)
		case v.Type().ConvertibleTo(elem.Type()):
			elem.Set(v.Convert(elem.Type()))
		default:
			return fmt.Errorf("rlstest: cannot assign %T to %s", values[i], elem.Type())
		}
	}
	return nil
}
