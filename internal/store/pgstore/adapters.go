package pgstore

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

// Rows is the subset of a result set the store reads.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Executor runs fully rendered SQL.
type Executor interface {
	Query(ctx context.Context, query string) (Rows, error)
	Exec(ctx context.Context, query string) (int64, error)
}

// Transaction is an Executor bound to an open transaction.
type Transaction interface {
	Executor
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Database is an Executor that can open transactions.
type Database interface {
	Executor
	Begin(ctx context.Context) (Transaction, error)
}

type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type pgxExecutor struct {
	querier pgxQuerier
}

func (executor pgxExecutor) Query(ctx context.Context, query string) (Rows, error) {
	rows, err := executor.querier.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return &pgxRows{rows: rows}, nil
}

func (executor pgxExecutor) Exec(ctx context.Context, query string) (int64, error) {
	tag, err := executor.querier.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// PGXDatabase adapts a pgx pool.
type PGXDatabase struct {
	pgxExecutor
	pool *pgxpool.Pool
}

// NewPGXDatabase wraps pool.
func NewPGXDatabase(pool *pgxpool.Pool) *PGXDatabase {
	return &PGXDatabase{pgxExecutor: pgxExecutor{querier: pool}, pool: pool}
}

// Begin opens a pgx transaction.
func (database *PGXDatabase) Begin(ctx context.Context) (Transaction, error) {
	tx, err := database.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	return &pgxTransaction{pgxExecutor: pgxExecutor{querier: tx}, tx: tx}, nil
}

type pgxTransaction struct {
	pgxExecutor
	tx pgx.Tx
}

func (transaction *pgxTransaction) Commit(ctx context.Context) error {
	return transaction.tx.Commit(ctx)
}

func (transaction *pgxTransaction) Rollback(ctx context.Context) error {
	return transaction.tx.Rollback(ctx)
}

type pgxRows struct {
	rows pgx.Rows
}

func (rows *pgxRows) Next() bool {
	return rows.rows.Next()
}

func (rows *pgxRows) Scan(dest ...any) error {
	return rows.rows.Scan(dest...)
}

func (rows *pgxRows) Err() error {
	return rows.rows.Err()
}

func (rows *pgxRows) Close() error {
	rows.rows.Close()
	return nil
}

type sqlxQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type sqlxExecutor struct {
	querier sqlxQuerier
}

func (executor sqlxExecutor) Query(ctx context.Context, query string) (Rows, error) {
	rows, err := executor.querier.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (executor sqlxExecutor) Exec(ctx context.Context, query string) (int64, error) {
	result, err := executor.querier.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// SQLXDatabase adapts a sqlx handle, typically opened with the lib/pq driver.
type SQLXDatabase struct {
	sqlxExecutor
	db *sqlx.DB
}

// NewSQLXDatabase wraps db.
func NewSQLXDatabase(db *sqlx.DB) *SQLXDatabase {
	return &SQLXDatabase{sqlxExecutor: sqlxExecutor{querier: db}, db: db}
}

// Begin opens a database/sql transaction.
func (database *SQLXDatabase) Begin(ctx context.Context) (Transaction, error) {
	tx, err := database.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlxTransaction{sqlxExecutor: sqlxExecutor{querier: tx}, tx: tx}, nil
}

type sqlxTransaction struct {
	sqlxExecutor
	tx *sqlx.Tx
}

func (transaction *sqlxTransaction) Commit(context.Context) error {
	return transaction.tx.Commit()
}

func (transaction *sqlxTransaction) Rollback(context.Context) error {
	return transaction.tx.Rollback()
}
