package databaseutils

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/mdobak/go-xerrors"
)

type txKey struct {
}

// SQLExecutor defines the common methods implemented by both *sql.DB and *sql.Tx.
// This allows repository methods to work seamlessly with either a direct DB connection
// or an active transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Session runs units of work in a transaction. The transaction travels in the
// context handed to fn, so repository code picks it up through GetSQLExecutor.
type Session interface {
	DoTransactionally(ctx context.Context, fn func(txCtx context.Context) error) error
}

type sqlSession struct {
	db   *sql.DB
	log  *slog.Logger
	opts *sql.TxOptions
}

func NewSession(db *sql.DB, log *slog.Logger) Session {
	return &sqlSession{
		db:  db,
		log: log,
	}
}

// DoTransactionally commits when fn returns nil and rolls back otherwise.
// A call made with a context that already carries a transaction joins it
// instead of opening a nested one.
func (s *sqlSession) DoTransactionally(ctx context.Context, fn func(txCtx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, s.opts)
	if err != nil {
		return xerrors.Newf("session: failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				s.log.Error("session: failed to rollback transaction",
					slog.String("rollback_error", rollbackErr.Error()),
					slog.String("error", err.Error()))
			}
			return
		}
		if commitErr := tx.Commit(); commitErr != nil {
			err = xerrors.Newf("session: failed to commit transaction: %w", commitErr)
		}
	}()

	err = fn(context.WithValue(ctx, txKey{}, tx))
	return err
}

// GetSQLExecutor returns the transaction stored in ctx, or fallbackDB when the
// call is not part of a unit of work.
func GetSQLExecutor(ctx context.Context, fallbackDB *sql.DB) SQLExecutor {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return fallbackDB
}

func DoTransactionally[T any](ctx context.Context, session Session, fn func(txCtx context.Context) (T, error)) (T, error) {
	var zero T
	var result T
	err := session.DoTransactionally(ctx, func(txCtx context.Context) error {
		r, err := fn(txCtx)
		result = r
		return err
	})
	if err != nil {
		return zero, err
	}
	return result, nil
}
