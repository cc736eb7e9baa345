package data

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/siahsang/snapfeed/internal/filter"
	"github.com/siahsang/snapfeed/internal/utils/databaseutils"
)

const (
	pqUniqueViolation     = pq.ErrorCode("23505")
	pqCheckViolation      = pq.ErrorCode("23514")
	pqForeignKeyViolation = pq.ErrorCode("23503")
)

// PostgresStore is the Store backed by the schema in internal/database/migrations.
type PostgresStore struct {
	db          *sql.DB
	log         *slog.Logger
	session     databaseutils.Session
	sqlTemplate *databaseutils.SQLTemplate
}

func NewPostgresStore(db *sql.DB, log *slog.Logger, queryTimeout time.Duration) *PostgresStore {
	return &PostgresStore{
		db:          db,
		log:         log,
		session:     databaseutils.NewSession(db, log),
		sqlTemplate: databaseutils.NewSQLTemplate(db, queryTimeout),
	}
}

func (s *PostgresStore) DoTransactionally(ctx context.Context, fn func(txCtx context.Context) error) error {
	return s.session.DoTransactionally(ctx, fn)
}

func asPQError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}

func isViolation(err error, code pq.ErrorCode) bool {
	pqErr, ok := asPQError(err)
	return ok && pqErr.Code == code
}

// int64Array keeps an empty id set from being sent as NULL, which would make
// ANY/ALL comparisons evaluate to NULL instead of false/true.
func int64Array(ids []int64) any {
	if ids == nil {
		ids = []int64{}
	}
	return pq.Array(ids)
}

// limitArg maps an unbounded page to LIMIT NULL.
func limitArg(page filter.Filter) any {
	if page.Limit <= 0 {
		return nil
	}
	return page.Limit
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
