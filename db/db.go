package db

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"eventhub/models"
)

// foreignKeyViolation это SQLSTATE Postgres для ссылки на несуществующую строку.
const foreignKeyViolation = "23503"

// Storage хранит заявки, спонсоров, пользователей и аудит в Postgres.
type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// Connect открывает пул Postgres и проверяет соединение.
func Connect(ctx context.Context, connString string) (*sqlx.DB, error) {
	dbConn, err := sqlx.ConnectContext(ctx, "postgres", connString)
	if err != nil {
		return nil, errors.Wrap(err, "connect to postgres")
	}
	return dbConn, nil
}

func (s *Storage) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "commit tx")
}

// notFound сводит отсутствующие строки и битые ссылки к models.ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(models.ErrNotFound, what)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return errors.Wrap(models.ErrNotFound, what)
	}
	return errors.Wrap(err, what)
}
