package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/api-sage/ledger-settlement/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-settlement/internal/commons"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type store struct {
	q querier
}

// Ledger implements repo_interfaces.Ledger on PostgreSQL. Version-guarded
// writes are plain UPDATE ... WHERE version = $n statements, so conflict
// detection lives entirely in the database.
type Ledger struct {
	store
	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{store: store{q: db}, db: db}
}

func (l *Ledger) Execute(ctx context.Context, fn func(ctx context.Context, tx repo_interfaces.Store) error) error {
	dbTx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger transaction: %w", err)
	}

	if err := fn(ctx, &store{q: dbTx}); err != nil {
		_ = dbTx.Rollback()
		return err
	}

	if err := dbTx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("commit ledger transaction: %w", commons.ErrConflict)
		}
		return fmt.Errorf("commit ledger transaction: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23505"
	}
	return false
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		return code == "40001" || code == "40P01"
	}
	return false
}
