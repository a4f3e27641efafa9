package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/lib/pq"
)

type txRunner struct {
	db *sql.DB
}

// NewTransactionRunner creates a TransactionRunner over the given database
func NewTransactionRunner(db *sql.DB) domain.TransactionRunner {
	return &txRunner{db: db}
}

// WithTransaction runs fn inside a transaction, rolling back on any error
func (r *txRunner) WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation, optionally on a specific constraint name
func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
