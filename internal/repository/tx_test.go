package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fairwayhq/fairway/internal/repository/testutil"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newUniqueViolation builds the pq error a duplicate-key insert raises
func newUniqueViolation(constraint string) error {
	return &pq.Error{
		Code:       "23505",
		Constraint: constraint,
	}
}

func TestTransactionRunner_WithTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("commits when fn succeeds", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		runner := NewTransactionRunner(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE customers`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := runner.WithTransaction(ctx, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "UPDATE customers SET visit_count = visit_count + 1")
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		runner := NewTransactionRunner(db)

		mock.ExpectBegin()
		mock.ExpectRollback()

		fnErr := errors.New("business rule violated")
		err := runner.WithTransaction(ctx, func(tx *sql.Tx) error {
			return fnErr
		})
		require.Error(t, err)
		assert.Equal(t, fnErr, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("surfaces begin failure", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		runner := NewTransactionRunner(db)

		mock.ExpectBegin().WillReturnError(errors.New("connection error"))

		err := runner.WithTransaction(ctx, func(tx *sql.Tx) error { return nil })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to begin transaction")
	})
}

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches any constraint when none given", func(t *testing.T) {
		assert.True(t, isUniqueViolation(newUniqueViolation("idx_whatever"), ""))
	})

	t.Run("matches a named constraint", func(t *testing.T) {
		assert.True(t, isUniqueViolation(newUniqueViolation("idx_captures_reward_code"), "idx_captures_reward_code"))
	})

	t.Run("rejects a different constraint", func(t *testing.T) {
		assert.False(t, isUniqueViolation(newUniqueViolation("idx_other"), "idx_captures_reward_code"))
	})

	t.Run("rejects non-pq errors", func(t *testing.T) {
		assert.False(t, isUniqueViolation(errors.New("plain error"), ""))
	})

	t.Run("rejects other pq codes", func(t *testing.T) {
		assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}, ""))
	})
}
