package domain

import (
	"context"
	"database/sql"
)

// TransactionRunner executes a function inside a single database transaction.
// The capture-commit path (customer upsert + score recompute + capture insert +
// pipeline enroll + follow-up enqueue) must run as one atomic unit, so the
// orchestrating services run their repository calls through this.
type TransactionRunner interface {
	WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error
}
