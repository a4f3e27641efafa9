package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/google/uuid"
)

type importRepository struct {
	db *sql.DB
}

// NewImportRepository creates a new PostgreSQL import repository
func NewImportRepository(db *sql.DB) domain.ImportRepository {
	return &importRepository{db: db}
}

func (r *importRepository) CreateBatch(ctx context.Context, batch *domain.ImportBatch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	if batch.Status == "" {
		batch.Status = domain.ImportBatchStatusPending
	}
	batch.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO import_batches (
			id, course_id, source, status, total_rows, created_rows,
			matched_rows, skipped_rows, error_rows, created_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		batch.ID, batch.CourseID, batch.Source, batch.Status,
		batch.TotalRows, batch.CreatedRows, batch.MatchedRows,
		batch.SkippedRows, batch.ErrorRows,
		batch.CreatedAt, batch.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create import batch: %w", err)
	}
	return nil
}

func (r *importRepository) MarkProcessing(ctx context.Context, batchID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE import_batches SET status = 'processing' WHERE id = $1`, batchID)
	if err != nil {
		return fmt.Errorf("failed to mark batch processing: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return &domain.ErrNotFound{Entity: "import_batch", ID: batchID}
	}
	return nil
}

func (r *importRepository) AppendRow(ctx context.Context, row *domain.ImportRow) error {
	if row.ID == "" {
		row.ID = uuid.New().String()
	}
	row.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO import_rows (
			id, batch_id, course_id, outcome, matched_by, customer_id,
			payload, error, created_at
		) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		row.ID, row.BatchID, row.CourseID, row.Outcome, string(row.MatchedBy),
		row.CustomerID, row.Payload, row.Error, row.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append import row: %w", err)
	}
	return nil
}

func (r *importRepository) FinalizeBatch(ctx context.Context, batch *domain.ImportBatch) error {
	now := time.Now().UTC()

	query := `
		UPDATE import_batches
		SET status = $2, total_rows = $3, created_rows = $4, matched_rows = $5,
			skipped_rows = $6, error_rows = $7, completed_at = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		batch.ID, batch.Status, batch.TotalRows, batch.CreatedRows,
		batch.MatchedRows, batch.SkippedRows, batch.ErrorRows, now,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize import batch: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return &domain.ErrNotFound{Entity: "import_batch", ID: batch.ID}
	}

	batch.CompletedAt = &domain.NullableTime{Time: now}
	return nil
}

func (r *importRepository) GetBatch(ctx context.Context, courseID string, id string) (*domain.ImportBatch, error) {
	query := `
		SELECT id, course_id, source, status, total_rows, created_rows,
			matched_rows, skipped_rows, error_rows, created_at, completed_at
		FROM import_batches
		WHERE course_id = $1 AND id = $2
	`

	var batch domain.ImportBatch
	var completedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, courseID, id).Scan(
		&batch.ID, &batch.CourseID, &batch.Source, &batch.Status,
		&batch.TotalRows, &batch.CreatedRows, &batch.MatchedRows,
		&batch.SkippedRows, &batch.ErrorRows,
		&batch.CreatedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "import_batch", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import batch: %w", err)
	}

	batch.CompletedAt = &domain.NullableTime{Time: completedAt.Time, IsNull: !completedAt.Valid}
	return &batch, nil
}

func (r *importRepository) ListRows(ctx context.Context, batchID string) ([]*domain.ImportRow, error) {
	query := `
		SELECT id, batch_id, course_id, outcome, matched_by, customer_id,
			payload, error, created_at
		FROM import_rows
		WHERE batch_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list import rows: %w", err)
	}
	defer rows.Close()

	var importRows []*domain.ImportRow
	for rows.Next() {
		var row domain.ImportRow
		var matchedBy, customerID, rowErr sql.NullString
		if err := rows.Scan(
			&row.ID, &row.BatchID, &row.CourseID, &row.Outcome,
			&matchedBy, &customerID, &row.Payload, &rowErr, &row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan import row: %w", err)
		}
		row.MatchedBy = domain.MatchKey(matchedBy.String)
		row.CustomerID = &domain.NullableString{String: customerID.String, IsNull: !customerID.Valid}
		row.Error = &domain.NullableString{String: rowErr.String, IsNull: !rowErr.Valid}
		importRows = append(importRows, &row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating import rows: %w", err)
	}

	return importRows, nil
}
