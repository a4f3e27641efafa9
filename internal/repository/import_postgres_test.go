package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/fairwayhq/fairway/internal/repository/testutil"
)

func TestImportRepository_CreateBatch(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewImportRepository(db)
	batch := &domain.ImportBatch{
		CourseID: "pinehurst",
		Source:   domain.ImportSourceGolfNow,
	}

	mock.ExpectExec(`INSERT INTO import_batches`).
		WithArgs(sqlmock.AnyArg(), "pinehurst", domain.ImportSourceGolfNow,
			domain.ImportBatchStatusPending, 0, 0, 0, 0, 0, sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreateBatch(context.Background(), batch))
	assert.NotEmpty(t, batch.ID)
	assert.Equal(t, domain.ImportBatchStatusPending, batch.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportRepository_MarkProcessing(t *testing.T) {
	t.Run("moves the batch to processing", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewImportRepository(db)

		mock.ExpectExec(`UPDATE import_batches SET status = 'processing' WHERE id = \$1`).
			WithArgs("batch-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.MarkProcessing(context.Background(), "batch-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for an unknown batch", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewImportRepository(db)

		mock.ExpectExec(`UPDATE import_batches SET status = 'processing'`).
			WithArgs("batch-x").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkProcessing(context.Background(), "batch-x")
		assert.True(t, domain.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestImportRepository_AppendRow(t *testing.T) {
	t.Run("records a matched row", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewImportRepository(db)
		row := &domain.ImportRow{
			BatchID:    "batch-1",
			CourseID:   "pinehurst",
			Outcome:    domain.ImportRowMatched,
			MatchedBy:  domain.MatchKeyEmail,
			CustomerID: &domain.NullableString{String: "cust-1"},
			Payload:    []byte(`["jordan@example.com","5558675309"]`),
		}

		mock.ExpectExec(`INSERT INTO import_rows`).
			WithArgs(sqlmock.AnyArg(), "batch-1", "pinehurst", domain.ImportRowMatched,
				"email", "cust-1", row.Payload, nil, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.AppendRow(context.Background(), row))
		assert.NotEmpty(t, row.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stores an empty matched_by as NULL via NULLIF", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewImportRepository(db)
		row := &domain.ImportRow{
			BatchID:  "batch-1",
			CourseID: "pinehurst",
			Outcome:  domain.ImportRowSkipped,
			Payload:  []byte(`["",""]`),
		}

		mock.ExpectExec(`NULLIF\(\$5, ''\)`).
			WithArgs(sqlmock.AnyArg(), "batch-1", "pinehurst", domain.ImportRowSkipped,
				"", nil, row.Payload, nil, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.AppendRow(context.Background(), row))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestImportRepository_FinalizeBatch(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewImportRepository(db)
	batch := &domain.ImportBatch{
		ID:          "batch-1",
		Status:      domain.ImportBatchStatusCompleted,
		TotalRows:   10,
		CreatedRows: 6,
		MatchedRows: 2,
		SkippedRows: 1,
		ErrorRows:   1,
	}

	mock.ExpectExec(`UPDATE import_batches`).
		WithArgs("batch-1", domain.ImportBatchStatusCompleted, 10, 6, 2, 1, 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.FinalizeBatch(context.Background(), batch))
	require.NotNil(t, batch.CompletedAt)
	assert.False(t, batch.CompletedAt.IsNull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportRepository_GetBatch(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewImportRepository(db)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "course_id", "source", "status", "total_rows", "created_rows",
		"matched_rows", "skipped_rows", "error_rows", "created_at", "completed_at",
	}).AddRow("batch-1", "pinehurst", "golfnow", "completed", 10, 6, 2, 1, 1, now, now)
	mock.ExpectQuery(`FROM import_batches
		WHERE course_id = \$1 AND id = \$2`).
		WithArgs("pinehurst", "batch-1").
		WillReturnRows(rows)

	batch, err := repo.GetBatch(context.Background(), "pinehurst", "batch-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ImportBatchStatusCompleted, batch.Status)
	assert.Equal(t, 6, batch.CreatedRows)
	assert.False(t, batch.CompletedAt.IsNull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportRepository_ListRows(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewImportRepository(db)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "batch_id", "course_id", "outcome", "matched_by", "customer_id",
		"payload", "error", "created_at",
	}).
		AddRow("row-1", "batch-1", "pinehurst", "matched", "email", "cust-1", []byte(`[]`), nil, now).
		AddRow("row-2", "batch-1", "pinehurst", "skipped", nil, nil, []byte(`[]`), nil, now)
	mock.ExpectQuery(`FROM import_rows
		WHERE batch_id = \$1
		ORDER BY created_at`).
		WithArgs("batch-1").
		WillReturnRows(rows)

	importRows, err := repo.ListRows(context.Background(), "batch-1")
	require.NoError(t, err)
	require.Len(t, importRows, 2)
	assert.Equal(t, domain.MatchKeyEmail, importRows[0].MatchedBy)
	assert.Equal(t, "cust-1", importRows[0].CustomerID.String)
	assert.True(t, importRows[1].CustomerID.IsNull)
	assert.NoError(t, mock.ExpectationsWereMet())
}
