package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/fairwayhq/fairway/internal/repository/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()

	t.Run("creates segment with JSON filters", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewSegmentRepository(db)

		mock.ExpectExec(`INSERT INTO segments`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		minScore := 60
		segment := &domain.Segment{
			CourseID: "pinehurst",
			Name:     "Hot local prospects",
			Filters: domain.SegmentFilters{
				MinScore:      &minScore,
				ProspectsOnly: true,
			},
		}

		err := repo.CreateSegment(ctx, segment)
		require.NoError(t, err)
		assert.NotEmpty(t, segment.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("round-trips filters through JSONB", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewSegmentRepository(db)

		now := time.Now().UTC()
		rows := sqlmock.NewRows([]string{"id", "course_id", "name", "filters", "created_at", "updated_at"}).
			AddRow("seg-1", "pinehurst", "Weekly locals",
				[]byte(`{"is_local":true,"play_frequency":"weekly"}`), now, now)

		mock.ExpectQuery(`SELECT (.+) FROM segments`).
			WithArgs("pinehurst", "seg-1").
			WillReturnRows(rows)

		segment, err := repo.GetSegment(ctx, "pinehurst", "seg-1")
		require.NoError(t, err)
		require.NotNil(t, segment.Filters.IsLocal)
		assert.True(t, *segment.Filters.IsLocal)
		assert.Equal(t, "weekly", segment.Filters.PlayFrequency)
	})

	t.Run("returns ErrNotFound for unknown segment", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewSegmentRepository(db)

		mock.ExpectQuery(`SELECT (.+) FROM segments`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "course_id", "name", "filters", "created_at", "updated_at"}))

		_, err := repo.GetSegment(ctx, "pinehurst", "ghost")
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestSegmentRepository_CountMembers(t *testing.T) {
	ctx := context.Background()

	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewSegmentRepository(db)

	minScore := 60
	minVisits := 3
	isLocal := true
	segment := &domain.Segment{
		CourseID: "pinehurst",
		Name:     "Hot prospects",
		Filters: domain.SegmentFilters{
			IsLocal:       &isLocal,
			MinScore:      &minScore,
			MinVisits:     &minVisits,
			PlayFrequency: "weekly",
		},
	}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM customers`).
		WithArgs("pinehurst", true, 60, 3, "weekly").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountMembers(ctx, segment)
	require.NoError(t, err)
	assert.Equal(t, 12, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSegmentRepository_ListMembers(t *testing.T) {
	ctx := context.Background()

	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewSegmentRepository(db)

	segment := &domain.Segment{
		CourseID: "pinehurst",
		Name:     "Everyone",
		Filters:  domain.SegmentFilters{},
	}

	// Opt-outs are excluded from every member listing
	mock.ExpectQuery(`SELECT (.+) FROM customers`).
		WithArgs("pinehurst", false).
		WillReturnRows(newCustomerRows("cust-1", "jordan@example.com", "9105551234"))

	members, err := repo.ListMembers(ctx, segment)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "cust-1", members[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSegmentRepository_DeleteSegment(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes an existing segment", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewSegmentRepository(db)

		mock.ExpectExec(`DELETE FROM segments`).
			WithArgs("pinehurst", "seg-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.DeleteSegment(ctx, "pinehurst", "seg-1")
		require.NoError(t, err)
	})

	t.Run("returns ErrNotFound for unknown segment", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewSegmentRepository(db)

		mock.ExpectExec(`DELETE FROM segments`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteSegment(ctx, "pinehurst", "ghost")
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})
}
