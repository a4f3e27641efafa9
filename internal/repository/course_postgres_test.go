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

func TestCourseRepository_GetCourse(t *testing.T) {
	t.Run("returns the course", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewCourseRepository(db)
		now := time.Now().UTC()

		rows := sqlmock.NewRows([]string{"id", "name", "code_prefix", "default_reward", "created_at", "updated_at"}).
			AddRow("pinehurst", "Pinehurst Municipal", "PH", "free_soft_drink", now, now)
		mock.ExpectQuery(`SELECT id, name, code_prefix, default_reward, created_at, updated_at
			FROM courses
			WHERE id = \$1`).
			WithArgs("pinehurst").
			WillReturnRows(rows)

		course, err := repo.GetCourse(context.Background(), "pinehurst")
		require.NoError(t, err)
		assert.Equal(t, "PH", course.CodePrefix)
		assert.Equal(t, domain.RewardFreeSoftDrink, course.DefaultReward)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for an unknown course", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewCourseRepository(db)

		mock.ExpectQuery(`SELECT id, name, code_prefix, default_reward`).
			WithArgs("nowhere").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetCourse(context.Background(), "nowhere")
		assert.True(t, domain.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCourseRepository_CreateCourse(t *testing.T) {
	t.Run("inserts the course", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewCourseRepository(db)
		now := time.Now().UTC()
		course := &domain.Course{
			ID:            "pinehurst",
			Name:          "Pinehurst Municipal",
			CodePrefix:    "PH",
			DefaultReward: domain.RewardFreeSoftDrink,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		mock.ExpectExec(`INSERT INTO courses`).
			WithArgs(course.ID, course.Name, course.CodePrefix, course.DefaultReward, now, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.CreateCourse(context.Background(), course))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps a duplicate id to a conflict", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewCourseRepository(db)

		mock.ExpectExec(`INSERT INTO courses`).
			WillReturnError(newUniqueViolation("courses_pkey"))

		err := repo.CreateCourse(context.Background(), &domain.Course{ID: "pinehurst"})
		assert.True(t, domain.IsConflict(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCourseRepository_ListCourses(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "name", "code_prefix", "default_reward", "created_at", "updated_at"}).
		AddRow("pinehurst", "Pinehurst Municipal", "PH", "free_soft_drink", now, now).
		AddRow("lakeside", "Lakeside Links", "LL", "free_beer", now, now)
	mock.ExpectQuery(`SELECT id, name, code_prefix, default_reward, created_at, updated_at
		FROM courses
		ORDER BY created_at`).
		WillReturnRows(rows)

	courses, err := repo.ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "lakeside", courses[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
