package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fairwayhq/fairway/internal/domain"
)

type courseRepository struct {
	db *sql.DB
}

// NewCourseRepository creates a new PostgreSQL course repository
func NewCourseRepository(db *sql.DB) domain.CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	query := `
		SELECT id, name, code_prefix, default_reward, created_at, updated_at
		FROM courses
		WHERE id = $1
	`

	var c domain.Course
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.CodePrefix, &c.DefaultReward, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "course", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return &c, nil
}

func (r *courseRepository) CreateCourse(ctx context.Context, course *domain.Course) error {
	query := `
		INSERT INTO courses (id, name, code_prefix, default_reward, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		course.ID, course.Name, course.CodePrefix, course.DefaultReward,
		course.CreatedAt, course.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return domain.NewConflictError(fmt.Sprintf("course already exists: %s", course.ID))
		}
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (r *courseRepository) ListCourses(ctx context.Context) ([]*domain.Course, error) {
	query := `
		SELECT id, name, code_prefix, default_reward, created_at, updated_at
		FROM courses
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	var courses []*domain.Course
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(&c.ID, &c.Name, &c.CodePrefix, &c.DefaultReward, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}

	return courses, nil
}
