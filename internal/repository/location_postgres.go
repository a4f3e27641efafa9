package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/google/uuid"
)

type locationRepository struct {
	db *sql.DB
}

// NewLocationRepository creates a new PostgreSQL location repository
func NewLocationRepository(db *sql.DB) domain.LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) GetLocation(ctx context.Context, courseID string, id string) (*domain.Location, error) {
	query := `
		SELECT id, course_id, name, default_reward, created_at, updated_at
		FROM locations
		WHERE course_id = $1 AND id = $2
	`

	row := r.db.QueryRowContext(ctx, query, courseID, id)
	location, err := domain.ScanLocation(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "location", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	return location, nil
}

func (r *locationRepository) CreateLocation(ctx context.Context, location *domain.Location) error {
	if location.ID == "" {
		location.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	location.CreatedAt = now
	location.UpdatedAt = now

	query := `
		INSERT INTO locations (id, course_id, name, default_reward, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		location.ID, location.CourseID, location.Name, location.DefaultReward,
		location.CreatedAt, location.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}
	return nil
}

func (r *locationRepository) ListLocations(ctx context.Context, courseID string) ([]*domain.Location, error) {
	query := `
		SELECT id, course_id, name, default_reward, created_at, updated_at
		FROM locations
		WHERE course_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	var locations []*domain.Location
	for rows.Next() {
		location, err := domain.ScanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, location)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating location rows: %w", err)
	}

	return locations, nil
}

func (r *locationRepository) GetActiveABTest(ctx context.Context, courseID string, locationID string) (*domain.ABTest, error) {
	query := `
		SELECT id, course_id, location_id, name, variant_a_reward, variant_b_reward, active, created_at, updated_at
		FROM ab_tests
		WHERE course_id = $1 AND location_id = $2 AND active = TRUE
		LIMIT 1
	`

	var t domain.ABTest
	err := r.db.QueryRowContext(ctx, query, courseID, locationID).Scan(
		&t.ID, &t.CourseID, &t.LocationID, &t.Name,
		&t.VariantAReward, &t.VariantBReward, &t.Active,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "ab_test", ID: locationID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active ab test: %w", err)
	}

	return &t, nil
}

func (r *locationRepository) CreateABTest(ctx context.Context, test *domain.ABTest) error {
	if test.ID == "" {
		test.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	test.CreatedAt = now
	test.UpdatedAt = now

	query := `
		INSERT INTO ab_tests (id, course_id, location_id, name, variant_a_reward, variant_b_reward, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		test.ID, test.CourseID, test.LocationID, test.Name,
		test.VariantAReward, test.VariantBReward, test.Active,
		test.CreatedAt, test.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ab test: %w", err)
	}
	return nil
}
