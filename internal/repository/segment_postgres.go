package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/google/uuid"
)

type segmentRepository struct {
	db *sql.DB
}

// NewSegmentRepository creates a new PostgreSQL segment repository
func NewSegmentRepository(db *sql.DB) domain.SegmentRepository {
	return &segmentRepository{db: db}
}

func (r *segmentRepository) CreateSegment(ctx context.Context, segment *domain.Segment) error {
	if segment.ID == "" {
		segment.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	segment.CreatedAt = now
	segment.UpdatedAt = now

	filtersJSON, err := json.Marshal(segment.Filters)
	if err != nil {
		return fmt.Errorf("failed to marshal segment filters: %w", err)
	}

	query := `
		INSERT INTO segments (id, course_id, name, filters, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.ExecContext(ctx, query,
		segment.ID, segment.CourseID, segment.Name, filtersJSON,
		segment.CreatedAt, segment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create segment: %w", err)
	}
	return nil
}

func (r *segmentRepository) GetSegment(ctx context.Context, courseID string, id string) (*domain.Segment, error) {
	query := `
		SELECT id, course_id, name, filters, created_at, updated_at
		FROM segments
		WHERE course_id = $1 AND id = $2
	`

	row := r.db.QueryRowContext(ctx, query, courseID, id)
	segment, err := domain.ScanSegment(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "segment", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get segment: %w", err)
	}

	return segment, nil
}

func (r *segmentRepository) ListSegments(ctx context.Context, courseID string) ([]*domain.Segment, error) {
	query := `
		SELECT id, course_id, name, filters, created_at, updated_at
		FROM segments
		WHERE course_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list segments: %w", err)
	}
	defer rows.Close()

	var segments []*domain.Segment
	for rows.Next() {
		segment, err := domain.ScanSegment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		segments = append(segments, segment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating segment rows: %w", err)
	}

	return segments, nil
}

func (r *segmentRepository) DeleteSegment(ctx context.Context, courseID string, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM segments WHERE course_id = $1 AND id = $2`, courseID, id)
	if err != nil {
		return fmt.Errorf("failed to delete segment: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return &domain.ErrNotFound{Entity: "segment", ID: id}
	}
	return nil
}

// buildFilterWhere translates segment filters to a customers WHERE clause
func buildFilterWhere(segment *domain.Segment) sq.And {
	f := segment.Filters
	where := sq.And{sq.Eq{"course_id": segment.CourseID}}

	if f.IsLocal != nil {
		where = append(where, sq.Eq{"is_local": *f.IsLocal})
	}
	if f.MinScore != nil {
		where = append(where, sq.GtOrEq{"membership_score": *f.MinScore})
	}
	if f.MinVisits != nil {
		where = append(where, sq.GtOrEq{"visit_count": *f.MinVisits})
	}
	if f.BookingSource != "" {
		where = append(where, sq.Eq{"booking_source": f.BookingSource})
	}
	if f.PlayFrequency != "" {
		where = append(where, sq.Eq{"play_frequency": f.PlayFrequency})
	}
	if f.ProspectsOnly {
		where = append(where, sq.Eq{"is_membership_prospect": true})
	}
	return where
}

func (r *segmentRepository) CountMembers(ctx context.Context, segment *domain.Segment) (int, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	query, args, err := psql.Select("COUNT(*)").
		From("customers").
		Where(buildFilterWhere(segment)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count segment members: %w", err)
	}
	return count, nil
}

func (r *segmentRepository) ListMembers(ctx context.Context, segment *domain.Segment) ([]*domain.Customer, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	// Opted-out customers never receive segment email
	where := append(buildFilterWhere(segment), sq.Eq{"opted_out_of_email": false})

	query, args, err := psql.Select(domain.CustomerColumns()).
		From("customers").
		Where(where).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build members query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list segment members: %w", err)
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		customer, err := domain.ScanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}

	return customers, nil
}
