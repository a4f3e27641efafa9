package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fairwayhq/fairway/internal/domain"
)

type analyticsRepository struct {
	db *sql.DB
}

// NewAnalyticsRepository creates a new PostgreSQL analytics repository
func NewAnalyticsRepository(db *sql.DB) domain.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) ComputeSnapshot(ctx context.Context, courseID string) (*domain.AnalyticsSnapshot, error) {
	snapshot := &domain.AnalyticsSnapshot{
		ByBookingSource: map[string]int64{},
		ByRewardType:    map[string]int64{},
	}

	customerQuery := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at >= date_trunc('month', now())),
			COUNT(*) FILTER (WHERE is_membership_prospect)
		FROM customers
		WHERE course_id = $1
	`
	err := r.db.QueryRowContext(ctx, customerQuery, courseID).Scan(
		&snapshot.TotalCustomers, &snapshot.NewThisMonth, &snapshot.Prospects,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute customer counts: %w", err)
	}

	captureQuery := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE redeemed)
		FROM captures
		WHERE course_id = $1
	`
	err = r.db.QueryRowContext(ctx, captureQuery, courseID).Scan(
		&snapshot.TotalCaptures, &snapshot.RedeemedCaptures,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute capture counts: %w", err)
	}
	if snapshot.TotalCaptures > 0 {
		snapshot.RedemptionRate = float64(snapshot.RedeemedCaptures) / float64(snapshot.TotalCaptures)
	}

	bySourceQuery := `
		SELECT booking_source, COUNT(*)
		FROM customers
		WHERE course_id = $1 AND booking_source IS NOT NULL
		GROUP BY booking_source
	`
	if err := r.scanCountMap(ctx, bySourceQuery, courseID, snapshot.ByBookingSource); err != nil {
		return nil, fmt.Errorf("failed to compute booking source counts: %w", err)
	}

	byRewardQuery := `
		SELECT reward_type, COUNT(*)
		FROM captures
		WHERE course_id = $1
		GROUP BY reward_type
	`
	if err := r.scanCountMap(ctx, byRewardQuery, courseID, snapshot.ByRewardType); err != nil {
		return nil, fmt.Errorf("failed to compute reward type counts: %w", err)
	}

	pipelineQuery := `
		SELECT COUNT(*)
		FROM pipeline_entries
		WHERE course_id = $1 AND status NOT IN ('joined', 'passed')
	`
	err = r.db.QueryRowContext(ctx, pipelineQuery, courseID).Scan(&snapshot.OpenPipelineCount)
	if err != nil {
		return nil, fmt.Errorf("failed to compute open pipeline count: %w", err)
	}

	return snapshot, nil
}

func (r *analyticsRepository) scanCountMap(ctx context.Context, query string, courseID string, dest map[string]int64) error {
	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		dest[key] = count
	}
	return rows.Err()
}
