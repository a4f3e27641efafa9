package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/google/uuid"
)

const captureColumns = `id, course_id, customer_id, location_id, ab_test_id, ab_variant,
	reward_code, reward_type, reward_description, payload, origin_ip, user_agent,
	redeemed, redeemed_at, redeemed_by, created_at`

type captureRepository struct {
	db *sql.DB
}

// NewCaptureRepository creates a new PostgreSQL capture repository
func NewCaptureRepository(db *sql.DB) domain.CaptureRepository {
	return &captureRepository{db: db}
}

func (r *captureRepository) InsertCaptureTx(ctx context.Context, tx *sql.Tx, capture *domain.Capture) error {
	if capture.ID == "" {
		capture.ID = uuid.New().String()
	}
	capture.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO captures (
			id, course_id, customer_id, location_id, ab_test_id, ab_variant,
			reward_code, reward_type, reward_description, payload, origin_ip, user_agent,
			redeemed, redeemed_at, redeemed_by, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
	`

	_, err := tx.ExecContext(ctx, query,
		capture.ID, capture.CourseID, capture.CustomerID,
		capture.LocationID, capture.ABTestID, capture.ABVariant,
		capture.RewardCode, capture.RewardType, capture.RewardDescription,
		capture.Payload, capture.OriginIP, capture.UserAgent,
		capture.Redeemed, capture.RedeemedAt, capture.RedeemedBy,
		capture.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "idx_captures_reward_code") {
			return &domain.ErrRewardCodeTaken{Code: capture.RewardCode}
		}
		return fmt.Errorf("failed to insert capture: %w", err)
	}
	return nil
}

func (r *captureRepository) GetCaptureByCode(ctx context.Context, code string) (*domain.Capture, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM captures
		WHERE reward_code = $1
	`, captureColumns)

	row := r.db.QueryRowContext(ctx, query, code)
	capture, err := domain.ScanCapture(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "capture", ID: code}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get capture: %w", err)
	}

	return capture, nil
}

// RedeemByCode flips the redeemed flag with a conditional update, so two
// concurrent redemption attempts cannot both win. The loser sees zero rows
// affected and must distinguish "already redeemed" from "no such code".
func (r *captureRepository) RedeemByCode(ctx context.Context, code string, redeemedBy string) (bool, error) {
	query := `
		UPDATE captures
		SET redeemed = TRUE, redeemed_at = $2, redeemed_by = $3
		WHERE reward_code = $1 AND redeemed = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, code, time.Now().UTC(), redeemedBy)
	if err != nil {
		return false, fmt.Errorf("failed to redeem capture: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected > 0 {
		return true, nil
	}

	var exists bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM captures WHERE reward_code = $1)`, code,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check capture existence: %w", err)
	}
	if !exists {
		return false, &domain.ErrNotFound{Entity: "capture", ID: code}
	}

	// Code exists but was already redeemed
	return false, nil
}

func (r *captureRepository) ListCaptures(ctx context.Context, courseID string, limit int) ([]*domain.Capture, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM captures
		WHERE course_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, captureColumns)

	rows, err := r.db.QueryContext(ctx, query, courseID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list captures: %w", err)
	}
	defer rows.Close()

	var captures []*domain.Capture
	for rows.Next() {
		capture, err := domain.ScanCapture(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan capture: %w", err)
		}
		captures = append(captures, capture)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating capture rows: %w", err)
	}

	return captures, nil
}
