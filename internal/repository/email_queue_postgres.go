package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/google/uuid"
)

const emailQueueColumns = `id, course_id, customer_id, recipient, template, subject,
	html_body, text_body, status, scheduled_at, sent_at, error, created_at, updated_at`

type emailQueueRepository struct {
	db *sql.DB
}

// NewEmailQueueRepository creates a new PostgreSQL email queue repository
func NewEmailQueueRepository(db *sql.DB) domain.EmailQueueRepository {
	return &emailQueueRepository{db: db}
}

func (r *emailQueueRepository) Enqueue(ctx context.Context, entries []*domain.EmailQueueEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.EnqueueTx(ctx, tx, entries); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *emailQueueRepository) EnqueueTx(ctx context.Context, tx *sql.Tx, entries []*domain.EmailQueueEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO email_queue (
			id, course_id, customer_id, recipient, template, subject,
			html_body, text_body, status, scheduled_at, sent_at, error,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	now := time.Now().UTC()
	for _, entry := range entries {
		if entry.ID == "" {
			entry.ID = uuid.New().String()
		}
		if entry.Status == "" {
			entry.Status = domain.EmailQueueStatusPending
		}
		if entry.ScheduledAt.IsZero() {
			entry.ScheduledAt = now
		}
		entry.CreatedAt = now
		entry.UpdatedAt = now

		_, err := tx.ExecContext(ctx, query,
			entry.ID, entry.CourseID, entry.CustomerID, entry.Recipient,
			entry.Template, entry.Subject, entry.HTMLBody, entry.TextBody,
			entry.Status, entry.ScheduledAt, entry.SentAt, entry.Error,
			entry.CreatedAt, entry.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to enqueue email: %w", err)
		}
	}
	return nil
}

// FetchDue claims due pending entries by moving them to the processing
// state in one statement. SKIP LOCKED keeps concurrent workers off rows a
// claim is already touching, and the status transition makes the claim
// outlive the statement, so two workers never deliver the same message.
func (r *emailQueueRepository) FetchDue(ctx context.Context, limit int) ([]*domain.EmailQueueEntry, error) {
	query := fmt.Sprintf(`
		UPDATE email_queue
		SET status = 'processing', updated_at = $1
		WHERE id IN (
			SELECT id
			FROM email_queue
			WHERE status = 'pending' AND scheduled_at <= $1
			ORDER BY scheduled_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING %s
	`, emailQueueColumns)

	rows, err := r.db.QueryContext(ctx, query, time.Now().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due emails: %w", err)
	}
	defer rows.Close()

	var entries []*domain.EmailQueueEntry
	for rows.Next() {
		entry, err := domain.ScanEmailQueueEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating queue rows: %w", err)
	}

	return entries, nil
}

func (r *emailQueueRepository) MarkSent(ctx context.Context, id string) error {
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE email_queue
		SET status = 'sent', sent_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'processing'
	`, id, now)
	if err != nil {
		return fmt.Errorf("failed to mark email sent: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return &domain.ErrNotFound{Entity: "email_queue_entry", ID: id}
	}
	return nil
}

func (r *emailQueueRepository) MarkFailed(ctx context.Context, id string, errorMsg string) error {
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE email_queue
		SET status = 'failed', error = $2, updated_at = $3
		WHERE id = $1 AND status = 'processing'
	`, id, errorMsg, now)
	if err != nil {
		return fmt.Errorf("failed to mark email failed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return &domain.ErrNotFound{Entity: "email_queue_entry", ID: id}
	}
	return nil
}

func (r *emailQueueRepository) CancelPendingForCustomer(ctx context.Context, courseID string, customerID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE email_queue
		SET status = 'cancelled', updated_at = $3
		WHERE course_id = $1 AND customer_id = $2 AND status = 'pending'
	`, courseID, customerID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to cancel pending emails: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected, nil
}
