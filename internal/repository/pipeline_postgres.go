package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/google/uuid"
)

const pipelineColumns = `id, course_id, customer_id, status, notes, assignee,
	last_activity_at, created_at, updated_at`

type pipelineRepository struct {
	db *sql.DB
}

// NewPipelineRepository creates a new PostgreSQL pipeline repository
func NewPipelineRepository(db *sql.DB) domain.PipelineRepository {
	return &pipelineRepository{db: db}
}

// EnsureOpenEntryTx inserts an entry unless the partial unique index on open
// entries already holds one for this customer. ON CONFLICT DO NOTHING keeps
// the capture-commit transaction alive either way.
func (r *pipelineRepository) EnsureOpenEntryTx(ctx context.Context, tx *sql.Tx, entry *domain.PipelineEntry) (bool, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Status == "" {
		entry.Status = domain.PipelineStatusNew
	}
	now := time.Now().UTC()
	entry.LastActivityAt = now
	entry.CreatedAt = now
	entry.UpdatedAt = now

	query := `
		INSERT INTO pipeline_entries (
			id, course_id, customer_id, status, notes, assignee,
			last_activity_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (course_id, customer_id) WHERE status NOT IN ('joined', 'passed')
		DO NOTHING
	`

	result, err := tx.ExecContext(ctx, query,
		entry.ID, entry.CourseID, entry.CustomerID, entry.Status,
		entry.Notes, entry.Assignee,
		entry.LastActivityAt, entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to ensure pipeline entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected > 0, nil
}

func (r *pipelineRepository) CreateEntry(ctx context.Context, entry *domain.PipelineEntry) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	created, err := r.EnsureOpenEntryTx(ctx, tx, entry)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return created, nil
}

func (r *pipelineRepository) GetEntry(ctx context.Context, courseID string, id string) (*domain.PipelineEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM pipeline_entries
		WHERE course_id = $1 AND id = $2
	`, pipelineColumns)

	row := r.db.QueryRowContext(ctx, query, courseID, id)
	entry, err := domain.ScanPipelineEntry(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "pipeline_entry", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline entry: %w", err)
	}

	return entry, nil
}

func (r *pipelineRepository) UpdateStatus(ctx context.Context, req *domain.UpdatePipelineStatusRequest) error {
	now := time.Now().UTC()

	query := `
		UPDATE pipeline_entries
		SET status = $3,
			notes = COALESCE(NULLIF($4, ''), notes),
			assignee = COALESCE(NULLIF($5, ''), assignee),
			last_activity_at = $6,
			updated_at = $6
		WHERE course_id = $1 AND id = $2
	`

	result, err := r.db.ExecContext(ctx, query,
		req.CourseID, req.EntryID, req.Status, req.Notes, req.Assignee, now,
	)
	if err != nil {
		return fmt.Errorf("failed to update pipeline status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return &domain.ErrNotFound{Entity: "pipeline_entry", ID: req.EntryID}
	}
	return nil
}

func (r *pipelineRepository) ListEntries(ctx context.Context, courseID string, status domain.PipelineStatus) ([]*domain.PipelineEntry, error) {
	var query string
	var args []interface{}

	if status != "" {
		query = fmt.Sprintf(`
			SELECT %s
			FROM pipeline_entries
			WHERE course_id = $1 AND status = $2
			ORDER BY last_activity_at DESC
		`, pipelineColumns)
		args = []interface{}{courseID, status}
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM pipeline_entries
			WHERE course_id = $1
			ORDER BY last_activity_at DESC
		`, pipelineColumns)
		args = []interface{}{courseID}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipeline entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.PipelineEntry
	for rows.Next() {
		entry, err := domain.ScanPipelineEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pipeline entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pipeline rows: %w", err)
	}

	return entries, nil
}
