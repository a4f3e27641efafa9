package domain

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PipelineStatus tracks a prospect through the membership sales workflow
type PipelineStatus string

const (
	PipelineStatusNew           PipelineStatus = "new"
	PipelineStatusContacted     PipelineStatus = "contacted"
	PipelineStatusTourScheduled PipelineStatus = "tour_scheduled"
	PipelineStatusJoined        PipelineStatus = "joined"
	PipelineStatusPassed        PipelineStatus = "passed"
)

// Validate checks if the pipeline status is valid
func (s PipelineStatus) Validate() error {
	switch s {
	case PipelineStatusNew, PipelineStatusContacted, PipelineStatusTourScheduled,
		PipelineStatusJoined, PipelineStatusPassed:
		return nil
	}
	return NewValidationError(fmt.Sprintf("invalid pipeline status: %s", s))
}

// IsClosed reports whether the status ends the workflow
func (s PipelineStatus) IsClosed() bool {
	return s == PipelineStatusJoined || s == PipelineStatusPassed
}

// PipelineEntry is one prospect in the sales workflow. At most one open
// entry exists per customer, enforced by a partial unique index.
type PipelineEntry struct {
	ID             string          `json:"id"`
	CourseID       string          `json:"course_id"`
	CustomerID     string          `json:"customer_id"`
	Status         PipelineStatus  `json:"status"`
	Notes          *NullableString `json:"notes,omitempty"`
	Assignee       *NullableString `json:"assignee,omitempty"`
	LastActivityAt time.Time       `json:"last_activity_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// For database scanning
type dbPipelineEntry struct {
	ID             string
	CourseID       string
	CustomerID     string
	Status         string
	Notes          sql.NullString
	Assignee       sql.NullString
	LastActivityAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ScanPipelineEntry scans a pipeline entry from the database
func ScanPipelineEntry(scanner interface {
	Scan(dest ...interface{}) error
}) (*PipelineEntry, error) {
	var dbe dbPipelineEntry
	if err := scanner.Scan(
		&dbe.ID,
		&dbe.CourseID,
		&dbe.CustomerID,
		&dbe.Status,
		&dbe.Notes,
		&dbe.Assignee,
		&dbe.LastActivityAt,
		&dbe.CreatedAt,
		&dbe.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &PipelineEntry{
		ID:             dbe.ID,
		CourseID:       dbe.CourseID,
		CustomerID:     dbe.CustomerID,
		Status:         PipelineStatus(dbe.Status),
		Notes:          &NullableString{String: dbe.Notes.String, IsNull: !dbe.Notes.Valid},
		Assignee:       &NullableString{String: dbe.Assignee.String, IsNull: !dbe.Assignee.Valid},
		LastActivityAt: dbe.LastActivityAt,
		CreatedAt:      dbe.CreatedAt,
		UpdatedAt:      dbe.UpdatedAt,
	}, nil
}

// UpdatePipelineStatusRequest moves an entry through the workflow
type UpdatePipelineStatusRequest struct {
	CourseID string `json:"course_id"`
	EntryID  string `json:"entry_id"`
	Status   string `json:"status"`
	Notes    string `json:"notes,omitempty"`
	Assignee string `json:"assignee,omitempty"`
}

// Validate ensures that the request has all required fields
func (r *UpdatePipelineStatusRequest) Validate() error {
	if r.CourseID == "" {
		return NewValidationError("course_id is required")
	}
	if r.EntryID == "" {
		return NewValidationError("entry_id is required")
	}
	return PipelineStatus(r.Status).Validate()
}

// PipelineRepository defines data access for pipeline entries
type PipelineRepository interface {
	// EnsureOpenEntryTx creates a pipeline entry for the customer unless an
	// open one already exists. Returns true when a new entry was created.
	// Runs inside the capture-commit transaction.
	EnsureOpenEntryTx(ctx context.Context, tx *sql.Tx, entry *PipelineEntry) (bool, error)

	// CreateEntry creates an entry manually (staff action), idempotent on
	// the open-entry constraint
	CreateEntry(ctx context.Context, entry *PipelineEntry) (bool, error)

	// GetEntry retrieves one entry, scoped to a course
	GetEntry(ctx context.Context, courseID string, id string) (*PipelineEntry, error)

	// UpdateStatus moves an entry to a new status, refreshing notes,
	// assignee and the last-activity timestamp
	UpdateStatus(ctx context.Context, req *UpdatePipelineStatusRequest) error

	// ListEntries returns entries of a course, optionally filtered by status
	ListEntries(ctx context.Context, courseID string, status PipelineStatus) ([]*PipelineEntry, error)
}

// ProspectService exposes prospect browsing and pipeline management
type ProspectService interface {
	// ListProspects returns customers at or above minScore; minScore <= 0
	// falls back to the default browse cutoff
	ListProspects(ctx context.Context, courseID string, minScore int, requireLocal bool) ([]*Customer, error)

	// UpdatePipelineStatus moves an entry and returns its refreshed state
	UpdatePipelineStatus(ctx context.Context, req *UpdatePipelineStatusRequest) (*PipelineEntry, error)

	// ListPipeline returns pipeline entries, optionally filtered by status
	ListPipeline(ctx context.Context, courseID string, status string) ([]*PipelineEntry, error)
}
