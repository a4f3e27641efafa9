package domain

import (
	"context"
	"encoding/json"
	"time"
)

// SegmentFilters is a saved, reusable filter over the customer table.
// Nil pointer fields are "don't care".
type SegmentFilters struct {
	IsLocal       *bool  `json:"is_local,omitempty"`
	MinScore      *int   `json:"min_score,omitempty"`
	MinVisits     *int   `json:"min_visits,omitempty"`
	BookingSource string `json:"booking_source,omitempty"`
	PlayFrequency string `json:"play_frequency,omitempty"`
	ProspectsOnly bool   `json:"prospects_only,omitempty"`
}

// Validate checks the enum-valued filters
func (f *SegmentFilters) Validate() error {
	if f.BookingSource != "" {
		if err := BookingSource(f.BookingSource).Validate(); err != nil {
			return err
		}
	}
	if f.PlayFrequency != "" {
		if err := PlayFrequency(f.PlayFrequency).Validate(); err != nil {
			return err
		}
	}
	if f.MinScore != nil && (*f.MinScore < 0 || *f.MinScore > MaxMembershipScore) {
		return NewValidationError("min_score must be between 0 and 100")
	}
	return nil
}

// Segment is a named filter used for targeted bulk email
type Segment struct {
	ID        string         `json:"id"`
	CourseID  string         `json:"course_id"`
	Name      string         `json:"name"`
	Filters   SegmentFilters `json:"filters"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Validate ensures that the segment has all required fields
func (s *Segment) Validate() error {
	if s.CourseID == "" {
		return NewValidationError("course_id is required")
	}
	if s.Name == "" {
		return NewValidationError("segment name is required")
	}
	return s.Filters.Validate()
}

// ScanSegment scans a segment from the database; filters are stored as JSONB
func ScanSegment(scanner interface {
	Scan(dest ...interface{}) error
}) (*Segment, error) {
	var s Segment
	var filtersJSON []byte
	if err := scanner.Scan(
		&s.ID,
		&s.CourseID,
		&s.Name,
		&filtersJSON,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(filtersJSON) > 0 {
		if err := json.Unmarshal(filtersJSON, &s.Filters); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// BlastSegmentRequest asks to queue a one-off email to every current member
// of a segment. Subject and body are liquid templates with per-customer
// bindings.
type BlastSegmentRequest struct {
	CourseID  string `json:"course_id"`
	SegmentID string `json:"segment_id"`
	Subject   string `json:"subject"`
	HTMLBody  string `json:"html_body"`
}

// Validate ensures that the blast request has all required fields
func (r *BlastSegmentRequest) Validate() error {
	if r.CourseID == "" {
		return NewValidationError("course_id is required")
	}
	if r.SegmentID == "" {
		return NewValidationError("segment_id is required")
	}
	if r.Subject == "" {
		return NewValidationError("subject is required")
	}
	if r.HTMLBody == "" {
		return NewValidationError("html_body is required")
	}
	return nil
}

// SegmentRepository defines data access for segments
type SegmentRepository interface {
	// CreateSegment persists a new segment
	CreateSegment(ctx context.Context, segment *Segment) error

	// GetSegment retrieves a segment by ID, scoped to a course
	GetSegment(ctx context.Context, courseID string, id string) (*Segment, error)

	// ListSegments returns all segments of a course
	ListSegments(ctx context.Context, courseID string) ([]*Segment, error)

	// DeleteSegment removes a segment
	DeleteSegment(ctx context.Context, courseID string, id string) error

	// CountMembers returns how many customers currently match the filters
	CountMembers(ctx context.Context, segment *Segment) (int, error)

	// ListMembers returns the customers currently matching the filters,
	// excluding anyone who opted out of email
	ListMembers(ctx context.Context, segment *Segment) ([]*Customer, error)
}

// SegmentService manages saved segments and segment email blasts
type SegmentService interface {
	CreateSegment(ctx context.Context, segment *Segment) error
	GetSegment(ctx context.Context, courseID string, id string) (*Segment, error)
	ListSegments(ctx context.Context, courseID string) ([]*Segment, error)
	DeleteSegment(ctx context.Context, courseID string, id string) error

	// PreviewSegment returns how many customers currently match the filters
	PreviewSegment(ctx context.Context, courseID string, id string) (int, error)

	// BlastSegment queues the rendered message for every member with an
	// email address and returns how many were queued
	BlastSegment(ctx context.Context, req *BlastSegmentRequest) (int, error)
}
