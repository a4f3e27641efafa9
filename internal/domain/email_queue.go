package domain

import (
	"context"
	"database/sql"
	"time"
)

// EmailQueueStatus represents the status of a queued email
type EmailQueueStatus string

const (
	EmailQueueStatusPending    EmailQueueStatus = "pending"
	EmailQueueStatusProcessing EmailQueueStatus = "processing"
	EmailQueueStatusSent       EmailQueueStatus = "sent"
	EmailQueueStatusFailed     EmailQueueStatus = "failed"
	EmailQueueStatusCancelled  EmailQueueStatus = "cancelled"
)

// EmailTemplate identifies one of the follow-up templates
type EmailTemplate string

const (
	EmailTemplateWelcome    EmailTemplate = "welcome"
	EmailTemplateMilestone3 EmailTemplate = "milestone_3"
	EmailTemplateMilestone5 EmailTemplate = "milestone_5"
	EmailTemplateSegment    EmailTemplate = "segment_blast"
)

// EmailQueueEntry is one scheduled outbound message. The delivery worker
// claims pending entries as processing, then marks them sent or failed;
// opt-outs cancel entries still pending.
type EmailQueueEntry struct {
	ID         string          `json:"id"`
	CourseID   string          `json:"course_id"`
	CustomerID string          `json:"customer_id"`
	Recipient  string          `json:"recipient"`
	Template   EmailTemplate   `json:"template"`
	Subject    string          `json:"subject"`
	HTMLBody   string          `json:"html_body"`
	TextBody   *NullableString `json:"text_body,omitempty"`

	Status      EmailQueueStatus `json:"status"`
	ScheduledAt time.Time        `json:"scheduled_at"`
	SentAt      *NullableTime    `json:"sent_at,omitempty"`
	Error       *NullableString  `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// For database scanning
type dbEmailQueueEntry struct {
	ID          string
	CourseID    string
	CustomerID  string
	Recipient   string
	Template    string
	Subject     string
	HTMLBody    string
	TextBody    sql.NullString
	Status      string
	ScheduledAt time.Time
	SentAt      sql.NullTime
	Error       sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ScanEmailQueueEntry scans a queue entry from the database
func ScanEmailQueueEntry(scanner interface {
	Scan(dest ...interface{}) error
}) (*EmailQueueEntry, error) {
	var dbe dbEmailQueueEntry
	if err := scanner.Scan(
		&dbe.ID,
		&dbe.CourseID,
		&dbe.CustomerID,
		&dbe.Recipient,
		&dbe.Template,
		&dbe.Subject,
		&dbe.HTMLBody,
		&dbe.TextBody,
		&dbe.Status,
		&dbe.ScheduledAt,
		&dbe.SentAt,
		&dbe.Error,
		&dbe.CreatedAt,
		&dbe.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &EmailQueueEntry{
		ID:          dbe.ID,
		CourseID:    dbe.CourseID,
		CustomerID:  dbe.CustomerID,
		Recipient:   dbe.Recipient,
		Template:    EmailTemplate(dbe.Template),
		Subject:     dbe.Subject,
		HTMLBody:    dbe.HTMLBody,
		TextBody:    &NullableString{String: dbe.TextBody.String, IsNull: !dbe.TextBody.Valid},
		Status:      EmailQueueStatus(dbe.Status),
		ScheduledAt: dbe.ScheduledAt,
		SentAt:      &NullableTime{Time: dbe.SentAt.Time, IsNull: !dbe.SentAt.Valid},
		Error:       &NullableString{String: dbe.Error.String, IsNull: !dbe.Error.Valid},
		CreatedAt:   dbe.CreatedAt,
		UpdatedAt:   dbe.UpdatedAt,
	}, nil
}

// EmailQueueRepository defines data access for the email queue
type EmailQueueRepository interface {
	// Enqueue adds emails to the queue
	Enqueue(ctx context.Context, entries []*EmailQueueEntry) error

	// EnqueueTx adds emails to the queue within an existing transaction
	EnqueueTx(ctx context.Context, tx *sql.Tx, entries []*EmailQueueEntry) error

	// FetchDue claims a bounded batch of due, pending entries for delivery.
	// Uses FOR UPDATE SKIP LOCKED so a second worker never double-claims.
	FetchDue(ctx context.Context, limit int) ([]*EmailQueueEntry, error)

	// MarkSent marks an entry as successfully delivered
	MarkSent(ctx context.Context, id string) error

	// MarkFailed marks an entry as failed with the delivery error text.
	// Failures are operator-visible; there is no automatic retry.
	MarkFailed(ctx context.Context, id string, errorMsg string) error

	// CancelPendingForCustomer cancels all pending messages to a customer,
	// called when they opt out of email
	CancelPendingForCustomer(ctx context.Context, courseID string, customerID string) (int64, error)
}
