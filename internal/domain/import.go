package domain

import (
	"context"
	"strings"
	"time"
)

// ImportSource identifies the external system a CSV came from
type ImportSource string

const (
	ImportSourceGolfNow       ImportSource = "golfnow"
	ImportSourceClubessential ImportSource = "clubessential"
	ImportSourceGeneric       ImportSource = "generic"
)

// Validate checks if the import source is valid
func (s ImportSource) Validate() error {
	switch s {
	case ImportSourceGolfNow, ImportSourceClubessential, ImportSourceGeneric:
		return nil
	}
	return NewValidationError("invalid import source: " + string(s))
}

// CustomerSource returns the provenance label stamped on customers created
// by this import source
func (s ImportSource) CustomerSource() CustomerSource {
	switch s {
	case ImportSourceGolfNow:
		return CustomerSourceGolfNowImport
	case ImportSourceClubessential:
		return CustomerSourceClubessentialImport
	default:
		return CustomerSourceManual
	}
}

// Canonical logical field names used by the import mapper
const (
	FieldEmail           = "email"
	FieldPhone           = "phone"
	FieldFirstName       = "first_name"
	FieldLastName        = "last_name"
	FieldZip             = "zip"
	FieldSourceID        = "source_id"
	FieldBookingSource   = "booking_source"
	FieldIsLocal         = "is_local"
	FieldPlayFrequency   = "play_frequency"
	FieldMemberElsewhere = "member_elsewhere"
)

// importFieldAliases maps each logical field to the acceptable column
// headers per source, in priority order. A declarative table instead of a
// chain of conditionals keeps new sources cheap to add.
var importFieldAliases = map[ImportSource]map[string][]string{
	ImportSourceGolfNow: {
		FieldEmail:     {"Email Address", "email"},
		FieldPhone:     {"Phone Number", "phone"},
		FieldFirstName: {"First Name", "first_name"},
		FieldLastName:  {"Last Name", "last_name"},
		FieldZip:       {"Zip Code", "zip"},
		FieldSourceID:  {"GolfNow ID", "Customer ID"},
	},
	ImportSourceClubessential: {
		FieldEmail:     {"PrimaryEmail", "Email"},
		FieldPhone:     {"CellPhone", "HomePhone", "Phone"},
		FieldFirstName: {"FirstName"},
		FieldLastName:  {"LastName"},
		FieldZip:       {"PostalCode", "Zip"},
		FieldSourceID:  {"MemberNumber", "MemberId"},
	},
	// The generic table also recognizes the profile columns our own CSV
	// export writes, so an export re-imports without losing scorer signals.
	ImportSourceGeneric: {
		FieldEmail:           {"email", "Email", "Email Address"},
		FieldPhone:           {"phone", "Phone", "Phone Number"},
		FieldFirstName:       {"first_name", "firstName", "First Name"},
		FieldLastName:        {"last_name", "lastName", "Last Name"},
		FieldZip:             {"zip", "Zip", "Zip Code", "postal_code"},
		FieldSourceID:        {"id", "external_id"},
		FieldBookingSource:   {"booking_source", "Booking Source"},
		FieldIsLocal:         {"is_local", "Is Local"},
		FieldPlayFrequency:   {"play_frequency", "Play Frequency"},
		FieldMemberElsewhere: {"member_elsewhere", "Member Elsewhere"},
	},
}

// MapImportRow resolves a CSV record to canonical fields using the source's
// alias table. Header matching is case-insensitive; for each logical field
// the first alias present in the header wins, even when its cell is empty.
func MapImportRow(source ImportSource, header []string, record []string) map[string]string {
	aliases, ok := importFieldAliases[source]
	if !ok {
		aliases = importFieldAliases[ImportSourceGeneric]
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	fields := make(map[string]string)
	for field, candidates := range aliases {
		for _, candidate := range candidates {
			if i, found := index[strings.ToLower(candidate)]; found {
				if i < len(record) {
					fields[field] = strings.TrimSpace(record[i])
				}
				break
			}
		}
	}
	return fields
}

// ImportBatchStatus tracks the lifecycle of one uploaded CSV
type ImportBatchStatus string

const (
	ImportBatchStatusPending    ImportBatchStatus = "pending"
	ImportBatchStatusProcessing ImportBatchStatus = "processing"
	ImportBatchStatusCompleted  ImportBatchStatus = "completed"
	ImportBatchStatusFailed     ImportBatchStatus = "failed"
)

// ImportBatch is the append-only audit record of one bulk CSV merge
type ImportBatch struct {
	ID          string            `json:"id"`
	CourseID    string            `json:"course_id"`
	Source      ImportSource      `json:"source"`
	Status      ImportBatchStatus `json:"status"`
	TotalRows   int               `json:"total_rows"`
	CreatedRows int               `json:"created_rows"`
	MatchedRows int               `json:"matched_rows"`
	SkippedRows int               `json:"skipped_rows"`
	ErrorRows   int               `json:"error_rows"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *NullableTime     `json:"completed_at,omitempty"`
}

// ImportRowOutcome is the per-row result of an import pass
type ImportRowOutcome string

const (
	ImportRowCreated ImportRowOutcome = "created"
	ImportRowMatched ImportRowOutcome = "matched"
	ImportRowSkipped ImportRowOutcome = "skipped"
	ImportRowError   ImportRowOutcome = "error"
)

// ImportRow is the audit record of a single input row
type ImportRow struct {
	ID         string           `json:"id"`
	BatchID    string           `json:"batch_id"`
	CourseID   string           `json:"course_id"`
	Outcome    ImportRowOutcome `json:"outcome"`
	MatchedBy  MatchKey         `json:"matched_by,omitempty"`
	CustomerID *NullableString  `json:"customer_id,omitempty"`
	Payload    []byte           `json:"payload"`
	Error      *NullableString  `json:"error,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// ImportBatchResult is returned to the caller after the full pass
type ImportBatchResult struct {
	BatchID     string `json:"batch_id"`
	TotalRows   int    `json:"total_rows"`
	CreatedRows int    `json:"created_rows"`
	MatchedRows int    `json:"matched_rows"`
	SkippedRows int    `json:"skipped_rows"`
	ErrorRows   int    `json:"error_rows"`
}

// ImportRepository defines data access for import audit records
type ImportRepository interface {
	// CreateBatch persists a new batch in pending state
	CreateBatch(ctx context.Context, batch *ImportBatch) error

	// MarkProcessing moves a batch to the processing state
	MarkProcessing(ctx context.Context, batchID string) error

	// AppendRow records the outcome of a single input row
	AppendRow(ctx context.Context, row *ImportRow) error

	// FinalizeBatch writes the aggregate counters and final status
	FinalizeBatch(ctx context.Context, batch *ImportBatch) error

	// GetBatch retrieves a batch by ID, scoped to a course
	GetBatch(ctx context.Context, courseID string, id string) (*ImportBatch, error)

	// ListRows returns the audit rows of a batch
	ListRows(ctx context.Context, batchID string) ([]*ImportRow, error)
}

// ImportService runs CSV imports
type ImportService interface {
	// ImportCSV reads a CSV stream and merges each row into the customer
	// table, recording a one-to-one audit row per input row. A bad row never
	// aborts the batch.
	ImportCSV(ctx context.Context, courseID string, source ImportSource, csvData []byte) (*ImportBatchResult, error)

	// GetBatch retrieves an import batch with its counters
	GetBatch(ctx context.Context, courseID string, id string) (*ImportBatch, error)
}
