package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/fairwayhq/fairway/pkg/logger"
)

// ImportService merges bulk CSV exports from booking and membership systems
// into the customer table, one audited row at a time.
type ImportService struct {
	txRunner     domain.TransactionRunner
	customerRepo domain.CustomerRepository
	importRepo   domain.ImportRepository
	logger       logger.Logger
}

func NewImportService(
	txRunner domain.TransactionRunner,
	customerRepo domain.CustomerRepository,
	importRepo domain.ImportRepository,
	logger logger.Logger,
) *ImportService {
	return &ImportService{
		txRunner:     txRunner,
		customerRepo: customerRepo,
		importRepo:   importRepo,
		logger:       logger,
	}
}

// ImportCSV runs the full batch pass. Each data row is mapped, normalized,
// matched and merged independently; a bad row records an error outcome and
// the pass continues. The batch status and counters are finalized at the end.
func (s *ImportService) ImportCSV(ctx context.Context, courseID string, source domain.ImportSource, csvData []byte) (*domain.ImportBatchResult, error) {
	if courseID == "" {
		return nil, domain.NewValidationError("course_id is required")
	}
	if err := source.Validate(); err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(csvData))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("could not read CSV header: %v", err))
	}

	batch := &domain.ImportBatch{
		CourseID: courseID,
		Source:   source,
		Status:   domain.ImportBatchStatusPending,
	}
	if err := s.importRepo.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}
	if err := s.importRepo.MarkProcessing(ctx, batch.ID); err != nil {
		return nil, err
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		batch.TotalRows++

		if err != nil {
			s.recordRow(ctx, batch, record, domain.ImportRowError, "", nil, err.Error())
			batch.ErrorRows++
			continue
		}

		outcome, matchedBy, customerID, rowErr := s.processRow(ctx, courseID, source, header, record)
		switch outcome {
		case domain.ImportRowCreated:
			batch.CreatedRows++
		case domain.ImportRowMatched:
			batch.MatchedRows++
		case domain.ImportRowSkipped:
			batch.SkippedRows++
		case domain.ImportRowError:
			batch.ErrorRows++
		}
		s.recordRow(ctx, batch, record, outcome, matchedBy, customerID, rowErr)
	}

	batch.Status = domain.ImportBatchStatusCompleted
	if err := s.importRepo.FinalizeBatch(ctx, batch); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"batch_id": batch.ID,
		"total":    batch.TotalRows,
		"created":  batch.CreatedRows,
		"matched":  batch.MatchedRows,
	}).Info("Import batch completed")

	return &domain.ImportBatchResult{
		BatchID:     batch.ID,
		TotalRows:   batch.TotalRows,
		CreatedRows: batch.CreatedRows,
		MatchedRows: batch.MatchedRows,
		SkippedRows: batch.SkippedRows,
		ErrorRows:   batch.ErrorRows,
	}, nil
}

// processRow merges one mapped record. Rows without any usable identity key
// are skipped; repository failures surface as error outcomes.
func (s *ImportService) processRow(ctx context.Context, courseID string, source domain.ImportSource, header []string, record []string) (outcome domain.ImportRowOutcome, matchedBy string, customerID *string, errText string) {
	fields := domain.MapImportRow(source, header, record)

	email := domain.NormalizeEmail(fields[domain.FieldEmail])
	if email != "" && !domain.IsValidEmail(email) {
		email = ""
	}
	phone := domain.NormalizePhone(fields[domain.FieldPhone])
	if email == "" && phone == "" {
		return domain.ImportRowSkipped, "", nil, ""
	}

	candidate := &domain.Customer{
		CourseID: courseID,
		Source:   source.CustomerSource(),
	}
	if email != "" {
		candidate.Email = &domain.NullableString{String: email}
	}
	if phone != "" {
		candidate.Phone = &domain.NullableString{String: phone}
	}
	if v := fields[domain.FieldFirstName]; v != "" {
		candidate.FirstName = &domain.NullableString{String: v}
	}
	if v := fields[domain.FieldLastName]; v != "" {
		candidate.LastName = &domain.NullableString{String: v}
	}
	if v := fields[domain.FieldZip]; v != "" {
		candidate.Zip = &domain.NullableString{String: v}
	}
	if v := fields[domain.FieldSourceID]; v != "" {
		candidate.SourceID = &domain.NullableString{String: v}
	}
	if v := fields[domain.FieldBookingSource]; v != "" && domain.BookingSource(v).Validate() == nil {
		candidate.BookingSource = &domain.NullableString{String: v}
	}
	if v := fields[domain.FieldPlayFrequency]; v != "" && domain.PlayFrequency(v).Validate() == nil {
		candidate.PlayFrequency = &domain.NullableString{String: v}
	}
	candidate.IsLocal = parseImportBool(fields[domain.FieldIsLocal])
	candidate.MemberElsewhere = parseImportBool(fields[domain.FieldMemberElsewhere])

	err := s.txRunner.WithTransaction(ctx, func(tx *sql.Tx) error {
		existing, key, err := s.customerRepo.MatchByIdentityTx(ctx, tx, courseID, email, phone)
		if err != nil {
			if !domain.IsNotFound(err) {
				return err
			}

			// New records count the import itself as the first visit
			candidate.VisitCount = 1
			candidate.Rescore()
			if err := s.customerRepo.CreateCustomerTx(ctx, tx, candidate); err != nil {
				return err
			}
			outcome = domain.ImportRowCreated
			customerID = &candidate.ID
			return nil
		}

		// Imports never overwrite data a golfer gave us directly
		existing.MergeFillBlank(candidate)
		existing.Rescore()
		if err := s.customerRepo.UpdateCustomerTx(ctx, tx, existing); err != nil {
			return err
		}
		outcome = domain.ImportRowMatched
		matchedBy = string(key)
		customerID = &existing.ID
		return nil
	})
	if err != nil {
		return domain.ImportRowError, "", nil, err.Error()
	}
	return outcome, matchedBy, customerID, ""
}

// parseImportBool reads an optional boolean cell. Empty or unparseable
// values stay unknown rather than failing the row.
func parseImportBool(raw string) *domain.NullableBool {
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &domain.NullableBool{Bool: b}
}

// recordRow appends the audit record; audit failures are logged, never fatal
func (s *ImportService) recordRow(ctx context.Context, batch *domain.ImportBatch, record []string, outcome domain.ImportRowOutcome, matchedBy string, customerID *string, errText string) {
	payload, err := json.Marshal(record)
	if err != nil {
		payload = []byte(`[]`)
	}

	row := &domain.ImportRow{
		BatchID:   batch.ID,
		CourseID:  batch.CourseID,
		Outcome:   outcome,
		MatchedBy: domain.MatchKey(matchedBy),
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if customerID != nil {
		row.CustomerID = &domain.NullableString{String: *customerID}
	}
	if errText != "" {
		row.Error = &domain.NullableString{String: errText}
	}

	if err := s.importRepo.AppendRow(ctx, row); err != nil {
		s.logger.WithField("batch_id", batch.ID).Error(fmt.Sprintf("Failed to append import audit row: %v", err))
	}
}

// GetBatch retrieves an import batch with its counters
func (s *ImportService) GetBatch(ctx context.Context, courseID string, id string) (*domain.ImportBatch, error) {
	if courseID == "" || id == "" {
		return nil, domain.NewValidationError("course_id and batch id are required")
	}
	return s.importRepo.GetBatch(ctx, courseID, id)
}
