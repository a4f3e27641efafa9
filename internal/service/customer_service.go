package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/fairwayhq/fairway/pkg/logger"
)

// exportColumns is the stable CSV export header. A generic re-import of an
// export round-trips cleanly through the import mapper.
var exportColumns = []string{
	"first_name", "last_name", "email", "phone", "zip", "booking_source",
	"is_local", "play_frequency", "member_elsewhere", "visit_count",
	"membership_score", "created_at",
}

// CustomerService covers staff-facing customer reads and the opt-out switch
type CustomerService struct {
	customerRepo domain.CustomerRepository
	emailQueue   domain.EmailQueueRepository
	logger       logger.Logger
}

func NewCustomerService(
	customerRepo domain.CustomerRepository,
	emailQueue domain.EmailQueueRepository,
	logger logger.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		emailQueue:   emailQueue,
		logger:       logger,
	}
}

// GetCustomer retrieves a single customer
func (s *CustomerService) GetCustomer(ctx context.Context, courseID string, id string) (*domain.Customer, error) {
	if courseID == "" || id == "" {
		return nil, domain.NewValidationError("course_id and customer id are required")
	}
	return s.customerRepo.GetCustomerByID(ctx, courseID, id)
}

// ListCustomers lists customers with filters and pagination
func (s *CustomerService) ListCustomers(ctx context.Context, req *domain.ListCustomersRequest) (*domain.ListCustomersResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.customerRepo.ListCustomers(ctx, req)
}

// SetOptedOut flips the email opt-out flag. Opting out also cancels every
// pending queued email for the customer.
func (s *CustomerService) SetOptedOut(ctx context.Context, courseID string, customerID string, optedOut bool) error {
	if courseID == "" || customerID == "" {
		return domain.NewValidationError("course_id and customer id are required")
	}

	if err := s.customerRepo.SetOptedOut(ctx, courseID, customerID, optedOut); err != nil {
		return err
	}

	if optedOut {
		cancelled, err := s.emailQueue.CancelPendingForCustomer(ctx, courseID, customerID)
		if err != nil {
			return err
		}
		if cancelled > 0 {
			s.logger.WithFields(map[string]interface{}{
				"customer_id": customerID,
				"cancelled":   cancelled,
			}).Info("Cancelled pending emails after opt-out")
		}
	}
	return nil
}

// ExportCustomersCSV renders every customer of a course in the stable
// export column order
func (s *CustomerService) ExportCustomersCSV(ctx context.Context, courseID string) ([]byte, error) {
	if courseID == "" {
		return nil, domain.NewValidationError("course_id is required")
	}

	customers, err := s.customerRepo.ListAllCustomers(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportColumns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, c := range customers {
		if err := writer.Write(exportRecord(c)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}

func exportRecord(c *domain.Customer) []string {
	return []string{
		nullableString(c.FirstName),
		nullableString(c.LastName),
		nullableString(c.Email),
		nullableString(c.Phone),
		nullableString(c.Zip),
		nullableString(c.BookingSource),
		nullableBool(c.IsLocal),
		nullableString(c.PlayFrequency),
		nullableBool(c.MemberElsewhere),
		strconv.Itoa(c.VisitCount),
		strconv.Itoa(c.MembershipScore),
		c.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}

func nullableString(ns *domain.NullableString) string {
	if ns == nil || ns.IsNull {
		return ""
	}
	return ns.String
}

func nullableBool(nb *domain.NullableBool) string {
	if nb == nil || nb.IsNull {
		return ""
	}
	return strconv.FormatBool(nb.Bool)
}
