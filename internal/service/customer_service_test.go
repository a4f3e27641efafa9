package service

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/fairwayhq/fairway/internal/repository"
	"github.com/fairwayhq/fairway/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCustomerService(t *testing.T) (*CustomerService, *repository.MockCustomerRepository, *repository.MockEmailQueueRepository) {
	t.Helper()
	customerRepo := &repository.MockCustomerRepository{}
	emailQueue := &repository.MockEmailQueueRepository{}
	svc := NewCustomerService(customerRepo, emailQueue, logger.NewTestLogger(t))
	return svc, customerRepo, emailQueue
}

func TestCustomerService_SetOptedOut(t *testing.T) {
	ctx := context.Background()

	t.Run("opt-out cancels pending emails", func(t *testing.T) {
		svc, customerRepo, emailQueue := newCustomerService(t)

		customerRepo.On("SetOptedOut", ctx, "pinehurst", "cust-1", true).Return(nil)
		emailQueue.On("CancelPendingForCustomer", ctx, "pinehurst", "cust-1").Return(int64(2), nil)

		err := svc.SetOptedOut(ctx, "pinehurst", "cust-1", true)
		require.NoError(t, err)
		emailQueue.AssertCalled(t, "CancelPendingForCustomer", ctx, "pinehurst", "cust-1")
	})

	t.Run("opt-in leaves the queue alone", func(t *testing.T) {
		svc, customerRepo, emailQueue := newCustomerService(t)

		customerRepo.On("SetOptedOut", ctx, "pinehurst", "cust-1", false).Return(nil)

		err := svc.SetOptedOut(ctx, "pinehurst", "cust-1", false)
		require.NoError(t, err)
		emailQueue.AssertNotCalled(t, "CancelPendingForCustomer", ctx, "pinehurst", "cust-1")
	})
}

func TestCustomerService_ExportCustomersCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("exports in the stable column order", func(t *testing.T) {
		svc, customerRepo, _ := newCustomerService(t)

		created := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
		customers := []*domain.Customer{
			{
				ID:              "cust-1",
				CourseID:        "pinehurst",
				FirstName:       &domain.NullableString{String: "Jordan"},
				LastName:        &domain.NullableString{String: "Lee"},
				Email:           &domain.NullableString{String: "jordan@example.com"},
				Phone:           &domain.NullableString{String: "9105551234"},
				Zip:             &domain.NullableString{String: "28374"},
				BookingSource:   &domain.NullableString{String: "golfnow"},
				IsLocal:         &domain.NullableBool{Bool: true},
				PlayFrequency:   &domain.NullableString{String: "weekly"},
				MemberElsewhere: &domain.NullableBool{Bool: false},
				VisitCount:      3,
				MembershipScore: 80,
				CreatedAt:       created,
			},
			{
				ID:        "cust-2",
				CourseID:  "pinehurst",
				Email:     &domain.NullableString{IsNull: true},
				Phone:     &domain.NullableString{String: "9105559999"},
				CreatedAt: created,
			},
		}
		customerRepo.On("ListAllCustomers", ctx, "pinehurst").Return(customers, nil)

		data, err := svc.ExportCustomersCSV(ctx, "pinehurst")
		require.NoError(t, err)

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)

		assert.Equal(t, exportColumns, records[0])
		assert.Equal(t, []string{
			"Jordan", "Lee", "jordan@example.com", "9105551234", "28374",
			"golfnow", "true", "weekly", "false", "3", "80",
			"2026-05-01 09:30:00",
		}, records[1])
		// Null fields export as empty cells
		assert.Equal(t, "", records[2][2])
		assert.Equal(t, "9105559999", records[2][3])
	})

	t.Run("a generic re-import maps the exported header", func(t *testing.T) {
		header := exportColumns
		record := []string{"Jordan", "Lee", "jordan@example.com", "9105551234", "28374",
			"golfnow", "true", "weekly", "false", "3", "80", "2026-05-01 09:30:00"}

		fields := domain.MapImportRow(domain.ImportSourceGeneric, header, record)
		assert.Equal(t, "jordan@example.com", fields[domain.FieldEmail])
		assert.Equal(t, "9105551234", fields[domain.FieldPhone])
		assert.Equal(t, "Jordan", fields[domain.FieldFirstName])
		assert.Equal(t, "28374", fields[domain.FieldZip])
	})

	t.Run("requires a course", func(t *testing.T) {
		svc, _, _ := newCustomerService(t)

		_, err := svc.ExportCustomersCSV(ctx, "")
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})
}

func TestCustomerService_ListCustomers(t *testing.T) {
	ctx := context.Background()

	svc, customerRepo, _ := newCustomerService(t)

	resp := &domain.ListCustomersResponse{Customers: []*domain.Customer{}, Total: 0}
	customerRepo.On("ListCustomers", ctx, mock.Anything).Return(resp, nil)

	got, err := svc.ListCustomers(ctx, &domain.ListCustomersRequest{CourseID: "pinehurst"})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Total)
}
