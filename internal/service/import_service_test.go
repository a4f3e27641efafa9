package service

import (
	"context"
	"testing"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/fairwayhq/fairway/internal/repository"
	"github.com/fairwayhq/fairway/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newImportService(t *testing.T) (*ImportService, *repository.MockCustomerRepository, *repository.MockImportRepository) {
	t.Helper()
	customerRepo := &repository.MockCustomerRepository{}
	importRepo := &repository.MockImportRepository{}
	txRunner := &repository.MockTransactionRunner{}
	txRunner.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)

	svc := NewImportService(txRunner, customerRepo, importRepo, logger.NewTestLogger(t))
	return svc, customerRepo, importRepo
}

func expectBatchLifecycle(importRepo *repository.MockImportRepository) {
	importRepo.On("CreateBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.ImportBatch).ID = "batch-1"
		}).Return(nil)
	importRepo.On("MarkProcessing", mock.Anything, "batch-1").Return(nil)
	importRepo.On("AppendRow", mock.Anything, mock.Anything).Return(nil)
	importRepo.On("FinalizeBatch", mock.Anything, mock.Anything).Return(nil)
}

func TestImportService_ImportCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("creates new customers from a golfnow export", func(t *testing.T) {
		svc, customerRepo, importRepo := newImportService(t)
		expectBatchLifecycle(importRepo)

		var created []*domain.Customer
		customerRepo.On("MatchByIdentityTx", mock.Anything, mock.Anything, "pinehurst", mock.Anything, mock.Anything).
			Return(nil, domain.MatchKeyNone, &domain.ErrNotFound{Entity: "customer"})
		customerRepo.On("CreateCustomerTx", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				c := args.Get(2).(*domain.Customer)
				c.ID = "cust-new"
				created = append(created, c)
			}).Return(nil)

		csvData := []byte("Email Address,Phone Number,First Name,Last Name,Zip Code\n" +
			"a@example.com,9105551111,Alex,Smith,28374\n" +
			"b@example.com,9105552222,Blair,Jones,28374\n")

		result, err := svc.ImportCSV(ctx, "pinehurst", domain.ImportSourceGolfNow, csvData)
		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalRows)
		assert.Equal(t, 2, result.CreatedRows)
		assert.Equal(t, 0, result.ErrorRows)

		// The import itself counts as the first visit
		require.Len(t, created, 2)
		for _, c := range created {
			assert.Equal(t, 1, c.VisitCount)
		}
	})

	t.Run("carries profile columns into new customers", func(t *testing.T) {
		svc, customerRepo, importRepo := newImportService(t)
		expectBatchLifecycle(importRepo)

		var created *domain.Customer
		customerRepo.On("MatchByIdentityTx", mock.Anything, mock.Anything, "pinehurst", "a@example.com", mock.Anything).
			Return(nil, domain.MatchKeyNone, &domain.ErrNotFound{Entity: "customer"})
		customerRepo.On("CreateCustomerTx", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				created = args.Get(2).(*domain.Customer)
			}).Return(nil)

		csvData := []byte("email,booking_source,is_local,play_frequency,member_elsewhere\n" +
			"a@example.com,golfnow,true,weekly,false\n")

		_, err := svc.ImportCSV(ctx, "pinehurst", domain.ImportSourceGeneric, csvData)
		require.NoError(t, err)

		require.NotNil(t, created)
		require.NotNil(t, created.BookingSource)
		assert.Equal(t, "golfnow", created.BookingSource.String)
		require.NotNil(t, created.IsLocal)
		assert.True(t, created.IsLocal.Bool)
		require.NotNil(t, created.PlayFrequency)
		assert.Equal(t, "weekly", created.PlayFrequency.String)
		require.NotNil(t, created.MemberElsewhere)
		assert.False(t, created.MemberElsewhere.Bool)
	})

	t.Run("drops unrecognized profile values instead of failing the row", func(t *testing.T) {
		svc, customerRepo, importRepo := newImportService(t)
		expectBatchLifecycle(importRepo)

		var created *domain.Customer
		customerRepo.On("MatchByIdentityTx", mock.Anything, mock.Anything, "pinehurst", "a@example.com", mock.Anything).
			Return(nil, domain.MatchKeyNone, &domain.ErrNotFound{Entity: "customer"})
		customerRepo.On("CreateCustomerTx", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				created = args.Get(2).(*domain.Customer)
			}).Return(nil)

		csvData := []byte("email,booking_source,is_local,play_frequency\n" +
			"a@example.com,carrier-pigeon,maybe,daily\n")

		result, err := svc.ImportCSV(ctx, "pinehurst", domain.ImportSourceGeneric, csvData)
		require.NoError(t, err)
		assert.Equal(t, 1, result.CreatedRows)

		require.NotNil(t, created)
		assert.Nil(t, created.BookingSource)
		assert.Nil(t, created.IsLocal)
		assert.Nil(t, created.PlayFrequency)
	})

	t.Run("merges into existing customers without overwriting", func(t *testing.T) {
		svc, customerRepo, importRepo := newImportService(t)
		expectBatchLifecycle(importRepo)

		existing := &domain.Customer{
			ID:        "cust-1",
			CourseID:  "pinehurst",
			Email:     &domain.NullableString{String: "a@example.com"},
			FirstName: &domain.NullableString{String: "Alexandra"},
		}
		customerRepo.On("MatchByIdentityTx", mock.Anything, mock.Anything, "pinehurst", "a@example.com", mock.Anything).
			Return(existing, domain.MatchKeyEmail, nil)
		customerRepo.On("UpdateCustomerTx", mock.Anything, mock.Anything, existing).Return(nil)

		csvData := []byte("email,first_name,zip\na@example.com,Alex,28374\n")

		result, err := svc.ImportCSV(ctx, "pinehurst", domain.ImportSourceGeneric, csvData)
		require.NoError(t, err)
		assert.Equal(t, 1, result.MatchedRows)
		// Known name kept, blank zip filled
		assert.Equal(t, "Alexandra", existing.FirstName.String)
		assert.Equal(t, "28374", existing.Zip.String)
	})

	t.Run("skips rows without any identity key", func(t *testing.T) {
		svc, _, importRepo := newImportService(t)
		expectBatchLifecycle(importRepo)

		csvData := []byte("email,phone,first_name\n,,Nameless\nnot-an-email,555,Bad\n")

		result, err := svc.ImportCSV(ctx, "pinehurst", domain.ImportSourceGeneric, csvData)
		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalRows)
		assert.Equal(t, 2, result.SkippedRows)
	})

	t.Run("a failing row never aborts the batch", func(t *testing.T) {
		svc, customerRepo, importRepo := newImportService(t)
		expectBatchLifecycle(importRepo)

		customerRepo.On("MatchByIdentityTx", mock.Anything, mock.Anything, "pinehurst", "a@example.com", mock.Anything).
			Return(nil, domain.MatchKeyNone, assert.AnError).Once()
		customerRepo.On("MatchByIdentityTx", mock.Anything, mock.Anything, "pinehurst", "b@example.com", mock.Anything).
			Return(nil, domain.MatchKeyNone, &domain.ErrNotFound{Entity: "customer"}).Once()
		customerRepo.On("CreateCustomerTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		csvData := []byte("email\na@example.com\nb@example.com\n")

		result, err := svc.ImportCSV(ctx, "pinehurst", domain.ImportSourceGeneric, csvData)
		require.NoError(t, err)
		assert.Equal(t, 1, result.ErrorRows)
		assert.Equal(t, 1, result.CreatedRows)
	})

	t.Run("rejects an unknown source", func(t *testing.T) {
		svc, _, _ := newImportService(t)

		_, err := svc.ImportCSV(ctx, "pinehurst", domain.ImportSource("salesforce"), []byte("email\n"))
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("rejects an empty body", func(t *testing.T) {
		svc, _, _ := newImportService(t)

		_, err := svc.ImportCSV(ctx, "pinehurst", domain.ImportSourceGeneric, []byte(""))
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})
}

// A generic re-import of our own CSV export must resolve every row back to
// the customer it came from, minting no duplicates and keeping both identity
// keys intact.
func TestImportService_ExportReimportRoundTrip(t *testing.T) {
	ctx := context.Background()

	customers := []*domain.Customer{
		{
			ID:              "cust-1",
			CourseID:        "pinehurst",
			Email:           &domain.NullableString{String: "a@example.com"},
			Phone:           &domain.NullableString{String: "9105551111"},
			FirstName:       &domain.NullableString{String: "Alex"},
			BookingSource:   &domain.NullableString{String: "golfnow"},
			IsLocal:         &domain.NullableBool{Bool: true},
			PlayFrequency:   &domain.NullableString{String: "weekly"},
			MemberElsewhere: &domain.NullableBool{Bool: false},
			VisitCount:      3,
			MembershipScore: 70,
		},
		{
			ID:         "cust-2",
			CourseID:   "pinehurst",
			Email:      &domain.NullableString{String: "b@example.com"},
			VisitCount: 1,
		},
		{
			ID:         "cust-3",
			CourseID:   "pinehurst",
			Phone:      &domain.NullableString{String: "9105553333"},
			VisitCount: 1,
		},
	}

	exportSvc, exportRepo, _ := newCustomerService(t)
	exportRepo.On("ListAllCustomers", ctx, "pinehurst").Return(customers, nil)

	csvData, err := exportSvc.ExportCustomersCSV(ctx, "pinehurst")
	require.NoError(t, err)

	svc, customerRepo, importRepo := newImportService(t)
	expectBatchLifecycle(importRepo)

	// Each exported row must match back on exactly the identity keys it
	// carried out; a looser or missing key would miss these expectations.
	for _, c := range customers {
		email, phone := "", ""
		key := domain.MatchKeyPhone
		if c.Email != nil {
			email = c.Email.String
			key = domain.MatchKeyEmail
		}
		if c.Phone != nil {
			phone = c.Phone.String
		}
		customerRepo.On("MatchByIdentityTx", mock.Anything, mock.Anything, "pinehurst", email, phone).
			Return(c, key, nil).Once()
	}
	customerRepo.On("UpdateCustomerTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := svc.ImportCSV(ctx, "pinehurst", domain.ImportSourceGeneric, csvData)
	require.NoError(t, err)
	assert.Equal(t, len(customers), result.TotalRows)
	assert.Equal(t, len(customers), result.MatchedRows)
	assert.Equal(t, 0, result.CreatedRows)
	assert.Equal(t, 0, result.SkippedRows)
	assert.Equal(t, 0, result.ErrorRows)
	customerRepo.AssertNotCalled(t, "CreateCustomerTx", mock.Anything, mock.Anything, mock.Anything)
	customerRepo.AssertExpectations(t)

	// Re-import leaves the already-known profile untouched
	first := customers[0]
	assert.Equal(t, "golfnow", first.BookingSource.String)
	assert.Equal(t, "weekly", first.PlayFrequency.String)
	assert.True(t, first.IsLocal.Bool)
	assert.Equal(t, 3, first.VisitCount)
}

func TestImportService_GetBatch(t *testing.T) {
	ctx := context.Background()

	svc, _, importRepo := newImportService(t)

	batch := &domain.ImportBatch{ID: "batch-1", CourseID: "pinehurst"}
	importRepo.On("GetBatch", ctx, "pinehurst", "batch-1").Return(batch, nil)

	got, err := svc.GetBatch(ctx, "pinehurst", "batch-1")
	require.NoError(t, err)
	assert.Equal(t, "batch-1", got.ID)
}
