package repository

import (
	"context"
	"database/sql"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockCustomerRepository is a mock implementation of domain.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) GetCustomerByID(ctx context.Context, courseID string, id string) (*domain.Customer, error) {
	args := m.Called(ctx, courseID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetCustomerByEmail(ctx context.Context, courseID string, email string) (*domain.Customer, error) {
	args := m.Called(ctx, courseID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) MatchByIdentityTx(ctx context.Context, tx *sql.Tx, courseID string, email string, phone string) (*domain.Customer, domain.MatchKey, error) {
	args := m.Called(ctx, tx, courseID, email, phone)
	if args.Get(0) == nil {
		return nil, args.Get(1).(domain.MatchKey), args.Error(2)
	}
	return args.Get(0).(*domain.Customer), args.Get(1).(domain.MatchKey), args.Error(2)
}

func (m *MockCustomerRepository) CreateCustomerTx(ctx context.Context, tx *sql.Tx, customer *domain.Customer) error {
	args := m.Called(ctx, tx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) UpdateCustomerTx(ctx context.Context, tx *sql.Tx, customer *domain.Customer) error {
	args := m.Called(ctx, tx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) ListCustomers(ctx context.Context, req *domain.ListCustomersRequest) (*domain.ListCustomersResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ListCustomersResponse), args.Error(1)
}

func (m *MockCustomerRepository) ListProspects(ctx context.Context, courseID string, minScore int, requireLocal bool) ([]*domain.Customer, error) {
	args := m.Called(ctx, courseID, minScore, requireLocal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) ListAllCustomers(ctx context.Context, courseID string) ([]*domain.Customer, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) SetOptedOut(ctx context.Context, courseID string, customerID string, optedOut bool) error {
	args := m.Called(ctx, courseID, customerID, optedOut)
	return args.Error(0)
}

// MockCaptureRepository is a mock implementation of domain.CaptureRepository
type MockCaptureRepository struct {
	mock.Mock
}

func (m *MockCaptureRepository) InsertCaptureTx(ctx context.Context, tx *sql.Tx, capture *domain.Capture) error {
	args := m.Called(ctx, tx, capture)
	return args.Error(0)
}

func (m *MockCaptureRepository) GetCaptureByCode(ctx context.Context, code string) (*domain.Capture, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Capture), args.Error(1)
}

func (m *MockCaptureRepository) RedeemByCode(ctx context.Context, code string, redeemedBy string) (bool, error) {
	args := m.Called(ctx, code, redeemedBy)
	return args.Bool(0), args.Error(1)
}

func (m *MockCaptureRepository) ListCaptures(ctx context.Context, courseID string, limit int) ([]*domain.Capture, error) {
	args := m.Called(ctx, courseID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Capture), args.Error(1)
}

// MockCourseRepository is a mock implementation of domain.CourseRepository
type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Course), args.Error(1)
}

func (m *MockCourseRepository) CreateCourse(ctx context.Context, course *domain.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseRepository) ListCourses(ctx context.Context) ([]*domain.Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Course), args.Error(1)
}

// MockLocationRepository is a mock implementation of domain.LocationRepository
type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) GetLocation(ctx context.Context, courseID string, id string) (*domain.Location, error) {
	args := m.Called(ctx, courseID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Location), args.Error(1)
}

func (m *MockLocationRepository) CreateLocation(ctx context.Context, location *domain.Location) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

func (m *MockLocationRepository) ListLocations(ctx context.Context, courseID string) ([]*domain.Location, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Location), args.Error(1)
}

func (m *MockLocationRepository) GetActiveABTest(ctx context.Context, courseID string, locationID string) (*domain.ABTest, error) {
	args := m.Called(ctx, courseID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ABTest), args.Error(1)
}

func (m *MockLocationRepository) CreateABTest(ctx context.Context, test *domain.ABTest) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

// MockPipelineRepository is a mock implementation of domain.PipelineRepository
type MockPipelineRepository struct {
	mock.Mock
}

func (m *MockPipelineRepository) EnsureOpenEntryTx(ctx context.Context, tx *sql.Tx, entry *domain.PipelineEntry) (bool, error) {
	args := m.Called(ctx, tx, entry)
	return args.Bool(0), args.Error(1)
}

func (m *MockPipelineRepository) CreateEntry(ctx context.Context, entry *domain.PipelineEntry) (bool, error) {
	args := m.Called(ctx, entry)
	return args.Bool(0), args.Error(1)
}

func (m *MockPipelineRepository) GetEntry(ctx context.Context, courseID string, id string) (*domain.PipelineEntry, error) {
	args := m.Called(ctx, courseID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PipelineEntry), args.Error(1)
}

func (m *MockPipelineRepository) UpdateStatus(ctx context.Context, req *domain.UpdatePipelineStatusRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockPipelineRepository) ListEntries(ctx context.Context, courseID string, status domain.PipelineStatus) ([]*domain.PipelineEntry, error) {
	args := m.Called(ctx, courseID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PipelineEntry), args.Error(1)
}

// MockSegmentRepository is a mock implementation of domain.SegmentRepository
type MockSegmentRepository struct {
	mock.Mock
}

func (m *MockSegmentRepository) CreateSegment(ctx context.Context, segment *domain.Segment) error {
	args := m.Called(ctx, segment)
	return args.Error(0)
}

func (m *MockSegmentRepository) GetSegment(ctx context.Context, courseID string, id string) (*domain.Segment, error) {
	args := m.Called(ctx, courseID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Segment), args.Error(1)
}

func (m *MockSegmentRepository) ListSegments(ctx context.Context, courseID string) ([]*domain.Segment, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Segment), args.Error(1)
}

func (m *MockSegmentRepository) DeleteSegment(ctx context.Context, courseID string, id string) error {
	args := m.Called(ctx, courseID, id)
	return args.Error(0)
}

func (m *MockSegmentRepository) CountMembers(ctx context.Context, segment *domain.Segment) (int, error) {
	args := m.Called(ctx, segment)
	return args.Int(0), args.Error(1)
}

func (m *MockSegmentRepository) ListMembers(ctx context.Context, segment *domain.Segment) ([]*domain.Customer, error) {
	args := m.Called(ctx, segment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Customer), args.Error(1)
}

// MockEmailQueueRepository is a mock implementation of domain.EmailQueueRepository
type MockEmailQueueRepository struct {
	mock.Mock
}

func (m *MockEmailQueueRepository) Enqueue(ctx context.Context, entries []*domain.EmailQueueEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockEmailQueueRepository) EnqueueTx(ctx context.Context, tx *sql.Tx, entries []*domain.EmailQueueEntry) error {
	args := m.Called(ctx, tx, entries)
	return args.Error(0)
}

func (m *MockEmailQueueRepository) FetchDue(ctx context.Context, limit int) ([]*domain.EmailQueueEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EmailQueueEntry), args.Error(1)
}

func (m *MockEmailQueueRepository) MarkSent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEmailQueueRepository) MarkFailed(ctx context.Context, id string, errorMsg string) error {
	args := m.Called(ctx, id, errorMsg)
	return args.Error(0)
}

func (m *MockEmailQueueRepository) CancelPendingForCustomer(ctx context.Context, courseID string, customerID string) (int64, error) {
	args := m.Called(ctx, courseID, customerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockImportRepository is a mock implementation of domain.ImportRepository
type MockImportRepository struct {
	mock.Mock
}

func (m *MockImportRepository) CreateBatch(ctx context.Context, batch *domain.ImportBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockImportRepository) MarkProcessing(ctx context.Context, batchID string) error {
	args := m.Called(ctx, batchID)
	return args.Error(0)
}

func (m *MockImportRepository) AppendRow(ctx context.Context, row *domain.ImportRow) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *MockImportRepository) FinalizeBatch(ctx context.Context, batch *domain.ImportBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockImportRepository) GetBatch(ctx context.Context, courseID string, id string) (*domain.ImportBatch, error) {
	args := m.Called(ctx, courseID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportBatch), args.Error(1)
}

func (m *MockImportRepository) ListRows(ctx context.Context, batchID string) ([]*domain.ImportRow, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ImportRow), args.Error(1)
}

// MockAnalyticsRepository is a mock implementation of domain.AnalyticsRepository
type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) ComputeSnapshot(ctx context.Context, courseID string) (*domain.AnalyticsSnapshot, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalyticsSnapshot), args.Error(1)
}

// MockTransactionRunner is a mock implementation of domain.TransactionRunner.
// It invokes the callback with a nil transaction so service logic and the
// Tx-variant repository mocks can run without a database.
type MockTransactionRunner struct {
	mock.Mock
}

func (m *MockTransactionRunner) WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(nil)
}
