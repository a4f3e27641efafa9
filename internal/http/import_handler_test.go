package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/fairwayhq/fairway/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockImportService is a hand-rolled mock of domain.ImportService
type MockImportService struct {
	ErrToReturn error

	ImportCalled   bool
	LastCourseID   string
	LastSource     domain.ImportSource
	LastCSV        []byte
	ResultToReturn *domain.ImportBatchResult
	GetCalled      bool
	LastBatchID    string
	BatchToReturn  *domain.ImportBatch
}

func (m *MockImportService) ImportCSV(ctx context.Context, courseID string, source domain.ImportSource, csvData []byte) (*domain.ImportBatchResult, error) {
	m.ImportCalled = true
	m.LastCourseID = courseID
	m.LastSource = source
	m.LastCSV = csvData
	if m.ErrToReturn != nil {
		return nil, m.ErrToReturn
	}
	return m.ResultToReturn, nil
}

func (m *MockImportService) GetBatch(ctx context.Context, courseID string, id string) (*domain.ImportBatch, error) {
	m.GetCalled = true
	m.LastBatchID = id
	if m.ErrToReturn != nil {
		return nil, m.ErrToReturn
	}
	return m.BatchToReturn, nil
}

func newImportHandler(t *testing.T) (*ImportHandler, *MockImportService) {
	mockService := &MockImportService{}
	return NewImportHandler(mockService, logger.NewTestLogger(t)), mockService
}

// multipartImport builds a multipart body with course_id, source and a CSV file part
func multipartImport(t *testing.T, courseID, source, csv string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("course_id", courseID))
	require.NoError(t, writer.WriteField("source", source))
	part, err := writer.CreateFormFile("file", "customers.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestImportHandler_Create(t *testing.T) {
	t.Run("imports an uploaded CSV", func(t *testing.T) {
		handler, mockService := newImportHandler(t)
		mockService.ResultToReturn = &domain.ImportBatchResult{
			BatchID:     "batch-1",
			TotalRows:   2,
			CreatedRows: 2,
		}

		csv := "email,phone\na@example.com,5558675309\nb@example.com,5558675310\n"
		body, contentType := multipartImport(t, "pinehurst", "golfnow", csv)
		req := httptest.NewRequest(http.MethodPost, "/api/imports.create", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		handler.handleCreate(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.True(t, mockService.ImportCalled)
		assert.Equal(t, "pinehurst", mockService.LastCourseID)
		assert.Equal(t, domain.ImportSourceGolfNow, mockService.LastSource)
		assert.Equal(t, []byte(csv), mockService.LastCSV)

		var result domain.ImportBatchResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
		assert.Equal(t, "batch-1", result.BatchID)
	})

	t.Run("requires a file part", func(t *testing.T) {
		handler, mockService := newImportHandler(t)

		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		require.NoError(t, writer.WriteField("course_id", "pinehurst"))
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/imports.create", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		rec := httptest.NewRecorder()

		handler.handleCreate(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, mockService.ImportCalled)
	})

	t.Run("maps an unknown source to 400", func(t *testing.T) {
		handler, mockService := newImportHandler(t)
		mockService.ErrToReturn = domain.NewValidationError("invalid import source: salesforce")

		body, contentType := multipartImport(t, "pinehurst", "salesforce", "email\na@example.com\n")
		req := httptest.NewRequest(http.MethodPost, "/api/imports.create", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		handler.handleCreate(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects non-POST methods", func(t *testing.T) {
		handler, _ := newImportHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/imports.create", nil)
		rec := httptest.NewRecorder()

		handler.handleCreate(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestImportHandler_Get(t *testing.T) {
	t.Run("returns the batch", func(t *testing.T) {
		handler, mockService := newImportHandler(t)
		mockService.BatchToReturn = &domain.ImportBatch{ID: "batch-1", CourseID: "pinehurst"}

		req := httptest.NewRequest(http.MethodGet, "/api/imports.get?course_id=pinehurst&id=batch-1", nil)
		rec := httptest.NewRecorder()

		handler.handleGet(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "batch-1", mockService.LastBatchID)
	})

	t.Run("requires course_id and id", func(t *testing.T) {
		handler, mockService := newImportHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/imports.get?id=batch-1", nil)
		rec := httptest.NewRecorder()

		handler.handleGet(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, mockService.GetCalled)
	})
}
