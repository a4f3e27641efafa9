package http

import (
	"io"
	"net/http"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/fairwayhq/fairway/pkg/logger"
)

// maxImportSize caps uploaded CSV files at 10 MB.
const maxImportSize = 10 << 20

type ImportHandler struct {
	service domain.ImportService
	logger  logger.Logger
}

func NewImportHandler(service domain.ImportService, logger logger.Logger) *ImportHandler {
	return &ImportHandler{
		service: service,
		logger:  logger,
	}
}

func (h *ImportHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/imports.create", h.handleCreate)
	mux.HandleFunc("/api/imports.get", h.handleGet)
}

// handleCreate accepts a multipart form with course_id, source and a "file"
// part holding the CSV.
func (h *ImportHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		WriteJSONError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	courseID := r.FormValue("course_id")
	source := domain.ImportSource(r.FormValue("source"))

	file, _, err := r.FormFile("file")
	if err != nil {
		WriteJSONError(w, "Missing CSV file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	csvData, err := io.ReadAll(io.LimitReader(file, maxImportSize))
	if err != nil {
		WriteJSONError(w, "Failed to read CSV file", http.StatusBadRequest)
		return
	}

	result, err := h.service.ImportCSV(r.Context(), courseID, source, csvData)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to import CSV")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *ImportHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	courseID := r.URL.Query().Get("course_id")
	id := r.URL.Query().Get("id")
	if courseID == "" || id == "" {
		WriteJSONError(w, "course_id and id are required", http.StatusBadRequest)
		return
	}

	batch, err := h.service.GetBatch(r.Context(), courseID, id)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to get import batch")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"batch": batch,
	})
}
