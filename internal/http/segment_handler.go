package http

import (
	"encoding/json"
	"net/http"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/fairwayhq/fairway/pkg/logger"
)

type SegmentHandler struct {
	service domain.SegmentService
	logger  logger.Logger
}

func NewSegmentHandler(service domain.SegmentService, logger logger.Logger) *SegmentHandler {
	return &SegmentHandler{
		service: service,
		logger:  logger,
	}
}

func (h *SegmentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/segments.create", h.handleCreate)
	mux.HandleFunc("/api/segments.get", h.handleGet)
	mux.HandleFunc("/api/segments.list", h.handleList)
	mux.HandleFunc("/api/segments.delete", h.handleDelete)
	mux.HandleFunc("/api/segments.preview", h.handlePreview)
	mux.HandleFunc("/api/segments.blast", h.handleBlast)
}

func (h *SegmentHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var segment domain.Segment
	if err := json.NewDecoder(r.Body).Decode(&segment); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.CreateSegment(r.Context(), &segment); err != nil {
		writeServiceError(w, h.logger, err, "Failed to create segment")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"segment": segment,
	})
}

func (h *SegmentHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	segment, err := h.service.GetSegment(r.Context(), r.URL.Query().Get("course_id"), r.URL.Query().Get("id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to get segment")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"segment": segment,
	})
}

func (h *SegmentHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	segments, err := h.service.ListSegments(r.Context(), r.URL.Query().Get("course_id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to list segments")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"segments": segments,
	})
}

type deleteSegmentRequest struct {
	CourseID string `json:"course_id"`
	ID       string `json:"id"`
}

func (h *SegmentHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req deleteSegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteSegment(r.Context(), req.CourseID, req.ID); err != nil {
		writeServiceError(w, h.logger, err, "Failed to delete segment")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

func (h *SegmentHandler) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	count, err := h.service.PreviewSegment(r.Context(), r.URL.Query().Get("course_id"), r.URL.Query().Get("id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to preview segment")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": count,
	})
}

func (h *SegmentHandler) handleBlast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.BlastSegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	queued, err := h.service.BlastSegment(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to queue segment blast")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"queued": queued,
	})
}
