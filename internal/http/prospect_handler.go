package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/fairwayhq/fairway/pkg/logger"
)

type ProspectHandler struct {
	service domain.ProspectService
	logger  logger.Logger
}

func NewProspectHandler(service domain.ProspectService, logger logger.Logger) *ProspectHandler {
	return &ProspectHandler{
		service: service,
		logger:  logger,
	}
}

func (h *ProspectHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/prospects.list", h.handleListProspects)
	mux.HandleFunc("/api/pipeline.list", h.handleListPipeline)
	mux.HandleFunc("/api/pipeline.updateStatus", h.handleUpdateStatus)
}

func (h *ProspectHandler) handleListProspects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	courseID := r.URL.Query().Get("course_id")
	minScore := 0
	if v := r.URL.Query().Get("min_score"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			WriteJSONError(w, "Invalid min_score", http.StatusBadRequest)
			return
		}
		minScore = n
	}
	requireLocal := r.URL.Query().Get("require_local") == "true"

	prospects, err := h.service.ListProspects(r.Context(), courseID, minScore, requireLocal)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to list prospects")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"prospects": prospects,
	})
}

func (h *ProspectHandler) handleListPipeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	courseID := r.URL.Query().Get("course_id")
	status := r.URL.Query().Get("status")

	entries, err := h.service.ListPipeline(r.Context(), courseID, status)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to list pipeline")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

func (h *ProspectHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.UpdatePipelineStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.service.UpdatePipelineStatus(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to update pipeline status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entry": entry,
	})
}
