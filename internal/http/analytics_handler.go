package http

import (
	"net/http"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/fairwayhq/fairway/pkg/logger"
)

type AnalyticsHandler struct {
	service domain.AnalyticsService
	logger  logger.Logger
}

func NewAnalyticsHandler(service domain.AnalyticsService, logger logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AnalyticsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/analytics.snapshot", h.handleSnapshot)
}

func (h *AnalyticsHandler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot, err := h.service.ComputeSnapshot(r.Context(), r.URL.Query().Get("course_id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to compute snapshot")
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}
