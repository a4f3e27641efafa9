package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/fairwayhq/fairway/pkg/logger"
)

type CustomerHandler struct {
	service domain.CustomerService
	logger  logger.Logger
}

func NewCustomerHandler(service domain.CustomerService, logger logger.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		logger:  logger,
	}
}

func (h *CustomerHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/customers.list", h.handleList)
	mux.HandleFunc("/api/customers.get", h.handleGet)
	mux.HandleFunc("/api/customers.export", h.handleExport)
	mux.HandleFunc("/api/customers.setOptOut", h.handleSetOptOut)
}

func (h *CustomerHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req := &domain.ListCustomersRequest{}
	if err := req.FromQueryParams(r.URL.Query()); err != nil {
		writeServiceError(w, h.logger, err, "Invalid request")
		return
	}

	response, err := h.service.ListCustomers(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to list customers")
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *CustomerHandler) handleGet(w http.ResponseWriter, r *http.Request) {
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

	customer, err := h.service.GetCustomer(r.Context(), courseID, id)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to get customer")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"customer": customer,
	})
}

func (h *CustomerHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	courseID := r.URL.Query().Get("course_id")
	if courseID == "" {
		WriteJSONError(w, "course_id is required", http.StatusBadRequest)
		return
	}

	data, err := h.service.ExportCustomersCSV(r.Context(), courseID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to export customers")
		return
	}

	filename := fmt.Sprintf("customers-%s-%s.csv", courseID, time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type setOptOutRequest struct {
	CourseID   string `json:"course_id"`
	CustomerID string `json:"customer_id"`
	OptedOut   bool   `json:"opted_out"`
}

func (h *CustomerHandler) handleSetOptOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req setOptOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.SetOptedOut(r.Context(), req.CourseID, req.CustomerID, req.OptedOut); err != nil {
		writeServiceError(w, h.logger, err, "Failed to update opt-out flag")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}
