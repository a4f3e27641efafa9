package http

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/fairwayhq/fairway/pkg/logger"
)

// maxCaptureBody bounds public-form submissions; anything bigger is junk.
const maxCaptureBody = 64 << 10

type CaptureHandler struct {
	service domain.CaptureService
	logger  logger.Logger
}

func NewCaptureHandler(service domain.CaptureService, logger logger.Logger) *CaptureHandler {
	return &CaptureHandler{
		service: service,
		logger:  logger,
	}
}

func (h *CaptureHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/captures.submit", h.handleSubmit)
	mux.HandleFunc("/api/captures.redeem", h.handleRedeem)
	mux.HandleFunc("/api/captures.list", h.handleList)
}

func (h *CaptureHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCaptureBody))
	if err != nil {
		WriteJSONError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	req, err := domain.SubmitCaptureRequestFromJSON(body)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to parse capture")
		return
	}
	req.OriginIP = clientIP(r)
	req.UserAgent = r.UserAgent()

	response, err := h.service.SubmitCapture(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to submit capture")
		return
	}

	writeJSON(w, http.StatusCreated, response)
}

func (h *CaptureHandler) handleRedeem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.RedeemRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	capture, err := h.service.RedeemReward(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to redeem reward")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"capture": capture,
	})
}

func (h *CaptureHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	courseID := r.URL.Query().Get("course_id")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			WriteJSONError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	captures, err := h.service.ListCaptures(r.Context(), courseID, limit)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to list captures")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"captures": captures,
	})
}

// clientIP strips the port from RemoteAddr, falling back to the raw value
// when it has no port (as in tests).
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
