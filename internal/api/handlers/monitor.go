package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
	"github.com/lystzs/family-asset-manager/internal/monitor"
	"github.com/lystzs/family-asset-manager/pkg/logger"
)

// MonitorHandler serves backend scheduler status and manual batch triggers
type MonitorHandler struct {
	poller *monitor.StatusPoller
	logger *logger.Logger
}

// NewMonitorHandler creates a new monitor handler
func NewMonitorHandler(poller *monitor.StatusPoller, log *logger.Logger) *MonitorHandler {
	return &MonitorHandler{poller: poller, logger: log}
}

// StatusResponse is the latest polled status
type StatusResponse struct {
	Status *backend.SystemStatus `json:"status"`
	Error  string                `json:"error,omitempty"`
	Stats  monitor.Stats         `json:"stats"`
}

// Status returns the last polled status; polls once when nothing is cached yet
// or ?refresh=true is given.
// GET /api/monitor/status
func (h *MonitorHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.poller.Latest()
	if (status == nil && err == nil) || r.URL.Query().Get("refresh") == "true" {
		status, err = h.poller.Poll(r.Context())
		if status == nil {
			status, _ = h.poller.Latest()
		}
	}

	resp := StatusResponse{Status: status, Stats: h.poller.Stats()}
	if err != nil {
		resp.Error = backend.DetailOf(err, "시스템 상태를 불러오지 못했습니다.")
	}
	respondJSON(w, http.StatusOK, resp)
}

// Jobs lists manually triggerable jobs; errors yield an empty list
// GET /api/monitor/jobs
func (h *MonitorHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.poller.Jobs(r.Context()))
}

// Execute triggers a batch job
// POST /api/monitor/jobs/{id}/exec
func (h *MonitorHandler) Execute(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	res, err := h.poller.Execute(r.Context(), jobID)
	if err != nil {
		h.logger.WithError(err).WithField("job", jobID).Error("Failed to execute batch job")
		respondBackendError(w, err, "작업 실행에 실패했습니다.")
		return
	}

	respondJSON(w, http.StatusAccepted, res)
}
