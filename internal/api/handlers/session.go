package handlers

import (
	"net/http"

	"github.com/lystzs/family-asset-manager/internal/account"
	"github.com/lystzs/family-asset-manager/pkg/logger"
)

// SessionHandler exposes the shared account selection
// ⭐ SSOT: 세션(선택 계좌) API 핸들러는 이 구조체에서만
type SessionHandler struct {
	store  *account.Store
	logger *logger.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(store *account.Store, log *logger.Logger) *SessionHandler {
	return &SessionHandler{store: store, logger: log}
}

// Get returns the current snapshot
// GET /api/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Snapshot())
}

// Refresh re-fetches the account list
// POST /api/session/refresh
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.store.Refresh(r.Context())
	respondJSON(w, http.StatusOK, h.store.Snapshot())
}

// SelectRequest switches the selection; a null account_id selects all accounts
type SelectRequest struct {
	AccountID *int64 `json:"account_id"`
}

// Select changes the selected account
// POST /api/session/select
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap := h.store.SelectAccount(req.AccountID)
	if req.AccountID != nil && snap.Selected == nil {
		h.logger.WithAccount(*req.AccountID).Warn("Unknown account selected, showing all accounts")
	}
	respondJSON(w, http.StatusOK, snap)
}
