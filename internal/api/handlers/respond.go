package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/lystzs/family-asset-manager/internal/account"
	"github.com/lystzs/family-asset-manager/internal/external/backend"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondBackendError passes the backend's detail through verbatim.
// Backend 4xx keep their status, client-side validation is a 400, anything else is a 502.
func respondBackendError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, backend.ErrInvalidRequest) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	status := http.StatusBadGateway
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		status = apiErr.StatusCode
	}
	respondError(w, status, backend.DetailOf(err, fallback))
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("empty request body")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// resolveAccount picks ?account_id= when given, else the session's selection.
// nil with no error means aggregate mode.
func resolveAccount(r *http.Request, snap account.Snapshot) (*backend.AccountWithUser, error) {
	raw := r.URL.Query().Get("account_id")
	if raw == "" {
		return snap.Selected, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid account_id: %s", raw)
	}
	for i := range snap.Accounts {
		if snap.Accounts[i].ID == id {
			acc := snap.Accounts[i]
			return &acc, nil
		}
	}
	return nil, errAccountNotFound
}

var errAccountNotFound = errors.New("account not found")

// respondAccountError answers 404 for an unknown account and 400 for a malformed id
func respondAccountError(w http.ResponseWriter, err error) {
	if errors.Is(err, errAccountNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondError(w, http.StatusBadRequest, err.Error())
}

// requireAccount is resolveAccount for views that need a single account
func requireAccount(w http.ResponseWriter, r *http.Request, snap account.Snapshot) (*backend.AccountWithUser, bool) {
	acc, err := resolveAccount(r, snap)
	switch {
	case err != nil:
		respondAccountError(w, err)
		return nil, false
	case acc == nil:
		respondError(w, http.StatusBadRequest, "account_id is required")
		return nil, false
	}
	return acc, true
}
