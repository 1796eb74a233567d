package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/lystzs/family-asset-manager/internal/account"
	"github.com/lystzs/family-asset-manager/internal/balance"
	"github.com/lystzs/family-asset-manager/internal/external/backend"
	"github.com/lystzs/family-asset-manager/internal/order"
	"github.com/lystzs/family-asset-manager/pkg/logger"
)

// DashboardHandler serves the balance and asset history views
type DashboardHandler struct {
	store      *account.Store
	client     *backend.Client
	aggregator *balance.Aggregator
	logger     *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(store *account.Store, client *backend.Client, agg *balance.Aggregator, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		store:      store,
		client:     client,
		aggregator: agg,
		logger:     log,
	}
}

// BalanceResponse is the dashboard view
type BalanceResponse struct {
	Mode      string            `json:"mode"` // single | aggregate
	AccountID *int64            `json:"account_id,omitempty"`
	Dashboard balance.Dashboard `json:"dashboard"`
}

// Balance returns the selected account's balance or the aggregate of all accounts
// GET /api/dashboard/balance[?account_id=]
func (h *DashboardHandler) Balance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap := h.store.Snapshot()

	selected, err := resolveAccount(r, snap)
	if err != nil {
		respondAccountError(w, err)
		return
	}

	view := snap
	view.Selected = selected
	bal, err := h.aggregator.Load(ctx, view)
	if err != nil {
		respondError(w, http.StatusBadGateway, balance.ErrorMessage(err))
		return
	}

	resp := BalanceResponse{Mode: "aggregate"}
	var targets []backend.TargetPortfolio
	if selected != nil {
		id := selected.ID
		resp.Mode = "single"
		resp.AccountID = &id

		targets, err = h.client.Targets(ctx, id)
		switch {
		case backend.IsNotFound(err):
			targets = nil // 목표 비중 미설정
		case err != nil:
			h.logger.WithError(err).WithAccount(id).Warn("Failed to load targets for dashboard")
			targets = nil
		}
	}

	resp.Dashboard = balance.Summarize(bal, targets)
	respondJSON(w, http.StatusOK, resp)
}

// History returns daily asset history for the selection
// GET /api/dashboard/history[?account_id=]
func (h *DashboardHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	selected, err := resolveAccount(r, h.store.Snapshot())
	if err != nil {
		respondAccountError(w, err)
		return
	}

	var points []backend.AssetHistoryPoint
	if selected != nil {
		points, err = h.client.AccountHistory(ctx, selected.ID)
	} else {
		points, err = h.client.AggregateHistory(ctx)
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load asset history")
		respondBackendError(w, err, "자산 추이를 불러오지 못했습니다.")
		return
	}
	if points == nil {
		points = []backend.AssetHistoryPoint{}
	}

	respondJSON(w, http.StatusOK, points)
}

// HoldingSeed prefills the trade modal for one holding of the account
// GET /api/dashboard/holdings/{code}/seed?action=BUY|SELL[&account_id=]
func (h *DashboardHandler) HoldingSeed(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	acc, ok := requireAccount(w, r, snap)
	if !ok {
		return
	}

	action := backend.Action(strings.ToUpper(r.URL.Query().Get("action")))
	if action == "" {
		action = backend.ActionBuy
	}
	if action != backend.ActionBuy && action != backend.ActionSell {
		respondError(w, http.StatusBadRequest, "action must be BUY or SELL")
		return
	}

	view := snap
	view.Selected = acc
	bal, err := h.aggregator.Load(r.Context(), view)
	if err != nil {
		respondError(w, http.StatusBadGateway, balance.ErrorMessage(err))
		return
	}

	code := mux.Vars(r)["code"]
	dash := balance.Summarize(bal, nil)
	for _, row := range dash.Holdings {
		if row.Code == code {
			respondJSON(w, http.StatusOK, order.NewSeed(acc.ID, row.Suggestion(action), dash.Metrics.Orderable))
			return
		}
	}
	respondError(w, http.StatusNotFound, "보유 종목이 아닙니다.")
}
