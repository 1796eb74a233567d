package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lystzs/family-asset-manager/internal/account"
	"github.com/lystzs/family-asset-manager/internal/external/backend"
	"github.com/lystzs/family-asset-manager/internal/order"
	"github.com/lystzs/family-asset-manager/internal/rebalance"
	"github.com/lystzs/family-asset-manager/pkg/logger"
)

// PortfolioHandler serves target portfolio and rebalance views
type PortfolioHandler struct {
	store  *account.Store
	client *backend.Client
	logger *logger.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(store *account.Store, client *backend.Client, log *logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{store: store, client: client, logger: log}
}

// TargetsResponse lists targets with the analyze gate
type TargetsResponse struct {
	AccountID int64                     `json:"account_id"`
	Targets   []backend.TargetPortfolio `json:"targets"`
	Gate      rebalance.Gate            `json:"gate"`
}

// Targets returns the account's target portfolio
// GET /api/portfolio/targets[?account_id=]
func (h *PortfolioHandler) Targets(w http.ResponseWriter, r *http.Request) {
	acc, ok := requireAccount(w, r, h.store.Snapshot())
	if !ok {
		return
	}

	targets, err := h.client.Targets(r.Context(), acc.ID)
	if err != nil {
		h.logger.WithError(err).WithAccount(acc.ID).Error("Failed to load targets")
		respondBackendError(w, err, "목표 포트폴리오를 불러오지 못했습니다.")
		return
	}
	if targets == nil {
		targets = []backend.TargetPortfolio{}
	}

	respondJSON(w, http.StatusOK, TargetsResponse{
		AccountID: acc.ID,
		Targets:   targets,
		Gate:      rebalance.CheckGate(targets),
	})
}

// RebalanceResponse is the rendered rebalance table
type RebalanceResponse struct {
	AccountID   int64           `json:"account_id"`
	TotalAsset  float64         `json:"total_asset"`
	CurrentCash float64         `json:"current_cash"`
	Rows        []rebalance.Row `json:"rows"`
	Gate        rebalance.Gate  `json:"gate"`
}

// Rebalance runs the backend analysis once the targets total exactly 100%
// GET /api/portfolio/rebalance[?account_id=]
func (h *PortfolioHandler) Rebalance(w http.ResponseWriter, r *http.Request) {
	acc, analysis, gate, ok := h.analyze(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, RebalanceResponse{
		AccountID:   acc.ID,
		TotalAsset:  analysis.TotalAsset,
		CurrentCash: analysis.CurrentCash,
		Rows:        rebalance.Render(analysis),
		Gate:        gate,
	})
}

// RebalanceSeed prefills the trade modal from one BUY/SELL suggestion row
// GET /api/portfolio/rebalance/{code}/seed[?account_id=]
func (h *PortfolioHandler) RebalanceSeed(w http.ResponseWriter, r *http.Request) {
	acc, analysis, _, ok := h.analyze(w, r)
	if !ok {
		return
	}

	code := mux.Vars(r)["code"]
	for _, row := range rebalance.Render(analysis) {
		if row.StockCode != code {
			continue
		}
		if row.Action != backend.ActionBuy && row.Action != backend.ActionSell {
			respondError(w, http.StatusBadRequest, "매수/매도 제안이 아닙니다.")
			return
		}
		respondJSON(w, http.StatusOK, order.NewSeed(acc.ID, row.Suggestion(), analysis.CurrentCash))
		return
	}
	respondError(w, http.StatusNotFound, "리밸런싱 대상 종목이 아닙니다.")
}

// analyze resolves the account, checks the gate and fetches the analysis.
// It writes the error response itself and reports ok=false.
func (h *PortfolioHandler) analyze(w http.ResponseWriter, r *http.Request) (*backend.AccountWithUser, *backend.RebalanceAnalysis, rebalance.Gate, bool) {
	ctx := r.Context()
	acc, ok := requireAccount(w, r, h.store.Snapshot())
	if !ok {
		return nil, nil, rebalance.Gate{}, false
	}

	targets, err := h.client.Targets(ctx, acc.ID)
	if err != nil {
		respondBackendError(w, err, "목표 포트폴리오를 불러오지 못했습니다.")
		return nil, nil, rebalance.Gate{}, false
	}
	gate := rebalance.CheckGate(targets)
	if !gate.Enabled {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error": gate.Warning,
			"gate":  gate,
		})
		return nil, nil, gate, false
	}

	analysis, err := h.client.AnalyzeRebalance(ctx, acc.UserID, acc.ID)
	if err != nil {
		h.logger.WithError(err).WithAccount(acc.ID).Error("Rebalance analysis failed")
		respondBackendError(w, err, "리밸런싱 분석에 실패했습니다.")
		return nil, nil, gate, false
	}
	return acc, analysis, gate, true
}
