package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/lystzs/family-asset-manager/internal/account"
	"github.com/lystzs/family-asset-manager/internal/external/backend"
	"github.com/lystzs/family-asset-manager/internal/metrics"
	"github.com/lystzs/family-asset-manager/internal/order"
	"github.com/lystzs/family-asset-manager/pkg/logger"
)

// OrderHandler composes and submits manual, split and scheduled orders
// ⭐ SSOT: 주문 관련 API 핸들러는 이 구조체에서만
type OrderHandler struct {
	store     *account.Store
	client    *backend.Client
	metrics   *metrics.Registry
	stepDelay time.Duration
	logger    *logger.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(store *account.Store, client *backend.Client, reg *metrics.Registry, stepDelay time.Duration, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		store:     store,
		client:    client,
		metrics:   reg,
		stepDelay: stepDelay,
		logger:    log,
	}
}

// TicketRequest is a single manual order
type TicketRequest struct {
	AccountID     int64          `json:"account_id"`
	Ticker        string         `json:"ticker"`
	Action        backend.Action `json:"action"`
	Quantity      int64          `json:"quantity"`
	Price         float64        `json:"price"`
	PriceType     string         `json:"price_type"` // LIMIT | MARKET
	CurrentPrice  float64        `json:"current_price"`
	CurrentQty    int64          `json:"current_qty"`
	AvailableCash float64        `json:"available_cash"`
}

// Place submits one manual order
// POST /api/orders
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req TicketRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ticket := order.Ticket{
		AccountID:     req.AccountID,
		Ticker:        req.Ticker,
		Action:        req.Action,
		CurrentPrice:  req.CurrentPrice,
		CurrentQty:    req.CurrentQty,
		AvailableCash: req.AvailableCash,
	}
	if req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "수량을 입력하세요.")
		return
	}

	orderReq := ticket.Order(req.Quantity, req.Price, req.PriceType)
	res, err := h.client.PlaceOrder(r.Context(), orderReq)
	if err != nil {
		h.metrics.RecordOrder(orderReq.StrategyID, false)
		respondBackendError(w, err, "주문 전송에 실패했습니다.")
		return
	}
	h.metrics.RecordOrder(orderReq.StrategyID, res.Succeeded())

	respondJSON(w, http.StatusOK, res)
}

// GridPreviewRequest are the split composer inputs; zero values take the defaults
type GridPreviewRequest struct {
	TotalQty    int64          `json:"total_qty"`
	SplitCount  int            `json:"split_count"`
	PriceGapPct *float64       `json:"price_gap_pct"`
	StartPrice  float64        `json:"start_price"`
	Action      backend.Action `json:"action"`
}

func (req GridPreviewRequest) settings() order.GridSettings {
	g := order.GridSettings{
		TotalQty:    req.TotalQty,
		SplitCount:  req.SplitCount,
		PriceGapPct: order.DefaultPriceGapPct,
		StartPrice:  req.StartPrice,
		Action:      req.Action,
	}
	if g.SplitCount == 0 {
		g.SplitCount = order.DefaultSplitCount
	}
	if req.PriceGapPct != nil {
		g.PriceGapPct = *req.PriceGapPct
	}
	return g
}

// GridPreviewResponse lists the planned steps
type GridPreviewResponse struct {
	Settings order.GridSettings `json:"settings"`
	Steps    []order.GridStep   `json:"steps"`
	TotalQty int64              `json:"total_qty"`
}

// GridPreview plans a split order without submitting it
// POST /api/orders/grid/preview
func (h *OrderHandler) GridPreview(w http.ResponseWriter, r *http.Request) {
	var req GridPreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	g := req.settings()
	steps, err := order.PlanGrid(g)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, GridPreviewResponse{
		Settings: g,
		Steps:    steps,
		TotalQty: order.TotalQuantity(steps),
	})
}

// gridRunTimeout bounds a detached grid run
const gridRunTimeout = 10 * time.Minute

// GridExecuteRequest plans and submits a split order
type GridExecuteRequest struct {
	AccountID int64  `json:"account_id"`
	Ticker    string `json:"ticker"`
	GridPreviewRequest
}

// GridExecuteResponse is the per-step outcome
type GridExecuteResponse struct {
	*order.GridResult
	AutoCloseMs int64 `json:"auto_close_ms,omitempty"`
}

// GridExecute submits every step sequentially with the configured delay
// POST /api/orders/grid/execute
func (h *OrderHandler) GridExecute(w http.ResponseWriter, r *http.Request) {
	var req GridExecuteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.AccountID <= 0 || req.Ticker == "" {
		respondError(w, http.StatusBadRequest, "account_id and ticker are required")
		return
	}

	g := req.settings()
	steps, err := order.PlanGrid(g)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// 브라우저가 연결을 끊어도 모든 단계를 전송한다. 결과만 버려진다.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), gridRunTimeout)
	defer cancel()

	exec := order.NewGridExecutor(h.client, h.logger).
		WithDelay(h.stepDelay).
		OnStep(func(s order.GridStep) {
			h.metrics.RecordGridStep(string(g.Action), s.Status)
		})
	result := exec.Execute(ctx, req.AccountID, req.Ticker, g.Action, steps)
	if r.Context().Err() != nil {
		h.logger.WithAccount(req.AccountID).WithField("ticker", req.Ticker).Info("Grid finished after client disconnect")
	}
	h.metrics.RecordGridRun(result.AllSucceeded)

	resp := GridExecuteResponse{GridResult: result}
	if result.AllSucceeded {
		resp.AutoCloseMs = order.AutoCloseDelay.Milliseconds()
	}
	respondJSON(w, http.StatusOK, resp)
}

// DailyPreviewRequest are the daily composer inputs
type DailyPreviewRequest struct {
	Mode          backend.OrderMode `json:"order_mode"`
	TotalAmount   int64             `json:"total_amount"`
	TotalQuantity int64             `json:"total_quantity"`
	Period        int               `json:"period"`
	CurrentPrice  float64           `json:"current_price"`
}

// DailyPreview returns the advisory daily figures
// POST /api/orders/daily/preview
func (h *OrderHandler) DailyPreview(w http.ResponseWriter, r *http.Request) {
	var req DailyPreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Mode == backend.ModeQuantity {
		respondJSON(w, http.StatusOK, order.EstimateDailyQuantity(req.TotalQuantity, req.Period, req.CurrentPrice))
		return
	}
	respondJSON(w, http.StatusOK, order.EstimateDaily(req.TotalAmount, req.Period, req.CurrentPrice))
}

// Daily schedules a daily split order on the backend
// POST /api/orders/daily
func (h *OrderHandler) Daily(w http.ResponseWriter, r *http.Request) {
	var plan order.DailyPlan
	if err := decodeJSON(r, &plan); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := order.BuildSchedule(plan)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	scheduled, err := h.client.ScheduleOrder(r.Context(), req)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", plan.Ticker).Error("Failed to schedule daily order")
		respondBackendError(w, err, "예약 주문 등록에 실패했습니다.")
		return
	}

	respondJSON(w, http.StatusCreated, scheduled)
}

// ReviseRequest edits an open order
type ReviseRequest struct {
	AccountID int64               `json:"account_id"`
	Order     backend.BrokerOrder `json:"order"`
	Quantity  int64               `json:"quantity"`
	Price     float64             `json:"price"`
}

// ReviseResponse reports which broker call was made
type ReviseResponse struct {
	Kind   string               `json:"kind"`
	Result *backend.OrderResult `json:"result"`
}

// Revise turns an edit into a revise (price change) or partial cancel (qty decrease)
// POST /api/orders/revise
func (h *OrderHandler) Revise(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ReviseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rev, err := order.DecideRevision(req.AccountID, req.Order, req.Quantity, req.Price)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var res *backend.OrderResult
	switch rev.Kind {
	case order.RevisionRevise:
		res, err = h.client.ReviseOrder(ctx, *rev.Revise)
	default:
		res, err = h.client.CancelOrder(ctx, *rev.Cancel)
	}
	if err != nil {
		respondBackendError(w, err, "정정/취소 요청에 실패했습니다.")
		return
	}

	respondJSON(w, http.StatusOK, ReviseResponse{Kind: rev.Kind, Result: res})
}

// ScheduledRow is a scheduled order with its progress
type ScheduledRow struct {
	backend.ScheduledOrder
	Progress order.Progress `json:"progress"`
}

// Scheduled lists the account's scheduled daily orders
// GET /api/orders/scheduled[?account_id=]
func (h *OrderHandler) Scheduled(w http.ResponseWriter, r *http.Request) {
	acc, ok := requireAccount(w, r, h.store.Snapshot())
	if !ok {
		return
	}

	orders, err := h.client.ScheduledOrders(r.Context(), acc.ID)
	if err != nil {
		respondBackendError(w, err, "예약 주문을 불러오지 못했습니다.")
		return
	}

	rows := make([]ScheduledRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, ScheduledRow{ScheduledOrder: o, Progress: order.ScheduleProgress(o)})
	}
	respondJSON(w, http.StatusOK, rows)
}
