package order

import (
	"errors"
	"fmt"
	"math"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
)

var (
	ErrInvalidAmount = errors.New("total amount must be positive")
	ErrInvalidPeriod = errors.New("period must be positive")
)

// DailyEstimate is the advisory preview of an AMOUNT-mode daily split.
// 실제 매일 주문 수량은 백엔드 스케줄러가 결정함.
type DailyEstimate struct {
	Period            int   `json:"period"`
	TotalAmount       int64 `json:"total_amount"`
	DailyAmount       int64 `json:"daily_amount"`
	EstimatedDailyQty int64 `json:"estimated_daily_qty"`
	EstimatedTotalQty int64 `json:"estimated_total_qty"`
}

// EstimateDaily computes floor(total/period) per day and the quantity that buys at currentPrice
func EstimateDaily(totalAmount int64, period int, currentPrice float64) DailyEstimate {
	if period <= 0 {
		period = 1
	}
	daily := totalAmount / int64(period)

	var qty int64
	if currentPrice > 0 {
		qty = int64(math.Floor(float64(daily) / currentPrice))
	}

	return DailyEstimate{
		Period:            period,
		TotalAmount:       totalAmount,
		DailyAmount:       daily,
		EstimatedDailyQty: qty,
		EstimatedTotalQty: qty * int64(period),
	}
}

// QuantityEstimate is the preview of a legacy QUANTITY-mode daily split
type QuantityEstimate struct {
	Period        int   `json:"period"`
	TotalQuantity int64 `json:"total_quantity"`
	DailyQuantity int64 `json:"daily_quantity"`
	DailyAmount   int64 `json:"daily_amount"`
}

// EstimateDailyQuantity rounds the daily quantity up so the total is covered within period days
func EstimateDailyQuantity(totalQty int64, period int, currentPrice float64) QuantityEstimate {
	if period <= 0 {
		period = 1
	}
	p := int64(period)
	daily := (totalQty + p - 1) / p
	if totalQty <= 0 {
		daily = 0
	}

	return QuantityEstimate{
		Period:        period,
		TotalQuantity: totalQty,
		DailyQuantity: daily,
		DailyAmount:   int64(math.Floor(float64(daily) * currentPrice)),
	}
}

// DailyPlan is the user input of the daily split composer
type DailyPlan struct {
	AccountID     int64             `json:"account_id"`
	Ticker        string            `json:"ticker"`
	StockName     string            `json:"stock_name"`
	Action        backend.Action    `json:"action"`
	Mode          backend.OrderMode `json:"order_mode"`
	Period        int               `json:"period"`
	TotalAmount   int64             `json:"total_amount,omitempty"`
	TotalQuantity int64             `json:"total_quantity,omitempty"`
	CurrentPrice  float64           `json:"current_price"`
}

// BuildSchedule turns a plan into the backend request.
// AMOUNT 모드는 total/daily_amount, QUANTITY 모드는 total/daily_quantity만 전달.
func BuildSchedule(p DailyPlan) (backend.ScheduleRequest, error) {
	if p.Period <= 0 {
		return backend.ScheduleRequest{}, ErrInvalidPeriod
	}
	if p.Action != backend.ActionBuy && p.Action != backend.ActionSell {
		return backend.ScheduleRequest{}, ErrInvalidAction
	}

	req := backend.ScheduleRequest{
		AccountID: p.AccountID,
		Ticker:    p.Ticker,
		StockName: p.StockName,
		Action:    p.Action,
	}

	switch p.Mode {
	case backend.ModeAmount:
		if p.TotalAmount <= 0 {
			return backend.ScheduleRequest{}, ErrInvalidAmount
		}
		est := EstimateDaily(p.TotalAmount, p.Period, p.CurrentPrice)
		if est.DailyAmount <= 0 {
			return backend.ScheduleRequest{}, fmt.Errorf("daily amount rounds to zero: %w", ErrInvalidAmount)
		}
		req.OrderMode = backend.ModeAmount
		req.TotalAmount = est.TotalAmount
		req.DailyAmount = est.DailyAmount
	case backend.ModeQuantity, "":
		if p.TotalQuantity <= 0 {
			return backend.ScheduleRequest{}, ErrInvalidQuantity
		}
		est := EstimateDailyQuantity(p.TotalQuantity, p.Period, p.CurrentPrice)
		req.OrderMode = backend.ModeQuantity
		req.TotalQuantity = est.TotalQuantity
		req.DailyQuantity = est.DailyQuantity
	default:
		return backend.ScheduleRequest{}, fmt.Errorf("unknown order mode %q", p.Mode)
	}

	return req, nil
}
