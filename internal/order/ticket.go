package order

import (
	"math"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
)

// Price types of a manual order
const (
	PriceLimit  = "LIMIT"
	PriceMarket = "MARKET"
)

// PercentButtons are the quick-fill ratios of the trade ticket
var PercentButtons = []int{10, 25, 50, 100}

// Ticket is a single manual order being composed
type Ticket struct {
	AccountID     int64          `json:"account_id"`
	Ticker        string         `json:"ticker"`
	StockName     string         `json:"stock_name"`
	Action        backend.Action `json:"action"`
	CurrentPrice  float64        `json:"current_price"`
	CurrentQty    int64          `json:"current_qty"`
	AvailableCash float64        `json:"available_cash"`
}

// NewTicket seeds a ticket from a rebalance suggestion
func NewTicket(accountID int64, s backend.TradeSuggestion, availableCash float64) Ticket {
	return Ticket{
		AccountID:     accountID,
		Ticker:        s.StockCode,
		StockName:     s.StockName,
		Action:        s.Action,
		CurrentPrice:  s.CurrentPrice,
		CurrentQty:    s.CurrentQty,
		AvailableCash: availableCash,
	}
}

// MaxQty is what the cash buys at price (BUY) or the holding quantity (SELL)
func (t Ticket) MaxQty(price float64) int64 {
	if t.Action == backend.ActionSell {
		return t.CurrentQty
	}
	if price <= 0 {
		price = 1
	}
	if t.AvailableCash <= 0 {
		return 0
	}
	return int64(math.Floor(t.AvailableCash / price))
}

// QtyForPercent fills the quantity from a percentage of MaxQty
func (t Ticket) QtyForPercent(pct int, price float64) int64 {
	max := t.MaxQty(price)
	switch {
	case pct >= 100:
		return max
	case pct <= 0:
		return 0
	}
	return int64(math.Floor(float64(max) * float64(pct) / 100))
}

// Order builds the request for qty at price. Market orders fall back to the
// current price as reference; the backend maps manual_market to a market order type.
func (t Ticket) Order(qty int64, price float64, priceType string) backend.OrderRequest {
	req := backend.OrderRequest{
		AccountID:  t.AccountID,
		Ticker:     t.Ticker,
		Quantity:   qty,
		Price:      price,
		Action:     t.Action,
		StrategyID: backend.StrategyManualLimit,
	}
	if priceType == PriceMarket {
		req.StrategyID = backend.StrategyManualMarket
		if req.Price <= 0 {
			req.Price = t.CurrentPrice
		}
	}
	return req
}
