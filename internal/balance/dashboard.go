package balance

import (
	"github.com/lystzs/family-asset-manager/internal/external/backend"
)

// Metrics are the dashboard summary cards
type Metrics struct {
	StockValuation    float64 `json:"stock_valuation"`
	PurchaseTotal     float64 `json:"purchase_total"`
	ProfitLossTotal   float64 `json:"profit_loss_total"`
	ProfitRate        float64 `json:"profit_rate"`
	TotalAsset        float64 `json:"total_asset"`
	Deposit           float64 `json:"deposit"`
	SettlementDeposit float64 `json:"settlement_deposit"` // D+2
	Orderable         float64 `json:"orderable"`
}

// HoldingRow is one line of the holdings table
type HoldingRow struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	Quantity      int64    `json:"quantity"`
	AvgPrice      float64  `json:"avg_price"`
	CurrentPrice  float64  `json:"current_price"`
	DayChangeRate float64  `json:"day_change_rate"`
	PurchaseAmt   float64  `json:"purchase_amount"`
	EvalAmt       float64  `json:"eval_amount"`
	ProfitLoss    float64  `json:"profit_loss"`
	ProfitRate    float64  `json:"profit_rate"`
	StockWeight   float64  `json:"stock_weight"` // 주식 내 비중
	AssetWeight   float64  `json:"asset_weight"` // 총자산 대비 비중
	TargetWeight  *float64 `json:"target_weight"` // nil = 목표 미설정
}

// Dashboard is the full dashboard view model
type Dashboard struct {
	Metrics  Metrics      `json:"metrics"`
	Holdings []HoldingRow `json:"holdings"`
}

// Summarize derives metrics and weighted holding rows. targets are the
// selected account's entries; pass nil in aggregate mode.
func Summarize(bal *backend.Balance, targets []backend.TargetPortfolio) Dashboard {
	if bal == nil {
		return Dashboard{Holdings: []HoldingRow{}}
	}

	s := bal.FirstSummary()
	m := Metrics{
		StockValuation:    backend.ParseNumber(s.StockEvalAmt),
		PurchaseTotal:     backend.ParseNumber(s.PurchaseTotal),
		ProfitLossTotal:   backend.ParseNumber(s.ProfitLossTotal),
		TotalAsset:        backend.ParseNumber(s.TotalAsset),
		Deposit:           backend.ParseNumber(s.Deposit),
		SettlementDeposit: backend.ParseNumber(s.SettlementDeposit),
		Orderable:         backend.ParseNumber(s.Orderable),
	}
	if m.PurchaseTotal > 0 {
		m.ProfitRate = m.ProfitLossTotal / m.PurchaseTotal * 100
	}

	targetByCode := make(map[string]float64, len(targets))
	for _, t := range targets {
		targetByCode[t.StockCode] = t.TargetPercentage
	}

	rows := make([]HoldingRow, 0, len(bal.Holdings))
	for _, h := range bal.Holdings {
		row := HoldingRow{
			Code:          h.Code,
			Name:          h.Name,
			Quantity:      asInt(h.Quantity),
			AvgPrice:      backend.ParseNumber(h.AvgPrice),
			CurrentPrice:  backend.ParseNumber(h.CurrentPrice),
			DayChangeRate: backend.ParseNumber(h.DayChangeRate),
			PurchaseAmt:   backend.ParseNumber(h.PurchaseAmt),
			EvalAmt:       backend.ParseNumber(h.EvalAmt),
			ProfitLoss:    backend.ParseNumber(h.ProfitLossAmt),
			ProfitRate:    backend.ParseNumber(h.ProfitRate),
		}
		if m.StockValuation > 0 {
			row.StockWeight = row.EvalAmt / m.StockValuation * 100
		}
		if m.TotalAsset > 0 {
			row.AssetWeight = row.EvalAmt / m.TotalAsset * 100
		}
		if pct, ok := targetByCode[h.Code]; ok {
			tw := pct
			row.TargetWeight = &tw
		}
		rows = append(rows, row)
	}

	return Dashboard{Metrics: m, Holdings: rows}
}

// Suggestion builds the trade-ticket seed for a holding.
// BUY starts at 0 shares, SELL at the full holding.
func (r HoldingRow) Suggestion(action backend.Action) backend.TradeSuggestion {
	suggested := int64(0)
	if action == backend.ActionSell {
		suggested = r.Quantity
	}
	return backend.TradeSuggestion{
		StockCode:    r.Code,
		StockName:    r.Name,
		CurrentQty:   r.Quantity,
		CurrentPrice: float64(int64(r.CurrentPrice)),
		CurrentValue: float64(int64(r.EvalAmt)),
		SuggestedQty: suggested,
		Action:       action,
	}
}
