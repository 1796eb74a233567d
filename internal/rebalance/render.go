package rebalance

import (
	"fmt"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
)

// Control kinds offered per suggestion row
const (
	ControlOrder = "order" // 단일 주문
	ControlGrid  = "grid"  // 분할(그리드) 주문
	ControlDaily = "daily" // 일별 예약 주문
)

// Control is one actionable affordance of a row
type Control struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
}

// Row is one rendered suggestion line
type Row struct {
	StockCode    string         `json:"stock_code"`
	StockName    string         `json:"stock_name"`
	Link         string         `json:"link,omitempty"`
	CurrentQty   int64          `json:"current_qty"`
	CurrentPrice float64        `json:"current_price"`
	CurrentValue float64        `json:"current_value"`
	TargetValue  float64        `json:"target_value"`
	StockWeight  *float64       `json:"stock_weight"` // nil → "-"
	AssetWeight  float64        `json:"asset_weight"`
	TargetWeight float64        `json:"target_weight"`
	DiffValue    float64        `json:"diff_value"`
	DiffLabel    string         `json:"diff_label"`
	SuggestedQty int64          `json:"suggested_qty"`
	Action       backend.Action `json:"action"`
	Controls     []Control      `json:"controls,omitempty"`
	StatusLabel  string         `json:"status_label,omitempty"`
}

// Suggestion returns the backend line the row was rendered from
func (r Row) Suggestion() backend.TradeSuggestion {
	return backend.TradeSuggestion{
		StockCode:    r.StockCode,
		StockName:    r.StockName,
		CurrentQty:   r.CurrentQty,
		CurrentPrice: r.CurrentPrice,
		CurrentValue: r.CurrentValue,
		TargetValue:  r.TargetValue,
		DiffValue:    r.DiffValue,
		SuggestedQty: r.SuggestedQty,
		Action:       r.Action,
	}
}

// StockURL links a stock code to its quote page
func StockURL(code string) string {
	return fmt.Sprintf("https://stock.naver.com/domestic/stock/%s/price", code)
}

// Render derives display weights and controls from a backend analysis.
// Only presentation math happens here; quantities come from the backend.
func Render(analysis *backend.RebalanceAnalysis) []Row {
	if analysis == nil {
		return []Row{}
	}

	stockEquity := analysis.TotalAsset - analysis.CurrentCash
	rows := make([]Row, 0, len(analysis.Items))

	for _, item := range analysis.Items {
		isCash := item.StockCode == backend.CashCode

		row := Row{
			StockCode:    item.StockCode,
			StockName:    item.StockName,
			CurrentQty:   item.CurrentQty,
			CurrentPrice: item.CurrentPrice,
			CurrentValue: item.CurrentValue,
			TargetValue:  item.TargetValue,
			DiffValue:    item.DiffValue,
			DiffLabel:    formatDiff(item.DiffValue),
			SuggestedQty: item.SuggestedQty,
			Action:       item.Action,
		}

		if !isCash {
			row.Link = StockURL(item.StockCode)
			if stockEquity > 0 {
				w := item.CurrentValue / stockEquity * 100
				row.StockWeight = &w
			}
		}
		if analysis.TotalAsset != 0 {
			row.AssetWeight = item.CurrentValue / analysis.TotalAsset * 100
			row.TargetWeight = item.TargetValue / analysis.TotalAsset * 100
		}

		switch item.Action {
		case backend.ActionBuy:
			row.Controls = tradeControls("매수", item.SuggestedQty)
		case backend.ActionSell:
			row.Controls = tradeControls("매도", item.SuggestedQty)
		case backend.ActionReserve:
			row.StatusLabel = "현금보유"
		default:
			row.StatusLabel = "유지"
		}

		rows = append(rows, row)
	}
	return rows
}

func tradeControls(verb string, qty int64) []Control {
	return []Control{
		{Kind: ControlOrder, Label: fmt.Sprintf("%s %s주", verb, groupDigits(qty))},
		{Kind: ControlGrid, Label: "분할 " + verb},
		{Kind: ControlDaily, Label: "일별 예약 " + verb},
	}
}

// formatDiff renders a signed won amount: +1,000원 / -500원 / 0원
func formatDiff(v float64) string {
	n := int64(v)
	switch {
	case n > 0:
		return "+" + groupDigits(n) + "원"
	case n < 0:
		return "-" + groupDigits(-n) + "원"
	default:
		return "0원"
	}
}

// groupDigits formats n with thousands separators
func groupDigits(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
