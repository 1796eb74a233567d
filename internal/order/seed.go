package order

import (
	"github.com/lystzs/family-asset-manager/internal/external/backend"
)

// PercentFill is the quantity one percent button fills in
type PercentFill struct {
	Percent  int   `json:"percent"`
	Quantity int64 `json:"quantity"`
}

// Seed prefills the trade modal opened from a holding or rebalance row
// (단일 주문 / 분할 주문 / 일별 예약 공통 초기값)
type Seed struct {
	Ticket   Ticket        `json:"ticket"`
	Quantity int64         `json:"quantity"`
	MaxQty   int64         `json:"max_qty"`
	Percents []PercentFill `json:"percents"`
	Grid     GridSettings  `json:"grid"`
}

// NewSeed builds the modal state for s. The suggested quantity is capped at what
// the ticket can trade; the grid starts from the same quantity.
func NewSeed(accountID int64, s backend.TradeSuggestion, availableCash float64) Seed {
	t := NewTicket(accountID, s, availableCash)
	max := t.MaxQty(s.CurrentPrice)

	qty := s.SuggestedQty
	if qty > max {
		qty = max
	}
	if qty < 0 {
		qty = 0
	}

	seed := Seed{
		Ticket:   t,
		Quantity: qty,
		MaxQty:   max,
		Percents: make([]PercentFill, 0, len(PercentButtons)),
		Grid:     DefaultGridSettings(s),
	}
	seed.Grid.TotalQty = qty
	for _, pct := range PercentButtons {
		seed.Percents = append(seed.Percents, PercentFill{Percent: pct, Quantity: t.QtyForPercent(pct, s.CurrentPrice)})
	}
	return seed
}
