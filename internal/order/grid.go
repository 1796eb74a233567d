package order

import (
	"errors"
	"fmt"
	"math"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
)

// Step status
const (
	StatusPending = "PENDING"
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
	StatusSkipped = "SKIPPED"
)

// Grid defaults (분할 주문 기본값)
const (
	DefaultSplitCount  = 5
	DefaultPriceGapPct = 0.5
)

var (
	ErrInvalidQuantity   = errors.New("total quantity must be positive")
	ErrInvalidSplitCount = errors.New("split count must be positive")
	ErrInvalidPrice      = errors.New("start price must be positive")
	ErrInvalidGap        = errors.New("price gap must not be negative")
	ErrInvalidAction     = errors.New("action must be BUY or SELL")
)

// GridSettings are the user-editable inputs of a split order
type GridSettings struct {
	TotalQty    int64          `json:"total_qty"`
	SplitCount  int            `json:"split_count"`
	PriceGapPct float64        `json:"price_gap_pct"`
	StartPrice  float64        `json:"start_price"`
	Action      backend.Action `json:"action"`
}

// GridStep is one leg of a split order
type GridStep struct {
	Step     int     `json:"step"` // 1-based
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
	Status   string  `json:"status"`
	Msg      string  `json:"msg,omitempty"`
}

// DefaultGridSettings seeds the composer from a rebalance suggestion
func DefaultGridSettings(s backend.TradeSuggestion) GridSettings {
	return GridSettings{
		TotalQty:    s.SuggestedQty,
		SplitCount:  DefaultSplitCount,
		PriceGapPct: DefaultPriceGapPct,
		StartPrice:  s.CurrentPrice,
		Action:      s.Action,
	}
}

// Validate checks the settings before planning
func (g GridSettings) Validate() error {
	if g.TotalQty <= 0 {
		return ErrInvalidQuantity
	}
	if g.SplitCount <= 0 {
		return ErrInvalidSplitCount
	}
	if g.StartPrice <= 0 {
		return ErrInvalidPrice
	}
	if g.PriceGapPct < 0 || math.IsNaN(g.PriceGapPct) {
		return ErrInvalidGap
	}
	if g.Action != backend.ActionBuy && g.Action != backend.ActionSell {
		return ErrInvalidAction
	}
	return nil
}

// PlanGrid splits TotalQty into SplitCount steps.
// 나머지는 앞 단계부터 1주씩 배분, BUY는 가격 하향 / SELL은 상향.
func PlanGrid(g GridSettings) ([]GridStep, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grid settings: %w", err)
	}

	split := int64(g.SplitCount)
	baseQty := g.TotalQty / split
	remainder := g.TotalQty % split

	dir := -1.0
	if g.Action == backend.ActionSell {
		dir = 1.0
	}
	gap := g.PriceGapPct / 100

	steps := make([]GridStep, 0, g.SplitCount)
	for i := 0; i < g.SplitCount; i++ {
		qty := baseQty
		if int64(i) < remainder {
			qty++
		}
		steps = append(steps, GridStep{
			Step:     i + 1,
			Price:    stepPrice(g.StartPrice, dir, gap, i),
			Quantity: qty,
			Status:   StatusPending,
		})
	}
	return steps, nil
}

// stepPrice keeps every intermediate rounded to float64 so no fused multiply-add
// changes the floor result.
func stepPrice(start, dir, gap float64, i int) float64 {
	offset := float64(dir * gap * float64(i))
	factor := float64(1 + offset)
	return math.Floor(float64(start * factor))
}

// TotalQuantity sums step quantities
func TotalQuantity(steps []GridStep) int64 {
	var total int64
	for _, s := range steps {
		total += s.Quantity
	}
	return total
}
