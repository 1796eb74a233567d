package order

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
)

func quantities(steps []GridStep) []int64 {
	out := make([]int64, len(steps))
	for i, s := range steps {
		out[i] = s.Quantity
	}
	return out
}

func prices(steps []GridStep) []float64 {
	out := make([]float64, len(steps))
	for i, s := range steps {
		out[i] = s.Price
	}
	return out
}

func TestPlanGridRemainderGoesToEarliestSteps(t *testing.T) {
	steps, err := PlanGrid(GridSettings{
		TotalQty:    17,
		SplitCount:  5,
		PriceGapPct: 0.5,
		StartPrice:  10000,
		Action:      backend.ActionBuy,
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{4, 4, 3, 3, 3}, quantities(steps))
	assert.Equal(t, int64(17), TotalQuantity(steps))
	for i, s := range steps {
		assert.Equal(t, i+1, s.Step)
		assert.Equal(t, StatusPending, s.Status)
	}
}

func TestPlanGridPriceStepping(t *testing.T) {
	tests := []struct {
		name   string
		action backend.Action
		start  float64
		gap    float64
		split  int
		want   []float64
	}{
		{"buy descends", backend.ActionBuy, 10000, 1, 3, []float64{10000, 9900, 9800}},
		{"sell ascends", backend.ActionSell, 10000, 1, 3, []float64{10000, 10100, 10200}},
		{"buy half percent", backend.ActionBuy, 10000, 0.5, 5, []float64{10000, 9950, 9900, 9850, 9800}},
		{"buy floors", backend.ActionBuy, 71000, 0.5, 5, []float64{71000, 70645, 70290, 69935, 69580}},
		{"zero gap", backend.ActionSell, 5000, 0, 3, []float64{5000, 5000, 5000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps, err := PlanGrid(GridSettings{
				TotalQty:    30,
				SplitCount:  tt.split,
				PriceGapPct: tt.gap,
				StartPrice:  tt.start,
				Action:      tt.action,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, prices(steps))
		})
	}
}

func TestPlanGridMoreStepsThanShares(t *testing.T) {
	steps, err := PlanGrid(GridSettings{TotalQty: 2, SplitCount: 4, StartPrice: 1000, Action: backend.ActionSell})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1, 0, 0}, quantities(steps))
}

func TestPlanGridValidation(t *testing.T) {
	valid := GridSettings{TotalQty: 10, SplitCount: 5, PriceGapPct: 0.5, StartPrice: 1000, Action: backend.ActionBuy}

	tests := []struct {
		name   string
		mutate func(g *GridSettings)
		want   error
	}{
		{"zero qty", func(g *GridSettings) { g.TotalQty = 0 }, ErrInvalidQuantity},
		{"zero split", func(g *GridSettings) { g.SplitCount = 0 }, ErrInvalidSplitCount},
		{"zero price", func(g *GridSettings) { g.StartPrice = 0 }, ErrInvalidPrice},
		{"negative gap", func(g *GridSettings) { g.PriceGapPct = -1 }, ErrInvalidGap},
		{"hold action", func(g *GridSettings) { g.Action = backend.ActionHold }, ErrInvalidAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := valid
			tt.mutate(&g)
			_, err := PlanGrid(g)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestDefaultGridSettings(t *testing.T) {
	g := DefaultGridSettings(backend.TradeSuggestion{
		StockCode:    "005930",
		CurrentPrice: 71000,
		SuggestedQty: 12,
		Action:       backend.ActionSell,
	})

	assert.Equal(t, GridSettings{
		TotalQty:    12,
		SplitCount:  DefaultSplitCount,
		PriceGapPct: DefaultPriceGapPct,
		StartPrice:  71000,
		Action:      backend.ActionSell,
	}, g)
}
