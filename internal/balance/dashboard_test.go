package balance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
)

func TestSummarize(t *testing.T) {
	bal := &backend.Balance{
		Holdings: []backend.Holding{
			{Code: "005930", Name: "삼성전자", Quantity: "10", EvalAmt: "600000", CurrentPrice: "60000", ProfitRate: "-3.10"},
			{Code: "000660", Name: "SK하이닉스", Quantity: "2", EvalAmt: "400000", CurrentPrice: "200000"},
		},
		Summary: []backend.Summary{{
			StockEvalAmt:    "1000000",
			PurchaseTotal:   "800000",
			ProfitLossTotal: "200000",
			TotalAsset:      "2000000",
		}},
	}
	targets := []backend.TargetPortfolio{{StockCode: "005930", TargetPercentage: 40}}

	d := Summarize(bal, targets)

	assert.InDelta(t, 25.0, d.Metrics.ProfitRate, 1e-9)
	require.Len(t, d.Holdings, 2)

	assert.InDelta(t, 60.0, d.Holdings[0].StockWeight, 1e-9)
	assert.InDelta(t, 30.0, d.Holdings[0].AssetWeight, 1e-9)
	require.NotNil(t, d.Holdings[0].TargetWeight)
	assert.Equal(t, 40.0, *d.Holdings[0].TargetWeight)
	assert.Equal(t, -3.10, d.Holdings[0].ProfitRate)

	assert.Nil(t, d.Holdings[1].TargetWeight, "no target configured")
}

func TestSummarizeZeroDenominators(t *testing.T) {
	bal := &backend.Balance{
		Holdings: []backend.Holding{{Code: "005930", EvalAmt: "1000"}},
	}

	d := Summarize(bal, nil)
	assert.Zero(t, d.Metrics.ProfitRate)
	assert.Zero(t, d.Holdings[0].StockWeight)
	assert.Zero(t, d.Holdings[0].AssetWeight)
}

func TestSummarizeNil(t *testing.T) {
	d := Summarize(nil, nil)
	assert.NotNil(t, d.Holdings)
	assert.Empty(t, d.Holdings)
}

func TestHoldingSuggestion(t *testing.T) {
	row := HoldingRow{Code: "005930", Name: "삼성전자", Quantity: 7, CurrentPrice: 71000.9, EvalAmt: 497000}

	buy := row.Suggestion(backend.ActionBuy)
	assert.Equal(t, int64(0), buy.SuggestedQty)
	assert.Equal(t, 71000.0, buy.CurrentPrice)

	sell := row.Suggestion(backend.ActionSell)
	assert.Equal(t, int64(7), sell.SuggestedQty)
	assert.Equal(t, backend.ActionSell, sell.Action)
}
