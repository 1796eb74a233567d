package rebalance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
)

func TestRenderWeights(t *testing.T) {
	analysis := &backend.RebalanceAnalysis{
		TotalAsset:  1000000,
		CurrentCash: 200000,
		Items: []backend.TradeSuggestion{
			{StockCode: "005930", StockName: "삼성전자", CurrentValue: 400000, TargetValue: 500000, DiffValue: 100000, SuggestedQty: 1, Action: backend.ActionBuy},
			{StockCode: "000660", StockName: "SK하이닉스", CurrentValue: 400000, TargetValue: 300000, DiffValue: -100000, SuggestedQty: 1234, Action: backend.ActionSell},
			{StockCode: "CASH", StockName: "현금", CurrentValue: 200000, TargetValue: 200000, Action: backend.ActionReserve},
		},
	}

	rows := Render(analysis)
	require.Len(t, rows, 3)

	buy := rows[0]
	require.NotNil(t, buy.StockWeight)
	assert.InDelta(t, 50.0, *buy.StockWeight, 1e-9)
	assert.InDelta(t, 40.0, buy.AssetWeight, 1e-9)
	assert.InDelta(t, 50.0, buy.TargetWeight, 1e-9)
	assert.Equal(t, "+100,000원", buy.DiffLabel)
	require.Len(t, buy.Controls, 3)
	assert.Equal(t, ControlOrder, buy.Controls[0].Kind)
	assert.Equal(t, "매수 1주", buy.Controls[0].Label)
	assert.Equal(t, ControlGrid, buy.Controls[1].Kind)
	assert.Equal(t, ControlDaily, buy.Controls[2].Kind)
	assert.Equal(t, StockURL("005930"), buy.Link)

	sell := rows[1]
	assert.Equal(t, "-100,000원", sell.DiffLabel)
	assert.Equal(t, "매도 1,234주", sell.Controls[0].Label)

	cash := rows[2]
	assert.Nil(t, cash.StockWeight, "cash row has no stock weight")
	assert.InDelta(t, 20.0, cash.AssetWeight, 1e-9)
	assert.Empty(t, cash.Controls)
	assert.Equal(t, "현금보유", cash.StatusLabel)
	assert.Empty(t, cash.Link)
}

func TestRenderHoldAndZeroGuards(t *testing.T) {
	analysis := &backend.RebalanceAnalysis{
		TotalAsset:  0,
		CurrentCash: 0,
		Items: []backend.TradeSuggestion{
			{StockCode: "005930", CurrentValue: 0, Action: backend.ActionHold},
		},
	}

	rows := Render(analysis)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].StockWeight)
	assert.Zero(t, rows[0].AssetWeight)
	assert.Zero(t, rows[0].TargetWeight)
	assert.Equal(t, "유지", rows[0].StatusLabel)
	assert.Equal(t, "0원", rows[0].DiffLabel)
}

func TestRenderNil(t *testing.T) {
	assert.Empty(t, Render(nil))
}

func TestRowSuggestionRoundTrip(t *testing.T) {
	item := backend.TradeSuggestion{StockCode: "005930", StockName: "삼성전자", CurrentQty: 3, CurrentPrice: 70000, SuggestedQty: 2, Action: backend.ActionBuy}
	rows := Render(&backend.RebalanceAnalysis{TotalAsset: 1, Items: []backend.TradeSuggestion{item}})
	assert.Equal(t, item, rows[0].Suggestion())
}

func TestGroupDigits(t *testing.T) {
	assert.Equal(t, "0", groupDigits(0))
	assert.Equal(t, "999", groupDigits(999))
	assert.Equal(t, "1,000", groupDigits(1000))
	assert.Equal(t, "1,234,567", groupDigits(1234567))
	assert.Equal(t, "-12,345", groupDigits(-12345))
}
