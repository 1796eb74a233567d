package rebalance

import (
	"errors"
	"math"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
)

// GateWarning is shown while the target total is not exactly 100
const GateWarning = "* 총 비중이 100%가 되어야 정확한 분석이 가능합니다."

var (
	ErrPercentageRange = errors.New("0에서 100 사이의 숫자를 입력해주세요.")
	ErrNoStockSelected = errors.New("종목을 선택해주세요.")
	ErrZeroPercentage  = errors.New("목표 비중은 0보다 커야 합니다.")
)

// TargetTotal sums the configured target percentages
func TargetTotal(entries []backend.TargetPortfolio) float64 {
	total := 0.0
	for _, e := range entries {
		total += e.TargetPercentage
	}
	return total
}

// CanAnalyze enables rebalance analysis only at exactly 100
func CanAnalyze(entries []backend.TargetPortfolio) bool {
	return TargetTotal(entries) == 100
}

// Gate is the analyze-button state
type Gate struct {
	Total   float64 `json:"total"`
	Enabled bool    `json:"enabled"`
	Warning string  `json:"warning,omitempty"`
}

// CheckGate evaluates the analysis trigger for entries
func CheckGate(entries []backend.TargetPortfolio) Gate {
	g := Gate{Total: TargetTotal(entries)}
	g.Enabled = g.Total == 100
	if !g.Enabled {
		g.Warning = GateWarning
	}
	return g
}

// ValidateTargetPercentage checks an edited percentage
func ValidateTargetPercentage(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 100 {
		return ErrPercentageRange
	}
	return nil
}

// ValidateNewTarget checks the add-entry form
func ValidateNewTarget(stock *backend.Stock, pct float64) error {
	if stock == nil || stock.Code == "" {
		return ErrNoStockSelected
	}
	if err := ValidateTargetPercentage(pct); err != nil {
		return err
	}
	if pct <= 0 {
		return ErrZeroPercentage
	}
	return nil
}

// CashTarget is the pseudo stock used for a cash weight
func CashTarget() backend.Stock {
	return backend.Stock{Code: backend.CashCode, Name: "현금", Market: "Virtual"}
}
