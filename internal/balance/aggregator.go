package balance

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
	"github.com/lystzs/family-asset-manager/internal/metrics"
	"github.com/lystzs/family-asset-manager/pkg/logger"
)

// User-facing messages
const (
	MsgNoBalances    = "계좌 정보를 불러올 수 없습니다. API 설정을 확인해주세요."
	MsgSingleFailure = "잔고를 불러오지 못했습니다. 계좌 정보를 확인하세요."
)

// ErrNoBalances means every per-account fetch failed
var ErrNoBalances = errors.New(MsgNoBalances)

// Fetcher loads one account balance (backend.Client satisfies it)
type Fetcher interface {
	Balance(ctx context.Context, accountID int64) (*backend.Balance, error)
}

// Aggregator merges balances of several accounts into one snapshot
type Aggregator struct {
	fetcher Fetcher
	logger  *logger.Logger
	metrics *metrics.Registry
}

func NewAggregator(fetcher Fetcher, log *logger.Logger) *Aggregator {
	return &Aggregator{fetcher: fetcher, logger: log}
}

// WithMetrics counts per-account fetch outcomes
func (a *Aggregator) WithMetrics(reg *metrics.Registry) *Aggregator {
	a.metrics = reg
	return a
}

// Aggregate fetches every account concurrently and merges the successes.
// A failed account is logged and left out; only when all fail does it
// return ErrNoBalances.
func (a *Aggregator) Aggregate(ctx context.Context, accountIDs []int64) (*backend.Balance, error) {
	results := make([]*backend.Balance, len(accountIDs))

	var wg sync.WaitGroup
	for i, id := range accountIDs {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			bal, err := a.fetcher.Balance(ctx, id)
			a.metrics.RecordBalanceFetch(err == nil)
			if err != nil {
				a.logger.WithError(err).WithAccount(id).Warn("Balance fetch failed, excluded from aggregate")
				return
			}
			results[i] = bal
		}(i, id)
	}
	wg.Wait()

	valid := make([]*backend.Balance, 0, len(results))
	for _, b := range results {
		if b != nil {
			valid = append(valid, b)
		}
	}

	if len(valid) == 0 {
		a.logger.WithField("accounts", len(accountIDs)).Error("No balance could be fetched")
		return nil, ErrNoBalances
	}

	merged := Merge(valid)
	a.logger.WithFields(map[string]interface{}{
		"accounts":  len(accountIDs),
		"succeeded": len(valid),
		"holdings":  len(merged.Holdings),
	}).Debug("Balances aggregated")
	return merged, nil
}

// Merge sums summaries and merges holdings by stock code.
// Holdings keep first-encounter order; entries without a code are dropped.
func Merge(balances []*backend.Balance) *backend.Balance {
	var (
		stockEval, purchase, pnl, totalAsset float64
		deposit, settlement, orderable       float64
	)

	order := []string{}
	byCode := map[string]*backend.Holding{}

	for _, bal := range balances {
		if bal == nil {
			continue
		}

		s := bal.FirstSummary()
		stockEval += backend.ParseNumber(s.StockEvalAmt)
		purchase += backend.ParseNumber(s.PurchaseTotal)
		pnl += backend.ParseNumber(s.ProfitLossTotal)
		totalAsset += backend.ParseNumber(s.TotalAsset)
		deposit += backend.ParseNumber(s.Deposit)
		settlement += backend.ParseNumber(s.SettlementDeposit)
		orderable += backend.ParseNumber(s.Orderable)

		for _, h := range bal.Holdings {
			if h.Code == "" {
				continue
			}
			existing, ok := byCode[h.Code]
			if !ok {
				copied := h
				byCode[h.Code] = &copied
				order = append(order, h.Code)
				continue
			}
			mergeHolding(existing, h)
		}
	}

	holdings := make([]backend.Holding, 0, len(order))
	for _, code := range order {
		holdings = append(holdings, *byCode[code])
	}

	return &backend.Balance{
		Holdings: holdings,
		Summary: []backend.Summary{{
			StockEvalAmt:      formatAmount(stockEval),
			PurchaseTotal:     formatAmount(purchase),
			ProfitLossTotal:   formatAmount(pnl),
			TotalAsset:        formatAmount(totalAsset),
			Deposit:           formatAmount(deposit),
			SettlementDeposit: formatAmount(settlement),
			Orderable:         formatAmount(orderable),
		}},
	}
}

// mergeHolding adds h into existing and recomputes avg price and profit rate
func mergeHolding(existing *backend.Holding, h backend.Holding) {
	qty := asInt(existing.Quantity) + asInt(h.Quantity)
	purchase := asInt(existing.PurchaseAmt) + asInt(h.PurchaseAmt)
	eval := asInt(existing.EvalAmt) + asInt(h.EvalAmt)
	pnl := asInt(existing.ProfitLossAmt) + asInt(h.ProfitLossAmt)

	existing.Quantity = strconv.FormatInt(qty, 10)
	existing.PurchaseAmt = strconv.FormatInt(purchase, 10)
	existing.EvalAmt = strconv.FormatInt(eval, 10)
	existing.ProfitLossAmt = strconv.FormatInt(pnl, 10)

	if qty > 0 {
		existing.AvgPrice = strconv.FormatFloat(float64(purchase)/float64(qty), 'f', 0, 64)
	} else {
		existing.AvgPrice = "0"
	}

	if purchase > 0 {
		existing.ProfitRate = strconv.FormatFloat(float64(pnl)/float64(purchase)*100, 'f', 2, 64)
	} else {
		existing.ProfitRate = "0.00"
	}
}

// asInt truncates a broker numeric string to an integer
func asInt(s string) int64 {
	return int64(backend.ParseNumber(s))
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
