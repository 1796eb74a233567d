package order

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
	"github.com/lystzs/family-asset-manager/pkg/logger"
)

type fakePlacer struct {
	mu       sync.Mutex
	requests []backend.OrderRequest
	results  map[int]*backend.OrderResult // by call index
	errs     map[int]error
}

func (f *fakePlacer) PlaceOrder(ctx context.Context, req backend.OrderRequest) (*backend.OrderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := len(f.requests)
	f.requests = append(f.requests, req)
	if err, ok := f.errs[idx]; ok {
		return nil, err
	}
	if r, ok := f.results[idx]; ok {
		return r, nil
	}
	return &backend.OrderResult{RtCd: "0", Msg1: "주문 전송 완료"}, nil
}

type recordingSleeper struct {
	delays []time.Duration
	after  func(n int) // called after each sleep with the sleep count
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	if s.after != nil {
		s.after(len(s.delays))
	}
	return ctx.Err()
}

func planned(t *testing.T, qty int64, split int) []GridStep {
	t.Helper()
	steps, err := PlanGrid(GridSettings{TotalQty: qty, SplitCount: split, PriceGapPct: 1, StartPrice: 10000, Action: backend.ActionBuy})
	require.NoError(t, err)
	return steps
}

func TestExecuteSequentialWithDelay(t *testing.T) {
	placer := &fakePlacer{}
	sleeper := &recordingSleeper{}
	var seen []int

	exec := NewGridExecutor(placer, logger.Nop()).
		WithSleeper(sleeper).
		OnStep(func(s GridStep) { seen = append(seen, s.Step) })

	res := exec.Execute(context.Background(), 7, "005930", backend.ActionBuy, planned(t, 17, 5))

	assert.True(t, res.AllSucceeded)
	assert.Equal(t, 5, res.Succeeded)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
	assert.Len(t, sleeper.delays, 5)
	for _, d := range sleeper.delays {
		assert.Equal(t, DefaultStepDelay, d)
	}

	require.Len(t, placer.requests, 5)
	assert.Equal(t, backend.OrderRequest{
		AccountID:  7,
		Ticker:     "005930",
		Quantity:   4,
		Price:      9900,
		Action:     backend.ActionBuy,
		StrategyID: backend.StrategyManualGrid,
	}, placer.requests[1])
	assert.Equal(t, "주문 전송 완료", res.Steps[0].Msg)
}

func TestExecuteContinuesAfterFailures(t *testing.T) {
	placer := &fakePlacer{
		results: map[int]*backend.OrderResult{1: {RtCd: "1", Msg1: "주문가능금액을 초과 했습니다"}},
		errs:    map[int]error{2: &backend.APIError{StatusCode: http.StatusBadGateway, Detail: "upstream timeout"}},
	}

	exec := NewGridExecutor(placer, logger.Nop()).WithSleeper(&recordingSleeper{})
	res := exec.Execute(context.Background(), 1, "000660", backend.ActionBuy, planned(t, 4, 4))

	assert.Len(t, placer.requests, 4, "every step is attempted")
	assert.False(t, res.AllSucceeded)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 2, res.Failed)

	assert.Equal(t, StatusSuccess, res.Steps[0].Status)
	assert.Equal(t, StatusFailed, res.Steps[1].Status)
	assert.Equal(t, "주문가능금액을 초과 했습니다", res.Steps[1].Msg)
	assert.Equal(t, StatusFailed, res.Steps[2].Status)
	assert.Equal(t, "upstream timeout", res.Steps[2].Msg)
	assert.Equal(t, StatusSuccess, res.Steps[3].Status)
}

func TestExecuteTransportErrorMessage(t *testing.T) {
	placer := &fakePlacer{errs: map[int]error{0: errors.New("connection refused")}}

	res := NewGridExecutor(placer, logger.Nop()).
		WithSleeper(&recordingSleeper{}).
		Execute(context.Background(), 1, "035720", backend.ActionSell, planned(t, 1, 1))

	assert.Equal(t, StatusFailed, res.Steps[0].Status)
	assert.Equal(t, "connection refused", res.Steps[0].Msg)
}

func TestExecuteCancelledSkipsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	placer := &fakePlacer{}
	sleeper := &recordingSleeper{after: func(n int) {
		if n == 2 {
			cancel()
		}
	}}

	res := NewGridExecutor(placer, logger.Nop()).
		WithSleeper(sleeper).
		Execute(ctx, 1, "005930", backend.ActionBuy, planned(t, 5, 5))

	assert.Len(t, placer.requests, 2)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 3, res.Skipped)
	assert.False(t, res.AllSucceeded)
	for _, s := range res.Steps[2:] {
		assert.Equal(t, StatusSkipped, s.Status)
	}
}

func TestExecuteZeroQuantityStepSkipped(t *testing.T) {
	placer := &fakePlacer{}
	res := NewGridExecutor(placer, logger.Nop()).
		WithSleeper(&recordingSleeper{}).
		Execute(context.Background(), 1, "005930", backend.ActionBuy, planned(t, 2, 3))

	assert.Len(t, placer.requests, 2)
	assert.Equal(t, StatusSkipped, res.Steps[2].Status)
	assert.False(t, res.AllSucceeded)
}

func TestExecuteDoesNotMutateInput(t *testing.T) {
	steps := planned(t, 3, 3)
	NewGridExecutor(&fakePlacer{}, logger.Nop()).
		WithSleeper(&recordingSleeper{}).
		Execute(context.Background(), 1, "005930", backend.ActionBuy, steps)

	for _, s := range steps {
		assert.Equal(t, StatusPending, s.Status)
	}
}

func TestTimerSleeper(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := TimerSleeper{}.Sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	assert.NoError(t, TimerSleeper{}.Sleep(context.Background(), time.Millisecond))
}
