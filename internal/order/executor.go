package order

import (
	"context"
	"time"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
	"github.com/lystzs/family-asset-manager/pkg/logger"
)

// Executor timings
const (
	DefaultStepDelay = 200 * time.Millisecond
	AutoCloseDelay   = time.Second // 전체 성공 시 닫기 전 대기
)

// Placer submits a single order
type Placer interface {
	PlaceOrder(ctx context.Context, req backend.OrderRequest) (*backend.OrderResult, error)
}

// Sleeper is the inter-step delay primitive
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// TimerSleeper waits on a real timer, returning early if ctx is done
type TimerSleeper struct{}

// Sleep implements Sleeper
func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// StepFunc observes each step once it has a final status
type StepFunc func(step GridStep)

// GridResult is the outcome of a split order run
type GridResult struct {
	Steps        []GridStep `json:"steps"`
	Succeeded    int        `json:"succeeded"`
	Failed       int        `json:"failed"`
	Skipped      int        `json:"skipped"`
	AllSucceeded bool       `json:"all_succeeded"`
}

// GridExecutor submits grid steps strictly one after another
// ⭐ SSOT: 분할 주문 실행은 여기서만
type GridExecutor struct {
	placer  Placer
	sleeper Sleeper
	delay   time.Duration
	onStep  StepFunc
	logger  *logger.Logger
}

// NewGridExecutor creates an executor with the default 200ms step delay
func NewGridExecutor(placer Placer, log *logger.Logger) *GridExecutor {
	return &GridExecutor{
		placer:  placer,
		sleeper: TimerSleeper{},
		delay:   DefaultStepDelay,
		logger:  log,
	}
}

// WithDelay overrides the inter-step delay
func (e *GridExecutor) WithDelay(d time.Duration) *GridExecutor {
	e.delay = d
	return e
}

// WithSleeper overrides the delay primitive
func (e *GridExecutor) WithSleeper(s Sleeper) *GridExecutor {
	e.sleeper = s
	return e
}

// OnStep registers a progress callback
func (e *GridExecutor) OnStep(fn StepFunc) *GridExecutor {
	e.onStep = fn
	return e
}

// Execute submits every step in order. A failed step never aborts the run;
// only a cancelled ctx does, and the remaining steps are marked SKIPPED.
// Orders already placed are not rolled back.
func (e *GridExecutor) Execute(ctx context.Context, accountID int64, ticker string, action backend.Action, steps []GridStep) *GridResult {
	out := make([]GridStep, len(steps))
	copy(out, steps)

	cancelled := false
	for i := range out {
		step := &out[i]

		if cancelled || ctx.Err() != nil {
			cancelled = true
			step.Status = StatusSkipped
			step.Msg = "cancelled"
			e.notify(*step)
			continue
		}

		if step.Quantity <= 0 {
			step.Status = StatusSkipped
			step.Msg = "수량 0"
			e.notify(*step)
			continue
		}

		e.submit(ctx, accountID, ticker, action, step)
		e.notify(*step)

		if err := e.sleeper.Sleep(ctx, e.delay); err != nil {
			cancelled = true
		}
	}

	result := summarize(out)
	e.logger.WithFields(map[string]interface{}{
		"account_id": accountID,
		"ticker":     ticker,
		"action":     action,
		"steps":      len(out),
		"succeeded":  result.Succeeded,
		"failed":     result.Failed,
		"skipped":    result.Skipped,
	}).Info("Grid order finished")

	return result
}

func (e *GridExecutor) submit(ctx context.Context, accountID int64, ticker string, action backend.Action, step *GridStep) {
	res, err := e.placer.PlaceOrder(ctx, backend.OrderRequest{
		AccountID:  accountID,
		Ticker:     ticker,
		Quantity:   step.Quantity,
		Price:      step.Price,
		Action:     action,
		StrategyID: backend.StrategyManualGrid,
	})
	if err != nil {
		step.Status = StatusFailed
		step.Msg = backend.DetailOf(err, "")
		e.logger.WithFields(map[string]interface{}{
			"step":  step.Step,
			"price": step.Price,
			"qty":   step.Quantity,
		}).WithError(err).Warn("Grid step failed")
		return
	}

	step.Msg = res.Msg1
	if res.Succeeded() {
		step.Status = StatusSuccess
	} else {
		step.Status = StatusFailed
	}
}

func (e *GridExecutor) notify(step GridStep) {
	if e.onStep != nil {
		e.onStep(step)
	}
}

func summarize(steps []GridStep) *GridResult {
	r := &GridResult{Steps: steps}
	for _, s := range steps {
		switch s.Status {
		case StatusSuccess:
			r.Succeeded++
		case StatusFailed:
			r.Failed++
		default:
			r.Skipped++
		}
	}
	r.AllSucceeded = len(steps) > 0 && r.Succeeded == len(steps)
	return r
}
