package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
	"github.com/lystzs/family-asset-manager/internal/metrics"
	"github.com/lystzs/family-asset-manager/pkg/logger"
)

// Defaults
const (
	DefaultInterval     = 10 * time.Second
	DefaultRefreshDelay = 2 * time.Second // 배치 실행 후 상태 재조회까지 대기
)

// Source is the backend surface the monitor needs
type Source interface {
	SystemStatus(ctx context.Context) (*backend.SystemStatus, error)
	BatchJobs(ctx context.Context) ([]backend.BatchJob, error)
	ExecuteBatchJob(ctx context.Context, jobID string) (map[string]interface{}, error)
}

// StatusPoller polls GET /system/status on a fixed interval.
// No backoff or jitter: a failed poll is logged and retried on the next tick.
// ⭐ SSOT: 시스템 상태 폴링은 여기서만
type StatusPoller struct {
	source       Source
	logger       *logger.Logger
	metrics      *metrics.Registry
	interval     time.Duration
	refreshDelay time.Duration

	mu      sync.RWMutex
	cron    *cron.Cron
	history *History
	latest  *backend.SystemStatus
	lastErr error
	refresh *time.Timer // 대기 중인 실행 후 재조회 (최신 1개만)
	stopped bool
}

// NewStatusPoller creates a poller; interval <= 0 uses the 10s default
func NewStatusPoller(source Source, interval time.Duration, log *logger.Logger) *StatusPoller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &StatusPoller{
		source:       source,
		logger:       log,
		interval:     interval,
		refreshDelay: DefaultRefreshDelay,
		history:      &History{},
	}
}

// WithMetrics records poll outcomes
func (p *StatusPoller) WithMetrics(reg *metrics.Registry) *StatusPoller {
	p.metrics = reg
	return p
}

// WithRefreshDelay overrides the delay between a job trigger and the status refresh
func (p *StatusPoller) WithRefreshDelay(d time.Duration) *StatusPoller {
	p.refreshDelay = d
	return p
}

// Schedule returns the cron expression used while running
func (p *StatusPoller) Schedule() string {
	return "@every " + p.interval.String()
}

// Start polls immediately then on every tick until Stop
func (p *StatusPoller) Start() error {
	p.mu.Lock()
	if p.cron != nil {
		p.mu.Unlock()
		return fmt.Errorf("status poller already running")
	}

	c := cron.New()
	if _, err := c.AddFunc(p.Schedule(), func() { p.Poll(context.Background()) }); err != nil {
		p.mu.Unlock()
		return fmt.Errorf("failed to schedule status poll: %w", err)
	}
	p.cron = c
	p.stopped = false
	p.mu.Unlock()

	p.logger.WithField("schedule", p.Schedule()).Info("Starting status poller")
	go p.Poll(context.Background())
	c.Start()
	return nil
}

// Stop clears the schedule and any pending refresh
func (p *StatusPoller) Stop() {
	p.mu.Lock()
	c := p.cron
	p.cron = nil
	p.stopped = true
	if p.refresh != nil {
		p.refresh.Stop()
		p.refresh = nil
	}
	p.mu.Unlock()

	if c == nil {
		return
	}
	ctx := c.Stop()
	<-ctx.Done()
	p.logger.Info("Status poller stopped")
}

// Running reports whether the schedule is active
func (p *StatusPoller) Running() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cron != nil
}

// Poll fetches the status once and records the result
func (p *StatusPoller) Poll(ctx context.Context) (*backend.SystemStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	start := time.Now()
	status, err := p.source.SystemStatus(ctx)
	end := time.Now()

	result := PollResult{
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
		Success:   err == nil,
		Status:    status,
	}
	if err != nil {
		result.Error = err.Error()
		p.logger.WithError(err).Warn("Failed to poll system status")
	}
	p.metrics.RecordStatusPoll(err == nil)

	p.mu.Lock()
	p.history.Add(result)
	if err == nil {
		p.latest = status
	}
	p.lastErr = err
	p.mu.Unlock()

	return status, err
}

// Latest returns the last successful status and the error of the last poll
func (p *StatusPoller) Latest() (*backend.SystemStatus, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest, p.lastErr
}

// History returns the latest n poll results
func (p *StatusPoller) History(n int) []PollResult {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.history.Latest(n)
}

// Stats summarizes the poll history
func (p *StatusPoller) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	failed := p.history.Failed()
	stats := Stats{
		Schedule:     p.Schedule(),
		TotalPolls:   len(p.history.Results),
		FailureCount: len(failed),
		SuccessRate:  p.history.SuccessRate(),
	}
	for i := len(p.history.Results) - 1; i >= 0; i-- {
		r := p.history.Results[i]
		t := r.StartTime
		if stats.LastPoll == nil {
			stats.LastPoll = &t
		}
		if r.Success && stats.LastSuccess == nil {
			stats.LastSuccess = &t
		}
		if !r.Success && stats.LastFailure == nil {
			stats.LastFailure = &t
		}
	}
	return stats
}

// Jobs lists manually triggerable batch jobs. Errors are logged and yield an empty list.
func (p *StatusPoller) Jobs(ctx context.Context) []backend.BatchJob {
	jobs, err := p.source.BatchJobs(ctx)
	if err != nil {
		p.logger.WithError(err).Warn("Failed to fetch batch jobs")
		return []backend.BatchJob{}
	}
	if jobs == nil {
		return []backend.BatchJob{}
	}
	return jobs
}

// Execute triggers a batch job and refreshes the status after the refresh delay.
// A newer trigger replaces a pending refresh; after Stop no refresh is scheduled.
func (p *StatusPoller) Execute(ctx context.Context, jobID string) (map[string]interface{}, error) {
	res, err := p.source.ExecuteBatchJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute job %s: %w", jobID, err)
	}

	p.logger.WithField("job", jobID).Info("Batch job triggered")
	p.scheduleRefresh()

	return res, nil
}

func (p *StatusPoller) scheduleRefresh() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	if p.refresh != nil {
		p.refresh.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(p.refreshDelay, func() {
		p.mu.Lock()
		if p.refresh == t {
			p.refresh = nil
		}
		p.mu.Unlock()
		p.Poll(context.Background())
	})
	p.refresh = t
}
