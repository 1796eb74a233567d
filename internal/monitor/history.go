package monitor

import (
	"time"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
)

// MaxHistory bounds the poll history kept in memory
const MaxHistory = 100

// PollResult represents one status poll
type PollResult struct {
	StartTime time.Time             `json:"start_time"`
	EndTime   time.Time             `json:"end_time"`
	Duration  time.Duration         `json:"duration"`
	Success   bool                  `json:"success"`
	Error     string                `json:"error,omitempty"`
	Status    *backend.SystemStatus `json:"status,omitempty"`
}

// History stores poll results, oldest first
type History struct {
	Results []PollResult
}

// Add appends a result, keeping only the last MaxHistory
func (h *History) Add(result PollResult) {
	h.Results = append(h.Results, result)

	if len(h.Results) > MaxHistory {
		h.Results = h.Results[len(h.Results)-MaxHistory:]
	}
}

// Latest returns the latest n results
func (h *History) Latest(n int) []PollResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}
	if n <= 0 {
		return []PollResult{}
	}

	out := make([]PollResult, n)
	copy(out, h.Results[len(h.Results)-n:])
	return out
}

// Failed returns all failed results
func (h *History) Failed() []PollResult {
	failed := make([]PollResult, 0)
	for _, result := range h.Results {
		if !result.Success {
			failed = append(failed, result)
		}
	}
	return failed
}

// SuccessRate returns the success rate (0.0 - 1.0)
func (h *History) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0.0
	}

	successCount := 0
	for _, result := range h.Results {
		if result.Success {
			successCount++
		}
	}

	return float64(successCount) / float64(len(h.Results))
}

// Stats summarizes the poll history
type Stats struct {
	Schedule     string     `json:"schedule"`
	TotalPolls   int        `json:"total_polls"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastPoll     *time.Time `json:"last_poll,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
}
