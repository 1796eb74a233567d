package order

import (
	"fmt"
	"math"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
)

// Progress is the execution state of a scheduled daily order
type Progress struct {
	TotalDays    int64  `json:"total_days"`
	ExecutedDays int64  `json:"executed_days"`
	Percent      int64  `json:"percent"`
	Label        string `json:"label"`
	StatusLabel  string `json:"status_label"`
}

// ScheduleProgress derives day counts from amounts in AMOUNT mode and quantities otherwise
func ScheduleProgress(o backend.ScheduledOrder) Progress {
	var total, daily, executed int64
	if o.OrderMode == backend.ModeAmount && o.DailyAmount > 0 {
		total, daily, executed = o.TotalAmount, o.DailyAmount, o.ExecutedAmount
	} else {
		total, daily, executed = o.TotalQuantity, o.DailyQuantity, o.ExecutedQuantity
	}

	var p Progress
	if daily > 0 {
		p.TotalDays = int64(math.Ceil(float64(total) / float64(daily)))
		p.ExecutedDays = executed / daily
	}
	if total > 0 {
		p.Percent = int64(math.Round(float64(executed) / float64(total) * 100))
	}

	p.Label = fmt.Sprintf("%d/%d일 (%d%%)", p.ExecutedDays, p.TotalDays, p.Percent)
	p.StatusLabel = StatusLabel(o.Status)
	return p
}

// StatusLabel is the display text of a scheduled order status.
// Unknown statuses are shown as sent by the backend.
func StatusLabel(status string) string {
	switch status {
	case backend.ScheduleActive:
		return "진행중"
	case backend.ScheduleCompleted:
		return "완료"
	case backend.ScheduleCancelled:
		return "취소됨"
	case "":
		return "-"
	default:
		return status
	}
}
