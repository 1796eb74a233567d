package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
	"github.com/lystzs/family-asset-manager/internal/monitor"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "백엔드 배치 작업 모니터링",
	Long: `백엔드 스케줄러 상태를 조회하고 배치 작업을 수동 실행합니다.

Examples:
  go run ./cmd/fam batch jobs
  go run ./cmd/fam batch exec daily_sync
  go run ./cmd/fam batch status
  go run ./cmd/fam batch status --watch`,
}

var batchWatch bool

var batchJobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "수동 실행 가능한 작업 목록",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		jobs := monitor.NewStatusPoller(a.client, a.cfg.Dashboard.PollInterval, a.log).Jobs(ctx)
		if len(jobs) == 0 {
			PrintWarning("작업 목록이 비어 있습니다.")
			return nil
		}

		widths := []int{20, 24, 30}
		PrintTableHeader([]string{"ID", "이름", "설명"}, widths)
		for _, j := range jobs {
			PrintTableRow([]string{j.ID, j.Name, j.Description}, widths)
		}
		return nil
	},
}

var batchExecCmd = &cobra.Command{
	Use:   "exec <job-id>",
	Short: "배치 작업 즉시 실행",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.client.ExecuteBatchJob(ctx, args[0])
		if err != nil {
			PrintError(backend.DetailOf(err, "작업 실행에 실패했습니다."))
			return err
		}
		PrintSuccess(fmt.Sprintf("%v", res["message"]))
		PrintInfo("상태는 `fam batch status` 로 확인하세요.")
		return nil
	},
}

var batchStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "스케줄러 상태",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		poller := monitor.NewStatusPoller(a.client, a.cfg.Dashboard.PollInterval, a.log)
		if !batchWatch {
			status, err := poller.Poll(ctx)
			if err != nil {
				PrintError(backend.DetailOf(err, "시스템 상태를 불러오지 못했습니다."))
				return err
			}
			printSystemStatus(status)
			return nil
		}

		if err := poller.Start(); err != nil {
			return err
		}
		defer poller.Stop()

		ticker := time.NewTicker(a.cfg.Dashboard.PollInterval)
		defer ticker.Stop()

		// first poll runs in the background; give it a moment before the first render
		time.Sleep(500 * time.Millisecond)
		for {
			status, lastErr := poller.Latest()
			if status != nil {
				printSystemStatus(status)
			}
			if lastErr != nil {
				PrintError(backend.DetailOf(lastErr, "시스템 상태를 불러오지 못했습니다."))
			}
			stats := poller.Stats()
			PrintInfo(fmt.Sprintf("polls=%d failures=%d success=%.0f%% (%s, Ctrl+C 종료)",
				stats.TotalPolls, stats.FailureCount, stats.SuccessRate*100, stats.Schedule))

			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	},
}

func printSystemStatus(s *backend.SystemStatus) {
	PrintHeader("시스템 상태")
	PrintKeyValue("서버 시간", s.ServerTime, 10)
	PrintKeyValue("환경", s.AppEnv, 10)
	PrintKeyValue("스케줄러", schedulerLabel(s), 10)
	fmt.Println()

	widths := []int{20, 20, 20, 8}
	PrintTableHeader([]string{"작업", "다음 실행", "마지막 실행", "결과"}, widths)
	for _, j := range s.ActiveJobs {
		PrintTableRow([]string{j.Name, deref(j.NextRunTime), deref(j.LastRun), deref(j.LastStatus)}, widths)
	}
}

func schedulerLabel(s *backend.SystemStatus) string {
	switch {
	case !s.SchedulerEnabled:
		return "비활성"
	case s.SchedulerRunning:
		return "실행 중"
	default:
		return "중지됨"
	}
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.AddCommand(batchJobsCmd, batchExecCmd, batchStatusCmd)

	batchStatusCmd.Flags().BoolVar(&batchWatch, "watch", false, "POLL_INTERVAL 마다 갱신")
}
