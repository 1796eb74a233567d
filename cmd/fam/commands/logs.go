package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "감사 로그",
}

var (
	logsSkip  int
	logsLimit int
)

var logsTradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "주문 로그 (최신순)",
	Long: `백엔드에 기록된 주문 로그를 조회합니다.
strategy_id 로 수동/분할/예약 주문을 구분합니다 (manual_limit, manual_market, manual_grid ...).

Examples:
  go run ./cmd/fam logs trade
  go run ./cmd/fam logs trade --skip 50 --limit 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		logs, err := a.client.TradeLogs(ctx, logsSkip, logsLimit)
		if err != nil {
			return fmt.Errorf("fetch trade logs: %w", err)
		}

		widths := []int{19, 4, 14, 8, 4, 12, 6, 8}
		PrintTableHeader([]string{"시각", "계좌", "전략", "종목", "구분", "가격", "수량", "상태"}, widths)
		for _, l := range logs {
			PrintTableRow([]string{
				l.Timestamp,
				fmt.Sprint(l.AccountID),
				l.StrategyID,
				l.Ticker,
				l.Action,
				FormatWon(l.Price),
				fmt.Sprint(l.Quantity),
				l.Status,
			}, widths)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(logsTradeCmd)

	logsTradeCmd.Flags().IntVar(&logsSkip, "skip", 0, "건너뛸 개수")
	logsTradeCmd.Flags().IntVar(&logsLimit, "limit", 50, "최대 개수")
}
