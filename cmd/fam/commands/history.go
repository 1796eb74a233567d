package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "일별 자산 추이",
	Long: `일별 자산 스냅샷을 조회합니다. --account 생략 시 전체 합산.

Examples:
  go run ./cmd/fam history
  go run ./cmd/fam history --account 1 --days 30`,
	RunE: runHistory,
}

var (
	historyAccount int64
	historyDays    int
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().Int64Var(&historyAccount, "account", 0, "계좌 ID (0 = 전체 합산)")
	historyCmd.Flags().IntVar(&historyDays, "days", 14, "최근 N일")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	var points []backend.AssetHistoryPoint
	if historyAccount > 0 {
		points, err = a.client.AccountHistory(ctx, historyAccount)
	} else {
		points, err = a.client.AggregateHistory(ctx)
	}
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}
	if historyDays > 0 && len(points) > historyDays {
		points = points[len(points)-historyDays:]
	}

	PrintHeader("자산 추이")
	widths := []int{10, 16, 16, 14, 8}
	PrintTableHeader([]string{"날짜", "총자산", "주식", "일간손익", "일간"}, widths)
	for _, p := range points {
		PrintTableRow([]string{
			p.Date,
			FormatWon(p.TotalAssetAmount),
			FormatWon(p.StockEvalAmount),
			FormatWon(p.DailyProfitLoss),
			FormatPercent(p.DailyProfitRate),
		}, widths)
	}
	return nil
}
