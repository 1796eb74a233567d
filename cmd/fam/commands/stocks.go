package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lystzs/family-asset-manager/internal/rebalance"
)

var stocksCmd = &cobra.Command{
	Use:   "stocks",
	Short: "종목 마스터",
	Long: `종목 마스터를 검색하거나 동기화합니다.
REDIS_ENABLED=true 이면 조회 결과를 STOCK_CACHE_TTL 동안 캐시합니다.

Examples:
  go run ./cmd/fam stocks search 삼성
  go run ./cmd/fam stocks stats
  go run ./cmd/fam stocks sync`,
}

var stocksLimit int

var stocksSearchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "종목 검색",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		stocks, err := a.client.SearchStocks(ctx, strings.Join(args, " "), stocksLimit)
		if err != nil {
			return fmt.Errorf("search stocks: %w", err)
		}

		widths := []int{8, 20, 8}
		PrintTableHeader([]string{"코드", "종목명", "시장"}, widths)
		for _, s := range stocks {
			PrintTableRow([]string{s.Code, s.Name, s.Market}, widths)
		}
		if len(stocks) > 0 {
			fmt.Println()
			PrintInfo(rebalance.StockURL(stocks[0].Code))
		}
		return nil
	},
}

var stocksStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "시장별 종목 수",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.client.StockStats(ctx)
		if err != nil {
			return fmt.Errorf("fetch stock stats: %w", err)
		}
		PrintHeader("종목 마스터")
		PrintKeyValue("전체", groupDigits(int64(stats.Total)), 6)
		PrintKeyValue("KOSPI", groupDigits(int64(stats.Kospi)), 6)
		PrintKeyValue("KOSDAQ", groupDigits(int64(stats.Kosdaq)), 6)
		return nil
	},
}

var stocksSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "종목 마스터 동기화 트리거",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.client.SyncStocks(ctx)
		if err != nil {
			PrintError(fmt.Sprintf("동기화 실패: %v", err))
			return err
		}
		PrintSuccess(fmt.Sprintf("동기화 요청됨: %v", res["message"]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stocksCmd)
	stocksCmd.AddCommand(stocksSearchCmd, stocksStatsCmd, stocksSyncCmd)

	stocksSearchCmd.Flags().IntVar(&stocksLimit, "limit", 20, "최대 결과 수")
}
