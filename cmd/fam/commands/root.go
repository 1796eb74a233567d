package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fam",
	Short: "Family Asset Manager - 가족 증권 계좌 대시보드",
	Long: `Family Asset Manager CLI

가족 구성원의 증권 계좌를 한 곳에서 조회하고 주문하는 대시보드 BFF.
잔고 합산, 목표 포트폴리오 리밸런싱, 분할/일별 예약 주문, 배치 모니터링.

Usage:
  go run ./cmd/fam [command]

Examples:
  go run ./cmd/fam serve
  go run ./cmd/fam balance --all
  go run ./cmd/fam portfolio analyze --account 1
  go run ./cmd/fam order grid --account 1 --ticker 005930 --qty 17 --price 70000 --action BUY
  go run ./cmd/fam batch status --watch`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
