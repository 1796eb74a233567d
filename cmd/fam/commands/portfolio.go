package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
	"github.com/lystzs/family-asset-manager/internal/rebalance"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "목표 포트폴리오 / 리밸런싱",
	Long: `계좌별 목표 비중을 관리하고 리밸런싱 분석을 실행합니다.
분석은 목표 비중 합계가 정확히 100% 일 때만 가능합니다.

Examples:
  go run ./cmd/fam portfolio targets --account 1
  go run ./cmd/fam portfolio set --account 1 --code 005930 --pct 40
  go run ./cmd/fam portfolio set --account 1 --code CASH --pct 10
  go run ./cmd/fam portfolio delete 12
  go run ./cmd/fam portfolio analyze --account 1`,
}

var (
	portfolioAccount int64
	portfolioCode    string
	portfolioPct     float64
)

var portfolioTargetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "목표 비중 조회",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		targets, err := a.client.Targets(ctx, portfolioAccount)
		if err != nil {
			return fmt.Errorf("fetch targets: %w", err)
		}

		PrintHeader(fmt.Sprintf("계좌 #%d 목표 포트폴리오", portfolioAccount))
		widths := []int{4, 8, 16, 8}
		PrintTableHeader([]string{"ID", "코드", "종목명", "비중"}, widths)
		for _, t := range targets {
			PrintTableRow([]string{fmt.Sprint(t.ID), t.StockCode, t.StockName, FormatPercent(t.TargetPercentage)}, widths)
		}
		PrintSeparator()

		gate := rebalance.CheckGate(targets)
		PrintKeyValue("합계", FormatPercent(gate.Total), 4)
		if !gate.Enabled {
			PrintWarning(gate.Warning)
		}
		return nil
	},
}

var portfolioSetCmd = &cobra.Command{
	Use:   "set",
	Short: "목표 비중 추가/수정",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		code := strings.ToUpper(strings.TrimSpace(portfolioCode))
		var stock *backend.Stock
		if code == backend.CashCode {
			cash := rebalance.CashTarget()
			stock = &cash
		} else if code != "" {
			stock, err = a.client.StockByCode(ctx, code)
			if err != nil {
				return fmt.Errorf("lookup stock %s: %w", code, err)
			}
		}

		if err := rebalance.ValidateNewTarget(stock, portfolioPct); err != nil {
			PrintError(err.Error())
			return err
		}

		target, err := a.client.SaveTarget(ctx, backend.TargetSave{
			AccountID:        portfolioAccount,
			StockCode:        stock.Code,
			StockName:        stock.Name,
			TargetPercentage: portfolioPct,
		})
		if err != nil {
			PrintError(backend.DetailOf(err, "목표 비중 저장에 실패했습니다."))
			return err
		}
		PrintSuccess(fmt.Sprintf("%s %s → %s", target.StockCode, target.StockName, FormatPercent(target.TargetPercentage)))
		return nil
	},
}

var portfolioDeleteCmd = &cobra.Command{
	Use:   "delete <target-id>",
	Short: "목표 비중 삭제",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.client.DeleteTarget(ctx, id); err != nil {
			return fmt.Errorf("delete target: %w", err)
		}
		PrintSuccess(fmt.Sprintf("목표 #%d 삭제됨", id))
		return nil
	},
}

var portfolioAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "리밸런싱 분석",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		acc, err := a.accountByID(ctx, portfolioAccount)
		if err != nil {
			return err
		}

		targets, err := a.client.Targets(ctx, acc.ID)
		if err != nil {
			return fmt.Errorf("fetch targets: %w", err)
		}
		if gate := rebalance.CheckGate(targets); !gate.Enabled {
			PrintWarning(gate.Warning)
			return fmt.Errorf("target total is %.2f", gate.Total)
		}

		analysis, err := a.client.AnalyzeRebalance(ctx, acc.UserID, acc.ID)
		if err != nil {
			PrintError(backend.DetailOf(err, "리밸런싱 분석에 실패했습니다."))
			return err
		}

		PrintHeader("리밸런싱 분석 - " + acc.Label())
		PrintKeyValue("총 자산", FormatWon(analysis.TotalAsset), 6)
		PrintKeyValue("현금", FormatWon(analysis.CurrentCash), 6)
		fmt.Println()

		widths := []int{8, 16, 8, 8, 8, 14, 16}
		PrintTableHeader([]string{"코드", "종목명", "주식비중", "현재", "목표", "차이", "제안"}, widths)
		for _, row := range rebalance.Render(analysis) {
			stockWeight := "-"
			if row.StockWeight != nil {
				stockWeight = FormatPercent(*row.StockWeight)
			}
			suggestion := row.StatusLabel
			if len(row.Controls) > 0 {
				suggestion = row.Controls[0].Label
			}
			PrintTableRow([]string{
				row.StockCode,
				row.StockName,
				stockWeight,
				FormatPercent(row.AssetWeight),
				FormatPercent(row.TargetWeight),
				row.DiffLabel,
				suggestion,
			}, widths)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.AddCommand(portfolioTargetsCmd)
	portfolioCmd.AddCommand(portfolioSetCmd)
	portfolioCmd.AddCommand(portfolioDeleteCmd)
	portfolioCmd.AddCommand(portfolioAnalyzeCmd)

	portfolioCmd.PersistentFlags().Int64Var(&portfolioAccount, "account", 0, "계좌 ID")
	portfolioSetCmd.Flags().StringVar(&portfolioCode, "code", "", "종목코드 (현금은 CASH)")
	portfolioSetCmd.Flags().Float64Var(&portfolioPct, "pct", 0, "목표 비중 (%)")
}
