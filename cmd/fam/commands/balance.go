package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lystzs/family-asset-manager/internal/account"
	"github.com/lystzs/family-asset-manager/internal/balance"
	"github.com/lystzs/family-asset-manager/internal/external/backend"
)

// balanceCmd represents the balance command
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "잔고 조회",
	Long: `계좌 잔고를 조회합니다.

--account 를 주면 해당 계좌(목표 비중 포함), --all 또는 생략 시 전체 계좌 합산.
합산 모드에서는 조회에 실패한 계좌가 제외되고, 모두 실패하면 오류입니다.

Examples:
  go run ./cmd/fam balance --account 1
  go run ./cmd/fam balance --all`,
	RunE: runBalance,
}

var (
	balanceAccount int64
	balanceAll     bool
)

func init() {
	rootCmd.AddCommand(balanceCmd)

	balanceCmd.Flags().Int64Var(&balanceAccount, "account", 0, "계좌 ID")
	balanceCmd.Flags().BoolVar(&balanceAll, "all", false, "전체 계좌 합산")
}

func runBalance(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	accounts, err := a.client.AllAccounts(ctx)
	if err != nil {
		return fmt.Errorf("fetch accounts: %w", err)
	}

	var selected *backend.AccountWithUser
	if balanceAccount > 0 && !balanceAll {
		for i := range accounts {
			if accounts[i].ID == balanceAccount {
				selected = &accounts[i]
			}
		}
		if selected == nil {
			return fmt.Errorf("account %d not found", balanceAccount)
		}
	}

	bal, err := balance.NewAggregator(a.client, a.log).Load(ctx, account.Snapshot{Accounts: accounts, Selected: selected})
	if err != nil {
		PrintError(balance.ErrorMessage(err))
		return err
	}

	var targets []backend.TargetPortfolio
	title := fmt.Sprintf("전체 계좌 합산 (%d개)", len(accounts))
	if selected != nil {
		title = selected.Label()
		targets, err = a.client.Targets(ctx, selected.ID)
		if err != nil {
			a.log.WithError(err).Warn("Failed to load targets")
		}
	}

	printDashboard(title, balance.Summarize(bal, targets))
	return nil
}

func printDashboard(title string, d balance.Dashboard) {
	PrintHeader(title)
	m := d.Metrics
	PrintKeyValue("총 평가금액", FormatWon(m.TotalAsset), 12)
	PrintKeyValue("주식 평가금액", FormatWon(m.StockValuation), 12)
	PrintKeyValue("매입금액", FormatWon(m.PurchaseTotal), 12)
	PrintKeyValue("평가손익", fmt.Sprintf("%s (%s)", FormatWon(m.ProfitLossTotal), FormatPercent(m.ProfitRate)), 12)
	PrintKeyValue("예수금", FormatWon(m.Deposit), 12)
	PrintKeyValue("D+2 예수금", FormatWon(m.SettlementDeposit), 12)
	PrintKeyValue("주문가능", FormatWon(m.Orderable), 12)
	fmt.Println()

	if len(d.Holdings) == 0 {
		PrintInfo("보유 종목이 없습니다.")
		return
	}

	widths := []int{8, 16, 8, 14, 14, 8, 8, 8}
	PrintTableHeader([]string{"코드", "종목명", "수량", "평가금액", "평가손익", "수익률", "비중", "목표"}, widths)
	for _, h := range d.Holdings {
		target := "-"
		if h.TargetWeight != nil {
			target = FormatPercent(*h.TargetWeight)
		}
		PrintTableRow([]string{
			h.Code,
			h.Name,
			groupDigits(h.Quantity),
			FormatWon(h.EvalAmt),
			FormatWon(h.ProfitLoss),
			FormatPercent(h.ProfitRate),
			FormatPercent(h.AssetWeight),
			target,
		}, widths)
	}
}
