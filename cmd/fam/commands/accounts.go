package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lystzs/family-asset-manager/internal/account"
	"github.com/lystzs/family-asset-manager/internal/external/backend"
	"github.com/lystzs/family-asset-manager/pkg/httputil"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "계좌 관리",
	Long: `가족 구성원의 증권 계좌를 조회하고 대시보드의 선택 계좌를 바꿉니다.

Examples:
  go run ./cmd/fam accounts list
  go run ./cmd/fam accounts select 2
  go run ./cmd/fam accounts select all
  go run ./cmd/fam accounts refresh-token 2
  go run ./cmd/fam accounts add --member 1 --alias "엄마 연금" --cano 12345678 --prdt 01 --app-key ... --app-secret ...
  go run ./cmd/fam accounts rename 2 "아빠 ISA"
  go run ./cmd/fam accounts delete 2`,
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "전체 계좌 목록",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		accounts, err := a.client.AllAccounts(ctx)
		if err != nil {
			PrintError(fmt.Sprintf("계좌 목록을 불러오지 못했습니다: %v", err))
			return err
		}
		if len(accounts) == 0 {
			PrintWarning("등록된 계좌가 없습니다.")
			return nil
		}

		PrintHeader("계좌 목록")
		widths := []int{4, 20, 10, 14, 20}
		PrintTableHeader([]string{"ID", "별칭", "소유자", "계좌번호", "토큰 만료"}, widths)
		for _, acc := range accounts {
			expiry := "-"
			if acc.TokenExpiredAt != nil {
				expiry = *acc.TokenExpiredAt
			}
			PrintTableRow([]string{
				fmt.Sprint(acc.ID),
				acc.Alias,
				acc.UserName,
				acc.CANO + "-" + acc.AcntPrdtCd,
				expiry,
			}, widths)
		}
		return nil
	},
}

var dashboardURL string

var accountsSelectCmd = &cobra.Command{
	Use:   "select <account-id|all>",
	Short: "실행 중인 대시보드의 선택 계좌 변경",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		body := map[string]interface{}{"account_id": nil}
		if !strings.EqualFold(args[0], "all") {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			body["account_id"] = id
		}

		base := dashboardURL
		if base == "" {
			base = "http://localhost:" + a.cfg.Port
		}

		resp, err := httputil.New(a.cfg, a.log).PostJSON(ctx, strings.TrimRight(base, "/")+"/api/session/select", body)
		if err != nil {
			return fmt.Errorf("dashboard unreachable: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("select failed: HTTP %d", resp.StatusCode)
		}

		var snap account.Snapshot
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			return fmt.Errorf("decode session: %w", err)
		}
		if snap.Selected == nil {
			PrintSuccess(fmt.Sprintf("전체 계좌 합산 모드 (%d개 계좌)", len(snap.Accounts)))
			return nil
		}
		PrintSuccess("선택 계좌: " + snap.Selected.Label())
		return nil
	},
}

var accountsRefreshTokenCmd = &cobra.Command{
	Use:   "refresh-token <account-id>",
	Short: "증권사 접근 토큰 재발급",
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

		res, err := a.client.RefreshToken(ctx, id)
		if err != nil {
			PrintError(fmt.Sprintf("토큰 재발급 실패: %v", err))
			return err
		}
		PrintSuccess(res.Message)
		if res.TokenExpiredAt != nil {
			PrintKeyValue("만료", *res.TokenExpiredAt, 6)
		}
		return nil
	},
}

var (
	addMember    int64
	addAlias     string
	addCANO      string
	addPrdt      string
	addAppKey    string
	addAppSecret string
	addHtsID     string
	addExpiry    string
)

var accountsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "구성원에 계좌 등록",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		req := backend.AccountCreate{
			Alias:      addAlias,
			CANO:       addCANO,
			AcntPrdtCd: addPrdt,
			AppKey:     addAppKey,
			AppSecret:  addAppSecret,
		}
		if addHtsID != "" {
			req.HtsID = &addHtsID
		}
		if addExpiry != "" {
			req.APIExpiryDate = &addExpiry
		}

		acc, err := a.client.CreateAccount(ctx, addMember, req)
		if err != nil {
			PrintError(backend.DetailOf(err, "계좌 등록에 실패했습니다."))
			return err
		}
		PrintSuccess(fmt.Sprintf("계좌 #%d 등록됨: %s (%s-%s)", acc.ID, acc.Alias, acc.CANO, acc.AcntPrdtCd))
		return nil
	},
}

var accountsRenameCmd = &cobra.Command{
	Use:   "rename <account-id> <alias>",
	Short: "계좌 별칭 변경",
	Args:  cobra.MinimumNArgs(2),
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

		alias := strings.Join(args[1:], " ")
		acc, err := a.client.UpdateAccount(ctx, id, backend.AccountUpdate{Alias: &alias})
		if err != nil {
			PrintError(backend.DetailOf(err, "계좌 수정에 실패했습니다."))
			return err
		}
		PrintSuccess(fmt.Sprintf("계좌 #%d → %s", acc.ID, acc.Alias))
		return nil
	},
}

var accountsDeleteCmd = &cobra.Command{
	Use:   "delete <account-id>",
	Short: "계좌 삭제",
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

		if err := a.client.DeleteAccount(ctx, id); err != nil {
			PrintError(backend.DetailOf(err, "계좌 삭제에 실패했습니다."))
			return err
		}
		PrintSuccess(fmt.Sprintf("계좌 #%d 삭제됨", id))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)

	accountsAddCmd.Flags().Int64Var(&addMember, "member", 0, "구성원 ID")
	accountsAddCmd.Flags().StringVar(&addAlias, "alias", "", "계좌 별칭")
	accountsAddCmd.Flags().StringVar(&addCANO, "cano", "", "계좌번호 앞 8자리")
	accountsAddCmd.Flags().StringVar(&addPrdt, "prdt", "01", "상품코드 2자리")
	accountsAddCmd.Flags().StringVar(&addAppKey, "app-key", "", "증권사 API app key")
	accountsAddCmd.Flags().StringVar(&addAppSecret, "app-secret", "", "증권사 API app secret")
	accountsAddCmd.Flags().StringVar(&addHtsID, "hts-id", "", "HTS ID (체결 통보용)")
	accountsAddCmd.Flags().StringVar(&addExpiry, "api-expiry", "", "API 만료일 (YYYY-MM-DD)")
	_ = accountsAddCmd.MarkFlagRequired("member")

	accountsCmd.AddCommand(accountsListCmd)
	accountsCmd.AddCommand(accountsSelectCmd)
	accountsCmd.AddCommand(accountsRefreshTokenCmd)
	accountsCmd.AddCommand(accountsAddCmd)
	accountsCmd.AddCommand(accountsRenameCmd)
	accountsCmd.AddCommand(accountsDeleteCmd)

	accountsSelectCmd.Flags().StringVar(&dashboardURL, "dashboard", "", "대시보드 주소 (기본값 http://localhost:PORT)")
}
