package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "가족 구성원 관리",
	Long: `가족 구성원을 조회/추가/삭제합니다.
구성원을 삭제하면 백엔드가 소유 계좌도 함께 삭제합니다.

Examples:
  go run ./cmd/fam members list
  go run ./cmd/fam members add 엄마
  go run ./cmd/fam members accounts 1
  go run ./cmd/fam members delete 3`,
}

var membersListCmd = &cobra.Command{
	Use:   "list",
	Short: "구성원 목록",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		users, err := a.client.Users(ctx)
		if err != nil {
			return fmt.Errorf("fetch members: %w", err)
		}

		PrintHeader("가족 구성원")
		widths := []int{4, 20}
		PrintTableHeader([]string{"ID", "이름"}, widths)
		for _, u := range users {
			PrintTableRow([]string{fmt.Sprint(u.ID), u.Name}, widths)
		}
		return nil
	},
}

var membersAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "구성원 추가",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.client.CreateUser(ctx, strings.Join(args, " "))
		if err != nil {
			PrintError(fmt.Sprintf("구성원 추가 실패: %v", err))
			return err
		}
		PrintSuccess(fmt.Sprintf("구성원 추가됨: #%d %s", user.ID, user.Name))
		return nil
	},
}

var membersDeleteCmd = &cobra.Command{
	Use:   "delete <member-id>",
	Short: "구성원 삭제 (소유 계좌 포함)",
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

		if err := a.client.DeleteUser(ctx, id); err != nil {
			PrintError(fmt.Sprintf("구성원 삭제 실패: %v", err))
			return err
		}
		PrintSuccess(fmt.Sprintf("구성원 #%d 삭제됨", id))
		return nil
	},
}

var membersAccountsCmd = &cobra.Command{
	Use:   "accounts <member-id>",
	Short: "구성원의 계좌 목록",
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

		accounts, err := a.client.UserAccounts(ctx, id)
		if err != nil {
			return fmt.Errorf("fetch member accounts: %w", err)
		}

		widths := []int{4, 20, 14, 12}
		PrintTableHeader([]string{"ID", "별칭", "계좌번호", "API 만료"}, widths)
		for _, acc := range accounts {
			expiry := "-"
			if acc.APIExpiryDate != nil {
				expiry = *acc.APIExpiryDate
			}
			PrintTableRow([]string{fmt.Sprint(acc.ID), acc.Alias, acc.CANO + "-" + acc.AcntPrdtCd, expiry}, widths)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(membersCmd)
	membersCmd.AddCommand(membersAccountsCmd)
	membersCmd.AddCommand(membersListCmd)
	membersCmd.AddCommand(membersAddCmd)
	membersCmd.AddCommand(membersDeleteCmd)
}
