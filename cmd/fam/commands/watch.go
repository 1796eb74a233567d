package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
)

var watchAccount int64

var watchOrdersCmd = &cobra.Command{
	Use:   "watch-orders",
	Short: "실시간 체결 통보 구독",
	Long: `계좌의 주문 스트림(/ws/orders/{accountId})을 구독해 체결 통보와 시세를 출력합니다.
연결이 끊기면 자동 재접속하지 않고 종료합니다.

Example:
  go run ./cmd/fam watch-orders --account 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		stream, err := a.client.DialOrderStream(ctx, watchAccount)
		if err != nil {
			PrintError(fmt.Sprintf("스트림 연결 실패: %v", err))
			return err
		}
		defer stream.Close()

		PrintSuccess(fmt.Sprintf("계좌 #%d 주문 스트림 연결됨 (Ctrl+C 종료)", watchAccount))
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-stream.Events():
				if !ok {
					if err := stream.Err(); err != nil {
						PrintError(fmt.Sprintf("스트림 종료: %v", err))
						return err
					}
					PrintInfo("스트림이 종료되었습니다.")
					return nil
				}
				printOrderEvent(ev)
			}
		}
	},
}

func printOrderEvent(ev backend.OrderEvent) {
	now := time.Now().Format("15:04:05")
	switch {
	case ev.Error != "":
		PrintError(fmt.Sprintf("%s %s", now, ev.Error))
	case ev.Warning != "":
		PrintWarning(ev.Warning)
	case ev.Type == backend.EventExecution:
		PrintSuccess(fmt.Sprintf("%s 체결 %s", now, ev.Data))
	case ev.Type == backend.EventPrice:
		fmt.Printf("%s %s %s (%s, %s%%)\n", now, ev.Code, ev.Price, ev.Change, ev.Rate)
	default:
		fmt.Printf("%s %s %s\n", now, ev.Type, ev.Data)
	}
}

func init() {
	rootCmd.AddCommand(watchOrdersCmd)

	watchOrdersCmd.Flags().Int64Var(&watchAccount, "account", 0, "계좌 ID")
	_ = watchOrdersCmd.MarkFlagRequired("account")
}
