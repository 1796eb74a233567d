package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
	"github.com/lystzs/family-asset-manager/internal/order"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "주문 (단건/분할/일별 예약/정정/취소)",
	Long: `수동 주문을 전송하고 미체결/체결/예약 주문을 관리합니다.

Examples:
  go run ./cmd/fam order place --account 1 --ticker 005930 --action BUY --qty 3 --price 70000
  go run ./cmd/fam order place --account 1 --ticker 005930 --action BUY --pct 50 --cash 1000000 --price 70000
  go run ./cmd/fam order grid --account 1 --ticker 005930 --action BUY --qty 17 --price 70000 --gap 1
  go run ./cmd/fam order daily --account 1 --ticker 005930 --name 삼성전자 --action BUY --amount 1000000 --period 7
  go run ./cmd/fam order unfilled --account 1
  go run ./cmd/fam order revise 0000117 --account 1 --price 69500
  go run ./cmd/fam order cancel 0000117 --account 1
  go run ./cmd/fam order scheduled --account 1
  go run ./cmd/fam order unschedule 5`,
}

var (
	orderAccount int64
	orderTicker  string
	orderName    string
	orderAction  string
	orderQty     int64
	orderPrice   float64
	orderMarket  bool
	orderPct     int
	orderCash    float64
	orderHolding int64
	orderSplits  int
	orderGap     float64
	orderDryRun  bool
	orderMode    string
	orderAmount  int64
	orderPeriod  int
)

func orderActionFlag() backend.Action {
	return backend.Action(strings.ToUpper(orderAction))
}

var orderPlaceCmd = &cobra.Command{
	Use:   "place",
	Short: "단건 주문",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		ticket := order.Ticket{
			AccountID:     orderAccount,
			Ticker:        orderTicker,
			Action:        orderActionFlag(),
			CurrentPrice:  orderPrice,
			CurrentQty:    orderHolding,
			AvailableCash: orderCash,
		}

		qty := orderQty
		if orderPct > 0 {
			qty = ticket.QtyForPercent(orderPct, orderPrice)
			PrintInfo(fmt.Sprintf("%d%% → %d주 (최대 %d주)", orderPct, qty, ticket.MaxQty(orderPrice)))
		}
		if qty <= 0 {
			return fmt.Errorf("수량을 입력하세요")
		}

		priceType := order.PriceLimit
		if orderMarket {
			priceType = order.PriceMarket
		}
		req := ticket.Order(qty, orderPrice, priceType)

		res, err := a.client.PlaceOrder(ctx, req)
		if err != nil {
			PrintError(backend.DetailOf(err, "주문 전송에 실패했습니다."))
			return err
		}
		if !res.Succeeded() {
			PrintError(res.Msg1)
			return fmt.Errorf("order rejected: %s", res.MsgCd)
		}
		PrintSuccess(res.Msg1)
		return nil
	},
}

var orderGridCmd = &cobra.Command{
	Use:   "grid",
	Short: "분할 주문 (가격 간격을 두고 순차 전송)",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := order.GridSettings{
			TotalQty:    orderQty,
			SplitCount:  orderSplits,
			PriceGapPct: orderGap,
			StartPrice:  orderPrice,
			Action:      orderActionFlag(),
		}
		steps, err := order.PlanGrid(settings)
		if err != nil {
			return err
		}

		PrintHeader(fmt.Sprintf("분할 %s %s  총 %d주 / %d회", settings.Action, orderTicker, settings.TotalQty, settings.SplitCount))
		widths := []int{4, 12, 8}
		PrintTableHeader([]string{"#", "가격", "수량"}, widths)
		for _, s := range steps {
			PrintTableRow([]string{fmt.Sprint(s.Step), FormatWon(s.Price), fmt.Sprint(s.Quantity)}, widths)
		}
		if orderDryRun {
			return nil
		}

		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Println()
		exec := order.NewGridExecutor(a.client, a.log).
			WithDelay(a.cfg.Dashboard.GridStepDelay).
			OnStep(func(s order.GridStep) {
				switch s.Status {
				case order.StatusSuccess:
					PrintSuccess(fmt.Sprintf("[%d/%d] %s %d주 %s", s.Step, len(steps), FormatWon(s.Price), s.Quantity, s.Msg))
				case order.StatusFailed:
					PrintError(fmt.Sprintf("[%d/%d] %s %d주 %s", s.Step, len(steps), FormatWon(s.Price), s.Quantity, s.Msg))
				default:
					PrintInfo(fmt.Sprintf("[%d/%d] 건너뜀 (%s)", s.Step, len(steps), s.Msg))
				}
			})
		result := exec.Execute(ctx, orderAccount, orderTicker, settings.Action, steps)

		PrintSeparator()
		PrintKeyValue("성공", fmt.Sprint(result.Succeeded), 4)
		PrintKeyValue("실패", fmt.Sprint(result.Failed), 4)
		PrintKeyValue("건너뜀", fmt.Sprint(result.Skipped), 4)
		if !result.AllSucceeded {
			return fmt.Errorf("grid order incomplete")
		}
		return nil
	},
}

var orderDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "일별 분할 예약 주문",
	RunE: func(cmd *cobra.Command, args []string) error {
		plan := order.DailyPlan{
			AccountID:     orderAccount,
			Ticker:        orderTicker,
			StockName:     orderName,
			Action:        orderActionFlag(),
			Mode:          backend.OrderMode(strings.ToUpper(orderMode)),
			Period:        orderPeriod,
			TotalAmount:   orderAmount,
			TotalQuantity: orderQty,
			CurrentPrice:  orderPrice,
		}

		PrintHeader(fmt.Sprintf("일별 예약 %s %s", plan.Action, orderTicker))
		if plan.Mode == backend.ModeAmount {
			est := order.EstimateDaily(plan.TotalAmount, plan.Period, plan.CurrentPrice)
			PrintKeyValue("기간", fmt.Sprintf("%d일", est.Period), 10)
			PrintKeyValue("일 주문금액", FormatWon(float64(est.DailyAmount)), 10)
			PrintKeyValue("예상 일 수량", fmt.Sprintf("%d주", est.EstimatedDailyQty), 10)
			PrintKeyValue("예상 총 수량", fmt.Sprintf("%d주", est.EstimatedTotalQty), 10)
		} else {
			est := order.EstimateDailyQuantity(plan.TotalQuantity, plan.Period, plan.CurrentPrice)
			PrintKeyValue("기간", fmt.Sprintf("%d일", est.Period), 10)
			PrintKeyValue("일 수량", fmt.Sprintf("%d주", est.DailyQuantity), 10)
			PrintKeyValue("일 예상금액", FormatWon(float64(est.DailyAmount)), 10)
		}

		req, err := order.BuildSchedule(plan)
		if err != nil {
			return err
		}
		if orderDryRun {
			return nil
		}

		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		scheduled, err := a.client.ScheduleOrder(ctx, req)
		if err != nil {
			PrintError(backend.DetailOf(err, "예약 주문 등록에 실패했습니다."))
			return err
		}
		PrintSuccess(fmt.Sprintf("예약 주문 #%d 등록됨", scheduled.ID))
		return nil
	},
}

// findOpenOrder looks up an unfilled order by number
func findOpenOrder(ctx context.Context, a *app, odno string) (*backend.BrokerOrder, error) {
	orders, err := a.client.UnfilledOrders(ctx, orderAccount)
	if err != nil {
		return nil, fmt.Errorf("fetch unfilled orders: %w", err)
	}
	for i := range orders {
		if orders[i].Odno == odno {
			return &orders[i], nil
		}
	}
	return nil, fmt.Errorf("unfilled order %s not found", odno)
}

var orderReviseCmd = &cobra.Command{
	Use:   "revise <order-no>",
	Short: "미체결 주문 정정 (가격 변경) / 수량 감소 시 부분 취소",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		original, err := findOpenOrder(ctx, a, args[0])
		if err != nil {
			return err
		}

		newQty := original.RemainingQty()
		if cmd.Flags().Changed("qty") {
			newQty = orderQty
		}
		newPrice := backend.ParseNumber(original.OrdUnpr)
		if cmd.Flags().Changed("price") {
			newPrice = orderPrice
		}

		rev, err := order.DecideRevision(orderAccount, *original, newQty, newPrice)
		if err != nil {
			PrintWarning(err.Error())
			return err
		}

		var res *backend.OrderResult
		if rev.Kind == order.RevisionRevise {
			res, err = a.client.ReviseOrder(ctx, *rev.Revise)
		} else {
			res, err = a.client.CancelOrder(ctx, *rev.Cancel)
		}
		if err != nil {
			PrintError(backend.DetailOf(err, "정정/취소 요청에 실패했습니다."))
			return err
		}
		PrintSuccess(fmt.Sprintf("%s: %s", rev.Kind, res.Msg1))
		return nil
	},
}

var orderCancelCmd = &cobra.Command{
	Use:   "cancel <order-no>",
	Short: "미체결 주문 전량 취소",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		original, err := findOpenOrder(ctx, a, args[0])
		if err != nil {
			return err
		}

		res, err := a.client.CancelOrder(ctx, backend.CancelRequest{
			AccountID: orderAccount,
			OrgnOdno:  original.Odno,
			Quantity:  original.RemainingQty(),
			AllQty:    true,
		})
		if err != nil {
			PrintError(backend.DetailOf(err, "취소 요청에 실패했습니다."))
			return err
		}
		PrintSuccess(res.Msg1)
		return nil
	},
}

func printBrokerOrders(title string, orders []backend.BrokerOrder) {
	PrintHeader(title)
	if len(orders) == 0 {
		PrintInfo("주문이 없습니다.")
		return
	}
	widths := []int{10, 8, 16, 4, 8, 12, 8}
	PrintTableHeader([]string{"주문번호", "코드", "종목명", "구분", "수량", "가격", "잔량"}, widths)
	for _, o := range orders {
		side := "매수"
		if o.Side() == backend.ActionSell {
			side = "매도"
		}
		PrintTableRow([]string{
			o.Odno,
			o.Pdno,
			o.PrdtName,
			side,
			o.OrdQty,
			FormatWon(backend.ParseNumber(o.OrdUnpr)),
			fmt.Sprint(o.RemainingQty()),
		}, widths)
	}
}

var orderUnfilledCmd = &cobra.Command{
	Use:   "unfilled",
	Short: "미체결 주문",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		orders, err := a.client.UnfilledOrders(ctx, orderAccount)
		if err != nil {
			return fmt.Errorf("fetch unfilled orders: %w", err)
		}
		printBrokerOrders("미체결 주문", orders)
		return nil
	},
}

var orderExecutedCmd = &cobra.Command{
	Use:   "executed",
	Short: "당일 체결 주문",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		orders, err := a.client.ExecutedOrders(ctx, orderAccount)
		if err != nil {
			return fmt.Errorf("fetch executed orders: %w", err)
		}
		printBrokerOrders("체결 주문", orders)
		return nil
	},
}

var orderScheduledCmd = &cobra.Command{
	Use:   "scheduled",
	Short: "일별 예약 주문 목록",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		orders, err := a.client.ScheduledOrders(ctx, orderAccount)
		if err != nil {
			return fmt.Errorf("fetch scheduled orders: %w", err)
		}

		PrintHeader("일별 예약 주문")
		widths := []int{4, 8, 16, 4, 8, 16, 8}
		PrintTableHeader([]string{"ID", "코드", "종목명", "구분", "방식", "진행", "상태"}, widths)
		for _, o := range orders {
			p := order.ScheduleProgress(o)
			PrintTableRow([]string{
				fmt.Sprint(o.ID),
				o.StockCode,
				o.StockName,
				string(o.Action),
				string(o.OrderMode),
				p.Label,
				p.StatusLabel,
			}, widths)
		}
		return nil
	},
}

var orderUnscheduleCmd = &cobra.Command{
	Use:   "unschedule <scheduled-id>",
	Short: "일별 예약 주문 취소",
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

		if err := a.client.CancelScheduledOrder(ctx, id); err != nil {
			PrintError(backend.DetailOf(err, "예약 취소에 실패했습니다."))
			return err
		}
		PrintSuccess(fmt.Sprintf("예약 주문 #%d 취소됨", id))
		return nil
	},
}

// signalContext is cancelled on Ctrl+C so a running grid marks the rest SKIPPED
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func init() {
	rootCmd.AddCommand(orderCmd)
	orderCmd.AddCommand(orderPlaceCmd, orderGridCmd, orderDailyCmd, orderReviseCmd, orderCancelCmd,
		orderUnfilledCmd, orderExecutedCmd, orderScheduledCmd, orderUnscheduleCmd)

	orderCmd.PersistentFlags().Int64Var(&orderAccount, "account", 0, "계좌 ID")

	for _, c := range []*cobra.Command{orderPlaceCmd, orderGridCmd, orderDailyCmd} {
		c.Flags().StringVar(&orderTicker, "ticker", "", "종목코드")
		c.Flags().StringVar(&orderAction, "action", "BUY", "BUY | SELL")
		c.Flags().Float64Var(&orderPrice, "price", 0, "가격 (분할: 시작가, 일별: 현재가)")
	}
	for _, c := range []*cobra.Command{orderPlaceCmd, orderGridCmd, orderDailyCmd, orderReviseCmd} {
		c.Flags().Int64Var(&orderQty, "qty", 0, "수량")
	}
	orderReviseCmd.Flags().Float64Var(&orderPrice, "price", 0, "정정 가격")

	orderPlaceCmd.Flags().BoolVar(&orderMarket, "market", false, "시장가")
	orderPlaceCmd.Flags().IntVar(&orderPct, "pct", 0, "최대 수량 대비 비율 (10|25|50|100)")
	orderPlaceCmd.Flags().Float64Var(&orderCash, "cash", 0, "주문가능 현금 (매수 --pct 용)")
	orderPlaceCmd.Flags().Int64Var(&orderHolding, "holding", 0, "보유 수량 (매도 --pct 용)")

	orderGridCmd.Flags().IntVar(&orderSplits, "splits", order.DefaultSplitCount, "분할 횟수")
	orderGridCmd.Flags().Float64Var(&orderGap, "gap", order.DefaultPriceGapPct, "가격 간격 (%)")
	orderGridCmd.Flags().BoolVar(&orderDryRun, "dry-run", false, "계획만 출력")

	orderDailyCmd.Flags().StringVar(&orderName, "name", "", "종목명")
	orderDailyCmd.Flags().StringVar(&orderMode, "mode", string(backend.ModeAmount), "AMOUNT | QUANTITY")
	orderDailyCmd.Flags().Int64Var(&orderAmount, "amount", 0, "총 주문금액 (AMOUNT)")
	orderDailyCmd.Flags().IntVar(&orderPeriod, "period", 5, "기간 (일)")
	orderDailyCmd.Flags().BoolVar(&orderDryRun, "dry-run", false, "미리보기만 출력")

}
