package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lystzs/family-asset-manager/pkg/config"
	"github.com/lystzs/family-asset-manager/pkg/httputil"
	"github.com/lystzs/family-asset-manager/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{Backend: config.BackendConfig{Timeout: 5 * time.Second}}
	httpClient := httputil.New(cfg, logger.Nop()).WithRetry(1, 10*time.Millisecond)
	return NewClient(server.URL+"/v1", httpClient, logger.Nop())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestAllAccounts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/accounts/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`[
			{"id":1,"alias":"엄마 연금","user_id":10,"cano":"12345678","acnt_prdt_cd":"01","user_name":"엄마","token_expired_at":null},
			{"id":2,"alias":"아빠 ISA","user_id":11,"cano":"87654321","acnt_prdt_cd":"22","user_name":"아빠","api_expiry_date":"2027-01-01"}
		]`))
	})
	client := newTestClient(t, mux)

	accounts, err := client.AllAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	assert.Equal(t, int64(1), accounts[0].ID)
	assert.Equal(t, "엄마", accounts[0].UserName)
	assert.Nil(t, accounts[0].TokenExpiredAt)
	require.NotNil(t, accounts[1].APIExpiryDate)
	assert.Equal(t, "2027-01-01", *accounts[1].APIExpiryDate)
	assert.Equal(t, "아빠 ISA (87654321-22)", accounts[1].Label())
}

func TestBalanceDecodesBrokerShape(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/accounts/3/balance", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"rt_cd":"0",
			"output1":[{"pdno":"005930","prdt_name":"삼성전자","hldg_qty":"10","pchs_amt":"700000","evlu_amt":"720000","evlu_pfls_amt":"20000","pchs_avg_pric":"70000.0000","evlu_pfls_rt":"2.86","prpr":"72000","fltt_rt":"-0.55"}],
			"output2":[{"scts_evlu_amt":"720000","tot_evlu_amt":"1000000","dnca_tot_amt":"280000","nxdy_excc_amt":"280000"}]
		}`))
	})
	client := newTestClient(t, mux)

	balance, err := client.Balance(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, balance.Holdings, 1)

	h := balance.Holdings[0]
	assert.Equal(t, "005930", h.Code)
	assert.Equal(t, 10.0, ParseNumber(h.Quantity))
	assert.Equal(t, 70000.0, ParseNumber(h.AvgPrice))
	assert.Equal(t, 1000000.0, ParseNumber(balance.FirstSummary().TotalAsset))
	assert.Equal(t, 0.0, ParseNumber(balance.FirstSummary().PurchaseTotal), "missing field → 0")
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"  ", 0},
		{"abc", 0},
		{"0000123", 123},
		{"-1.5", -1.5},
		{" 42 ", 42},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseNumber(tt.in), "ParseNumber(%q)", tt.in)
	}
}

func TestAPIErrorDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/accounts/9/balance", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Account not found"})
	})
	mux.HandleFunc("/v1/portfolio/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"detail": []map[string]string{{"msg": "field required"}, {"msg": "value is not a valid float"}},
		})
	})
	mux.HandleFunc("/v1/users/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("plain failure"))
	})
	client := newTestClient(t, mux)
	ctx := context.Background()

	_, err := client.Balance(ctx, 9)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Account not found", DetailOf(err, "잔고 조회 실패"))
	assert.True(t, IsNotFound(err))

	_, err = client.SaveTarget(ctx, TargetSave{AccountID: 1, StockCode: "005930", StockName: "삼성전자", TargetPercentage: 10})
	assert.Equal(t, "field required; value is not a valid float", DetailOf(err, ""))

	_, err = client.Users(ctx)
	assert.Equal(t, "plain failure", DetailOf(err, ""))
}

func TestDetailOfFallback(t *testing.T) {
	assert.Equal(t, "", DetailOf(nil, "x"))
	assert.Equal(t, "fallback", DetailOf(errors.New("dial tcp: refused"), "fallback"))
	assert.Equal(t, "dial tcp: refused", DetailOf(errors.New("dial tcp: refused"), ""))
}

func TestServerErrorIsRetriedForReads(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/system/status", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"server_time":"2026-10-16T09:00:00","app_env":"prod","scheduler_enabled":true,"scheduler_running":true,"active_jobs":[{"id":"daily","name":"Daily","next_run_time":null,"trigger":"cron"}]}`))
	})
	client := newTestClient(t, mux)

	status, err := client.SystemStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.SchedulerRunning)
	require.Len(t, status.ActiveJobs, 1)
	assert.Nil(t, status.ActiveJobs[0].NextRunTime)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPlaceOrder(t *testing.T) {
	var got OrderRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/trade/order", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"rt_cd":"0","msg_cd":"APBK0013","msg1":"주문 전송 완료 되었습니다.","output":{"ODNO":"0000117057"}}`))
	})
	client := newTestClient(t, mux)

	result, err := client.PlaceOrder(context.Background(), OrderRequest{
		AccountID: 1, Ticker: "005930", Quantity: 3, Price: 71000, Action: ActionBuy,
	})
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Equal(t, "주문 전송 완료 되었습니다.", result.Msg1)
	assert.Equal(t, StrategyManual, got.StrategyID)
	assert.Equal(t, int64(3), got.Quantity)
}

func TestPlaceOrderValidation(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/trade/order", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	client := newTestClient(t, mux)
	ctx := context.Background()

	invalid := []OrderRequest{
		{AccountID: 0, Ticker: "005930", Quantity: 1, Action: ActionBuy},
		{AccountID: 1, Ticker: "", Quantity: 1, Action: ActionBuy},
		{AccountID: 1, Ticker: "005930", Quantity: 0, Action: ActionBuy},
		{AccountID: 1, Ticker: "005930", Quantity: 1, Price: -1, Action: ActionBuy},
		{AccountID: 1, Ticker: "005930", Quantity: 1, Action: ActionHold},
	}
	for _, req := range invalid {
		_, err := client.PlaceOrder(ctx, req)
		assert.Error(t, err, "%+v", req)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "invalid orders never reach the backend")
}

func TestOrderListShapes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/trade/orders/unfilled/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"odno":"1","pdno":"005930","ord_qty":"10","psbl_qty":"4","sll_buy_dvsn_cd":"02"}]`))
	})
	mux.HandleFunc("/v1/trade/orders/executed/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rt_cd":"0","output1":[{"odno":"2","pdno":"000660","ord_qty":"5","tot_ccld_qty":"5","sll_buy_dvsn_cd":"01"}]}`))
	})
	mux.HandleFunc("/v1/trade/orders/unfilled/2", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"output":[]}`))
	})
	client := newTestClient(t, mux)
	ctx := context.Background()

	unfilled, err := client.UnfilledOrders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, unfilled, 1)
	assert.Equal(t, int64(4), unfilled[0].RemainingQty())
	assert.Equal(t, ActionBuy, unfilled[0].Side())

	executed, err := client.ExecutedOrders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, executed, 1)
	assert.Equal(t, ActionSell, executed[0].Side())

	empty, err := client.UnfilledOrders(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRemainingQtyPrecedence(t *testing.T) {
	assert.Equal(t, int64(7), BrokerOrder{RmnQty: "7", PsblQty: "4", OrdQty: "10"}.RemainingQty())
	assert.Equal(t, int64(3), BrokerOrder{NccsQty: "3", OrdQty: "10"}.RemainingQty())
	assert.Equal(t, int64(10), BrokerOrder{OrdQty: "10"}.RemainingQty())
	assert.Equal(t, int64(0), BrokerOrder{}.RemainingQty())
}

func TestScheduleOrderModes(t *testing.T) {
	var got ScheduleRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/trade/schedule/schedule", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, ScheduledOrder{ID: 5, StockName: got.StockName, Status: ScheduleActive})
	})
	client := newTestClient(t, mux)
	ctx := context.Background()

	order, err := client.ScheduleOrder(ctx, ScheduleRequest{
		AccountID: 1, Ticker: "005930", StockName: "삼성전자", Action: ActionBuy,
		OrderMode: ModeAmount, TotalAmount: 1000000, DailyAmount: 142857,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), order.ID)
	assert.Equal(t, ModeAmount, got.OrderMode)
	assert.Equal(t, int64(142857), got.DailyAmount)
	assert.Zero(t, got.TotalQuantity)

	_, err = client.ScheduleOrder(ctx, ScheduleRequest{
		AccountID: 1, Ticker: "005930", StockName: "삼성전자", Action: ActionBuy,
		OrderMode: ModeAmount, TotalAmount: 1000000,
	})
	assert.Error(t, err)

	_, err = client.ScheduleOrder(ctx, ScheduleRequest{
		AccountID: 1, Ticker: "005930", StockName: "삼성전자", Action: ActionSell,
		OrderMode: ModeQuantity,
	})
	assert.Error(t, err)
}

func TestTradeLogsQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/logs/trade", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20", r.URL.Query().Get("skip"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		w.Write([]byte(`[{"id":1,"account_id":null,"timestamp":"2026-10-16T09:01:00","strategy_id":"manual_grid","ticker":"005930","action":"BUY","price":70000,"quantity":4,"status":"SUCCESS","message":null}]`))
	})
	client := newTestClient(t, mux)

	logs, err := client.TradeLogs(context.Background(), 20, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "manual_grid", logs[0].StrategyID)
	assert.Zero(t, logs[0].AccountID)
}

func TestSearchStocksQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/stocks/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "삼성", r.URL.Query().Get("q"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		w.Write([]byte(`[{"code":"005930","name":"삼성전자","market":"KOSPI"}]`))
	})
	client := newTestClient(t, mux)

	stocks, err := client.SearchStocks(context.Background(), "삼성", 0)
	require.NoError(t, err)
	require.Len(t, stocks, 1)
	assert.Equal(t, "KOSPI", stocks[0].Market)
}
