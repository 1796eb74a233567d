package backend

import (
	"strconv"
	"strings"
)

// ============================================================================
// Members & accounts
// ============================================================================

// User is a family member (가족 구성원)
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserCreate is the body of POST /users/
type UserCreate struct {
	Name string `json:"name" validate:"nonzero"`
}

// Account is a brokerage account owned by a member
type Account struct {
	ID             int64   `json:"id"`
	Alias          string  `json:"alias"`
	UserID         int64   `json:"user_id"`
	CANO           string  `json:"cano"`         // 계좌번호 앞 8자리
	AcntPrdtCd     string  `json:"acnt_prdt_cd"` // 상품코드 뒤 2자리
	APIExpiryDate  *string `json:"api_expiry_date,omitempty"`
	TokenExpiredAt *string `json:"token_expired_at,omitempty"`
}

// AccountWithUser is an account joined with its owner's name (GET /accounts/)
type AccountWithUser struct {
	Account
	UserName string `json:"user_name"`
}

// Label renders "alias (cano-prdt)"
func (a AccountWithUser) Label() string {
	return a.Alias + " (" + a.CANO + "-" + a.AcntPrdtCd + ")"
}

// AccountCreate is the body of POST /users/{id}/accounts
type AccountCreate struct {
	Alias         string  `json:"alias" validate:"nonzero"`
	CANO          string  `json:"cano" validate:"len=8"`
	AcntPrdtCd    string  `json:"acnt_prdt_cd" validate:"len=2"`
	AppKey        string  `json:"app_key" validate:"nonzero"`
	AppSecret     string  `json:"app_secret" validate:"nonzero"`
	HtsID         *string `json:"hts_id,omitempty"`
	APIExpiryDate *string `json:"api_expiry_date,omitempty"`
}

// AccountUpdate is the body of PUT /accounts/{id}. nil fields are left unchanged.
type AccountUpdate struct {
	Alias         *string `json:"alias,omitempty"`
	CANO          *string `json:"cano,omitempty"`
	AcntPrdtCd    *string `json:"acnt_prdt_cd,omitempty"`
	AppKey        *string `json:"app_key,omitempty"`
	AppSecret     *string `json:"app_secret,omitempty"`
	HtsID         *string `json:"hts_id,omitempty"`
	APIExpiryDate *string `json:"api_expiry_date,omitempty"`
}

// TokenRefreshResult is the response of POST /accounts/{id}/token
type TokenRefreshResult struct {
	Message        string  `json:"message"`
	TokenExpiredAt *string `json:"token_expired_at,omitempty"`
}

// MessageResult is the generic {"message": ...} response of delete/cancel calls
type MessageResult struct {
	Message string `json:"message"`
}

// ============================================================================
// Balance (브로커 원본 형식 그대로 전달됨: 숫자는 문자열)
// ============================================================================

// Balance is one balance snapshot: output1 holdings, output2 summary
type Balance struct {
	Holdings []Holding `json:"output1"`
	Summary  []Summary `json:"output2"`
	RtCd     string    `json:"rt_cd,omitempty"`
	Msg1     string    `json:"msg1,omitempty"`
}

// Holding is one stock position
type Holding struct {
	Code          string `json:"pdno"`
	Name          string `json:"prdt_name"`
	Quantity      string `json:"hldg_qty"`
	AvgPrice      string `json:"pchs_avg_pric"`
	CurrentPrice  string `json:"prpr"`
	PurchaseAmt   string `json:"pchs_amt"`
	EvalAmt       string `json:"evlu_amt"`
	ProfitLossAmt string `json:"evlu_pfls_amt"`
	ProfitRate    string `json:"evlu_pfls_rt"`
	DayChangeRate string `json:"fltt_rt"`
}

// Summary is the account-level totals row
type Summary struct {
	StockEvalAmt      string `json:"scts_evlu_amt"`      // 유가증권 평가금액
	PurchaseTotal     string `json:"pchs_amt_smtl_amt"`  // 매입금액 합계
	ProfitLossTotal   string `json:"evlu_pfls_smtl_amt"` // 평가손익 합계
	TotalAsset        string `json:"tot_evlu_amt"`       // 총 평가금액
	Deposit           string `json:"dnca_tot_amt"`       // 예수금
	SettlementDeposit string `json:"prvs_rcdl_excc_amt"` // D+2 예수금
	Orderable         string `json:"nxdy_excc_amt"`      // 주문가능금액
}

// FirstSummary returns output2[0] or a zero Summary
func (b *Balance) FirstSummary() Summary {
	if b == nil || len(b.Summary) == 0 {
		return Summary{}
	}
	return b.Summary[0]
}

// ParseNumber parses a broker numeric string. Missing or unparseable → 0.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// ============================================================================
// Stocks
// ============================================================================

// Stock is a stock master entry
type Stock struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Market string `json:"market"`
}

// StockStats counts the master by market
type StockStats struct {
	Total  int `json:"total"`
	Kospi  int `json:"kospi"`
	Kosdaq int `json:"kosdaq"`
}

// ============================================================================
// Portfolio
// ============================================================================

// CashCode is the pseudo stock code of a cash target
const CashCode = "CASH"

// TargetPortfolio is one (account, stock) target weight
type TargetPortfolio struct {
	ID               int64   `json:"id"`
	AccountID        int64   `json:"account_id"`
	StockCode        string  `json:"stock_code"`
	StockName        string  `json:"stock_name"`
	TargetPercentage float64 `json:"target_percentage"`
	UpdatedAt        string  `json:"updated_at"`
}

// TargetSave is the body of POST /portfolio/{accountId}
type TargetSave struct {
	AccountID        int64   `json:"account_id" validate:"min=1"`
	StockCode        string  `json:"stock_code" validate:"nonzero"`
	StockName        string  `json:"stock_name" validate:"nonzero"`
	TargetPercentage float64 `json:"target_percentage" validate:"min=0,max=100"`
}

// Action is a suggested or requested trade direction
type Action string

const (
	ActionBuy     Action = "BUY"
	ActionSell    Action = "SELL"
	ActionHold    Action = "HOLD"
	ActionReserve Action = "RESERVE"
)

// TradeSuggestion is one backend-computed rebalance line
type TradeSuggestion struct {
	StockCode    string  `json:"stock_code"`
	StockName    string  `json:"stock_name"`
	CurrentQty   int64   `json:"current_qty"`
	CurrentPrice float64 `json:"current_price"`
	CurrentValue float64 `json:"current_value"`
	TargetValue  float64 `json:"target_value"`
	DiffValue    float64 `json:"diff_value"`
	SuggestedQty int64   `json:"suggested_qty"`
	Action       Action  `json:"action"`
}

// RebalanceAnalysis is the response of GET /portfolio/{userId}/analysis/{accountId}
type RebalanceAnalysis struct {
	UserID      int64                  `json:"user_id"`
	AccountID   int64                  `json:"account_id"`
	TotalAsset  float64                `json:"total_asset"`
	CurrentCash float64                `json:"current_cash"`
	Items       []TradeSuggestion      `json:"items"`
	Summary     map[string]interface{} `json:"summary,omitempty"`
}

// ============================================================================
// Trading
// ============================================================================

// Strategy ids recorded in trade logs
const (
	StrategyManual       = "manual"
	StrategyManualLimit  = "manual_limit"
	StrategyManualMarket = "manual_market" // 시장가
	StrategyManualGrid   = "manual_grid"
)

// OrderRequest is the body of POST /trade/order
type OrderRequest struct {
	AccountID  int64   `json:"account_id" validate:"min=1"`
	Ticker     string  `json:"ticker" validate:"nonzero"`
	Quantity   int64   `json:"quantity" validate:"min=1"`
	Price      float64 `json:"price" validate:"min=0"`
	Action     Action  `json:"action" validate:"regexp=^(BUY|SELL)$"`
	StrategyID string  `json:"strategy_id,omitempty"`
}

// OrderResult is the broker pass-through order response
type OrderResult struct {
	RtCd   string                 `json:"rt_cd"`
	MsgCd  string                 `json:"msg_cd"`
	Msg1   string                 `json:"msg1"`
	Output map[string]interface{} `json:"output,omitempty"`
}

// Succeeded reports rt_cd == "0"
func (r *OrderResult) Succeeded() bool {
	return r != nil && r.RtCd == "0"
}

// RevisionRequest is the body of POST /trade/order/revise
type RevisionRequest struct {
	AccountID int64   `json:"account_id" validate:"min=1"`
	OrgnOdno  string  `json:"orgn_odno" validate:"nonzero"`
	Quantity  int64   `json:"quantity" validate:"min=0"`
	Price     float64 `json:"price" validate:"min=0"`
	OrdDvsn   string  `json:"ord_dvsn"`
	AllQty    bool    `json:"all_qty"`
}

// CancelRequest is the body of POST /trade/order/cancel
type CancelRequest struct {
	AccountID int64  `json:"account_id" validate:"min=1"`
	OrgnOdno  string `json:"orgn_odno" validate:"nonzero"`
	Quantity  int64  `json:"quantity" validate:"min=0"`
	AllQty    bool   `json:"all_qty"`
}

// BrokerOrder is an unfilled or executed order row (브로커 원본, 숫자는 문자열)
type BrokerOrder struct {
	Odno         string `json:"odno"`
	Pdno         string `json:"pdno"`
	PrdtName     string `json:"prdt_name"`
	OrdQty       string `json:"ord_qty"`
	OrdUnpr      string `json:"ord_unpr"`
	RmnQty       string `json:"rmn_qty,omitempty"`
	PsblQty      string `json:"psbl_qty,omitempty"`
	NccsQty      string `json:"nccs_qty,omitempty"`
	SllBuyDvsnCd string `json:"sll_buy_dvsn_cd"` // 01 매도, 02 매수
	OrdDvsn      string `json:"ord_dvsn,omitempty"`
	TotCcldQty   string `json:"tot_ccld_qty,omitempty"`
	AvgPrvs      string `json:"avg_prvs,omitempty"`
	OrdTmd       string `json:"ord_tmd,omitempty"`
}

// RemainingQty returns the first present of rmn_qty, psbl_qty, nccs_qty, ord_qty
func (o BrokerOrder) RemainingQty() int64 {
	for _, s := range []string{o.RmnQty, o.PsblQty, o.NccsQty, o.OrdQty} {
		if strings.TrimSpace(s) != "" {
			return int64(ParseNumber(s))
		}
	}
	return 0
}

// Side maps sll_buy_dvsn_cd to an Action
func (o BrokerOrder) Side() Action {
	if o.SllBuyDvsnCd == "01" {
		return ActionSell
	}
	return ActionBuy
}

// ============================================================================
// Scheduled (daily split) orders
// ============================================================================

// OrderMode selects how a scheduled order is sized
type OrderMode string

const (
	ModeQuantity OrderMode = "QUANTITY"
	ModeAmount   OrderMode = "AMOUNT"
)

// Scheduled order status
const (
	ScheduleActive    = "ACTIVE"
	ScheduleCompleted = "COMPLETED"
	ScheduleCancelled = "CANCELLED"
)

// ScheduleRequest is the body of POST /trade/schedule/schedule
type ScheduleRequest struct {
	AccountID     int64     `json:"account_id" validate:"min=1"`
	Ticker        string    `json:"ticker" validate:"nonzero"`
	StockName     string    `json:"stock_name" validate:"nonzero"`
	Action        Action    `json:"action" validate:"regexp=^(BUY|SELL)$"`
	OrderMode     OrderMode `json:"order_mode,omitempty"`
	TotalQuantity int64     `json:"total_quantity,omitempty"`
	DailyQuantity int64     `json:"daily_quantity,omitempty"`
	TotalAmount   int64     `json:"total_amount,omitempty"`
	DailyAmount   int64     `json:"daily_amount,omitempty"`
}

// ScheduledOrder is a backend-owned daily split order
type ScheduledOrder struct {
	ID               int64     `json:"id"`
	AccountID        int64     `json:"account_id"`
	StockCode        string    `json:"stock_code"`
	StockName        string    `json:"stock_name"`
	Action           Action    `json:"action"`
	OrderMode        OrderMode `json:"order_mode"`
	TotalQuantity    int64     `json:"total_quantity"`
	DailyQuantity    int64     `json:"daily_quantity"`
	ExecutedQuantity int64     `json:"executed_quantity"`
	TotalAmount      int64     `json:"total_amount"`
	DailyAmount      int64     `json:"daily_amount"`
	ExecutedAmount   int64     `json:"executed_amount"`
	Status           string    `json:"status"`
	CreatedAt        string    `json:"created_at"`
}

// ============================================================================
// System / batch / logs / history
// ============================================================================

// SchedulerJob is one job registered on the backend scheduler
type SchedulerJob struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	NextRunTime *string `json:"next_run_time"`
	Trigger     string  `json:"trigger"`
	LastRun     *string `json:"last_run,omitempty"`
	LastStatus  *string `json:"last_status,omitempty"` // SUCCESS | FAILED
	Message     *string `json:"message,omitempty"`
}

// SystemStatus is the response of GET /system/status
type SystemStatus struct {
	ServerTime       string         `json:"server_time"`
	AppEnv           string         `json:"app_env"`
	SchedulerEnabled bool           `json:"scheduler_enabled"`
	SchedulerRunning bool           `json:"scheduler_running"`
	ActiveJobs       []SchedulerJob `json:"active_jobs"`
}

// BatchJob is a manually triggerable backend job
type BatchJob struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TradeLog is one order audit record
type TradeLog struct {
	ID         int64   `json:"id"`
	AccountID  int64   `json:"account_id"`
	Timestamp  string  `json:"timestamp"`
	StrategyID string  `json:"strategy_id"`
	Ticker     string  `json:"ticker"`
	Action     string  `json:"action"`
	Price      float64 `json:"price"`
	Quantity   int64   `json:"quantity"`
	Status     string  `json:"status"`
	Message    string  `json:"message"`
}

// AssetHistoryPoint is one day of account (or aggregate) asset history
type AssetHistoryPoint struct {
	Date             string  `json:"date"`
	TotalAssetAmount float64 `json:"total_asset_amount"`
	StockEvalAmount  float64 `json:"stock_eval_amount"`
	CashBalance      float64 `json:"cash_balance"`
	TotalProfitLoss  float64 `json:"total_profit_loss"`
	TotalProfitRate  float64 `json:"total_profit_rate"`
	DailyProfitLoss  float64 `json:"daily_profit_loss"`
	DailyProfitRate  float64 `json:"daily_profit_rate"`
}
