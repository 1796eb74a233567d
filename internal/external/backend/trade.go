package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// PlaceOrder submits one order. A broker rejection is not an error:
// check OrderResult.Succeeded.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	if req.StrategyID == "" {
		req.StrategyID = StrategyManual
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	var result OrderResult
	if err := c.post(ctx, "/trade/order", req, &result); err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"account_id":  req.AccountID,
		"ticker":      req.Ticker,
		"action":      req.Action,
		"quantity":    req.Quantity,
		"price":       req.Price,
		"strategy_id": req.StrategyID,
		"rt_cd":       result.RtCd,
	}).Info("Order submitted")
	return &result, nil
}

// ReviseOrder changes price (and quantity) of an open order
func (c *Client) ReviseOrder(ctx context.Context, req RevisionRequest) (*OrderResult, error) {
	if req.OrdDvsn == "" {
		req.OrdDvsn = "00"
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	var result OrderResult
	if err := c.post(ctx, "/trade/order/revise", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelOrder cancels all or part of an open order
func (c *Client) CancelOrder(ctx context.Context, req CancelRequest) (*OrderResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var result OrderResult
	if err := c.post(ctx, "/trade/order/cancel", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UnfilledOrders lists open (미체결) orders
func (c *Client) UnfilledOrders(ctx context.Context, accountID int64) ([]BrokerOrder, error) {
	var raw json.RawMessage
	if err := c.get(ctx, fmt.Sprintf("/trade/orders/unfilled/%d", accountID), nil, &raw); err != nil {
		return nil, err
	}
	return decodeOrderList(raw)
}

// ExecutedOrders lists today's executed (체결) orders
func (c *Client) ExecutedOrders(ctx context.Context, accountID int64) ([]BrokerOrder, error) {
	var raw json.RawMessage
	if err := c.get(ctx, fmt.Sprintf("/trade/orders/executed/%d", accountID), nil, &raw); err != nil {
		return nil, err
	}
	return decodeOrderList(raw)
}

// decodeOrderList accepts a bare list or the broker envelope {output1|output: [...]}
func decodeOrderList(raw json.RawMessage) ([]BrokerOrder, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []BrokerOrder{}, nil
	}

	if raw[0] == '[' {
		var orders []BrokerOrder
		if err := json.Unmarshal(raw, &orders); err != nil {
			return nil, fmt.Errorf("decode order list: %w", err)
		}
		return orders, nil
	}

	var envelope struct {
		Output1 []BrokerOrder `json:"output1"`
		Output  []BrokerOrder `json:"output"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode order envelope: %w", err)
	}
	if envelope.Output1 != nil {
		return envelope.Output1, nil
	}
	if envelope.Output != nil {
		return envelope.Output, nil
	}
	return []BrokerOrder{}, nil
}
