package backend

import (
	"context"
	"fmt"
)

// ScheduleOrder creates a daily split order executed by the backend scheduler
func (c *Client) ScheduleOrder(ctx context.Context, req ScheduleRequest) (*ScheduledOrder, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	switch req.OrderMode {
	case ModeAmount:
		if req.TotalAmount <= 0 || req.DailyAmount <= 0 {
			return nil, fmt.Errorf("%w: amount mode needs total_amount and daily_amount", ErrInvalidRequest)
		}
	default:
		if req.TotalQuantity <= 0 || req.DailyQuantity <= 0 {
			return nil, fmt.Errorf("%w: quantity mode needs total_quantity and daily_quantity", ErrInvalidRequest)
		}
	}

	var order ScheduledOrder
	if err := c.post(ctx, "/trade/schedule/schedule", req, &order); err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"account_id": req.AccountID,
		"ticker":     req.Ticker,
		"mode":       req.OrderMode,
		"order_id":   order.ID,
	}).Info("Daily split order scheduled")
	return &order, nil
}

// ScheduledOrders lists an account's scheduled orders
func (c *Client) ScheduledOrders(ctx context.Context, accountID int64) ([]ScheduledOrder, error) {
	var orders []ScheduledOrder
	if err := c.get(ctx, fmt.Sprintf("/trade/schedule/list/%d", accountID), nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CancelScheduledOrder marks a scheduled order CANCELLED
func (c *Client) CancelScheduledOrder(ctx context.Context, orderID int64) error {
	return c.delete(ctx, fmt.Sprintf("/trade/schedule/%d", orderID), nil)
}
