package backend

import (
	"context"
	"fmt"
)

// Targets lists an account's target portfolio entries
func (c *Client) Targets(ctx context.Context, accountID int64) ([]TargetPortfolio, error) {
	var targets []TargetPortfolio
	if err := c.get(ctx, fmt.Sprintf("/portfolio/%d", accountID), nil, &targets); err != nil {
		return nil, err
	}
	return targets, nil
}

// SaveTarget creates or updates the (account, stock) target weight
func (c *Client) SaveTarget(ctx context.Context, req TargetSave) (*TargetPortfolio, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var target TargetPortfolio
	if err := c.post(ctx, fmt.Sprintf("/portfolio/%d", req.AccountID), req, &target); err != nil {
		return nil, err
	}
	return &target, nil
}

// DeleteTarget removes one target entry by its id
func (c *Client) DeleteTarget(ctx context.Context, targetID int64) error {
	return c.delete(ctx, fmt.Sprintf("/portfolio/%d", targetID), nil)
}

// AnalyzeRebalance asks the backend for buy/sell suggestions
func (c *Client) AnalyzeRebalance(ctx context.Context, userID, accountID int64) (*RebalanceAnalysis, error) {
	var analysis RebalanceAnalysis
	if err := c.get(ctx, fmt.Sprintf("/portfolio/%d/analysis/%d", userID, accountID), nil, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}
