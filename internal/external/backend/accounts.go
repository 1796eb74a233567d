package backend

import (
	"context"
	"fmt"
)

// AllAccounts lists every account with its owner name (GET /accounts/)
func (c *Client) AllAccounts(ctx context.Context) ([]AccountWithUser, error) {
	var accounts []AccountWithUser
	if err := c.get(ctx, "/accounts/", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// UserAccounts lists one member's accounts
func (c *Client) UserAccounts(ctx context.Context, userID int64) ([]Account, error) {
	var accounts []Account
	if err := c.get(ctx, fmt.Sprintf("/users/%d/accounts", userID), nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// CreateAccount registers a brokerage account under a member
func (c *Client) CreateAccount(ctx context.Context, userID int64, req AccountCreate) (*Account, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var account Account
	if err := c.post(ctx, fmt.Sprintf("/users/%d/accounts", userID), req, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateAccount patches account settings (키 교체 포함)
func (c *Client) UpdateAccount(ctx context.Context, accountID int64, req AccountUpdate) (*Account, error) {
	var account Account
	if err := c.put(ctx, fmt.Sprintf("/accounts/%d", accountID), req, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// DeleteAccount removes an account
func (c *Client) DeleteAccount(ctx context.Context, accountID int64) error {
	return c.delete(ctx, fmt.Sprintf("/accounts/%d", accountID), nil)
}

// RefreshToken forces a broker access-token refresh for the account
func (c *Client) RefreshToken(ctx context.Context, accountID int64) (*TokenRefreshResult, error) {
	var result TokenRefreshResult
	if err := c.post(ctx, fmt.Sprintf("/accounts/%d/token", accountID), nil, &result); err != nil {
		return nil, err
	}

	c.logger.WithAccount(accountID).Info("Account token refreshed")
	return &result, nil
}

// Balance fetches one account's balance snapshot
func (c *Client) Balance(ctx context.Context, accountID int64) (*Balance, error) {
	var balance Balance
	if err := c.get(ctx, fmt.Sprintf("/accounts/%d/balance", accountID), nil, &balance); err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"account_id": accountID,
		"holdings":   len(balance.Holdings),
	}).Debug("Balance fetched")
	return &balance, nil
}

// AccountHistory returns daily asset history of one account
func (c *Client) AccountHistory(ctx context.Context, accountID int64) ([]AssetHistoryPoint, error) {
	var points []AssetHistoryPoint
	if err := c.get(ctx, fmt.Sprintf("/accounts/%d/history", accountID), nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// AggregateHistory returns daily asset history summed over all accounts
func (c *Client) AggregateHistory(ctx context.Context) ([]AssetHistoryPoint, error) {
	var points []AssetHistoryPoint
	if err := c.get(ctx, "/accounts/history/aggregate", nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}
