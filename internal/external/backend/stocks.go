package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/lystzs/family-asset-manager/pkg/redis"
)

// DefaultSearchLimit matches the stock picker's page size
const DefaultSearchLimit = 50

// Stocks lists the whole stock master
func (c *Client) Stocks(ctx context.Context) ([]Stock, error) {
	var stocks []Stock
	if err := c.get(ctx, "/stocks/", nil, &stocks); err != nil {
		return nil, err
	}
	return stocks, nil
}

// SearchStocks searches the master by name or code
func (c *Client) SearchStocks(ctx context.Context, keyword string, limit int) ([]Stock, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	var stocks []Stock
	err := c.cached(ctx, redis.StockSearchKey(keyword, limit), &stocks, func() error {
		q := url.Values{}
		q.Set("q", keyword)
		q.Set("limit", strconv.Itoa(limit))
		return c.get(ctx, "/stocks/search", q, &stocks)
	})
	if err != nil {
		return nil, err
	}
	return stocks, nil
}

// StockByCode fetches one master entry
func (c *Client) StockByCode(ctx context.Context, code string) (*Stock, error) {
	var stock Stock
	err := c.cached(ctx, redis.StockKey(code), &stock, func() error {
		return c.get(ctx, fmt.Sprintf("/stocks/%s", url.PathEscape(code)), nil, &stock)
	})
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

// StockStats counts the master by market
func (c *Client) StockStats(ctx context.Context) (*StockStats, error) {
	var stats StockStats
	err := c.cached(ctx, redis.StockStatsKey(), &stats, func() error {
		return c.get(ctx, "/stocks/stats", nil, &stats)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// SyncStocks asks the backend to reload the master and drops cached entries
func (c *Client) SyncStocks(ctx context.Context) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := c.post(ctx, "/stocks/sync", nil, &result); err != nil {
		return nil, err
	}

	if c.stockCache != nil {
		if err := c.stockCache.DeletePattern(ctx, "stock:*"); err != nil {
			c.logger.WithError(err).Warn("Failed to invalidate stock cache")
		}
	}
	return result, nil
}

// cached reads key into dest or runs fetch and stores dest.
// 캐시 장애는 조회를 막지 않음
func (c *Client) cached(ctx context.Context, key string, dest interface{}, fetch func() error) error {
	if c.stockCache == nil {
		return fetch()
	}

	found, err := c.stockCache.Get(ctx, key, dest)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Stock cache read failed")
	}
	if found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	if err := c.stockCache.Set(ctx, key, dest, c.stockTTL); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Stock cache write failed")
	}
	return nil
}
