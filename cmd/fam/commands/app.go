package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
	"github.com/lystzs/family-asset-manager/pkg/config"
	"github.com/lystzs/family-asset-manager/pkg/httputil"
	"github.com/lystzs/family-asset-manager/pkg/logger"
	"github.com/lystzs/family-asset-manager/pkg/redis"
)

// redisPrefix namespaces the cache and limiter keys shared by server and CLI
const redisPrefix = "fam"

// app bundles what every command needs: config, logger, backend client
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	redis  *redis.Client
	client *backend.Client
}

// newApp loads config and builds the backend client.
// quiet keeps one-shot commands at warn level so tables stay readable.
func newApp(ctx context.Context, quiet bool) (*app, error) {
	// 1. Load config
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if env != "" {
		cfg.Env = env
	}
	switch {
	case verbose:
		cfg.LogLevel = "debug"
	case quiet:
		cfg.LogLevel = "warn"
		cfg.LogFormat = "console"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Redis (optional)
	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		rdb = redis.Disabled()
	}

	// 4. Create HTTP client
	httpClient := httputil.New(cfg, log)
	if rdb.Enabled() && cfg.Backend.RateLimit > 0 {
		httpClient.WithRateLimiter(redis.NewRateLimiter(rdb, redisPrefix), redis.BackendRateLimit(cfg.Backend.RateLimit))
	}

	// 5. Create backend client
	client := backend.NewClient(cfg.Backend.PublicBaseURL, httpClient, log)
	if rdb.Enabled() {
		client.WithStockCache(redis.NewCache(rdb, redisPrefix), cfg.Dashboard.StockCacheTTL)
	}

	log.WithFields(map[string]interface{}{
		"backend": cfg.Backend.PublicBaseURL,
		"redis":   rdb.Enabled(),
	}).Debug("CLI initialized")

	return &app{cfg: cfg, log: log, redis: rdb, client: client}, nil
}

func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
}

// accountByID finds an account in the backend list
func (a *app) accountByID(ctx context.Context, id int64) (*backend.AccountWithUser, error) {
	accounts, err := a.client.AllAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch accounts: %w", err)
	}
	for i := range accounts {
		if accounts[i].ID == id {
			return &accounts[i], nil
		}
	}
	return nil, fmt.Errorf("account %d not found", id)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %s", arg)
	}
	return id, nil
}
