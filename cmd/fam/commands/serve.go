package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lystzs/family-asset-manager/internal/account"
	"github.com/lystzs/family-asset-manager/internal/api"
	"github.com/lystzs/family-asset-manager/internal/api/handlers"
	"github.com/lystzs/family-asset-manager/internal/balance"
	"github.com/lystzs/family-asset-manager/internal/metrics"
	"github.com/lystzs/family-asset-manager/internal/monitor"
	"github.com/lystzs/family-asset-manager/internal/proxy"
)

// Version is stamped at build time: -ldflags "-X .../commands.Version=..."
var Version = "dev"

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "대시보드 서버 시작",
	Long: `대시보드 BFF 서버를 시작합니다.

이 명령어는:
- 계좌 목록을 불러와 첫 계좌를 선택
- 배치 상태를 10초마다 폴링
- /api/proxy/*, /ws/* 를 백엔드로 프록시 (백엔드 주소는 노출하지 않음)
- 화면용 JSON API 제공

Endpoints:
  GET  /health                        - Health check
  GET  /metrics                       - Prometheus metrics
  GET  /api/session                   - 계좌 목록 / 선택 계좌
  GET  /api/dashboard/balance         - 잔고 (단일 또는 전체 합산)
  GET  /api/portfolio/rebalance       - 리밸런싱 분석
  POST /api/orders/grid/execute       - 분할 주문 실행
  GET  /api/monitor/status            - 배치 상태

Example:
  go run ./cmd/fam serve
  go run ./cmd/fam serve --port 8089`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "서버 포트 (기본값 PORT 환경변수)")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Family Asset Manager Dashboard ===")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Config, logger, backend client
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, log := a.cfg, a.log
	if servePort != "" {
		cfg.Port = servePort
	}

	log.WithFields(map[string]interface{}{
		"port":    cfg.Port,
		"env":     cfg.Env,
		"backend": cfg.Backend.InternalURL,
	}).Info("Initializing dashboard server")

	// 2. Metrics
	var reg *metrics.Registry
	if cfg.MetricsEnabled {
		reg = metrics.NewRegistry()
	}

	// 3. Account context (mount-time refresh)
	store := account.NewStore(a.client, log)
	unsubscribe := store.Subscribe(func(s account.Snapshot) {
		reg.SetAccounts(len(s.Accounts))
	})
	defer unsubscribe()
	defer store.Close()
	store.Start(ctx)

	// 4. Batch status poller
	poller := monitor.NewStatusPoller(a.client, cfg.Dashboard.PollInterval, log).WithMetrics(reg)
	if err := poller.Start(); err != nil {
		return fmt.Errorf("start status poller: %w", err)
	}
	defer poller.Stop()

	// 5. Backend proxy
	backendProxy, err := proxy.New(cfg.Backend.InternalURL, log)
	if err != nil {
		return fmt.Errorf("create proxy: %w", err)
	}

	// 6. Handlers and router
	aggregator := balance.NewAggregator(a.client, log).WithMetrics(reg)
	router := api.NewRouter(api.Handlers{
		Session:   handlers.NewSessionHandler(store, log),
		Dashboard: handlers.NewDashboardHandler(store, a.client, aggregator, log),
		Portfolio: handlers.NewPortfolioHandler(store, a.client, log),
		Orders:    handlers.NewOrderHandler(store, a.client, reg, cfg.Dashboard.GridStepDelay, log),
		Monitor:   handlers.NewMonitorHandler(poller, log),
	}, backendProxy, reg, Version, log)

	// 7. Create server
	server := api.New(cfg, log, router)

	// 8. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("Dashboard server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
