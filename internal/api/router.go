package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lystzs/family-asset-manager/internal/api/handlers"
	"github.com/lystzs/family-asset-manager/internal/metrics"
	"github.com/lystzs/family-asset-manager/internal/proxy"
	"github.com/lystzs/family-asset-manager/pkg/logger"
)

// Handlers groups the view handlers mounted on the router
type Handlers struct {
	Session   *handlers.SessionHandler
	Dashboard *handlers.DashboardHandler
	Portfolio *handlers.PortfolioHandler
	Orders    *handlers.OrderHandler
	Monitor   *handlers.MonitorHandler
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// RequestID returns the id assigned by the request-id middleware
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// NewRouter creates and configures the HTTP router. reg may be nil when metrics are disabled.
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, backendProxy http.Handler, reg *metrics.Registry, version string, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(version)).Methods("GET")
	if reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods("GET")
	}

	// Backend proxy (origin hidden)
	r.PathPrefix(proxy.APIPrefix).Handler(backendProxy)
	r.PathPrefix(proxy.WSPrefix).Handler(backendProxy)

	api := r.PathPrefix("/api").Subrouter()

	// Session (selected account)
	api.HandleFunc("/session", h.Session.Get).Methods("GET")
	api.HandleFunc("/session/refresh", h.Session.Refresh).Methods("POST")
	api.HandleFunc("/session/select", h.Session.Select).Methods("POST")

	// Dashboard
	api.HandleFunc("/dashboard/balance", h.Dashboard.Balance).Methods("GET")
	api.HandleFunc("/dashboard/history", h.Dashboard.History).Methods("GET")
	api.HandleFunc("/dashboard/holdings/{code}/seed", h.Dashboard.HoldingSeed).Methods("GET")

	// Portfolio
	api.HandleFunc("/portfolio/targets", h.Portfolio.Targets).Methods("GET")
	api.HandleFunc("/portfolio/rebalance", h.Portfolio.Rebalance).Methods("GET")
	api.HandleFunc("/portfolio/rebalance/{code}/seed", h.Portfolio.RebalanceSeed).Methods("GET")

	// Orders
	api.HandleFunc("/orders", h.Orders.Place).Methods("POST")
	api.HandleFunc("/orders/grid/preview", h.Orders.GridPreview).Methods("POST")
	api.HandleFunc("/orders/grid/execute", h.Orders.GridExecute).Methods("POST")
	api.HandleFunc("/orders/daily/preview", h.Orders.DailyPreview).Methods("POST")
	api.HandleFunc("/orders/daily", h.Orders.Daily).Methods("POST")
	api.HandleFunc("/orders/revise", h.Orders.Revise).Methods("POST")
	api.HandleFunc("/orders/scheduled", h.Orders.Scheduled).Methods("GET")

	// Monitor
	api.HandleFunc("/monitor/status", h.Monitor.Status).Methods("GET")
	api.HandleFunc("/monitor/jobs", h.Monitor.Jobs).Methods("GET")
	api.HandleFunc("/monitor/jobs/{id}/exec", h.Monitor.Execute).Methods("POST")

	// Apply middleware
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	if reg != nil {
		r.Use(metrics.HTTPMiddleware(reg))
	}

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "ok",
			"service": "fam-dashboard",
			"version": version,
		})
	}
}

// requestIDMiddleware assigns X-Request-ID; the proxy forwards it to the backend
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(proxy.RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
			r.Header.Set(proxy.RequestIDHeader, id)
		}
		w.Header().Set(proxy.RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
			log.WithRequestID(RequestID(r.Context())).WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithRequestID(RequestID(r.Context())).WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
