package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
// A nil *Registry is valid and records nothing (METRICS_ENABLED=false).
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Dashboard metrics
	gridSteps       *prometheus.CounterVec
	gridRuns        *prometheus.CounterVec
	ordersSubmitted *prometheus.CounterVec
	balanceFetches  *prometheus.CounterVec
	statusPolls     *prometheus.CounterVec
	accountsLoaded  prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.gridSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fam_grid_steps_total",
			Help: "Split order steps by final status",
		},
		[]string{"action", "status"},
	)
	r.gridRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fam_grid_runs_total",
			Help: "Split order runs by outcome",
		},
		[]string{"outcome"},
	)
	r.ordersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fam_orders_submitted_total",
			Help: "Orders submitted through the dashboard",
		},
		[]string{"strategy", "status"},
	)
	r.balanceFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fam_balance_fetches_total",
			Help: "Per-account balance fetches during aggregation",
		},
		[]string{"result"},
	)
	r.statusPolls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fam_status_polls_total",
			Help: "Backend system status polls",
		},
		[]string{"result"},
	)
	r.accountsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fam_accounts_loaded",
			Help: "Number of accounts in the session",
		},
	)

	reg.MustRegister(r.gridSteps)
	reg.MustRegister(r.gridRuns)
	reg.MustRegister(r.ordersSubmitted)
	reg.MustRegister(r.balanceFetches)
	reg.MustRegister(r.statusPolls)
	reg.MustRegister(r.accountsLoaded)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	if r == nil {
		return
	}
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	if r == nil {
		return
	}
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	if r == nil {
		return
	}
	r.httpRequestsInFlight.Dec()
}

// RecordGridStep records one split order step.
func (r *Registry) RecordGridStep(action, status string) {
	if r == nil {
		return
	}
	r.gridSteps.WithLabelValues(action, status).Inc()
}

// RecordGridRun records a finished split order run.
func (r *Registry) RecordGridRun(allSucceeded bool) {
	if r == nil {
		return
	}
	outcome := "partial"
	if allSucceeded {
		outcome = "complete"
	}
	r.gridRuns.WithLabelValues(outcome).Inc()
}

// RecordOrder records a single submitted order.
func (r *Registry) RecordOrder(strategy string, ok bool) {
	if r == nil {
		return
	}
	r.ordersSubmitted.WithLabelValues(strategy, resultLabel(ok)).Inc()
}

// RecordBalanceFetch records one account fetch of an aggregation.
func (r *Registry) RecordBalanceFetch(ok bool) {
	if r == nil {
		return
	}
	r.balanceFetches.WithLabelValues(resultLabel(ok)).Inc()
}

// RecordStatusPoll records a system status poll.
func (r *Registry) RecordStatusPoll(ok bool) {
	if r == nil {
		return
	}
	r.statusPolls.WithLabelValues(resultLabel(ok)).Inc()
}

// SetAccounts sets the number of loaded accounts.
func (r *Registry) SetAccounts(n int) {
	if r == nil {
		return
	}
	r.accountsLoaded.Set(float64(n))
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
