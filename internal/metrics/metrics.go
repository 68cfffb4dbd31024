// AngelaMos | 2026
// metrics.go

package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/usha3107/multi-tenant-saas/internal/middleware"
	"github.com/usha3107/multi-tenant-saas/internal/policy"
)

// Metrics owns a private registry so tests and multiple servers in one
// process never collide on metric names.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	authzDecisions  *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		authzDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "authz_decisions_total",
				Help:      "Authorization decisions by action and outcome",
			},
			[]string{"action", "decision", "reason"},
		),
	}
}

// RegisterDB exposes connection pool stats for db.
func (m *Metrics) RegisterDB(db *sql.DB, name string) {
	m.registry.MustRegister(collectors.NewDBStatsCollector(db, name))
}

// RegisterRedis exposes the go-redis connection pool counters.
func (m *Metrics) RegisterRedis(client *redis.Client, name string) {
	factory := promauto.With(m.registry)
	labels := prometheus.Labels{"pool": name}

	gauge := func(metric, help string, read func(*redis.PoolStats) uint32) {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "redis_pool_" + metric,
			Help:        help,
			ConstLabels: labels,
		}, func() float64 {
			return float64(read(client.PoolStats()))
		})
	}

	gauge("hits", "Times a free connection was found in the pool", func(s *redis.PoolStats) uint32 { return s.Hits })
	gauge("misses", "Times a free connection was not found in the pool", func(s *redis.PoolStats) uint32 { return s.Misses })
	gauge("timeouts", "Times a wait for a connection timed out", func(s *redis.PoolStats) uint32 { return s.Timeouts })
	gauge("total_conns", "Connections currently in the pool", func(s *redis.PoolStats) uint32 { return s.TotalConns })
	gauge("idle_conns", "Idle connections in the pool", func(s *redis.PoolStats) uint32 { return s.IdleConns })
}

func (m *Metrics) RecordDecision(action string, d policy.Decision) {
	outcome := "allow"
	if !d.Allowed {
		outcome = "deny"
	}
	m.authzDecisions.WithLabelValues(action, outcome, string(d.Reason)).Inc()
}

// Middleware labels requests by chi route pattern, so ids in the path
// do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped, status := middleware.WrapStatus(w)

		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status())).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

var _ policy.Recorder = (*Metrics)(nil)
