// Package monitoring exposes Prometheus metrics for the HTTP API and the
// catalog, on a registry owned by the process.
package monitoring

import (
	"strconv"
	"time"

	"github.com/eerojala/My-video-game-collection/concurrent"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Registry *prometheus.Registry

	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec
	HttpResponseSize    *prometheus.HistogramVec
	ActiveConnections   prometheus.Gauge
	ErrorsTotal         *prometheus.CounterVec

	AuthenticationAttempts *prometheus.CounterVec

	// Catalog gauges, refreshed by the stats job.
	TotalPlatforms  prometheus.Gauge
	TotalGames      prometheus.Gauge
	TotalUsers      prometheus.Gauge
	TotalUserGames  prometheus.Gauge
	UserGamesStatus *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HttpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HttpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		HttpResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "endpoint"},
		),
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of requests in flight",
		}),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "errors_total",
				Help: "Total number of error responses",
			},
			[]string{"type", "endpoint"},
		),
		AuthenticationAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authentication_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"status"}, // success or failure
		),
		TotalPlatforms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_platforms",
			Help: "Number of platforms in the catalog",
		}),
		TotalGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_games",
			Help: "Number of games in the catalog",
		}),
		TotalUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "total_users",
			Help: "Total number of registered users",
		}),
		TotalUserGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "collection_user_games",
			Help: "Number of games held in user collections",
		}),
		UserGamesStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "collection_user_games_by_status",
				Help: "Collection entries per completion status",
			},
			[]string{"status"},
		),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HttpRequestsTotal,
		m.HttpRequestDuration,
		m.HttpResponseSize,
		m.ActiveConnections,
		m.ErrorsTotal,
		m.AuthenticationAttempts,
		m.TotalPlatforms,
		m.TotalGames,
		m.TotalUsers,
		m.TotalUserGames,
		m.UserGamesStatus,
	)
	return m
}

// Middleware collects metrics for each request. Unmatched routes are
// labelled "unknown" to keep cardinality bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.ActiveConnections.Inc()
		defer m.ActiveConnections.Dec()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		status := c.Writer.Status()

		m.HttpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(status)).Inc()
		m.HttpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
		m.HttpResponseSize.WithLabelValues(c.Request.Method, endpoint).Observe(float64(c.Writer.Size()))

		if status >= 500 {
			m.ErrorsTotal.WithLabelValues("server_error", endpoint).Inc()
		} else if status >= 400 {
			m.ErrorsTotal.WithLabelValues("client_error", endpoint).Inc()
		}
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func (m *Metrics) RecordLogin(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	m.AuthenticationAttempts.WithLabelValues(status).Inc()
}

// ObserveCatalog copies a stats snapshot into the catalog gauges.
func (m *Metrics) ObserveCatalog(stats *concurrent.CatalogStats) {
	m.TotalPlatforms.Set(float64(stats.Platforms))
	m.TotalGames.Set(float64(stats.Games))
	m.TotalUsers.Set(float64(stats.Users))
	m.TotalUserGames.Set(float64(stats.Entries))
	for status, n := range stats.ByStatus {
		m.UserGamesStatus.WithLabelValues(string(status)).Set(float64(n))
	}
}
