package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moviesearch_http_requests_total",
		Help: "Total number of HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moviesearch_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "moviesearch_websocket_connections",
		Help: "Open state push connections.",
	})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moviesearch_rate_limited_requests_total",
		Help: "Requests rejected by the per-IP rate limiter.",
	})
)

// RegisterSessions exposes the live session count as a gauge.
func RegisterSessions(reg prometheus.Registerer, count func() int) error {
	return reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "moviesearch_sessions",
		Help: "Live browser sessions.",
	}, func() float64 { return float64(count()) }))
}
