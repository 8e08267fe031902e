package http

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	tokensIssuedTotal   *prometheus.CounterVec
)

// initMetrics registra las métricas una sola vez, en el default registry.
func initMetrics() {
	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duración de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		tokensIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_tokens_issued_total",
			Help: "Tokens emitidos por grant_type y resultado",
		}, []string{"grant_type", "result"})

		prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, tokensIssuedTotal)
	})
}

// Metrics es el middleware que alimenta las métricas HTTP.
func Metrics(next http.Handler) http.Handler {
	initMetrics()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(sw.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// MetricsHandler expone /metrics.
func MetricsHandler() http.Handler {
	initMetrics()
	return promhttp.Handler()
}

// countTokenIssued registra el resultado de un intento de emisión.
func countTokenIssued(grantType, result string) {
	initMetrics()
	if grantType == "" {
		grantType = "unknown"
	}
	tokensIssuedTotal.WithLabelValues(grantType, result).Inc()
}
