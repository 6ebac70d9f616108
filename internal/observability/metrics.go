// Package observability содержит Prometheus-метрики relay.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LLMBuckets покрывают задержки вендоров от 100 мс до 120 с.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal считает HTTP-запросы по методу, маршруту и классу статуса.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_relay_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_relay_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method", "route"},
	)

	// VendorRequestsTotal считает вызовы вендоров; outcome это "ok" или вид ошибки.
	VendorRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_relay_vendor_requests_total",
			Help: "Vendor requests",
		},
		[]string{"vendor", "outcome"},
	)

	VendorLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_relay_vendor_latency_seconds",
			Help:    "Vendor latency",
			Buckets: LLMBuckets,
		},
		[]string{"vendor"},
	)

	VendorTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_relay_vendor_tokens_total",
			Help: "Token count",
		},
		[]string{"vendor", "direction"},
	)

	RateLimitRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_relay_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		VendorRequestsTotal,
		VendorLatency,
		VendorTokensTotal,
		RateLimitRejectedTotal,
	)
}

// ObserveVendorCall записывает один вызов вендора.
func ObserveVendorCall(vendor, outcome string, latency time.Duration, inputTokens, outputTokens int) {
	VendorRequestsTotal.WithLabelValues(vendor, outcome).Inc()
	VendorLatency.WithLabelValues(vendor).Observe(latency.Seconds())
	if inputTokens > 0 {
		VendorTokensTotal.WithLabelValues(vendor, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		VendorTokensTotal.WithLabelValues(vendor, "output").Add(float64(outputTokens))
	}
}
