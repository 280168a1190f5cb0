package gateway

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_gateway_requests_total",
			Help: "Outbound requests issued through the gateway",
		},
		[]string{"method", "code_class", "attempt"},
	)

	refreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_gateway_refresh_total",
			Help: "Silent token refresh attempts triggered by 401/403 responses",
		},
		[]string{"outcome"},
	)

	teardownTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shopfront_gateway_session_teardowns_total",
			Help: "Terminal auth failures that destroyed both sessions",
		},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, refreshTotal, teardownTotal)
}
