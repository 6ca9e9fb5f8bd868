package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	clientRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Outgoing backend requests by method, path and status.",
		},
		[]string{"method", "path", "status"},
	)

	clientDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Latency of outgoing backend requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	serverInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: "fakeapi",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight requests served by the test backend.",
		},
	)

	serverRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "fakeapi",
			Name:      "requests_total",
			Help:      "Requests served by the test backend.",
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	Registry.MustRegister(clientRequests, clientDuration, serverInFlight, serverRequests)
}

// ObserveClientRequest records one outgoing request. Status 0 means the
// request failed before a response arrived.
func ObserveClientRequest(method, path string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	clientRequests.WithLabelValues(method, path, label).Inc()
	clientDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// TrackServerRequest increments the in-flight gauge and returns the function
// that records completion.
func TrackServerRequest(method, path string) func(status int) {
	serverInFlight.Inc()
	return func(status int) {
		serverInFlight.Dec()
		serverRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	}
}

// Handler exposes Registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
