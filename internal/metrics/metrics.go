package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the service's collectors.
	Registry = prometheus.NewRegistry()

	HTTPInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ecommerce",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ecommerce",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	OrdersPlaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Total number of orders committed.",
		},
	)

	OrderProducts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ecommerce",
			Subsystem: "orders",
			Name:      "products_per_order",
			Help:      "Number of products associated with each placed order.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		},
	)

	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ecommerce",
			Subsystem: "notifications",
			Name:      "sent_total",
			Help:      "Order confirmations attempted, by channel and outcome.",
		},
		[]string{"channel", "success"},
	)
)

func init() {
	Registry.MustRegister(
		HTTPInFlight,
		HTTPRequests,
		HTTPDuration,
		OrdersPlaced,
		OrderProducts,
		Notifications,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler exposes the registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordOrderPlaced is called once per committed order.
func RecordOrderPlaced(productCount int) {
	OrdersPlaced.Inc()
	OrderProducts.Observe(float64(productCount))
}

func RecordNotification(channel string, err error) {
	success := "true"
	if err != nil {
		success = "false"
	}
	Notifications.WithLabelValues(channel, success).Inc()
}
