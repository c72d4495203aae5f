package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration    *prometheus.HistogramVec
	requestsTotal      *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	notifications      *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tucredito_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tucredito_requests_total",
				Help: "Total requests processed by status class.",
			},
			[]string{"status"},
		),
		validationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tucredito_validation_failures_total",
				Help: "Total writes rejected by the validation layer.",
			},
			[]string{"resource"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tucredito_notifications_total",
				Help: "Credit-created notification attempts by result.",
			},
			[]string{"result"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// IncrValidationFailure increments the rejected-write counter for a resource.
func (m *Metrics) IncrValidationFailure(resource string) {
	m.validationFailures.WithLabelValues(resource).Inc()
}

// IncrNotification increments the notification counter ("sent" or "failed").
func (m *Metrics) IncrNotification(result string) {
	m.notifications.WithLabelValues(result).Inc()
}

// ValidationFailures returns the current rejected-write count for a resource.
func (m *Metrics) ValidationFailures(resource string) float64 {
	return getCounterValue(m.validationFailures, resource)
}

// Notifications returns the current notification count for a result.
func (m *Metrics) Notifications(result string) float64 {
	return getCounterValue(m.notifications, result)
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
