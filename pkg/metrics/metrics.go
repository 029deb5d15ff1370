package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the service
type Metrics struct {
	IdentitySubmissions *prometheus.CounterVec
	BookingsCreated     *prometheus.CounterVec
	ValidationFailures  *prometheus.CounterVec
	SessionRedirects    *prometheus.CounterVec
	StoreOpDuration     *prometheus.HistogramVec
	StoreErrors         *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		IdentitySubmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medwaste_identity_submissions_total",
			Help: "Identity form submissions by kind and outcome",
		}, []string{"kind", "outcome"}),

		BookingsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medwaste_bookings_created_total",
			Help: "Bookings appended to the booking list by waste category",
		}, []string{"waste_type"}),

		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medwaste_validation_failures_total",
			Help: "Rejected form fields by form and field",
		}, []string{"form", "field"}),

		SessionRedirects: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medwaste_session_redirects_total",
			Help: "Screens that sent the visitor back to a login form",
		}, []string{"screen"}),

		StoreOpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medwaste_store_operation_duration_seconds",
			Help:    "Duration of key-value store calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),

		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medwaste_store_errors_total",
			Help: "Failed key-value store calls",
		}, []string{"op"}),
	}
}

// ObserveStore matches storage.ObserveFunc.
func (m *Metrics) ObserveStore(op string, took time.Duration, err error) {
	m.StoreOpDuration.WithLabelValues(op).Observe(took.Seconds())
	if err != nil {
		m.StoreErrors.WithLabelValues(op).Inc()
	}
}

// ValidationFailed counts each rejected field of a form.
func (m *Metrics) ValidationFailed(form string, fields map[string]string) {
	for field := range fields {
		m.ValidationFailures.WithLabelValues(form, field).Inc()
	}
}
