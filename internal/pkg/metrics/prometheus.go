package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bizsuite_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bizsuite_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// Webhook Delivery Metrics
	WebhookDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bizsuite_webhook_deliveries_total",
			Help: "Total number of outbound webhook deliveries",
		},
		[]string{"webhook_key", "status"},
	)

	WebhookDeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bizsuite_webhook_delivery_duration_seconds",
			Help:    "Outbound webhook delivery duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"webhook_key"},
	)

	WebhookRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bizsuite_webhook_retries_total",
			Help: "Total number of webhook delivery retries",
		},
		[]string{"webhook_key"},
	)

	// Form Metrics
	FormSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bizsuite_form_submissions_total",
			Help: "Total number of form submissions",
		},
		[]string{"form_key", "outcome"},
	)

	FormValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bizsuite_form_validation_failures_total",
			Help: "Total number of rejected form submissions",
		},
		[]string{"form_key"},
	)
)

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records HTTP request metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := r.URL.Path

		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RecordDelivery records one webhook delivery attempt outcome
func RecordDelivery(webhookKey, status string, durationSeconds float64) {
	WebhookDeliveriesTotal.WithLabelValues(webhookKey, status).Inc()
	if durationSeconds > 0 {
		WebhookDeliveryDuration.WithLabelValues(webhookKey).Observe(durationSeconds)
	}
}

// RecordSubmission records a form submission outcome
func RecordSubmission(formKey, outcome string) {
	FormSubmissionsTotal.WithLabelValues(formKey, outcome).Inc()
}
