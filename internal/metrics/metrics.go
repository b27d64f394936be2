package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores Prometheus collectors used across the service.
type Metrics struct {
	InboundMessages *prometheus.CounterVec
	BarberResponses *prometheus.CounterVec
	TwilioRequests  *prometheus.CounterVec
	TwilioLatency   *prometheus.HistogramVec
	Errors          *prometheus.CounterVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			InboundMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "inbound_messages_total",
				Help:      "Total inbound WhatsApp webhook messages by outcome.",
			}, []string{"outcome"}),
			BarberResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "barber_responses_total",
				Help:      "Total barber response requests by outcome.",
			}, []string{"outcome"}),
			TwilioRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "twilio_requests_total",
				Help:      "Total Twilio API requests by status.",
			}, []string{"status"}),
			TwilioLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "twilio_request_duration_seconds",
				Help:      "Latency distribution for Twilio API calls.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"status"}),
			Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total errors grouped by component.",
			}, []string{"component"}),
		}

		prometheus.MustRegister(
			metricsInstance.InboundMessages,
			metricsInstance.BarberResponses,
			metricsInstance.TwilioRequests,
			metricsInstance.TwilioLatency,
			metricsInstance.Errors,
		)
	})
	return metricsInstance
}
