package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the fetch client's Prometheus collectors.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
	outcomes *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fetch",
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Total number of requests sent by the transport",
			},
			[]string{"code", "method"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fetch",
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "Time until response headers were received",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"code", "method"},
		),
		inFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "fetch",
				Subsystem: "client",
				Name:      "in_flight_requests",
				Help:      "Requests currently waiting on the network",
			},
		),
		outcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fetch",
				Name:      "outcomes_total",
				Help:      "Delivered outcomes by kind",
			},
			[]string{"kind"},
		),
	}
}

// InstrumentRoundTripper wraps next with the request collectors. It has the
// shape of a transport middleware.
func (m *Metrics) InstrumentRoundTripper(next http.RoundTripper) http.RoundTripper {
	return promhttp.InstrumentRoundTripperInFlight(m.inFlight,
		promhttp.InstrumentRoundTripperCounter(m.requests,
			promhttp.InstrumentRoundTripperDuration(m.duration, next),
		),
	)
}

// ObserveOutcome counts a delivered outcome. kind is "success" or an error
// kind.
func (m *Metrics) ObserveOutcome(kind string) {
	m.outcomes.WithLabelValues(kind).Inc()
}

// WriteFile writes everything g gathers to path in the text exposition
// format.
func WriteFile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
