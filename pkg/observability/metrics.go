package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels recorded for every panel call
const (
	OutcomeSuccess   = "success"
	OutcomeInvalid   = "validation"
	OutcomeProtocol  = "protocol"
	OutcomeRemote    = "remote"
	OutcomeTransport = "transport"
	OutcomeUnknown   = "unknown"
)

// PanelMetrics holds the Prometheus collectors for panel API calls
type PanelMetrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
}

// NewPanelMetrics creates the panel collectors and registers them with reg.
// A nil reg falls back to prometheus.DefaultRegisterer.
func NewPanelMetrics(reg prometheus.Registerer) (*PanelMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &PanelMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mofh",
				Name:      "panel_requests_total",
				Help:      "Total number of panel API calls",
			},
			[]string{
				"operation", // createacct, suspendacct, checkavailable, ...
				"outcome",   // success, validation, protocol, remote, transport
			},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "mofh",
				Name:      "panel_request_duration_seconds",
				Help:      "Duration of panel API round trips in seconds",
				// createacct regularly takes several seconds
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
		requestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "mofh",
				Name:      "panel_requests_in_flight",
				Help:      "Number of panel API calls currently waiting on the panel",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.requestsTotal, m.requestDuration, m.requestsInFlight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// StartRequest marks a round trip as in flight. The returned func must be
// called once the panel answered (or the transport failed).
func (m *PanelMetrics) StartRequest(operation string) func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	m.requestsInFlight.Inc()
	return func() {
		m.requestsInFlight.Dec()
		m.requestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// RecordOutcome counts one finished call. Validation failures are counted
// here too even though they never reach the network.
func (m *PanelMetrics) RecordOutcome(operation, outcome string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(operation, outcome).Inc()
}
