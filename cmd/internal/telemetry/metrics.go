// Package telemetry holds the Prometheus collectors for the accounts service.
// All methods are safe on a nil *Metrics, which disables recording.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups every collector the service exports.
type Metrics struct {
	registrations   *prometheus.CounterVec
	activations     *prometheus.CounterVec
	reissues        *prometheus.CounterVec
	activationMail  *prometheus.CounterVec
	queueDepth      prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	httpRequestTime *prometheus.HistogramVec
}

// NewMetrics builds the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accounts",
			Name:      "registrations_total",
			Help:      "Registration attempts by result.",
		}, []string{"result"}),
		activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accounts",
			Name:      "activations_total",
			Help:      "Activation attempts by result.",
		}, []string{"result"}),
		reissues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accounts",
			Name:      "activation_reissues_total",
			Help:      "Activation code re-issue requests by result.",
		}, []string{"result"}),
		activationMail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accounts",
			Name:      "activation_mail_total",
			Help:      "Activation code deliveries by result.",
		}, []string{"result"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "accounts",
			Name:      "activation_queue_depth",
			Help:      "Activation mail tasks waiting for a worker.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accounts",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpRequestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "accounts",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	for _, c := range []prometheus.Collector{
		m.registrations,
		m.activations,
		m.reissues,
		m.activationMail,
		m.queueDepth,
		m.httpRequests,
		m.httpRequestTime,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Registration counts one registration attempt.
func (m *Metrics) Registration(result string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(result).Inc()
}

// Activation counts one activation attempt.
func (m *Metrics) Activation(result string) {
	if m == nil {
		return
	}
	m.activations.WithLabelValues(result).Inc()
}

// Reissue counts one activation code re-issue request.
func (m *Metrics) Reissue(result string) {
	if m == nil {
		return
	}
	m.reissues.WithLabelValues(result).Inc()
}

// ActivationMail counts one activation code delivery.
func (m *Metrics) ActivationMail(result string) {
	if m == nil {
		return
	}
	m.activationMail.WithLabelValues(result).Inc()
}

// QueueDepth sets the pending task gauge.
func (m *Metrics) QueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// HTTPRequest records one served request. route is the registered pattern, not the raw path.
func (m *Metrics) HTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestTime.WithLabelValues(method, route).Observe(d.Seconds())
}
