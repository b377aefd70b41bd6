package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the dashboard. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	remoteCalls     *prometheus.HistogramVec
	sessionResolves *prometheus.CounterVec
	signIns         *prometheus.CounterVec
}

// NewMetrics registers collectors on reg. Passing a fresh registry keeps tests
// isolated from the default one.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "Total HTTP requests served, by route, method and status",
		}, []string{"path", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_errors_total",
			Help: "Requests that ended in an error response, by error code",
		}, []string{"path", "method", "code"}),
		remoteCalls: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_remote_call_duration_seconds",
			Help:    "Latency of calls to the store API",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
		sessionResolves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_session_resolutions_total",
			Help: "Startup identity resolutions by outcome",
		}, []string{"outcome"}),
		signIns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_sign_ins_total",
			Help: "Sign-in attempts by outcome",
		}, []string{"outcome"}),
	}
}

// RecordRequest observes a served request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordRemoteCall observes an outbound API call. Status 0 means transport failure.
func (m *Metrics) RecordRemoteCall(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.remoteCalls.WithLabelValues(method, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordSessionResolution counts startup outcomes ("anonymous", "restored", "rejected").
func (m *Metrics) RecordSessionResolution(outcome string) {
	if m == nil {
		return
	}
	m.sessionResolves.WithLabelValues(outcome).Inc()
}

// RecordSignIn counts sign-in outcomes ("success", "failure").
func (m *Metrics) RecordSignIn(outcome string) {
	if m == nil {
		return
	}
	m.signIns.WithLabelValues(outcome).Inc()
}
