// Package metrics owns the portal's Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "passport"

// Login outcomes.
const (
	LoginSuccess  = "success"
	LoginDenied   = "denied"
	LoginState    = "state_mismatch"
	LoginExchange = "exchange_failed"
	LoginProfile  = "profile_failed"
	LoginStore    = "store_failed"
)

// Guild join outcomes.
const (
	JoinSuccess   = "success"
	JoinRejected  = "rejected"
	JoinTransport = "transport_error"
	JoinInvalid   = "invalid"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	logins          *prometheus.CounterVec
	guildJoins      *prometheus.CounterVec
	sessionsSwept   prometheus.Counter
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	inflight        prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Discord login completions by outcome.",
		}, []string{"result"}),
		guildJoins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guild_joins_total",
			Help:      "Guild join attempts by outcome.",
		}, []string{"result"}),
		sessionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_swept_total",
			Help:      "Expired sessions deleted by housekeeping.",
		}),
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discord",
			Name:      "requests_total",
			Help:      "Outbound requests to Discord by status code and method.",
		}, []string{"code", "method"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "discord",
			Name:      "request_duration_seconds",
			Help:      "Outbound request latency to Discord.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "discord",
			Name:      "requests_in_flight",
			Help:      "Outbound requests to Discord currently in flight.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.logins,
		m.guildJoins,
		m.sessionsSwept,
		m.upstreamTotal,
		m.upstreamLatency,
		m.inflight,
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// InstrumentClient returns a copy of base whose transport records
// request counts, latency and in-flight requests.
func (m *Metrics) InstrumentClient(base *http.Client) *http.Client {
	if base == nil {
		base = &http.Client{}
	}
	if m == nil {
		return base
	}
	rt := base.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}

	c := *base
	c.Transport = promhttp.InstrumentRoundTripperInFlight(m.inflight,
		promhttp.InstrumentRoundTripperCounter(m.upstreamTotal,
			promhttp.InstrumentRoundTripperDuration(m.upstreamLatency, rt),
		),
	)
	return &c
}

func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveGuildJoin(result string) {
	if m == nil {
		return
	}
	m.guildJoins.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveSessionsSwept(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.sessionsSwept.Add(float64(n))
}
