// Package metrics owns the Prometheus collectors the service exports on /metrics.
//
// Everything is registered on a dedicated registry (not the global default)
// so tests can build as many Metrics as they like without "duplicate
// collector" panics.
//
// All Observe/Inc helpers are safe on a nil *Metrics, which lets unit tests
// construct services without wiring metrics at all.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/video-share/internal/apperror"
)

// Result label values for the outcome counters.
const (
	ResultSuccess      = "success"
	ResultInvalid      = "invalid"
	ResultUnauthorized = "unauthorized"
	ResultConflict     = "conflict"
	ResultNotFound     = "not_found"
	ResultUpstream     = "upstream"
	ResultError        = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec
	AuthRegistrationsTotal     *prometheus.CounterVec
	AuthLoginsTotal            *prometheus.CounterVec
	VideoSharesTotal           *prometheus.CounterVec
	RealtimeListeners          prometheus.Gauge
	RealtimeEventsDroppedTotal prometheus.Counter
}

// New creates the collectors and registers them, plus the standard Go
// runtime and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthRegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_registrations_total",
				Help: "Total number of registration attempts.",
			},
			[]string{"result"},
		),
		AuthLoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_logins_total",
				Help: "Total number of login attempts.",
			},
			[]string{"result"},
		),
		VideoSharesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "video_shares_total",
				Help: "Total number of share attempts.",
			},
			[]string{"result"},
		),
		RealtimeListeners: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "realtime_listeners",
			Help: "Currently connected realtime listeners.",
		}),
		RealtimeEventsDroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "realtime_events_dropped_total",
			Help: "Events not delivered because a listener's buffer was full.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDurationSeconds,
		m.AuthRegistrationsTotal,
		m.AuthLoginsTotal,
		m.VideoSharesTotal,
		m.RealtimeListeners,
		m.RealtimeEventsDroppedTotal,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRegistration(err error) {
	if m == nil {
		return
	}
	m.AuthRegistrationsTotal.WithLabelValues(Result(err)).Inc()
}

func (m *Metrics) ObserveLogin(err error) {
	if m == nil {
		return
	}
	m.AuthLoginsTotal.WithLabelValues(Result(err)).Inc()
}

func (m *Metrics) ObserveShare(err error) {
	if m == nil {
		return
	}
	m.VideoSharesTotal.WithLabelValues(Result(err)).Inc()
}

func (m *Metrics) SetListeners(n int) {
	if m == nil {
		return
	}
	m.RealtimeListeners.Set(float64(n))
}

func (m *Metrics) IncDropped() {
	if m == nil {
		return
	}
	m.RealtimeEventsDroppedTotal.Inc()
}

// Result maps an operation's error to a low-cardinality label value.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, apperror.ErrValidation):
		return ResultInvalid
	case errors.Is(err, apperror.ErrUnauthorized):
		return ResultUnauthorized
	case errors.Is(err, apperror.ErrConflict):
		return ResultConflict
	case errors.Is(err, apperror.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, apperror.ErrUpstream):
		return ResultUpstream
	default:
		return ResultError
	}
}
