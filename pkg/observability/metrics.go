package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/switchboard/pkg/domain"
)

// Metrics holds the router collectors.
type Metrics struct {
	resolved       *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
	actionErrors   *prometheus.CounterVec
	unbound        *prometheus.CounterVec
	dropped        *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := newMetrics()
	reg.MustRegister(m.collectors()...)
	m.gatherer = reg
	return m
}

// NewMetricsWith registers the collectors on reg.
func NewMetricsWith(reg *prometheus.Registry) (*Metrics, error) {
	m := newMetrics()
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	m.gatherer = reg
	return m, nil
}

func newMetrics() *Metrics {
	return &Metrics{
		resolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switchboard_dispatch_resolved_total",
				Help: "Messages resolved to an intent address",
			},
			[]string{"address", "source"},
		),
		actionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "switchboard_action_duration_seconds",
				Help:    "Duration of action executions",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action"},
		),
		actionErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switchboard_action_errors_total",
				Help: "Actions that returned an error or panicked",
			},
			[]string{"action"},
		),
		unbound: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switchboard_action_unbound_total",
				Help: "Resolved actions without a registered handler",
			},
			[]string{"action"},
		),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switchboard_messages_dropped_total",
				Help: "Messages dropped by runtime errors",
			},
			[]string{"reason"},
		),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.resolved, m.actionDuration, m.actionErrors, m.unbound, m.dropped}
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResolve: func(_ context.Context, e *domain.ResolveEvent) {
			m.resolved.WithLabelValues(e.Address, string(e.Source)).Inc()
		},
		OnActionCall: func(_ context.Context, e *domain.ActionEvent) {
			if !e.Bound {
				m.unbound.WithLabelValues(e.Action).Inc()
			}
		},
		OnActionReturn: func(_ context.Context, e *domain.ActionEvent) {
			m.actionDuration.WithLabelValues(e.Action).Observe(e.Duration.Seconds())
			if e.IsError {
				m.actionErrors.WithLabelValues(e.Action).Inc()
			}
		},
		OnDrop: func(_ context.Context, e *domain.DropEvent) {
			m.dropped.WithLabelValues(DropReason(e.Err)).Inc()
		},
	}
}

// Handler exposes the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// DropReason maps a runtime error to a low-cardinality label.
func DropReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAliasCycle):
		return "alias_cycle"
	case errors.Is(err, domain.ErrUnknownAddress):
		return "unknown_address"
	case errors.Is(err, domain.ErrNotTrained):
		return "not_trained"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
