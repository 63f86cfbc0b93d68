package infra

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
)

// Metrics implements domain.MonitorMetrics with Prometheus counters.
// Each instance owns its registry so several can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	Notifications *prometheus.CounterVec
	Decisions     *prometheus.CounterVec
	PollSkips     *prometheus.CounterVec
}

// NewMetrics creates the monitoring counters on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "focusmon_notifications_total",
				Help: "Notifications evaluated by the event monitor",
			},
			[]string{"kind"},
		),
		Decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "focusmon_decisions_total",
				Help: "Block decisions submitted to the debounce gate",
			},
			[]string{"source", "category", "result"},
		),
		PollSkips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "focusmon_poll_skipped_total",
				Help: "Poll ticks that produced no foreground app",
			},
			[]string{"reason"},
		),
	}
}

// NotificationReceived counts an evaluated notification.
func (m *Metrics) NotificationReceived(kind domain.EventKind) {
	m.Notifications.WithLabelValues(string(kind)).Inc()
}

// DecisionSubmitted counts a decision by source, category and gate result.
func (m *Metrics) DecisionSubmitted(source string, category domain.BlockCategory, accepted bool) {
	result := "suppressed"
	if accepted {
		result = "accepted"
	}
	m.Decisions.WithLabelValues(source, string(category), result).Inc()
}

// PollSkipped counts a skipped poll tick.
func (m *Metrics) PollSkipped(reason string) {
	m.PollSkips.WithLabelValues(reason).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Ensure Metrics implements domain.MonitorMetrics.
var _ domain.MonitorMetrics = (*Metrics)(nil)
