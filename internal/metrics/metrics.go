package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics collects Prometheus counters for the bot on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	actuations       *prometheus.CounterVec
	triggers         *prometheus.CounterVec
	reconfigurations prometheus.Counter
	rejected         *prometheus.CounterVec
}

// New initializes the registry and counters
func New() *Metrics {
	registry := prometheus.NewRegistry()
	actuations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nightlock_actuations_total",
		Help: "Permission changes issued against the group chat, by action and result.",
	}, []string{"action", "result"})
	triggers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nightlock_trigger_fired_total",
		Help: "Scheduled triggers that fired, by action.",
	}, []string{"action"})
	reconfigurations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nightlock_reconfigurations_total",
		Help: "Completed schedule changes.",
	})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nightlock_rejected_requests_total",
		Help: "Admin-only actions attempted by other users, by action.",
	}, []string{"action"})
	registry.MustRegister(actuations, triggers, reconfigurations, rejected)

	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		actuations:       actuations,
		triggers:         triggers,
		reconfigurations: reconfigurations,
		rejected:         rejected,
	}
}

// Handler returns the http.Handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveActuation counts one lock or unlock attempt
func (m *Metrics) ObserveActuation(locked bool, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.actuations.WithLabelValues(Action(locked), result).Inc()
}

// ObserveTrigger counts one scheduled firing
func (m *Metrics) ObserveTrigger(locked bool) {
	if m == nil {
		return
	}
	m.triggers.WithLabelValues(Action(locked)).Inc()
}

// ObserveReconfiguration counts one completed schedule change
func (m *Metrics) ObserveReconfiguration() {
	if m == nil {
		return
	}
	m.reconfigurations.Inc()
}

// ObserveRejection counts one unauthorized attempt
func (m *Metrics) ObserveRejection(action string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(action).Inc()
}

// Action maps the lock flag to its label value
func Action(locked bool) string {
	if locked {
		return "lock"
	}
	return "unlock"
}
