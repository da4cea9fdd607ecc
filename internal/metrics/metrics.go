// Package metrics provides Prometheus collectors for discovery and command
// dispatch.
//
// Collectors are registered on a caller-supplied registry rather than the
// global default one, so several instances can coexist in tests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tvremote"

// Metrics holds the collectors updated by the discovery coordinator and the
// control dispatcher. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// ScansTotal counts discovery sessions started
	ScansTotal prometheus.Counter

	// DevicesDiscovered counts unique devices added to a discovered set
	DevicesDiscovered *prometheus.CounterVec

	// DiscoveryErrors counts per-target and per-namespace scanner failures
	DiscoveryErrors *prometheus.CounterVec

	// CommandsTotal counts button presses by vendor and result
	CommandsTotal *prometheus.CounterVec

	// CommandDuration tracks how long a single vendor exchange takes
	CommandDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ScansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Total number of discovery sessions started",
		}),
		DevicesDiscovered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discovered_devices_total",
			Help:      "Total number of unique devices discovered",
		}, []string{"source", "vendor"}),
		DiscoveryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discovery_errors_total",
			Help:      "Total number of scanner failures",
		}, []string{"scanner"}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total number of button presses dispatched",
		}, []string{"vendor", "result"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Duration of vendor command exchanges in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"vendor"}),
	}

	m.registry.MustRegister(
		m.ScansTotal,
		m.DevicesDiscovered,
		m.DiscoveryErrors,
		m.CommandsTotal,
		m.CommandDuration,
	)
	return m
}

// Registry exposes the underlying registry (for gathering in tests)
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ScanStarted records the start of a discovery session
func (m *Metrics) ScanStarted() {
	if m == nil {
		return
	}
	m.ScansTotal.Inc()
}

// DeviceDiscovered records a device added to the discovered set
func (m *Metrics) DeviceDiscovered(source, vendor string) {
	if m == nil {
		return
	}
	m.DevicesDiscovered.WithLabelValues(source, vendor).Inc()
}

// DiscoveryFailed records a scanner failure
func (m *Metrics) DiscoveryFailed(scanner string) {
	if m == nil {
		return
	}
	m.DiscoveryErrors.WithLabelValues(scanner).Inc()
}

// CommandDispatched records the outcome and duration of a button press
func (m *Metrics) CommandDispatched(vendor string, err error, took time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.CommandsTotal.WithLabelValues(vendor, result).Inc()
	m.CommandDuration.WithLabelValues(vendor).Observe(took.Seconds())
}
