// Package metrics provides Prometheus metrics for the racebet service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// DefaultLatencyBuckets are millisecond buckets sized for in-process
// analytics and local file or SQLite writes.
var DefaultLatencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000} //nolint:gochecknoglobals // read-only defaults

// Option customizes a Manager.
type Option func(*Manager)

// WithNamespace replaces the "racebet" metric name prefix.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem replaces the "engine" subsystem segment.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithLatencyBuckets sets the millisecond buckets of every latency histogram
// except GC pauses.
func WithLatencyBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.latencyBuckets = buckets
		}
	}
}

// WithRegisterer registers collectors on reg instead of the default registerer.
// Tests pass a fresh prometheus.NewRegistry() to avoid duplicate registration.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(m *Manager) {
		if reg != nil {
			m.registry = reg
		}
	}
}
