// Package metrics defines the public interface for exposing the runtime's
// Prometheus registry to a host process.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// RegistryProvider gives a host access to the Prometheus registry holding
// the runtime's block-lifecycle metrics so it can be served however the
// host chooses (e.g. an HTTP /metrics endpoint).
type RegistryProvider interface {
	// Registry returns the Prometheus registry containing runtime metrics.
	Registry() *prometheus.Registry
}
