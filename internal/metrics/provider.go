package metrics

import (
	streamprocmetrics "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/metrics" // Use pkg interface
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRegistryProvider implements the RegistryProvider interface
// using a standard Prometheus registry.
type PrometheusRegistryProvider struct {
	registry *prometheus.Registry
}

// NewPrometheusRegistryProvider creates a new metrics provider backed by Prometheus.
func NewPrometheusRegistryProvider() *PrometheusRegistryProvider {
	return &PrometheusRegistryProvider{
		registry: prometheus.NewRegistry(),
	}
}

// Registry returns the underlying Prometheus registry.
func (p *PrometheusRegistryProvider) Registry() *prometheus.Registry {
	return p.registry
}

// Ensure implementation satisfies the interface.
var _ streamprocmetrics.RegistryProvider = (*PrometheusRegistryProvider)(nil)

// BlockInstruments bundles the Prometheus instruments a host registers
// once and every block instance shares, labeled by block name and type.
type BlockInstruments struct {
	State           *prometheus.GaugeVec
	ProcessDuration *prometheus.HistogramVec
	ProcessTotal    *prometheus.CounterVec
	ErrorTotal      *prometheus.CounterVec
}

// NewBlockInstruments registers the block-lifecycle instrument set
// against reg and returns the bundle for blocks/host code to record
// against on each Process call.
func NewBlockInstruments(reg *prometheus.Registry) *BlockInstruments {
	b := &BlockInstruments{
		State: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "streamproc",
			Name:      "block_state",
			Help:      "Current lifecycle state of a block (0=Null,1=Initial,2=Running,3=Stopped).",
		}, []string{"block_name", "block_type"}),
		ProcessDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "streamproc",
			Name:      "block_process_duration_seconds",
			Help:      "Duration of a single Process() call.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"block_name", "block_type"}),
		ProcessTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streamproc",
			Name:      "block_process_total",
			Help:      "Total number of completed Process() calls.",
		}, []string{"block_name", "block_type"}),
		ErrorTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streamproc",
			Name:      "block_process_errors_total",
			Help:      "Total number of Process() calls that returned an error.",
		}, []string{"block_name", "block_type", "error_kind"}),
	}
	reg.MustRegister(b.State, b.ProcessDuration, b.ProcessTotal, b.ErrorTotal)
	return b
}
