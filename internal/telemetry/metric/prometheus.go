package metric

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/yndnr/webstash-go/pkg/entry"
)

const namespace = "webstash"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Entry metrics
	SetTotal  *prometheus.CounterVec
	GetTotal  *prometheus.CounterVec
	UsedBytes *prometheus.GaugeVec
}

// NewRegistry creates a registry with the entry metrics and the Go runtime
// collector registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		SetTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "entry",
			Name:      "set_total",
			Help:      "Set operations by outcome.",
		}, []string{"outcome"}),

		GetTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "entry",
			Name:      "get_total",
			Help:      "Get operations by outcome.",
		}, []string{"outcome"}),

		UsedBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "entry",
			Name:      "used_bytes",
			Help:      "Estimated bytes used in the scope, as counted by the capacity guard.",
		}, []string{"scope"}),
	}

	r.registry.MustRegister(
		r.SetTotal,
		r.GetTotal,
		r.UsedBytes,
		collectors.NewGoCollector(),
	)
	return r
}

// RecordSet implements entry.Recorder.
func (r *Registry) RecordSet(o entry.Outcome) {
	r.SetTotal.WithLabelValues(string(o)).Inc()
}

// RecordGet implements entry.Recorder.
func (r *Registry) RecordGet(o entry.Outcome) {
	r.GetTotal.WithLabelValues(string(o)).Inc()
}

// RecordUsage implements entry.Recorder.
func (r *Registry) RecordUsage(scope entry.Scope, used int64) {
	r.UsedBytes.WithLabelValues(string(scope)).Set(float64(used))
}

// Register adds extra collectors, such as a StoreCollector.
func (r *Registry) Register(cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := r.registry.Register(c); err != nil {
			return fmt.Errorf("metric: register: %w", err)
		}
	}
	return nil
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteFile writes all metrics to path in the Prometheus text format. The
// file is replaced atomically.
func (r *Registry) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metric: write %s: %w", path, err)
	}
	return nil
}

var _ entry.Recorder = (*Registry)(nil)
