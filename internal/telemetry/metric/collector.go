package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Sizer reports the on-disk footprint of an embedded engine.
type Sizer interface {
	Size() (lsm, vlog int64)
}

// StoreCollector exports the size of a persistent host store at scrape
// time.
type StoreCollector struct {
	store  Sizer
	engine string
	desc   *prometheus.Desc
}

// NewStoreCollector creates a collector for store, labeled with the engine
// name.
func NewStoreCollector(engine string, store Sizer) *StoreCollector {
	return &StoreCollector{
		store:  store,
		engine: engine,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "size_bytes"),
			"On-disk size of the persistent store by component.",
			[]string{"engine", "component"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	lsm, vlog := c.store.Size()
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(lsm), c.engine, "lsm")
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(vlog), c.engine, "vlog")
}

var _ prometheus.Collector = (*StoreCollector)(nil)
