// Package metric provides Prometheus metrics for webstash.
//
//   - prometheus.go: the registry and the entry.Recorder implementation
//   - collector.go: a custom collector for on-disk store size
//
// The CLI is short-lived, so metrics are not served over HTTP. They are
// written in the Prometheus text format to a file (node_exporter's
// textfile collector picks them up from there).
package metric
