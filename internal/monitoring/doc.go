// Package monitoring provides Prometheus metrics for pipeline runs.
//
// Metrics cover claim throughput and contention per stage, pool sizes, stage
// drain latency, skipped stages, and activity log volume. A run can dump its
// registry to a text file for node_exporter's textfile collector.
package monitoring
