// Package prometheus exposes engine metrics through client_golang.
//
// [Collector] implements prometheus.Collector. Register it on your own
// registry, or mount [Collector.Handler] which serves it from a private one.
// Counters are named gosession_*_total; validation latency is the histogram
// gosession_validate_latency_seconds.
package prometheus
