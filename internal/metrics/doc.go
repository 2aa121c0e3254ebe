// Package metrics provides lock-free counters and a validate-latency
// histogram for the session engine.
//
// Counters sit in cache-line-padded uint64 slots and are incremented with
// sync/atomic. The histogram uses 8 fixed buckets (<=5ms ... +Inf). The write
// path does not allocate.
//
// Export (Prometheus, OpenTelemetry) lives in metrics/export and reads
// Snapshot values through the root package.
package metrics
