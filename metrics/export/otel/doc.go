// Package otel reports engine metrics through OpenTelemetry observable
// instruments. The caller owns the MeterProvider and passes a Meter to
// [NewExporter].
package otel
