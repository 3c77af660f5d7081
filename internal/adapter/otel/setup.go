// Package otel provides OpenTelemetry instrumentation for TaskForge.
// Instruments and spans use the global providers; wiring an OTLP exporter
// is a deployment concern and stays out of the core binary for now.
package otel

import (
	"context"
	"log/slog"
)

// ShutdownFunc is called to flush and shut down the telemetry providers.
type ShutdownFunc func(ctx context.Context) error

// Init configures the global providers and returns a shutdown function.
// Without an exporter configured this is a no-op.
func Init(serviceName string) ShutdownFunc {
	slog.Debug("otel init", "service", serviceName)
	return func(_ context.Context) error {
		return nil
	}
}
