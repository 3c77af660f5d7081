package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "taskforge"

// StartPipelineSpan starts a span for one pipeline run.
func StartPipelineSpan(ctx context.Context, runID string, shape string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "pipeline",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("plan.shape", shape),
		),
	)
}

// StartDelegationSpan starts a span for a single worker delegation.
func StartDelegationSpan(ctx context.Context, runID, nodeID, capability string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "delegation",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("node.id", nodeID),
			attribute.String("node.capability", capability),
		),
	)
}
