package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "taskforge"

// Metrics holds all TaskForge metric instruments.
type Metrics struct {
	PipelinesStarted   metric.Int64Counter
	PipelinesCompleted metric.Int64Counter
	PipelinesFailed    metric.Int64Counter
	Delegations        metric.Int64Counter
	Retries            metric.Int64Counter
	Escalations        metric.Int64Counter
	PipelineDuration   metric.Float64Histogram
	DelegationDuration metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.PipelinesStarted, err = meter.Int64Counter("taskforge.pipelines.started",
		metric.WithDescription("Number of pipeline runs started"))
	if err != nil {
		return nil, err
	}

	m.PipelinesCompleted, err = meter.Int64Counter("taskforge.pipelines.completed",
		metric.WithDescription("Number of pipeline runs that completed"))
	if err != nil {
		return nil, err
	}

	m.PipelinesFailed, err = meter.Int64Counter("taskforge.pipelines.failed",
		metric.WithDescription("Number of pipeline runs that failed or ended partial"))
	if err != nil {
		return nil, err
	}

	m.Delegations, err = meter.Int64Counter("taskforge.delegations",
		metric.WithDescription("Number of worker delegations dispatched"))
	if err != nil {
		return nil, err
	}

	m.Retries, err = meter.Int64Counter("taskforge.retries",
		metric.WithDescription("Number of delegation retries"))
	if err != nil {
		return nil, err
	}

	m.Escalations, err = meter.Int64Counter("taskforge.escalations",
		metric.WithDescription("Number of unresolved failures escalated to the caller"))
	if err != nil {
		return nil, err
	}

	m.PipelineDuration, err = meter.Float64Histogram("taskforge.pipeline.duration_seconds",
		metric.WithDescription("Pipeline run duration in seconds"))
	if err != nil {
		return nil, err
	}

	m.DelegationDuration, err = meter.Float64Histogram("taskforge.delegation.duration_seconds",
		metric.WithDescription("Single delegation duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
