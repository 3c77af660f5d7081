// Package service implements the foreman: the orchestrator that drives a
// task plan from submission to a single aggregated result.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	otelx "github.com/Strob0t/TaskForge/internal/adapter/otel"
	"github.com/Strob0t/TaskForge/internal/config"
	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/contract"
	"github.com/Strob0t/TaskForge/internal/domain/pipeline"
	"github.com/Strob0t/TaskForge/internal/domain/plan"
	"github.com/Strob0t/TaskForge/internal/logger"
	"github.com/Strob0t/TaskForge/internal/port/broadcast"
	"github.com/Strob0t/TaskForge/internal/port/cache"
	"github.com/Strob0t/TaskForge/internal/port/delegate"
	"github.com/Strob0t/TaskForge/internal/port/resultstore"
	"github.com/Strob0t/TaskForge/internal/resilience"
)

// Event types published to the broadcast hub.
const (
	EventNodeStatus     = "node.status"
	EventPipelineStatus = "pipeline.status"
)

// NodeStatusEvent is the execution-log record for one node transition.
type NodeStatusEvent struct {
	RunID      string `json:"run_id"`
	NodeID     string `json:"node_id"`
	Capability string `json:"capability"`
	Status     string `json:"status"`
	Attempts   int    `json:"attempts"`
	Error      string `json:"error,omitempty"`
}

// PipelineStatusEvent is the execution-log record for the overall run.
type PipelineStatusEvent struct {
	RunID       string `json:"run_id"`
	Status      string `json:"status"`
	Outputs     int    `json:"outputs"`
	Escalations int    `json:"escalations"`
}

// Foreman executes pipeline requests. Dispatch is uniform over the capability
// registry: the foreman never branches on a capability name. One Foreman may
// serve concurrent requests; each Execute owns its plan and retry state
// exclusively, so no cross-request locking exists.
type Foreman struct {
	registry *contract.Registry
	channel  delegate.Channel
	cfg      config.Foreman

	dedup    cache.Cache
	dedupTTL time.Duration
	breaker  *resilience.Breaker
	hub      broadcast.Broadcaster
	archive  resultstore.Store
	metrics  *otelx.Metrics

	now func() time.Time
}

// NewForeman creates a Foreman over the given registry and delegation channel.
func NewForeman(registry *contract.Registry, channel delegate.Channel, cfg config.Foreman) *Foreman {
	return &Foreman{
		registry: registry,
		channel:  channel,
		cfg:      cfg,
		now:      time.Now,
	}
}

// SetDedupCache injects the bounded delegation dedup cache. Identical
// (capability, input) delegations within ttl reuse the validated response.
func (f *Foreman) SetDedupCache(c cache.Cache, ttl time.Duration) { f.dedup, f.dedupTTL = c, ttl }

// SetBreaker injects the circuit breaker guarding the delegation channel.
func (f *Foreman) SetBreaker(b *resilience.Breaker) { f.breaker = b }

// SetBroadcaster injects the status event hub.
func (f *Foreman) SetBroadcaster(hub broadcast.Broadcaster) { f.hub = hub }

// SetArchive injects the downstream result store. Archive failures are
// logged and dropped; they never affect the pipeline verdict.
func (f *Foreman) SetArchive(s resultstore.Store) { f.archive = s }

// SetMetrics injects the OTel instruments.
func (f *Foreman) SetMetrics(m *otelx.Metrics) { f.metrics = m }

// Registry exposes the capability table for the caller boundary.
func (f *Foreman) Registry() *contract.Registry { return f.registry }

// Execute builds a plan for the request and drives it to completion.
// A plan that fails construction returns an error and no result; once a plan
// is admitted, Execute always returns a result, never hangs, and records
// every unresolved failure as an escalation.
func (f *Foreman) Execute(ctx context.Context, req pipeline.Request, spec plan.Spec) (*pipeline.Result, error) {
	p, err := plan.Build(req.RunID, spec, f.registry.Has, f.cfg.MaxPlanNodes)
	if err != nil {
		return nil, fmt.Errorf("build plan: %w", err)
	}

	ctx = logger.WithRunID(ctx, req.RunID)
	ctx, span := otelx.StartPipelineSpan(ctx, req.RunID, string(p.Shape))
	defer span.End()

	started := f.now()
	if f.metrics != nil {
		f.metrics.PipelinesStarted.Add(ctx, 1)
	}
	slog.Info("pipeline started", "run_id", req.RunID, "shape", p.Shape, "nodes", len(p.Nodes))

	ctrl := NewController(RetryPolicy{
		MaxRetries: f.cfg.MaxRetries,
		BaseDelay:  f.cfg.RetryBaseDelay,
		MaxDelay:   f.cfg.RetryMaxDelay,
		SLA:        f.cfg.TaskSLA,
	}, f.now)

	var escalations []pipeline.Escalation
	done := make(chan delegation, len(p.Nodes))
	inflight := 0

	for {
		if ctx.Err() != nil {
			f.cancelRemaining(ctx, p, ctrl, &escalations)
			break
		}
		if inflight == 0 && p.AllTerminal() {
			break
		}

		inflight += f.launchReady(ctx, p, ctrl, inflight, done)

		if inflight > 0 {
			select {
			case d := <-done:
				inflight--
				f.merge(ctx, p, ctrl, d, &escalations)
			case <-ctx.Done():
			}
			continue
		}

		if p.AllTerminal() {
			break
		}
		if wake, ok := ctrl.NextWake(); ok {
			select {
			case <-time.After(wake):
			case <-ctx.Done():
			}
			continue
		}

		// No runnable node, nothing in flight, no retry pending: the rest of
		// the plan waits on dependencies that can no longer succeed.
		for i := range p.Nodes {
			if !p.Nodes[i].Status.IsTerminal() {
				p.MarkSkipped(p.Nodes[i].ID, plan.SkipDependencyFailed)
				f.emitNode(ctx, p, p.Nodes[i].ID)
			}
		}
	}

	res := pipeline.Aggregate(req, p, escalations, started, f.now())
	f.finish(ctx, req, res)
	return res, nil
}

// launchReady dispatches every runnable node up to the parallelism bound and
// resolves declared conditions. Returns the number of delegations launched.
func (f *Foreman) launchReady(ctx context.Context, p *plan.Plan, ctrl *Controller, inflight int, done chan<- delegation) int {
	launched := 0
	for _, id := range p.ReadyIDs() {
		n := p.Node(id)

		if n.Condition != nil {
			src := p.Node(n.Condition.Node)
			if src == nil || !n.Condition.Met(src.Output) {
				p.MarkSkipped(id, plan.SkipConditionNotMet)
				f.emitNode(ctx, p, id)
				for _, dep := range p.CascadeSkip(id, plan.SkipConditionNotMet) {
					f.emitNode(ctx, p, dep)
				}
				continue
			}
		}

		if !ctrl.Dispatchable(id) {
			continue
		}
		if inflight+launched >= f.cfg.MaxParallel {
			break
		}

		p.MarkRunning(id)
		f.emitNode(ctx, p, id)
		launched++
		go f.dispatch(ctx, delegate.Request{
			RunID:      p.RunID,
			NodeID:     id,
			Capability: n.Capability,
			Input:      n.Input,
		}, done)
	}
	return launched
}

// merge applies one delegation outcome sequentially. Success stores validated
// output; failure goes through the retry controller, and exhausted or fatal
// failures escalate and cascade-skip dependents.
func (f *Foreman) merge(ctx context.Context, p *plan.Plan, ctrl *Controller, d delegation, escalations *[]pipeline.Escalation) {
	n := p.Node(d.nodeID)
	if n == nil || n.Status != plan.NodeStatusRunning {
		return
	}

	if d.err == nil {
		p.MarkSucceeded(d.nodeID, d.output)
		n.Attempts = ctrl.Attempts(d.nodeID) + 1
		f.emitNode(ctx, p, d.nodeID)
		return
	}

	v := ctrl.Fail(d.nodeID, d.err)
	if v.Retry {
		p.Requeue(d.nodeID, v.Attempts)
		if f.metrics != nil {
			f.metrics.Retries.Add(ctx, 1)
		}
		slog.Warn("delegation failed, retrying",
			"run_id", p.RunID, "node_id", d.nodeID, "attempt", v.Attempts,
			"delay", v.Delay, "error", d.err)
		f.emitNode(ctx, p, d.nodeID)
		return
	}

	f.escalate(ctx, p, d.nodeID, v.Attempts, d.err.Error(), escalations)
}

// escalate marks a node failed, records the caller-visible escalation, and
// skips everything that depended on it.
func (f *Foreman) escalate(ctx context.Context, p *plan.Plan, nodeID string, attempts int, lastErr string, escalations *[]pipeline.Escalation) {
	n := p.Node(nodeID)
	p.MarkFailed(nodeID, lastErr)
	n.Attempts = attempts

	*escalations = append(*escalations, pipeline.Escalation{
		NodeID:     nodeID,
		Capability: n.Capability,
		Attempts:   attempts,
		LastError:  lastErr,
	})
	if f.metrics != nil {
		f.metrics.Escalations.Add(ctx, 1)
	}
	slog.Error("delegation escalated",
		"run_id", p.RunID, "node_id", nodeID, "capability", n.Capability,
		"attempts", attempts, "error", lastErr)

	f.emitNode(ctx, p, nodeID)
	for _, dep := range p.CascadeSkip(nodeID, plan.SkipDependencyFailed) {
		f.emitNode(ctx, p, dep)
	}
}

// cancelRemaining applies cancellation semantics: running nodes fail with the
// cancellation reason (fatal, no retry), pending nodes are skipped.
func (f *Foreman) cancelRemaining(ctx context.Context, p *plan.Plan, ctrl *Controller, escalations *[]pipeline.Escalation) {
	reason := domain.ErrCancelled.Error()
	for i := range p.Nodes {
		n := &p.Nodes[i]
		switch n.Status {
		case plan.NodeStatusRunning:
			f.escalate(ctx, p, n.ID, ctrl.Attempts(n.ID)+1, reason, escalations)
		case plan.NodeStatusPending:
			p.MarkSkipped(n.ID, plan.SkipCancelled)
			f.emitNode(ctx, p, n.ID)
		}
	}
	slog.Warn("pipeline cancelled", "run_id", p.RunID)
}

// finish records metrics, broadcasts the terminal status, and hands the
// result to the downstream archive.
func (f *Foreman) finish(ctx context.Context, req pipeline.Request, res *pipeline.Result) {
	if f.metrics != nil {
		f.metrics.PipelineDuration.Record(ctx, res.FinishedAt.Sub(res.StartedAt).Seconds())
		if res.Status == pipeline.StatusCompleted {
			f.metrics.PipelinesCompleted.Add(ctx, 1)
		} else {
			f.metrics.PipelinesFailed.Add(ctx, 1)
		}
	}

	if f.hub != nil {
		f.hub.BroadcastEvent(ctx, EventPipelineStatus, PipelineStatusEvent{
			RunID:       res.RunID,
			Status:      string(res.Status),
			Outputs:     len(res.Outputs),
			Escalations: len(res.Escalations),
		})
	}

	if f.archive != nil {
		// Best effort: the downstream artifact boundary never affects the
		// pipeline's own completion semantics.
		if err := f.archive.SaveResult(context.WithoutCancel(ctx), req, res); err != nil {
			slog.Error("result archive failed", "run_id", res.RunID, "error", err)
		}
	}

	slog.Info("pipeline finished",
		"run_id", res.RunID, "status", res.Status,
		"escalations", len(res.Escalations), "duration", res.FinishedAt.Sub(res.StartedAt))
}

func (f *Foreman) emitNode(ctx context.Context, p *plan.Plan, id string) {
	if f.hub == nil {
		return
	}
	n := p.Node(id)
	f.hub.BroadcastEvent(ctx, EventNodeStatus, NodeStatusEvent{
		RunID:      p.RunID,
		NodeID:     n.ID,
		Capability: n.Capability,
		Status:     string(n.Status),
		Attempts:   n.Attempts,
		Error:      n.Error,
	})
}
