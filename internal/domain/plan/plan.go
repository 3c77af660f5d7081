// Package plan defines the TaskPlan domain entity: the directed graph of
// delegation units the foreman drives to completion for one pipeline request.
package plan

import (
	"encoding/json"
	"time"
)

// Shape defines the scheduling strategy a plan was constructed with.
type Shape string

const (
	ShapeSingle      Shape = "single"
	ShapeSequential  Shape = "sequential"
	ShapeParallel    Shape = "parallel"
	ShapeConditional Shape = "conditional"
)

// NodeStatus represents the lifecycle state of an individual task node.
type NodeStatus string

const (
	NodeStatusPending   NodeStatus = "pending"
	NodeStatusRunning   NodeStatus = "running"
	NodeStatusSucceeded NodeStatus = "succeeded"
	NodeStatusFailed    NodeStatus = "failed"
	NodeStatusSkipped   NodeStatus = "skipped"
)

// IsTerminal returns true if the node is in a final state.
func (s NodeStatus) IsTerminal() bool {
	switch s {
	case NodeStatusSucceeded, NodeStatusFailed, NodeStatusSkipped:
		return true
	}
	return false
}

// SkipReason records why a node was skipped without being dispatched.
type SkipReason string

const (
	SkipConditionNotMet  SkipReason = "condition_not_met"
	SkipDependencyFailed SkipReason = "dependency_failed"
	SkipCancelled        SkipReason = "cancelled"
)

// Node is one scheduled delegation unit within a plan.
type Node struct {
	ID         string          `json:"id"`
	Capability string          `json:"capability"`
	Input      json.RawMessage `json:"input,omitempty"`
	DependsOn  []string        `json:"depends_on,omitempty"`
	Condition  *Condition      `json:"condition,omitempty"`
	Optional   bool            `json:"optional,omitempty"`

	Status   NodeStatus      `json:"status"`
	Skip     SkipReason      `json:"skip_reason,omitempty"`
	Output   json.RawMessage `json:"output,omitempty"`
	Error    string          `json:"error,omitempty"`
	Attempts int             `json:"attempts"`
}

// Plan is a TaskPlan: built once per pipeline request and never rewritten
// mid-run. It is owned exclusively by the foreman executing the request,
// so node mutations need no locking.
type Plan struct {
	RunID     string    `json:"run_id"`
	Shape     Shape     `json:"shape"`
	Nodes     []Node    `json:"nodes"`
	CreatedAt time.Time `json:"created_at"`
}

// Node returns a pointer to the node with the given id, or nil.
func (p *Plan) Node(id string) *Node {
	for i := range p.Nodes {
		if p.Nodes[i].ID == id {
			return &p.Nodes[i]
		}
	}
	return nil
}

// MarkRunning transitions a pending node to running.
func (p *Plan) MarkRunning(id string) {
	if n := p.Node(id); n != nil {
		n.Status = NodeStatusRunning
	}
}

// MarkSucceeded transitions a node to succeeded and stores its validated output.
func (p *Plan) MarkSucceeded(id string, output json.RawMessage) {
	if n := p.Node(id); n != nil {
		n.Status = NodeStatusSucceeded
		n.Output = output
		n.Error = ""
	}
}

// MarkFailed transitions a node to failed with its last error.
func (p *Plan) MarkFailed(id, errMsg string) {
	if n := p.Node(id); n != nil {
		n.Status = NodeStatusFailed
		n.Error = errMsg
	}
}

// MarkSkipped transitions a node to skipped with the given reason.
func (p *Plan) MarkSkipped(id string, reason SkipReason) {
	if n := p.Node(id); n != nil {
		n.Status = NodeStatusSkipped
		n.Skip = reason
	}
}

// Requeue returns a node to pending for another delegation attempt.
func (p *Plan) Requeue(id string, attempts int) {
	if n := p.Node(id); n != nil {
		n.Status = NodeStatusPending
		n.Attempts = attempts
	}
}
