package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultMaxNodes caps plan size. Exceeding it fails at construction time,
// never at runtime.
const DefaultMaxNodes = 10

var (
	ErrNoNodes             = errors.New("at least one node is required")
	ErrTooManyNodes        = errors.New("plan exceeds maximum node count")
	ErrInvalidShape        = errors.New("invalid shape: must be single, sequential, parallel, or conditional")
	ErrSingleNodeCount     = errors.New("single shape requires exactly 1 node")
	ErrConditionalRequired = errors.New("conditional shape requires at least one node with a condition")
	ErrDuplicateNodeID     = errors.New("duplicate node id")
	ErrUnknownCapability   = errors.New("node capability has no registry entry")
	ErrUnknownDependency   = errors.New("node dependency references unknown node")
	ErrDependencyCycle     = errors.New("node dependencies contain a cycle")
	ErrConditionSource     = errors.New("condition references a node that is not a dependency")
)

// Spec describes the plan a caller wants built. The upstream classifier maps
// a request to one of these; the builder only checks structure.
type Spec struct {
	Shape Shape      `json:"shape"`
	Nodes []NodeSpec `json:"nodes"`
}

// NodeSpec holds the construction-time fields of one node.
type NodeSpec struct {
	ID         string          `json:"id,omitempty"`
	Capability string          `json:"capability"`
	Input      json.RawMessage `json:"input,omitempty"`
	DependsOn  []string        `json:"depends_on,omitempty"`
	Condition  *Condition      `json:"condition,omitempty"`
	Optional   bool            `json:"optional,omitempty"`
}

// Build validates a spec and constructs an immutable plan for the given run.
// known reports whether a capability has a registry entry; maxNodes <= 0
// falls back to DefaultMaxNodes. All returned errors are construction errors:
// once Build succeeds the plan's structure is never rejected at runtime.
func Build(runID string, spec Spec, known func(string) bool, maxNodes int) (*Plan, error) {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}

	switch spec.Shape {
	case ShapeSingle, ShapeSequential, ShapeParallel, ShapeConditional:
	default:
		return nil, ErrInvalidShape
	}
	if len(spec.Nodes) == 0 {
		return nil, ErrNoNodes
	}
	if len(spec.Nodes) > maxNodes {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyNodes, len(spec.Nodes), maxNodes)
	}
	if spec.Shape == ShapeSingle && len(spec.Nodes) != 1 {
		return nil, ErrSingleNodeCount
	}

	p := &Plan{
		RunID:     runID,
		Shape:     spec.Shape,
		Nodes:     make([]Node, 0, len(spec.Nodes)),
		CreatedAt: time.Now().UTC(),
	}

	ids := make(map[string]bool, len(spec.Nodes))
	for i, ns := range spec.Nodes {
		id := ns.ID
		if id == "" {
			id = fmt.Sprintf("node-%d", i+1)
		}
		if ids[id] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateNodeID, id)
		}
		ids[id] = true

		if !known(ns.Capability) {
			return nil, fmt.Errorf("%w: node %q capability %q", ErrUnknownCapability, id, ns.Capability)
		}

		deps := append([]string(nil), ns.DependsOn...)
		// Sequential shape chains nodes implicitly when no explicit deps are given.
		if spec.Shape == ShapeSequential && len(deps) == 0 && i > 0 {
			deps = []string{p.Nodes[i-1].ID}
		}

		p.Nodes = append(p.Nodes, Node{
			ID:         id,
			Capability: ns.Capability,
			Input:      ns.Input,
			DependsOn:  deps,
			Condition:  ns.Condition,
			Optional:   ns.Optional,
			Status:     NodeStatusPending,
		})
	}

	if err := validateEdges(p); err != nil {
		return nil, err
	}
	if spec.Shape == ShapeConditional && !hasCondition(p) {
		return nil, ErrConditionalRequired
	}
	return p, nil
}

func hasCondition(p *Plan) bool {
	for i := range p.Nodes {
		if p.Nodes[i].Condition != nil {
			return true
		}
	}
	return false
}

// validateEdges checks dependency references, condition sources, and acyclicity
// (Kahn's algorithm).
func validateEdges(p *Plan) error {
	index := make(map[string]int, len(p.Nodes))
	for i := range p.Nodes {
		index[p.Nodes[i].ID] = i
	}

	n := len(p.Nodes)
	inDegree := make([]int, n)
	adj := make([][]int, n)

	for i := range p.Nodes {
		node := &p.Nodes[i]
		depSet := make(map[string]bool, len(node.DependsOn))
		for _, dep := range node.DependsOn {
			j, ok := index[dep]
			if !ok {
				return fmt.Errorf("%w: node %q depends on %q", ErrUnknownDependency, node.ID, dep)
			}
			if j == i {
				return fmt.Errorf("%w: node %q depends on itself", ErrDependencyCycle, node.ID)
			}
			depSet[dep] = true
			adj[j] = append(adj[j], i)
			inDegree[i]++
		}
		// A condition may only read output the node is ordered after.
		if node.Condition != nil && !depSet[node.Condition.Node] {
			return fmt.Errorf("%w: node %q condition reads %q", ErrConditionSource, node.ID, node.Condition.Node)
		}
	}

	queue := make([]int, 0, n)
	for i, d := range inDegree {
		if d == 0 {
			queue = append(queue, i)
		}
	}
	visited := 0
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range adj[node] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if visited != n {
		return ErrDependencyCycle
	}
	return nil
}
