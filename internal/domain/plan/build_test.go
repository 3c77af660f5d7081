package plan_test

import (
	"errors"
	"testing"

	"github.com/Strob0t/TaskForge/internal/domain/plan"
)

func allKnown(string) bool { return true }

func TestBuild_SingleShape(t *testing.T) {
	p, err := plan.Build("run-1", plan.Spec{
		Shape: plan.ShapeSingle,
		Nodes: []plan.NodeSpec{{Capability: "analyze"}},
	}, allKnown, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(p.Nodes))
	}
	if p.Nodes[0].ID != "node-1" {
		t.Fatalf("expected auto id node-1, got %q", p.Nodes[0].ID)
	}
	if p.Nodes[0].Status != plan.NodeStatusPending {
		t.Fatalf("expected pending, got %s", p.Nodes[0].Status)
	}
}

func TestBuild_SingleShapeRejectsMultipleNodes(t *testing.T) {
	_, err := plan.Build("run-1", plan.Spec{
		Shape: plan.ShapeSingle,
		Nodes: []plan.NodeSpec{{Capability: "analyze"}, {Capability: "test"}},
	}, allKnown, 0)
	if !errors.Is(err, plan.ErrSingleNodeCount) {
		t.Fatalf("expected ErrSingleNodeCount, got %v", err)
	}
}

func TestBuild_SequentialImplicitChain(t *testing.T) {
	p, err := plan.Build("run-1", plan.Spec{
		Shape: plan.ShapeSequential,
		Nodes: []plan.NodeSpec{
			{ID: "a", Capability: "analyze"},
			{ID: "b", Capability: "plan-fix"},
			{ID: "c", Capability: "implement"},
		},
	}, allKnown, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Node("a").DependsOn) != 0 {
		t.Fatalf("first node must have no deps, got %v", p.Node("a").DependsOn)
	}
	if deps := p.Node("b").DependsOn; len(deps) != 1 || deps[0] != "a" {
		t.Fatalf("expected b to depend on a, got %v", deps)
	}
	if deps := p.Node("c").DependsOn; len(deps) != 1 || deps[0] != "b" {
		t.Fatalf("expected c to depend on b, got %v", deps)
	}
}

func TestBuild_EmptySpec(t *testing.T) {
	_, err := plan.Build("run-1", plan.Spec{Shape: plan.ShapeParallel}, allKnown, 0)
	if !errors.Is(err, plan.ErrNoNodes) {
		t.Fatalf("expected ErrNoNodes, got %v", err)
	}
}

func TestBuild_InvalidShape(t *testing.T) {
	_, err := plan.Build("run-1", plan.Spec{
		Shape: "spiral",
		Nodes: []plan.NodeSpec{{Capability: "analyze"}},
	}, allKnown, 0)
	if !errors.Is(err, plan.ErrInvalidShape) {
		t.Fatalf("expected ErrInvalidShape, got %v", err)
	}
}

func TestBuild_TooManyNodes(t *testing.T) {
	nodes := make([]plan.NodeSpec, plan.DefaultMaxNodes+1)
	for i := range nodes {
		nodes[i].Capability = "analyze"
	}
	_, err := plan.Build("run-1", plan.Spec{Shape: plan.ShapeParallel, Nodes: nodes}, allKnown, 0)
	if !errors.Is(err, plan.ErrTooManyNodes) {
		t.Fatalf("expected ErrTooManyNodes, got %v", err)
	}
}

func TestBuild_UnknownCapability(t *testing.T) {
	known := func(cap string) bool { return cap == "analyze" }
	_, err := plan.Build("run-1", plan.Spec{
		Shape: plan.ShapeSingle,
		Nodes: []plan.NodeSpec{{Capability: "translate"}},
	}, known, 0)
	if !errors.Is(err, plan.ErrUnknownCapability) {
		t.Fatalf("expected ErrUnknownCapability, got %v", err)
	}
}

func TestBuild_DuplicateNodeID(t *testing.T) {
	_, err := plan.Build("run-1", plan.Spec{
		Shape: plan.ShapeParallel,
		Nodes: []plan.NodeSpec{
			{ID: "a", Capability: "analyze"},
			{ID: "a", Capability: "test"},
		},
	}, allKnown, 0)
	if !errors.Is(err, plan.ErrDuplicateNodeID) {
		t.Fatalf("expected ErrDuplicateNodeID, got %v", err)
	}
}

func TestBuild_UnknownDependency(t *testing.T) {
	_, err := plan.Build("run-1", plan.Spec{
		Shape: plan.ShapeParallel,
		Nodes: []plan.NodeSpec{
			{ID: "a", Capability: "analyze", DependsOn: []string{"ghost"}},
		},
	}, allKnown, 0)
	if !errors.Is(err, plan.ErrUnknownDependency) {
		t.Fatalf("expected ErrUnknownDependency, got %v", err)
	}
}

func TestBuild_DependencyCycle(t *testing.T) {
	_, err := plan.Build("run-1", plan.Spec{
		Shape: plan.ShapeParallel,
		Nodes: []plan.NodeSpec{
			{ID: "a", Capability: "analyze", DependsOn: []string{"b"}},
			{ID: "b", Capability: "test", DependsOn: []string{"a"}},
		},
	}, allKnown, 0)
	if !errors.Is(err, plan.ErrDependencyCycle) {
		t.Fatalf("expected ErrDependencyCycle, got %v", err)
	}
}

func TestBuild_ConditionalShapeRequiresCondition(t *testing.T) {
	_, err := plan.Build("run-1", plan.Spec{
		Shape: plan.ShapeConditional,
		Nodes: []plan.NodeSpec{
			{ID: "a", Capability: "analyze"},
			{ID: "b", Capability: "plan-fix", DependsOn: []string{"a"}},
		},
	}, allKnown, 0)
	if !errors.Is(err, plan.ErrConditionalRequired) {
		t.Fatalf("expected ErrConditionalRequired, got %v", err)
	}
}

func TestBuild_ConditionSourceMustBeDependency(t *testing.T) {
	_, err := plan.Build("run-1", plan.Spec{
		Shape: plan.ShapeConditional,
		Nodes: []plan.NodeSpec{
			{ID: "a", Capability: "analyze"},
			{ID: "b", Capability: "test"},
			{
				ID: "c", Capability: "plan-fix", DependsOn: []string{"b"},
				Condition: &plan.Condition{Node: "a", Field: "compliance_status", Equals: "NON_COMPLIANT"},
			},
		},
	}, allKnown, 0)
	if !errors.Is(err, plan.ErrConditionSource) {
		t.Fatalf("expected ErrConditionSource, got %v", err)
	}
}

func TestBuild_ConditionalOK(t *testing.T) {
	p, err := plan.Build("run-1", plan.Spec{
		Shape: plan.ShapeConditional,
		Nodes: []plan.NodeSpec{
			{ID: "a", Capability: "analyze"},
			{
				ID: "b", Capability: "plan-fix", DependsOn: []string{"a"},
				Condition: &plan.Condition{Node: "a", Field: "compliance_status", Equals: "NON_COMPLIANT"},
			},
		},
	}, allKnown, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Node("b").Condition == nil {
		t.Fatal("expected condition to be carried onto the node")
	}
}
