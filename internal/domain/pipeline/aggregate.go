package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Strob0t/TaskForge/internal/domain/plan"
)

// Aggregate walks a terminal plan once and merges node outputs into a single
// result. It must only be called after every node has reached a terminal
// state; it never exposes partial results mid-run.
func Aggregate(req Request, p *plan.Plan, escalations []Escalation, started, finished time.Time) *Result {
	res := &Result{
		RunID:       req.RunID,
		Outputs:     make(map[string]json.RawMessage),
		Escalations: escalations,
		StartedAt:   started,
		FinishedAt:  finished,
	}
	if res.Escalations == nil {
		res.Escalations = []Escalation{}
	}

	succeeded := 0
	for i := range p.Nodes {
		n := &p.Nodes[i]
		if n.Status != plan.NodeStatusSucceeded {
			continue
		}
		succeeded++
		res.Outputs[n.ID] = n.Output
		res.Findings = append(res.Findings, extract(n, "findings", "finding")...)
		res.Recommendations = append(res.Recommendations, extract(n, "recommendations", "recommendation")...)
	}

	res.Status = computeStatus(p)
	res.Summary = fmt.Sprintf("%d/%d nodes succeeded, %d escalation(s)",
		succeeded, len(p.Nodes), len(res.Escalations))
	return res
}

// computeStatus applies the status invariant: completed iff all required
// nodes resolved cleanly (succeeded, or skipped because their declared
// condition did not hold); partial iff only optional nodes are unresolved;
// failed otherwise.
func computeStatus(p *plan.Plan) Status {
	optionalUnresolved := false
	for i := range p.Nodes {
		n := &p.Nodes[i]
		resolved := n.Status == plan.NodeStatusSucceeded ||
			(n.Status == plan.NodeStatusSkipped && n.Skip == plan.SkipConditionNotMet)
		if resolved {
			continue
		}
		if n.Optional {
			optionalUnresolved = true
			continue
		}
		return StatusFailed
	}
	if optionalUnresolved {
		return StatusPartial
	}
	return StatusCompleted
}

// extract pulls attributed text entries out of a node output. Workers report
// findings/recommendations either as a list field or as a single string field
// (the violation-report shape); both are folded into the same attribution.
func extract(n *plan.Node, listField, scalarField string) []Attributed {
	if len(n.Output) == 0 {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(n.Output, &obj); err != nil {
		return nil
	}

	var out []Attributed
	if items, ok := obj[listField].([]any); ok {
		for _, item := range items {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, Attributed{NodeID: n.ID, Capability: n.Capability, Text: s})
			}
		}
	}
	if s, ok := obj[scalarField].(string); ok && s != "" {
		out = append(out, Attributed{NodeID: n.ID, Capability: n.Capability, Text: s})
	}
	return out
}
