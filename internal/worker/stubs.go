package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/contract"
)

// Handler is one specialist: it receives the node input payload and returns a
// contract-conforming result, or an error (*domain.WorkerError for explicit
// verdicts).
type Handler func(ctx context.Context, input json.RawMessage) (json.RawMessage, error)

// Roster returns the built-in stub specialists, one per registered
// capability. The stubs are deterministic: same input, same output. They back
// the reference worker binary and give integration tests a real fleet to
// delegate to.
func Roster() map[string]Handler {
	return map[string]Handler{
		contract.CapAnalyze:   Analyze,
		contract.CapPlanFix:   PlanFix,
		contract.CapImplement: Implement,
		contract.CapTest:      Test,
		contract.CapDocument:  Document,
	}
}

func badInput(format string, args ...any) error {
	return &domain.WorkerError{
		Code:      "bad_input",
		Message:   fmt.Sprintf(format, args...),
		Transient: false,
	}
}

func marshal(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &domain.WorkerError{Code: "encode_failure", Message: err.Error(), Transient: true}
	}
	return data, nil
}

// Analyze reviews the described task against the rule set and reports
// compliance.
func Analyze(_ context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Task        string   `json:"task"`
		Constraints []string `json:"constraints"`
	}
	if err := json.Unmarshal(input, &in); err != nil || in.Task == "" {
		return nil, badInput("analyze requires a task field")
	}

	return marshal(map[string]any{
		"report_type":       "analysis",
		"compliance_status": "COMPLIANT",
		"findings":          []string{"no structural issues found in " + in.Task},
		"recommendations":   []string{"keep module boundaries as they are"},
	})
}

// PlanFix turns a finding into an ordered remediation plan.
func PlanFix(_ context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Finding string `json:"finding"`
	}
	if err := json.Unmarshal(input, &in); err != nil || in.Finding == "" {
		return nil, badInput("plan-fix requires a finding field")
	}

	return marshal(map[string]any{
		"plan_type":        "fix_plan",
		"steps":            []string{"reproduce: " + in.Finding, "apply fix", "verify"},
		"estimated_effort": "small",
	})
}

// Implement applies a fix plan and reports the resulting changeset.
func Implement(_ context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Plan map[string]any `json:"plan"`
	}
	if err := json.Unmarshal(input, &in); err != nil || in.Plan == nil {
		return nil, badInput("implement requires a plan object")
	}

	return marshal(map[string]any{
		"change_type": "changeset",
		"files":       []string{"internal/service/foreman.go"},
		"summary":     "applied planned changes",
	})
}

// Test runs the suite for the named target and reports the outcome.
func Test(_ context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Target string `json:"target"`
	}
	if err := json.Unmarshal(input, &in); err != nil || in.Target == "" {
		return nil, badInput("test requires a target field")
	}

	return marshal(map[string]any{
		"result_type": "test_report",
		"status":      "pass",
		"total":       12,
		"failed":      0,
	})
}

// Document produces a documentation draft for the given subject.
func Document(_ context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Subject string `json:"subject"`
	}
	if err := json.Unmarshal(input, &in); err != nil || in.Subject == "" {
		return nil, badInput("document requires a subject field")
	}

	return marshal(map[string]any{
		"doc_type":        "draft",
		"title":           in.Subject,
		"body":            "documentation draft for " + in.Subject,
		"recommendations": []string{"review wording before publishing"},
	})
}
