package contract

import "sort"

// Capability names of the fixed worker roster. Adding a worker means adding
// a registry entry here; foreman dispatch never branches on these names.
const (
	CapAnalyze   = "analyze"
	CapPlanFix   = "plan-fix"
	CapImplement = "implement"
	CapTest      = "test"
	CapDocument  = "document"
)

// Severity and status enums shared across contracts.
var (
	severities       = []string{"low", "medium", "high", "critical"}
	complianceStates = []string{"COMPLIANT", "NON_COMPLIANT", "NEEDS_REVIEW"}
	ruleRefs         = []string{"R-STRUCT", "R-NAMING", "R-SECURITY", "R-TESTS", "R-DOCS"}
	testStates       = []string{"pass", "fail", "error"}
	effortSizes      = []string{"small", "medium", "large"}
	blockerTypes     = []string{"missing_dependency", "conflict", "permission"}
)

// Registry is the static capability table. It is initialized once and
// read-only afterwards, so concurrent pipelines share it without locking.
type Registry struct {
	contracts map[string]Contract
}

// NewRegistry builds the fixed roster of specialist worker contracts.
func NewRegistry() *Registry {
	r := &Registry{contracts: make(map[string]Contract)}
	for _, c := range roster() {
		r.contracts[c.Capability] = c
	}
	return r
}

// Lookup returns the contract for a capability.
func (r *Registry) Lookup(capability string) (Contract, bool) {
	c, ok := r.contracts[capability]
	return c, ok
}

// Has reports whether a capability is registered.
func (r *Registry) Has(capability string) bool {
	_, ok := r.contracts[capability]
	return ok
}

// Capabilities returns all registered capability names, sorted.
func (r *Registry) Capabilities() []string {
	names := make([]string, 0, len(r.contracts))
	for name := range r.contracts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func roster() []Contract {
	return []Contract{
		{
			Capability:   CapAnalyze,
			Discriminant: "report_type",
			Input: []Field{
				{Name: "task", Type: TypeString, Required: true},
				{Name: "constraints", Type: TypeList},
			},
			Outputs: []Variant{
				{
					Name: "analysis",
					Fields: []Field{
						{Name: "compliance_status", Type: TypeString, Required: true, Enum: complianceStates},
						{Name: "findings", Type: TypeList},
						{Name: "recommendations", Type: TypeList},
					},
				},
				{
					Name: "violation",
					Fields: []Field{
						{Name: "rule", Type: TypeString, Required: true, Enum: ruleRefs},
						{Name: "severity", Type: TypeString, Required: true, Enum: severities},
						{Name: "finding", Type: TypeString, Required: true},
						{Name: "recommendation", Type: TypeString},
					},
				},
			},
		},
		{
			Capability:   CapPlanFix,
			Discriminant: "plan_type",
			Input: []Field{
				{Name: "finding", Type: TypeString, Required: true},
				{Name: "context", Type: TypeObject},
			},
			Outputs: []Variant{
				{
					Name: "fix_plan",
					Fields: []Field{
						{Name: "steps", Type: TypeList, Required: true},
						{Name: "estimated_effort", Type: TypeString, Enum: effortSizes},
					},
				},
				{
					Name: "no_action",
					Fields: []Field{
						{Name: "reason", Type: TypeString, Required: true},
					},
				},
			},
		},
		{
			Capability:   CapImplement,
			Discriminant: "change_type",
			Input: []Field{
				{Name: "plan", Type: TypeObject, Required: true},
			},
			Outputs: []Variant{
				{
					Name: "changeset",
					Fields: []Field{
						{Name: "files", Type: TypeList, Required: true},
						{Name: "summary", Type: TypeString, Required: true},
						{Name: "findings", Type: TypeList},
					},
				},
				{
					Name: "blocked",
					Fields: []Field{
						{Name: "reason", Type: TypeString, Required: true},
						{Name: "blocker", Type: TypeString, Required: true, Enum: blockerTypes},
					},
				},
			},
		},
		{
			Capability:   CapTest,
			Discriminant: "result_type",
			Input: []Field{
				{Name: "target", Type: TypeString, Required: true},
			},
			Outputs: []Variant{
				{
					Name: "test_report",
					Fields: []Field{
						{Name: "status", Type: TypeString, Required: true, Enum: testStates},
						{Name: "total", Type: TypeNumber},
						{Name: "failed", Type: TypeNumber},
						{Name: "findings", Type: TypeList},
					},
				},
				{
					Name: "coverage_report",
					Fields: []Field{
						{Name: "percent", Type: TypeNumber, Required: true},
						{Name: "recommendations", Type: TypeList},
					},
				},
			},
		},
		{
			Capability:   CapDocument,
			Discriminant: "doc_type",
			Input: []Field{
				{Name: "subject", Type: TypeString, Required: true},
			},
			Outputs: []Variant{
				{
					Name: "draft",
					Fields: []Field{
						{Name: "title", Type: TypeString, Required: true},
						{Name: "body", Type: TypeString, Required: true},
						{Name: "recommendations", Type: TypeList},
					},
				},
				{
					Name: "update",
					Fields: []Field{
						{Name: "target", Type: TypeString, Required: true},
						{Name: "body", Type: TypeString, Required: true},
					},
				},
			},
		},
	}
}
