package plan_test

import (
	"encoding/json"
	"testing"

	"github.com/Strob0t/TaskForge/internal/domain/plan"
)

func TestConditionMet_String(t *testing.T) {
	c := &plan.Condition{Node: "a", Field: "compliance_status", Equals: "NON_COMPLIANT"}
	out := json.RawMessage(`{"compliance_status":"NON_COMPLIANT"}`)
	if !c.Met(out) {
		t.Fatal("expected condition to hold")
	}
	if c.Met(json.RawMessage(`{"compliance_status":"COMPLIANT"}`)) {
		t.Fatal("expected condition not to hold")
	}
}

func TestConditionMet_Bool(t *testing.T) {
	c := &plan.Condition{Node: "a", Field: "ok", Equals: "true"}
	if !c.Met(json.RawMessage(`{"ok":true}`)) {
		t.Fatal("expected bool true to match")
	}
	if c.Met(json.RawMessage(`{"ok":false}`)) {
		t.Fatal("expected bool false not to match")
	}
}

func TestConditionMet_Number(t *testing.T) {
	c := &plan.Condition{Node: "a", Field: "failed", Equals: "0"}
	if !c.Met(json.RawMessage(`{"failed":0}`)) {
		t.Fatal("expected integer 0 to match")
	}
	c = &plan.Condition{Node: "a", Field: "percent", Equals: "87.5"}
	if !c.Met(json.RawMessage(`{"percent":87.5}`)) {
		t.Fatal("expected 87.5 to match")
	}
}

func TestConditionMet_AbsentIsFalse(t *testing.T) {
	c := &plan.Condition{Node: "a", Field: "status", Equals: "pass"}
	if c.Met(nil) {
		t.Fatal("missing output must not hold")
	}
	if c.Met(json.RawMessage(`not json`)) {
		t.Fatal("undecodable output must not hold")
	}
	if c.Met(json.RawMessage(`{"other":"pass"}`)) {
		t.Fatal("absent field must not hold")
	}
	if c.Met(json.RawMessage(`{"status":["pass"]}`)) {
		t.Fatal("non-scalar field must not hold")
	}
}
