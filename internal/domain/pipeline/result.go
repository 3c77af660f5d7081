package pipeline

import (
	"encoding/json"
	"time"
)

// Status is the overall verdict of a pipeline run.
type Status string

const (
	// StatusCompleted: every required node succeeded.
	StatusCompleted Status = "completed"
	// StatusPartial: only optional nodes failed after exhausting retries.
	StatusPartial Status = "partial"
	// StatusFailed: at least one required node is unresolved.
	StatusFailed Status = "failed"
)

// Escalation records one unresolved failure with enough context to diagnose
// without internal logs.
type Escalation struct {
	NodeID     string `json:"node_id"`
	Capability string `json:"capability"`
	Attempts   int    `json:"attempts"`
	LastError  string `json:"last_error"`
}

// Attributed is a finding or recommendation tagged with the node it came from.
type Attributed struct {
	NodeID     string `json:"node_id"`
	Capability string `json:"capability"`
	Text       string `json:"text"`
}

// Result is produced exactly once per request, after every node has reached
// a terminal state. The pipeline always returns one; unresolved failures show
// up as a non-completed status with a populated escalation list.
type Result struct {
	RunID           string                     `json:"run_id"`
	Status          Status                     `json:"status"`
	Summary         string                     `json:"summary"`
	Outputs         map[string]json.RawMessage `json:"outputs,omitempty"`
	Findings        []Attributed               `json:"findings,omitempty"`
	Recommendations []Attributed               `json:"recommendations,omitempty"`
	Escalations     []Escalation               `json:"escalations"`
	StartedAt       time.Time                  `json:"started_at"`
	FinishedAt      time.Time                  `json:"finished_at"`
}
