// Package pipeline defines the caller-facing request/result entities and the
// aggregator that folds a terminal plan into a single result.
package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// Request is the immutable caller submission. RunID is globally unique and
// never changes for the life of the request.
type Request struct {
	RunID           string    `json:"run_id"`
	TaskDescription string    `json:"task_description"`
	Constraints     []string  `json:"constraints,omitempty"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

// NewRequest creates a request with a fresh run id.
func NewRequest(description string, constraints []string) Request {
	return Request{
		RunID:           uuid.NewString(),
		TaskDescription: description,
		Constraints:     constraints,
		SubmittedAt:     time.Now().UTC(),
	}
}
