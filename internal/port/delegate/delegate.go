// Package delegate defines the delegation channel port: the synchronous
// logical call boundary between the foreman and a specialist worker.
// The transport behind it (in-process call, NATS request/reply, HTTP) is
// pluggable; the foreman depends only on this contract.
package delegate

import (
	"context"
	"encoding/json"
)

// Request is one delegation: a single request/response exchange for one
// task node.
type Request struct {
	RunID      string          `json:"run_id"`
	NodeID     string          `json:"node_id"`
	Capability string          `json:"capability"`
	Input      json.RawMessage `json:"input,omitempty"`
}

// Channel delegates a request to the worker registered for its capability.
// On success it returns the worker's structured result payload. Failures map
// onto the domain taxonomy: domain.ErrDelegationTimeout when the node SLA
// carried by ctx expires, domain.ErrDelegationTransport for channel faults,
// and *domain.WorkerError when the worker itself reports status=error.
type Channel interface {
	Delegate(ctx context.Context, req Request) (json.RawMessage, error)
}
