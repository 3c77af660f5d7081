// Package domain provides shared domain-level errors for the delegation pipeline.
package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDelegationTimeout indicates a worker did not respond within the node SLA.
var ErrDelegationTimeout = errors.New("delegation timed out")

// ErrDelegationTransport indicates the delegation channel itself failed
// (connection loss, publish failure) before a worker verdict was obtained.
var ErrDelegationTransport = errors.New("delegation transport error")

// ErrCancelled indicates pipeline cancellation was requested by the caller.
var ErrCancelled = errors.New("cancellation requested")

// ErrUnknownCapability indicates a capability has no registry entry.
var ErrUnknownCapability = errors.New("unknown capability")

// WorkerError is an error a worker explicitly reported through the delegation
// contract (status=error). Transient tells the retry controller whether the
// failure is worth another attempt.
type WorkerError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Transient bool   `json:"transient"`
}

func (e *WorkerError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("worker error (%s, %s): %s", e.Code, kind, e.Message)
}
