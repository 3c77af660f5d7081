// Package inproc implements the delegation channel with in-process worker
// handlers. It is the default transport for embedded deployments and tests.
package inproc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/port/delegate"
)

// Handler is one in-process worker: it receives the node input and returns a
// structured result payload, or an error (*domain.WorkerError for explicit
// worker verdicts).
type Handler func(ctx context.Context, input json.RawMessage) (json.RawMessage, error)

// Mux routes delegations to registered handlers by capability.
type Mux struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewMux creates an empty worker mux.
func NewMux() *Mux {
	return &Mux{handlers: make(map[string]Handler)}
}

// Handle registers a worker handler for a capability. Registering the same
// capability twice panics: the roster is fixed at startup.
func (m *Mux) Handle(capability string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.handlers[capability]; exists {
		panic(fmt.Sprintf("inproc: duplicate handler for %q", capability))
	}
	m.handlers[capability] = h
}

// Delegate implements delegate.Channel.
func (m *Mux) Delegate(ctx context.Context, req delegate.Request) (json.RawMessage, error) {
	m.mu.RLock()
	h, ok := m.handlers[req.Capability]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCapability, req.Capability)
	}

	type reply struct {
		out json.RawMessage
		err error
	}
	ch := make(chan reply, 1)
	go func() {
		out, err := h(ctx, req.Input)
		ch <- reply{out: out, err: err}
	}()

	select {
	case r := <-ch:
		return r.out, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
