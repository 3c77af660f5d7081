// Package nats implements the delegation channel over NATS request/reply.
// Each capability has a dedicated subject (delegate.<capability>); a worker
// process for that capability subscribes there and replies with the wire
// envelope defined by the delegate port.
package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/port/delegate"
)

// SubjectPrefix is the subject namespace for worker delegation.
const SubjectPrefix = "delegate."

// Channel implements delegate.Channel over a NATS connection.
type Channel struct {
	nc *nats.Conn
}

// Connect establishes a connection to NATS for worker delegation.
func Connect(url string) (*Channel, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	slog.Info("nats connected", "url", url)
	return &Channel{nc: nc}, nil
}

// Delegate sends the request to the capability's subject and waits for the
// worker's reply within the deadline carried by ctx.
func (c *Channel) Delegate(ctx context.Context, req delegate.Request) (json.RawMessage, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", domain.ErrDelegationTransport, err)
	}

	msg, err := c.nc.RequestWithContext(ctx, SubjectPrefix+req.Capability, data)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, nats.ErrTimeout):
			return nil, fmt.Errorf("%w: subject %s%s", domain.ErrDelegationTimeout, SubjectPrefix, req.Capability)
		case errors.Is(err, context.Canceled):
			return nil, err
		case errors.Is(err, nats.ErrNoResponders):
			return nil, fmt.Errorf("%w: no worker for %s%s", domain.ErrDelegationTransport, SubjectPrefix, req.Capability)
		default:
			return nil, fmt.Errorf("%w: %v", domain.ErrDelegationTransport, err)
		}
	}

	var reply delegate.Reply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, fmt.Errorf("%w: undecodable reply: %v", domain.ErrDelegationTransport, err)
	}
	return reply.Decode()
}

// Serve registers an in-process worker for a capability on this connection.
// Worker binaries use it to join the delegation fleet; the foreman side only
// needs Delegate.
func (c *Channel) Serve(capability string, handler func(ctx context.Context, req delegate.Request) (json.RawMessage, error)) (*nats.Subscription, error) {
	return c.nc.Subscribe(SubjectPrefix+capability, func(msg *nats.Msg) {
		var req delegate.Request
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			slog.Error("delegation request undecodable", "subject", msg.Subject, "error", err)
			return
		}

		out, err := handler(context.Background(), req)
		reply := delegate.Reply{Status: delegate.ReplyStatusSuccess, Result: out}
		if err != nil {
			var workerErr *domain.WorkerError
			if !errors.As(err, &workerErr) {
				workerErr = &domain.WorkerError{Code: "worker_failure", Message: err.Error(), Transient: true}
			}
			reply = delegate.Reply{Status: delegate.ReplyStatusError, Error: workerErr}
		}

		data, err := json.Marshal(reply)
		if err != nil {
			slog.Error("delegation reply marshal failed", "subject", msg.Subject, "error", err)
			return
		}
		if err := msg.Respond(data); err != nil {
			slog.Error("delegation reply send failed", "subject", msg.Subject, "error", err)
		}
	})
}

// Close shuts down the NATS connection.
func (c *Channel) Close() error {
	c.nc.Close()
	return nil
}
