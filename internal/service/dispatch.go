package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	otelx "github.com/Strob0t/TaskForge/internal/adapter/otel"
	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/port/delegate"
	"github.com/Strob0t/TaskForge/internal/resilience"
)

// delegation is the outcome of one dispatch, merged sequentially by Execute.
type delegation struct {
	nodeID string
	output json.RawMessage
	err    error
}

// dispatch performs one delegation attempt and reports the outcome. It is the
// only suspension point in the pipeline: the goroutine blocks on the worker's
// response or the node SLA, nothing else.
func (f *Foreman) dispatch(ctx context.Context, req delegate.Request, done chan<- delegation) {
	ctx, span := otelx.StartDelegationSpan(ctx, req.RunID, req.NodeID, req.Capability)
	defer span.End()

	start := f.now()
	out, err := f.delegateOnce(ctx, req)
	if f.metrics != nil {
		f.metrics.Delegations.Add(ctx, 1)
		f.metrics.DelegationDuration.Record(ctx, f.now().Sub(start).Seconds())
	}
	done <- delegation{nodeID: req.NodeID, output: out, err: err}
}

// delegateOnce runs the full delegation path for a single attempt: dedup
// cache lookup, breaker-guarded channel call under the node SLA, response
// validation, and cache fill.
func (f *Foreman) delegateOnce(ctx context.Context, req delegate.Request) (json.RawMessage, error) {
	key := dedupKey(req.Capability, req.Input)
	if f.dedup != nil {
		if data, ok, err := f.dedup.Get(ctx, key); err == nil && ok {
			// Cached payloads were validated before being stored.
			return data, nil
		}
	}

	slaCtx, cancel := context.WithTimeout(ctx, f.cfg.TaskSLA)
	defer cancel()

	var out json.RawMessage
	call := func() error {
		var callErr error
		out, callErr = f.channel.Delegate(slaCtx, req)
		return callErr
	}

	var err error
	if f.breaker != nil {
		err = f.breaker.Execute(call)
	} else {
		err = call()
	}
	if err != nil {
		return nil, normalizeDelegationError(ctx, err)
	}

	if err := f.registry.Validate(req.Capability, out); err != nil {
		return nil, err
	}

	if f.dedup != nil {
		_ = f.dedup.Set(ctx, key, out, f.dedupTTL)
	}
	return out, nil
}

// normalizeDelegationError maps transport-level failures onto the domain
// taxonomy so the retry controller can classify them uniformly.
func normalizeDelegationError(parent context.Context, err error) error {
	switch {
	case parent.Err() != nil:
		return fmt.Errorf("%w: %v", domain.ErrCancelled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domain.ErrDelegationTimeout, err)
	case errors.Is(err, resilience.ErrCircuitOpen):
		return fmt.Errorf("%w: %v", domain.ErrDelegationTransport, err)
	default:
		return err
	}
}

// dedupKey derives the cache key for a delegation from its capability and
// canonical input bytes.
func dedupKey(capability string, input []byte) string {
	sum := sha256.Sum256(input)
	return capability + ":" + hex.EncodeToString(sum[:])
}
