package service

import (
	"context"
	"errors"
	"time"

	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/contract"
)

// FailureKind classifies a delegation failure for the retry state machine.
type FailureKind int

const (
	// KindRetryable: timeout, transport error, schema violation, or a worker
	// error explicitly marked transient.
	KindRetryable FailureKind = iota
	// KindFatal: cancellation, unknown capability, or a worker error
	// explicitly marked non-transient. Skips retries entirely.
	KindFatal
)

// Classify maps an error onto the failure taxonomy.
func Classify(err error) FailureKind {
	if errors.Is(err, domain.ErrCancelled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, domain.ErrUnknownCapability) {
		return KindFatal
	}

	var workerErr *domain.WorkerError
	if errors.As(err, &workerErr) {
		if workerErr.Transient {
			return KindRetryable
		}
		return KindFatal
	}

	var violation *contract.Violation
	if errors.As(err, &violation) {
		return KindRetryable
	}
	if errors.Is(err, domain.ErrDelegationTimeout) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, domain.ErrDelegationTransport) {
		return KindRetryable
	}

	// Unrecognized errors get the benefit of the doubt: one more attempt is
	// cheaper than a spurious escalation.
	return KindRetryable
}

// RetryPolicy bounds attempts and spaces them with capped exponential backoff.
// The source material states counts and SLAs only loosely ("typically 2",
// "5-10 minutes") and no backoff strategy, so the conservative default is
// base*2^(attempt-1) clamped to both MaxDelay and the node SLA.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	SLA        time.Duration
}

// Delay returns the backoff before the given retry (1-based).
func (p RetryPolicy) Delay(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}
	d := p.BaseDelay
	for i := 1; i < retry; i++ {
		d *= 2
		if d >= p.MaxDelay {
			d = p.MaxDelay
			break
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if p.SLA > 0 && d > p.SLA {
		d = p.SLA
	}
	return d
}

// Verdict is the controller's decision for one failed attempt.
type Verdict struct {
	Retry    bool
	Delay    time.Duration
	Attempts int
	LastErr  error
}

// retryState tracks per-node attempts and the earliest next dispatch time.
type retryState struct {
	attempts int
	lastErr  error
	nextAt   time.Time
}

// Controller is the per-plan retry/escalation state machine. It is owned by
// one foreman execution; no locking needed.
type Controller struct {
	policy RetryPolicy
	states map[string]*retryState
	now    func() time.Time
}

// NewController creates a Controller for one plan execution.
func NewController(policy RetryPolicy, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{
		policy: policy,
		states: make(map[string]*retryState),
		now:    now,
	}
}

// Fail records a failed attempt for a node and decides between retry and
// escalation. Total attempts per node never exceed MaxRetries+1.
func (c *Controller) Fail(nodeID string, err error) Verdict {
	st, ok := c.states[nodeID]
	if !ok {
		st = &retryState{}
		c.states[nodeID] = st
	}
	st.attempts++
	st.lastErr = err

	if Classify(err) == KindFatal || st.attempts > c.policy.MaxRetries {
		return Verdict{Retry: false, Attempts: st.attempts, LastErr: err}
	}

	delay := c.policy.Delay(st.attempts)
	st.nextAt = c.now().Add(delay)
	return Verdict{Retry: true, Delay: delay, Attempts: st.attempts, LastErr: err}
}

// Attempts returns the number of failed attempts recorded for a node.
func (c *Controller) Attempts(nodeID string) int {
	if st, ok := c.states[nodeID]; ok {
		return st.attempts
	}
	return 0
}

// Dispatchable reports whether a node's backoff delay has elapsed.
func (c *Controller) Dispatchable(nodeID string) bool {
	st, ok := c.states[nodeID]
	if !ok {
		return true
	}
	return !c.now().Before(st.nextAt)
}

// NextWake returns the shortest duration until some backed-off node becomes
// dispatchable, and false when nothing is waiting on a delay.
func (c *Controller) NextWake() (time.Duration, bool) {
	now := c.now()
	var best time.Duration
	found := false
	for _, st := range c.states {
		if st.nextAt.After(now) {
			d := st.nextAt.Sub(now)
			if !found || d < best {
				best = d
				found = true
			}
		}
	}
	return best, found
}
