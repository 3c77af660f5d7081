package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/contract"
	"github.com/Strob0t/TaskForge/internal/service"
)

func TestClassify(t *testing.T) {
	retryable := []error{
		domain.ErrDelegationTimeout,
		domain.ErrDelegationTransport,
		context.DeadlineExceeded,
		&domain.WorkerError{Code: "rate_limited", Transient: true},
		&contract.Violation{Capability: "analyze", Reason: "missing field"},
		errors.New("something unexpected"),
	}
	for _, err := range retryable {
		if service.Classify(err) != service.KindRetryable {
			t.Fatalf("expected retryable for %v", err)
		}
	}

	fatal := []error{
		domain.ErrCancelled,
		context.Canceled,
		domain.ErrUnknownCapability,
		&domain.WorkerError{Code: "invalid_plan", Transient: false},
	}
	for _, err := range fatal {
		if service.Classify(err) != service.KindFatal {
			t.Fatalf("expected fatal for %v", err)
		}
	}
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := service.RetryPolicy{BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second, SLA: 5 * time.Minute}

	cases := []struct {
		retry int
		want  time.Duration
	}{
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
	}
	for _, tc := range cases {
		if got := p.Delay(tc.retry); got != tc.want {
			t.Fatalf("retry %d: expected %v, got %v", tc.retry, tc.want, got)
		}
	}
}

func TestRetryPolicy_DelayClampedToSLA(t *testing.T) {
	p := service.RetryPolicy{BaseDelay: 2 * time.Second, MaxDelay: time.Minute, SLA: 10 * time.Second}
	if got := p.Delay(6); got != 10*time.Second {
		t.Fatalf("expected delay clamped to SLA, got %v", got)
	}
}

func TestController_RetriesThenEscalates(t *testing.T) {
	now := time.Now()
	ctrl := service.NewController(service.RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
	}, func() time.Time { return now })

	err := domain.ErrDelegationTimeout

	v := ctrl.Fail("n1", err)
	if !v.Retry || v.Attempts != 1 || v.Delay != 2*time.Second {
		t.Fatalf("first failure: expected retry with 2s delay, got %+v", v)
	}
	v = ctrl.Fail("n1", err)
	if !v.Retry || v.Attempts != 2 || v.Delay != 4*time.Second {
		t.Fatalf("second failure: expected retry with 4s delay, got %+v", v)
	}
	v = ctrl.Fail("n1", err)
	if v.Retry {
		t.Fatalf("third failure: expected escalation, got %+v", v)
	}
	if v.Attempts != 3 {
		t.Fatalf("expected 3 recorded attempts, got %d", v.Attempts)
	}
}

func TestController_FatalSkipsRetries(t *testing.T) {
	ctrl := service.NewController(service.RetryPolicy{MaxRetries: 2, BaseDelay: time.Second}, nil)
	v := ctrl.Fail("n1", &domain.WorkerError{Code: "invalid_plan", Transient: false})
	if v.Retry {
		t.Fatalf("fatal error must escalate immediately, got %+v", v)
	}
	if v.Attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", v.Attempts)
	}
}

func TestController_DispatchableAfterBackoff(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	ctrl := service.NewController(service.RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
	}, clock)

	if !ctrl.Dispatchable("n1") {
		t.Fatal("fresh node must be dispatchable")
	}

	ctrl.Fail("n1", domain.ErrDelegationTimeout)
	if ctrl.Dispatchable("n1") {
		t.Fatal("node must wait out its backoff")
	}

	wake, ok := ctrl.NextWake()
	if !ok || wake != 2*time.Second {
		t.Fatalf("expected 2s wake, got %v/%v", wake, ok)
	}

	now = now.Add(2 * time.Second)
	if !ctrl.Dispatchable("n1") {
		t.Fatal("node must be dispatchable after the backoff elapses")
	}
	if _, ok := ctrl.NextWake(); ok {
		t.Fatal("nothing should be waiting after the backoff elapses")
	}
}
