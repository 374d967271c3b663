package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecuteAppliesCallTimeout(t *testing.T) {
	executor := NewExecutor(Config{
		CallTimeout:    20 * time.Millisecond,
		BreakerEnabled: false,
	})

	err := executor.Execute(context.Background(), "slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, nil)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestExecuteDoesNotRetry(t *testing.T) {
	executor := NewExecutor(Config{BreakerEnabled: false})

	calls := 0
	boom := errors.New("boom")
	err := executor.Execute(context.Background(), "once", func(context.Context) error {
		calls++
		return boom
	}, nil)

	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", calls)
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	executor := NewExecutor(Config{
		BreakerEnabled:      true,
		BreakerMinRequests:  2,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  time.Minute,
		RateLimitRPS:        1000,
		RateLimitBurst:      1000,
	})

	boom := errors.New("boom")
	fail := func(context.Context) error { return boom }

	for i := 0; i < 2; i++ {
		_ = executor.Execute(context.Background(), "svc", fail, nil)
	}

	err := executor.Execute(context.Background(), "svc", fail, nil)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}

func TestClassifierKeepsLocalAbortsOutOfBreaker(t *testing.T) {
	executor := NewExecutor(Config{
		BreakerEnabled:      true,
		BreakerMinRequests:  2,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  time.Minute,
		RateLimitRPS:        1000,
		RateLimitBurst:      1000,
	})

	local := errors.New("local abort")
	classifier := func(err error) bool { return !errors.Is(err, local) }
	fail := func(context.Context) error { return local }

	for i := 0; i < 5; i++ {
		_ = executor.Execute(context.Background(), "svc", fail, classifier)
	}

	err := executor.Execute(context.Background(), "svc", fail, classifier)
	if IsCircuitOpen(err) {
		t.Fatalf("local aborts must not open the circuit")
	}
	if !errors.Is(err, local) {
		t.Fatalf("expected local abort error, got %v", err)
	}
}
