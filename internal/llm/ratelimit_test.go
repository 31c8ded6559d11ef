package llm

import (
	"context"
	"testing"
	"time"
)

func TestRPSLimiter_DisabledIsNoop(t *testing.T) {
	var l *rpsLimiter
	for i := 0; i < 100; i++ {
		if err := l.Acquire(context.Background()); err != nil {
			t.Fatalf("disabled limiter must never block: %v", err)
		}
	}
}

func TestRPSLimiter_BurstThenThrottle(t *testing.T) {
	l := newRPSLimiter(1000, 2)
	defer l.Stop()

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 2; i++ {
		if err := l.Acquire(ctx); err != nil {
			t.Fatalf("burst acquire %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("burst should not block, took %v", elapsed)
	}

	// Third acquire waits for a refill.
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("throttled acquire: %v", err)
	}
}

func TestRPSLimiter_ContextCancel(t *testing.T) {
	l := newRPSLimiter(0.001, 1)
	defer l.Stop()

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("initial token: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Acquire(ctx); err == nil {
		t.Fatalf("expected context deadline error")
	}
}
