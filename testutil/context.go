package testutil

import (
	"context"
	"testing"
	"time"
)

// deadlineMargin is left between a context's deadline and the test
// binary's, so a hung request fails the test instead of killing the run.
const deadlineMargin = 5 * time.Second

// TestContext returns a context canceled when the test ends, or shortly
// before the -timeout deadline if one is set.
func TestContext(t *testing.T) context.Context {
	t.Helper()

	if deadline, ok := t.Deadline(); ok {
		ctx, cancel := context.WithDeadline(context.Background(), deadline.Add(-deadlineMargin))
		t.Cleanup(cancel)
		return ctx
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// TestContextWithTimeout is TestContext bounded by timeout as well.
func TestContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(TestContext(t), timeout)
	t.Cleanup(cancel)
	return ctx
}
