package main

// Notes:
// - notifyContext: we only test the observable behavior (cancellation via
//   stop() and parent propagation). Actual OS signal delivery is not tested.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"testing"
)

// ---------------------------------------------------------------------------
// TestNotifyContext - Context creation and cancellation behavior
// ---------------------------------------------------------------------------

func TestNotifyContext(t *testing.T) {
	t.Parallel()

	t.Run("starts live and stop cancels", func(t *testing.T) {
		t.Parallel()

		ctx, stop := notifyContext(context.Background())
		if ctx.Err() != nil {
			t.Fatal("context should not be canceled initially")
		}
		stop()
		if ctx.Err() == nil {
			t.Fatal("context should be canceled after stop()")
		}
	})

	t.Run("inherits parent cancellation", func(t *testing.T) {
		t.Parallel()

		parent, cancel := context.WithCancel(context.Background())
		ctx, stop := notifyContext(parent)
		defer stop()

		cancel()
		<-ctx.Done()
	})
}
