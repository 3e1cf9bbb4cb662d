package utils

import (
	"context"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	t.Parallel()

	t.Run("returns immediately for non-positive duration", func(t *testing.T) {
		t.Parallel()
		if err := WaitFor(context.Background(), 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("waits out the duration", func(t *testing.T) {
		t.Parallel()
		if err := WaitFor(context.Background(), time.Millisecond); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("aborts on cancelled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := WaitFor(ctx, time.Hour); err == nil {
			t.Fatalf("expected context error")
		}
	})
}
