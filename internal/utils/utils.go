package utils

import (
	"context"
	"time"
)

// WaitFor blocks for d or until ctx is cancelled, whichever comes first.
// It paces throttled research calls and spaces retry attempts.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
