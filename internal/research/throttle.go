package research

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"gapaudit/internal/utils"
)

const (
	defaultCallDelay   = 2 * time.Second
	defaultCallTimeout = 90 * time.Second

	// DefaultBatchLimit bounds the only parallel-capable sub-step: small
	// lookup batches fanned out before sequential aggregation resumes.
	DefaultBatchLimit = 8
)

// Throttle paces external research calls: a fixed inter-call delay to
// respect third-party rate limits and a per-call timeout so a slow
// collaborator fails fast into the pipeline's fatal/non-fatal handling
// instead of blocking the run.
type Throttle struct {
	delay   time.Duration
	timeout time.Duration
}

func NewThrottle(delay, timeout time.Duration) *Throttle {
	if delay < 0 {
		delay = defaultCallDelay
	}
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &Throttle{delay: delay, timeout: timeout}
}

// Do runs one external call under the per-call timeout, then waits the
// inter-call delay. A successful call stays successful even when the delay
// is cut short by cancellation; the orchestrator checks the context between
// stages and aborts there.
func (t *Throttle) Do(ctx context.Context, name string, call func(context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	err := call(callCtx)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%s: call exceeded %s budget: %w", name, t.timeout, err)
		}
		return fmt.Errorf("%s: %w", name, err)
	}

	_ = utils.WaitFor(ctx, t.delay)
	return nil
}

// Batch fans out a small bounded set of calls, each under its own timeout,
// and waits for all of them. The first error cancels the remainder.
func (t *Throttle) Batch(ctx context.Context, limit int, calls []func(context.Context) error) error {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, call := range calls {
		call := call
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(groupCtx, t.timeout)
			defer cancel()
			return call(callCtx)
		})
	}

	return g.Wait()
}
