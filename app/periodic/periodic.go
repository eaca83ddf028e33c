// Package periodic implements the periodic-task runner of spec.md §4.G: a
// two-state per-task machine, {Run(fut), Sleep(timer)}, alternating on
// completion. A task that returns a duration is rescheduled after it; one
// that returns none falls back to its own default period. A default period
// of zero means "run continuously" (spec.md §4.H, the signaling task).
//
// This Go port expresses the two states as a goroutine alternating between
// calling Invoke and blocking on a clock.Timer, rather than a literal state
// enum — the idiomatic rendition of the same alternation.
package periodic

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/micro-rdk-agent/logging"
)

// Task is one independently scheduled unit of work sharing the runner's
// lifetime. Invoke returns the duration to wait before its next invocation
// (hasNext=true) or asks the runner to fall back to DefaultPeriod
// (hasNext=false).
type Task interface {
	Name() string
	DefaultPeriod() time.Duration
	Invoke(ctx context.Context) (next time.Duration, hasNext bool, err error)
}

// Runner drives a fixed set of Tasks concurrently until ctx is canceled or
// one task's error is classified fatal by isFatal, at which point every task
// is stopped and the fatal error is returned. isFatal is injected rather than
// hardcoded so this package stays agnostic of what "fatal" means to its
// caller (for app.Supervisor, an IO error or gRPC code 16/7 — spec.md §4.G
// "Ready → (IO error | grpc code 16/7) → drop → Start"); a non-fatal error is
// logged and the task simply retries after its default period.
type Runner struct {
	tasks   []Task
	clock   clock.Clock
	logger  logging.Logger
	isFatal func(error) bool
}

// NewRunner returns a Runner over tasks. clk is injectable for tests; pass
// clock.New() in production.
func NewRunner(tasks []Task, clk clock.Clock, logger logging.Logger, isFatal func(error) bool) *Runner {
	return &Runner{tasks: tasks, clock: clk, logger: logger, isFatal: isFatal}
}

// Run blocks until ctx is canceled or a fatal task error occurs, returning
// whichever happened. Every task goroutine is stopped before Run returns.
func (r *Runner) Run(ctx context.Context) error {
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(r.tasks))
	var wg sync.WaitGroup
	for _, t := range r.tasks {
		wg.Add(1)
		go func(t Task) {
			defer wg.Done()
			r.runOne(taskCtx, t, errCh)
		}(t)
	}

	var fatal error
	select {
	case fatal = <-errCh:
	case <-ctx.Done():
		fatal = ctx.Err()
	}
	cancel()
	wg.Wait()
	return fatal
}

func (r *Runner) runOne(ctx context.Context, t Task, errCh chan<- error) {
	for {
		if ctx.Err() != nil {
			return
		}

		next, hasNext, err := t.Invoke(ctx)
		if err != nil {
			r.logger.Errorw("periodic task failed", "task", t.Name(), "error", err)
			if r.isFatal(err) {
				select {
				case errCh <- err:
				default:
				}
				return
			}
			next, hasNext = t.DefaultPeriod(), true
		}
		if !hasNext {
			next = t.DefaultPeriod()
		}
		if next <= 0 {
			continue
		}

		timer := r.clock.Timer(next)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}
