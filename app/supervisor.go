package app

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/micro-rdk-agent/app/periodic"
	"go.viam.com/micro-rdk-agent/logging"
)

const reauthenticateBackoff = 2 * time.Second

// Supervisor drives the Start → Authenticate → Ready state machine of
// spec.md §4.G: dial, authenticate, run every task concurrently, and on an
// IO error or gRPC code 16/7 from any of them, drop the client and start
// over.
type Supervisor struct {
	dial     func(ctx context.Context) (*Client, error)
	newTasks func(*Client) []periodic.Task
	clock    clock.Clock
	logger   logging.Logger
}

// NewSupervisor returns a Supervisor. dial opens (and need not authenticate)
// a fresh Client; newTasks builds the set of periodic tasks to run against a
// just-authenticated Client, called fresh every time the state machine
// re-enters Ready.
func NewSupervisor(dial func(ctx context.Context) (*Client, error), newTasks func(*Client) []periodic.Task, logger logging.Logger) *Supervisor {
	return &Supervisor{dial: dial, newTasks: newTasks, clock: clock.New(), logger: logger}
}

// Run loops Start → Authenticate → Ready until ctx is canceled.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		client, err := s.dial(ctx)
		if err != nil {
			s.logger.Errorw("dialing app client failed", "error", err)
			if !s.sleep(ctx, reauthenticateBackoff) {
				return ctx.Err()
			}
			continue
		}

		if err := client.Authenticate(ctx); err != nil {
			s.logger.Errorw("authenticating app client failed", "error", err)
			_ = client.Close()
			if !s.sleep(ctx, reauthenticateBackoff) {
				return ctx.Err()
			}
			continue
		}

		runner := periodic.NewRunner(s.newTasks(client), s.clock, s.logger, ShouldDrop)
		err = runner.Run(ctx)
		_ = client.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Errorw("app client dropped, reconnecting", "error", err)
	}
}

func (s *Supervisor) sleep(ctx context.Context, d time.Duration) bool {
	timer := s.clock.Timer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
