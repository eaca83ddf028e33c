// Package configmonitor implements the periodic config-drift detector of
// spec.md §4.L: poll the cloud's current configuration on a fixed period and,
// if it differs byte-for-byte from the last configuration this agent built
// its resource graph from, invoke a restart hook rather than attempt any
// partial reload.
package configmonitor

import (
	"context"
	"sync"
	"time"

	"go.viam.com/micro-rdk-agent/config"
	"go.viam.com/micro-rdk-agent/logging"
)

const (
	// DefaultPeriod is the tick interval between config checks.
	DefaultPeriod = 10 * time.Second
	// callTimeout bounds a single GetConfig round trip (spec.md §4.L "60-second
	// overall timeout").
	callTimeout = 60 * time.Second
)

// Getter fetches the cloud's current configuration, e.g. app.Client.GetConfig
// with its agent_info argument already bound.
type Getter func(ctx context.Context) (config.RobotConfig, error)

// Task is the periodic.Task driving the monitor. Every tick, the first
// included, compares the fetched configuration with the cached one as it
// stands: if the cache starts empty, the first fetched configuration that
// differs from it calls onChanged.
type Task struct {
	get       Getter
	onChanged func(config.RobotConfig)
	logger    logging.Logger

	mu   sync.Mutex
	curr config.RobotConfig
}

// New returns a Task that calls onChanged(newConfig) — expected to trigger a
// full restart, not a partial reload (spec.md §4.L "no partial reload; all
// changes are by restart") — the first time get's result differs from
// initial, the configuration this agent's resource graph was already built
// from.
func New(get Getter, initial config.RobotConfig, onChanged func(config.RobotConfig), logger logging.Logger) *Task {
	return &Task{get: get, onChanged: onChanged, logger: logger, curr: initial}
}

func (t *Task) Name() string                { return "config-monitor" }
func (t *Task) DefaultPeriod() time.Duration { return DefaultPeriod }

func (t *Task) Invoke(ctx context.Context) (time.Duration, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	next, err := t.get(ctx)
	if err != nil {
		return 0, false, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	same, err := config.Equal(t.curr, next)
	if err != nil {
		return 0, false, err
	}
	if same {
		return 0, false, nil
	}

	t.logger.Infow("robot configuration changed, restarting")
	t.curr = next
	t.onChanged(next)
	return 0, false, nil
}
