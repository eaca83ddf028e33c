package datacapture

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/micro-rdk-agent/logging"
)

// Manager runs every Collector on its own cadence, writing each result into
// Store (data_manager.rs's DataManager, minus its sync() method: uploading is
// a separate concern here, run as an UploadTask bound to the current cloud
// connection rather than this loop, since collection must keep running
// across a reconnect while uploads obviously cannot).
type Manager struct {
	collectors  []*Collector
	store       *Store
	minInterval time.Duration
	clock       clock.Clock
	logger      logging.Logger
}

// NewManager returns a Manager over collectors, writing into store. clk is
// injectable for tests; pass clock.New() in production.
func NewManager(collectors []*Collector, store *Store, clk clock.Clock, logger logging.Logger) (*Manager, error) {
	if len(collectors) == 0 {
		return nil, fmt.Errorf("datacapture: no collectors configured")
	}
	minInterval := collectors[0].Interval()
	for _, c := range collectors[1:] {
		if c.Interval() < minInterval {
			minInterval = c.Interval()
		}
	}
	return &Manager{collectors: collectors, store: store, minInterval: minInterval, clock: clk, logger: logger}, nil
}

// collectionIntervals returns the distinct, sorted set of collector
// intervals rounded down to a multiple of minInterval (data_manager.rs's
// collection_intervals).
func (m *Manager) collectionIntervals() []time.Duration {
	seen := make(map[time.Duration]struct{})
	var intervals []time.Duration
	for _, c := range m.collectors {
		rounded := (c.Interval() / m.minInterval) * m.minInterval
		if _, ok := seen[rounded]; !ok {
			seen[rounded] = struct{}{}
			intervals = append(intervals, rounded)
		}
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i] < intervals[j] })
	return intervals
}

// Run ticks every minInterval, collecting whichever collectors are due, until
// ctx is canceled.
func (m *Manager) Run(ctx context.Context) error {
	ticker := m.clock.Ticker(m.minInterval)
	defer ticker.Stop()

	var loopCounter uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		for _, interval := range m.collectionIntervals() {
			bucket := uint64(interval / m.minInterval)
			if bucket == 0 || loopCounter%bucket == 0 {
				m.collectAndStore(ctx, interval)
			}
		}
		loopCounter++
	}
}

func (m *Manager) collectAndStore(ctx context.Context, interval time.Duration) {
	for _, c := range m.collectors {
		if (c.Interval()/m.minInterval)*m.minInterval != interval {
			continue
		}
		reading, err := c.Collect(ctx)
		if err != nil {
			m.logger.Errorw("data collection failed", "collector", c.Key(), "error", err)
			continue
		}
		if err := m.store.Write(c.Key(), reading, OverwriteOldest); err != nil {
			m.logger.Errorw("data store write failed", "collector", c.Key(), "error", err)
		}
	}
}
