package periodic_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"

	"go.viam.com/micro-rdk-agent/app/periodic"
	"go.viam.com/micro-rdk-agent/logging"
)

type countingTask struct {
	name     string
	period   time.Duration
	invoke   func(ctx context.Context, n int) (time.Duration, bool, error)
	count    int
	invoked  chan struct{}
}

func (t *countingTask) Name() string                { return t.name }
func (t *countingTask) DefaultPeriod() time.Duration { return t.period }
func (t *countingTask) Invoke(ctx context.Context) (time.Duration, bool, error) {
	t.count++
	next, hasNext, err := t.invoke(ctx, t.count)
	if t.invoked != nil {
		t.invoked <- struct{}{}
	}
	return next, hasNext, err
}

func TestRunnerStopsOnFatalError(t *testing.T) {
	clk := clock.NewMock()
	sentinel := errors.New("unauthenticated")
	task := &countingTask{
		name: "auth", period: time.Second,
		invoke: func(ctx context.Context, n int) (time.Duration, bool, error) {
			return 0, false, sentinel
		},
	}
	runner := periodic.NewRunner([]periodic.Task{task}, clk, logging.NewTestLogger(), func(err error) bool { return errors.Is(err, sentinel) })

	err := runner.Run(context.Background())
	test.That(t, errors.Is(err, sentinel), test.ShouldBeTrue)
	test.That(t, task.count, test.ShouldEqual, 1)
}

func TestRunnerRetriesNonFatalErrorsAfterDefaultPeriod(t *testing.T) {
	clk := clock.NewMock()
	nonFatal := errors.New("transient")
	invoked := make(chan struct{}, 8)
	task := &countingTask{
		name: "flaky", period: time.Second, invoked: invoked,
		invoke: func(ctx context.Context, n int) (time.Duration, bool, error) {
			if n < 3 {
				return 0, false, nonFatal
			}
			return 0, false, nil
		},
	}
	runner := periodic.NewRunner([]periodic.Task{task}, clk, logging.NewTestLogger(), func(err error) bool { return false })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	<-invoked
	clk.Add(time.Second)
	<-invoked
	clk.Add(time.Second)
	<-invoked

	cancel()
	err := <-done
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
	test.That(t, task.count, test.ShouldBeGreaterThanOrEqualTo, 3)
}
