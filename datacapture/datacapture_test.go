package datacapture_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"

	"go.viam.com/micro-rdk-agent/config"
	"go.viam.com/micro-rdk-agent/datacapture"
	"go.viam.com/micro-rdk-agent/logging"
	"go.viam.com/micro-rdk-agent/resource"
)

type fakeSensor struct {
	name     resource.Name
	readings map[string]interface{}
	err      error
}

func (s *fakeSensor) Name() resource.Name                 { return s.name }
func (s *fakeSensor) Close(context.Context) error          { return nil }
func (s *fakeSensor) GetReadings(context.Context) (map[string]interface{}, error) {
	return s.readings, s.err
}

func testSensorName() resource.Name {
	return resource.NewName(resource.APINamespaceRDK.WithComponentType("sensor"), "sensor-1")
}

func TestNewCollectorRejectsUnsupportedMethod(t *testing.T) {
	sensor := &fakeSensor{name: testSensorName()}
	_, err := datacapture.NewCollector("sensor-1", "sensor", sensor, datacapture.MethodAngularVelocity, 1, 2000)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewCollectorRejectsZeroFrequency(t *testing.T) {
	sensor := &fakeSensor{name: testSensorName()}
	_, err := datacapture.NewCollector("sensor-1", "sensor", sensor, datacapture.MethodReadings, 0, 2000)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFromConfigSkipsDisabled(t *testing.T) {
	sensor := &fakeSensor{name: testSensorName()}
	c, ok, err := datacapture.FromConfig("sensor-1", "sensor", sensor, config.DataCollectorConfig{
		Method: "Readings", CaptureHz: 1, Disabled: true,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, c, test.ShouldBeNil)
}

func TestFromConfigRejectsTooSmallCache(t *testing.T) {
	sensor := &fakeSensor{name: testSensorName()}
	_, _, err := datacapture.FromConfig("sensor-1", "sensor", sensor, config.DataCollectorConfig{
		Method: "Readings", CaptureHz: 1, CacheSizeKB: 0.1,
	})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCollectorCollectReturnsSensorReadings(t *testing.T) {
	sensor := &fakeSensor{name: testSensorName(), readings: map[string]interface{}{"temp": 21.5}}
	c, err := datacapture.NewCollector("sensor-1", "sensor", sensor, datacapture.MethodReadings, 10, 2000)
	test.That(t, err, test.ShouldBeNil)

	reading, err := c.Collect(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, reading.Data["temp"], test.ShouldEqual, 21.5)
	test.That(t, reading.TimeReceived.Before(reading.TimeRequested), test.ShouldBeFalse)
}

func TestCollectorCollectPropagatesResourceError(t *testing.T) {
	sensor := &fakeSensor{name: testSensorName(), err: errors.New("bus error")}
	c, err := datacapture.NewCollector("sensor-1", "sensor", sensor, datacapture.MethodReadings, 10, 2000)
	test.That(t, err, test.ShouldBeNil)

	_, err = c.Collect(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
}

// ring store capacity sized for a handful of small readings; each call's
// actual JSON footprint is an implementation detail the tests below don't
// pin down, so they drive the store until it visibly fills rather than
// assuming an exact byte count.
const smallRingCapacity = 1000

func TestStoreWritePreserveOrFailRejectsWhenFull(t *testing.T) {
	sensor := &fakeSensor{name: testSensorName()}
	c, err := datacapture.NewCollector("sensor-1", "sensor", sensor, datacapture.MethodReadings, 10, smallRingCapacity)
	test.That(t, err, test.ShouldBeNil)
	store := datacapture.NewStore([]*datacapture.Collector{c})

	var fullErr *datacapture.ErrBufferFull
	var writeErr error
	for i := 0; i < 1000 && writeErr == nil; i++ {
		reading := datacapture.Reading{Data: map[string]interface{}{"v": i}}
		writeErr = store.Write(c.Key(), reading, datacapture.PreserveOrFail)
	}
	test.That(t, errors.As(writeErr, &fullErr), test.ShouldBeTrue)
}

func TestStoreWriteOverwriteOldestEvictsOldestEntry(t *testing.T) {
	sensor := &fakeSensor{name: testSensorName()}
	c, err := datacapture.NewCollector("sensor-1", "sensor", sensor, datacapture.MethodReadings, 10, smallRingCapacity)
	test.That(t, err, test.ShouldBeNil)
	store := datacapture.NewStore([]*datacapture.Collector{c})

	const writes = 1000
	for i := 0; i < writes; i++ {
		reading := datacapture.Reading{Data: map[string]interface{}{"v": float64(i)}}
		test.That(t, store.Write(c.Key(), reading, datacapture.OverwriteOldest), test.ShouldBeNil)
	}

	readings, err := store.DrainAll(c.Key())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(readings) < writes, test.ShouldBeTrue)
	test.That(t, readings[len(readings)-1].Data["v"], test.ShouldEqual, float64(writes-1))
}

func TestManagerRunCollectsOnTick(t *testing.T) {
	sensor := &fakeSensor{name: testSensorName(), readings: map[string]interface{}{"temp": 1.0}}
	c, err := datacapture.NewCollector("sensor-1", "sensor", sensor, datacapture.MethodReadings, 10, 4000)
	test.That(t, err, test.ShouldBeNil)
	store := datacapture.NewStore([]*datacapture.Collector{c})

	clk := clock.NewMock()
	manager, err := datacapture.NewManager([]*datacapture.Collector{c}, store, clk, logging.NewTestLogger())
	test.That(t, err, test.ShouldBeNil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- manager.Run(ctx) }()

	clk.Add(c.Interval())
	test.That(t, waitForNonEmpty(store, c.Key()), test.ShouldBeTrue)

	cancel()
	<-done
}

func waitForNonEmpty(store *datacapture.Store, key datacapture.ResourceMethodKey) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		readings, err := store.DrainAll(key)
		if err == nil && len(readings) > 0 {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

type fakeUploader struct {
	calls int
	err   error
}

func (u *fakeUploader) DataCaptureUpload(ctx context.Context, partID, componentName, componentType, method string, readings []map[string]interface{}) error {
	u.calls++
	return u.err
}

func TestUploadTaskDrainsAndUploadsPendingReadings(t *testing.T) {
	sensor := &fakeSensor{name: testSensorName()}
	c, err := datacapture.NewCollector("sensor-1", "sensor", sensor, datacapture.MethodReadings, 10, 4000)
	test.That(t, err, test.ShouldBeNil)
	store := datacapture.NewStore([]*datacapture.Collector{c})
	test.That(t, store.Write(c.Key(), datacapture.Reading{Data: map[string]interface{}{"v": 1}}, datacapture.PreserveOrFail), test.ShouldBeNil)

	uploader := &fakeUploader{}
	task := &datacapture.UploadTask{Client: uploader, PartID: "part-1", Collectors: []*datacapture.Collector{c}, Store: store}

	_, _, err = task.Invoke(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, uploader.calls, test.ShouldEqual, 1)

	readings, err := store.DrainAll(c.Key())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(readings), test.ShouldEqual, 0)
}

func TestUploadTaskPropagatesUploadError(t *testing.T) {
	sensor := &fakeSensor{name: testSensorName()}
	c, err := datacapture.NewCollector("sensor-1", "sensor", sensor, datacapture.MethodReadings, 10, 4000)
	test.That(t, err, test.ShouldBeNil)
	store := datacapture.NewStore([]*datacapture.Collector{c})
	test.That(t, store.Write(c.Key(), datacapture.Reading{Data: map[string]interface{}{"v": 1}}, datacapture.PreserveOrFail), test.ShouldBeNil)

	uploader := &fakeUploader{err: errors.New("unavailable")}
	task := &datacapture.UploadTask{Client: uploader, PartID: "part-1", Collectors: []*datacapture.Collector{c}, Store: store}

	_, _, err = task.Invoke(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
}
