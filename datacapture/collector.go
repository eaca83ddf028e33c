// Package datacapture implements the background data-collection pipeline of
// SPEC_FULL.md §2 "Data capture / data collector": each component's
// DataCollectorConfigs entry names a resource method to poll and an interval
// to poll it at; collected readings accumulate in a fixed-size per-collector
// ring buffer and are periodically flushed to the cloud over
// DataCaptureUpload (spec.md §6). Grounded on
// micro-rdk/src/common/data_collector.rs, data_manager.rs, and
// data_store.rs, generalized the way the rest of this module generalizes its
// source: one goroutine per concern instead of a single-threaded executor,
// and Go's GC in place of the static, once-initialized byte arena the
// original uses on its embedded target.
package datacapture

import (
	"context"
	"fmt"
	"time"

	"go.viam.com/micro-rdk-agent/config"
	"go.viam.com/micro-rdk-agent/resource"
)

// Method is one of the capture methods a Collector can poll, matching
// data_collector.rs's CollectionMethod enum. String renders the same
// UpperCamelCase form the original does, since downstream tooling (webhooks,
// database triggers) keys off of it.
type Method int

const (
	MethodReadings Method = iota
	MethodAngularVelocity
	MethodLinearAcceleration
	MethodLinearVelocity
)

func (m Method) String() string {
	switch m {
	case MethodReadings:
		return "Readings"
	case MethodAngularVelocity:
		return "AngularVelocity"
	case MethodLinearAcceleration:
		return "LinearAcceleration"
	case MethodLinearVelocity:
		return "LinearVelocity"
	default:
		return "Unknown"
	}
}

// ParseMethod parses a config's method string into a Method, the Go
// counterpart of data_collector.rs's `TryFrom<&str> for CollectionMethod`.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "Readings":
		return MethodReadings, nil
	case "AngularVelocity":
		return MethodAngularVelocity, nil
	case "LinearAcceleration":
		return MethodLinearAcceleration, nil
	case "LinearVelocity":
		return MethodLinearVelocity, nil
	default:
		return 0, fmt.Errorf("datacapture: unsupported collection method %q", s)
	}
}

// ResourceMethodKey identifies a collector's target in the ring store: the
// resource name, its component subtype, and the method polled
// (data_collector.rs's ResourceMethodKey; its Display impl is mirrored by
// String so the upload path's keying stays stable across a restart).
type ResourceMethodKey struct {
	Name          string
	ComponentType string
	Method        Method
}

func (k ResourceMethodKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.ComponentType, k.Name, k.Method)
}

// Reading is one captured data point, ready to serialize into the cloud
// upload payload.
type Reading struct {
	TimeRequested time.Time
	TimeReceived  time.Time
	Data          map[string]interface{}
}

// defaultCacheSizeKB is the ring buffer size assumed when a
// config.DataCollectorConfig leaves CacheSizeKB at zero (data_collector.rs's
// DEFAULT_CACHE_SIZE_KB).
const defaultCacheSizeKB = 8.0

// minCapacityBytes is the smallest ring buffer size an enabled collector may
// have; data_collector.rs rejects configs computing below this.
const minCapacityBytes = 1000

// Collector polls one (resource, method) pair on an interval and hands the
// result to a Store keyed by its ResourceMethodKey.
type Collector struct {
	key      ResourceMethodKey
	resource resource.Resource
	interval time.Duration
	capacity int
}

// NewCollector validates the method against resource's actual capability set
// (data_collector.rs's resource_method_pair_is_valid) and returns a ready
// Collector. captureHz of 0 is rejected, matching the original's
// UnsupportedCaptureFrequency error.
func NewCollector(name, componentType string, res resource.Resource, method Method, captureHz float64, capacityBytes int) (*Collector, error) {
	if captureHz <= 0 {
		return nil, fmt.Errorf("datacapture: capture frequency for %s must be > 0", name)
	}
	if !methodSupported(res, method) {
		return nil, fmt.Errorf("datacapture: method %s unsupported for %s", method, componentType)
	}
	interval := time.Duration(float64(time.Second) / captureHz)
	return &Collector{
		key:      ResourceMethodKey{Name: name, ComponentType: componentType, Method: method},
		resource: res,
		interval: interval,
		capacity: capacityBytes,
	}, nil
}

// FromConfig builds a Collector from a component's declared name/subtype, the
// already-built resource it targets, and one of its DataCollectorConfigs
// entries. It returns ok=false, nil for a disabled entry rather than an
// error, since a disabled collector is not a misconfiguration.
func FromConfig(name, componentType string, res resource.Resource, conf config.DataCollectorConfig) (c *Collector, ok bool, err error) {
	if conf.Disabled {
		return nil, false, nil
	}
	method, err := ParseMethod(conf.Method)
	if err != nil {
		return nil, false, err
	}
	cacheKB := conf.CacheSizeKB
	if cacheKB <= 0 {
		cacheKB = defaultCacheSizeKB
	}
	capacity := int(cacheKB * 1000)
	if capacity < minCapacityBytes {
		return nil, false, fmt.Errorf("datacapture: cache_size_kb for %s too small (%d bytes < %d)", name, capacity, minCapacityBytes)
	}
	col, err := NewCollector(name, componentType, res, method, conf.CaptureHz, capacity)
	if err != nil {
		return nil, false, err
	}
	return col, true, nil
}

func methodSupported(res resource.Resource, method Method) bool {
	switch res.(type) {
	case resource.Sensor:
		return method == MethodReadings
	case resource.MovementSensor:
		switch method {
		case MethodReadings, MethodAngularVelocity, MethodLinearAcceleration, MethodLinearVelocity:
			return true
		}
		return false
	default:
		return false
	}
}

// Key returns the ResourceMethodKey this collector writes under.
func (c *Collector) Key() ResourceMethodKey { return c.key }

// Interval returns the polling period derived from the config's capture_frequency_hz.
func (c *Collector) Interval() time.Duration { return c.interval }

// Capacity returns the ring buffer size, in bytes, this collector's store
// segment should hold.
func (c *Collector) Capacity() int { return c.capacity }

// Collect invokes the configured method on the underlying resource and
// returns the resulting Reading, timestamped before and after the call
// (data_collector.rs's call_method records the same pair of instants for the
// uploaded SensorMetadata).
func (c *Collector) Collect(ctx context.Context) (Reading, error) {
	requested := time.Now()
	var data map[string]interface{}
	var err error

	switch r := c.resource.(type) {
	case resource.MovementSensor:
		switch c.key.Method {
		case MethodReadings:
			data, err = readingsFromMovementSensor(ctx, r)
		case MethodAngularVelocity:
			x, y, z, e := r.GetAngularVelocity(ctx)
			data, err = vec3Data("angular_velocity", x, y, z), e
		case MethodLinearAcceleration:
			x, y, z, e := r.GetLinearAcceleration(ctx)
			data, err = vec3Data("linear_acceleration", x, y, z), e
		case MethodLinearVelocity:
			x, y, z, e := r.GetLinearVelocity(ctx)
			data, err = vec3Data("linear_velocity", x, y, z), e
		default:
			err = fmt.Errorf("datacapture: method %s unsupported for movement_sensor", c.key.Method)
		}
	case resource.Sensor:
		if c.key.Method != MethodReadings {
			err = fmt.Errorf("datacapture: method %s unsupported for sensor", c.key.Method)
			break
		}
		data, err = r.GetReadings(ctx)
	default:
		err = fmt.Errorf("datacapture: %s has no supported collection methods", c.key.ComponentType)
	}
	if err != nil {
		return Reading{}, err
	}
	return Reading{TimeRequested: requested, TimeReceived: time.Now(), Data: data}, nil
}

// readingsFromMovementSensor aggregates every property GetProperties reports
// as supported into one generic-readings map, the Go analogue of the
// original's get_generic_readings on a movement sensor (which the Go
// MovementSensor interface, unlike the source's, does not expose as a single
// method).
func readingsFromMovementSensor(ctx context.Context, r resource.MovementSensor) (map[string]interface{}, error) {
	props, err := r.GetProperties(ctx)
	if err != nil {
		return nil, err
	}
	readings := make(map[string]interface{})
	if props.PositionSupported {
		lat, lng, altM, err := r.GetPosition(ctx)
		if err != nil {
			return nil, err
		}
		readings["position"] = map[string]interface{}{"lat": lat, "lng": lng, "alt_m": altM}
	}
	if props.LinearVelocitySupported {
		x, y, z, err := r.GetLinearVelocity(ctx)
		if err != nil {
			return nil, err
		}
		readings["linear_velocity"] = map[string]interface{}{"x": x, "y": y, "z": z}
	}
	if props.AngularVelocitySupported {
		x, y, z, err := r.GetAngularVelocity(ctx)
		if err != nil {
			return nil, err
		}
		readings["angular_velocity"] = map[string]interface{}{"x": x, "y": y, "z": z}
	}
	if props.CompassHeadingSupported {
		heading, err := r.GetCompassHeading(ctx)
		if err != nil {
			return nil, err
		}
		readings["compass_heading"] = heading
	}
	return readings, nil
}

func vec3Data(label string, x, y, z float64) map[string]interface{} {
	return map[string]interface{}{label: map[string]interface{}{"x": x, "y": y, "z": z}}
}
