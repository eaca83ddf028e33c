package resource

import "context"

// Resource is the base interface every driver object implements, regardless of
// capability set. It is the "Resource" of spec.md §3: "a tagged variant over the
// closed subtype set. Each variant wraps a shared, interior-mutable handle... to
// the driver object implementing the corresponding capability set."
//
// In idiomatic Go there is no need for the shared-reference/interior-mutability
// wrapper the source form uses (spec.md §9 "Cyclic / shared ownership"): the Graph
// is the single owner, and callers borrow by Name through Graph.Lookup rather than
// holding long-lived handles, which sidesteps the cycle concern entirely.
type Resource interface {
	// Name returns this resource's identity in the graph it was built into.
	Name() Name
	// Close releases any OS handles (GPIO lines, open files, sockets) this
	// resource holds. Close is idempotent.
	Close(ctx context.Context) error
}

// Dependencies is the set of already-built resources visible to a constructor,
// keyed by Name (spec.md §4.J.4 "assemble the deps vector").
type Dependencies map[Name]Resource

// Board is the GPIO/analog/PWM capability set (spec.md §6 board methods).
type Board interface {
	Resource
	GetGPIO(ctx context.Context, pin string) (bool, error)
	SetGPIO(ctx context.Context, pin string, high bool) error
	SetPowerMode(ctx context.Context, mode string) error
	ReadAnalogReader(ctx context.Context, reader string) (int, error)
	Status(ctx context.Context) (BoardStatus, error)
	PWM(ctx context.Context, pin string) (float64, error)
	SetPWM(ctx context.Context, pin string, dutyCyclePct float64) error
	SetPWMFrequency(ctx context.Context, pin string, freqHz uint) error
}

// BoardStatus is the snapshot returned by Board.Status.
type BoardStatus struct {
	Analogs           map[string]int32
	DigitalInterrupts map[string]int64
}

// MotorProperties describes static capabilities of a Motor.
type MotorProperties struct {
	PositionReporting bool
}

// Motor is the spinning-actuator capability set (spec.md §6 motor methods).
type Motor interface {
	Resource
	SetPower(ctx context.Context, powerPct float64) error
	GoFor(ctx context.Context, rpm, revolutions float64) error
	GetPosition(ctx context.Context) (float64, error)
	GetProperties(ctx context.Context) (MotorProperties, error)
	IsPowered(ctx context.Context) (bool, float64, error)
	ResetZeroPosition(ctx context.Context, offset float64) error
	Stop(ctx context.Context) error
	IsMoving(ctx context.Context) (bool, error)
}

// BaseProperties describes static capabilities of a Base.
type BaseProperties struct {
	WidthMeters  float64
	TurningRadiusMeters float64
}

// Base is the wheeled/tracked-vehicle capability set (spec.md §6 base methods).
type Base interface {
	Resource
	SetPower(ctx context.Context, linear, angular float64) error
	SetVelocity(ctx context.Context, linearMmPerSec, angularDegsPerSec float64) error
	MoveStraight(ctx context.Context, distanceMm int, mmPerSec float64) error
	Spin(ctx context.Context, angleDeg, degsPerSec float64) error
	Stop(ctx context.Context) error
	IsMoving(ctx context.Context) (bool, error)
	Properties(ctx context.Context) (BaseProperties, error)
}

// EncoderProperties describes static capabilities of an Encoder.
type EncoderProperties struct {
	TicksCountSupported   bool
	AngleDegreesSupported bool
}

// Encoder is the rotary-position-sensing capability set (spec.md §6 encoder methods).
type Encoder interface {
	Resource
	GetPosition(ctx context.Context, positionType string) (float64, string, error)
	ResetPosition(ctx context.Context) error
	GetProperties(ctx context.Context) (EncoderProperties, error)
}

// Sensor is the generic-readings capability set (spec.md §6 sensor methods).
type Sensor interface {
	Resource
	GetReadings(ctx context.Context) (map[string]interface{}, error)
}

// Orientation is a minimal axis-angle orientation representation.
type Orientation struct {
	OX, OY, OZ, Theta float64
}

// MovementSensorProperties describes which MovementSensor methods are backed by
// real hardware on this instance.
type MovementSensorProperties struct {
	PositionSupported            bool
	LinearVelocitySupported      bool
	AngularVelocitySupported     bool
	LinearAccelerationSupported  bool
	CompassHeadingSupported      bool
	OrientationSupported         bool
}

// MovementSensor is the GPS/IMU-style capability set (spec.md §6
// movement_sensor methods).
type MovementSensor interface {
	Resource
	GetPosition(ctx context.Context) (lat, lng, altM float64, err error)
	GetLinearVelocity(ctx context.Context) (x, y, z float64, err error)
	GetAngularVelocity(ctx context.Context) (x, y, z float64, err error)
	GetLinearAcceleration(ctx context.Context) (x, y, z float64, err error)
	GetCompassHeading(ctx context.Context) (float64, error)
	GetOrientation(ctx context.Context) (Orientation, error)
	GetProperties(ctx context.Context) (MovementSensorProperties, error)
	GetAccuracy(ctx context.Context) (map[string]float32, error)
}

// PowerSensor is the voltage/current/power capability set (spec.md §6
// power_sensor methods).
type PowerSensor interface {
	Resource
	GetVoltage(ctx context.Context) (volts float64, isAC bool, err error)
	GetCurrent(ctx context.Context) (amps float64, isAC bool, err error)
	GetPower(ctx context.Context) (watts float64, err error)
}

// Servo is the angular-position-actuator capability set (spec.md §6 servo methods).
type Servo interface {
	Resource
	Move(ctx context.Context, angleDeg uint32) error
	GetPosition(ctx context.Context) (uint32, error)
}

// Image is an opaque encoded frame; pixel-level processing is out of scope
// (spec.md §1) so the payload and its MIME type are all the core ever touches.
type Image struct {
	MimeType string
	Data     []byte
}

// CameraProperties describes static capabilities of a Camera.
type CameraProperties struct {
	SupportsPCD bool
}

// Camera is the image/point-cloud capability set (spec.md §6 camera methods).
type Camera interface {
	Resource
	GetImage(ctx context.Context) (Image, error)
	RenderFrame(ctx context.Context) ([]byte, error)
	GetPointCloud(ctx context.Context) ([]byte, error)
	GetProperties(ctx context.Context) (CameraProperties, error)
}

// Generic is the catch-all capability set for resources that only expose
// DoCommand-style free-form calls.
type Generic interface {
	Resource
	DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error)
}
