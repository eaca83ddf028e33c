package resource

import "context"

// These embeddable structs give driver authors a default-unimplemented
// implementation of every method in a capability set (spec.md §9 "Polymorphism
// over capability sets": "one trait/interface per subtype with default-
// unimplemented methods returning a well-known error code"). A constructor embeds
// the one matching its subtype and overrides only the methods it actually
// supports.

// UnimplementedMotor implements Motor, returning ErrUnimplemented from every method.
type UnimplementedMotor struct{ ResourceName Name }

func (u UnimplementedMotor) Name() Name                    { return u.ResourceName }
func (u UnimplementedMotor) Close(context.Context) error   { return nil }
func (u UnimplementedMotor) SetPower(context.Context, float64) error {
	return NewUnimplementedError("motor", "SetPower")
}
func (u UnimplementedMotor) GoFor(context.Context, float64, float64) error {
	return NewUnimplementedError("motor", "GoFor")
}
func (u UnimplementedMotor) GetPosition(context.Context) (float64, error) {
	return 0, NewUnimplementedError("motor", "GetPosition")
}
func (u UnimplementedMotor) GetProperties(context.Context) (MotorProperties, error) {
	return MotorProperties{}, NewUnimplementedError("motor", "GetProperties")
}
func (u UnimplementedMotor) IsPowered(context.Context) (bool, float64, error) {
	return false, 0, NewUnimplementedError("motor", "IsPowered")
}
func (u UnimplementedMotor) ResetZeroPosition(context.Context, float64) error {
	return NewUnimplementedError("motor", "ResetZeroPosition")
}
func (u UnimplementedMotor) Stop(context.Context) error {
	return NewUnimplementedError("motor", "Stop")
}
func (u UnimplementedMotor) IsMoving(context.Context) (bool, error) {
	return false, NewUnimplementedError("motor", "IsMoving")
}

// UnimplementedBoard implements Board, returning ErrUnimplemented from every method.
type UnimplementedBoard struct{ ResourceName Name }

func (u UnimplementedBoard) Name() Name                  { return u.ResourceName }
func (u UnimplementedBoard) Close(context.Context) error { return nil }
func (u UnimplementedBoard) GetGPIO(context.Context, string) (bool, error) {
	return false, NewUnimplementedError("board", "GetGPIO")
}
func (u UnimplementedBoard) SetGPIO(context.Context, string, bool) error {
	return NewUnimplementedError("board", "SetGPIO")
}
func (u UnimplementedBoard) SetPowerMode(context.Context, string) error {
	return NewUnimplementedError("board", "SetPowerMode")
}
func (u UnimplementedBoard) ReadAnalogReader(context.Context, string) (int, error) {
	return 0, NewUnimplementedError("board", "ReadAnalogReader")
}
func (u UnimplementedBoard) Status(context.Context) (BoardStatus, error) {
	return BoardStatus{}, NewUnimplementedError("board", "Status")
}
func (u UnimplementedBoard) PWM(context.Context, string) (float64, error) {
	return 0, NewUnimplementedError("board", "PWM")
}
func (u UnimplementedBoard) SetPWM(context.Context, string, float64) error {
	return NewUnimplementedError("board", "SetPWM")
}
func (u UnimplementedBoard) SetPWMFrequency(context.Context, string, uint) error {
	return NewUnimplementedError("board", "SetPWMFrequency")
}

// UnimplementedBase implements Base, returning ErrUnimplemented from every method.
type UnimplementedBase struct{ ResourceName Name }

func (u UnimplementedBase) Name() Name                  { return u.ResourceName }
func (u UnimplementedBase) Close(context.Context) error { return nil }
func (u UnimplementedBase) SetPower(context.Context, float64, float64) error {
	return NewUnimplementedError("base", "SetPower")
}
func (u UnimplementedBase) SetVelocity(context.Context, float64, float64) error {
	return NewUnimplementedError("base", "SetVelocity")
}
func (u UnimplementedBase) MoveStraight(context.Context, int, float64) error {
	return NewUnimplementedError("base", "MoveStraight")
}
func (u UnimplementedBase) Spin(context.Context, float64, float64) error {
	return NewUnimplementedError("base", "Spin")
}
func (u UnimplementedBase) Stop(context.Context) error {
	return NewUnimplementedError("base", "Stop")
}
func (u UnimplementedBase) IsMoving(context.Context) (bool, error) {
	return false, NewUnimplementedError("base", "IsMoving")
}
func (u UnimplementedBase) Properties(context.Context) (BaseProperties, error) {
	return BaseProperties{}, NewUnimplementedError("base", "Properties")
}

// UnimplementedEncoder implements Encoder, returning ErrUnimplemented from every method.
type UnimplementedEncoder struct{ ResourceName Name }

func (u UnimplementedEncoder) Name() Name                  { return u.ResourceName }
func (u UnimplementedEncoder) Close(context.Context) error { return nil }
func (u UnimplementedEncoder) GetPosition(context.Context, string) (float64, string, error) {
	return 0, "", NewUnimplementedError("encoder", "GetPosition")
}
func (u UnimplementedEncoder) ResetPosition(context.Context) error {
	return NewUnimplementedError("encoder", "ResetPosition")
}
func (u UnimplementedEncoder) GetProperties(context.Context) (EncoderProperties, error) {
	return EncoderProperties{}, NewUnimplementedError("encoder", "GetProperties")
}

// UnimplementedSensor implements Sensor, returning ErrUnimplemented from every method.
type UnimplementedSensor struct{ ResourceName Name }

func (u UnimplementedSensor) Name() Name                  { return u.ResourceName }
func (u UnimplementedSensor) Close(context.Context) error { return nil }
func (u UnimplementedSensor) GetReadings(context.Context) (map[string]interface{}, error) {
	return nil, NewUnimplementedError("sensor", "GetReadings")
}

// UnimplementedMovementSensor implements MovementSensor, returning ErrUnimplemented
// from every method.
type UnimplementedMovementSensor struct{ ResourceName Name }

func (u UnimplementedMovementSensor) Name() Name                  { return u.ResourceName }
func (u UnimplementedMovementSensor) Close(context.Context) error { return nil }
func (u UnimplementedMovementSensor) GetPosition(context.Context) (float64, float64, float64, error) {
	return 0, 0, 0, NewUnimplementedError("movement_sensor", "GetPosition")
}
func (u UnimplementedMovementSensor) GetLinearVelocity(context.Context) (float64, float64, float64, error) {
	return 0, 0, 0, NewUnimplementedError("movement_sensor", "GetLinearVelocity")
}
func (u UnimplementedMovementSensor) GetAngularVelocity(context.Context) (float64, float64, float64, error) {
	return 0, 0, 0, NewUnimplementedError("movement_sensor", "GetAngularVelocity")
}
func (u UnimplementedMovementSensor) GetLinearAcceleration(context.Context) (float64, float64, float64, error) {
	return 0, 0, 0, NewUnimplementedError("movement_sensor", "GetLinearAcceleration")
}
func (u UnimplementedMovementSensor) GetCompassHeading(context.Context) (float64, error) {
	return 0, NewUnimplementedError("movement_sensor", "GetCompassHeading")
}
func (u UnimplementedMovementSensor) GetOrientation(context.Context) (Orientation, error) {
	return Orientation{}, NewUnimplementedError("movement_sensor", "GetOrientation")
}
func (u UnimplementedMovementSensor) GetProperties(context.Context) (MovementSensorProperties, error) {
	return MovementSensorProperties{}, NewUnimplementedError("movement_sensor", "GetProperties")
}
func (u UnimplementedMovementSensor) GetAccuracy(context.Context) (map[string]float32, error) {
	return nil, NewUnimplementedError("movement_sensor", "GetAccuracy")
}

// UnimplementedPowerSensor implements PowerSensor, returning ErrUnimplemented from
// every method.
type UnimplementedPowerSensor struct{ ResourceName Name }

func (u UnimplementedPowerSensor) Name() Name                  { return u.ResourceName }
func (u UnimplementedPowerSensor) Close(context.Context) error { return nil }
func (u UnimplementedPowerSensor) GetVoltage(context.Context) (float64, bool, error) {
	return 0, false, NewUnimplementedError("power_sensor", "GetVoltage")
}
func (u UnimplementedPowerSensor) GetCurrent(context.Context) (float64, bool, error) {
	return 0, false, NewUnimplementedError("power_sensor", "GetCurrent")
}
func (u UnimplementedPowerSensor) GetPower(context.Context) (float64, error) {
	return 0, NewUnimplementedError("power_sensor", "GetPower")
}

// UnimplementedServo implements Servo, returning ErrUnimplemented from every method.
type UnimplementedServo struct{ ResourceName Name }

func (u UnimplementedServo) Name() Name                  { return u.ResourceName }
func (u UnimplementedServo) Close(context.Context) error { return nil }
func (u UnimplementedServo) Move(context.Context, uint32) error {
	return NewUnimplementedError("servo", "Move")
}
func (u UnimplementedServo) GetPosition(context.Context) (uint32, error) {
	return 0, NewUnimplementedError("servo", "GetPosition")
}

// UnimplementedCamera implements Camera, returning ErrUnimplemented from every method.
type UnimplementedCamera struct{ ResourceName Name }

func (u UnimplementedCamera) Name() Name                  { return u.ResourceName }
func (u UnimplementedCamera) Close(context.Context) error { return nil }
func (u UnimplementedCamera) GetImage(context.Context) (Image, error) {
	return Image{}, NewUnimplementedError("camera", "GetImage")
}
func (u UnimplementedCamera) RenderFrame(context.Context) ([]byte, error) {
	return nil, NewUnimplementedError("camera", "RenderFrame")
}
func (u UnimplementedCamera) GetPointCloud(context.Context) ([]byte, error) {
	return nil, NewUnimplementedError("camera", "GetPointCloud")
}
func (u UnimplementedCamera) GetProperties(context.Context) (CameraProperties, error) {
	return CameraProperties{}, NewUnimplementedError("camera", "GetProperties")
}

// UnimplementedGeneric implements Generic, returning ErrUnimplemented from every method.
type UnimplementedGeneric struct{ ResourceName Name }

func (u UnimplementedGeneric) Name() Name                  { return u.ResourceName }
func (u UnimplementedGeneric) Close(context.Context) error { return nil }
func (u UnimplementedGeneric) DoCommand(context.Context, map[string]interface{}) (map[string]interface{}, error) {
	return nil, NewUnimplementedError("generic", "DoCommand")
}
