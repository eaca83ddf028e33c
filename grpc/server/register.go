package server

// RegisterAll populates d with every RPC handler this agent serves: the closed
// robot service method set (spec.md §6 "robot") plus one handler set per
// supported component subtype (spec.md §3 SupportedSubtypes).
func RegisterAll(d *Dispatcher) {
	registerRobotHandlers(d)
	registerMotorHandlers(d)
	registerBoardHandlers(d)
	registerBaseHandlers(d)
	registerEncoderHandlers(d)
	registerSensorHandlers(d)
	registerMovementSensorHandlers(d)
	registerPowerSensorHandlers(d)
	registerServoHandlers(d)
	registerCameraHandlers(d)
	registerGenericHandlers(d)
}
