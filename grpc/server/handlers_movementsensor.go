package server

import (
	"context"

	"go.viam.com/micro-rdk-agent/grpc/codec"
	"go.viam.com/micro-rdk-agent/resource"
)

var movementSensorAPI = resource.APINamespaceRDK.WithComponentType("movement_sensor")

func registerMovementSensorHandlers(d *Dispatcher) {
	d.Register("/viam.component.movementsensor.v1.MovementSensorService/GetPosition", movementSensorHandler(func(ctx context.Context, m resource.MovementSensor, req requestFields) (respFields, error) {
		lat, lng, alt, err := m.GetPosition(ctx)
		if err != nil {
			return nil, err
		}
		return respFields{"latitude": numVal(lat), "longitude": numVal(lng), "altitude_m": numVal(alt)}, nil
	}))
	d.Register("/viam.component.movementsensor.v1.MovementSensorService/GetLinearVelocity", movementSensorHandler(func(ctx context.Context, m resource.MovementSensor, req requestFields) (respFields, error) {
		x, y, z, err := m.GetLinearVelocity(ctx)
		if err != nil {
			return nil, err
		}
		return respFields{"x": numVal(x), "y": numVal(y), "z": numVal(z)}, nil
	}))
	d.Register("/viam.component.movementsensor.v1.MovementSensorService/GetAngularVelocity", movementSensorHandler(func(ctx context.Context, m resource.MovementSensor, req requestFields) (respFields, error) {
		x, y, z, err := m.GetAngularVelocity(ctx)
		if err != nil {
			return nil, err
		}
		return respFields{"x": numVal(x), "y": numVal(y), "z": numVal(z)}, nil
	}))
	d.Register("/viam.component.movementsensor.v1.MovementSensorService/GetLinearAcceleration", movementSensorHandler(func(ctx context.Context, m resource.MovementSensor, req requestFields) (respFields, error) {
		x, y, z, err := m.GetLinearAcceleration(ctx)
		if err != nil {
			return nil, err
		}
		return respFields{"x": numVal(x), "y": numVal(y), "z": numVal(z)}, nil
	}))
	d.Register("/viam.component.movementsensor.v1.MovementSensorService/GetCompassHeading", movementSensorHandler(func(ctx context.Context, m resource.MovementSensor, req requestFields) (respFields, error) {
		heading, err := m.GetCompassHeading(ctx)
		if err != nil {
			return nil, err
		}
		return respFields{"value": numVal(heading)}, nil
	}))
	d.Register("/viam.component.movementsensor.v1.MovementSensorService/GetOrientation", movementSensorHandler(func(ctx context.Context, m resource.MovementSensor, req requestFields) (respFields, error) {
		o, err := m.GetOrientation(ctx)
		if err != nil {
			return nil, err
		}
		return respFields{"o_x": numVal(o.OX), "o_y": numVal(o.OY), "o_z": numVal(o.OZ), "theta": numVal(o.Theta)}, nil
	}))
	d.Register("/viam.component.movementsensor.v1.MovementSensorService/GetProperties", movementSensorHandler(func(ctx context.Context, m resource.MovementSensor, req requestFields) (respFields, error) {
		props, err := m.GetProperties(ctx)
		if err != nil {
			return nil, err
		}
		return respFields{
			"position_supported":              boolVal(props.PositionSupported),
			"linear_velocity_supported":        boolVal(props.LinearVelocitySupported),
			"angular_velocity_supported":       boolVal(props.AngularVelocitySupported),
			"linear_acceleration_supported":    boolVal(props.LinearAccelerationSupported),
			"compass_heading_supported":        boolVal(props.CompassHeadingSupported),
			"orientation_supported":            boolVal(props.OrientationSupported),
		}, nil
	}))
	d.Register("/viam.component.movementsensor.v1.MovementSensorService/GetAccuracy", movementSensorHandler(func(ctx context.Context, m resource.MovementSensor, req requestFields) (respFields, error) {
		acc, err := m.GetAccuracy(ctx)
		if err != nil {
			return nil, err
		}
		fields := make(map[string]*structValue, len(acc))
		for k, v := range acc {
			fields[k] = numVal(float64(v))
		}
		return respFields{"accuracy": structVal(fields)}, nil
	}))
}

func movementSensorHandler(fn func(ctx context.Context, m resource.MovementSensor, req requestFields) (respFields, error)) Handler {
	return func(ctx context.Context, graph *resource.Graph, payload []byte) ([]byte, codec.Status) {
		req, err := decodeRequest(payload)
		if err != nil {
			return nil, internalError(err)
		}
		name, err := requestName(req, movementSensorAPI)
		if err != nil {
			return nil, internalError(err)
		}
		res, status := resolve(graph, name)
		if status != nil {
			return nil, *status
		}
		m, ok := res.(resource.MovementSensor)
		if !ok {
			return nil, internalError(resource.NewUnimplementedInterfaceError((*resource.MovementSensor)(nil), res))
		}
		fields, err := fn(ctx, m, req)
		if err != nil {
			return nil, internalError(err)
		}
		out, err := encodeResponse(fields)
		if err != nil {
			return nil, internalError(err)
		}
		return out, codec.OK
	}
}
