package server

import (
	"context"

	"go.viam.com/micro-rdk-agent/grpc/codec"
	"go.viam.com/micro-rdk-agent/resource"
)

var powerSensorAPI = resource.APINamespaceRDK.WithComponentType("power_sensor")

func registerPowerSensorHandlers(d *Dispatcher) {
	d.Register("/viam.component.powersensor.v1.PowerSensorService/GetVoltage", powerSensorHandler(func(ctx context.Context, p resource.PowerSensor, req requestFields) (respFields, error) {
		v, isAC, err := p.GetVoltage(ctx)
		if err != nil {
			return nil, err
		}
		return respFields{"volts": numVal(v), "is_ac": boolVal(isAC)}, nil
	}))
	d.Register("/viam.component.powersensor.v1.PowerSensorService/GetCurrent", powerSensorHandler(func(ctx context.Context, p resource.PowerSensor, req requestFields) (respFields, error) {
		a, isAC, err := p.GetCurrent(ctx)
		if err != nil {
			return nil, err
		}
		return respFields{"amperes": numVal(a), "is_ac": boolVal(isAC)}, nil
	}))
	d.Register("/viam.component.powersensor.v1.PowerSensorService/GetPower", powerSensorHandler(func(ctx context.Context, p resource.PowerSensor, req requestFields) (respFields, error) {
		w, err := p.GetPower(ctx)
		if err != nil {
			return nil, err
		}
		return respFields{"watts": numVal(w)}, nil
	}))
}

func powerSensorHandler(fn func(ctx context.Context, p resource.PowerSensor, req requestFields) (respFields, error)) Handler {
	return func(ctx context.Context, graph *resource.Graph, payload []byte) ([]byte, codec.Status) {
		req, err := decodeRequest(payload)
		if err != nil {
			return nil, internalError(err)
		}
		name, err := requestName(req, powerSensorAPI)
		if err != nil {
			return nil, internalError(err)
		}
		res, status := resolve(graph, name)
		if status != nil {
			return nil, *status
		}
		p, ok := res.(resource.PowerSensor)
		if !ok {
			return nil, internalError(resource.NewUnimplementedInterfaceError((*resource.PowerSensor)(nil), res))
		}
		fields, err := fn(ctx, p, req)
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
