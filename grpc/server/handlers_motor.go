package server

import (
	"context"

	"go.viam.com/micro-rdk-agent/grpc/codec"
	"go.viam.com/micro-rdk-agent/resource"
)

type requestFields = *requestStruct
type respFields = responseFields

var motorAPI = resource.APINamespaceRDK.WithComponentType("motor")

func registerMotorHandlers(d *Dispatcher) {
	d.Register("/viam.component.motor.v1.MotorService/SetPower", motorHandler(func(ctx context.Context, m resource.Motor, req requestFields) (respFields, error) {
		return nil, m.SetPower(ctx, numberField(req, "power_pct"))
	}))
	d.Register("/viam.component.motor.v1.MotorService/Stop", motorHandler(func(ctx context.Context, m resource.Motor, req requestFields) (respFields, error) {
		return nil, m.Stop(ctx)
	}))
	d.Register("/viam.component.motor.v1.MotorService/GoFor", motorHandler(func(ctx context.Context, m resource.Motor, req requestFields) (respFields, error) {
		return nil, m.GoFor(ctx, numberField(req, "rpm"), numberField(req, "revolutions"))
	}))
	d.Register("/viam.component.motor.v1.MotorService/GetPosition", motorHandler(func(ctx context.Context, m resource.Motor, req requestFields) (respFields, error) {
		pos, err := m.GetPosition(ctx)
		if err != nil {
			return nil, err
		}
		return respFields{"position": numVal(pos)}, nil
	}))
	d.Register("/viam.component.motor.v1.MotorService/GetProperties", motorHandler(func(ctx context.Context, m resource.Motor, req requestFields) (respFields, error) {
		props, err := m.GetProperties(ctx)
		if err != nil {
			return nil, err
		}
		return respFields{"position_reporting": boolVal(props.PositionReporting)}, nil
	}))
	d.Register("/viam.component.motor.v1.MotorService/IsPowered", motorHandler(func(ctx context.Context, m resource.Motor, req requestFields) (respFields, error) {
		powered, pct, err := m.IsPowered(ctx)
		if err != nil {
			return nil, err
		}
		return respFields{"is_on": boolVal(powered), "power_pct": numVal(pct)}, nil
	}))
	d.Register("/viam.component.motor.v1.MotorService/ResetZeroPosition", motorHandler(func(ctx context.Context, m resource.Motor, req requestFields) (respFields, error) {
		return nil, m.ResetZeroPosition(ctx, numberField(req, "offset"))
	}))
}

func motorHandler(fn func(ctx context.Context, m resource.Motor, req requestFields) (respFields, error)) Handler {
	return func(ctx context.Context, graph *resource.Graph, payload []byte) ([]byte, codec.Status) {
		req, err := decodeRequest(payload)
		if err != nil {
			return nil, internalError(err)
		}
		name, err := requestName(req, motorAPI)
		if err != nil {
			return nil, internalError(err)
		}
		res, status := resolve(graph, name)
		if status != nil {
			return nil, *status
		}
		m, ok := res.(resource.Motor)
		if !ok {
			return nil, internalError(resource.NewUnimplementedInterfaceError((*resource.Motor)(nil), res))
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
