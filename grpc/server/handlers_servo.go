package server

import (
	"context"

	"go.viam.com/micro-rdk-agent/grpc/codec"
	"go.viam.com/micro-rdk-agent/resource"
)

var servoAPI = resource.APINamespaceRDK.WithComponentType("servo")

func registerServoHandlers(d *Dispatcher) {
	d.Register("/viam.component.servo.v1.ServoService/Move", servoHandler(func(ctx context.Context, s resource.Servo, req requestFields) (respFields, error) {
		return nil, s.Move(ctx, uint32(numberField(req, "angle_deg")))
	}))
	d.Register("/viam.component.servo.v1.ServoService/GetPosition", servoHandler(func(ctx context.Context, s resource.Servo, req requestFields) (respFields, error) {
		angle, err := s.GetPosition(ctx)
		if err != nil {
			return nil, err
		}
		return respFields{"position_deg": numVal(float64(angle))}, nil
	}))
}

func servoHandler(fn func(ctx context.Context, s resource.Servo, req requestFields) (respFields, error)) Handler {
	return func(ctx context.Context, graph *resource.Graph, payload []byte) ([]byte, codec.Status) {
		req, err := decodeRequest(payload)
		if err != nil {
			return nil, internalError(err)
		}
		name, err := requestName(req, servoAPI)
		if err != nil {
			return nil, internalError(err)
		}
		res, status := resolve(graph, name)
		if status != nil {
			return nil, *status
		}
		s, ok := res.(resource.Servo)
		if !ok {
			return nil, internalError(resource.NewUnimplementedInterfaceError((*resource.Servo)(nil), res))
		}
		fields, err := fn(ctx, s, req)
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
