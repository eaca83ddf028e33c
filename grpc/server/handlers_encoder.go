package server

import (
	"context"

	"go.viam.com/micro-rdk-agent/grpc/codec"
	"go.viam.com/micro-rdk-agent/resource"
)

var encoderAPI = resource.APINamespaceRDK.WithComponentType("encoder")

func registerEncoderHandlers(d *Dispatcher) {
	d.Register("/viam.component.encoder.v1.EncoderService/GetPosition", encoderHandler(func(ctx context.Context, e resource.Encoder, req requestFields) (respFields, error) {
		pos, unit, err := e.GetPosition(ctx, stringField(req, "position_type"))
		if err != nil {
			return nil, err
		}
		return respFields{"value": numVal(pos), "position_type": strVal(unit)}, nil
	}))
	d.Register("/viam.component.encoder.v1.EncoderService/ResetPosition", encoderHandler(func(ctx context.Context, e resource.Encoder, req requestFields) (respFields, error) {
		return nil, e.ResetPosition(ctx)
	}))
	d.Register("/viam.component.encoder.v1.EncoderService/GetProperties", encoderHandler(func(ctx context.Context, e resource.Encoder, req requestFields) (respFields, error) {
		props, err := e.GetProperties(ctx)
		if err != nil {
			return nil, err
		}
		return respFields{
			"ticks_count_supported":   boolVal(props.TicksCountSupported),
			"angle_degrees_supported": boolVal(props.AngleDegreesSupported),
		}, nil
	}))
}

func encoderHandler(fn func(ctx context.Context, e resource.Encoder, req requestFields) (respFields, error)) Handler {
	return func(ctx context.Context, graph *resource.Graph, payload []byte) ([]byte, codec.Status) {
		req, err := decodeRequest(payload)
		if err != nil {
			return nil, internalError(err)
		}
		name, err := requestName(req, encoderAPI)
		if err != nil {
			return nil, internalError(err)
		}
		res, status := resolve(graph, name)
		if status != nil {
			return nil, *status
		}
		e, ok := res.(resource.Encoder)
		if !ok {
			return nil, internalError(resource.NewUnimplementedInterfaceError((*resource.Encoder)(nil), res))
		}
		fields, err := fn(ctx, e, req)
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
