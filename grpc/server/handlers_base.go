package server

import (
	"context"

	"go.viam.com/micro-rdk-agent/grpc/codec"
	"go.viam.com/micro-rdk-agent/resource"
)

var baseAPI = resource.APINamespaceRDK.WithComponentType("base")

func registerBaseHandlers(d *Dispatcher) {
	d.Register("/viam.component.base.v1.BaseService/SetPower", baseHandler(func(ctx context.Context, b resource.Base, req requestFields) (respFields, error) {
		return nil, b.SetPower(ctx, numberField(req, "linear"), numberField(req, "angular"))
	}))
	d.Register("/viam.component.base.v1.BaseService/Stop", baseHandler(func(ctx context.Context, b resource.Base, req requestFields) (respFields, error) {
		return nil, b.Stop(ctx)
	}))
	d.Register("/viam.component.base.v1.BaseService/SetVelocity", baseHandler(func(ctx context.Context, b resource.Base, req requestFields) (respFields, error) {
		return nil, b.SetVelocity(ctx, numberField(req, "linear_mm_per_sec"), numberField(req, "angular_degs_per_sec"))
	}))
	d.Register("/viam.component.base.v1.BaseService/MoveStraight", baseHandler(func(ctx context.Context, b resource.Base, req requestFields) (respFields, error) {
		return nil, b.MoveStraight(ctx, int(numberField(req, "distance_mm")), numberField(req, "mm_per_sec"))
	}))
	d.Register("/viam.component.base.v1.BaseService/Spin", baseHandler(func(ctx context.Context, b resource.Base, req requestFields) (respFields, error) {
		return nil, b.Spin(ctx, numberField(req, "angle_deg"), numberField(req, "degs_per_sec"))
	}))
}

func baseHandler(fn func(ctx context.Context, b resource.Base, req requestFields) (respFields, error)) Handler {
	return func(ctx context.Context, graph *resource.Graph, payload []byte) ([]byte, codec.Status) {
		req, err := decodeRequest(payload)
		if err != nil {
			return nil, internalError(err)
		}
		name, err := requestName(req, baseAPI)
		if err != nil {
			return nil, internalError(err)
		}
		res, status := resolve(graph, name)
		if status != nil {
			return nil, *status
		}
		b, ok := res.(resource.Base)
		if !ok {
			return nil, internalError(resource.NewUnimplementedInterfaceError((*resource.Base)(nil), res))
		}
		fields, err := fn(ctx, b, req)
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
