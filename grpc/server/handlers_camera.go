package server

import (
	"context"

	"go.viam.com/micro-rdk-agent/grpc/codec"
	"go.viam.com/micro-rdk-agent/resource"
)

var cameraAPI = resource.APINamespaceRDK.WithComponentType("camera")

func registerCameraHandlers(d *Dispatcher) {
	d.Register("/viam.component.camera.v1.CameraService/GetImage", cameraHandler(func(ctx context.Context, c resource.Camera, req requestFields) (respFields, error) {
		img, err := c.GetImage(ctx)
		if err != nil {
			return nil, err
		}
		return respFields{"mime_type": strVal(img.MimeType), "image": strVal(string(img.Data))}, nil
	}))
	d.Register("/viam.component.camera.v1.CameraService/RenderFrame", cameraHandler(func(ctx context.Context, c resource.Camera, req requestFields) (respFields, error) {
		data, err := c.RenderFrame(ctx)
		if err != nil {
			return nil, err
		}
		return respFields{"data": strVal(string(data))}, nil
	}))
	d.Register("/viam.component.camera.v1.CameraService/GetPointCloud", cameraHandler(func(ctx context.Context, c resource.Camera, req requestFields) (respFields, error) {
		data, err := c.GetPointCloud(ctx)
		if err != nil {
			return nil, err
		}
		return respFields{"point_cloud": strVal(string(data))}, nil
	}))
	d.Register("/viam.component.camera.v1.CameraService/GetProperties", cameraHandler(func(ctx context.Context, c resource.Camera, req requestFields) (respFields, error) {
		props, err := c.GetProperties(ctx)
		if err != nil {
			return nil, err
		}
		return respFields{"supports_pcd": boolVal(props.SupportsPCD)}, nil
	}))
}

func cameraHandler(fn func(ctx context.Context, c resource.Camera, req requestFields) (respFields, error)) Handler {
	return func(ctx context.Context, graph *resource.Graph, payload []byte) ([]byte, codec.Status) {
		req, err := decodeRequest(payload)
		if err != nil {
			return nil, internalError(err)
		}
		name, err := requestName(req, cameraAPI)
		if err != nil {
			return nil, internalError(err)
		}
		res, status := resolve(graph, name)
		if status != nil {
			return nil, *status
		}
		c, ok := res.(resource.Camera)
		if !ok {
			return nil, internalError(resource.NewUnimplementedInterfaceError((*resource.Camera)(nil), res))
		}
		fields, err := fn(ctx, c, req)
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
