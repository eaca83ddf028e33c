package server

import (
	"context"

	"go.viam.com/micro-rdk-agent/grpc/codec"
	"go.viam.com/micro-rdk-agent/operation"
	"go.viam.com/micro-rdk-agent/resource"
)

// OperationManager is injected so the robot service can answer GetOperations
// (SPEC_FULL.md §2 "Operation tracking" DOMAIN+ feature) without this package
// depending on the server loop's wiring.
var OperationManager = operation.NewManager()

func registerRobotHandlers(d *Dispatcher) {
	d.Register("/viam.robot.v1.RobotService/ResourceNames", func(ctx context.Context, graph *resource.Graph, payload []byte) ([]byte, codec.Status) {
		names := graph.ResourceNames()
		list := make([]*structValue, len(names))
		for i, n := range names {
			list[i] = structVal(map[string]*structValue{
				"namespace": strVal(string(n.API.Type.Namespace)),
				"type":      strVal(n.API.Type.Name),
				"subtype":   strVal(n.API.SubtypeName),
				"name":      strVal(n.Name),
			})
		}
		out, err := encodeResponse(respFields{"resources": listVal(list)})
		if err != nil {
			return nil, internalError(err)
		}
		return out, codec.OK
	})

	d.Register("/viam.robot.v1.RobotService/GetStatus", func(ctx context.Context, graph *resource.Graph, payload []byte) ([]byte, codec.Status) {
		names := graph.ResourceNames()
		fields := make(map[string]*structValue, len(names))
		for _, n := range names {
			fields[n.String()] = boolVal(true)
		}
		out, err := encodeResponse(respFields{"status": structVal(fields)})
		if err != nil {
			return nil, internalError(err)
		}
		return out, codec.OK
	})

	// StreamStatus degrades to a single snapshot under this core's unary-only
	// framing (spec.md §4.E "unary dispatch"); a real server-streaming transport
	// is out of scope for the WebRTC/gRPC-over-SCTP lane this spec defines.
	d.Register("/viam.robot.v1.RobotService/StreamStatus", d.handlers["/viam.robot.v1.RobotService/GetStatus"])

	d.Register("/viam.robot.v1.RobotService/GetOperations", func(ctx context.Context, graph *resource.Graph, payload []byte) ([]byte, codec.Status) {
		ops := OperationManager.List()
		list := make([]*structValue, len(ops))
		for i, op := range ops {
			list[i] = structVal(map[string]*structValue{
				"id":     strVal(op.ID.String()),
				"method": strVal(op.Method),
			})
		}
		out, err := encodeResponse(respFields{"operations": listVal(list)})
		if err != nil {
			return nil, internalError(err)
		}
		return out, codec.OK
	})
}
