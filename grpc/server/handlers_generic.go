package server

import (
	"context"

	"go.viam.com/micro-rdk-agent/grpc/codec"
	"go.viam.com/micro-rdk-agent/resource"
)

var genericAPI = resource.APINamespaceRDK.WithComponentType("generic")

func registerGenericHandlers(d *Dispatcher) {
	d.Register("/viam.component.generic.v1.GenericService/DoCommand", func(ctx context.Context, graph *resource.Graph, payload []byte) ([]byte, codec.Status) {
		req, err := decodeRequest(payload)
		if err != nil {
			return nil, internalError(err)
		}
		name, err := requestName(req, genericAPI)
		if err != nil {
			return nil, internalError(err)
		}
		res, status := resolve(graph, name)
		if status != nil {
			return nil, *status
		}
		g, ok := res.(resource.Generic)
		if !ok {
			return nil, internalError(resource.NewUnimplementedInterfaceError((*resource.Generic)(nil), res))
		}

		cmdValue, ok := req.GetFields()["command"]
		if !ok {
			return nil, internalError(errMissingCommand)
		}
		cmdKind, err := resource.KindFromStructValue(cmdValue)
		if err != nil {
			return nil, internalError(err)
		}
		cmdMap, err := cmdKind.AsMap()
		if err != nil {
			return nil, internalError(err)
		}
		cmd := make(map[string]interface{}, len(cmdMap))
		for k, v := range cmdMap {
			cmd[k] = v.ToInterface()
		}

		result, err := g.DoCommand(ctx, cmd)
		if err != nil {
			return nil, internalError(err)
		}
		resultValue, err := resource.MapKind(kindMapFromInterfaceMap(result)).ToStructValue()
		if err != nil {
			return nil, internalError(err)
		}
		out, err := encodeResponse(respFields{"result": resultValue})
		if err != nil {
			return nil, internalError(err)
		}
		return out, codec.OK
	})
}

func kindMapFromInterfaceMap(m map[string]interface{}) map[string]resource.Kind {
	out := make(map[string]resource.Kind, len(m))
	for k, v := range m {
		out[k] = kindFromInterface(v)
	}
	return out
}

func kindFromInterface(v interface{}) resource.Kind {
	switch t := v.(type) {
	case nil:
		return resource.NullKind
	case float64:
		return resource.NumberKind(t)
	case int:
		return resource.NumberKind(float64(t))
	case string:
		return resource.StringKind(t)
	case bool:
		return resource.BoolKind(t)
	case []interface{}:
		out := make([]resource.Kind, len(t))
		for i, item := range t {
			out[i] = kindFromInterface(item)
		}
		return resource.ListKind(out)
	case map[string]interface{}:
		return resource.MapKind(kindMapFromInterfaceMap(t))
	default:
		return resource.NullKind
	}
}

var errMissingCommand = &missingFieldError{field: "command"}

type missingFieldError struct{ field string }

func (e *missingFieldError) Error() string { return "request missing required field \"" + e.field + "\"" }
