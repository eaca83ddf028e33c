package server

import (
	"context"

	"go.viam.com/micro-rdk-agent/grpc/codec"
	"go.viam.com/micro-rdk-agent/resource"
)

var sensorAPI = resource.APINamespaceRDK.WithComponentType("sensor")

func registerSensorHandlers(d *Dispatcher) {
	d.Register("/viam.component.sensor.v1.SensorService/GetReadings", func(ctx context.Context, graph *resource.Graph, payload []byte) ([]byte, codec.Status) {
		req, err := decodeRequest(payload)
		if err != nil {
			return nil, internalError(err)
		}
		name, err := requestName(req, sensorAPI)
		if err != nil {
			return nil, internalError(err)
		}
		res, status := resolve(graph, name)
		if status != nil {
			return nil, *status
		}
		s, ok := res.(resource.Sensor)
		if !ok {
			return nil, internalError(resource.NewUnimplementedInterfaceError((*resource.Sensor)(nil), res))
		}
		readings, err := s.GetReadings(ctx)
		if err != nil {
			return nil, internalError(err)
		}
		fields := make(map[string]*structValue, len(readings))
		for k, v := range readings {
			fields[k] = toStructValue(v)
		}
		out, err := encodeResponse(respFields{"readings": structVal(fields)})
		if err != nil {
			return nil, internalError(err)
		}
		return out, codec.OK
	})
}

func toStructValue(v interface{}) *structValue {
	switch t := v.(type) {
	case float64:
		return numVal(t)
	case float32:
		return numVal(float64(t))
	case int:
		return numVal(float64(t))
	case string:
		return strVal(t)
	case bool:
		return boolVal(t)
	default:
		return strVal("")
	}
}
