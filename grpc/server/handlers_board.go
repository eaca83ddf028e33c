package server

import (
	"context"

	"go.viam.com/micro-rdk-agent/grpc/codec"
	"go.viam.com/micro-rdk-agent/resource"
)

var boardAPI = resource.APINamespaceRDK.WithComponentType("board")

func registerBoardHandlers(d *Dispatcher) {
	d.Register("/viam.component.board.v1.BoardService/GetGPIO", boardHandler(func(ctx context.Context, b resource.Board, req requestFields) (respFields, error) {
		high, err := b.GetGPIO(ctx, stringField(req, "pin"))
		if err != nil {
			return nil, err
		}
		return respFields{"high": boolVal(high)}, nil
	}))
	d.Register("/viam.component.board.v1.BoardService/SetGPIO", boardHandler(func(ctx context.Context, b resource.Board, req requestFields) (respFields, error) {
		return nil, b.SetGPIO(ctx, stringField(req, "pin"), boolField(req, "high"))
	}))
	d.Register("/viam.component.board.v1.BoardService/SetPowerMode", boardHandler(func(ctx context.Context, b resource.Board, req requestFields) (respFields, error) {
		return nil, b.SetPowerMode(ctx, stringField(req, "power_mode"))
	}))
	d.Register("/viam.component.board.v1.BoardService/ReadAnalogReader", boardHandler(func(ctx context.Context, b resource.Board, req requestFields) (respFields, error) {
		v, err := b.ReadAnalogReader(ctx, stringField(req, "analog_reader_name"))
		if err != nil {
			return nil, err
		}
		return respFields{"value": numVal(float64(v))}, nil
	}))
	d.Register("/viam.component.board.v1.BoardService/Status", boardHandler(func(ctx context.Context, b resource.Board, req requestFields) (respFields, error) {
		st, err := b.Status(ctx)
		if err != nil {
			return nil, err
		}
		analogFields := make(map[string]*structValue, len(st.Analogs))
		for k, v := range st.Analogs {
			analogFields[k] = numVal(float64(v))
		}
		interruptFields := make(map[string]*structValue, len(st.DigitalInterrupts))
		for k, v := range st.DigitalInterrupts {
			interruptFields[k] = numVal(float64(v))
		}
		return respFields{
			"analogs":            structVal(analogFields),
			"digital_interrupts": structVal(interruptFields),
		}, nil
	}))
	d.Register("/viam.component.board.v1.BoardService/PWM", boardHandler(func(ctx context.Context, b resource.Board, req requestFields) (respFields, error) {
		v, err := b.PWM(ctx, stringField(req, "pin"))
		if err != nil {
			return nil, err
		}
		return respFields{"duty_cycle_pct": numVal(v)}, nil
	}))
	d.Register("/viam.component.board.v1.BoardService/SetPWM", boardHandler(func(ctx context.Context, b resource.Board, req requestFields) (respFields, error) {
		return nil, b.SetPWM(ctx, stringField(req, "pin"), numberField(req, "duty_cycle_pct"))
	}))
	d.Register("/viam.component.board.v1.BoardService/SetPWMFrequency", boardHandler(func(ctx context.Context, b resource.Board, req requestFields) (respFields, error) {
		return nil, b.SetPWMFrequency(ctx, stringField(req, "pin"), uint(numberField(req, "frequency_hz")))
	}))
}

func boardHandler(fn func(ctx context.Context, b resource.Board, req requestFields) (respFields, error)) Handler {
	return func(ctx context.Context, graph *resource.Graph, payload []byte) ([]byte, codec.Status) {
		req, err := decodeRequest(payload)
		if err != nil {
			return nil, internalError(err)
		}
		name, err := requestName(req, boardAPI)
		if err != nil {
			return nil, internalError(err)
		}
		res, status := resolve(graph, name)
		if status != nil {
			return nil, *status
		}
		b, ok := res.(resource.Board)
		if !ok {
			return nil, internalError(resource.NewUnimplementedInterfaceError((*resource.Board)(nil), res))
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
