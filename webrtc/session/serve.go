package session

import (
	"context"
	"errors"
	"io"

	"go.viam.com/micro-rdk-agent/grpc/codec"
	"go.viam.com/micro-rdk-agent/grpc/server"
	"go.viam.com/micro-rdk-agent/logging"
)

// Serve runs the gRPC-over-SCTP request loop of spec.md §4.E over channel
// until the peer closes it (Read returns io.EOF) or ctx is canceled. Each
// cycle reads a method envelope then a request frame, dispatches through d,
// and writes the response frame (if any) followed by a trailer frame.
//
// Unlike the HTTP/2 transport, which multiplexes many concurrent RPCs over
// one TLS connection, this single ordered SCTP stream serves one RPC at a
// time to completion before reading the next envelope — the only framing
// this agent's closed, unary-only method set needs.
func Serve(ctx context.Context, channel Channel, d *server.Dispatcher, logger logging.Logger) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		method, err := codec.ReadEnvelope(channel)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		payload, err := codec.ReadFrame(channel)
		if err != nil {
			return err
		}

		respPayload, st := d.Dispatch(ctx, method, payload)
		if st.Code == codec.CodeOK {
			if err := codec.WriteFrame(channel, respPayload); err != nil {
				return err
			}
		}
		if err := codec.WriteTrailer(channel, st); err != nil {
			return err
		}
		if st.Code != codec.CodeOK {
			logger.Debugw("gRPC-over-SCTP call failed", "method", method, "code", st.Code, "message", st.Message)
		}
	}
}
