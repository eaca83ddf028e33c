// Package loop implements the dual-transport server loop of spec.md §4.I:
// TCP-accept for HTTP/2 gRPC races against receiving a signaling session from
// the app client's signaling task, each handled concurrently and
// independently of the other.
package loop

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// signalingFrame is the generic request/response body this agent's signaling
// stream speaks (spec.md §1 "protobuf message definitions...assumed given"):
// a oneof over "init" (the SDP body), "update" (one trickled candidate
// line), and "done", represented as a structpb.Struct like every other body
// in this port.
type signalingFrame struct {
	init   string
	update string
	done   bool
}

func decodeSignalingFrame(payload []byte) (signalingFrame, error) {
	var s structpb.Struct
	if len(payload) == 0 {
		return signalingFrame{}, fmt.Errorf("empty signaling frame")
	}
	if err := proto.Unmarshal(payload, &s); err != nil {
		return signalingFrame{}, fmt.Errorf("decoding signaling frame: %w", err)
	}
	f := s.GetFields()
	return signalingFrame{
		init:   f["init"].GetStringValue(),
		update: f["update"].GetStringValue(),
		done:   f["done"].GetBoolValue(),
	}, nil
}

func encodeInitFrame(sdp string) ([]byte, error) {
	return proto.Marshal(&structpb.Struct{Fields: map[string]*structpb.Value{
		"init": structpb.NewStringValue(sdp),
	}})
}
