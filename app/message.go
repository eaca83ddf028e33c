package app

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// This client speaks to the cloud control plane the same way grpc/server
// speaks to local callers: every request/response body is a generic
// google.protobuf.Struct rather than a fabricated generated message type,
// since the concrete app-service protobuf definitions are out of scope
// (spec.md §1 "protobuf message definitions...assumed given").

func encodeStruct(fields map[string]interface{}) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	return proto.Marshal(s)
}

func decodeStruct(payload []byte) (*structpb.Struct, error) {
	if len(payload) == 0 {
		return nil, errEmptyBody
	}
	var s structpb.Struct
	if err := proto.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &s, nil
}

var errEmptyBody = fmt.Errorf("empty response body")
