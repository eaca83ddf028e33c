package server

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"go.viam.com/micro-rdk-agent/resource"
)

// decodeRequest unmarshals a unary request payload as a google.protobuf.Struct.
// The concrete per-method request/response message definitions are out of scope
// for this core (spec.md §1 "the protobuf message definitions (assumed given)");
// structpb.Struct is itself a real protobuf message and lets every handler below
// speak genuine protobuf wire format without fabricating generated stubs for
// messages this spec never defines.
func decodeRequest(payload []byte) (*structpb.Struct, error) {
	var s structpb.Struct
	if len(payload) == 0 {
		return &s, nil
	}
	if err := proto.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	return &s, nil
}

// encodeResponse marshals a field set into a response payload.
func encodeResponse(fields map[string]*structpb.Value) ([]byte, error) {
	return proto.Marshal(&structpb.Struct{Fields: fields})
}

func requestName(req *structpb.Struct, api resource.API) (resource.Name, error) {
	nameField, ok := req.GetFields()["name"]
	if !ok {
		return resource.Name{}, fmt.Errorf("request missing required field \"name\"")
	}
	return resource.NewName(api, nameField.GetStringValue()), nil
}

func numberField(req *structpb.Struct, key string) float64 {
	return req.GetFields()[key].GetNumberValue()
}

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

func boolField(req *structpb.Struct, key string) bool {
	return req.GetFields()[key].GetBoolValue()
}

func numVal(f float64) *structpb.Value { return structpb.NewNumberValue(f) }
func strVal(s string) *structpb.Value  { return structpb.NewStringValue(s) }
func boolVal(b bool) *structpb.Value   { return structpb.NewBoolValue(b) }

// requestStruct and responseFields are the shared shapes every per-subtype
// handler file below speaks, so each one need not import structpb directly.
type requestStruct = structpb.Struct
type responseFields = map[string]*structpb.Value
type structValue = structpb.Value

func structVal(fields map[string]*structpb.Value) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: fields})
}

func listVal(items []*structpb.Value) *structpb.Value {
	return structpb.NewListValue(&structpb.ListValue{Values: items})
}
