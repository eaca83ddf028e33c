package codec

// RawCodec implements grpc-go's encoding.Codec, passing []byte payloads
// through untouched. Both the HTTP/2 server (grpc/http2) and the outbound app
// client (app) install this as their only codec so every gRPC call in this
// agent speaks in already-framed bytes rather than fabricated generated
// message types (spec.md §1: "the protobuf message definitions...assumed
// given" are out of scope for this core).
type RawCodec struct{}

func (RawCodec) Name() string { return "raw" }

func (RawCodec) Marshal(v interface{}) ([]byte, error) {
	switch b := v.(type) {
	case *[]byte:
		return *b, nil
	case []byte:
		return b, nil
	}
	return nil, errUnsupportedMessage
}

func (RawCodec) Unmarshal(data []byte, v interface{}) error {
	b, ok := v.(*[]byte)
	if !ok {
		return errUnsupportedMessage
	}
	*b = append([]byte(nil), data...)
	return nil
}

var errUnsupportedMessage = rawCodecError("codec: RawCodec only marshals/unmarshals []byte")

type rawCodecError string

func (e rawCodecError) Error() string { return string(e) }
