package codec

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxMethodLength bounds the method-name envelope frame, far larger than any
// path this agent's closed method set uses (spec.md §4.E "device gRPC").
const MaxMethodLength = 256

// WriteEnvelope writes the out-of-band method-name frame that precedes a
// request frame on the SCTP channel (spec.md §4.E: "the method and optional
// metadata are communicated out of band...via a dedicated...envelope, the
// details of which are implementation-defined"). This agent's realization of
// that envelope is the plain UTF-8 method string, framed like any other
// message.
func WriteEnvelope(w io.Writer, method string) error {
	if len(method) > MaxMethodLength {
		return fmt.Errorf("method name of %d bytes exceeds max %d", len(method), MaxMethodLength)
	}
	return WriteFrame(w, []byte(method))
}

// ReadEnvelope reads one method-name frame. Returning io.EOF here (rather
// than mid-request) is how a caller notices the peer closed the channel
// between RPCs.
func ReadEnvelope(r io.Reader) (string, error) {
	payload, err := ReadFrame(r)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// WriteTrailer writes the status frame that follows a unary RPC's response
// frame (spec.md §4.E "followed by trailers carrying grpc-status...and
// optional grpc-message"). Encoding: [code:u32_be][message_length:u32_be][message].
func WriteTrailer(w io.Writer, st Status) error {
	buf := make([]byte, 8+len(st.Message))
	binary.BigEndian.PutUint32(buf[0:4], uint32(st.Code))
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(st.Message)))
	copy(buf[8:], st.Message)
	return WriteFrame(w, buf)
}

// ReadTrailer reads one status frame written by WriteTrailer.
func ReadTrailer(r io.Reader) (Status, error) {
	payload, err := ReadFrame(r)
	if err != nil {
		return Status{}, err
	}
	if len(payload) < 8 {
		return Status{}, fmt.Errorf("trailer frame of %d bytes is too short", len(payload))
	}
	code := binary.BigEndian.Uint32(payload[0:4])
	msgLen := binary.BigEndian.Uint32(payload[4:8])
	if int(msgLen) != len(payload)-8 {
		return Status{}, fmt.Errorf("trailer message length %d does not match frame", msgLen)
	}
	return Status{Code: int(code), Message: string(payload[8:])}, nil
}
