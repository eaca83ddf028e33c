// Package codec implements the length-delimited gRPC message framing shared by
// the HTTP/2 transport and the SCTP transport (spec.md §4.E, §6 "Wire framing"):
// `[compressed:u8=0][length:u32_be][payload:length]`.
package codec

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxFrameSize bounds a single frame's payload, a defensive cap appropriate for a
// constrained device; nothing in this agent's RPC surface needs a larger message.
const MaxFrameSize = 4 << 20 // 4 MiB

// ErrUnsupportedCompression is returned when a frame's compressed-flag byte is
// nonzero. Compression is not supported (spec.md §4.E "a nonzero first byte is a
// protocol error").
var ErrUnsupportedCompression = fmt.Errorf("compressed-flag messages are not supported")

// WriteFrame writes one length-delimited, uncompressed frame.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("frame payload of %d bytes exceeds max %d", len(payload), MaxFrameSize)
	}
	header := make([]byte, 5)
	header[0] = 0
	binary.BigEndian.PutUint32(header[1:], uint32(len(payload)))
	if _, err := w.Write(header); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one length-delimited frame, validating the compressed-flag byte
// and the advertised length against MaxFrameSize.
//
// Testable property (spec.md §8): for any framed message m written then read,
// ReadFrame(WriteFrame(m)) == m byte-for-byte.
func ReadFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, 5)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	if header[0] != 0 {
		return nil, ErrUnsupportedCompression
	}
	length := binary.BigEndian.Uint32(header[1:])
	if length > MaxFrameSize {
		return nil, fmt.Errorf("frame length %d exceeds max %d", length, MaxFrameSize)
	}
	if length == 0 {
		return []byte{}, nil
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
