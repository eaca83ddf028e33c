package codec_test

import (
	"bytes"
	"testing"

	"go.viam.com/test"

	"go.viam.com/micro-rdk-agent/grpc/codec"
)

func TestFrameRoundTrip(t *testing.T) {
	messages := [][]byte{
		{},
		[]byte("hello"),
		bytes.Repeat([]byte{0xAB}, 70000),
	}
	for _, m := range messages {
		var buf bytes.Buffer
		test.That(t, codec.WriteFrame(&buf, m), test.ShouldBeNil)
		got, err := codec.ReadFrame(&buf)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldResemble, m)
	}
}

func TestFrameRejectsCompressedFlag(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{1, 0, 0, 0, 0})
	_, err := codec.ReadFrame(&buf)
	test.That(t, err, test.ShouldEqual, codec.ErrUnsupportedCompression)
}

func TestStatusTrailers(t *testing.T) {
	s := codec.Status{Code: codec.CodeUnimplemented, Message: "unimplemented"}
	trailers := s.Trailers()
	test.That(t, trailers["grpc-status"], test.ShouldEqual, "12")
	test.That(t, trailers["grpc-message"], test.ShouldEqual, "unimplemented")
}
