package http2_test

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/micro-rdk-agent/grpc/codec"
)

func TestRawCodecRoundTrip(t *testing.T) {
	var c codec.RawCodec
	payload := []byte("hello")
	marshaled, err := c.Marshal(&payload)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, marshaled, test.ShouldResemble, payload)

	var out []byte
	test.That(t, c.Unmarshal(marshaled, &out), test.ShouldBeNil)
	test.That(t, out, test.ShouldResemble, payload)
}

func TestRawCodecRejectsUnsupportedType(t *testing.T) {
	var c codec.RawCodec
	_, err := c.Marshal("not bytes")
	test.That(t, err, test.ShouldNotBeNil)
}
