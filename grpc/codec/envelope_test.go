package codec_test

import (
	"bytes"
	"io"
	"testing"

	"go.viam.com/test"

	"go.viam.com/micro-rdk-agent/grpc/codec"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	test.That(t, codec.WriteEnvelope(&buf, "/viam.component.motor.v1.MotorService/GetPosition"), test.ShouldBeNil)
	method, err := codec.ReadEnvelope(&buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, method, test.ShouldEqual, "/viam.component.motor.v1.MotorService/GetPosition")
}

func TestReadEnvelopeReturnsEOFOnClosedChannel(t *testing.T) {
	var buf bytes.Buffer
	_, err := codec.ReadEnvelope(&buf)
	test.That(t, err, test.ShouldEqual, io.EOF)
}

func TestTrailerRoundTrip(t *testing.T) {
	cases := []codec.Status{
		{Code: codec.CodeOK},
		{Code: codec.CodeInternal, Message: "driver error"},
		{Code: codec.CodeUnimplemented, Message: ""},
	}
	for _, st := range cases {
		var buf bytes.Buffer
		test.That(t, codec.WriteTrailer(&buf, st), test.ShouldBeNil)
		got, err := codec.ReadTrailer(&buf)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldResemble, st)
	}
}
