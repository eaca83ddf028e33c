package session_test

import (
	"bytes"
	"context"
	"testing"

	"go.viam.com/test"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"go.viam.com/micro-rdk-agent/grpc/codec"
	"go.viam.com/micro-rdk-agent/grpc/server"
	"go.viam.com/micro-rdk-agent/logging"
	"go.viam.com/micro-rdk-agent/resource"
	"go.viam.com/micro-rdk-agent/webrtc/session"
)

// pipeChannel is an in-memory session.Channel: writes from one side land in
// a buffer the other side reads from, so a test can drive both the client
// and server halves of Serve's request loop in one goroutine pair.
type pipeChannel struct {
	in  *bytes.Buffer
	out *bytes.Buffer
}

func (c *pipeChannel) Read(b []byte) (int, error)  { return c.in.Read(b) }
func (c *pipeChannel) Write(b []byte) (int, error) { return c.out.Write(b) }
func (c *pipeChannel) Close() error                { return nil }

func marshalStruct(t *testing.T, fields map[string]*structpb.Value) []byte {
	t.Helper()
	b, err := proto.Marshal(&structpb.Struct{Fields: fields})
	test.That(t, err, test.ShouldBeNil)
	return b
}

func buildGraph(t *testing.T) *resource.Graph {
	t.Helper()
	graph := resource.NewGraph()
	name := resource.NewName(resource.APINamespaceRDK.WithComponentType("motor"), "m1")
	err := graph.Insert(name, &fakeMotor{resource.UnimplementedMotor{ResourceName: name}, 2.5}, nil)
	test.That(t, err, test.ShouldBeNil)
	return graph
}

type fakeMotor struct {
	resource.UnimplementedMotor
	position float64
}

func (m *fakeMotor) GetPosition(ctx context.Context) (float64, error) {
	return m.position, nil
}

func TestServeDispatchesOneRequestThenRespectsEOF(t *testing.T) {
	d := server.NewDispatcher(buildGraph(t), logging.NewTestLogger())

	// requests: what the server reads from; responses: what the server
	// writes to and the test reads assertions from.
	requests := &bytes.Buffer{}
	responses := &bytes.Buffer{}
	channel := &pipeChannel{in: requests, out: responses}

	test.That(t, codec.WriteEnvelope(requests, "/viam.component.motor.v1.MotorService/GetPosition"), test.ShouldBeNil)
	payload := marshalStruct(t, map[string]*structpb.Value{"name": structpb.NewStringValue("m1")})
	test.That(t, codec.WriteFrame(requests, payload), test.ShouldBeNil)

	err := session.Serve(context.Background(), channel, d, logging.NewTestLogger())
	test.That(t, err, test.ShouldBeNil)

	respPayload, err := codec.ReadFrame(responses)
	test.That(t, err, test.ShouldBeNil)
	var resp structpb.Struct
	test.That(t, proto.Unmarshal(respPayload, &resp), test.ShouldBeNil)
	test.That(t, resp.Fields["position"].GetNumberValue(), test.ShouldEqual, 2.5)

	trailer, err := codec.ReadTrailer(responses)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, trailer.Code, test.ShouldEqual, codec.CodeOK)
}

func TestServeWritesTrailerWithoutDataFrameOnError(t *testing.T) {
	d := server.NewDispatcher(buildGraph(t), logging.NewTestLogger())

	requests := &bytes.Buffer{}
	responses := &bytes.Buffer{}
	channel := &pipeChannel{in: requests, out: responses}

	test.That(t, codec.WriteEnvelope(requests, "/not.a.real/Method"), test.ShouldBeNil)
	test.That(t, codec.WriteFrame(requests, nil), test.ShouldBeNil)

	err := session.Serve(context.Background(), channel, d, logging.NewTestLogger())
	test.That(t, err, test.ShouldBeNil)

	trailer, err := codec.ReadTrailer(responses)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, trailer.Code, test.ShouldEqual, codec.CodeUnimplemented)

	// no data frame was written before the trailer
	test.That(t, responses.Len(), test.ShouldEqual, 0)
}
