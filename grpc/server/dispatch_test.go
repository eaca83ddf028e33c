package server_test

import (
	"context"
	"testing"

	"go.viam.com/test"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"go.viam.com/micro-rdk-agent/grpc/codec"
	"go.viam.com/micro-rdk-agent/grpc/server"
	"go.viam.com/micro-rdk-agent/logging"
	"go.viam.com/micro-rdk-agent/resource"
)

type fakeMotor struct {
	resource.UnimplementedMotor
	position float64
}

func (m *fakeMotor) GetPosition(ctx context.Context) (float64, error) {
	return m.position, nil
}

func buildGraph(t *testing.T) *resource.Graph {
	t.Helper()
	graph := resource.NewGraph()
	name := resource.NewName(resource.APINamespaceRDK.WithComponentType("motor"), "m1")
	err := graph.Insert(name, &fakeMotor{resource.UnimplementedMotor{ResourceName: name}, 4.5}, nil)
	test.That(t, err, test.ShouldBeNil)
	return graph
}

func marshalRequest(t *testing.T, fields map[string]*structpb.Value) []byte {
	t.Helper()
	b, err := proto.Marshal(&structpb.Struct{Fields: fields})
	test.That(t, err, test.ShouldBeNil)
	return b
}

func TestDispatchUnknownPathIsUnimplemented(t *testing.T) {
	d := server.NewDispatcher(buildGraph(t), logging.NewTestLogger())
	_, status := d.Dispatch(context.Background(), "/not.a.real/Method", nil)
	test.That(t, status.Code, test.ShouldEqual, codec.CodeUnimplemented)
}

func TestDispatchResolvesAndInvokesMotor(t *testing.T) {
	d := server.NewDispatcher(buildGraph(t), logging.NewTestLogger())
	payload := marshalRequest(t, map[string]*structpb.Value{
		"name": structpb.NewStringValue("m1"),
	})

	out, status := d.Dispatch(context.Background(), "/viam.component.motor.v1.MotorService/GetPosition", payload)
	test.That(t, status.Code, test.ShouldEqual, codec.CodeOK)

	var resp structpb.Struct
	test.That(t, proto.Unmarshal(out, &resp), test.ShouldBeNil)
	test.That(t, resp.Fields["position"].GetNumberValue(), test.ShouldEqual, 4.5)
}

func TestDispatchMissingNameIsNotFound(t *testing.T) {
	d := server.NewDispatcher(buildGraph(t), logging.NewTestLogger())
	payload := marshalRequest(t, map[string]*structpb.Value{
		"name": structpb.NewStringValue("does-not-exist"),
	})

	_, status := d.Dispatch(context.Background(), "/viam.component.motor.v1.MotorService/GetPosition", payload)
	test.That(t, status.Code, test.ShouldEqual, codec.CodeUnavailable)
}

func TestSetGraphSwapsResolutionTarget(t *testing.T) {
	d := server.NewDispatcher(buildGraph(t), logging.NewTestLogger())
	newGraph := resource.NewGraph()
	d.SetGraph(newGraph)

	payload := marshalRequest(t, map[string]*structpb.Value{
		"name": structpb.NewStringValue("m1"),
	})
	_, status := d.Dispatch(context.Background(), "/viam.component.motor.v1.MotorService/GetPosition", payload)
	test.That(t, status.Code, test.ShouldEqual, codec.CodeUnavailable)
}
