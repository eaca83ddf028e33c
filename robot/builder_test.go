package robot_test

import (
	"context"
	"testing"

	"go.viam.com/test"

	"go.viam.com/micro-rdk-agent/config"
	"go.viam.com/micro-rdk-agent/logging"
	"go.viam.com/micro-rdk-agent/registry"
	"go.viam.com/micro-rdk-agent/resource"
	"go.viam.com/micro-rdk-agent/robot"
)

type fakeBoard struct {
	resource.UnimplementedBoard
}

type fakeMotor struct {
	resource.UnimplementedMotor
	boardSeen bool
}

func registerFakes(r *registry.Registry) {
	r.RegisterComponent("board", "acme:fake:board", func(ctx context.Context, deps resource.Dependencies, conf config.ComponentConfig, logger logging.Logger) (resource.Resource, error) {
		return &fakeBoard{resource.UnimplementedBoard{ResourceName: conf.ResourceName()}}, nil
	})
	r.RegisterComponent("motor", "acme:fake:motor", func(ctx context.Context, deps resource.Dependencies, conf config.ComponentConfig, logger logging.Logger) (resource.Resource, error) {
		_, boardSeen := deps[resource.NewName(resource.APINamespaceRDK.WithComponentType("board"), "board1")]
		return &fakeMotor{resource.UnimplementedMotor{ResourceName: conf.ResourceName()}, boardSeen}, nil
	})
}

func testConfig() config.RobotConfig {
	return config.RobotConfig{
		Components: []config.ComponentConfig{
			{Name: "board1", Type: "board", Model: "acme:fake:board"},
			{Name: "m1", Type: "motor", Model: "acme:fake:motor"},
		},
	}
}

func TestBuildResolvesImplicitBoardDependency(t *testing.T) {
	reg := registry.New()
	registerFakes(reg)
	b := robot.New(reg, logging.NewTestLogger())

	graph, err := b.Build(context.Background(), testConfig())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, graph.Len(), test.ShouldEqual, 2)

	motorName := resource.NewName(resource.APINamespaceRDK.WithComponentType("motor"), "m1")
	found, err := graph.Lookup(motorName)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, found.(*fakeMotor).boardSeen, test.ShouldBeTrue)
}

func TestBuildTwiceIsIsomorphic(t *testing.T) {
	// Testable property (spec.md §8).
	reg := registry.New()
	registerFakes(reg)
	b := robot.New(reg, logging.NewTestLogger())

	g1, err := b.Build(context.Background(), testConfig())
	test.That(t, err, test.ShouldBeNil)
	g2, err := b.Build(context.Background(), testConfig())
	test.That(t, err, test.ShouldBeNil)

	test.That(t, g1.IsomorphicTo(g2), test.ShouldBeTrue)
}

func TestBuildIsolatesConstructorFailure(t *testing.T) {
	reg := registry.New()
	registerFakes(reg)
	reg.RegisterComponent("motor", "acme:fake:broken", func(ctx context.Context, deps resource.Dependencies, conf config.ComponentConfig, logger logging.Logger) (resource.Resource, error) {
		return nil, context.DeadlineExceeded
	})

	conf := config.RobotConfig{
		Components: []config.ComponentConfig{
			{Name: "board1", Type: "board", Model: "acme:fake:board"},
			{Name: "bad", Type: "motor", Model: "acme:fake:broken"},
			{Name: "good", Type: "motor", Model: "acme:fake:motor"},
		},
	}
	b := robot.New(reg, logging.NewTestLogger())
	graph, err := b.Build(context.Background(), conf)
	test.That(t, err, test.ShouldNotBeNil) // the broken motor's error is reported...
	test.That(t, graph.Len(), test.ShouldEqual, 2) // ...but board1 and good still built.
}

func TestBuildDetectsCycle(t *testing.T) {
	reg := registry.New()
	registerFakes(reg)
	reg.RegisterDepResolver("motor", "acme:fake:motor", func(conf config.ComponentConfig) ([]resource.Name, error) {
		if conf.Name == "m1" {
			return []resource.Name{resource.NewName(resource.APINamespaceRDK.WithComponentType("motor"), "m2")}, nil
		}
		return []resource.Name{resource.NewName(resource.APINamespaceRDK.WithComponentType("motor"), "m1")}, nil
	})
	conf := config.RobotConfig{
		Components: []config.ComponentConfig{
			{Name: "m1", Type: "motor", Model: "acme:fake:motor"},
			{Name: "m2", Type: "motor", Model: "acme:fake:motor"},
		},
	}
	b := robot.New(reg, logging.NewTestLogger())
	_, err := b.Build(context.Background(), conf)
	test.That(t, err, test.ShouldNotBeNil)
}
