package registry_test

import (
	"context"
	"testing"

	"go.viam.com/test"

	"go.viam.com/micro-rdk-agent/config"
	"go.viam.com/micro-rdk-agent/logging"
	"go.viam.com/micro-rdk-agent/registry"
	"go.viam.com/micro-rdk-agent/resource"
)

func TestComponentRegistry(t *testing.T) {
	r := registry.New()
	ctor := func(ctx context.Context, deps resource.Dependencies, conf config.ComponentConfig, logger logging.Logger) (resource.Resource, error) {
		return nil, nil
	}
	r.RegisterComponent("motor", "acme:test:x", ctor)

	test.That(t, func() { r.RegisterComponent("motor", "acme:test:x", ctor) }, test.ShouldPanic)

	found := r.ComponentLookup("motor", "acme:test:x")
	test.That(t, found, test.ShouldNotBeNil)
	test.That(t, r.ComponentLookup("motor", "acme:test:z"), test.ShouldBeNil)
}

func TestDepResolverRegistry(t *testing.T) {
	r := registry.New()
	resolver := func(conf config.ComponentConfig) ([]resource.Name, error) {
		return []resource.Name{resource.NewName(resource.APINamespaceRDK.WithComponentType("board"), "board1")}, nil
	}
	r.RegisterDepResolver("motor", "acme:test:x", resolver)

	test.That(t, r.DepResolverLookup("motor", "acme:test:x"), test.ShouldNotBeNil)
	test.That(t, r.DepResolverLookup("motor", "nope"), test.ShouldBeNil)
}
