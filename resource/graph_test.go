package resource_test

import (
	"context"
	"testing"

	"go.viam.com/test"

	"go.viam.com/micro-rdk-agent/resource"
)

type fakeResource struct {
	name   resource.Name
	closed bool
}

func (f *fakeResource) Name() resource.Name { return f.name }
func (f *fakeResource) Close(context.Context) error {
	f.closed = true
	return nil
}

func TestGraphInsertAndLookup(t *testing.T) {
	g := resource.NewGraph()
	boardName := resource.NewName(resource.APINamespaceRDK.WithComponentType("board"), "board1")
	motorName := resource.NewName(resource.APINamespaceRDK.WithComponentType("motor"), "m1")

	test.That(t, g.Insert(boardName, &fakeResource{name: boardName}, nil), test.ShouldBeNil)
	test.That(t, g.Insert(motorName, &fakeResource{name: motorName}, []resource.Name{boardName}), test.ShouldBeNil)

	// Duplicate insertion is rejected (spec.md §3 invariant).
	err := g.Insert(boardName, &fakeResource{name: boardName}, nil)
	test.That(t, err, test.ShouldEqual, resource.ErrDuplicateName)

	found, err := g.Lookup(motorName)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, found.Name(), test.ShouldResemble, motorName)

	test.That(t, g.DependenciesOf(motorName), test.ShouldResemble, []resource.Name{boardName})
	test.That(t, len(g.ResourceNames()), test.ShouldEqual, 2)
}

func TestGraphLookupMiss(t *testing.T) {
	g := resource.NewGraph()
	missing := resource.NewName(resource.APINamespaceRDK.WithComponentType("motor"), "nope")
	_, err := g.Lookup(missing)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestGraphIsomorphic(t *testing.T) {
	build := func() *resource.Graph {
		g := resource.NewGraph()
		n1 := resource.NewName(resource.APINamespaceRDK.WithComponentType("motor"), "m1")
		n2 := resource.NewName(resource.APINamespaceRDK.WithComponentType("board"), "b1")
		_ = g.Insert(n1, &fakeResource{name: n1}, nil)
		_ = g.Insert(n2, &fakeResource{name: n2}, nil)
		return g
	}
	// Testable property (spec.md §8): building a config twice yields isomorphic
	// graphs (same set of ResourceNames).
	test.That(t, build().IsomorphicTo(build()), test.ShouldBeTrue)
}

func TestGraphClose(t *testing.T) {
	g := resource.NewGraph()
	n1 := resource.NewName(resource.APINamespaceRDK.WithComponentType("motor"), "m1")
	r := &fakeResource{name: n1}
	test.That(t, g.Insert(n1, r, nil), test.ShouldBeNil)
	errs := g.Close(context.Background())
	test.That(t, len(errs), test.ShouldEqual, 0)
	test.That(t, r.closed, test.ShouldBeTrue)
}
