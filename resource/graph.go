package resource

import (
	"context"
	"sort"
	"sync"
)

// Graph is the in-memory ResourceName -> Resource map that is the target of every
// RPC (spec.md §3 "ResourceGraph", §4.K). Built once per boot by package robot and
// replaced wholesale on restart; never mutated concurrently with an RPC because
// this agent's server loop and builder share one goroutine group, but the mutex is
// kept for API uniformity with multi-threaded targets (spec.md §4.K, §5, §9 "the
// lock is degenerate and present for API uniformity").
type Graph struct {
	mu        sync.Mutex
	resources map[Name]Resource
	deps      map[Name][]Name
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		resources: make(map[Name]Resource),
		deps:      make(map[Name][]Name),
	}
}

// Insert adds a resource under the given name and its dependency edges. Returns
// ErrDuplicateName if the name is already present (spec.md §3 invariant).
func (g *Graph) Insert(name Name, r Resource, dependsOn []Name) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.resources[name]; ok {
		return ErrDuplicateName
	}
	g.resources[name] = r
	g.deps[name] = append([]Name(nil), dependsOn...)
	return nil
}

// Lookup resolves a Name against the graph. Handlers map a miss to gRPC status 5
// (spec.md §4.K "a miss returns gRPC status 5").
func (g *Graph) Lookup(name Name) (Resource, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.resources[name]
	if !ok {
		return nil, NewNotFoundError(name)
	}
	return r, nil
}

// Names returns every ResourceName currently in the graph. Order is
// insertion-irrelevant per spec.md §3, so callers needing a stable order should
// sort the result themselves (as ResourceNames does).
func (g *Graph) Names() []Name {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Name, 0, len(g.resources))
	for n := range g.resources {
		out = append(out, n)
	}
	return out
}

// ResourceNames returns the sorted resource names, the response of the robot
// service's ResourceNames RPC (spec.md §6).
func (g *Graph) ResourceNames() []Name {
	names := g.Names()
	sort.Slice(names, func(i, j int) bool {
		return names[i].String() < names[j].String()
	})
	return names
}

// DependenciesOf returns the direct dependency edges recorded for name.
func (g *Graph) DependenciesOf(name Name) []Name {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Name(nil), g.deps[name]...)
}

// Len reports the number of resources currently in the graph.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.resources)
}

// Close tears down every resource in the graph, collecting and returning
// individual Close errors rather than stopping on them, mirroring the build phase's per-resource failure
// isolation (spec.md §4.J "Failure semantics").
func (g *Graph) Close(ctx context.Context) []error {
	g.mu.Lock()
	resources := make([]Resource, 0, len(g.resources))
	for _, r := range g.resources {
		resources = append(resources, r)
	}
	g.mu.Unlock()

	var errs []error
	for _, r := range resources {
		if err := r.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// IsomorphicTo reports whether this graph has the same set of ResourceNames as
// other, the testable property of spec.md §8: "building c twice yields isomorphic
// resource graphs (same set of ResourceNames)".
func (g *Graph) IsomorphicTo(other *Graph) bool {
	a, b := g.ResourceNames(), other.ResourceNames()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
