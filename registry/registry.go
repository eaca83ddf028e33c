// Package registry is the (component-type, model) -> constructor table of spec.md
// §4.J: "A ComponentRegistry is a set of tables keyed by model string."
package registry

import (
	"context"
	"fmt"
	"sync"

	"go.viam.com/micro-rdk-agent/config"
	"go.viam.com/micro-rdk-agent/logging"
	"go.viam.com/micro-rdk-agent/resource"
)

// Constructor builds a Resource from a component's config and its already-built
// dependencies (spec.md §4.J "constructors[subtype] : model -> fn(ConfigType,
// deps) -> Resource").
type Constructor func(ctx context.Context, deps resource.Dependencies, conf config.ComponentConfig, logger logging.Logger) (resource.Resource, error)

// DepResolver returns the explicit dependency keys a component declares, beyond
// the implicit board dependency every component gets (spec.md §4.J
// "dep_resolvers[subtype] : model -> fn(ConfigType) -> [ResourceKey]").
type DepResolver func(conf config.ComponentConfig) ([]resource.Name, error)

type key struct {
	subtype string
	model   string
}

// Registry is the set of constructor/dep-resolver tables keyed by (subtype,
// model). Registration after boot (from a dynamically loaded module) is out of
// scope here; only static, boot-time registration is modeled.
type Registry struct {
	mu           sync.Mutex
	constructors map[key]Constructor
	resolvers    map[key]DepResolver
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		constructors: make(map[key]Constructor),
		resolvers:    make(map[key]DepResolver),
	}
}

// RegisterComponent registers a constructor for (subtype, model). Re-registering
// the same key is a hard error per spec.md §4.J.5 ("duplicate registration is a
// hard error"); following the teacher's registry_test.go convention this is
// enforced by panicking at registration time rather than returning an error,
// since registration only ever happens at package-init time from trusted code.
func (r *Registry) RegisterComponent(subtype string, model string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{subtype: subtype, model: model}
	if _, ok := r.constructors[k]; ok {
		panic(fmt.Sprintf("component with subtype %q and model %q already registered", subtype, model))
	}
	r.constructors[k] = ctor
}

// RegisterDepResolver registers a dependency resolver for (subtype, model). It is
// optional: a subtype/model with no resolver registered has no explicit
// dependency edges beyond the implicit board (spec.md §4.J.2 "A missing resolver
// yields no edges").
func (r *Registry) RegisterDepResolver(subtype string, model string, resolver DepResolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers[key{subtype: subtype, model: model}] = resolver
}

// ComponentLookup returns the constructor for (subtype, model), or nil if none is
// registered.
func (r *Registry) ComponentLookup(subtype, model string) Constructor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.constructors[key{subtype: subtype, model: model}]
}

// DepResolverLookup returns the dependency resolver for (subtype, model), or nil.
func (r *Registry) DepResolverLookup(subtype, model string) DepResolver {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolvers[key{subtype: subtype, model: model}]
}

// Default is the process-wide registry built-in component models register
// themselves into via RegisterComponent in their package init(), the same pattern
// the teacher's registry package uses (spec.md §4.J.5 "Register built-in models
// before user-supplied ones").
var Default = New()
