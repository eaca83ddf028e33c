// Package server holds the path -> handler dispatch table shared by the HTTP/2
// transport (4.F) and the gRPC-over-SCTP transport (4.E), resolving every
// handler's `name` field against a shared resource.Graph (spec.md §4.K).
//
// Per the unified-dispatch resolution of spec.md §9 Open Question 3, this is the
// single table both transports call into; there is no separate WebRTC-only or
// HTTP/2-only method subset in this port.
package server

import (
	"context"
	"sync"

	"go.viam.com/micro-rdk-agent/grpc/codec"
	"go.viam.com/micro-rdk-agent/logging"
	"go.viam.com/micro-rdk-agent/resource"
)

// Handler serves one unary RPC. It returns either a response payload with a zero
// Status, or a nonzero Status serialized into trailers with no data frame
// (spec.md §4.E).
type Handler func(ctx context.Context, graph *resource.Graph, payload []byte) ([]byte, codec.Status)

// Dispatcher is the path -> Handler lookup table (spec.md §4.E "Dispatch").
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	graph    *resource.Graph
	logger   logging.Logger
}

// NewDispatcher returns a Dispatcher that resolves names against graph.
// graph may be swapped out wholesale with SetGraph when the robot restarts.
func NewDispatcher(graph *resource.Graph, logger logging.Logger) *Dispatcher {
	d := &Dispatcher{handlers: make(map[string]Handler), graph: graph, logger: logger}
	RegisterAll(d)
	return d
}

// SetGraph swaps the resource graph the dispatcher resolves names against.
func (d *Dispatcher) SetGraph(graph *resource.Graph) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.graph = graph
}

// Register adds a handler for path. Re-registering panics, since the dispatch
// table is only ever populated once at boot from this package's RegisterAll.
func (d *Dispatcher) Register(path string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.handlers[path]; ok {
		panic("duplicate gRPC handler registration for " + path)
	}
	d.handlers[path] = h
}

// Dispatch resolves path to a handler and invokes it. An unknown path returns
// status 12 "unimplemented" (spec.md §4.E, §8 scenario 6).
//
// Every call is tracked for the lifetime of the handler so robot.GetOperations
// can report it; the handler runs under the operation's context, which
// operation.Manager.Cancel cancels. The robot service registers no
// CancelOperation handler (spec.md's operation
// tracking supplement, grounded on app_client.rs's operation-id bookkeeping).
func (d *Dispatcher) Dispatch(ctx context.Context, path string, payload []byte) ([]byte, codec.Status) {
	d.mu.RLock()
	h, ok := d.handlers[path]
	graph := d.graph
	d.mu.RUnlock()
	if !ok {
		return nil, codec.Unimplemented(path)
	}
	opCtx, end := OperationManager.Begin(ctx, path)
	defer end()
	return h(opCtx, graph, payload)
}

// resolve looks up name against the graph, mapping a miss to gRPC status 5
// (spec.md §4.K).
func resolve(graph *resource.Graph, name resource.Name) (resource.Resource, *codec.Status) {
	r, err := graph.Lookup(name)
	if err != nil {
		s := codec.Status{Code: codec.CodeUnavailable, Message: err.Error()}
		return nil, &s
	}
	return r, nil
}

// internalError wraps a driver error into the internal-error status (spec.md §7.6
// "Driver errors... converts them to a nonzero grpc-status (13 internal...)").
func internalError(err error) codec.Status {
	return codec.Status{Code: codec.CodeInternal, Message: err.Error()}
}
