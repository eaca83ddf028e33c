package resource

import (
	"errors"

	"go.viam.com/utils"
)

// Sentinel errors distinguishing the configuration-error kind of spec.md §7.1 from
// the resource-graph lookup failures of §4.K.
var (
	// ErrNotFound is returned by Graph.Lookup when no resource is registered under
	// the given Name. Handlers map this to gRPC status 5 (spec.md §4.K).
	ErrNotFound = errors.New("resource not found")

	// ErrDependencyCycle is returned by the builder (package robot) when the
	// dependency DAG it constructs from a config is not acyclic (spec.md §4.J.3).
	ErrDependencyCycle = errors.New("dependency cycle detected among resources")

	// ErrDuplicateName is returned by Graph.Insert for an already-present Name
	// (spec.md §3 "every ResourceName is unique").
	ErrDuplicateName = errors.New("duplicate resource name")

	// ErrUnimplemented is returned by a capability's default method implementations
	// (spec.md §9 "Polymorphism over capability sets": "default-unimplemented
	// methods returning a well-known error code").
	ErrUnimplemented = errors.New("method not implemented by this resource")
)

// NewNotFoundError annotates ErrNotFound with the offending Name, built on
// go.viam.com/utils.NewResourceNotFoundError the same way the teacher's own
// component packages report a missing dependency (e.g.
// viamrobotics-rdk/components/board/board_test.go's
// rutils.NewResourceNotFoundError(name)).
func NewNotFoundError(name Name) error {
	return &notFoundError{cause: utils.NewResourceNotFoundError(name)}
}

type notFoundError struct{ cause error }

func (e *notFoundError) Error() string { return e.cause.Error() }
func (e *notFoundError) Unwrap() error { return ErrNotFound }

// NewUnimplementedError annotates ErrUnimplemented with the capability and method
// whose default, spec-mandated stub was invoked (spec.md §9).
func NewUnimplementedError(subtype, method string) error {
	return &unimplementedError{subtype: subtype, method: method}
}

type unimplementedError struct{ subtype, method string }

func (e *unimplementedError) Error() string {
	return e.subtype + "." + e.method + " not implemented"
}
func (e *unimplementedError) Unwrap() error { return ErrUnimplemented }

// NewUnimplementedInterfaceError reports that a built resource does not
// satisfy the capability interface a caller type-asserted it against, built
// on go.viam.com/utils.NewUnimplementedInterfaceError the way every teacher
// component package reports the same failure (e.g. board.
// NewUnimplementedInterfaceError wraps this same utils constructor). Device
// gRPC handlers use this when a looked-up resource isn't the subtype its RPC
// path expects (spec.md §4.K).
func NewUnimplementedInterfaceError(expected, actual interface{}) error {
	return utils.NewUnimplementedInterfaceError(expected, actual)
}
