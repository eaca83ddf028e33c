// Package operation tracks in-flight calls so the robot service can answer
// GetOperations (SPEC_FULL.md §2 "Operation tracking", a feature the distilled
// spec.md dropped but original_source/ tracks per-call). grpc/server's
// Dispatcher registers every call it dispatches, whatever the method.
package operation

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Operation is one in-flight long-running call.
type Operation struct {
	ID     uuid.UUID
	Method string
	cancel context.CancelFunc
}

// Manager tracks the set of currently running operations.
type Manager struct {
	mu  sync.Mutex
	ops map[uuid.UUID]*Operation
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{ops: make(map[uuid.UUID]*Operation)}
}

// Begin registers a new operation for method and returns a context that is
// cancelled when the operation is removed, plus a cleanup func the caller
// must defer.
func (m *Manager) Begin(ctx context.Context, method string) (context.Context, func()) {
	opCtx, cancel := context.WithCancel(ctx)
	op := &Operation{ID: uuid.New(), Method: method, cancel: cancel}
	m.mu.Lock()
	m.ops[op.ID] = op
	m.mu.Unlock()
	return opCtx, func() {
		m.mu.Lock()
		delete(m.ops, op.ID)
		m.mu.Unlock()
		cancel()
	}
}

// List returns a snapshot of all currently running operations.
func (m *Manager) List() []*Operation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Operation, 0, len(m.ops))
	for _, op := range m.ops {
		out = append(out, op)
	}
	return out
}

// Cancel stops the named operation, if it is still running.
func (m *Manager) Cancel(id uuid.UUID) bool {
	m.mu.Lock()
	op, ok := m.ops[id]
	m.mu.Unlock()
	if !ok {
		return false
	}
	op.cancel()
	return true
}
