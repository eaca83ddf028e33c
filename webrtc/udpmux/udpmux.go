// Package udpmux implements the UDP demultiplexer of spec.md §4.A: one UDP
// socket, two logical lanes (STUN and DTLS) selected by a one-byte sniff of
// each inbound datagram.
package udpmux

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"syscall"

	"go.viam.com/micro-rdk-agent/logging"
)

// Lane identifies which consumer a datagram belongs to.
type Lane int

const (
	LaneSTUN Lane = iota
	LaneDTLS
)

// laneBufferSize bounds how many not-yet-read datagrams each lane holds
// before newer ones are dropped; a lane with no active reader is expected to
// have none outstanding for long (spec.md §4.A "wakes it and yields").
const laneBufferSize = 32

// Datagram is one classified inbound packet.
type Datagram struct {
	Data []byte
	Addr *net.UDPAddr
}

// classify implements spec.md §4.A's classification rule: peek (here, inspect
// the already-received buffer) the first 13 bytes; fewer than that and the
// datagram is discarded. byte 0 < 2 is STUN, otherwise DTLS. The embedded
// length fields are advisory only — classification is by byte 0 alone.
func classify(data []byte) (Lane, bool) {
	if len(data) < 13 {
		return 0, false
	}
	if data[0] < 2 {
		return LaneSTUN, true
	}
	return LaneDTLS, true
}

// Mux owns the single non-blocking UDP socket and fans inbound datagrams out
// to at most one reader per lane.
type Mux struct {
	conn   *net.UDPConn
	logger logging.Logger

	mu        sync.Mutex
	stunTaken bool
	dtlsTaken bool

	stunCh chan Datagram
	dtlsCh chan Datagram
	closed chan struct{}
}

// New starts demultiplexing conn in a background goroutine.
func New(conn *net.UDPConn, logger logging.Logger) *Mux {
	m := &Mux{
		conn:   conn,
		logger: logger,
		stunCh: make(chan Datagram, laneBufferSize),
		dtlsCh: make(chan Datagram, laneBufferSize),
		closed: make(chan struct{}),
	}
	go m.readLoop()
	return m
}

func (m *Mux) readLoop() {
	buf := make([]byte, 1500)
	for {
		n, addr, err := m.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-m.closed:
				return
			default:
			}
			m.logger.Warnw("udpmux read error", "error", err)
			return
		}
		lane, ok := classify(buf[:n])
		if !ok {
			continue // fewer than 13 bytes: discard (spec.md §4.A)
		}
		dg := Datagram{Data: append([]byte(nil), buf[:n]...), Addr: addr}
		switch lane {
		case LaneSTUN:
			m.deliver(m.stunCh, dg)
		case LaneDTLS:
			m.deliver(m.dtlsCh, dg)
		}
	}
}

func (m *Mux) deliver(ch chan Datagram, dg Datagram) {
	select {
	case ch <- dg:
	default:
		m.logger.Debugw("udpmux dropping datagram, lane not draining")
	}
}

// LaneHandle is an acquired, exclusive reader for one lane.
type LaneHandle struct {
	mux  *Mux
	lane Lane
	ch   chan Datagram
}

// AcquireSTUNLane obtains the STUN lane. ok is false if it is already held
// (spec.md §4.A "a lane is obtained once").
func (m *Mux) AcquireSTUNLane() (*LaneHandle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stunTaken {
		return nil, false
	}
	m.stunTaken = true
	return &LaneHandle{mux: m, lane: LaneSTUN, ch: m.stunCh}, true
}

// AcquireDTLSLane obtains the DTLS lane.
func (m *Mux) AcquireDTLSLane() (*LaneHandle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dtlsTaken {
		return nil, false
	}
	m.dtlsTaken = true
	return &LaneHandle{mux: m, lane: LaneDTLS, ch: m.dtlsCh}, true
}

// Recv blocks until a datagram for this lane arrives, ctx is done, or the
// mux is closed (net.ErrClosed).
func (h *LaneHandle) Recv(ctx context.Context) ([]byte, *net.UDPAddr, error) {
	select {
	case dg := <-h.ch:
		return dg.Data, dg.Addr, nil
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case <-h.mux.closed:
		return nil, nil, net.ErrClosed
	}
}

// Release returns the lane so it may be acquired again.
func (h *LaneHandle) Release() {
	h.mux.mu.Lock()
	defer h.mux.mu.Unlock()
	switch h.lane {
	case LaneSTUN:
		h.mux.stunTaken = false
	case LaneDTLS:
		h.mux.dtlsTaken = false
	}
}

// WriteTo sends b to addr, retrying on transient resource-exhaustion errors
// (spec.md §4.A "Sends are retried on WouldBlock and OutOfMemory").
func (m *Mux) WriteTo(b []byte, addr *net.UDPAddr) error {
	for {
		_, err := m.conn.WriteToUDP(b, addr)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
	}
}

func isRetryable(err error) bool {
	var sysErr *os.SyscallError
	if errors.As(err, &sysErr) {
		return errors.Is(sysErr.Err, syscall.EWOULDBLOCK) || errors.Is(sysErr.Err, syscall.ENOBUFS)
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Close tears down the socket and unblocks any pending Recv calls.
func (m *Mux) Close() error {
	close(m.closed)
	return m.conn.Close()
}
