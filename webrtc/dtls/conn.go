package dtls

import (
	"context"
	"net"
	"time"

	"go.viam.com/micro-rdk-agent/webrtc/udpmux"
)

// laneConn adapts the demultiplexer's DTLS lane to a net.Conn, which is what
// pion/dtls expects for its handshake transport. This engine serves a single
// client (spec.md §4.C "Accepts a single client"), so the remote address is
// learned and pinned from the first received datagram.
type laneConn struct {
	lane      *udpmux.LaneHandle
	mux       *udpmux.Mux
	localAddr net.Addr

	remoteAddr net.Addr
	deadline   time.Time
}

func newLaneConn(lane *udpmux.LaneHandle, mux *udpmux.Mux, localAddr net.Addr) *laneConn {
	return &laneConn{lane: lane, mux: mux, localAddr: localAddr}
}

func (c *laneConn) Read(b []byte) (int, error) {
	ctx := context.Background()
	if !c.deadline.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, c.deadline)
		defer cancel()
	}
	data, addr, err := c.lane.Recv(ctx)
	if err != nil {
		return 0, err
	}
	if c.remoteAddr == nil {
		c.remoteAddr = addr
	}
	n := copy(b, data)
	return n, nil
}

func (c *laneConn) Write(b []byte) (int, error) {
	if c.remoteAddr == nil {
		return 0, errNoPeerYet
	}
	udpAddr, ok := c.remoteAddr.(*net.UDPAddr)
	if !ok {
		return 0, errNoPeerYet
	}
	if err := c.mux.WriteTo(b, udpAddr); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (c *laneConn) Close() error {
	c.lane.Release()
	return nil
}

func (c *laneConn) LocalAddr() net.Addr  { return c.localAddr }
func (c *laneConn) RemoteAddr() net.Addr { return c.remoteAddr }

func (c *laneConn) SetDeadline(t time.Time) error {
	c.deadline = t
	return nil
}

func (c *laneConn) SetReadDeadline(t time.Time) error { return c.SetDeadline(t) }
func (c *laneConn) SetWriteDeadline(time.Time) error  { return nil }

type noPeerError string

func (e noPeerError) Error() string { return string(e) }

var errNoPeerYet = noPeerError("dtls: no peer address learned yet")
