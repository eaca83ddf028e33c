package sctp

import (
	piensctp "github.com/pion/sctp"
)

// Channel is the single SID-0 ordered reliable stream this agent's gRPC codec
// runs atop (spec.md §4.D: "{ tx_event_sender, stream_id, rx_buffer+waker }").
// Go's io.Reader contract already requires callers to tolerate a Read
// returning fewer bytes than requested, which is exactly the short-read
// behavior spec.md §4.D allows ("a read must make forward progress") — no
// translation layer is needed on top of pion/sctp's Stream.Read. On
// association loss, Read returns io.EOF (spec.md §4.D "On association loss
// the channel's read returns EOF").
type Channel struct {
	stream *piensctp.Stream
}

func (c *Channel) Read(b []byte) (int, error)  { return c.stream.Read(b) }
func (c *Channel) Write(b []byte) (int, error) { return c.stream.Write(b) }
func (c *Channel) Close() error                { return c.stream.Close() }

// StreamID returns the SCTP stream identifier backing this channel, always 0.
func (c *Channel) StreamID() uint16 { return streamID }
