// Package sctp wraps a userland SCTP association configured as server over
// the established DTLS connection (spec.md §4.D). This agent only ever uses
// one ordered, reliable stream (SID 0), so the package exposes that single
// Channel rather than a general multi-stream API.
package sctp

import (
	"fmt"
	"net"

	piensctp "github.com/pion/sctp"

	"go.viam.com/micro-rdk-agent/logging"
	"go.viam.com/micro-rdk-agent/webrtc/pionlog"
)

// streamID is the single stream this agent ever opens (spec.md §4.D "an
// ordered reliable stream with SID 0 and protocol id Binary").
const streamID = 0

// Association is a userland SCTP endpoint running as server over conn (the
// already-handshaken DTLS connection).
type Association struct {
	assoc  *piensctp.Association
	logger logging.Logger
}

// NewAssociation starts the SCTP association. It blocks until the
// association either completes its setup handshake or conn errors.
func NewAssociation(conn net.Conn, logger logging.Logger) (*Association, error) {
	assoc, err := piensctp.Server(piensctp.Config{
		NetConn:       conn,
		LoggerFactory: &pionlog.Factory{Logger: logger},
	})
	if err != nil {
		return nil, fmt.Errorf("starting SCTP association: %w", err)
	}
	return &Association{assoc: assoc, logger: logger}, nil
}

// OpenChannel eagerly opens the ordered reliable SID-0 stream (spec.md §4.D
// "On Connected event, eagerly opens..."). Go's pion/sctp delivers the
// Connected event implicitly through Server's handshake completing, so this
// is called once immediately after NewAssociation succeeds.
func (a *Association) OpenChannel() (*Channel, error) {
	stream, err := a.assoc.OpenStream(streamID, piensctp.PayloadTypeWebRTCBinary)
	if err != nil {
		return nil, fmt.Errorf("opening SCTP stream %d: %w", streamID, err)
	}
	stream.SetReliabilityParams(false, piensctp.ReliabilityTypeReliable, 0)
	return &Channel{stream: stream}, nil
}

// Close tears down the association and every stream opened on it.
func (a *Association) Close() error {
	return a.assoc.Close()
}
