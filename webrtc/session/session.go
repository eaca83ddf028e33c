// Package session orchestrates one inbound WebRTC offer end to end: ICE
// connectivity, then DTLS handshake, then the SCTP association and its single
// data channel (spec.md §4.I "on signaling, construct {ICE agent, DTLS, SCTP},
// await first data channel, then hand the channel to the gRPC-over-SCTP
// handler"). One session (a Pending, then the Channel that Complete returns)
// exists per accepted offer; it is torn down when the
// peer closes or the channel read returns EOF.
package session

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.viam.com/micro-rdk-agent/logging"
	"go.viam.com/micro-rdk-agent/webrtc/dtls"
	"go.viam.com/micro-rdk-agent/webrtc/ice"
	"go.viam.com/micro-rdk-agent/webrtc/sctp"
	"go.viam.com/micro-rdk-agent/webrtc/udpmux"
)

// Channel is the minimal surface webrtc/session hands back to its caller:
// an io.ReadWriteCloser. Close closes only the data channel; Complete returns
// the teardown of everything beneath it as a separate func.
type Channel interface {
	Read(b []byte) (int, error)
	Write(b []byte) (int, error)
	Close() error
}

// Pending is a session whose local ICE candidates have been gathered but
// whose connectivity checks have not yet run. The caller needs this split
// because the SDP answer (spec.md §6) must carry the local candidate set and
// DTLS fingerprint *before* the peer can start sending connectivity checks.
type Pending struct {
	agent     *ice.Agent
	mux       *udpmux.Mux
	stunLane  *udpmux.LaneHandle
	localAddr *net.UDPAddr
	logger    logging.Logger
	released  bool
}

// Prepare acquires the mux's STUN lane and gathers this agent's local
// candidate set (spec.md §4.B host + one-shot-STUN srflx). The returned
// Pending must eventually have either Complete or Release called on it.
func Prepare(ctx context.Context, mux *udpmux.Mux, localAddr *net.UDPAddr, creds ice.Credentials, logger logging.Logger) (*Pending, error) {
	stunLane, ok := mux.AcquireSTUNLane()
	if !ok {
		return nil, errors.New("session: STUN lane already claimed by another session")
	}

	agent, err := ice.NewAgent(ctx, mux, stunLane, localAddr, creds, logger)
	if err != nil {
		stunLane.Release()
		return nil, fmt.Errorf("gathering local ICE candidates: %w", err)
	}

	return &Pending{agent: agent, mux: mux, stunLane: stunLane, localAddr: localAddr, logger: logger}, nil
}

// LocalCandidates returns the gathered local candidate set, for embedding in
// the SDP answer.
func (p *Pending) LocalCandidates() []ice.Candidate {
	return p.agent.LocalCandidates()
}

// Release abandons a Pending that will never be completed (e.g. because
// sending the SDP answer failed), returning the STUN lane to the mux.
func (p *Pending) Release() {
	if p.released {
		return
	}
	p.released = true
	p.stunLane.Release()
}

// Complete runs ICE connectivity checks to completion, then DTLS and SCTP
// (spec.md §4.B -> §4.C -> §4.D), trickling remoteCandidates into the agent
// as they arrive. Closing remoteCandidates signals that no more are coming.
func (p *Pending) Complete(ctx context.Context, dtlsEngine *dtls.Engine, remoteCandidates <-chan ice.Candidate) (Channel, func() error, error) {
	p.released = true // ownership of the STUN lane transfers to the agent's run loop below

	forwardCtx, stopForwarding := context.WithCancel(ctx)
	defer stopForwarding()
	go forwardRemoteCandidates(forwardCtx, p.agent, remoteCandidates)

	// The agent keeps answering the peer's checks for the session's lifetime;
	// the STUN lane is released when its run loop returns.
	agentCtx, stopAgent := context.WithCancel(ctx)
	runErrCh := make(chan error, 1)
	go func() {
		runErrCh <- p.agent.Run(agentCtx)
		p.stunLane.Release()
	}()

	select {
	case <-p.agent.Done():
	case err := <-runErrCh:
		stopAgent()
		if err == nil {
			err = errors.New("ICE agent stopped before any candidate pair succeeded")
		}
		return nil, nil, fmt.Errorf("establishing ICE connectivity: %w", err)
	case <-ctx.Done():
		stopAgent()
		return nil, nil, ctx.Err()
	}

	dtlsLane, ok := p.mux.AcquireDTLSLane()
	if !ok {
		stopAgent()
		return nil, nil, errors.New("session: DTLS lane already claimed by another session")
	}
	dtlsConn, err := dtlsEngine.Accept(ctx, p.mux, dtlsLane, p.localAddr)
	if err != nil {
		stopAgent()
		dtlsLane.Release()
		return nil, nil, fmt.Errorf("DTLS handshake: %w", err)
	}

	assoc, err := sctp.NewAssociation(dtlsConn, p.logger)
	if err != nil {
		stopAgent()
		_ = dtlsConn.Close()
		return nil, nil, fmt.Errorf("starting SCTP association: %w", err)
	}

	channel, err := assoc.OpenChannel()
	if err != nil {
		stopAgent()
		_ = assoc.Close()
		return nil, nil, fmt.Errorf("opening SCTP data channel: %w", err)
	}

	teardown := func() error {
		defer stopAgent()
		closeErr := channel.Close()
		if err := assoc.Close(); err != nil && closeErr == nil {
			closeErr = err
		}
		return closeErr
	}
	return channel, teardown, nil
}

// forwardRemoteCandidates copies candidates trickled in over the signaling
// stream into the agent, and tells the agent when no more are coming.
func forwardRemoteCandidates(ctx context.Context, agent *ice.Agent, remote <-chan ice.Candidate) {
	for {
		select {
		case c, ok := <-remote:
			if !ok {
				agent.CloseCandidateChannel()
				return
			}
			agent.AddRemoteCandidate(c)
		case <-ctx.Done():
			return
		}
	}
}
