package loop

import (
	"context"
	"fmt"
	"net"

	"go.viam.com/micro-rdk-agent/app"
	dispatch "go.viam.com/micro-rdk-agent/grpc/server"
	httpgrpc "go.viam.com/micro-rdk-agent/grpc/http2"
	"go.viam.com/micro-rdk-agent/logging"
	"go.viam.com/micro-rdk-agent/webrtc/dtls"
	"go.viam.com/micro-rdk-agent/webrtc/ice"
	"go.viam.com/micro-rdk-agent/webrtc/sdp"
	"go.viam.com/micro-rdk-agent/webrtc/session"
	"go.viam.com/micro-rdk-agent/webrtc/udpmux"
)

// ListenPort is the fixed LAN gRPC TCP port spec.md §4.I binds (and the port
// the mDNS advertiser publishes alongside it).
const ListenPort = 12346

// remoteCandidateBuffer bounds how many trickled candidates can queue before
// the ICE agent's forwarder drains them; generously sized since a session
// only ever gathers a handful of candidates.
const remoteCandidateBuffer = 8

// Loop is spec.md §4.I's dual-transport server loop: HTTP/2 gRPC over a TCP
// listener, and gRPC-over-SCTP over WebRTC sessions arriving from the app
// client's signaling task. Both dispatch into the same Dispatcher.
type Loop struct {
	HTTP2      *httpgrpc.Server
	Dispatcher *dispatch.Dispatcher
	Mux        *udpmux.Mux
	LocalAddr  *net.UDPAddr
	DTLS       *dtls.Engine
	Sessions   <-chan *app.SignalingSession
	Logger     logging.Logger
}

// Run binds the TCP listener and serves both transports until ctx is
// canceled. Each signaling session is handled on its own goroutine; a
// session's failure is logged and ignored, the loop keeps accepting (spec.md
// §4.I "Failure of any single session is logged and ignored").
func (l *Loop) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", ListenPort))
	if err != nil {
		return fmt.Errorf("binding LAN gRPC listener: %w", err)
	}

	httpErrCh := make(chan error, 1)
	go func() {
		if err := l.HTTP2.Serve(lis); err != nil {
			httpErrCh <- fmt.Errorf("HTTP/2 server stopped: %w", err)
		}
	}()

	go func() {
		<-ctx.Done()
		l.HTTP2.Stop()
		_ = lis.Close()
	}()

	for {
		select {
		case sess, ok := <-l.Sessions:
			if !ok {
				<-ctx.Done()
				return ctx.Err()
			}
			go l.handleSession(ctx, sess)
		case err := <-httpErrCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// handleSession drives one signaling offer through B (ICE) -> C (DTLS) -> D
// (SCTP) -> E (gRPC codec), per spec.md §4.I's signaling branch.
func (l *Loop) handleSession(ctx context.Context, sess *app.SignalingSession) {
	defer sess.Close()

	payload, err := sess.Recv()
	if err != nil {
		l.Logger.Warnw("signaling: failed to receive offer", "error", err)
		return
	}
	frame, err := decodeSignalingFrame(payload)
	if err != nil || frame.init == "" {
		l.Logger.Warnw("signaling: first frame was not an SDP offer", "error", err)
		return
	}

	offer, err := sdp.ParseOffer(frame.init)
	if err != nil {
		l.Logger.Warnw("signaling: invalid SDP offer", "error", err)
		return
	}

	localUfrag, localPwd, err := generateLocalICECredentials()
	if err != nil {
		l.Logger.Errorw("signaling: generating local ICE credentials", "error", err)
		return
	}

	creds := ice.Credentials{
		LocalUfrag:  localUfrag,
		LocalPwd:    localPwd,
		RemoteUfrag: offer.Ufrag,
		RemotePwd:   offer.Pwd,
	}

	pending, err := session.Prepare(ctx, l.Mux, l.LocalAddr, creds, l.Logger)
	if err != nil {
		l.Logger.Warnw("signaling: preparing ICE agent", "error", err)
		return
	}

	answer := sdp.BuildAnswer(sdp.Answer{
		Ufrag:       localUfrag,
		Pwd:         localPwd,
		Fingerprint: l.DTLS.Fingerprint,
		Candidates:  pending.LocalCandidates(),
	})
	answerPayload, err := encodeInitFrame(answer)
	if err != nil {
		pending.Release()
		l.Logger.Errorw("signaling: encoding SDP answer", "error", err)
		return
	}
	if err := sess.Send(answerPayload); err != nil {
		pending.Release()
		l.Logger.Warnw("signaling: sending SDP answer", "error", err)
		return
	}

	remoteCandidates := make(chan ice.Candidate, remoteCandidateBuffer)
	for _, c := range offer.Candidates {
		remoteCandidates <- c
	}
	go l.trickleRemoteCandidates(ctx, sess, remoteCandidates)

	channel, teardown, err := pending.Complete(ctx, l.DTLS, remoteCandidates)
	if err != nil {
		l.Logger.Warnw("signaling: establishing WebRTC session", "error", err)
		return
	}
	defer teardown()

	if err := session.Serve(ctx, channel, l.Dispatcher, l.Logger); err != nil {
		l.Logger.Debugw("webrtc session ended", "error", err)
	}
}

// trickleRemoteCandidates forwards subsequent "update" frames on sess as
// remote ICE candidates, closing out when the peer sends "done" or the
// stream ends (spec.md §4.B "remote candidates, received lazily...over a
// candidate_channel from signaling (trickle)").
func (l *Loop) trickleRemoteCandidates(ctx context.Context, sess *app.SignalingSession, out chan<- ice.Candidate) {
	defer close(out)
	for {
		payload, err := sess.Recv()
		if err != nil {
			return
		}
		frame, err := decodeSignalingFrame(payload)
		if err != nil {
			l.Logger.Warnw("signaling: malformed trickle frame", "error", err)
			continue
		}
		if frame.done {
			return
		}
		if frame.update == "" {
			continue
		}
		c, err := sdp.ParseCandidateLine(frame.update)
		if err != nil {
			l.Logger.Warnw("signaling: malformed candidate update", "error", err)
			continue
		}
		select {
		case out <- c:
		case <-ctx.Done():
			return
		}
	}
}
