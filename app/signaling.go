package app

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// SignalingSession is the bidirectional stream pair spec.md §4.H trickles
// WebRTC offer/answer/candidate exchanges over: send AnswerResponse frames,
// receive AnswerRequest frames (both represented, like every other body in
// this client, as raw framed bytes rather than generated message types).
type SignalingSession struct {
	stream grpc.ClientStream
}

// Send writes one AnswerResponse frame.
func (s *SignalingSession) Send(payload []byte) error {
	return s.stream.SendMsg(&payload)
}

// Recv reads one AnswerRequest frame.
func (s *SignalingSession) Recv() ([]byte, error) {
	var payload []byte
	if err := s.stream.RecvMsg(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Close ends the stream from this side.
func (s *SignalingSession) Close() error {
	return s.stream.CloseSend()
}

var signalingStreamDesc = &grpc.StreamDesc{
	StreamName:    "Answer",
	ServerStreams: true,
	ClientStreams: true,
}

// Signaling opens a new signaling bidi stream, adding the
// "heartbeats-allowed: true" header the signaling server uses to decide
// whether it may send heartbeat pings on this stream (spec.md §4.G
// "Signaling...preceded by adding the header heartbeats-allowed: true").
func (c *Client) Signaling(ctx context.Context, rpcHost string) (*SignalingSession, error) {
	ctx = c.outgoingContext(ctx, rpcHost)
	ctx = metadata.AppendToOutgoingContext(ctx, "heartbeats-allowed", "true")

	stream, err := c.conn.NewStream(ctx, signalingStreamDesc, "/proto.rpc.webrtc.v1.SignalingService/Answer")
	if err != nil {
		return nil, fmt.Errorf("opening signaling stream: %w", classify(err))
	}
	return &SignalingSession{stream: stream}, nil
}
