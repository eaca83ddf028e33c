package ice

import (
	"encoding/binary"
	"net"
	"testing"

	"github.com/pion/stun"
	"go.viam.com/test"

	"go.viam.com/micro-rdk-agent/logging"
	"go.viam.com/micro-rdk-agent/webrtc/udpmux"
)

func newTestAgent(t *testing.T) *Agent {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	test.That(t, err, test.ShouldBeNil)
	t.Cleanup(func() { conn.Close() })

	mux := udpmux.New(conn, logging.NewTestLogger())
	t.Cleanup(func() { mux.Close() })
	lane, ok := mux.AcquireSTUNLane()
	test.That(t, ok, test.ShouldBeTrue)

	return &Agent{
		lane:        lane,
		mux:         mux,
		logger:      logging.NewTestLogger(),
		candidateCh: make(chan Candidate, 8),
		done:        make(chan struct{}),
		localCandidates: []Candidate{
			NewHostCandidate(net.IPv4(192, 168, 1, 2), 5000),
			NewServerReflexiveCandidate(net.IPv4(203, 0, 113, 1), 6000, net.IPv4(192, 168, 1, 2)),
		},
		creds: Credentials{LocalUfrag: "lfrag", LocalPwd: "lpwd", RemoteUfrag: "rfrag", RemotePwd: "rpwd"},
	}
}

func TestAddRemotePrunesServerReflexiveLocalCandidates(t *testing.T) {
	a := newTestAgent(t)
	a.addRemote(Candidate{Type: CandidateHost, IP: net.IPv4(198, 51, 100, 5), Port: 7000, Priority: 1000})

	// Two local candidates were gathered (host + srflx) but srflx must be
	// pruned as a duplicate of its base (spec.md §4.B "Pair formation").
	test.That(t, len(a.pairs), test.ShouldEqual, 1)
	test.That(t, a.pairs[0].Local.Type, test.ShouldEqual, CandidateHost)
}

func TestAddRemoteRejectsIPv6Silently(t *testing.T) {
	a := newTestAgent(t)
	v6 := net.ParseIP("2001:db8::1")
	a.addRemote(Candidate{Type: CandidateHost, IP: v6, Port: 7000, Priority: 1000})
	test.That(t, len(a.remoteCandidates), test.ShouldEqual, 0)
	test.That(t, len(a.pairs), test.ShouldEqual, 0)
}

func TestReconcilePeerReflexiveAddsUnknownSourceOnce(t *testing.T) {
	a := newTestAgent(t)
	from := &net.UDPAddr{IP: net.IPv4(198, 51, 100, 9), Port: 9000}

	prio := make([]byte, 4)
	binary.BigEndian.PutUint32(prio, 555)
	msg, err := stun.Build(stun.BindingRequest, stun.TransactionID, stunRawAttr{attrPriority, prio})
	test.That(t, err, test.ShouldBeNil)

	a.reconcilePeerReflexive(msg, from)
	a.reconcilePeerReflexive(msg, from) // same source again: already known
	test.That(t, len(a.remoteCandidates), test.ShouldEqual, 1)
	test.That(t, a.remoteCandidates[0].Priority, test.ShouldEqual, uint32(555))
}

func TestSignalDoneOnceIsIdempotent(t *testing.T) {
	a := newTestAgent(t)
	a.signalDoneOnce()
	a.signalDoneOnce() // must not panic on double-close

	select {
	case <-a.Done():
	default:
		t.Fatal("expected Done channel to be closed")
	}
}
