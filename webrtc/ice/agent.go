// Package ice implements the ICE-CONTROLLED connectivity-check agent of
// spec.md §4.B: host + one-shot-STUN-srflx candidate gathering, trickled
// remote candidates, sorted candidate pairs, and a run loop that races
// remote-candidate arrival against inbound STUN traffic on the demultiplexer's
// STUN lane.
package ice

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"sort"
	"time"

	"github.com/pion/stun"

	"go.viam.com/micro-rdk-agent/logging"
	"go.viam.com/micro-rdk-agent/webrtc/udpmux"
)

// ICE-specific STUN attribute types (RFC 8445 §16.1), not defined by
// pion/stun itself since that package is protocol-agnostic.
const (
	attrPriority       stun.AttrType = 0x0024
	attrUseCandidate   stun.AttrType = 0x0025
	attrIceControlled  stun.AttrType = 0x8029
	attrIceControlling stun.AttrType = 0x802a
)

// stunServerAddr is the hard-coded STUN server used for one-shot srflx
// gathering (spec.md §4.B "a hard-coded STUN server").
var stunServerAddr = "stun.l.google.com:19302"

// Credentials are the short-term ICE credentials exchanged out of band via
// signaling (spec.md §4.B).
type Credentials struct {
	LocalUfrag, LocalPwd   string
	RemoteUfrag, RemotePwd string
}

// Agent drives ICE-CONTROLLED connectivity checks to completion (spec.md
// §4.B). Role is always ICE-CONTROLLED: this agent never nominates; it answers
// the peer's checks, sends its own, and races to find the first succeeding pair.
type Agent struct {
	creds Credentials

	lane   *udpmux.LaneHandle
	mux    *udpmux.Mux
	logger logging.Logger

	localCandidates  []Candidate
	remoteCandidates []Candidate
	pairs            []*CandidatePair

	candidateCh chan Candidate
	done        chan struct{}

	// NominationLogged records whether a peer's USE-CANDIDATE flag was seen.
	// Per spec.md §9 Open Question 1, this agent logs but never acts on it:
	// the first pair to reach Succeeded is used regardless.
	NominationLogged bool
}

// NewAgent gathers the local candidate set (one host candidate on localAddr,
// one server-reflexive candidate from a one-shot STUN Binding request) and
// returns an Agent ready to Run. lane must be the udpmux STUN lane.
func NewAgent(ctx context.Context, mux *udpmux.Mux, lane *udpmux.LaneHandle, localAddr *net.UDPAddr, creds Credentials, logger logging.Logger) (*Agent, error) {
	a := &Agent{
		creds:       creds,
		lane:        lane,
		mux:         mux,
		logger:      logger,
		candidateCh: make(chan Candidate, 8),
		done:        make(chan struct{}),
	}

	host := NewHostCandidate(localAddr.IP, localAddr.Port)
	a.localCandidates = append(a.localCandidates, host)

	srflx, err := a.gatherServerReflexive(ctx, localAddr)
	if err != nil {
		logger.Warnw("ice: srflx gathering failed, continuing with host candidate only", "error", err)
	} else {
		a.localCandidates = append(a.localCandidates, srflx)
	}

	return a, nil
}

// gatherServerReflexive sends one STUN Binding request to stunServerAddr and
// parses the XOR-MAPPED-ADDRESS of the response.
func (a *Agent) gatherServerReflexive(ctx context.Context, localAddr *net.UDPAddr) (Candidate, error) {
	serverAddr, err := net.ResolveUDPAddr("udp", stunServerAddr)
	if err != nil {
		return Candidate{}, fmt.Errorf("resolving stun server: %w", err)
	}

	txID := stun.NewTransactionID()
	msg, err := stun.Build(stun.BindingRequest, txID)
	if err != nil {
		return Candidate{}, err
	}

	if err := a.mux.WriteTo(msg.Raw, serverAddr); err != nil {
		return Candidate{}, fmt.Errorf("sending stun request: %w", err)
	}

	deadline, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	for {
		data, from, err := a.lane.Recv(deadline)
		if err != nil {
			return Candidate{}, fmt.Errorf("waiting for stun response: %w", err)
		}
		if !addrEqual(from, serverAddr) {
			continue
		}
		var resp stun.Message
		resp.Raw = data
		if err := resp.Decode(); err != nil {
			continue
		}
		if resp.TransactionID != txID {
			continue
		}
		var xorAddr stun.XORMappedAddress
		if err := xorAddr.GetFrom(&resp); err != nil {
			return Candidate{}, fmt.Errorf("response missing XOR-MAPPED-ADDRESS: %w", err)
		}
		return NewServerReflexiveCandidate(xorAddr.IP, xorAddr.Port, localAddr.IP), nil
	}
}

func addrEqual(a *net.UDPAddr, b *net.UDPAddr) bool {
	return a != nil && b != nil && a.IP.Equal(b.IP) && a.Port == b.Port
}

// AddRemoteCandidate trickles in a remote candidate learned from signaling
// (spec.md §4.B "received lazily over a candidate_channel from signaling").
func (a *Agent) AddRemoteCandidate(c Candidate) {
	select {
	case a.candidateCh <- c:
	default:
		a.logger.Warnw("ice: candidate channel full, dropping trickled candidate")
	}
}

// CloseCandidateChannel signals that no more remote candidates will arrive
// (spec.md §4.B "Termination": "the loop exits on candidate-channel closure").
func (a *Agent) CloseCandidateChannel() {
	close(a.candidateCh)
}

// Done is closed once the first CandidatePair reaches Succeeded (spec.md §4.B
// point 5: "signal a shared done flag so the DTLS layer may start").
func (a *Agent) Done() <-chan struct{} {
	return a.done
}

// addRemote performs pair formation for one newly-learned remote candidate
// (spec.md §4.B "Pair formation"): IPv6 is rejected silently, and local
// server-reflexive candidates are excluded since srflx is a pruned duplicate
// of its base host candidate.
func (a *Agent) addRemote(remote Candidate) {
	if remote.IP.To4() == nil {
		return // IPv6 remote candidates are rejected silently
	}
	a.remoteCandidates = append(a.remoteCandidates, remote)
	for _, local := range a.localCandidates {
		if local.Type == CandidateServerReflexive {
			continue
		}
		a.pairs = insertSorted(a.pairs, newPair(local, remote))
	}
}

// Run drives the connectivity-check loop until the candidate channel closes
// or ctx is cancelled (spec.md §4.B "Run loop", "Termination").
func (a *Agent) Run(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case remote, ok := <-a.candidateCh:
			if !ok {
				return nil // candidate channel closed: normal termination
			}
			a.addRemote(remote)

		case <-ticker.C:
			a.expireStalePairs()
			if !a.anySucceeded() {
				if err := a.sendNextCheck(); err != nil {
					a.logger.Warnw("ice: sending connectivity check failed", "error", err)
				}
			}

		default:
			data, from, err := a.tryRecv()
			if err != nil {
				continue
			}
			if data != nil {
				a.handleIncoming(data, from)
			}
		}
	}
}

// tryRecv does a non-blocking poll of the STUN lane so Run's select can still
// service the ticker and candidate channel promptly.
func (a *Agent) tryRecv() ([]byte, *net.UDPAddr, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	return a.lane.Recv(ctx)
}

func (a *Agent) expireStalePairs() {
	for _, p := range a.pairs {
		if p.State == PairInProgress && p.hasPendingReq && time.Since(p.RequestSentAt) > checkTimeout {
			p.State = PairFailed
		}
	}
}

func (a *Agent) anySucceeded() bool {
	for _, p := range a.pairs {
		if p.State == PairSucceeded {
			return true
		}
	}
	return false
}

// sendNextCheck emits a binding request for the first (highest-priority)
// pair whose check is not already outstanding (spec.md §4.B "Run loop" step 2).
func (a *Agent) sendNextCheck() error {
	for _, p := range a.pairs {
		if p.State == PairFailed || p.State == PairSucceeded {
			continue
		}
		if !p.pendingExpired() {
			continue
		}
		return a.sendCheck(p)
	}
	return nil
}

func (a *Agent) sendCheck(p *CandidatePair) error {
	txID := stun.NewTransactionID()
	priorityBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(priorityBuf, p.Local.Priority)

	msg, err := stun.Build(
		stun.BindingRequest,
		txID,
		stun.NewUsername(a.creds.RemoteUfrag+":"+a.creds.LocalUfrag),
		stunRawAttr{attrPriority, priorityBuf},
		stunRawAttr{attrIceControlled, make([]byte, 8)},
		stun.NewShortTermIntegrity(a.creds.RemotePwd),
		stun.Fingerprint,
	)
	if err != nil {
		return err
	}

	addr := &net.UDPAddr{IP: p.Remote.IP, Port: p.Remote.Port}
	if err := a.mux.WriteTo(msg.Raw, addr); err != nil {
		return err
	}

	p.TransactionID = txID
	p.RequestSentAt = time.Now()
	p.hasPendingReq = true
	if p.State == PairWaiting {
		p.State = PairInProgress
	}
	return nil
}

// handleIncoming races against the run loop's ticker per spec.md §4.B step 3:
// inbound STUN requests are validated and answered; inbound responses are
// matched to a pending pair by transaction id.
func (a *Agent) handleIncoming(data []byte, from *net.UDPAddr) {
	var msg stun.Message
	msg.Raw = data
	if err := msg.Decode(); err != nil {
		return
	}

	switch msg.Type.Class {
	case stun.ClassRequest:
		a.handleIncomingRequest(&msg, from)
	case stun.ClassSuccessResponse:
		a.handleIncomingResponse(&msg, from)
	}
}

func (a *Agent) handleIncomingRequest(msg *stun.Message, from *net.UDPAddr) {
	var username stun.Username
	if err := username.GetFrom(msg); err != nil {
		return
	}
	want := a.creds.LocalUfrag + ":" + a.creds.RemoteUfrag
	if username.String() != want {
		return // mismatched username: reject (spec.md §4.B step 3)
	}
	if _, err := msg.Get(attrUseCandidate); err == nil {
		a.NominationLogged = true
		a.logger.Debugw("ice: peer set USE-CANDIDATE, logged but not acted on")
	}

	a.reconcilePeerReflexive(msg, from)

	resp, err := stun.Build(
		stun.BindingSuccess,
		msg.TransactionID,
		&stun.XORMappedAddress{IP: from.IP, Port: from.Port},
		stun.NewShortTermIntegrity(a.creds.LocalPwd),
		stun.Fingerprint,
	)
	if err != nil {
		a.logger.Warnw("ice: building binding response failed", "error", err)
		return
	}
	if err := a.mux.WriteTo(resp.Raw, from); err != nil {
		a.logger.Warnw("ice: sending binding response failed", "error", err)
	}
}

// reconcilePeerReflexive implements spec.md §4.B step 4: a source address not
// matching any known remote candidate is added as a peer-reflexive remote
// candidate using the incoming request's PRIORITY attribute.
func (a *Agent) reconcilePeerReflexive(msg *stun.Message, from *net.UDPAddr) {
	for _, rc := range a.remoteCandidates {
		if rc.IP.Equal(from.IP) && rc.Port == from.Port {
			return
		}
	}
	raw, err := msg.Get(attrPriority)
	if err != nil || len(raw) != 4 {
		return
	}
	prio := binary.BigEndian.Uint32(raw)
	a.addRemote(NewPeerReflexiveCandidate(from.IP, from.Port, prio))
}

func (a *Agent) handleIncomingResponse(msg *stun.Message, from *net.UDPAddr) {
	for _, p := range a.pairs {
		if p.hasPendingReq && p.TransactionID == msg.TransactionID {
			p.State = PairSucceeded
			a.signalDoneOnce()
			return
		}
	}
}

func (a *Agent) signalDoneOnce() {
	select {
	case <-a.done:
	default:
		close(a.done)
	}
}

// LocalCandidates returns the gathered local candidate set, for embedding
// into the SDP-equivalent signaling payload.
func (a *Agent) LocalCandidates() []Candidate {
	return append([]Candidate(nil), a.localCandidates...)
}

// sortedPairs returns pairs ordered by descending priority, for tests.
func (a *Agent) sortedPairs() []*CandidatePair {
	out := append([]*CandidatePair(nil), a.pairs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

// stunRawAttr adds an arbitrary ICE STUN attribute not modeled by pion/stun's
// attribute set (PRIORITY, ICE-CONTROLLED; spec.md §4.B).
type stunRawAttr struct {
	t stun.AttrType
	v []byte
}

func (r stunRawAttr) AddTo(m *stun.Message) error {
	m.Add(r.t, r.v)
	return nil
}
