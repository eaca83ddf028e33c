package ice

import "net"

// CandidateType is the ICE candidate type (RFC 8445 §5.1.2.1); this agent only
// ever produces Host and ServerReflexive candidates and only ever learns
// PeerReflexive ones from unexpected source addresses (spec.md §4.B point 4).
type CandidateType int

const (
	CandidateHost CandidateType = iota
	CandidateServerReflexive
	CandidatePeerReflexive
)

// type preference values from RFC 8445 §5.1.2.1 table.
const (
	typePreferenceHost  = 126
	typePreferencePeer  = 110
	typePreferenceSrflx = 100
)

func (t CandidateType) typePreference() uint32 {
	switch t {
	case CandidateHost:
		return typePreferenceHost
	case CandidatePeerReflexive:
		return typePreferencePeer
	case CandidateServerReflexive:
		return typePreferenceSrflx
	default:
		return 0
	}
}

// Candidate is one local or remote ICE candidate.
type Candidate struct {
	Type       CandidateType
	IP         net.IP
	Port       int
	Foundation string
	Priority   uint32
	// Base is the local address this candidate was derived from (itself for
	// Host candidates, the host candidate's address for ServerReflexive).
	Base net.IP
}

// componentID is always 1 (RTP component) in this agent's single-stream use.
const componentID = 1

// localPreference is fixed since this agent only ever gathers one candidate
// of each type; RFC 8445 only requires it to rank candidates of equal type
// preference against each other.
const localPreference = 65535

// priority computes the RFC 8445 §5.1.2.1 candidate priority:
// (2^24)*type_pref + (2^8)*local_pref + (2^0)*(256 - component_id).
func priority(typePref uint32) uint32 {
	return (typePref << 24) | (localPreference << 8) | (256 - componentID)
}

// NewHostCandidate builds the single host candidate this agent gathers on its
// physical IPv4 address (spec.md §4.B).
func NewHostCandidate(ip net.IP, port int) Candidate {
	return Candidate{
		Type:       CandidateHost,
		IP:         ip,
		Port:       port,
		Foundation: "host",
		Priority:   priority(typePreferenceHost),
		Base:       ip,
	}
}

// NewServerReflexiveCandidate builds the srflx candidate learned from a
// one-shot STUN Binding request (spec.md §4.B).
func NewServerReflexiveCandidate(reflexiveIP net.IP, reflexivePort int, base net.IP) Candidate {
	return Candidate{
		Type:       CandidateServerReflexive,
		IP:         reflexiveIP,
		Port:       reflexivePort,
		Foundation: "srflx",
		Priority:   priority(typePreferenceSrflx),
		Base:       base,
	}
}

// NewPeerReflexiveCandidate builds a candidate for an unexpected source
// address, using the priority the peer attached to its request (spec.md §4.B
// point 4: "added as a peer-reflexive remote candidate using the priority
// attribute of the incoming request").
func NewPeerReflexiveCandidate(ip net.IP, port int, reportedPriority uint32) Candidate {
	return Candidate{
		Type:       CandidatePeerReflexive,
		IP:         ip,
		Port:       port,
		Foundation: "prflx",
		Priority:   reportedPriority,
	}
}
