package ice

import "time"

// PairState tracks one CandidatePair through the RFC 8445 connectivity-check
// state machine this agent drives (spec.md §4.B "Run loop" step 1).
type PairState int

const (
	PairWaiting PairState = iota
	PairInProgress
	PairSucceeded
	PairFailed
)

// checkTimeout is the implementation-chosen InProgress->Failed timeout
// (spec.md §4.B: "implementation-chosen, >= 500 ms").
const checkTimeout = 700 * time.Millisecond

// CandidatePair is one (local, remote) candidate pairing under connectivity
// check.
type CandidatePair struct {
	Local, Remote Candidate
	Priority      uint64
	State         PairState

	TransactionID [12]byte
	RequestSentAt time.Time
	hasPendingReq bool
}

// pairPriority computes the RFC 8445 §6.1.2.3 pair priority. This agent is
// always ICE-CONTROLLED, so the peer is controlling: G is the remote
// (controlling) candidate's priority, D is the local (controlled) one's.
func pairPriority(local, remote Candidate) uint64 {
	g, d := uint64(remote.Priority), uint64(local.Priority)
	min, max := g, d
	if d < g {
		min, max = d, g
	}
	result := (min << 32) + 2*max
	if g > d {
		result++
	}
	return result
}

func newPair(local, remote Candidate) *CandidatePair {
	return &CandidatePair{
		Local:    local,
		Remote:   remote,
		Priority: pairPriority(local, remote),
		State:    PairWaiting,
	}
}

// pendingExpired reports whether this pair's outstanding request, if any, is
// old enough that a fresh one should be sent.
func (p *CandidatePair) pendingExpired() bool {
	if !p.hasPendingReq {
		return true
	}
	return time.Since(p.RequestSentAt) > checkTimeout
}

// insertSorted inserts pair into pairs keeping descending-priority order,
// skipping insertion if an equal-priority pair already exists (spec.md §4.B
// "Pair formation": "insert in sorted order unless an equal-priority pair
// exists").
func insertSorted(pairs []*CandidatePair, pair *CandidatePair) []*CandidatePair {
	idx := 0
	for idx < len(pairs) {
		if pairs[idx].Priority == pair.Priority {
			return pairs
		}
		if pairs[idx].Priority < pair.Priority {
			break
		}
		idx++
	}
	pairs = append(pairs, nil)
	copy(pairs[idx+1:], pairs[idx:])
	pairs[idx] = pair
	return pairs
}
