package ice

import (
	"net"
	"testing"

	"go.viam.com/test"
)

func TestCandidatePriorityOrdering(t *testing.T) {
	host := NewHostCandidate(net.IPv4(192, 168, 1, 2), 5000)
	srflx := NewServerReflexiveCandidate(net.IPv4(203, 0, 113, 1), 6000, net.IPv4(192, 168, 1, 2))
	// RFC 8445: host candidates always outrank server-reflexive ones.
	test.That(t, host.Priority > srflx.Priority, test.ShouldBeTrue)
}

func TestPairPriorityFormulaIsSymmetricInMagnitudeOnly(t *testing.T) {
	local := NewHostCandidate(net.IPv4(192, 168, 1, 2), 5000)
	remote := Candidate{Type: CandidateHost, IP: net.IPv4(192, 168, 1, 3), Port: 5001, Priority: local.Priority - 1}

	p1 := pairPriority(local, remote)
	p2 := pairPriority(remote, local)
	// Same pair of values yields the same 2^32*min + 2*max term but the tie-break bit
	// flips depending on which side is "controlling" (here: remote is G).
	test.That(t, p1 != p2, test.ShouldBeTrue)
}

func TestInsertSortedKeepsDescendingOrderAndDropsTies(t *testing.T) {
	var pairs []*CandidatePair
	a := &CandidatePair{Priority: 10}
	b := &CandidatePair{Priority: 30}
	c := &CandidatePair{Priority: 20}
	dupOfB := &CandidatePair{Priority: 30}

	pairs = insertSorted(pairs, a)
	pairs = insertSorted(pairs, b)
	pairs = insertSorted(pairs, c)
	pairs = insertSorted(pairs, dupOfB)

	test.That(t, len(pairs), test.ShouldEqual, 3)
	test.That(t, pairs[0].Priority, test.ShouldEqual, uint64(30))
	test.That(t, pairs[1].Priority, test.ShouldEqual, uint64(20))
	test.That(t, pairs[2].Priority, test.ShouldEqual, uint64(10))
}
