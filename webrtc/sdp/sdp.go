// Package sdp renders and parses the small slice of SDP this agent actually
// needs (spec.md §6 "SDP"): the ICE short-term credentials, trickled
// `a=candidate:` lines (RFC 5245 grammar), and the DTLS certificate
// fingerprint attribute the answer carries. The generic session/attribute
// container comes from github.com/pion/sdp/v3 (already in the teacher's own
// dependency graph as an indirect of its ICE stack, and pion-webrtc's direct
// dependency for this exact job) rather than hand-scanning lines; only the
// ICE candidate grammar itself, which is RFC 5245's concern and not SDP's, is
// parsed by hand here.
package sdp

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	psdp "github.com/pion/sdp/v3"

	"go.viam.com/micro-rdk-agent/webrtc/ice"
)

const (
	attrICEUfrag     = "ice-ufrag"
	attrICEPwd       = "ice-pwd"
	attrCandidate    = "candidate"
	attrFingerprint  = "fingerprint"
	fingerprintAlgo  = "sha-256"
)

// Offer is the subset of an incoming SDP offer this agent reads: the peer's
// short-term ICE credentials and any candidates already present as
// non-trickled lines (most peers trickle everything separately, but a
// conforming parser must not require that).
type Offer struct {
	Ufrag      string
	Pwd        string
	Candidates []ice.Candidate
}

// ParseOffer unmarshals raw as a session description and pulls the
// ice-ufrag/ice-pwd/candidate attributes out of it, checking both the
// session level and every media section since peers are free to place ICE
// attributes at either (RFC 8839 §4.2).
func ParseOffer(raw string) (Offer, error) {
	var sd psdp.SessionDescription
	if err := sd.Unmarshal([]byte(raw)); err != nil {
		return Offer{}, fmt.Errorf("sdp: unmarshaling offer: %w", err)
	}

	o := Offer{
		Ufrag: firstAttributeValue(sd, attrICEUfrag),
		Pwd:   firstAttributeValue(sd, attrICEPwd),
	}
	if o.Ufrag == "" || o.Pwd == "" {
		return Offer{}, fmt.Errorf("sdp: offer missing ice-ufrag or ice-pwd")
	}

	for _, value := range attributeValues(sd, attrCandidate) {
		c, err := ParseCandidateLine(value)
		if err != nil {
			return Offer{}, err
		}
		o.Candidates = append(o.Candidates, c)
	}
	return o, nil
}

// firstAttributeValue returns the value of the first session- or media-level
// attribute named key, preferring the session level.
func firstAttributeValue(sd psdp.SessionDescription, key string) string {
	for _, a := range sd.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	for _, m := range sd.MediaDescriptions {
		for _, a := range m.Attributes {
			if a.Key == key {
				return a.Value
			}
		}
	}
	return ""
}

// attributeValues collects every session- and media-level attribute value
// named key, in the order they appear.
func attributeValues(sd psdp.SessionDescription, key string) []string {
	var values []string
	for _, a := range sd.Attributes {
		if a.Key == key {
			values = append(values, a.Value)
		}
	}
	for _, m := range sd.MediaDescriptions {
		for _, a := range m.Attributes {
			if a.Key == key {
				values = append(values, a.Value)
			}
		}
	}
	return values
}

// ParseCandidateLine parses one `candidate` attribute's value (the text
// after "a=candidate:", which is what psdp.Attribute.Value already holds)
// per RFC 5245 §15.1's grammar. Only the fields this agent cares about
// (foundation, address, port, type) are extracted; the priority is not, and
// transport is assumed udp.
func ParseCandidateLine(value string) (ice.Candidate, error) {
	value = strings.TrimPrefix(value, "candidate:")
	fields := strings.Fields(value)
	if len(fields) < 8 {
		return ice.Candidate{}, fmt.Errorf("sdp: malformed candidate line %q", value)
	}

	foundation := fields[0]
	ip := net.ParseIP(fields[4])
	if ip == nil {
		return ice.Candidate{}, fmt.Errorf("sdp: invalid candidate address %q", fields[4])
	}
	port, err := strconv.Atoi(fields[5])
	if err != nil {
		return ice.Candidate{}, fmt.Errorf("sdp: invalid candidate port %q", fields[5])
	}

	var typ ice.CandidateType
	for i := 0; i < len(fields)-1; i++ {
		if fields[i] == "typ" {
			switch fields[i+1] {
			case "host":
				typ = ice.CandidateHost
			case "srflx":
				typ = ice.CandidateServerReflexive
			case "prflx":
				typ = ice.CandidatePeerReflexive
			default:
				return ice.Candidate{}, fmt.Errorf("sdp: unsupported candidate type %q (relay not supported)", fields[i+1])
			}
			break
		}
	}

	return ice.Candidate{
		Type:       typ,
		IP:         ip,
		Port:       port,
		Foundation: foundation,
		Base:       ip,
	}, nil
}

// candidateAttributeValue renders c as a `candidate` attribute's value (the
// text that follows "a=candidate:").
func candidateAttributeValue(c ice.Candidate) string {
	typ := "host"
	switch c.Type {
	case ice.CandidateServerReflexive:
		typ = "srflx"
	case ice.CandidatePeerReflexive:
		typ = "prflx"
	}
	return fmt.Sprintf("%s 1 udp %d %s %d typ %s",
		c.Foundation, c.Priority, c.IP.String(), c.Port, typ)
}

// FormatCandidateLine renders c as a full `a=candidate:...` line, for
// trickling a single candidate update over the signaling stream rather than
// through a session description.
func FormatCandidateLine(c ice.Candidate) string {
	return "a=candidate:" + candidateAttributeValue(c)
}

// Answer holds everything BuildAnswer needs to render this agent's SDP
// answer: its own short-term credentials, the DTLS certificate fingerprint
// (spec.md §4.C), and the (fixed, upfront-gathered) local candidate set.
type Answer struct {
	Ufrag       string
	Pwd         string
	Fingerprint string
	Candidates  []ice.Candidate
}

// BuildAnswer renders a minimal SDP answer: session headers, ICE
// credentials, the DTLS fingerprint attribute, and one candidate attribute
// per local candidate, all attached to a single data media section. This
// agent never trickles local candidates (they are gathered once, up front),
// so the full set is embedded in the single answer spec.md's server loop
// sends back.
func BuildAnswer(a Answer) string {
	media := &psdp.MediaDescription{
		MediaName: psdp.MediaName{
			Media:   "application",
			Port:    psdp.RangedPort{Value: 9},
			Protos:  []string{"UDP", "DTLS", "SCTP"},
			Formats: []string{"webrtc-datachannel"},
		},
		ConnectionInformation: &psdp.ConnectionInformation{
			NetworkType: "IN",
			AddressType: "IP4",
			Address:     &psdp.Address{Address: "0.0.0.0"},
		},
		Attributes: []psdp.Attribute{
			{Key: attrICEUfrag, Value: a.Ufrag},
			{Key: attrICEPwd, Value: a.Pwd},
			{Key: attrFingerprint, Value: fingerprintAlgo + " " + a.Fingerprint},
			{Key: "setup", Value: "passive"},
			{Key: "mid", Value: "0"},
			{Key: "sctp-port", Value: "5000"},
		},
	}
	for _, c := range a.Candidates {
		media.Attributes = append(media.Attributes, psdp.Attribute{
			Key: attrCandidate, Value: candidateAttributeValue(c),
		})
	}

	sd := psdp.SessionDescription{
		Version: 0,
		Origin: psdp.Origin{
			Username:       "-",
			SessionID:      1,
			SessionVersion: 1,
			NetworkType:    "IN",
			AddressType:    "IP4",
			UnicastAddress: "0.0.0.0",
		},
		SessionName: "-",
		TimeDescriptions: []psdp.TimeDescription{
			{Timing: psdp.Timing{StartTime: 0, StopTime: 0}},
		},
		Attributes: []psdp.Attribute{
			{Key: "group", Value: "BUNDLE 0"},
		},
		MediaDescriptions: []*psdp.MediaDescription{media},
	}

	raw, err := sd.Marshal()
	if err != nil {
		// sd is built entirely from in-process values above; Marshal only
		// fails on malformed input, which cannot happen here.
		panic(fmt.Sprintf("sdp: marshaling answer: %v", err))
	}
	return string(raw)
}
