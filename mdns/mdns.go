// Package mdns advertises this agent's gRPC endpoint under `_rpc._tcp.local.`
// (spec.md §4.N, §6 "mDNS"): two PTR records pointing at the same host:port,
// one keyed by the cloud-supplied FQDN and one by the local-FQDN, each with a
// TXT record carrying the key `grpc=""`.
//
// pion/mdns (the teacher's indirect dependency, via its ICE stack) only
// resolves ephemeral `*.local` hostnames for ICE candidates; it has no
// PTR/SRV/TXT service-record API, so it cannot serve this module's actual
// requirement — advertising a named service, not resolving a hostname.
// golang.org/x/net/dns/dnsmessage (already in this module's dependency
// graph via grpc-go's HTTP/2 transport) is the ecosystem library that can
// build those record types, so this package speaks raw mDNS over a
// multicast UDP socket with it rather than hand-rolling wire encoding.
package mdns

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/net/dns/dnsmessage"

	"go.viam.com/micro-rdk-agent/logging"
)

const (
	multicastAddr = "224.0.0.251:5353"
	serviceName   = "_rpc._tcp.local."
	recordTTL     = 120 // seconds
)

// Advertiser answers PTR queries for serviceName over multicast DNS.
type Advertiser struct {
	conn   *net.UDPConn
	logger logging.Logger

	instances []instance
}

type instance struct {
	name   dnsmessage.Name // "<fqdn>._rpc._tcp.local."
	target dnsmessage.Name // host this instance resolves to
	port   uint16
}

// New binds the mDNS multicast socket and prepares to answer on behalf of
// fqdn and localFQDN, both resolving to host:port.
func New(fqdn, localFQDN, host string, port uint16, logger logging.Logger) (*Advertiser, error) {
	addr, err := net.ResolveUDPAddr("udp4", multicastAddr)
	if err != nil {
		return nil, fmt.Errorf("resolving mDNS multicast address: %w", err)
	}
	conn, err := net.ListenMulticastUDP("udp4", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("joining mDNS multicast group: %w", err)
	}

	target, err := dnsmessage.NewName(dotted(host))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("invalid host name %q: %w", host, err)
	}

	instances := make([]instance, 0, 2)
	for _, fqdnName := range []string{fqdn, localFQDN} {
		if fqdnName == "" {
			continue
		}
		name, err := dnsmessage.NewName(dotted(fqdnName) + serviceName)
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("invalid fqdn %q: %w", fqdnName, err)
		}
		instances = append(instances, instance{name: name, target: target, port: port})
	}

	a := &Advertiser{conn: conn, logger: logger, instances: instances}
	// dnsmessage.NewName checks only a name's total length; packing a
	// response once here also rejects labels longer than 63 bytes.
	if _, err := a.buildResponse(0); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("invalid mDNS record names: %w", err)
	}
	return a, nil
}

func dotted(s string) string {
	if len(s) > 0 && s[len(s)-1] == '.' {
		return s
	}
	return s + "."
}

// Serve answers incoming queries until ctx is canceled or the socket errors.
func (a *Advertiser) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = a.conn.Close()
	}()

	buf := make([]byte, 9000) // mDNS allows larger-than-512-byte UDP payloads
	for {
		n, src, err := a.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading mDNS query: %w", err)
		}
		a.handle(buf[:n], src)
	}
}

// Close releases the multicast socket.
func (a *Advertiser) Close() error {
	return a.conn.Close()
}

func (a *Advertiser) handle(data []byte, src *net.UDPAddr) {
	var msg dnsmessage.Message
	if err := msg.Unpack(data); err != nil {
		return
	}
	if msg.Header.Response {
		return
	}

	var matched bool
	for _, q := range msg.Questions {
		if q.Type == dnsmessage.TypePTR && q.Name.String() == serviceName {
			matched = true
			break
		}
	}
	if !matched {
		return
	}

	resp, err := a.buildResponse(msg.Header.ID)
	if err != nil {
		a.logger.Errorw("building mDNS response", "error", err)
		return
	}
	if _, err := a.conn.WriteToUDP(resp, src); err != nil {
		a.logger.Errorw("sending mDNS response", "error", err)
	}
}

func (a *Advertiser) buildResponse(id uint16) ([]byte, error) {
	b := dnsmessage.NewBuilder(nil, dnsmessage.Header{ID: id, Response: true, Authoritative: true})
	b.EnableCompression()
	if err := b.StartAnswers(); err != nil {
		return nil, err
	}

	for _, inst := range a.instances {
		serviceHeader, err := dnsmessage.NewName(serviceName)
		if err != nil {
			return nil, err
		}
		if err := b.PTRResource(
			dnsmessage.ResourceHeader{Name: serviceHeader, Type: dnsmessage.TypePTR, Class: dnsmessage.ClassINET, TTL: recordTTL},
			dnsmessage.PTRResource{PTR: inst.name},
		); err != nil {
			return nil, err
		}
		if err := b.SRVResource(
			dnsmessage.ResourceHeader{Name: inst.name, Type: dnsmessage.TypeSRV, Class: dnsmessage.ClassINET, TTL: recordTTL},
			dnsmessage.SRVResource{Priority: 0, Weight: 0, Port: inst.port, Target: inst.target},
		); err != nil {
			return nil, err
		}
		if err := b.TXTResource(
			dnsmessage.ResourceHeader{Name: inst.name, Type: dnsmessage.TypeTXT, Class: dnsmessage.ClassINET, TTL: recordTTL},
			dnsmessage.TXTResource{TXT: []string{"grpc="}},
		); err != nil {
			return nil, err
		}
	}

	return b.Finish()
}
