// Package dtls implements the single DTLS 1.2 server endpoint of spec.md
// §4.C: an ECDSA-P256 self-signed certificate generated at boot, transported
// over the demultiplexer's DTLS lane, accepting exactly one client.
package dtls

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"

	piondtls "github.com/pion/dtls/v2"

	"go.viam.com/micro-rdk-agent/logging"
	"go.viam.com/micro-rdk-agent/webrtc/pionlog"
	"go.viam.com/micro-rdk-agent/webrtc/udpmux"
)

// Engine owns the certificate and drives one DTLS handshake to completion.
type Engine struct {
	cert        tls.Certificate
	Fingerprint string
	logger      logging.Logger
}

// NewEngine generates the boot-time self-signed certificate.
func NewEngine(logger logging.Logger) (*Engine, error) {
	cert, fingerprint, err := GenerateSelfSignedCertificate()
	if err != nil {
		return nil, fmt.Errorf("generating DTLS certificate: %w", err)
	}
	return &Engine{cert: cert, Fingerprint: fingerprint, logger: logger}, nil
}

// Accept performs the server-side DTLS handshake over lane, returning a
// *piondtls.Conn ready for SCTP to run atop. SRTP profile
// SRTP_AES128_CM_SHA1_80 is advertised because WebRTC mandates it, even
// though this agent never uses SRTP — the payload after handshake is SCTP
// (spec.md §4.C).
func (e *Engine) Accept(ctx context.Context, mux *udpmux.Mux, lane *udpmux.LaneHandle, localAddr net.Addr) (*piondtls.Conn, error) {
	conn := newLaneConn(lane, mux, localAddr)

	config := &piondtls.Config{
		Certificates:           []tls.Certificate{e.cert},
		InsecureSkipVerify:     true,
		SRTPProtectionProfiles: []piondtls.SRTPProtectionProfile{piondtls.SRTP_AES128_CM_HMAC_SHA1_80},
		ClientAuth:             piondtls.RequestClientCert,
		LoggerFactory:          &pionlog.Factory{Logger: e.logger},
	}

	dtlsConn, err := piondtls.ServerWithContext(ctx, conn, config)
	if err != nil {
		return nil, fmt.Errorf("DTLS handshake failed: %w", err)
	}
	return dtlsConn, nil
}
