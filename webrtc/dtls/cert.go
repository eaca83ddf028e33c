package dtls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// GenerateSelfSignedCertificate builds the ECDSA-P256 self-signed certificate
// this agent's single DTLS endpoint is keyed by (spec.md §4.C "generated at
// boot"). It returns both the tls.Certificate pion/dtls needs and the
// SHA-256 fingerprint that gets embedded in the SDP answer.
func GenerateSelfSignedCertificate() (tls.Certificate, string, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, "", fmt.Errorf("generating ECDSA key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, "", fmt.Errorf("generating serial number: %w", err)
	}

	tpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: "micro-rdk-agent"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().AddDate(10, 0, 0),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	der, err := x509.CreateCertificate(rand.Reader, tpl, tpl, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, "", fmt.Errorf("creating self-signed certificate: %w", err)
	}

	fingerprint := sha256.Sum256(der)
	cert := tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
	}
	return cert, formatFingerprint(fingerprint[:]), nil
}

// formatFingerprint renders a fingerprint as the colon-separated uppercase hex
// pairs SDP expects, e.g. "AB:CD:EF...".
func formatFingerprint(sum []byte) string {
	hexStr := hex.EncodeToString(sum)
	out := make([]byte, 0, len(hexStr)+len(hexStr)/2)
	for i := 0; i < len(hexStr); i += 2 {
		if i > 0 {
			out = append(out, ':')
		}
		out = append(out, hexStr[i], hexStr[i+1])
	}
	for i, b := range out {
		if b >= 'a' && b <= 'z' {
			out[i] = b - 'a' + 'A'
		}
	}
	return string(out)
}
