package dtls

import (
	"crypto/ecdsa"
	"strings"
	"testing"

	"go.viam.com/test"
)

func TestGenerateSelfSignedCertificateIsECDSAP256(t *testing.T) {
	cert, fingerprint, err := GenerateSelfSignedCertificate()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(cert.Certificate), test.ShouldEqual, 1)

	key, ok := cert.PrivateKey.(*ecdsa.PrivateKey)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, key.Curve.Params().Name, test.ShouldEqual, "P-256")

	// SHA-256 fingerprint: 32 bytes rendered as 32 colon-separated hex pairs.
	test.That(t, len(strings.Split(fingerprint, ":")), test.ShouldEqual, 32)
	test.That(t, fingerprint, test.ShouldEqual, strings.ToUpper(fingerprint))
}

func TestGenerateSelfSignedCertificateIsFreshEachCall(t *testing.T) {
	_, fp1, err := GenerateSelfSignedCertificate()
	test.That(t, err, test.ShouldBeNil)
	_, fp2, err := GenerateSelfSignedCertificate()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fp1, test.ShouldNotEqual, fp2)
}
