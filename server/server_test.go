package loop

import (
	"testing"

	"go.viam.com/test"
)

func TestSignalingFrameRoundTrip(t *testing.T) {
	payload, err := encodeInitFrame("v=0\r\n")
	test.That(t, err, test.ShouldBeNil)

	frame, err := decodeSignalingFrame(payload)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.init, test.ShouldEqual, "v=0\r\n")
	test.That(t, frame.done, test.ShouldBeFalse)
}

func TestDecodeSignalingFrameRejectsEmptyPayload(t *testing.T) {
	_, err := decodeSignalingFrame(nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestGenerateLocalICECredentialsAreDistinctAndSized(t *testing.T) {
	ufrag1, pwd1, err := generateLocalICECredentials()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(ufrag1), test.ShouldEqual, ufragLength)
	test.That(t, len(pwd1), test.ShouldEqual, pwdLength)

	ufrag2, _, err := generateLocalICECredentials()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ufrag1, test.ShouldNotEqual, ufrag2)
}
