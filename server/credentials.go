package loop

import (
	"fmt"

	"github.com/pion/randutil"
)

// runesAlpha is the charset pion/ice itself draws short-term ICE credentials
// from; reused here since this agent plays the same ICE-CONTROLLED role.
const runesAlpha = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

const (
	ufragLength = 16
	pwdLength   = 32
)

func generateLocalICECredentials() (ufrag, pwd string, err error) {
	ufrag, err = randutil.GenerateCryptoRandomString(ufragLength, []byte(runesAlpha))
	if err != nil {
		return "", "", fmt.Errorf("generating ICE ufrag: %w", err)
	}
	pwd, err = randutil.GenerateCryptoRandomString(pwdLength, []byte(runesAlpha))
	if err != nil {
		return "", "", fmt.Errorf("generating ICE pwd: %w", err)
	}
	return ufrag, pwd, nil
}
