package helpers

import (
	"crypto/rand"
	"encoding/hex"
)

// GenSecretToken returns a hex-encoded random token with 32 bytes of
// entropy, used for password reset and email verification links.
func GenSecretToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
