package util

import (
	"crypto/rand"
	"encoding/base64"
)

// 32 bytes gives 256 bits of entropy; the state token is the sole CSRF
// defense for the OAuth callback.
const tokenBytes = 32

// GenerateStateToken returns a cryptographically random, URL-safe token.
func GenerateStateToken() (string, error) {
	bytes := make([]byte, tokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
