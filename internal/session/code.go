package session

import (
	"crypto/rand"
	"encoding/hex"
)

// NewCode returns a 64-character hex redemption code (256 random bits, enough
// that codes created in overlapping windows never collide in practice).
func NewCode() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
