package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// oneTimeTokenBytes is the entropy of verification and reset tokens.
const oneTimeTokenBytes = 16

// GenerateOneTimeToken returns a random hex token for email verification
// and password reset links.
func GenerateOneTimeToken() (string, error) {
	buf := make([]byte, oneTimeTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// TokensEqual compares two one-time tokens in constant time. Empty tokens
// never match.
func TokensEqual(stored, presented string) bool {
	if stored == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
