package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// NewID returns a random 256-bit session identifier, URL-safe encoded.
func NewID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
