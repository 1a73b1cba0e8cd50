package signature

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateSecret creates a cryptographically random signing secret.
// Format: "whsec_" + 32 bytes hex = 70 characters total.
func GenerateSecret() string {
	return "whsec_" + randomHex(32)
}

// GenerateToken creates a cryptographically random bearer token.
// Format: "whtok_" + 32 bytes hex.
func GenerateToken() string {
	return "whtok_" + randomHex(32)
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("hookstream: failed to generate random secret: " + err.Error())
	}
	return hex.EncodeToString(b)
}
