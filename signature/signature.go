// Package signature provides HMAC-SHA256 signing and verification for inbound
// webhook deliveries, plus secret and token generation.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Sign generates the HMAC-SHA256 signature for the given payload.
// The content to sign is "{timestamp}.{payload}".
// Returns a versioned signature in the format "v1=<hex>".
func Sign(payload []byte, secret string, timestamp int64) string {
	content := fmt.Sprintf("%d.%s", timestamp, payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(content))
	return "v1=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks whether the given signature matches the expected HMAC-SHA256
// signature for the payload, secret, and timestamp.
func Verify(payload []byte, secret string, timestamp int64, sig string) bool {
	expected := Sign(payload, secret, timestamp)
	return hmac.Equal([]byte(expected), []byte(sig))
}

// VerifyWithTolerance verifies a signature and additionally rejects timestamps
// further than tolerance from now, in either direction, to bound replay windows.
// A tolerance of 0 disables the timestamp check.
func VerifyWithTolerance(payload []byte, secret string, timestamp int64, sig string, tolerance time.Duration) error {
	if tolerance > 0 {
		drift := time.Since(time.Unix(timestamp, 0))
		if drift < 0 {
			drift = -drift
		}
		if drift > tolerance {
			return fmt.Errorf("signature: timestamp outside tolerance of %s", tolerance)
		}
	}
	if !Verify(payload, secret, timestamp, sig) {
		return fmt.Errorf("signature: mismatch")
	}
	return nil
}
