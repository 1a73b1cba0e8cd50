package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/xraph/hookstream/delivery"
	"github.com/xraph/hookstream/signature"
)

// Header names for HMAC-signed deliveries.
const (
	SignatureHeader = "X-Hookstream-Signature"
	TimestampHeader = "X-Hookstream-Timestamp"
)

// Errors returned when the HMAC authenticator cannot run its check.
var (
	ErrMissingSignature = errors.New("auth: missing signature header")
	ErrMissingTimestamp = errors.New("auth: missing or malformed timestamp header")
)

// HMAC authenticates deliveries by verifying an HMAC-SHA256 signature over
// the raw request body, the way webhook producers conventionally sign their
// calls. Verification fails closed on a stale timestamp to bound replays.
type HMAC struct {
	secret    string
	tolerance time.Duration
}

// NewHMAC creates an HMAC authenticator. An empty secret is replaced with a
// freshly generated one; tolerance <= 0 disables the timestamp check.
func NewHMAC(secret string, tolerance time.Duration) *HMAC {
	if secret == "" {
		secret = signature.GenerateSecret()
	}
	return &HMAC{secret: secret, tolerance: tolerance}
}

// Verify checks the signature and timestamp headers against the raw body.
// Missing headers are errors (the check cannot run); a present but wrong
// signature is a negative result.
func (h *HMAC) Verify(_ context.Context, req *delivery.Request) (Result, error) {
	sig := req.Header.Get(SignatureHeader)
	if sig == "" {
		return Result{}, ErrMissingSignature
	}

	ts, err := strconv.ParseInt(req.Header.Get(TimestampHeader), 10, 64)
	if err != nil {
		return Result{}, ErrMissingTimestamp
	}

	if err := signature.VerifyWithTolerance(req.RawBody, h.secret, ts, sig, h.tolerance); err != nil {
		return Result{Verified: false, Identity: 0}, nil
	}

	return Result{Verified: true, Identity: 0}, nil
}

// HasToken always reports true: the signing secret must be shared with the
// producer for it to sign deliveries.
func (h *HMAC) HasToken() bool { return true }

// Token returns the signing secret.
func (h *HMAC) Token() string { return h.secret }
