package auth

import (
	"context"

	"github.com/xraph/hookstream/delivery"
)

// None is the no-op authenticator: every request verifies. It is the default
// for webhooks and bundles created without an explicit authenticator.
type None struct{}

// NewNone returns the no-op authenticator.
func NewNone() None { return None{} }

// Verify always reports success with a zero identity.
func (None) Verify(_ context.Context, _ *delivery.Request) (Result, error) {
	return Result{Verified: true, Identity: 0}, nil
}

// HasToken always reports false.
func (None) HasToken() bool { return false }

// Token returns the empty string.
func (None) Token() string { return "" }
