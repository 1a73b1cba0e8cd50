// Package auth defines the pluggable authentication capability used for both
// inbound webhook deliveries and subscription admission.
//
// An Authenticator distinguishes two failure modes: Verify returning an error
// means the check itself could not run (a malformed credential header, a
// failed upstream call); Verify returning Result{Verified: false} is a normal
// negative answer. Callers must treat the two differently.
package auth

import (
	"context"

	"github.com/xraph/hookstream/delivery"
)

// Result is the outcome of a successful Verify call.
type Result struct {
	// Verified reports whether the request carried acceptable credentials.
	Verified bool

	// Identity is an opaque value identifying the authenticated party, e.g.
	// a username. Implementations that have no notion of identity return 0.
	Identity any
}

// Authenticator verifies inbound requests. Implementations may be supplied
// per-webhook and per-bundle, independently for delivery and subscription
// authentication.
type Authenticator interface {
	// Verify checks the request's credentials. It may perform I/O and must
	// honor ctx cancellation if it does.
	Verify(ctx context.Context, req *delivery.Request) (Result, error)

	// HasToken reports whether this authenticator carries a shareable token
	// that create operations should return to the caller.
	HasToken() bool

	// Token returns the shareable token, or "" when HasToken is false.
	Token() string
}
