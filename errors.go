package hookstream

import (
	"errors"

	"github.com/xraph/hookstream/subscription"
)

// Sentinel errors returned by Relay operations.
var (
	// ErrInvalidIdentifier is returned when a user-supplied identifier is
	// empty or contains a path separator.
	ErrInvalidIdentifier = errors.New("hookstream: invalid identifier")

	// ErrIdentifierInUse is returned when a user-supplied identifier already
	// exists in its namespace.
	ErrIdentifierInUse = errors.New("hookstream: identifier already in use")

	// ErrAlreadyBundled is returned when attaching a webhook to a bundle
	// that already has a member with the same identifier.
	ErrAlreadyBundled = errors.New("hookstream: webhook already in bundle")

	// ErrWebhookNotFound is returned when a webhook cannot be found.
	ErrWebhookNotFound = errors.New("hookstream: webhook not found")

	// ErrBundleNotFound is returned when a bundle cannot be found.
	ErrBundleNotFound = errors.New("hookstream: bundle not found")
)

// ErrMaxSubscriptions is returned when admitting a subscriber into a set that
// is at capacity.
var ErrMaxSubscriptions = subscription.ErrMaxSubscriptions
