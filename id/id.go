// Package id provides identifier generation and validation for hookstream
// entities.
//
// Webhook and bundle identifiers are opaque strings: callers may supply their
// own, and generated ones are plain random UUIDs so they look the same on the
// wire as user-chosen names. Connection identifiers are ephemeral and never
// user-supplied, so they use prefixed TypeIDs (K-sortable, URL-safe) which
// read better in logs.
package id

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.jetify.com/typeid/v2"
)

// ErrInvalid is returned by Validate for identifiers that cannot be used as a
// path segment.
var ErrInvalid = errors.New("id: invalid identifier")

// PrefixConn is the TypeID prefix for subscriber connection identifiers.
const PrefixConn = "conn"

// NewWebhookID generates a random webhook identifier.
func NewWebhookID() string { return uuid.NewString() }

// NewBundleID generates a random bundle identifier.
func NewBundleID() string { return uuid.NewString() }

// NewConnID generates a fresh connection identifier (e.g. "conn_01h4...").
// Connection IDs are never persisted or reused.
func NewConnID() string {
	tid, err := typeid.Generate(PrefixConn)
	if err != nil {
		panic(fmt.Sprintf("id: generate conn id: %v", err))
	}
	return tid.String()
}

// Validate reports whether a user-supplied identifier is usable. Identifiers
// are routed as single path segments, so they must be non-empty and must not
// contain the path separator.
func Validate(s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty", ErrInvalid)
	}
	if strings.Contains(s, "/") {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalid, s)
	}
	return nil
}
