package auth

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/xraph/hookstream/delivery"
)

// Errors returned when the Basic authenticator cannot run its check. These
// surface as authentication errors, not authorization failures.
var (
	ErrMissingAuthorization   = errors.New("auth: missing Authorization header")
	ErrMalformedAuthorization = errors.New("auth: malformed Authorization header")
)

// Basic authenticates requests against a configured username/password pair
// using the Authorization: Basic scheme.
type Basic struct {
	username string
	password string
}

// NewBasic creates a Basic authenticator with the given credentials.
func NewBasic(username, password string) *Basic {
	return &Basic{username: username, password: password}
}

// Verify decodes the Basic credentials and compares them against the
// configured pair. A missing or undecodable header is an error; a decodable
// header with wrong credentials is a negative result with the presented
// username as identity.
func (b *Basic) Verify(_ context.Context, req *delivery.Request) (Result, error) {
	header := req.Header.Get("Authorization")
	if header == "" {
		return Result{}, ErrMissingAuthorization
	}

	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return Result{}, ErrMalformedAuthorization
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil {
		return Result{}, ErrMalformedAuthorization
	}

	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return Result{}, ErrMalformedAuthorization
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(b.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(b.password)) == 1

	return Result{Verified: userOK && passOK, Identity: username}, nil
}

// HasToken always reports false: Basic credentials are configured out of band.
func (b *Basic) HasToken() bool { return false }

// Token returns the empty string.
func (b *Basic) Token() string { return "" }
