package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/xraph/hookstream/delivery"
	"github.com/xraph/hookstream/signature"
)

// Bearer authenticates requests against a single shared token, presented
// either as "Authorization: Bearer <token>" or as a "token" query parameter.
// The query form exists for websocket subscription clients that cannot set
// headers.
//
// Bearer is the token-carrying authenticator: create operations return its
// token to the caller so it can be handed to webhook producers or
// subscribers.
type Bearer struct {
	token string
}

// NewBearer creates a Bearer authenticator. An empty token is replaced with a
// freshly generated one.
func NewBearer(token string) *Bearer {
	if token == "" {
		token = signature.GenerateToken()
	}
	return &Bearer{token: token}
}

// Verify compares the presented token against the configured one. A request
// with no token at all is a negative result, not an error: absence of a
// bearer token is an answer, unlike a malformed Basic header.
func (b *Bearer) Verify(_ context.Context, req *delivery.Request) (Result, error) {
	presented := ""

	if header := req.Header.Get("Authorization"); header != "" {
		const prefix = "Bearer "
		if strings.HasPrefix(header, prefix) {
			presented = strings.TrimPrefix(header, prefix)
		}
	}

	if presented == "" {
		presented = req.Query.Get("token")
	}

	if presented == "" {
		return Result{Verified: false, Identity: 0}, nil
	}

	ok := subtle.ConstantTimeCompare([]byte(presented), []byte(b.token)) == 1
	return Result{Verified: ok, Identity: 0}, nil
}

// HasToken always reports true.
func (b *Bearer) HasToken() bool { return true }

// Token returns the shared token.
func (b *Bearer) Token() string { return b.token }
