// Package delivery defines the inbound delivery request abstraction and the
// outcome taxonomy for the delivery pipeline.
//
// The transport layer parses the raw HTTP request and hands the engine a
// *Request; the engine never touches net/http directly.
package delivery

import (
	"net/http"
	"net/url"
)

// Request is one inbound webhook delivery as seen by the engine.
//
// Subscription upgrade requests reuse the same shape (Body is nil there);
// authenticators accept either.
type Request struct {
	// Method is the HTTP method of the inbound request.
	Method string

	// Path is the full decoded request path, including the relay's own
	// routing prefix and the webhook identifier.
	Path string

	// Header holds the inbound request headers.
	Header http.Header

	// Query holds the decoded URL query parameters.
	Query url.Values

	// Body is the parsed request body. JSON bodies decode to
	// map[string]any / []any; bodies that fail to parse are passed through
	// as raw strings.
	Body any

	// RawBody is the unparsed request body, kept for signature verification.
	RawBody []byte

	// Source is the remote address the request arrived from.
	Source string
}

// Cookie returns the named cookie from the request headers, or nil.
func (r *Request) Cookie(name string) *http.Cookie {
	if r.Header == nil {
		return nil
	}
	hr := http.Request{Header: r.Header}
	c, err := hr.Cookie(name)
	if err != nil {
		return nil
	}
	return c
}

// Outcome classifies the result of handling an inbound delivery.
type Outcome int

const (
	// OutcomeAccepted means the delivery authenticated and was acknowledged.
	// Payload production and subscriber fanout proceed asynchronously after
	// acknowledgment; fanout is best-effort by contract.
	OutcomeAccepted Outcome = iota

	// OutcomeNotFound means no webhook is registered under the requested id.
	OutcomeNotFound

	// OutcomeUnauthorized means the authenticator ran and returned
	// not-verified.
	OutcomeUnauthorized

	// OutcomeAuthError means the authenticator itself failed (e.g. a
	// malformed credential header).
	OutcomeAuthError
)

// String returns the outcome name for logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeAuthError:
		return "auth_error"
	default:
		return "unknown"
	}
}

// HTTPStatus maps the outcome to the status code the transport layer writes.
func (o Outcome) HTTPStatus() int {
	switch o {
	case OutcomeAccepted:
		return http.StatusOK
	case OutcomeNotFound:
		return http.StatusBadRequest
	case OutcomeUnauthorized:
		return http.StatusUnauthorized
	case OutcomeAuthError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
