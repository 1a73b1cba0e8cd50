package transport

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/xraph/hookstream/delivery"
)

// maxBodyBytes caps how much of an inbound delivery body is read.
const maxBodyBytes = 1 << 20 // 1MB

// buildRequest converts an inbound HTTP request into the engine's delivery
// request abstraction. Bodies are parsed by content type; anything that fails
// to parse passes through as a raw string (processors transform, they do not
// validate).
func buildRequest(r *http.Request) *delivery.Request {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		raw = nil
	}

	return &delivery.Request{
		Method:  r.Method,
		Path:    r.URL.Path,
		Header:  r.Header,
		Query:   r.URL.Query(),
		Body:    parseBody(raw, r.Header.Get("Content-Type")),
		RawBody: raw,
		Source:  sourceAddr(r),
	}
}

// parseBody decodes JSON and url-encoded form bodies; everything else, and
// anything malformed, passes through untouched.
func parseBody(raw []byte, contentType string) any {
	if len(raw) == 0 {
		return nil
	}

	if strings.Contains(contentType, "application/x-www-form-urlencoded") {
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return string(raw)
		}
		body := make(map[string]any, len(values))
		for key, vals := range values {
			if len(vals) == 1 {
				body[key] = vals[0]
			} else {
				body[key] = vals
			}
		}
		return body
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return string(raw)
	}
	return body
}

// sourceAddr extracts the peer host from the request's remote address.
func sourceAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
