package payload

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xraph/hookstream/delivery"
)

// PathTemplate extracts values for a webhook's templated endpoint segments
// from the matched request path and attaches them to the payload envelope.
// It is the default processor.
type PathTemplate struct {
	fixedSegments int
}

// NewPathTemplate creates a path-templated processor. fixedSegments is the
// number of leading path segments that belong to the relay's own routing
// (the empty segment before the first slash, the hook prefix, and the webhook
// id); everything after them lines up with the webhook's endpoint template.
func NewPathTemplate(fixedSegments int) PathTemplate {
	return PathTemplate{fixedSegments: fixedSegments}
}

// FixedSegments computes the fixed-segment count for a sanitized hook prefix
// such as "/hook": one segment per slash in the prefix, plus the leading
// empty segment and the webhook id.
func FixedSegments(hookPrefix string) int {
	return strings.Count(hookPrefix, "/") + 2
}

// Process emits {"source": ..., "body": ..., "rest_data": {...}} where
// rest_data maps each in-range path param key to the matching trailing
// segment of the request path. Params whose index falls past the end of the
// path are skipped.
func (p PathTemplate) Process(_ context.Context, req *delivery.Request, hook Context) (string, error) {
	var rest []string
	if segments := strings.Split(req.Path, "/"); len(segments) > p.fixedSegments {
		rest = segments[p.fixedSegments:]
	}

	data := make(map[string]string)
	for _, param := range hook.PathParams() {
		if param.Index < len(rest) {
			data[param.Key] = rest[param.Index]
		}
	}

	out, err := json.Marshal(restEnvelope{Source: req.Source, Body: req.Body, RestData: data})
	if err != nil {
		return "", fmt.Errorf("payload: marshal envelope: %w", err)
	}
	return string(out), nil
}

type restEnvelope struct {
	Source   string            `json:"source"`
	Body     any               `json:"body"`
	RestData map[string]string `json:"rest_data"`
}
