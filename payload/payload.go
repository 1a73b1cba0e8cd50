// Package payload defines the pluggable transformation from an inbound
// delivery request into the outbound payload string fanned out to
// subscribers.
//
// Processors are transformations, not validators: malformed bodies pass
// through as-is.
package payload

import (
	"context"

	"github.com/xraph/hookstream/delivery"
)

// PathParam is one templated segment of a webhook's endpoint, derived at
// webhook construction. Index is the zero-based position of the segment
// within the endpoint template.
type PathParam struct {
	Key   string `json:"key"`
	Index int    `json:"index"`
}

// Context is the webhook-side context a Processor receives alongside the
// request. The webhook package implements it.
type Context interface {
	// Endpoint returns the webhook's endpoint template with any leading
	// slash stripped.
	Endpoint() string

	// PathParams returns the templated segments derived from the endpoint.
	PathParams() []PathParam
}

// Processor transforms an inbound delivery request plus webhook context into
// the payload delivered to subscribers. It may perform I/O and must honor ctx
// cancellation if it does.
type Processor interface {
	Process(ctx context.Context, req *delivery.Request, hook Context) (string, error)
}
