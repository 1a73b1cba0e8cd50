// Package webhook defines the webhook entity: one named inbound delivery
// endpoint with its own capacity-bounded subscriber set.
package webhook

import (
	"context"
	"log/slog"
	"strings"

	"github.com/xraph/hookstream/auth"
	"github.com/xraph/hookstream/delivery"
	"github.com/xraph/hookstream/internal/entity"
	"github.com/xraph/hookstream/payload"
	"github.com/xraph/hookstream/subscription"
)

// Webhook is a subscribable bound to one inbound endpoint path template, one
// delivery authenticator, and one payload processor. It may additionally
// belong to a bundle; the bundle reference is an identifier resolved through
// the engine's registry, never an owning pointer, so the two lifetimes stay
// independently manageable.
type Webhook struct {
	entity.Entity
	*subscription.Set

	id        string
	endpoint  string
	bundleID  string
	hookAuth  auth.Authenticator
	processor payload.Processor
	params    []payload.PathParam
}

// Config carries the constructor inputs for a webhook. The engine fills in
// defaults before calling New.
type Config struct {
	ID               string
	Endpoint         string
	BundleID         string
	MaxSubscriptions int
	Processor        payload.Processor
	DeliveryAuth     auth.Authenticator
	SubscriptionAuth auth.Authenticator
	Logger           *slog.Logger
}

// New constructs a webhook, normalizing the endpoint template (leading slash
// stripped) and deriving its path params: every template segment containing a
// ':' marker yields {key: segment minus the marker, index: its zero-based
// position in the template}.
func New(cfg Config) *Webhook {
	endpoint := strings.TrimPrefix(cfg.Endpoint, "/")

	var params []payload.PathParam
	for i, segment := range strings.Split(endpoint, "/") {
		segment = strings.TrimSpace(segment)
		if segment == "" || !strings.Contains(segment, ":") {
			continue
		}
		params = append(params, payload.PathParam{
			Key:   strings.ReplaceAll(segment, ":", ""),
			Index: i,
		})
	}

	return &Webhook{
		Entity:    entity.New(),
		Set:       subscription.NewSet(cfg.MaxSubscriptions, cfg.SubscriptionAuth, cfg.Logger),
		id:        cfg.ID,
		endpoint:  endpoint,
		bundleID:  cfg.BundleID,
		hookAuth:  cfg.DeliveryAuth,
		processor: cfg.Processor,
		params:    params,
	}
}

// ID returns the webhook identifier.
func (w *Webhook) ID() string { return w.id }

// Endpoint returns the normalized endpoint template. Implements
// payload.Context.
func (w *Webhook) Endpoint() string { return w.endpoint }

// BundleID returns the identifier of the bundle this webhook belongs to, or
// "" when unbundled.
func (w *Webhook) BundleID() string { return w.bundleID }

// PathParams returns a copy of the derived path params. Implements
// payload.Context.
func (w *Webhook) PathParams() []payload.PathParam {
	out := make([]payload.PathParam, len(w.params))
	copy(out, w.params)
	return out
}

// VerifyDelivery delegates to the delivery authenticator.
func (w *Webhook) VerifyDelivery(ctx context.Context, req *delivery.Request) (auth.Result, error) {
	return w.hookAuth.Verify(ctx, req)
}

// HasDeliveryToken reports whether the delivery authenticator carries a
// shareable token.
func (w *Webhook) HasDeliveryToken() bool { return w.hookAuth.HasToken() }

// DeliveryToken returns the delivery authenticator's token.
func (w *Webhook) DeliveryToken() string { return w.hookAuth.Token() }

// ProcessDelivery produces the outbound payload for an authenticated
// delivery, passing this webhook as the processor context.
func (w *Webhook) ProcessDelivery(ctx context.Context, req *delivery.Request) (string, error) {
	return w.processor.Process(ctx, req, w)
}
