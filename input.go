package hookstream

import (
	"github.com/xraph/hookstream/auth"
	"github.com/xraph/hookstream/payload"
)

// WebhookSpec is the creation payload for webhooks. Zero values select the
// configured defaults: a generated identifier, the path-templated processor,
// no-op authenticators, and the relay-wide subscriber capacity.
type WebhookSpec struct {
	// ID is the user-supplied identifier. Empty means generate one.
	ID string

	// Endpoint is the endpoint path template, e.g. "orders/:region/:event".
	// Segments containing a ':' marker become path params.
	Endpoint string

	// BundleID names the bundle to attach this webhook to. Empty means
	// unbundled.
	BundleID string

	// MaxSubscriptions overrides the relay-wide subscriber capacity when > 0.
	MaxSubscriptions int

	// Processor transforms inbound deliveries into outbound payloads.
	Processor payload.Processor

	// DeliveryAuth authenticates inbound deliveries.
	DeliveryAuth auth.Authenticator

	// SubscriptionAuth authenticates subscription requests.
	SubscriptionAuth auth.Authenticator
}

// WebhookResult is returned by CreateWebhook.
type WebhookResult struct {
	// ID is the webhook identifier, generated or user-supplied.
	ID string `json:"id"`

	// HookPath is the full delivery path for this webhook, endpoint
	// template included.
	HookPath string `json:"hook_path"`

	// SubscriptionPath is the path subscribers connect to.
	SubscriptionPath string `json:"subscription_path"`

	// DeliveryToken is the delivery authenticator's shareable token, when it
	// carries one.
	DeliveryToken string `json:"hook_authentication_token,omitempty"`

	// SubscriptionToken is the subscription authenticator's shareable token,
	// when it carries one.
	SubscriptionToken string `json:"subscription_authentication_token,omitempty"`
}

// BundleSpec is the creation payload for bundles.
type BundleSpec struct {
	// ID is the user-supplied identifier. Empty means generate one.
	ID string

	// MaxSubscriptions overrides the relay-wide subscriber capacity when > 0.
	MaxSubscriptions int

	// SubscriptionAuth authenticates bundle subscription requests.
	SubscriptionAuth auth.Authenticator

	// Webhooks are member webhook specs created atomically with the bundle,
	// best-effort. Their BundleID defaults to the new bundle's id.
	Webhooks []WebhookSpec
}

// BundleResult is returned by CreateBundle.
type BundleResult struct {
	// ID is the bundle identifier, generated or user-supplied.
	ID string `json:"id"`

	// SubscriptionPath is the path bundle subscribers connect to.
	SubscriptionPath string `json:"subscription_path"`

	// SubscriptionToken is the subscription authenticator's shareable token,
	// when it carries one.
	SubscriptionToken string `json:"subscription_authentication_token,omitempty"`

	// Webhooks holds the results for member webhooks that were created
	// successfully. Member creation failures are logged, not surfaced.
	Webhooks []*WebhookResult `json:"webhooks,omitempty"`
}
