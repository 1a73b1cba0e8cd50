package hookstream

import (
	"log/slog"
	"sync"

	"github.com/xraph/hookstream/bundle"
	"github.com/xraph/hookstream/observability"
	"github.com/xraph/hookstream/webhook"
)

// Relay is the root subscription/broadcast engine. It owns the webhook and
// bundle registries and drives the two inbound request flows: delivery fanout
// and subscription admission.
type Relay struct {
	config  Config
	logger  *slog.Logger
	metrics *observability.Metrics
	tracer  *observability.Tracer

	mu      sync.RWMutex
	hooks   map[string]*webhook.Webhook
	bundles map[string]*bundle.Bundle
}

// Option configures a Relay instance.
type Option func(*Relay) error

// New creates a new Relay with the given options.
func New(opts ...Option) (*Relay, error) {
	r := &Relay{
		config:  DefaultConfig(),
		logger:  slog.Default(),
		hooks:   make(map[string]*webhook.Webhook),
		bundles: make(map[string]*bundle.Bundle),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.config.sanitize()
	return r, nil
}

// Config returns the relay's normalized configuration.
func (r *Relay) Config() Config {
	return r.config
}

// WithLogger sets the structured logger for the Relay instance.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) error {
		r.logger = logger
		return nil
	}
}

// WithHookPath sets the route prefix for inbound webhook deliveries.
func WithHookPath(p string) Option {
	return func(r *Relay) error {
		r.config.HookPath = p
		return nil
	}
}

// WithHookSubscriptionPath sets the route prefix for webhook subscription
// upgrades.
func WithHookSubscriptionPath(p string) Option {
	return func(r *Relay) error {
		r.config.HookSubscriptionPath = p
		return nil
	}
}

// WithBundleSubscriptionPath sets the route prefix for bundle subscription
// upgrades.
func WithBundleSubscriptionPath(p string) Option {
	return func(r *Relay) error {
		r.config.BundleSubscriptionPath = p
		return nil
	}
}

// WithMaxSubscriptions sets the default subscriber capacity for webhooks and
// bundles created without their own.
func WithMaxSubscriptions(n int) Option {
	return func(r *Relay) error {
		r.config.MaxSubscriptions = n
		return nil
	}
}

// WithMetrics enables metric recording for the Relay instance.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Relay) error {
		r.metrics = m
		return nil
	}
}

// WithTracer enables tracing of the delivery fanout pipeline.
func WithTracer(t *observability.Tracer) Option {
	return func(r *Relay) error {
		r.tracer = t
		return nil
	}
}
