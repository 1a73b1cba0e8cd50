package hookstream

import (
	"context"
	"fmt"

	"github.com/xraph/hookstream/auth"
	"github.com/xraph/hookstream/bundle"
	"github.com/xraph/hookstream/id"
	"github.com/xraph/hookstream/payload"
	"github.com/xraph/hookstream/subscription"
	"github.com/xraph/hookstream/webhook"
)

// CreateWebhook validates or allocates an identifier, fills in the default
// pluggable components, constructs the webhook, and registers it. When the
// spec names an existing bundle the webhook is attached to it; naming a
// nonexistent bundle keeps the reference for lookup but attaches nothing.
func (r *Relay) CreateWebhook(ctx context.Context, spec WebhookSpec) (*WebhookResult, error) {
	maxSubs := spec.MaxSubscriptions
	if maxSubs <= 0 {
		maxSubs = r.config.MaxSubscriptions
	}

	proc := spec.Processor
	if proc == nil {
		proc = payload.NewPathTemplate(payload.FixedSegments(r.config.HookPath))
	}

	deliveryAuth := spec.DeliveryAuth
	if deliveryAuth == nil {
		deliveryAuth = auth.NewNone()
	}

	subscriptionAuth := spec.SubscriptionAuth
	if subscriptionAuth == nil {
		subscriptionAuth = auth.NewNone()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	hookID, err := r.allocateWebhookID(spec.ID)
	if err != nil {
		return nil, err
	}

	var target *bundle.Bundle
	if spec.BundleID != "" {
		if b, ok := r.bundles[spec.BundleID]; ok {
			if b.Contains(hookID) {
				return nil, fmt.Errorf("%w: %s in bundle %s", ErrAlreadyBundled, hookID, spec.BundleID)
			}
			target = b
		}
	}

	hook := webhook.New(webhook.Config{
		ID:               hookID,
		Endpoint:         spec.Endpoint,
		BundleID:         spec.BundleID,
		MaxSubscriptions: maxSubs,
		Processor:        proc,
		DeliveryAuth:     deliveryAuth,
		SubscriptionAuth: subscriptionAuth,
		Logger:           r.logger,
	})

	if target != nil {
		target.AddWebhook(hookID)
	}
	r.hooks[hookID] = hook

	result := &WebhookResult{
		ID:               hookID,
		HookPath:         r.hookPath(hookID, hook.Endpoint()),
		SubscriptionPath: r.config.HookSubscriptionPath + "/" + hookID,
	}
	if hook.HasDeliveryToken() {
		result.DeliveryToken = hook.DeliveryToken()
	}
	if hook.HasSubscriptionToken() {
		result.SubscriptionToken = hook.SubscriptionToken()
	}

	r.logger.DebugContext(ctx, "webhook created",
		"webhook_id", hookID,
		"endpoint", hook.Endpoint(),
		"bundle_id", spec.BundleID,
	)

	return result, nil
}

// DeleteWebhook removes a webhook from the registry, detaches it from its
// bundle, and forcibly closes its subscribers. Safe to call concurrently with
// in-flight deliveries to the same webhook: a broadcast already in flight may
// still reach connections it snapshotted, nothing after that.
func (r *Relay) DeleteWebhook(ctx context.Context, webhookID string) error {
	r.mu.Lock()
	hook, ok := r.hooks[webhookID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWebhookNotFound, webhookID)
	}
	delete(r.hooks, webhookID)

	var owner *bundle.Bundle
	if bundleID := hook.BundleID(); bundleID != "" {
		owner = r.bundles[bundleID]
	}
	r.mu.Unlock()

	if owner != nil {
		owner.RemoveWebhook(webhookID)
	}

	hook.CloseAll(subscription.CloseNormal, subscription.CloseMessage(subscription.CloseNormal))

	r.logger.DebugContext(ctx, "webhook deleted", "webhook_id", webhookID)
	return nil
}

// CreateBundle validates or allocates an identifier, constructs the bundle,
// and registers it. Member webhook specs are then created best-effort: a
// failure creating one member is logged and skipped, never rolling back the
// bundle or the members already created.
func (r *Relay) CreateBundle(ctx context.Context, spec BundleSpec) (*BundleResult, error) {
	maxSubs := spec.MaxSubscriptions
	if maxSubs <= 0 {
		maxSubs = r.config.MaxSubscriptions
	}

	subscriptionAuth := spec.SubscriptionAuth
	if subscriptionAuth == nil {
		subscriptionAuth = auth.NewNone()
	}

	r.mu.Lock()
	bundleID, err := r.allocateBundleID(spec.ID)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}

	b := bundle.New(bundle.Config{
		ID:               bundleID,
		MaxSubscriptions: maxSubs,
		SubscriptionAuth: subscriptionAuth,
		Logger:           r.logger,
	})
	r.bundles[bundleID] = b
	r.mu.Unlock()

	result := &BundleResult{
		ID:               bundleID,
		SubscriptionPath: r.config.BundleSubscriptionPath + "/" + bundleID,
	}
	if b.HasSubscriptionToken() {
		result.SubscriptionToken = b.SubscriptionToken()
	}

	for _, hookSpec := range spec.Webhooks {
		if hookSpec.BundleID == "" {
			hookSpec.BundleID = bundleID
		}
		hookResult, err := r.CreateWebhook(ctx, hookSpec)
		if err != nil {
			r.logger.ErrorContext(ctx, "bundle member webhook creation failed",
				"bundle_id", bundleID,
				"webhook_id", hookSpec.ID,
				"error", err,
			)
			continue
		}
		result.Webhooks = append(result.Webhooks, hookResult)
	}

	r.logger.DebugContext(ctx, "bundle created",
		"bundle_id", bundleID,
		"webhooks", len(result.Webhooks),
	)

	return result, nil
}

// DeleteBundle removes a bundle from the registry, deletes every member
// webhook best-effort, then forcibly closes the bundle's own subscribers.
// Deletion always converges to the bundle and all its listed members being
// absent, even when an individual member deletion fails.
func (r *Relay) DeleteBundle(ctx context.Context, bundleID string) error {
	r.mu.Lock()
	b, ok := r.bundles[bundleID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBundleNotFound, bundleID)
	}
	delete(r.bundles, bundleID)
	r.mu.Unlock()

	for _, webhookID := range b.WebhookIDs() {
		if err := r.DeleteWebhook(ctx, webhookID); err != nil {
			r.logger.ErrorContext(ctx, "bundle member webhook deletion failed",
				"bundle_id", bundleID,
				"webhook_id", webhookID,
				"error", err,
			)
		}
	}

	b.CloseAll(subscription.CloseNormal, subscription.CloseMessage(subscription.CloseNormal))

	r.logger.DebugContext(ctx, "bundle deleted", "bundle_id", bundleID)
	return nil
}

// Webhook returns a registered webhook by identifier.
func (r *Relay) Webhook(webhookID string) (*webhook.Webhook, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hook, ok := r.hooks[webhookID]
	return hook, ok
}

// Bundle returns a registered bundle by identifier.
func (r *Relay) Bundle(bundleID string) (*bundle.Bundle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bundles[bundleID]
	return b, ok
}

// WebhookIDs returns the identifiers of all registered webhooks.
func (r *Relay) WebhookIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.hooks))
	for hookID := range r.hooks {
		ids = append(ids, hookID)
	}
	return ids
}

// BundleIDs returns the identifiers of all registered bundles.
func (r *Relay) BundleIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.bundles))
	for bundleID := range r.bundles {
		ids = append(ids, bundleID)
	}
	return ids
}

// allocateWebhookID validates a user-supplied identifier or generates a fresh
// one, regenerating on collision. Caller holds r.mu.
func (r *Relay) allocateWebhookID(candidate string) (string, error) {
	if candidate != "" {
		if err := id.Validate(candidate); err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, candidate)
		}
		if _, ok := r.hooks[candidate]; ok {
			return "", fmt.Errorf("%w: %q", ErrIdentifierInUse, candidate)
		}
		return candidate, nil
	}

	generated := id.NewWebhookID()
	for {
		if _, ok := r.hooks[generated]; !ok {
			return generated, nil
		}
		generated = id.NewWebhookID()
	}
}

// allocateBundleID is allocateWebhookID for the bundle namespace. The two
// namespaces are independent. Caller holds r.mu.
func (r *Relay) allocateBundleID(candidate string) (string, error) {
	if candidate != "" {
		if err := id.Validate(candidate); err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, candidate)
		}
		if _, ok := r.bundles[candidate]; ok {
			return "", fmt.Errorf("%w: %q", ErrIdentifierInUse, candidate)
		}
		return candidate, nil
	}

	generated := id.NewBundleID()
	for {
		if _, ok := r.bundles[generated]; !ok {
			return generated, nil
		}
		generated = id.NewBundleID()
	}
}

// hookPath assembles the full delivery path for a webhook.
func (r *Relay) hookPath(webhookID, endpoint string) string {
	p := r.config.HookPath + "/" + webhookID
	if endpoint != "" {
		p += "/" + endpoint
	}
	return p
}
