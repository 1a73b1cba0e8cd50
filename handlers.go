package hookstream

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/hookstream/auth"
	"github.com/xraph/hookstream/delivery"
	"github.com/xraph/hookstream/id"
	"github.com/xraph/hookstream/subscription"
	"github.com/xraph/hookstream/webhook"
)

// Namespace selects which registry a subscription request targets.
type Namespace int

const (
	// NamespaceWebhook targets the webhook registry.
	NamespaceWebhook Namespace = iota

	// NamespaceBundle targets the bundle registry.
	NamespaceBundle
)

// String returns the namespace name for logs.
func (n Namespace) String() string {
	switch n {
	case NamespaceWebhook:
		return "webhook"
	case NamespaceBundle:
		return "bundle"
	default:
		return "unknown"
	}
}

// HandleDelivery drives one inbound webhook delivery: look up the webhook,
// authenticate, and acknowledge. The returned outcome is the acknowledgment;
// payload production and subscriber fanout run asynchronously after it, so a
// fast producer is never held up by slow subscribers. Fanout is best-effort
// by contract and may race with the acknowledgment.
func (r *Relay) HandleDelivery(ctx context.Context, webhookID string, req *delivery.Request) delivery.Outcome {
	hook, ok := r.Webhook(webhookID)
	if !ok {
		r.logger.WarnContext(ctx, "delivery for unknown webhook", "webhook_id", webhookID)
		return r.recordOutcome(delivery.OutcomeNotFound)
	}

	result, err := hook.VerifyDelivery(ctx, req)
	if err != nil {
		r.logger.ErrorContext(ctx, "delivery authentication error",
			"webhook_id", webhookID,
			"error", err,
		)
		return r.recordOutcome(delivery.OutcomeAuthError)
	}
	if !result.Verified {
		r.logger.WarnContext(ctx, "delivery authorization failed", "webhook_id", webhookID)
		return r.recordOutcome(delivery.OutcomeUnauthorized)
	}

	// The inbound request context dies with the acknowledgment; the fanout
	// pipeline keeps its values but not its cancellation.
	go r.fanout(context.WithoutCancel(ctx), hook, req)

	return r.recordOutcome(delivery.OutcomeAccepted)
}

// recordOutcome counts a delivery outcome and passes it through.
func (r *Relay) recordOutcome(outcome delivery.Outcome) delivery.Outcome {
	if r.metrics != nil {
		r.metrics.RecordDelivery(outcome.String())
	}
	return outcome
}

// fanout produces the payload and broadcasts it to the webhook's subscribers
// and, when bundled, to the bundle's subscribers.
func (r *Relay) fanout(ctx context.Context, hook *webhook.Webhook, req *delivery.Request) {
	start := time.Now()

	var span trace.Span
	if r.tracer != nil {
		ctx, span = r.tracer.StartFanoutSpan(ctx, hook.ID(), hook.BundleID())
	}

	data, err := hook.ProcessDelivery(ctx, req)
	if err != nil {
		r.logger.ErrorContext(ctx, "payload processing failed",
			"webhook_id", hook.ID(),
			"error", err,
		)
		if span != nil {
			r.tracer.EndFanoutSpan(span, 0, err.Error())
		}
		return
	}

	sends := hook.Len()
	hook.Broadcast(data)

	if bundleID := hook.BundleID(); bundleID != "" {
		if b, ok := r.Bundle(bundleID); ok {
			sends += b.Len()
			b.Broadcast(data)
		}
	}

	if r.metrics != nil {
		r.metrics.RecordFanout(sends, time.Since(start).Seconds())
	}
	if span != nil {
		r.tracer.EndFanoutSpan(span, sends, "")
	}

	r.logger.DebugContext(ctx, "delivery fanned out",
		"webhook_id", hook.ID(),
		"subscribers", sends,
	)
}

// HandleSubscription drives one inbound subscription upgrade: look up the
// target in the requested namespace, authenticate, admit, and watch for
// disconnect. Every rejection sends the subscriber a human-readable reason
// before closing with the paired code; a subscriber is never dropped
// silently.
func (r *Relay) HandleSubscription(ctx context.Context, ns Namespace, targetID string, req *delivery.Request, ch subscription.Channel) {
	target, ok := r.lookupSubscribable(ns, targetID)
	if !ok {
		r.logger.WarnContext(ctx, "subscription for unknown target",
			"namespace", ns,
			"target_id", targetID,
		)
		r.reject(ch, subscription.CloseInvalidSubscriptionID)
		return
	}

	result, err := target.VerifyRequest(ctx, req)
	if err != nil {
		r.logger.ErrorContext(ctx, "subscription authentication error",
			"namespace", ns,
			"target_id", targetID,
			"error", err,
		)
		r.reject(ch, subscription.CloseAuthenticationError)
		return
	}
	if !result.Verified {
		r.logger.WarnContext(ctx, "subscription authorization failed",
			"namespace", ns,
			"target_id", targetID,
		)
		r.reject(ch, subscription.CloseAuthorizationFailed)
		return
	}

	sub := &subscription.Subscription{
		ConnID:   id.NewConnID(),
		Identity: result.Identity,
		Channel:  ch,
	}
	if err := target.Admit(sub); err != nil {
		r.logger.DebugContext(ctx, "subscription rejected at capacity",
			"namespace", ns,
			"target_id", targetID,
		)
		r.reject(ch, subscription.CloseMaxSubscriptions)
		return
	}

	if r.metrics != nil {
		r.metrics.SubscriptionOpened()
	}
	r.logger.DebugContext(ctx, "subscription opened",
		"namespace", ns,
		"target_id", targetID,
		"conn_id", sub.ConnID,
	)

	// The channel's closed signal fires exactly once, whether the subscriber
	// disconnected or a deletion force-closed it; removal is idempotent
	// either way.
	go func() {
		<-ch.Closed()
		target.Remove(sub.ConnID)
		if r.metrics != nil {
			r.metrics.SubscriptionClosed()
		}
		r.logger.Debug("subscription closed",
			"namespace", ns.String(),
			"target_id", targetID,
			"conn_id", sub.ConnID,
		)
	}()
}

// subscribable is the shared surface of webhook.Webhook and bundle.Bundle the
// subscription handler needs.
type subscribable interface {
	VerifyRequest(ctx context.Context, req *delivery.Request) (auth.Result, error)
	Admit(sub *subscription.Subscription) error
	Remove(connID string)
}

// lookupSubscribable resolves a subscription target by namespace.
func (r *Relay) lookupSubscribable(ns Namespace, targetID string) (subscribable, bool) {
	switch ns {
	case NamespaceWebhook:
		hook, ok := r.Webhook(targetID)
		if !ok {
			return nil, false
		}
		return hook, true
	case NamespaceBundle:
		b, ok := r.Bundle(targetID)
		if !ok {
			return nil, false
		}
		return b, true
	default:
		return nil, false
	}
}

// reject sends the human-readable reason to the subscriber and closes the
// channel with the paired code.
func (r *Relay) reject(ch subscription.Channel, code int) {
	msg := subscription.CloseMessage(code)
	if err := ch.Send(fmt.Sprintf("(%d) %s", code, msg)); err != nil {
		r.logger.Debug("send rejection reason failed", "error", err)
	}
	if err := ch.Close(code, msg); err != nil {
		r.logger.Debug("close rejected channel failed", "error", err)
	}
}
