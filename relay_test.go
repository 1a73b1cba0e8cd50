package hookstream_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xraph/hookstream"
	"github.com/xraph/hookstream/auth"
	"github.com/xraph/hookstream/delivery"
	"github.com/xraph/hookstream/subscription"
)

func ctx() context.Context { return context.Background() }

func newRelay(t *testing.T, opts ...hookstream.Option) *hookstream.Relay {
	t.Helper()
	r, err := hookstream.New(opts...)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func request() *delivery.Request {
	return &delivery.Request{
		Method: http.MethodPost,
		Path:   "/hook/test",
		Header: http.Header{},
		Source: "127.0.0.1",
	}
}

// recordChannel is a subscription.Channel that records messages and close
// calls, signalling each send so tests can wait on asynchronous fanout.
type recordChannel struct {
	mu       sync.Mutex
	messages []string
	code     int
	reason   string
	received chan string
	closed   chan struct{}
}

func newRecordChannel() *recordChannel {
	return &recordChannel{
		received: make(chan string, 16),
		closed:   make(chan struct{}),
	}
}

func (c *recordChannel) Send(text string) error {
	c.mu.Lock()
	c.messages = append(c.messages, text)
	c.mu.Unlock()
	c.received <- text
	return nil
}

func (c *recordChannel) Close(code int, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.closed:
	default:
		c.code = code
		c.reason = reason
		close(c.closed)
	}
	return nil
}

func (c *recordChannel) Closed() <-chan struct{} { return c.closed }

func (c *recordChannel) wait(t *testing.T) string {
	t.Helper()
	select {
	case msg := <-c.received:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return ""
	}
}

func (c *recordChannel) closeCode(t *testing.T) int {
	t.Helper()
	select {
	case <-c.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for close")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code
}

func subscribe(t *testing.T, r *hookstream.Relay, ns hookstream.Namespace, targetID string) *recordChannel {
	t.Helper()
	ch := newRecordChannel()
	r.HandleSubscription(ctx(), ns, targetID, request(), ch)
	select {
	case <-ch.closed:
		t.Fatalf("subscription rejected with code %d", ch.code)
	default:
	}
	return ch
}

func TestCreateWebhookGeneratesID(t *testing.T) {
	r := newRelay(t)

	result, err := r.CreateWebhook(ctx(), hookstream.WebhookSpec{})
	if err != nil {
		t.Fatal(err)
	}
	if result.ID == "" {
		t.Fatal("expected generated id")
	}
	if result.HookPath != "/hook/"+result.ID {
		t.Fatalf("unexpected hook path %q", result.HookPath)
	}
	if result.SubscriptionPath != "/subscribe/hook/"+result.ID {
		t.Fatalf("unexpected subscription path %q", result.SubscriptionPath)
	}
	if _, ok := r.Webhook(result.ID); !ok {
		t.Fatal("expected webhook registered")
	}
}

func TestCreateWebhookEndpointInHookPath(t *testing.T) {
	r := newRelay(t)

	result, err := r.CreateWebhook(ctx(), hookstream.WebhookSpec{
		ID:       "orders",
		Endpoint: "/orders/:region/:event",
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.HookPath != "/hook/orders/orders/:region/:event" {
		t.Fatalf("unexpected hook path %q", result.HookPath)
	}
}

func TestCreateWebhookRejectsInvalidID(t *testing.T) {
	r := newRelay(t)

	_, err := r.CreateWebhook(ctx(), hookstream.WebhookSpec{ID: "has/slash"})
	if !errors.Is(err, hookstream.ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
}

func TestCreateWebhookRejectsDuplicateID(t *testing.T) {
	r := newRelay(t)

	if _, err := r.CreateWebhook(ctx(), hookstream.WebhookSpec{ID: "dup"}); err != nil {
		t.Fatal(err)
	}
	_, err := r.CreateWebhook(ctx(), hookstream.WebhookSpec{ID: "dup"})
	if !errors.Is(err, hookstream.ErrIdentifierInUse) {
		t.Fatalf("expected ErrIdentifierInUse, got %v", err)
	}
}

func TestWebhookAndBundleNamespacesAreIndependent(t *testing.T) {
	r := newRelay(t)

	if _, err := r.CreateWebhook(ctx(), hookstream.WebhookSpec{ID: "shared"}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.CreateBundle(ctx(), hookstream.BundleSpec{ID: "shared"}); err != nil {
		t.Fatalf("bundle id may equal a webhook id, got %v", err)
	}
}

func TestCreateWebhookAlreadyBundled(t *testing.T) {
	r := newRelay(t)

	if _, err := r.CreateBundle(ctx(), hookstream.BundleSpec{ID: "bn"}); err != nil {
		t.Fatal(err)
	}
	b, _ := r.Bundle("bn")
	b.AddWebhook("wh")

	_, err := r.CreateWebhook(ctx(), hookstream.WebhookSpec{ID: "wh", BundleID: "bn"})
	if !errors.Is(err, hookstream.ErrAlreadyBundled) {
		t.Fatalf("expected ErrAlreadyBundled, got %v", err)
	}
}

func TestCreateWebhookNonexistentBundleKeepsReference(t *testing.T) {
	r := newRelay(t)

	if _, err := r.CreateWebhook(ctx(), hookstream.WebhookSpec{ID: "wh", BundleID: "ghost"}); err != nil {
		t.Fatal(err)
	}

	hook, _ := r.Webhook("wh")
	if hook.BundleID() != "ghost" {
		t.Fatalf("expected bundle reference kept, got %q", hook.BundleID())
	}
}

func TestDeleteWebhookDetachesFromBundle(t *testing.T) {
	r := newRelay(t)

	if _, err := r.CreateBundle(ctx(), hookstream.BundleSpec{ID: "bn"}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.CreateWebhook(ctx(), hookstream.WebhookSpec{ID: "wh", BundleID: "bn"}); err != nil {
		t.Fatal(err)
	}

	b, _ := r.Bundle("bn")
	if !b.Contains("wh") {
		t.Fatal("expected member attached")
	}

	if err := r.DeleteWebhook(ctx(), "wh"); err != nil {
		t.Fatal(err)
	}
	if b.Contains("wh") {
		t.Fatal("expected member detached")
	}
	if _, ok := r.Webhook("wh"); ok {
		t.Fatal("expected webhook deregistered")
	}

	// The bundle survives its members and can still be deleted cleanly.
	if err := r.DeleteBundle(ctx(), "bn"); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteWebhookNotFound(t *testing.T) {
	r := newRelay(t)

	if err := r.DeleteWebhook(ctx(), "missing"); !errors.Is(err, hookstream.ErrWebhookNotFound) {
		t.Fatalf("expected ErrWebhookNotFound, got %v", err)
	}
}

func TestDeleteWebhookClosesSubscribers(t *testing.T) {
	r := newRelay(t)

	if _, err := r.CreateWebhook(ctx(), hookstream.WebhookSpec{ID: "wh"}); err != nil {
		t.Fatal(err)
	}
	ch := subscribe(t, r, hookstream.NamespaceWebhook, "wh")

	if err := r.DeleteWebhook(ctx(), "wh"); err != nil {
		t.Fatal(err)
	}
	if code := ch.closeCode(t); code != subscription.CloseNormal {
		t.Fatalf("expected normal closure, got %d", code)
	}
}

func TestCreateBundleWithMembers(t *testing.T) {
	r := newRelay(t)

	result, err := r.CreateBundle(ctx(), hookstream.BundleSpec{
		ID: "bn",
		Webhooks: []hookstream.WebhookSpec{
			{ID: "wh-a"},
			{ID: "wh-b"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Webhooks) != 2 {
		t.Fatalf("expected 2 member results, got %d", len(result.Webhooks))
	}
	if result.SubscriptionPath != "/subscribe/bundle/bn" {
		t.Fatalf("unexpected subscription path %q", result.SubscriptionPath)
	}

	b, _ := r.Bundle("bn")
	if !b.Contains("wh-a") || !b.Contains("wh-b") {
		t.Fatal("expected members attached")
	}
}

func TestCreateBundleMemberFailureIsBestEffort(t *testing.T) {
	r := newRelay(t)

	if _, err := r.CreateWebhook(ctx(), hookstream.WebhookSpec{ID: "taken"}); err != nil {
		t.Fatal(err)
	}

	result, err := r.CreateBundle(ctx(), hookstream.BundleSpec{
		ID: "bn",
		Webhooks: []hookstream.WebhookSpec{
			{ID: "taken"},
			{ID: "fresh"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Webhooks) != 1 || result.Webhooks[0].ID != "fresh" {
		t.Fatalf("expected only the fresh member, got %v", result.Webhooks)
	}
}

func TestDeleteBundleDeletesMembers(t *testing.T) {
	r := newRelay(t)

	if _, err := r.CreateBundle(ctx(), hookstream.BundleSpec{
		ID:       "bn",
		Webhooks: []hookstream.WebhookSpec{{ID: "wh-a"}, {ID: "wh-b"}},
	}); err != nil {
		t.Fatal(err)
	}

	if err := r.DeleteBundle(ctx(), "bn"); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Bundle("bn"); ok {
		t.Fatal("expected bundle deregistered")
	}
	if _, ok := r.Webhook("wh-a"); ok {
		t.Fatal("expected member wh-a deleted")
	}
	if _, ok := r.Webhook("wh-b"); ok {
		t.Fatal("expected member wh-b deleted")
	}
}

func TestDeleteBundleNotFound(t *testing.T) {
	r := newRelay(t)

	if err := r.DeleteBundle(ctx(), "missing"); !errors.Is(err, hookstream.ErrBundleNotFound) {
		t.Fatalf("expected ErrBundleNotFound, got %v", err)
	}
}

func TestHandleDeliveryUnknownWebhook(t *testing.T) {
	r := newRelay(t)

	if out := r.HandleDelivery(ctx(), "missing", request()); out != delivery.OutcomeNotFound {
		t.Fatalf("expected not found, got %v", out)
	}
}

func TestHandleDeliveryUnauthorized(t *testing.T) {
	r := newRelay(t)

	if _, err := r.CreateWebhook(ctx(), hookstream.WebhookSpec{
		ID:           "wh",
		DeliveryAuth: auth.NewBearer("whtok_fixed"),
	}); err != nil {
		t.Fatal(err)
	}

	if out := r.HandleDelivery(ctx(), "wh", request()); out != delivery.OutcomeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", out)
	}

	req := request()
	req.Header.Set("Authorization", "Bearer whtok_fixed")
	if out := r.HandleDelivery(ctx(), "wh", req); out != delivery.OutcomeAccepted {
		t.Fatalf("expected accepted, got %v", out)
	}
}

func TestHandleDeliveryAuthError(t *testing.T) {
	r := newRelay(t)

	if _, err := r.CreateWebhook(ctx(), hookstream.WebhookSpec{
		ID:           "wh",
		DeliveryAuth: auth.NewBasic("user", "pass"),
	}); err != nil {
		t.Fatal(err)
	}

	// Basic auth with no Authorization header is a processing error, not a
	// negative result.
	if out := r.HandleDelivery(ctx(), "wh", request()); out != delivery.OutcomeAuthError {
		t.Fatalf("expected auth error, got %v", out)
	}
}

func TestDeliveryFansOutToSubscribers(t *testing.T) {
	r := newRelay(t)

	if _, err := r.CreateWebhook(ctx(), hookstream.WebhookSpec{ID: "wh"}); err != nil {
		t.Fatal(err)
	}

	ch1 := subscribe(t, r, hookstream.NamespaceWebhook, "wh")
	ch2 := subscribe(t, r, hookstream.NamespaceWebhook, "wh")

	req := request()
	req.Path = "/hook/wh"
	req.Body = map[string]any{"a": float64(1)}

	if out := r.HandleDelivery(ctx(), "wh", req); out != delivery.OutcomeAccepted {
		t.Fatalf("expected accepted, got %v", out)
	}

	for _, ch := range []*recordChannel{ch1, ch2} {
		msg := ch.wait(t)
		if !strings.Contains(msg, `"source":"127.0.0.1"`) {
			t.Fatalf("unexpected payload %q", msg)
		}
	}
}

func TestDeliveryFansOutToBundleSubscribers(t *testing.T) {
	r := newRelay(t)

	if _, err := r.CreateBundle(ctx(), hookstream.BundleSpec{
		ID:       "bn",
		Webhooks: []hookstream.WebhookSpec{{ID: "wh-a"}, {ID: "wh-b"}},
	}); err != nil {
		t.Fatal(err)
	}

	ch := subscribe(t, r, hookstream.NamespaceBundle, "bn")

	reqA := request()
	reqA.Path = "/hook/wh-a"
	if out := r.HandleDelivery(ctx(), "wh-a", reqA); out != delivery.OutcomeAccepted {
		t.Fatalf("expected accepted, got %v", out)
	}
	ch.wait(t)

	reqB := request()
	reqB.Path = "/hook/wh-b"
	if out := r.HandleDelivery(ctx(), "wh-b", reqB); out != delivery.OutcomeAccepted {
		t.Fatalf("expected accepted, got %v", out)
	}
	ch.wait(t)
}

func TestHandleSubscriptionUnknownTarget(t *testing.T) {
	r := newRelay(t)

	ch := newRecordChannel()
	r.HandleSubscription(ctx(), hookstream.NamespaceWebhook, "missing", request(), ch)

	if code := ch.closeCode(t); code != subscription.CloseInvalidSubscriptionID {
		t.Fatalf("expected 4002, got %d", code)
	}
	if msg := ch.wait(t); msg != "(4002) Invalid Subscription ID" {
		t.Fatalf("unexpected rejection message %q", msg)
	}
}

func TestHandleSubscriptionAuthorizationFailed(t *testing.T) {
	r := newRelay(t)

	if _, err := r.CreateWebhook(ctx(), hookstream.WebhookSpec{
		ID:               "wh",
		SubscriptionAuth: auth.NewBearer("whtok_fixed"),
	}); err != nil {
		t.Fatal(err)
	}

	ch := newRecordChannel()
	r.HandleSubscription(ctx(), hookstream.NamespaceWebhook, "wh", request(), ch)

	if code := ch.closeCode(t); code != subscription.CloseAuthorizationFailed {
		t.Fatalf("expected 4001, got %d", code)
	}
}

func TestHandleSubscriptionAuthenticationError(t *testing.T) {
	r := newRelay(t)

	if _, err := r.CreateWebhook(ctx(), hookstream.WebhookSpec{
		ID:               "wh",
		SubscriptionAuth: auth.NewBasic("user", "pass"),
	}); err != nil {
		t.Fatal(err)
	}

	ch := newRecordChannel()
	r.HandleSubscription(ctx(), hookstream.NamespaceWebhook, "wh", request(), ch)

	if code := ch.closeCode(t); code != subscription.CloseAuthenticationError {
		t.Fatalf("expected 1011, got %d", code)
	}
}

func TestHandleSubscriptionMaxSubscriptions(t *testing.T) {
	r := newRelay(t)

	if _, err := r.CreateWebhook(ctx(), hookstream.WebhookSpec{
		ID:               "wh",
		MaxSubscriptions: 1,
	}); err != nil {
		t.Fatal(err)
	}

	subscribe(t, r, hookstream.NamespaceWebhook, "wh")

	ch := newRecordChannel()
	r.HandleSubscription(ctx(), hookstream.NamespaceWebhook, "wh", request(), ch)

	if code := ch.closeCode(t); code != subscription.CloseMaxSubscriptions {
		t.Fatalf("expected 4003, got %d", code)
	}
	if msg := ch.wait(t); msg != "(4003) Max Subscriptions Reached" {
		t.Fatalf("unexpected rejection message %q", msg)
	}
}

func TestDisconnectFreesCapacity(t *testing.T) {
	r := newRelay(t)

	if _, err := r.CreateWebhook(ctx(), hookstream.WebhookSpec{
		ID:               "wh",
		MaxSubscriptions: 1,
	}); err != nil {
		t.Fatal(err)
	}

	ch := subscribe(t, r, hookstream.NamespaceWebhook, "wh")
	ch.Close(subscription.CloseNormal, "")

	// Removal runs in the disconnect watcher goroutine.
	hook, _ := r.Webhook("wh")
	deadline := time.Now().Add(2 * time.Second)
	for hook.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never removed after disconnect")
		}
		time.Sleep(5 * time.Millisecond)
	}

	subscribe(t, r, hookstream.NamespaceWebhook, "wh")
}

func TestCreateWebhookReturnsTokens(t *testing.T) {
	r := newRelay(t)

	result, err := r.CreateWebhook(ctx(), hookstream.WebhookSpec{
		ID:               "wh",
		DeliveryAuth:     auth.NewBearer(""),
		SubscriptionAuth: auth.NewBearer(""),
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.DeliveryToken == "" || result.SubscriptionToken == "" {
		t.Fatal("expected both tokens populated")
	}
	if result.DeliveryToken == result.SubscriptionToken {
		t.Fatal("expected independent tokens")
	}
}

func TestConfigSanitization(t *testing.T) {
	r := newRelay(t,
		hookstream.WithHookPath("deliver/"),
		hookstream.WithMaxSubscriptions(3),
	)

	cfg := r.Config()
	if cfg.HookPath != "/deliver" {
		t.Fatalf("expected normalized hook path, got %q", cfg.HookPath)
	}
	if cfg.MaxSubscriptions != 3 {
		t.Fatalf("expected max subscriptions 3, got %d", cfg.MaxSubscriptions)
	}
}
