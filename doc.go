// Package hookstream provides a webhook-to-websocket relay engine for Go.
//
// Hookstream is a library — not a service. Import it into your application to
// accept inbound webhook deliveries and fan each one out, in real time, to a
// dynamic set of long-lived websocket subscribers.
//
// Key features:
//   - Webhooks with templated endpoint paths and per-webhook pluggable
//     authentication and payload processing
//   - Bundles aggregating webhooks, whose subscribers receive every member's
//     deliveries
//   - Capacity-bounded subscriber sets with lock-free broadcast fanout
//   - Fast acknowledgment: deliveries are acked as soon as they authenticate,
//     fanout proceeds asynchronously and best-effort
//   - Pluggable authenticators (none, basic, bearer token, HMAC signature)
//
// Quick start:
//
//	r, err := hookstream.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	created, err := r.CreateWebhook(ctx, hookstream.WebhookSpec{
//	    Endpoint: "orders/:region",
//	})
//
//	srv := transport.NewHandler(r, nil)
//	http.ListenAndServe(":8080", srv)
//
// Deliveries POSTed to created.HookPath are relayed to every websocket client
// connected at created.SubscriptionPath.
package hookstream
