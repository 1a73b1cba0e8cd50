// Package transport wires the hookstream engine to net/http: it parses
// inbound deliveries into the engine's request abstraction and upgrades
// subscription requests into websocket-backed channels.
package transport

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/xraph/hookstream"
)

// Handler is the data-plane HTTP handler: webhook deliveries and
// subscription upgrades. Administrative operations (create/delete) stay a
// programmatic API on the Relay.
type Handler struct {
	relay    *hookstream.Relay
	upgrader websocket.Upgrader
	logger   *slog.Logger
	mux      *http.ServeMux
}

// NewHandler creates the data-plane handler for a relay, mounting routes at
// the relay's configured path prefixes.
func NewHandler(relay *hookstream.Relay, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{
		relay: relay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Webhook subscribers are programmatic clients, not browsers;
			// origin checks carry no meaning here.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
		mux:    http.NewServeMux(),
	}

	cfg := relay.Config()
	h.mux.HandleFunc("POST "+cfg.HookPath+"/{id}", h.handleDelivery)
	h.mux.HandleFunc("POST "+cfg.HookPath+"/{id}/{rest...}", h.handleDelivery)
	h.mux.HandleFunc("GET "+cfg.HookSubscriptionPath+"/{id}", h.subscriptionHandler(hookstream.NamespaceWebhook))
	h.mux.HandleFunc("GET "+cfg.BundleSubscriptionPath+"/{id}", h.subscriptionHandler(hookstream.NamespaceBundle))
	h.mux.HandleFunc("/", h.handleUnmatched)

	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// handleDelivery parses one inbound webhook delivery and writes the
// acknowledgment status. Fanout happens asynchronously inside the engine.
func (h *Handler) handleDelivery(w http.ResponseWriter, r *http.Request) {
	webhookID := r.PathValue("id")
	req := buildRequest(r)

	outcome := h.relay.HandleDelivery(r.Context(), webhookID, req)
	w.WriteHeader(outcome.HTTPStatus())
}

// subscriptionHandler upgrades the request and hands the resulting channel to
// the engine for admission into the given namespace.
func (h *Handler) subscriptionHandler(ns hookstream.Namespace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		targetID := r.PathValue("id")
		req := buildRequest(r)

		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error response.
			h.logger.Error("websocket upgrade failed",
				"namespace", ns.String(),
				"target_id", targetID,
				"error", err,
			)
			return
		}

		sess := newSession(conn, h.logger)
		go sess.writePump()
		go sess.readPump()

		h.relay.HandleSubscription(r.Context(), ns, targetID, req, sess)
	}
}

// handleUnmatched answers every route the relay does not serve.
func (h *Handler) handleUnmatched(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusBadRequest)
}
