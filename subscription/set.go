// Package subscription implements the capacity-bounded subscriber set shared
// by webhooks and bundles, with broadcast fanout over live connections.
package subscription

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/xraph/hookstream/auth"
	"github.com/xraph/hookstream/delivery"
)

// ErrMaxSubscriptions is returned by Admit when the set is at capacity.
var ErrMaxSubscriptions = errors.New("hookstream: max subscriptions reached")

// Subscription is one admitted subscriber connection. It is owned exclusively
// by the Set that admitted it.
type Subscription struct {
	// ConnID is the ephemeral connection identifier, generated per
	// connection and never reused.
	ConnID string

	// Identity is the value the subscription authenticator returned for
	// this subscriber.
	Identity any

	// Channel is the transport-supplied message channel.
	Channel Channel
}

// Set is the subscribable base shared by Webhook and Bundle: a bounded set of
// subscriber connections plus the authenticator guarding admission.
//
// The set's mutex covers only membership. Broadcast snapshots the current
// subscribers under the lock and sends outside it, so one slow subscriber
// never blocks concurrent admits or removals.
type Set struct {
	mu      sync.RWMutex
	subs    map[string]*Subscription
	max     int
	subAuth auth.Authenticator
	logger  *slog.Logger
}

// NewSet creates a subscriber set with the given capacity and subscription
// authenticator. A nil authenticator defaults to auth.None; a nil logger
// defaults to slog.Default().
func NewSet(maxSubscriptions int, subAuth auth.Authenticator, logger *slog.Logger) *Set {
	if subAuth == nil {
		subAuth = auth.NewNone()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Set{
		subs:    make(map[string]*Subscription),
		max:     maxSubscriptions,
		subAuth: subAuth,
		logger:  logger,
	}
}

// VerifyRequest delegates to the subscription authenticator.
func (s *Set) VerifyRequest(ctx context.Context, req *delivery.Request) (auth.Result, error) {
	return s.subAuth.Verify(ctx, req)
}

// HasSubscriptionToken reports whether the subscription authenticator carries
// a shareable token.
func (s *Set) HasSubscriptionToken() bool { return s.subAuth.HasToken() }

// SubscriptionToken returns the subscription authenticator's token.
func (s *Set) SubscriptionToken() string { return s.subAuth.Token() }

// MaxSubscriptions returns the admission capacity.
func (s *Set) MaxSubscriptions() int { return s.max }

// Len returns the current number of subscribers.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// AtCapacity reports whether the set is full.
func (s *Set) AtCapacity() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs) >= s.max
}

// Admit inserts a subscription, enforcing capacity in the same critical
// section so concurrent admits cannot overshoot the limit. Returns
// ErrMaxSubscriptions without altering the set when full.
func (s *Set) Admit(sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.subs) >= s.max {
		return ErrMaxSubscriptions
	}
	s.subs[sub.ConnID] = sub
	return nil
}

// Remove deletes a subscription by connection id. Removing an absent id is a
// no-op, so disconnect callbacks and forced closes may race safely.
func (s *Set) Remove(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, connID)
}

// Broadcast sends the payload to every current subscriber. Send failures are
// logged per subscriber and never interrupt delivery to the others.
func (s *Set) Broadcast(payload string) {
	for _, sub := range s.snapshot() {
		if err := sub.Channel.Send(payload); err != nil {
			s.logger.Error("broadcast send failed",
				"conn_id", sub.ConnID,
				"error", err,
			)
		}
	}
}

// CloseAll forcibly closes every subscriber channel with the given close code
// and reason, clearing the set. Used during webhook and bundle deletion.
func (s *Set) CloseAll(code int, reason string) {
	s.mu.Lock()
	subs := make([]*Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subs = make(map[string]*Subscription)
	s.mu.Unlock()

	for _, sub := range subs {
		if err := sub.Channel.Close(code, reason); err != nil {
			s.logger.Debug("close subscriber failed",
				"conn_id", sub.ConnID,
				"error", err,
			)
		}
	}
}

// snapshot copies the current subscriber list under the read lock so callers
// can iterate without holding it across subscriber I/O.
func (s *Set) snapshot() []*Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := make([]*Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	return subs
}
