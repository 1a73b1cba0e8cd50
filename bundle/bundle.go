// Package bundle defines the bundle entity: a named aggregation of webhooks
// whose subscribers receive every member's deliveries.
package bundle

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/xraph/hookstream/auth"
	"github.com/xraph/hookstream/internal/entity"
	"github.com/xraph/hookstream/subscription"
)

// Bundle is a subscribable aggregating zero or more member webhooks by
// identifier. Membership here is a plain set mutation; keeping it consistent
// with each member webhook's bundle id is the engine's responsibility.
type Bundle struct {
	entity.Entity
	*subscription.Set

	id string

	mu      sync.RWMutex
	members map[string]struct{}
}

// Config carries the constructor inputs for a bundle.
type Config struct {
	ID               string
	MaxSubscriptions int
	SubscriptionAuth auth.Authenticator
	Logger           *slog.Logger
}

// New constructs an empty bundle.
func New(cfg Config) *Bundle {
	return &Bundle{
		Entity:  entity.New(),
		Set:     subscription.NewSet(cfg.MaxSubscriptions, cfg.SubscriptionAuth, cfg.Logger),
		id:      cfg.ID,
		members: make(map[string]struct{}),
	}
}

// ID returns the bundle identifier.
func (b *Bundle) ID() string { return b.id }

// AddWebhook records a webhook as a member.
func (b *Bundle) AddWebhook(webhookID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.members[webhookID] = struct{}{}
}

// RemoveWebhook removes a member. Removing an absent id is a no-op.
func (b *Bundle) RemoveWebhook(webhookID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.members, webhookID)
}

// Contains reports whether a webhook is a member.
func (b *Bundle) Contains(webhookID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.members[webhookID]
	return ok
}

// WebhookIDs returns the member identifiers in stable order.
func (b *Bundle) WebhookIDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]string, 0, len(b.members))
	for id := range b.members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
