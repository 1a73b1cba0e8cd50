package hookstream

import "strings"

// Default path prefixes and capacity, matching the conventional relay layout.
const (
	DefaultHookPath               = "/hook"
	DefaultHookSubscriptionPath   = "/subscribe/hook"
	DefaultBundleSubscriptionPath = "/subscribe/bundle"
	DefaultMaxSubscriptions       = 10
)

// Config holds the configuration for a Relay instance.
type Config struct {
	// HookPath is the route prefix for inbound webhook deliveries
	// (POST <HookPath>/<webhook id>/...).
	HookPath string

	// HookSubscriptionPath is the route prefix for webhook subscription
	// upgrades (<HookSubscriptionPath>/<webhook id>).
	HookSubscriptionPath string

	// BundleSubscriptionPath is the route prefix for bundle subscription
	// upgrades (<BundleSubscriptionPath>/<bundle id>).
	BundleSubscriptionPath string

	// MaxSubscriptions is the default per-webhook and per-bundle subscriber
	// capacity, used when a spec does not set its own.
	MaxSubscriptions int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		HookPath:               DefaultHookPath,
		HookSubscriptionPath:   DefaultHookSubscriptionPath,
		BundleSubscriptionPath: DefaultBundleSubscriptionPath,
		MaxSubscriptions:       DefaultMaxSubscriptions,
	}
}

// sanitize normalizes all path prefixes in place.
func (c *Config) sanitize() {
	c.HookPath = sanitizePath(c.HookPath)
	c.HookSubscriptionPath = sanitizePath(c.HookSubscriptionPath)
	c.BundleSubscriptionPath = sanitizePath(c.BundleSubscriptionPath)
}

// sanitizePath ensures a leading slash and strips a trailing one.
func sanitizePath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimSuffix(p, "/")
}
