package djen

import (
	"time"

	"github.com/crimson-sun/djenbridge/internal/config"
)

// Option configures a Client.
type Option func(*config.Config)

// WithConnector selects the notification source: "djen" (default) or
// "static", which serves a small embedded fixture set without network access.
func WithConnector(name string) Option {
	return func(c *config.Config) { c.Connector.Provider = name }
}

// WithEndpoint overrides the DJEN API URL.
func WithEndpoint(url string) Option {
	return func(c *config.Config) { c.Connector.Endpoint = url }
}

// WithAPIKey sends a bearer token upstream. DJEN itself needs none.
func WithAPIKey(key string) Option {
	return func(c *config.Config) { c.Connector.APIKey = key }
}

// WithRetry sets the per-attempt timeout and how many times a transient
// upstream failure is retried. Defaults: 30s, 3.
func WithRetry(timeout time.Duration, maxRetries int) Option {
	return func(c *config.Config) {
		c.Connector.Timeout = timeout
		c.Connector.MaxRetries = maxRetries
	}
}

// WithRulesFile replaces the embedded classification rule table.
func WithRulesFile(path string) Option {
	return func(c *config.Config) { c.Engine.RulesPath = path }
}

// WithVerbosity sets summary length: "minimal", "standard" (default), "full".
func WithVerbosity(v string) Option {
	return func(c *config.Config) { c.Engine.Verbosity = v }
}

// WithRateLimits sets per-client ceilings. 0 disables a window.
// Defaults: 100/minute, 1000/hour.
func WithRateLimits(perMinute, perHour int) Option {
	return func(c *config.Config) {
		c.Admission.PerMinute = perMinute
		c.Admission.PerHour = perHour
	}
}

// WithBreaker sets how many consecutive upstream failures open the circuit
// and how long it stays open. Defaults: 3, 60s.
func WithBreaker(threshold int, coolDown time.Duration) Option {
	return func(c *config.Config) {
		c.Breaker.FailureThreshold = threshold
		c.Breaker.CoolDown = coolDown
	}
}

// WithCacheTTL sets the TTL for ranges including today and for past ranges.
// Defaults: 5m, 6h.
func WithCacheTTL(fresh, historic time.Duration) Option {
	return func(c *config.Config) {
		c.Cache.FreshTTL = fresh
		c.Cache.HistoricTTL = historic
	}
}

// WithTimezone sets the zone that defines "today" for cache TTLs.
// Default: America/Sao_Paulo.
func WithTimezone(name string) Option {
	return func(c *config.Config) { c.Cache.Timezone = name }
}

// WithMockFallback toggles the canned record served when upstream is down
// and nothing is cached. Default: on.
func WithMockFallback(on bool) Option {
	return func(c *config.Config) { c.Adapter.MockFallback = on }
}
