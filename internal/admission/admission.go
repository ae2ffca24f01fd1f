// Package admission enforces per-client request ceilings over a sliding
// minute and a sliding hour. It never blocks.
package admission

import (
	"sync"
	"time"

	"github.com/crimson-sun/djenbridge/internal/metrics"
	"github.com/crimson-sun/djenbridge/internal/model"
)

const (
	DefaultPerMinute = 100
	DefaultPerHour   = 1000
	DefaultIdleTTL   = 2 * time.Hour

	anonymous     = "anonymous"
	evictInterval = time.Minute
)

// Config controls the ceilings. A non-positive ceiling disables that window.
type Config struct {
	PerMinute int
	PerHour   int
	IdleTTL   time.Duration // clients unseen this long are forgotten
	Now       func() time.Time
}

// window counts the admissions of one client inside a sliding period.
type window struct {
	limit int
	per   time.Duration
	hits  []time.Time // oldest first
}

func newWindow(limit int, per time.Duration) *window {
	return &window{limit: limit, per: per}
}

// prune forgets hits that have left the window.
func (w *window) prune(now time.Time) {
	cutoff := now.Add(-w.per)
	i := 0
	for i < len(w.hits) && !w.hits[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.hits = append(w.hits[:0], w.hits[i:]...)
	}
}

// wait is how long until another hit fits, zero if one fits now. A
// disabled window always fits.
func (w *window) wait(now time.Time) time.Duration {
	if w.limit <= 0 {
		return 0
	}
	w.prune(now)
	if len(w.hits) < w.limit {
		return 0
	}
	return w.hits[len(w.hits)-w.limit].Add(w.per).Sub(now)
}

func (w *window) record(now time.Time) {
	if w.limit > 0 {
		w.hits = append(w.hits, now)
	}
}

type clientWindows struct {
	minute     *window
	hour       *window
	lastAccess time.Time
}

// Controller tracks one pair of windows per client key.
type Controller struct {
	cfg Config

	mu        sync.Mutex
	clients   map[string]*clientWindows
	lastEvict time.Time
}

// New creates a Controller.
func New(cfg Config) *Controller {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Controller{cfg: cfg, clients: make(map[string]*clientWindows)}
}

// Admit counts the request in both of the client's windows, or in neither.
// When either window is full it returns *model.RateLimitedError with the
// wait until the oldest counted request leaves it.
func (c *Controller) Admit(clientKey string) error {
	if clientKey == "" {
		clientKey = anonymous
	}
	now := c.cfg.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastEvict) >= evictInterval {
		c.evict(now)
	}

	cl, ok := c.clients[clientKey]
	if !ok {
		cl = &clientWindows{
			minute: newWindow(c.cfg.PerMinute, time.Minute),
			hour:   newWindow(c.cfg.PerHour, time.Hour),
		}
		c.clients[clientKey] = cl
	}
	cl.lastAccess = now

	dm, dh := cl.minute.wait(now), cl.hour.wait(now)
	if dm == 0 && dh == 0 {
		cl.minute.record(now)
		cl.hour.record(now)
		return nil
	}

	limit, wait := "minute", dm
	if dh > dm {
		limit, wait = "hour", dh
	}
	metrics.RateLimitedTotal.WithLabelValues(limit).Inc()
	return &model.RateLimitedError{ClientKey: clientKey, Limit: limit, RetryAfter: wait}
}

// Clients reports how many client keys are tracked.
func (c *Controller) Clients() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}

// evict removes clients that haven't been seen within IdleTTL. Called with
// mu held.
func (c *Controller) evict(now time.Time) {
	cutoff := now.Add(-c.cfg.IdleTTL)
	for key, cl := range c.clients {
		if cl.lastAccess.Before(cutoff) {
			delete(c.clients, key)
		}
	}
	c.lastEvict = now
}
