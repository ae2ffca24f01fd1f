// Package cache keeps normalized results per query fingerprint. Entries
// expire after their TTL but are retained for a stale horizon so they can
// still serve as fallback data while upstream is unavailable.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/crimson-sun/djenbridge/internal/engine/textnorm"
	"github.com/crimson-sun/djenbridge/internal/metrics"
	"github.com/crimson-sun/djenbridge/internal/model"
)

const (
	DefaultFreshTTL     = 5 * time.Minute
	DefaultHistoricTTL  = 6 * time.Hour
	DefaultStaleHorizon = 24 * time.Hour
)

// Config controls TTL policy.
type Config struct {
	FreshTTL     time.Duration  // ranges that include today
	HistoricTTL  time.Duration  // ranges entirely in the past
	StaleHorizon time.Duration  // retention after expiry, fallback only
	Location     *time.Location // defines "today"; America/Sao_Paulo by default
	Now          func() time.Time
}

// Entry is an immutable cached result.
type Entry struct {
	Key       string
	PartyKey  string
	Records   []model.NotificationRecord
	CreatedAt time.Time
	TTL       time.Duration
}

// Age is the entry's age at now.
func (e *Entry) Age(now time.Time) time.Duration { return now.Sub(e.CreatedAt) }

func (e *Entry) fresh(now time.Time) bool { return e.Age(now) < e.TTL }

// Cache is an in-memory, mutex-guarded fingerprint cache.
type Cache struct {
	cfg Config

	mu      sync.Mutex
	entries map[string]*Entry
}

// New creates a Cache, filling zero Config fields with defaults.
func New(cfg Config) *Cache {
	if cfg.FreshTTL <= 0 {
		cfg.FreshTTL = DefaultFreshTTL
	}
	if cfg.HistoricTTL <= 0 {
		cfg.HistoricTTL = DefaultHistoricTTL
	}
	if cfg.StaleHorizon <= 0 {
		cfg.StaleHorizon = DefaultStaleHorizon
	}
	if cfg.Location == nil {
		cfg.Location = DefaultLocation()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Cache{cfg: cfg, entries: make(map[string]*Entry)}
}

// DefaultLocation is America/Sao_Paulo, or a fixed UTC-3 zone when the
// tz database is unavailable.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

// Fingerprint is the cache key of a query: case-folded name and OAB, the
// date range and the court. Client keys do not participate.
func Fingerprint(q model.Query) string {
	return strings.Join([]string{PartyKey(q), q.DateStart, q.DateEnd}, "|")
}

// PartyKey identifies whose notifications a query asks for, ignoring dates.
func PartyKey(q model.Query) string {
	return strings.Join([]string{
		textnorm.FoldKey(q.LawyerName),
		textnorm.FoldKey(q.OAB),
		strings.ToUpper(strings.TrimSpace(q.Court)),
	}, "|")
}

// TTLFor picks the short TTL when the range reaches today or later, and the
// long one for ranges fully in the past.
func (c *Cache) TTLFor(q model.Query) time.Duration {
	today := c.cfg.Now().In(c.cfg.Location).Format(model.DateLayout)
	if q.DateEnd >= today {
		return c.cfg.FreshTTL
	}
	return c.cfg.HistoricTTL
}

// Get returns a fresh entry's records. Expired entries are reported as a
// miss; entries past the stale horizon are dropped.
func (c *Cache) Get(key string) ([]model.NotificationRecord, bool) {
	now := c.cfg.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		metrics.CacheLookupTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	if !e.fresh(now) {
		if c.pastHorizon(e, now) {
			c.remove(key)
		}
		metrics.CacheLookupTotal.WithLabelValues("expired").Inc()
		return nil, false
	}
	metrics.CacheLookupTotal.WithLabelValues("hit").Inc()
	return model.CloneRecords(e.Records), true
}

// Put stores a copy of records under key.
func (c *Cache) Put(key, partyKey string, records []model.NotificationRecord, ttl time.Duration) {
	e := &Entry{
		Key:       key,
		PartyKey:  partyKey,
		Records:   model.CloneRecords(records),
		CreatedAt: c.cfg.Now(),
		TTL:       ttl,
	}
	if e.Records == nil {
		e.Records = []model.NotificationRecord{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
	c.sweep(e.CreatedAt)
	metrics.CacheEntries.Set(float64(len(c.entries)))
}

// Store caches records for q with the TTL policy applied.
func (c *Cache) Store(q model.Query, records []model.NotificationRecord) {
	c.Put(Fingerprint(q), PartyKey(q), records, c.TTLFor(q))
}

// Fallback returns the best retained entry for q regardless of freshness:
// the exact fingerprint if retained, else the newest entry for the same
// party. The returned entry's records are a copy.
func (c *Cache) Fallback(q model.Query) (*Entry, bool) {
	now := c.cfg.Now()
	key, party := Fingerprint(q), PartyKey(q)

	c.mu.Lock()
	defer c.mu.Unlock()

	best, ok := c.entries[key]
	if ok && c.pastHorizon(best, now) {
		c.remove(key)
		best, ok = nil, false
	}
	if !ok {
		for k, e := range c.entries {
			if e.PartyKey != party {
				continue
			}
			if c.pastHorizon(e, now) {
				c.remove(k)
				continue
			}
			if best == nil || e.CreatedAt.After(best.CreatedAt) {
				best = e
			}
		}
	}
	if best == nil {
		return nil, false
	}
	cp := *best
	cp.Records = model.CloneRecords(best.Records)
	return &cp, true
}

// Now is the cache's clock.
func (c *Cache) Now() time.Time { return c.cfg.Now() }

// Len reports retained entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) pastHorizon(e *Entry, now time.Time) bool {
	return e.Age(now) >= e.TTL+c.cfg.StaleHorizon
}

// sweep drops entries past the stale horizon. Called with mu held.
func (c *Cache) sweep(now time.Time) {
	for k, e := range c.entries {
		if c.pastHorizon(e, now) {
			delete(c.entries, k)
		}
	}
}

func (c *Cache) remove(key string) {
	delete(c.entries, key)
	metrics.CacheEntries.Set(float64(len(c.entries)))
}
