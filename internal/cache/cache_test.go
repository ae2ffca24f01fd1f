package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/djenbridge/internal/model"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// 2025-08-06 12:00 in São Paulo.
func newTestCache() (*Cache, *clock) {
	clk := &clock{now: time.Date(2025, 8, 6, 15, 0, 0, 0, time.UTC)}
	return New(Config{Now: clk.Now, Location: time.FixedZone("BRT", -3*60*60)}), clk
}

func query(start, end string) model.Query {
	return model.Query{LawyerName: "Pedro Brandão", OAB: "123456/MG", DateStart: start, DateEnd: end, ClientKey: "a"}
}

func records(cases ...string) []model.NotificationRecord {
	out := make([]model.NotificationRecord, len(cases))
	for i, c := range cases {
		out[i] = model.NotificationRecord{CaseNumber: c, Actions: []string{"CALCULAR_PRAZO"}}
	}
	return out
}

func TestFingerprint(t *testing.T) {
	a := query("2025-08-06", "2025-08-06")
	b := a
	b.LawyerName = "  pedro   BRANDÃO "
	b.ClientKey = "other"
	assert.Equal(t, Fingerprint(a), Fingerprint(b), "case, spacing and client must not matter")

	c := a
	c.LawyerName = "Pedro Brandao"
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c), "accents are significant")

	d := a
	d.DateEnd = "2025-08-07"
	assert.NotEqual(t, Fingerprint(a), Fingerprint(d))
	assert.Equal(t, PartyKey(a), PartyKey(d))

	e := a
	e.Court = "tjmg"
	assert.NotEqual(t, PartyKey(a), PartyKey(e))
}

func TestTTLFor(t *testing.T) {
	c, clk := newTestCache()
	assert.Equal(t, DefaultFreshTTL, c.TTLFor(query("2025-08-01", "2025-08-06")))
	assert.Equal(t, DefaultFreshTTL, c.TTLFor(query("2025-08-06", "2025-08-10")))
	assert.Equal(t, DefaultHistoricTTL, c.TTLFor(query("2025-08-01", "2025-08-05")))

	// 23:30 UTC on the 6th is still the 6th in São Paulo.
	clk.Advance(8*time.Hour + 30*time.Minute)
	assert.Equal(t, DefaultFreshTTL, c.TTLFor(query("2025-08-06", "2025-08-06")))
	// 03:30 UTC on the 7th is the 7th there.
	clk.Advance(4 * time.Hour)
	assert.Equal(t, DefaultHistoricTTL, c.TTLFor(query("2025-08-06", "2025-08-06")))
}

func TestGetPut_RoundTrip(t *testing.T) {
	c, _ := newTestCache()
	q := query("2025-08-06", "2025-08-06")
	in := records("1", "2")
	c.Store(q, in)

	got, ok := c.Get(Fingerprint(q))
	require.True(t, ok)
	assert.Equal(t, in, got)

	// Neither the caller's slice nor the returned one aliases the entry.
	in[0].Actions[0] = "X"
	got[1].CaseNumber = "Y"
	again, _ := c.Get(Fingerprint(q))
	assert.Equal(t, "CALCULAR_PRAZO", again[0].Actions[0])
	assert.Equal(t, "2", again[1].CaseNumber)
}

func TestGet_ExpiresAfterTTL(t *testing.T) {
	c, clk := newTestCache()
	q := query("2025-08-06", "2025-08-06")
	c.Store(q, records("1"))

	clk.Advance(DefaultFreshTTL - time.Second)
	_, ok := c.Get(Fingerprint(q))
	assert.True(t, ok)

	clk.Advance(time.Second)
	_, ok = c.Get(Fingerprint(q))
	assert.False(t, ok, "entry at TTL must not be served as fresh")
	assert.Equal(t, 1, c.Len(), "expired entry is retained for fallback")
}

func TestGet_DropsPastStaleHorizon(t *testing.T) {
	c, clk := newTestCache()
	q := query("2025-08-06", "2025-08-06")
	c.Store(q, records("1"))

	clk.Advance(DefaultFreshTTL + DefaultStaleHorizon)
	_, ok := c.Get(Fingerprint(q))
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestPut_EmptyResultIsCached(t *testing.T) {
	c, _ := newTestCache()
	q := query("2025-08-06", "2025-08-06")
	c.Store(q, nil)

	got, ok := c.Get(Fingerprint(q))
	require.True(t, ok)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFallback_ExactKeyEvenWhenExpired(t *testing.T) {
	c, clk := newTestCache()
	q := query("2025-08-06", "2025-08-06")
	c.Store(q, records("1"))
	clk.Advance(time.Hour)

	e, ok := c.Fallback(q)
	require.True(t, ok)
	assert.Equal(t, Fingerprint(q), e.Key)
	assert.Equal(t, time.Hour, e.Age(clk.Now()))
	assert.Len(t, e.Records, 1)
}

func TestFallback_NewestSamePartyEntry(t *testing.T) {
	c, clk := newTestCache()
	c.Store(query("2025-08-01", "2025-08-01"), records("old"))
	clk.Advance(time.Minute)
	c.Store(query("2025-08-02", "2025-08-02"), records("new"))

	other := query("2025-08-01", "2025-08-01")
	other.LawyerName = "Alfredo Ramos"
	clk.Advance(time.Minute)
	c.Store(other, records("someone else"))

	e, ok := c.Fallback(query("2025-08-06", "2025-08-06"))
	require.True(t, ok)
	assert.Equal(t, "new", e.Records[0].CaseNumber)
}

func TestFallback_NothingRetained(t *testing.T) {
	c, clk := newTestCache()
	q := query("2025-08-06", "2025-08-06")
	_, ok := c.Fallback(q)
	assert.False(t, ok)

	c.Store(q, records("1"))
	clk.Advance(DefaultFreshTTL + DefaultStaleHorizon)
	_, ok = c.Fallback(q)
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	c, _ := newTestCache()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := query("2025-08-06", "2025-08-06")
			if i%2 == 0 {
				c.Store(q, records("1"))
			} else {
				c.Get(Fingerprint(q))
				c.Fallback(q)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}
