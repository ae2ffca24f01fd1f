package admission

import (
	"errors"
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

func newController(cfg Config) (*Controller, *clock) {
	clk := &clock{now: time.Date(2025, 8, 6, 12, 0, 0, 0, time.UTC)}
	cfg.Now = clk.Now
	return New(cfg), clk
}

func rateLimited(t *testing.T, err error) *model.RateLimitedError {
	t.Helper()
	var rl *model.RateLimitedError
	require.True(t, errors.As(err, &rl), "expected *RateLimitedError, got %v", err)
	return rl
}

func TestAdmit_MinuteCeiling(t *testing.T) {
	c, clk := newController(Config{PerMinute: DefaultPerMinute, PerHour: DefaultPerHour})

	for i := 0; i < 100; i++ {
		require.NoError(t, c.Admit("10.0.0.1"), "request %d", i+1)
	}
	rl := rateLimited(t, c.Admit("10.0.0.1"))
	assert.Equal(t, "minute", rl.Limit)
	assert.Equal(t, "10.0.0.1", rl.ClientKey)
	assert.Equal(t, time.Minute, rl.RetryAfter)

	// Other clients have their own windows.
	assert.NoError(t, c.Admit("10.0.0.2"))

	clk.Advance(rl.RetryAfter - time.Millisecond)
	rateLimited(t, c.Admit("10.0.0.1"))
	clk.Advance(time.Millisecond)
	assert.NoError(t, c.Admit("10.0.0.1"))
}

func TestAdmit_MinuteCeilingSpreadOverWindow(t *testing.T) {
	c, clk := newController(Config{PerMinute: DefaultPerMinute, PerHour: DefaultPerHour})

	for i := 0; i < 100; i++ {
		require.NoError(t, c.Admit("10.0.0.1"), "request %d", i+1)
		clk.Advance(500 * time.Millisecond)
	}
	// 50s after the first request.
	rl := rateLimited(t, c.Admit("10.0.0.1"))
	assert.Equal(t, "minute", rl.Limit)
	assert.Equal(t, 10*time.Second, rl.RetryAfter)

	// Once the first request slides out exactly one more fits.
	clk.Advance(rl.RetryAfter)
	require.NoError(t, c.Admit("10.0.0.1"))
	rl = rateLimited(t, c.Admit("10.0.0.1"))
	assert.Equal(t, 500*time.Millisecond, rl.RetryAfter)
}

func TestAdmit_HourCeiling(t *testing.T) {
	c, _ := newController(Config{PerHour: 3})

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Admit("k"))
	}
	rl := rateLimited(t, c.Admit("k"))
	assert.Equal(t, "hour", rl.Limit)
	assert.Equal(t, time.Hour, rl.RetryAfter)
}

func TestAdmit_RejectionConsumesNothing(t *testing.T) {
	c, clk := newController(Config{PerMinute: 1, PerHour: 2})

	require.NoError(t, c.Admit("k"))
	rl := rateLimited(t, c.Admit("k"))
	assert.Equal(t, "minute", rl.Limit)

	// Had the rejected call been counted in the hour window this would fail.
	clk.Advance(time.Minute)
	require.NoError(t, c.Admit("k"))

	clk.Advance(time.Minute)
	rl = rateLimited(t, c.Admit("k"))
	assert.Equal(t, "hour", rl.Limit)
}

func TestAdmit_DisabledWindows(t *testing.T) {
	c, _ := newController(Config{})
	for i := 0; i < 5000; i++ {
		require.NoError(t, c.Admit("k"))
	}
}

func TestAdmit_EmptyKeyIsAnonymous(t *testing.T) {
	c, _ := newController(Config{PerMinute: 1})
	require.NoError(t, c.Admit(""))
	rl := rateLimited(t, c.Admit(""))
	assert.Equal(t, "anonymous", rl.ClientKey)
}

func TestAdmit_EvictsIdleClients(t *testing.T) {
	c, clk := newController(Config{PerMinute: 10, IdleTTL: time.Hour})
	require.NoError(t, c.Admit("a"))
	require.NoError(t, c.Admit("b"))
	assert.Equal(t, 2, c.Clients())

	clk.Advance(2 * time.Hour)
	require.NoError(t, c.Admit("b"))
	assert.Equal(t, 1, c.Clients())
}

func TestAdmit_Concurrent(t *testing.T) {
	c, _ := newController(Config{PerMinute: 50, PerHour: 1000})

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Admit("shared") == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, admitted)
}
