package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time {
	return c.current
}

func (c *fakeClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func TestAllow_WithinLimit(t *testing.T) {
	clock := &fakeClock{current: time.Now()}
	limiter := newWithClock(3, time.Minute, clock.now)

	assert.True(t, limiter.Allow("u1:send"))
	assert.True(t, limiter.Allow("u1:send"))
	assert.True(t, limiter.Allow("u1:send"))
	assert.False(t, limiter.Allow("u1:send"))
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	clock := &fakeClock{current: time.Now()}
	limiter := newWithClock(1, time.Minute, clock.now)

	assert.True(t, limiter.Allow("u1:send"))
	assert.False(t, limiter.Allow("u1:send"))
	assert.True(t, limiter.Allow("u2:send"))
	assert.True(t, limiter.Allow("u1:block"))
}

func TestAllow_WindowResets(t *testing.T) {
	clock := &fakeClock{current: time.Now()}
	limiter := newWithClock(2, time.Minute, clock.now)

	assert.True(t, limiter.Allow("u1:send"))
	assert.True(t, limiter.Allow("u1:send"))
	assert.False(t, limiter.Allow("u1:send"))

	clock.advance(61 * time.Second)

	assert.True(t, limiter.Allow("u1:send"))
	assert.True(t, limiter.Allow("u1:send"))
	assert.False(t, limiter.Allow("u1:send"))
}

func TestPrune_DropsExpiredWindows(t *testing.T) {
	clock := &fakeClock{current: time.Now()}
	limiter := newWithClock(1, time.Minute, clock.now)

	limiter.Allow("old")
	clock.advance(2 * time.Minute)
	limiter.Allow("fresh")

	limiter.Prune()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.entries, "old")
	assert.Contains(t, limiter.entries, "fresh")
}
