package expiry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

var t0 = time.Date(2024, 9, 2, 10, 0, 0, 0, time.UTC)

func TestDefaultPolicyDurations(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 7*24*time.Hour, p.ThreadTTL)
	assert.Equal(t, 30*24*time.Hour, p.PinnedThreadTTL)
	assert.Equal(t, 7*24*time.Hour, p.ReplyTTL)
}

func TestThreadExpiresAt(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, t0.Add(7*24*time.Hour), p.ThreadExpiresAt(t0, false))
	assert.Equal(t, t0.Add(30*24*time.Hour), p.ThreadExpiresAt(t0, true))
}

func TestPinnedOutlivesUnpinned(t *testing.T) {
	policies := []Policy{
		DefaultPolicy(),
		Policy{ThreadTTL: 48 * time.Hour, PinnedThreadTTL: 24 * time.Hour}.Normalized(),
		Policy{ThreadTTL: time.Hour, PinnedThreadTTL: time.Hour}.Normalized(),
		Policy{}.Normalized(),
	}
	for _, p := range policies {
		for _, anchor := range []time.Time{t0, t0.AddDate(1, 0, 0), time.Unix(0, 0).UTC()} {
			assert.True(t, p.ThreadExpiresAt(anchor, true).After(p.ThreadExpiresAt(anchor, false)))
		}
	}
}

func TestNormalizedFillsDefaults(t *testing.T) {
	p := Policy{ThreadTTL: -time.Hour}.Normalized()
	assert.Equal(t, DefaultPolicy(), p)

	custom := Policy{ThreadTTL: 2 * time.Hour, PinnedThreadTTL: 10 * time.Hour, ReplyTTL: time.Hour}.Normalized()
	assert.Equal(t, 2*time.Hour, custom.ThreadTTL)
	assert.Equal(t, 10*time.Hour, custom.PinnedThreadTTL)
	assert.Equal(t, time.Hour, custom.ReplyTTL)
}

func TestNormalizedRaisesShortPinnedToDefault(t *testing.T) {
	p := Policy{ThreadTTL: 10 * 24 * time.Hour, PinnedThreadTTL: 5 * 24 * time.Hour}.Normalized()
	assert.Equal(t, 10*24*time.Hour, p.ThreadTTL)
	assert.Equal(t, DefaultPolicy().PinnedThreadTTL, p.PinnedThreadTTL)

	long := Policy{ThreadTTL: 40 * 24 * time.Hour, PinnedThreadTTL: 24 * time.Hour}.Normalized()
	assert.Equal(t, 70*24*time.Hour, long.PinnedThreadTTL)
	assert.True(t, long.PinnedThreadTTL > long.ThreadTTL)
}

func TestReplyExpiresAtIgnoresPinState(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, t0.Add(7*24*time.Hour), p.ReplyExpiresAt(t0))
}

func TestExpiredIsStrict(t *testing.T) {
	assert.False(t, Expired(t0, t0))
	assert.False(t, Expired(t0, t0.Add(-time.Nanosecond)))
	assert.True(t, Expired(t0, t0.Add(time.Nanosecond)))
}

func TestReplyNotExpiredImmediatelyAfterCreation(t *testing.T) {
	clock := &fakeClock{now: t0}
	engine := NewEngine(DefaultPolicy(), clock.Now)

	expiresAt := engine.ReplyExpiresAt(engine.Now())
	assert.False(t, engine.IsExpired(expiresAt))

	clock.Advance(7 * 24 * time.Hour)
	assert.False(t, engine.IsExpired(expiresAt))

	clock.Advance(time.Second)
	assert.True(t, engine.IsExpired(expiresAt))
}

func TestUnpinnedThreadLifecycle(t *testing.T) {
	clock := &fakeClock{now: t0}
	engine := NewEngine(DefaultPolicy(), clock.Now)
	expiresAt := engine.ThreadExpiresAt(t0, false)

	clock.Advance(6 * 24 * time.Hour)
	assert.False(t, engine.IsExpired(expiresAt))

	clock.Advance(2 * 24 * time.Hour)
	assert.True(t, engine.IsExpired(expiresAt))
}

func TestIsExpiredReadsClockEveryCall(t *testing.T) {
	calls := 0
	engine := NewEngine(DefaultPolicy(), func() time.Time {
		calls++
		return t0
	})
	engine.IsExpired(t0)
	engine.IsExpired(t0)
	assert.Equal(t, 2, calls)
}

func TestNewEngineDefaultsClock(t *testing.T) {
	engine := NewEngine(Policy{}, nil)
	assert.WithinDuration(t, time.Now().UTC(), engine.Now(), time.Minute)
	assert.Equal(t, DefaultPolicy(), engine.Policy())
}
