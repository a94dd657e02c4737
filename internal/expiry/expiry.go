// Package expiry computes time-to-live deadlines for community threads and replies.
package expiry

import "time"

const (
	ThreadTTLDays       = 7
	PinnedThreadTTLDays = 30
	ReplyTTLDays        = 7

	day = 24 * time.Hour
)

// Clock returns the current wall-clock time.
type Clock func() time.Time

// Policy holds the TTL durations applied to community content.
type Policy struct {
	ThreadTTL       time.Duration
	PinnedThreadTTL time.Duration
	ReplyTTL        time.Duration
}

// DefaultPolicy returns the standard thread, pinned thread and reply lifetimes.
func DefaultPolicy() Policy {
	return Policy{
		ThreadTTL:       ThreadTTLDays * day,
		PinnedThreadTTL: PinnedThreadTTLDays * day,
		ReplyTTL:        ReplyTTLDays * day,
	}
}

// Normalized replaces non-positive durations with defaults. A pinned lifetime not
// longer than the unpinned one is raised to the default pinned lifetime, or to
// ThreadTTL plus that default when ThreadTTL already reaches it.
func (p Policy) Normalized() Policy {
	def := DefaultPolicy()
	if p.ThreadTTL <= 0 {
		p.ThreadTTL = def.ThreadTTL
	}
	if p.PinnedThreadTTL <= 0 {
		p.PinnedThreadTTL = def.PinnedThreadTTL
	}
	if p.ReplyTTL <= 0 {
		p.ReplyTTL = def.ReplyTTL
	}
	if p.PinnedThreadTTL <= p.ThreadTTL {
		p.PinnedThreadTTL = def.PinnedThreadTTL
		if p.PinnedThreadTTL <= p.ThreadTTL {
			p.PinnedThreadTTL = p.ThreadTTL + def.PinnedThreadTTL
		}
	}
	return p
}

// ThreadExpiresAt returns anchor plus the pinned or unpinned thread TTL.
func (p Policy) ThreadExpiresAt(anchor time.Time, isPinned bool) time.Time {
	if isPinned {
		return anchor.Add(p.PinnedThreadTTL)
	}
	return anchor.Add(p.ThreadTTL)
}

// ReplyExpiresAt returns createdAt plus the reply TTL. The parent thread's pin state is irrelevant.
func (p Policy) ReplyExpiresAt(createdAt time.Time) time.Time {
	return createdAt.Add(p.ReplyTTL)
}

// Expired reports whether now is strictly past expiresAt.
func Expired(expiresAt, now time.Time) bool {
	return now.After(expiresAt)
}

// Engine binds a Policy to a Clock.
type Engine struct {
	policy Policy
	now    Clock
}

// NewEngine constructs an Engine. A nil clock uses time.Now in UTC.
func NewEngine(policy Policy, clock Clock) *Engine {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Engine{policy: policy.Normalized(), now: clock}
}

// Policy returns the effective TTL policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Now reads the engine clock.
func (e *Engine) Now() time.Time {
	return e.now()
}

// ThreadExpiresAt delegates to the policy.
func (e *Engine) ThreadExpiresAt(anchor time.Time, isPinned bool) time.Time {
	return e.policy.ThreadExpiresAt(anchor, isPinned)
}

// ReplyExpiresAt delegates to the policy.
func (e *Engine) ReplyExpiresAt(createdAt time.Time) time.Time {
	return e.policy.ReplyExpiresAt(createdAt)
}

// IsExpired evaluates expiresAt against the clock. The clock is read on every call.
func (e *Engine) IsExpired(expiresAt time.Time) bool {
	return Expired(expiresAt, e.now())
}
