package engine

import (
	"sync"
	"time"
)

// Decision is the outcome of one rate-limit check.
type Decision struct {
	Allowed      bool
	Remaining    int
	ResetTime    time.Time // when the oldest counted request rolls out of the window
	RequestCount int       // requests inside the current window
	Limit        int
}

// RateLimiter counts tool calls per session over a trailing window using
// raw timestamps — a true sliding window with no bucket-boundary burst.
// Denied calls are not recorded. All state is in-memory and per-process:
// each instance enforces its own independent limit.
type RateLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	sessions map[string][]time.Time
	now      func() time.Time // swappable in tests
}

// NewRateLimiter builds a limiter allowing limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		window:   window,
		sessions: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// pruneLocked drops timestamps that fell out of the window. Empty sessions
// stay in the map until Cleanup sweeps them. Caller holds mu.
func (l *RateLimiter) pruneLocked(sessionID string, now time.Time) []time.Time {
	stamps, ok := l.sessions[sessionID]
	if !ok {
		return nil
	}
	cutoff := now.Add(-l.window)
	keep := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			keep = append(keep, ts)
		}
	}
	l.sessions[sessionID] = keep
	return keep
}

// Check records and allows the call, or denies without recording when the
// session has used its quota.
func (l *RateLimiter) Check(sessionID string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	stamps := l.pruneLocked(sessionID, now)

	if len(stamps) >= l.limit {
		return Decision{
			Allowed:      false,
			Remaining:    0,
			ResetTime:    stamps[0].Add(l.window),
			RequestCount: len(stamps),
			Limit:        l.limit,
		}
	}

	stamps = append(stamps, now)
	l.sessions[sessionID] = stamps
	return Decision{
		Allowed:      true,
		Remaining:    l.limit - len(stamps),
		ResetTime:    stamps[0].Add(l.window),
		RequestCount: len(stamps),
		Limit:        l.limit,
	}
}

// WouldAllow peeks at the session's quota without mutating any state.
func (l *RateLimiter) WouldAllow(sessionID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	count := 0
	for _, ts := range l.sessions[sessionID] {
		if ts.After(cutoff) {
			count++
		}
	}
	return count < l.limit
}

// Status reports the session's quota without consuming a request.
// Stale timestamps are pruned as a side effect.
func (l *RateLimiter) Status(sessionID string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	stamps := l.pruneLocked(sessionID, l.now())
	d := Decision{
		Allowed:      len(stamps) < l.limit,
		Remaining:    l.limit - len(stamps),
		RequestCount: len(stamps),
		Limit:        l.limit,
	}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if len(stamps) > 0 {
		d.ResetTime = stamps[0].Add(l.window)
	}
	return d
}

// ResetSession clears one session's counter.
func (l *RateLimiter) ResetSession(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.sessions, sessionID)
}

// ResetAll clears every counter.
func (l *RateLimiter) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions = make(map[string][]time.Time)
}

// Cleanup removes sessions with no requests left in the window and returns
// how many were dropped. Housekeeping only: an external scheduler invokes
// it, the limiter never schedules its own sweeps.
func (l *RateLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	removed := 0
	for id, stamps := range l.sessions {
		live := false
		for _, ts := range stamps {
			if ts.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(l.sessions, id)
			removed++
		}
	}
	return removed
}

// Sessions returns the number of tracked sessions, swept or not.
func (l *RateLimiter) Sessions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sessions)
}
