package engine

import (
	"sync"
	"testing"
	"time"
)

// fakeClock drives a RateLimiter deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(limit int, window time.Duration) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)}
	l := NewRateLimiter(limit, window)
	l.now = clock.now
	return l, clock
}

func TestRateLimiterDeniesOverQuota(t *testing.T) {
	l, clock := newTestLimiter(10, time.Minute)
	first := clock.t

	for i := 0; i < 10; i++ {
		d := l.Check("session-a")
		if !d.Allowed {
			t.Fatalf("call %d: expected allowed", i+1)
		}
		if want := 10 - (i + 1); d.Remaining != want {
			t.Errorf("call %d: Remaining = %d, want %d", i+1, d.Remaining, want)
		}
		clock.advance(time.Second)
	}

	d := l.Check("session-a")
	if d.Allowed {
		t.Fatal("11th call: expected denial")
	}
	if d.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", d.Remaining)
	}
	if d.RequestCount != 10 {
		t.Errorf("RequestCount = %d, want 10", d.RequestCount)
	}
	if want := first.Add(time.Minute); !d.ResetTime.Equal(want) {
		t.Errorf("ResetTime = %v, want %v", d.ResetTime, want)
	}
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	l, clock := newTestLimiter(2, time.Minute)

	l.Check("s")
	clock.advance(30 * time.Second)
	l.Check("s")

	if d := l.Check("s"); d.Allowed {
		t.Fatal("third call inside window: expected denial")
	}

	// 31s more puts the first call outside the window; the second remains.
	clock.advance(31 * time.Second)
	d := l.Check("s")
	if !d.Allowed {
		t.Fatal("expected allowance after oldest request rolled out")
	}
	if d.RequestCount != 2 {
		t.Errorf("RequestCount = %d, want 2 (second call still counted)", d.RequestCount)
	}
}

func TestRateLimiterDenialNotRecorded(t *testing.T) {
	l, clock := newTestLimiter(1, time.Minute)

	l.Check("s")
	for i := 0; i < 5; i++ {
		if d := l.Check("s"); d.Allowed {
			t.Fatal("expected denial")
		}
		clock.advance(10 * time.Second)
	}

	// 50s of denials later, 11s more rolls the single counted request out.
	// If denials were recorded the session would still be blocked.
	clock.advance(11 * time.Second)
	if d := l.Check("s"); !d.Allowed {
		t.Fatal("denials must not extend the window")
	}
}

func TestRateLimiterSessionIsolation(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	if d := l.Check("a"); !d.Allowed {
		t.Fatal("session a: first call denied")
	}
	if d := l.Check("b"); !d.Allowed {
		t.Fatal("session b must not share session a's counter")
	}
	if d := l.Check("a"); d.Allowed {
		t.Fatal("session a: second call should be denied")
	}
}

func TestRateLimiterWouldAllowDoesNotConsume(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.WouldAllow("s") {
			t.Fatalf("peek %d consumed quota", i)
		}
	}
	if d := l.Check("s"); !d.Allowed {
		t.Fatal("peeks must not consume the single slot")
	}
}

func TestRateLimiterStatus(t *testing.T) {
	l, clock := newTestLimiter(3, time.Minute)

	if d := l.Status("s"); !d.Allowed || d.Remaining != 3 || !d.ResetTime.IsZero() {
		t.Errorf("fresh session Status = %+v", d)
	}

	first := clock.t
	l.Check("s")
	l.Check("s")

	d := l.Status("s")
	if d.Remaining != 1 || d.RequestCount != 2 {
		t.Errorf("Status = %+v, want remaining 1 of 2 used", d)
	}
	if want := first.Add(time.Minute); !d.ResetTime.Equal(want) {
		t.Errorf("ResetTime = %v, want %v", d.ResetTime, want)
	}
	if got := l.Status("s"); got.RequestCount != 2 {
		t.Errorf("Status consumed quota: RequestCount = %d", got.RequestCount)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	l, clock := newTestLimiter(5, time.Minute)

	l.Check("idle")
	clock.advance(2 * time.Minute)
	l.Check("active")

	if n := l.Cleanup(); n != 1 {
		t.Errorf("Cleanup() = %d, want 1", n)
	}
	if got := l.Sessions(); got != 1 {
		t.Errorf("Sessions() = %d, want 1", got)
	}

	// The surviving session keeps its count.
	if d := l.Status("active"); d.RequestCount != 1 {
		t.Errorf("active session lost its counter: %+v", d)
	}
}

func TestRateLimiterReset(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	l.Check("a")
	l.Check("b")

	l.ResetSession("a")
	if d := l.Check("a"); !d.Allowed {
		t.Fatal("ResetSession did not clear the counter")
	}
	if d := l.Check("b"); d.Allowed {
		t.Fatal("ResetSession must not touch other sessions")
	}

	l.ResetAll()
	if d := l.Check("b"); !d.Allowed {
		t.Fatal("ResetAll did not clear counters")
	}
}

func TestRateLimiterConcurrentChecks(t *testing.T) {
	l := NewRateLimiter(10, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Check("shared").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 10 {
		t.Errorf("allowed = %d, want exactly 10", allowed)
	}
}
