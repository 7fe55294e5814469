package progress

import (
	"sync"
	"time"
)

// Limiter throttles repeated actions per key. Injected so tests (and
// deployments with an external limiter) can swap implementations.
type Limiter interface {
	Allow(key string) bool
}

// SlidingWindow is an in-memory per-key sliding-window limiter: at most
// limit events per window per key.
type SlidingWindow struct {
	limit  int
	window time.Duration

	mu     sync.Mutex
	events map[string][]time.Time
	now    func() time.Time
}

// NewSlidingWindow creates a limiter allowing limit events per window.
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		limit:  limit,
		window: window,
		events: make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Allow records an attempt for key and reports whether it is within the
// limit. Denied attempts are not recorded.
func (l *SlidingWindow) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.events[key][:0]
	for _, t := range l.events[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.limit {
		l.events[key] = kept
		return false
	}

	l.events[key] = append(kept, now)
	return true
}

// Unlimited is a Limiter that always allows. Useful in tests and for
// deployments that disable throttling.
type Unlimited struct{}

func (Unlimited) Allow(string) bool { return true }
