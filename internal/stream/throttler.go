package stream

import (
	"sync"
	"time"

	"github.com/prismled/prism-core/internal/scope"
)

// DefaultThrottleInterval paces preview updates at roughly 30 fps.
const DefaultThrottleInterval = 33 * time.Millisecond

// Throttler coalesces a burst of frames down to at most one callback per
// interval. The first frame of a quiet period passes through
// immediately; frames arriving inside the interval replace any pending
// frame and fire on the trailing edge, so the newest frame always wins.
type Throttler struct {
	interval time.Duration
	fn       func(colors []scope.Color)

	mu       sync.Mutex
	lastFire time.Time
	pending  []scope.Color
	timer    *time.Timer
	stopped  bool
}

// NewThrottler wraps fn with rate limiting. A non-positive interval
// falls back to DefaultThrottleInterval.
func NewThrottler(interval time.Duration, fn func(colors []scope.Color)) *Throttler {
	if interval <= 0 {
		interval = DefaultThrottleInterval
	}
	return &Throttler{interval: interval, fn: fn}
}

// Offer submits a frame. It never blocks on the wrapped callback beyond
// the synchronous leading-edge call.
func (t *Throttler) Offer(colors []scope.Color) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	now := time.Now()
	if t.timer == nil && now.Sub(t.lastFire) >= t.interval {
		t.lastFire = now
		t.mu.Unlock()
		t.fn(colors)
		return
	}
	t.pending = colors
	if t.timer == nil {
		wait := t.interval - now.Sub(t.lastFire)
		if wait < 0 {
			wait = 0
		}
		t.timer = time.AfterFunc(wait, t.flush)
	}
	t.mu.Unlock()
}

func (t *Throttler) flush() {
	t.mu.Lock()
	t.timer = nil
	colors := t.pending
	t.pending = nil
	if t.stopped || colors == nil {
		t.mu.Unlock()
		return
	}
	t.lastFire = time.Now()
	t.mu.Unlock()
	t.fn(colors)
}

// Stop cancels any pending trailing-edge delivery. Offer becomes a no-op.
func (t *Throttler) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.pending = nil
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
