package llmgen

import (
	"sync"
	"time"
)

// ProgressFunc receives partial generation output. Delivery is fire-and-forget:
// the callback must not block and its failures never abort generation.
type ProgressFunc func(text string)

// Throttle rate-limits progress notifications to at most one per interval.
type Throttle struct {
	interval time.Duration
	fn       ProgressFunc
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
}

func NewThrottle(interval time.Duration, fn ProgressFunc) *Throttle {
	if interval <= 0 {
		interval = time.Second
	}
	return &Throttle{
		interval: interval,
		fn:       fn,
		now:      time.Now,
	}
}

// Notify forwards text to the progress callback if the interval has elapsed
// since the previous delivery. Calls before that are dropped.
func (t *Throttle) Notify(text string) {
	if t == nil || t.fn == nil {
		return
	}
	t.mu.Lock()
	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		t.mu.Unlock()
		return
	}
	t.last = now
	t.mu.Unlock()

	t.fn(text)
}
