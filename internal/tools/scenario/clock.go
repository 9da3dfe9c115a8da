package scenario

import (
	"slices"
	"sync"
	"time"

	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/session"
)

// manualClock is a virtual clock and scheduler. Timers fire only when the
// clock is advanced past their deadline.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock *manualClock
	at    time.Time
	fn    func()
	done  bool
}

func newManualClock(start time.Time) *manualClock {
	return &manualClock{now: start}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, fn func()) session.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &manualTimer{clock: c, at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, timer)
	return timer
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

// Advance moves the clock forward by d and runs every timer that came due,
// in deadline order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*manualTimer
	pending := c.timers[:0]
	for _, timer := range c.timers {
		switch {
		case timer.done:
		case !timer.at.After(c.now):
			timer.done = true
			due = append(due, timer)
		default:
			pending = append(pending, timer)
		}
	}
	c.timers = pending
	c.mu.Unlock()

	slices.SortStableFunc(due, func(a, b *manualTimer) int {
		return a.at.Compare(b.at)
	})
	for _, timer := range due {
		timer.fn()
	}
}
