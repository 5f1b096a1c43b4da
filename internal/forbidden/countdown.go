package forbidden

import (
	"context"
	"sync"
	"time"
)

// CountdownStart is the number of seconds the forbidden view waits before navigating
const CountdownStart = 5

// CountdownInterval is the duration of one countdown step
const CountdownInterval = time.Second

// Countdown ticks down once per interval and navigates when it reaches zero. It
// navigates at most once, whether it runs out or is skipped.
type Countdown struct {
	remaining int
	interval  time.Duration
	onTick    func(remaining int)
	navigate  func()

	navigateOnce sync.Once
	skip         chan struct{}
	skipOnce     sync.Once
}

// NewCountdown prepares a countdown from start. onTick, if non-nil, is called with the
// remaining count when the countdown starts and after every step that doesn't reach
// zero.
func NewCountdown(start int, interval time.Duration, onTick func(remaining int), navigate func()) *Countdown {
	return &Countdown{
		remaining: start,
		interval:  interval,
		onTick:    onTick,
		navigate:  navigate,
		skip:      make(chan struct{}),
	}
}

// Run blocks until the countdown navigates or ctx is canceled, and reports whether
// navigation happened. Canceling ctx stops the countdown without navigating.
func (c *Countdown) Run(ctx context.Context) bool {
	if c.remaining <= 0 {
		c.fire()
		return true
	}
	c.tick()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-c.skip:
			c.fire()
			return true
		case <-ticker.C:
			c.remaining--
			if c.remaining <= 0 {
				c.fire()
				return true
			}
			c.tick()
		}
	}
}

// Skip ends the countdown early and navigates immediately
func (c *Countdown) Skip() {
	c.skipOnce.Do(func() { close(c.skip) })
}

func (c *Countdown) tick() {
	if c.onTick != nil {
		c.onTick(c.remaining)
	}
}

func (c *Countdown) fire() {
	c.navigateOnce.Do(c.navigate)
}
