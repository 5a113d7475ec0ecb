package sequencer

import (
	"sync"
	"time"

	"github.com/lichin-lin/sound-machine/debug"
)

// NoPosition is the published playhead value while the clock is idle,
// so the UI shows no highlight instead of implying slot 0 is active.
const NoPosition = -1

// TickInterval returns the duration of one sixteenth-note slot:
// a cycle is 4 quarter-note beats, so one slot is (60s/BPM)/4.
func TickInterval(bpm int) time.Duration {
	return time.Duration(float64(time.Minute) / float64(bpm) / 4.0)
}

// CycleDuration returns the length of one full 16-slot cycle
func CycleDuration(bpm int) time.Duration {
	return TickInterval(bpm) * NumSlots
}

// Clock turns tempo and play state into a discrete tick stream over
// the 16-slot cycle. On every tick it advances (prev+1) mod 16 and
// publishes the position to the subscriber callback. Start is
// idempotent - a running clock ignores a second start until stopped -
// and Stop on a stopped clock is a no-op.
type Clock struct {
	mu      sync.Mutex
	running bool
	pos     int
	ticker  *time.Ticker
	stop    chan struct{}
	onTick  func(pos int)
}

// NewClock creates an idle clock. onTick receives every published
// position, including the NoPosition reset on stop; it is called
// outside the clock's lock.
func NewClock(onTick func(pos int)) *Clock {
	return &Clock{pos: NoPosition, onTick: onTick}
}

// Start begins ticking at the given tempo from slot 0. Calling Start
// while running does not create a second tick source.
func (c *Clock) Start(bpm int) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.pos = 0
	c.ticker = time.NewTicker(TickInterval(bpm))
	c.stop = make(chan struct{})
	ticker, stop := c.ticker, c.stop
	c.mu.Unlock()

	debug.Log("clock", "start bpm=%d interval=%s", bpm, TickInterval(bpm))
	c.publish(0)
	go c.run(ticker, stop)
}

func (c *Clock) run(ticker *time.Ticker, stop chan struct{}) {
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			if !c.running {
				c.mu.Unlock()
				return
			}
			c.pos = (c.pos + 1) % NumSlots
			pos := c.pos
			c.mu.Unlock()
			c.publish(pos)
		}
	}
}

// Stop cancels the tick source and publishes NoPosition
func (c *Clock) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.pos = NoPosition
	close(c.stop)
	c.mu.Unlock()

	debug.Log("clock", "stop")
	c.publish(NoPosition)
}

// SetTempo retunes the tick interval without resetting the position;
// the next scheduled tick uses the new interval. No-op while stopped.
func (c *Clock) SetTempo(bpm int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.ticker.Reset(TickInterval(bpm))
}

// Running reports whether the clock is ticking
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Position returns the last published slot, or NoPosition when idle
func (c *Clock) Position() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

func (c *Clock) publish(pos int) {
	if c.onTick != nil {
		c.onTick(pos)
	}
}
