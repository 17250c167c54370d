// Package clock provides the frame clock: the only time input to the
// animated parts of a sketch.
package clock

import (
	"math"
	"sync"
	"time"
)

// DefaultDuration is the length of one animation loop.
const DefaultDuration = 6 * time.Second

// Frame is the time state handed to a single render call.
type Frame struct {
	Index    int64
	Elapsed  float64 // seconds since start, pauses excluded
	Delta    float64 // seconds since the previous frame
	Playhead float64 // fraction of the loop in [0,1)
}

// Clock turns a Source into monotonically increasing frame times.
type Clock struct {
	mu       sync.Mutex
	src      Source
	duration time.Duration

	paused      bool
	pauseStart  time.Duration
	pausedTotal time.Duration

	last  time.Duration
	index int64
}

func New(src Source, duration time.Duration) *Clock {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Clock{src: src, duration: duration}
}

// Tick samples the source and returns the next frame. Elapsed never
// decreases, even if the source steps backwards.
func (c *Clock) Tick() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.src.Now()
	var elapsed time.Duration
	if c.paused {
		elapsed = c.pauseStart - c.pausedTotal
	} else {
		elapsed = now - c.pausedTotal
	}
	if elapsed < c.last {
		elapsed = c.last
	}

	f := Frame{
		Index:    c.index,
		Elapsed:  elapsed.Seconds(),
		Delta:    (elapsed - c.last).Seconds(),
		Playhead: Playhead(elapsed, c.duration),
	}
	if c.index == 0 {
		f.Delta = 0
	}
	c.last = elapsed
	c.index++
	return f
}

// Pause freezes elapsed time until Resume.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	c.paused = true
	c.pauseStart = c.src.Now()
}

func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	c.paused = false
	if d := c.src.Now() - c.pauseStart; d > 0 {
		c.pausedTotal += d
	}
}

// Toggle flips the pause state and reports whether the clock is now paused.
func (c *Clock) Toggle() bool {
	if c.Paused() {
		c.Resume()
		return false
	}
	c.Pause()
	return true
}

func (c *Clock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

func (c *Clock) Duration() time.Duration {
	return c.duration
}

// Frames returns how many frames one loop spans at the given rate.
func (c *Clock) Frames(fps int) int {
	return int(math.Round(c.duration.Seconds() * float64(fps)))
}

// Playhead maps elapsed time onto the normalized loop position.
func Playhead(elapsed, duration time.Duration) float64 {
	if duration <= 0 {
		return 0
	}
	p := float64(elapsed%duration) / float64(duration)
	if p < 0 {
		p += 1
	}
	return p
}
