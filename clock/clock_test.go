package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickIsMonotonic(t *testing.T) {
	src := NewManualSource()
	c := New(src, DefaultDuration)

	src.Set(2 * time.Second)
	f1 := c.Tick()
	assert.InDelta(t, 2.0, f1.Elapsed, 1e-9)
	assert.Zero(t, f1.Delta)

	// A source stepping backwards must not rewind the clock.
	src.Set(time.Second)
	f2 := c.Tick()
	assert.InDelta(t, 2.0, f2.Elapsed, 1e-9)
	assert.Zero(t, f2.Delta)
	assert.Equal(t, int64(1), f2.Index)

	src.Set(2500 * time.Millisecond)
	f3 := c.Tick()
	assert.InDelta(t, 2.5, f3.Elapsed, 1e-9)
	assert.InDelta(t, 0.5, f3.Delta, 1e-9)
}

func TestPlayheadWraps(t *testing.T) {
	assert.InDelta(t, 0.0, Playhead(0, 6*time.Second), 1e-12)
	assert.InDelta(t, 0.5, Playhead(3*time.Second, 6*time.Second), 1e-12)
	assert.InDelta(t, 0.25, Playhead(7500*time.Millisecond, 6*time.Second), 1e-12)
	assert.Zero(t, Playhead(time.Second, 0))
}

func TestPauseExcludesPausedTime(t *testing.T) {
	src := NewManualSource()
	c := New(src, DefaultDuration)

	src.Set(time.Second)
	c.Tick()
	c.Pause()
	require.True(t, c.Paused())

	src.Advance(5 * time.Second)
	f := c.Tick()
	assert.InDelta(t, 1.0, f.Elapsed, 1e-9)

	c.Resume()
	src.Advance(time.Second)
	f = c.Tick()
	assert.InDelta(t, 2.0, f.Elapsed, 1e-9)
}

func TestToggle(t *testing.T) {
	c := New(NewManualSource(), 0)
	assert.Equal(t, DefaultDuration, c.Duration())
	assert.True(t, c.Toggle())
	assert.False(t, c.Toggle())
	assert.False(t, c.Paused())
}

func TestFixedStepSource(t *testing.T) {
	src := NewFixedStepSource(60)
	c := New(src, DefaultDuration)
	assert.Equal(t, 360, c.Frames(60))

	var last Frame
	for i := 0; i < 61; i++ {
		last = c.Tick()
	}
	assert.InDelta(t, 1.0, last.Elapsed, 1e-6)
	assert.InDelta(t, 1.0/60, last.Delta, 1e-6)
}
