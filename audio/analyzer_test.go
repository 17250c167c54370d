package audio

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(n int, freq, rate, amp float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/rate))
	}
	return out
}

func TestSilenceIsZero(t *testing.T) {
	a := NewAnalyzer()
	for i := 0; i < 5; i++ {
		assert.Equal(t, 0.0, a.Level())
	}
}

func TestToneRaisesLevel(t *testing.T) {
	a := NewAnalyzer()
	a.Feed(sine(fftInputSize*2, 440, 44100, 0.8))
	first := a.Level()
	var level float64
	for i := 0; i < 40; i++ {
		level = a.Level()
	}
	assert.Greater(t, level, first)
	assert.Greater(t, level, 0.9)
	assert.LessOrEqual(t, level, 1.0)
}

func TestScaleDecibels(t *testing.T) {
	assert.Equal(t, 0.0, scaleDecibels(-200))
	assert.Equal(t, 1.0, scaleDecibels(0))
	assert.InDelta(t, 0.5, scaleDecibels(-65), 1e-12)
}

func TestDownmix(t *testing.T) {
	assert.Equal(t, []float32{0.5, -1}, DownmixStereoToMono([]float32{0, 1, -1, -1, 7}))
}

func TestListenNullDevice(t *testing.T) {
	d := NewNullDevice(44100)
	a, err := Listen(d)
	require.NoError(t, err)
	assert.Equal(t, 0.0, a.Level())
	require.NoError(t, d.Stop())
	require.NoError(t, d.Stop())
	assert.Equal(t, 44100, d.SampleRate())
}

func TestFeedWrapsHistory(t *testing.T) {
	a := NewAnalyzer()
	a.Feed(make([]float32, historyBufferSize+10))
	assert.Equal(t, 10, a.bufferPos)
	done := make(chan struct{})
	go func() {
		a.Feed(sine(100, 1000, 44100, 0.5))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("feed blocked")
	}
}
