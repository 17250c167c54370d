package audio

import (
	"log"
	"math"
	"sync"

	"github.com/mjibson/go-dsp/fft"
)

const (
	fftInputSize      = 2048
	spectrumBins      = 512
	historyBufferSize = fftInputSize * 4

	minDecibels = -100.0
	maxDecibels = -30.0
)

// Analyzer keeps a history of recent samples and reduces its spectrum to a
// single loudness level.
type Analyzer struct {
	mu            sync.Mutex
	historyBuffer []float32
	bufferPos     int

	window    []float64
	smoothed  []float64
	smoothing float64
}

func NewAnalyzer() *Analyzer {
	a := &Analyzer{
		historyBuffer: make([]float32, historyBufferSize),
		window:        blackmanWindow(fftInputSize),
		smoothed:      make([]float64, spectrumBins),
		smoothing:     0.8,
	}
	for i := range a.smoothed {
		a.smoothed[i] = minDecibels
	}
	return a
}

// Listen starts dev and feeds its chunks to a new analyzer until the
// device is stopped.
func Listen(dev Device) (*Analyzer, error) {
	ch, err := dev.Start()
	if err != nil {
		return nil, err
	}
	a := NewAnalyzer()
	go func() {
		for samples := range ch {
			a.Feed(samples)
		}
		log.Printf("Audio input closed")
	}()
	return a, nil
}

// Feed appends samples to the history.
func (a *Analyzer) Feed(samples []float32) {
	a.mu.Lock()
	for _, s := range samples {
		a.historyBuffer[a.bufferPos] = s
		a.bufferPos = (a.bufferPos + 1) % historyBufferSize
	}
	a.mu.Unlock()
}

func (a *Analyzer) recent(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		idx := (a.bufferPos - n + i + historyBufferSize) % historyBufferSize
		out[i] = float64(a.historyBuffer[idx]) * a.window[i]
	}
	return out
}

// Level returns the loudest smoothed spectrum bin scaled from
// [minDecibels, maxDecibels] to [0,1]. Each call advances the smoothing by
// one step, so it belongs to the frame loop.
func (a *Analyzer) Level() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	spectrum := fft.FFTReal(a.recent(fftInputSize))
	peak := 0.0
	for i := 0; i < spectrumBins; i++ {
		re, im := real(spectrum[i]), imag(spectrum[i])
		magnitude := math.Sqrt(re*re+im*im) * (2.0 / fftInputSize)
		db := 20 * math.Log10(magnitude+1e-9)
		a.smoothed[i] = a.smoothing*a.smoothed[i] + (1-a.smoothing)*db
		peak = math.Max(peak, scaleDecibels(a.smoothed[i]))
	}
	return peak
}

func scaleDecibels(db float64) float64 {
	switch {
	case db <= minDecibels:
		return 0
	case db >= maxDecibels:
		return 1
	}
	return (db - minDecibels) / (maxDecibels - minDecibels)
}

func blackmanWindow(size int) []float64 {
	window := make([]float64, size)
	inv := 1.0 / float64(size-1)
	for i := range window {
		t := float64(i) * inv
		window[i] = 0.42 - 0.5*math.Cos(2*math.Pi*t) + 0.08*math.Cos(4*math.Pi*t)
	}
	return window
}
