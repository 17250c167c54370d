package audio

import (
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Microphone captures the default input device through portaudio.
type Microphone struct {
	sampleRate int
	channels   int

	mu        sync.Mutex
	stream    *portaudio.Stream
	audioChan chan []float32
	dropped   int
	released  bool
}

// NewMicrophone initializes portaudio. channels is 1 or 2; stereo input is
// downmixed before it is sent.
func NewMicrophone(sampleRate, channels int) (*Microphone, error) {
	if channels != 2 {
		channels = 1
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	return &Microphone{sampleRate: sampleRate, channels: channels}, nil
}

func (m *Microphone) audioCallback(in []float32) {
	var chunk []float32
	if m.channels == 2 {
		chunk = DownmixStereoToMono(in)
	} else {
		// portaudio reuses its buffer
		chunk = append([]float32(nil), in...)
	}

	// never block the audio thread
	select {
	case m.audioChan <- chunk:
	default:
		m.dropped++
		if m.dropped%100 == 1 {
			log.Printf("Warning: audio consumer is behind, %d chunks dropped", m.dropped)
		}
	}
}

func (m *Microphone) Start() (<-chan []float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return nil, fmt.Errorf("microphone stopped")
	}
	if m.stream != nil {
		return m.audioChan, nil
	}
	m.audioChan = make(chan []float32, 16)

	host, err := portaudio.DefaultHostApi()
	if err != nil {
		return nil, err
	}
	if host.DefaultInputDevice == nil {
		return nil, fmt.Errorf("no default input device")
	}

	params := portaudio.HighLatencyParameters(host.DefaultInputDevice, nil)
	params.Input.Channels = m.channels
	params.SampleRate = float64(m.sampleRate)

	stream, err := portaudio.OpenStream(params, m.audioCallback)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start audio stream: %w", err)
	}
	m.stream = stream
	log.Printf("Microphone started: %s at %d Hz", host.DefaultInputDevice.Name, m.sampleRate)
	return m.audioChan, nil
}

// Stop closes the stream and releases portaudio, also after a failed Start.
// A stopped microphone cannot be started again.
func (m *Microphone) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return nil
	}
	m.released = true
	var err error
	if m.stream != nil {
		err = m.stream.Close()
		m.stream = nil
		close(m.audioChan)
	}
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}

func (m *Microphone) SampleRate() int {
	return m.sampleRate
}
