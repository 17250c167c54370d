package encoder

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const numBuffers = 4

// Frame is one RGBA frame, top row first, ready for encoding.
type Frame struct {
	Pixels []byte
	PTS    int64
}

type Config struct {
	Width      int
	Height     int
	FPS        int
	Codec      string // vp9 or h264
	OutputFile string
	FFMPEGPath string
}

// Args returns the ffmpeg input and output arguments for cfg.
func Args(cfg Config) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"r":       cfg.FPS,
	}

	outputArgs = ffmpeg.KwArgs{"pix_fmt": "yuv420p"}
	switch cfg.Codec {
	case "h264":
		outputArgs["c:v"] = "libx264"
		outputArgs["preset"] = "medium"
		outputArgs["crf"] = 18
		if strings.EqualFold(filepath.Ext(cfg.OutputFile), ".mp4") {
			outputArgs["movflags"] = "+faststart"
		}
	default:
		outputArgs["c:v"] = "libvpx-vp9"
		outputArgs["crf"] = 30
		outputArgs["b:v"] = 0
		outputArgs["row-mt"] = 1
	}
	return
}

// Command builds the ffmpeg invocation reading frames from r.
func Command(cfg Config, r io.Reader) *ffmpeg.Stream {
	inputArgs, outputArgs := Args(cfg)
	cmd := ffmpeg.Input("pipe:", inputArgs).
		Output(cfg.OutputFile, outputArgs).
		OverWriteOutput().WithInput(r).ErrorToStdOut()
	if cfg.FFMPEGPath != "" {
		cmd = cmd.SetFfmpegPath(cfg.FFMPEGPath)
	}
	return cmd
}

// Encoder pipes frames into an ffmpeg process.
type Encoder struct {
	cfg       Config
	frameSize int
	frames    chan *Frame
	done      chan error

	mu  sync.Mutex
	err error
}

// Start launches ffmpeg and the goroutine that feeds it.
func Start(cfg Config) (*Encoder, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.FPS <= 0 {
		return nil, fmt.Errorf("invalid encoder config %dx%d@%d", cfg.Width, cfg.Height, cfg.FPS)
	}
	e := &Encoder{
		cfg:       cfg,
		frameSize: cfg.Width * cfg.Height * 4,
		frames:    make(chan *Frame, numBuffers),
		done:      make(chan error, 1),
	}
	pipeReader, pipeWriter := io.Pipe()
	cmd := Command(cfg, pipeReader)
	log.Printf("Encoding %dx%d@%d %s to %s", cfg.Width, cfg.Height, cfg.FPS, cfg.Codec, cfg.OutputFile)

	errc := make(chan error, 1)
	go func() {
		err := cmd.Run()
		// unblock the writer if ffmpeg exits early
		pipeReader.CloseWithError(io.ErrClosedPipe)
		errc <- err
	}()
	go e.run(pipeWriter, errc)
	return e, nil
}

func (e *Encoder) run(w *io.PipeWriter, errc <-chan error) {
	for frame := range e.frames {
		if e.Err() != nil {
			continue
		}
		if len(frame.Pixels) != e.frameSize {
			e.fail(fmt.Errorf("frame %d: %d bytes, want %d", frame.PTS, len(frame.Pixels), e.frameSize))
			continue
		}
		if _, err := w.Write(frame.Pixels); err != nil {
			e.fail(fmt.Errorf("write frame %d: %w", frame.PTS, err))
		}
	}
	w.Close()
	if err := <-errc; err != nil {
		e.fail(fmt.Errorf("ffmpeg: %w", err))
	}
	e.done <- e.Err()
}

func (e *Encoder) fail(err error) {
	e.mu.Lock()
	if e.err == nil {
		e.err = err
		log.Printf("Encoder error: %v", err)
	}
	e.mu.Unlock()
}

// Err reports the first failure, if any.
func (e *Encoder) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Encode queues a frame. It blocks while numBuffers frames are pending.
func (e *Encoder) Encode(f *Frame) error {
	if err := e.Err(); err != nil {
		return err
	}
	e.frames <- f
	return nil
}

// Close flushes pending frames and waits for ffmpeg to exit.
func (e *Encoder) Close() error {
	close(e.frames)
	return <-e.done
}
