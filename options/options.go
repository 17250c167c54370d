package options

import (
	"flag"
	"fmt"
	"time"

	"github.com/richinsley/gowarp/field"
	"github.com/richinsley/gowarp/follow"
)

type SketchOptions struct {
	Help          *bool
	Mode          *string // window, record or preview
	Duration      *float64
	FPS           *int
	Width         *int
	Height        *int
	OutputFile    *string
	Codec         *string
	FFMPEGPath    *string
	Snapshot      *string // record mode: PNG of the last frame
	ConfigFile    *string
	Watch         *bool
	Field         *string
	GPUDistortion *bool
	Audio         *bool
	AudioGain     *float64
	Follow        *string
	Seed          *int64
	Detail        *int
	Workers       *int
}

// New defines the sketch flags on fs.
func New(fs *flag.FlagSet) *SketchOptions {
	return &SketchOptions{
		Help:          fs.Bool("help", false, "Show help message"),
		Mode:          fs.String("mode", "window", "Run mode: window, record or preview"),
		Duration:      fs.Float64("duration", 6.0, "Loop duration in seconds"),
		FPS:           fs.Int("fps", 60, "Frames per second"),
		Width:         fs.Int("width", 1280, "Width of the output"),
		Height:        fs.Int("height", 720, "Height of the output"),
		OutputFile:    fs.String("output", "output.webm", "Output file name for recording"),
		Codec:         fs.String("codec", "vp9", "Recording codec: vp9 or h264"),
		FFMPEGPath:    fs.String("ffmpeg", "", "Path to ffmpeg executable"),
		Snapshot:      fs.String("snapshot", "", "Write the last recorded frame to this PNG file"),
		ConfigFile:    fs.String("config", "", "TOML parameter file"),
		Watch:         fs.Bool("watch", false, "Reload the parameter file when it changes"),
		Field:         fs.String("field", "box", "Distortion field: box or stripe"),
		GPUDistortion: fs.Bool("gpu-distortion", false, "Run the distortion pass on the GPU in window mode"),
		Audio:         fs.Bool("audio", false, "Modulate the blob with the default microphone"),
		AudioGain:     fs.Float64("audio-gain", 0, "Microphone influence on the blob amplitude"),
		Follow:        fs.String("follow", "lerp", "Follow smoothing: lerp or spring"),
		Seed:          fs.Int64("seed", 0, "Noise seed"),
		Detail:        fs.Int("detail", 20, "Blob icosphere detail"),
		Workers:       fs.Int("workers", 0, "Worker goroutines, 0 for GOMAXPROCS"),
	}
}

// Validate checks flag combinations and ranges.
func (o *SketchOptions) Validate() error {
	switch *o.Mode {
	case "window", "record", "preview":
	default:
		return fmt.Errorf("unknown mode %q", *o.Mode)
	}
	switch *o.Codec {
	case "vp9", "h264":
	default:
		return fmt.Errorf("unknown codec %q", *o.Codec)
	}
	if *o.Width <= 0 || *o.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", *o.Width, *o.Height)
	}
	if *o.FPS <= 0 {
		return fmt.Errorf("invalid fps %d", *o.FPS)
	}
	if *o.Duration <= 0 {
		return fmt.Errorf("invalid duration %v", *o.Duration)
	}
	if *o.Watch && *o.ConfigFile == "" {
		return fmt.Errorf("-watch needs -config")
	}
	if _, err := o.FieldKind(); err != nil {
		return err
	}
	if _, err := o.FollowMode(); err != nil {
		return err
	}
	return nil
}

func (o *SketchOptions) FieldKind() (field.Kind, error) {
	return field.ParseKind(*o.Field)
}

func (o *SketchOptions) FollowMode() (follow.Mode, error) {
	return follow.ParseMode(*o.Follow)
}

// LoopDuration is Duration as a time.Duration.
func (o *SketchOptions) LoopDuration() time.Duration {
	return time.Duration(*o.Duration * float64(time.Second))
}
