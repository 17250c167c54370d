package renderer

import (
	"context"
	"fmt"
	"image"
	"log"

	"github.com/richinsley/gowarp/clock"
	"github.com/richinsley/gowarp/encoder"
	"github.com/richinsley/gowarp/options"
	"github.com/richinsley/gowarp/sketch"
)

// RunRecord renders one loop at a fixed time step and encodes it. No
// window or GL context is needed.
func RunRecord(ctx context.Context, o *options.SketchOptions, newSketch sketch.Factory) error {
	log.Println("Starting in record mode...")
	sk, err := newSketch(*o.Width, *o.Height, nil, false)
	if err != nil {
		return err
	}
	defer sk.Dispose()

	enc, err := encoder.Start(encoder.Config{
		Width:      *o.Width,
		Height:     *o.Height,
		FPS:        *o.FPS,
		Codec:      *o.Codec,
		OutputFile: *o.OutputFile,
		FFMPEGPath: *o.FFMPEGPath,
	})
	if err != nil {
		return err
	}

	clk := clock.New(clock.NewFixedStepSource(*o.FPS), o.LoopDuration())
	totalFrames := clk.Frames(*o.FPS)
	var last *image.RGBA
	for i := 0; i < totalFrames; i++ {
		if err := ctx.Err(); err != nil {
			enc.Close()
			return err
		}
		img, err := sk.RenderFrame(ctx, clk.Tick())
		if err != nil {
			enc.Close()
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if err := enc.Encode(&encoder.Frame{Pixels: img.Pix, PTS: int64(i)}); err != nil {
			log.Printf("Stopping at frame %d: %v", i, err)
			break
		}
		last = img
		if (i+1)%*o.FPS == 0 {
			log.Printf("Rendered %d/%d frames", i+1, totalFrames)
		}
	}

	if err := enc.Close(); err != nil {
		return err
	}
	if *o.Snapshot != "" && last != nil {
		return encoder.Snapshot(*o.Snapshot, last)
	}
	return nil
}
