package renderer

import (
	"context"
	"fmt"
	"log"

	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/gowarp/clock"
	"github.com/richinsley/gowarp/field"
	"github.com/richinsley/gowarp/glfwcontext"
	"github.com/richinsley/gowarp/options"
	"github.com/richinsley/gowarp/params"
	"github.com/richinsley/gowarp/sketch"
)

// Run opens a window and renders the sketch until it is closed. It must
// be called from the main thread.
func Run(o *options.SketchOptions, newSketch sketch.Factory) error {
	if err := glfwcontext.InitGraphics(); err != nil {
		return fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	defer glfwcontext.TerminateGraphics()

	gctx, err := glfwcontext.New(o, true)
	if err != nil {
		return fmt.Errorf("%w: failed to create window: %v", ErrNoDevice, err)
	}
	defer gctx.Shutdown()

	win, err := NewWindow(gctx)
	if err != nil {
		return err
	}

	width, height := gctx.GetFramebufferSize()
	sk, err := newSketch(width, height, win, *o.GPUDistortion)
	if err != nil {
		win.Close()
		return err
	}
	defer sk.Dispose()

	clk := clock.New(clock.NewWallSource(), o.LoopDuration())
	gctx.AttachPointer(sk)
	gctx.OnFramebufferResize(func(w, h int) { sk.Resize(w, h) })
	registerKeys(gctx, sk, clk)
	sk.OnDispose(gctx.Detach)

	log.Println("Starting interactive render loop...")
	ctx := context.Background()
	for !gctx.ShouldClose() {
		if _, err := sk.RenderFrame(ctx, clk.Tick()); err != nil {
			return fmt.Errorf("render: %w", err)
		}
		gctx.EndFrame()
	}
	return nil
}

func registerKeys(gctx *glfwcontext.Context, sk *sketch.Sketch, clk *clock.Clock) {
	set := func(name string, v float64) func() {
		return func() {
			if err := sk.SetParameter(name, v); err != nil {
				log.Printf("Parameter %s: %v", name, err)
			}
		}
	}
	nudge := func(name string, steps int) func() {
		return func() {
			if _, err := sk.Params().Nudge(name, steps); err != nil {
				log.Printf("Parameter %s: %v", name, err)
			}
		}
	}
	gctx.RegisterKeyCallback(glfw.KeySpace, func() {
		if clk.Toggle() {
			log.Println("Paused")
		} else {
			log.Println("Resumed")
		}
	})
	gctx.RegisterKeyCallback(glfw.Key1, set(params.ActiveField, float64(field.Box)))
	gctx.RegisterKeyCallback(glfw.Key2, set(params.ActiveField, float64(field.Stripe)))
	gctx.RegisterKeyCallback(glfw.KeyI, nudge(params.InLightEnabled, 1))
	gctx.RegisterKeyCallback(glfw.KeyO, nudge(params.OutLightEnabled, 1))
	gctx.RegisterKeyCallback(glfw.KeyUp, nudge(params.DisplacementScale, 1))
	gctx.RegisterKeyCallback(glfw.KeyDown, nudge(params.DisplacementScale, -1))
	gctx.RegisterKeyCallback(glfw.KeyRight, nudge(params.TileFactor, 10))
	gctx.RegisterKeyCallback(glfw.KeyLeft, nudge(params.TileFactor, -10))
}
