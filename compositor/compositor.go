// Package compositor runs the per-frame pipeline: render the scene to an
// intermediate image, resample it through the active distortion field and
// present the result.
package compositor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/richinsley/gowarp/field"
)

var ErrDisposed = errors.New("compositor disposed")

// State is the pipeline stage of the frame in progress.
type State int

const (
	Idle State = iota
	ScenePass
	DistortionPass
	Present
)

func (s State) String() string {
	switch s {
	case ScenePass:
		return "scene"
	case DistortionPass:
		return "distortion"
	case Present:
		return "present"
	}
	return "idle"
}

// SceneRenderer draws the 3D scene into an image of the current size.
type SceneRenderer interface {
	Resize(width, height int) bool
	RenderScene(ctx context.Context, dst *image.RGBA) error
}

// Presenter receives each finished frame.
type Presenter interface {
	Present(img *image.RGBA) error
}

// DevicePresenter runs the distortion pass itself, typically on the GPU,
// from the field's shader and the frame's uniforms.
type DevicePresenter interface {
	Presenter
	PresentDistorted(scene *image.RGBA, f *field.Field, uniforms map[string]float64) error
}

type Config struct {
	Field   field.Kind
	Workers int
	// Device lets a DevicePresenter take over the distortion pass.
	Device bool
	// OnState observes stage transitions.
	OnState func(State)
}

// Compositor runs the scene and distortion passes and owns the field
// selection. Each frame renders into a fresh scene image.
type Compositor struct {
	mu        sync.Mutex
	scene     SceneRenderer
	presenter Presenter
	device    DevicePresenter
	workers   int
	onState   func(State)

	width    int
	height   int
	fields   map[field.Kind]*field.Field
	active   field.Kind
	state    State
	disposed bool

	// Field requests are kept apart from mu so they can arrive while a
	// frame is rendering.
	reqMu   sync.Mutex
	pending *field.Kind
}

// New returns a compositor for a width×height viewport. presenter may be nil.
func New(scene SceneRenderer, presenter Presenter, width, height int, cfg Config) (*Compositor, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("compositor: invalid viewport %dx%d", width, height)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	c := &Compositor{
		scene:     scene,
		presenter: presenter,
		workers:   cfg.Workers,
		onState:   cfg.OnState,
		fields: map[field.Kind]*field.Field{
			field.Box:    field.New(field.Box),
			field.Stripe: field.New(field.Stripe),
		},
		active: cfg.Field,
	}
	if dp, ok := presenter.(DevicePresenter); ok && cfg.Device {
		c.device = dp
	}
	if _, ok := c.fields[c.active]; !ok {
		c.active = field.Box
	}
	c.width, c.height = width, height
	c.scene.Resize(width, height)
	return c, nil
}

// RequestField selects the field for the next frame. A request made while
// a frame renders does not affect that frame.
func (c *Compositor) RequestField(k field.Kind) {
	c.reqMu.Lock()
	c.pending = &k
	c.reqMu.Unlock()
}

// ActiveField is the field used by the most recent frame.
func (c *Compositor) ActiveField() field.Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Compositor) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Compositor) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *Compositor) setState(s State) {
	c.state = s
	if c.onState != nil {
		c.onState(s)
	}
}

// Render runs one full frame with the given uniform values and returns the
// distorted image. Every call returns a new image. When a device presenter
// performs the distortion the returned image is nil.
func (c *Compositor) Render(ctx context.Context, uniforms map[string]float64) (*image.RGBA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return nil, ErrDisposed
	}

	c.reqMu.Lock()
	if c.pending != nil {
		if _, ok := c.fields[*c.pending]; ok {
			c.active = *c.pending
		}
		c.pending = nil
	}
	c.reqMu.Unlock()
	f := c.fields[c.active]
	defer c.setState(Idle)

	c.setState(ScenePass)
	sceneImg := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	if err := c.scene.RenderScene(ctx, sceneImg); err != nil {
		return nil, fmt.Errorf("scene pass: %w", err)
	}

	c.setState(DistortionPass)
	if c.device != nil {
		c.setState(Present)
		if err := c.device.PresentDistorted(sceneImg, f, uniforms); err != nil {
			return nil, fmt.Errorf("present: %w", err)
		}
		return nil, nil
	}
	out := image.NewRGBA(sceneImg.Rect)
	if err := Distort(ctx, out, sceneImg, f.Bind(uniforms), c.workers); err != nil {
		return nil, fmt.Errorf("distortion pass: %w", err)
	}

	c.setState(Present)
	if c.presenter != nil {
		if err := c.presenter.Present(out); err != nil {
			return nil, fmt.Errorf("present: %w", err)
		}
	}
	return out, nil
}

// Resize changes the frame size and resizes the scene. It is a no-op for
// non-positive or unchanged sizes.
func (c *Compositor) Resize(width, height int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed || width <= 0 || height <= 0 {
		return false
	}
	if width == c.width && height == c.height {
		return false
	}
	c.width, c.height = width, height
	c.scene.Resize(width, height)
	return true
}

// Dispose closes the presenter if it holds resources. Later calls do nothing.
func (c *Compositor) Dispose() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return nil
	}
	c.disposed = true
	if closer, ok := c.presenter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Distort writes src resampled through b into dst, splitting rows across
// workers.
func Distort(ctx context.Context, dst, src *image.RGBA, b *field.Bound, workers int) error {
	if !dst.Rect.Eq(src.Rect) {
		return fmt.Errorf("distort: size mismatch %v vs %v", dst.Rect, src.Rect)
	}
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}
	s := newImageSampler(src)
	rows := max(1, (h+workers*4-1)/(workers*4))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y0 := 0; y0 < h; y0 += rows {
		y1 := min(y0+rows, h)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for y := y0; y < y1; y++ {
				v := 1 - (float64(y)+0.5)/float64(h)
				o := y * dst.Stride
				for x := 0; x < w; x++ {
					u := (float64(x) + 0.5) / float64(w)
					col := b.Color(s, u, v)
					for c := 0; c < 4; c++ {
						dst.Pix[o+4*x+c] = uint8(col[c]*255 + 0.5)
					}
				}
			}
			return nil
		})
	}
	return g.Wait()
}
