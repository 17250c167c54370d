// Package sketch is the context object a host drives once per frame. It
// owns the parameter registry, the follow controller, the deformed blob,
// the scene and the compositor, and sequences them in a fixed order.
package sketch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/richinsley/gowarp/clock"
	"github.com/richinsley/gowarp/compositor"
	"github.com/richinsley/gowarp/deform"
	"github.com/richinsley/gowarp/field"
	"github.com/richinsley/gowarp/follow"
	"github.com/richinsley/gowarp/mesh"
	"github.com/richinsley/gowarp/noise"
	"github.com/richinsley/gowarp/params"
	"github.com/richinsley/gowarp/raster"
)

var ErrDisposed = errors.New("sketch disposed")

const DefaultDetail = 20

// LevelSource reports a loudness level in [0,1], usually from a microphone.
type LevelSource interface {
	Level() float64
}

type Config struct {
	Width   int
	Height  int
	Field   field.Kind
	Seed    int64
	Detail  int // blob icosphere subdivision
	Workers int
	Follow  follow.Config

	// Presenter receives finished frames. With DeviceDistortion set and a
	// compositor.DevicePresenter, the presenter also runs the distortion.
	Presenter        compositor.Presenter
	DeviceDistortion bool

	// Specs overrides the declared parameters; nil uses params.Defaults.
	Specs []params.Spec
	Level LevelSource
	// OnError receives problems that do not stop a frame, such as a queued
	// edit naming an unknown parameter.
	OnError func(error)
}

type Sketch struct {
	mu       sync.Mutex
	disposed atomic.Bool

	params   *params.Registry
	inbox    *params.Inbox
	follow   *follow.Controller
	blob     *mesh.Mesh
	deformer *deform.Deformer
	scene    *raster.Scene
	comp     *compositor.Compositor
	level    LevelSource
	onError  func(error)

	anchor    mgl32.Vec3
	disposers []func()
}

// New builds every component for a width×height viewport.
func New(cfg Config) (*Sketch, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("sketch: invalid viewport %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Detail <= 0 {
		cfg.Detail = DefaultDetail
	}
	specs := cfg.Specs
	if specs == nil {
		specs = params.Defaults()
	}

	s := &Sketch{
		params:  params.NewRegistry(specs),
		inbox:   params.NewInbox(),
		follow:  follow.New(cfg.Follow),
		level:   cfg.Level,
		onError: cfg.OnError,
	}
	if _, err := s.params.Set(params.ActiveField, float64(cfg.Field)); err != nil {
		return nil, fmt.Errorf("sketch: %w", err)
	}
	s.follow.SetBounds(cfg.Width, cfg.Height)
	s.anchor = s.follow.Position()

	n := noise.NewSimplex(cfg.Seed)
	s.blob = mesh.Icosphere(deform.DefaultRadius, cfg.Detail)
	s.deformer = deform.New(s.blob, n, deform.Config{Workers: cfg.Workers})
	s.scene = raster.NewScene(s.blob, n, cfg.Width, cfg.Height, cfg.Workers)

	active, _ := s.params.Choice(params.ActiveField)
	comp, err := compositor.New(s.scene, cfg.Presenter, cfg.Width, cfg.Height, compositor.Config{
		Field:   field.Kind(active),
		Workers: cfg.Workers,
		Device:  cfg.DeviceDistortion,
	})
	if err != nil {
		return nil, fmt.Errorf("sketch: %w", err)
	}
	s.comp = comp

	s.params.Observe(params.ObserverFunc(func(name string, v float64) {
		if name == params.ActiveField {
			s.comp.RequestField(field.Kind(int(v)))
		}
	}))
	return s, nil
}

// Params exposes the registry to control surfaces.
func (s *Sketch) Params() *params.Registry { return s.params }

// Inbox queues edits from goroutines outside the frame loop. They apply at
// the start of the next frame.
func (s *Sketch) Inbox() *params.Inbox { return s.inbox }

// Anchor is the blob group position used by the most recent frame.
func (s *Sketch) Anchor() mgl32.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anchor
}

// ActiveField is the field used by the most recent frame.
func (s *Sketch) ActiveField() field.Kind {
	return s.comp.ActiveField()
}

// Blob returns the deformed mesh. It must not be modified.
func (s *Sketch) Blob() *mesh.Mesh { return s.blob }

// RenderFrame renders f from a clock.
func (s *Sketch) RenderFrame(ctx context.Context, f clock.Frame) (*image.RGBA, error) {
	return s.Render(ctx, f.Elapsed, f.Playhead)
}

// Render produces one frame. elapsed is in seconds and playhead in [0,1).
//
// Queued edits are applied, then the animated parameters, then the anchor
// and the blob are updated, and only then is a parameter snapshot taken for
// the scene and distortion passes.
func (s *Sketch) Render(ctx context.Context, elapsed, playhead float64) (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed.Load() {
		return nil, ErrDisposed
	}

	if err := s.inbox.Drain(s.params); err != nil {
		s.report(err)
	}
	if err := params.Animate(s.params, elapsed); err != nil {
		s.report(err)
	}
	if s.level != nil {
		if _, err := s.params.Set(params.AudioLevel, s.level.Level()); err != nil {
			s.report(err)
		}
	}

	s.anchor = s.follow.Update()

	amp := s.params.Float(params.BlobAmplitude) *
		(1 + s.params.Float(params.AudioGain)*s.params.Float(params.AudioLevel))
	if err := s.deformer.Deform(ctx, s.blob, elapsed, amp); err != nil {
		return nil, fmt.Errorf("deform: %w", err)
	}

	snap := s.params.Snapshot()
	s.scene.Update(raster.FrameState{
		Elapsed:    elapsed,
		Playhead:   playhead,
		Anchor:     s.anchor,
		PlaneSeed:  snap[params.PlaneSeed],
		PlaneScale: snap[params.PlaneScale],
		PlanePinch: snap[params.PlanePinch],
		BlobSeed:   snap[params.BlobSeed],
		InLight:    snap[params.InLightEnabled] != 0,
		OutLight:   snap[params.OutLightEnabled] != 0,
	})
	return s.comp.Render(ctx, snap)
}

func (s *Sketch) report(err error) {
	if s.onError != nil {
		s.onError(err)
	}
}

// Resize changes the viewport. Non-positive sizes are ignored.
func (s *Sketch) Resize(width, height int) bool {
	if s.disposed.Load() || width <= 0 || height <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.follow.SetBounds(width, height)
	return s.comp.Resize(width, height)
}

// SetParameter writes a parameter, clamped to its declared range. It is
// safe to call from any goroutine; a frame in progress keeps the values it
// already read.
func (s *Sketch) SetParameter(name string, value float64) error {
	if s.disposed.Load() {
		return ErrDisposed
	}
	_, err := s.params.Set(name, value)
	return err
}

// SetParameterText parses text for the parameter's kind and writes it.
func (s *Sketch) SetParameterText(name, text string) error {
	if s.disposed.Load() {
		return ErrDisposed
	}
	_, err := s.params.SetString(name, text)
	return err
}

func (s *Sketch) OnPointerMove(x, y float64) {
	if !s.disposed.Load() {
		s.follow.PointerMove(x, y)
	}
}

func (s *Sketch) OnPointerEnter() {
	if !s.disposed.Load() {
		s.follow.PointerEnter()
	}
}

func (s *Sketch) OnPointerLeave() {
	if !s.disposed.Load() {
		s.follow.PointerLeave()
	}
}

// OnDispose registers fn to run once during Dispose, in reverse order of
// registration. Hosts use it to detach input callbacks and watchers.
func (s *Sketch) OnDispose(fn func()) {
	s.mu.Lock()
	s.disposers = append(s.disposers, fn)
	s.mu.Unlock()
}

// Dispose detaches listeners and releases the compositor. Later calls do
// nothing.
func (s *Sketch) Dispose() error {
	if s.disposed.Swap(true) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.disposers) - 1; i >= 0; i-- {
		s.disposers[i]()
	}
	s.disposers = nil
	return s.comp.Dispose()
}

// Factory builds a sketch for a viewport with an optional presenter. cmd
// hands one to each host.
type Factory func(width, height int, p compositor.Presenter, deviceDistortion bool) (*Sketch, error)
