// Package follow moves an anchor point towards the pointer, or back to a
// resting point when the pointer leaves the surface.
package follow

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl32"
)

// Mode selects the smoothing law.
type Mode int

const (
	// Lerp moves a fixed fraction of the remaining distance every frame.
	Lerp Mode = iota
	// Spring follows with a critically damped spring.
	Spring
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "lerp":
		return Lerp, nil
	case "spring":
		return Spring, nil
	}
	return Lerp, fmt.Errorf("unknown follow mode %q", s)
}

const (
	DefaultFactor = 0.05
	// PointerScale maps normalized device coordinates to world units.
	PointerScale = 3
)

// DefaultRest is where the anchor settles while the pointer is away.
var DefaultRest = mgl32.Vec3{-2, 0, -3}

type Config struct {
	Mode   Mode
	Factor float32    // Lerp fraction per frame, in (0,1)
	Rest   mgl32.Vec3 // resting point
	FPS    int        // Spring time step
}

// Controller tracks one smoothed position. Pointer methods may be called
// from input callbacks; Update belongs to the frame loop.
type Controller struct {
	mu      sync.Mutex
	width   float32
	height  float32
	inside  bool
	moved   bool // a position has arrived since the last leave
	pointer mgl32.Vec2

	mode   Mode
	factor float32
	rest   mgl32.Vec3
	pos    mgl32.Vec3
	vel    [3]float64
	spring harmonica.Spring
}

// New returns a controller resting at cfg.Rest.
func New(cfg Config) *Controller {
	if cfg.Factor <= 0 || cfg.Factor >= 1 {
		cfg.Factor = DefaultFactor
	}
	if cfg.Rest == (mgl32.Vec3{}) {
		cfg.Rest = DefaultRest
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 60
	}
	return &Controller{
		mode:   cfg.Mode,
		factor: cfg.Factor,
		rest:   cfg.Rest,
		pos:    cfg.Rest,
		spring: harmonica.NewSpring(harmonica.FPS(cfg.FPS), 6.0, 1.0),
	}
}

// SetBounds sets the pointer surface size in pixels. Non-positive sizes are
// ignored.
func (c *Controller) SetBounds(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.mu.Lock()
	c.width, c.height = float32(width), float32(height)
	c.mu.Unlock()
}

// PointerMove records the pointer position in surface pixels, origin top-left.
func (c *Controller) PointerMove(x, y float64) {
	c.mu.Lock()
	c.pointer = mgl32.Vec2{float32(x), float32(y)}
	c.moved = true
	c.mu.Unlock()
}

func (c *Controller) PointerEnter() {
	c.mu.Lock()
	c.inside = true
	c.mu.Unlock()
}

func (c *Controller) PointerLeave() {
	c.mu.Lock()
	c.inside = false
	c.moved = false
	c.mu.Unlock()
}

// Target is the point the anchor is currently moving towards. Entering the
// surface changes nothing until the first pointer position arrives.
func (c *Controller) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target()
}

func (c *Controller) target() mgl32.Vec3 {
	if !c.inside || !c.moved || c.width <= 0 || c.height <= 0 {
		return c.rest
	}
	x, y := c.pointer[0], c.pointer[1]
	if x < 0 || y < 0 || x > c.width || y > c.height {
		return c.rest
	}
	nx := x/c.width*2 - 1
	ny := -(y/c.height*2 - 1)
	return mgl32.Vec3{nx * PointerScale, ny * PointerScale, 0}
}

// Update advances the anchor one frame and returns its new position.
func (c *Controller) Update() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.target()
	switch c.mode {
	case Spring:
		for i := 0; i < 3; i++ {
			p, v := c.spring.Update(float64(c.pos[i]), c.vel[i], float64(t[i]))
			c.pos[i], c.vel[i] = float32(p), v
		}
	default:
		c.pos = c.pos.Add(t.Sub(c.pos).Mul(c.factor))
	}
	return c.pos
}

// Position returns the anchor without advancing it.
func (c *Controller) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}
