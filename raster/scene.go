package raster

import (
	"context"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/richinsley/gowarp/mesh"
	"github.com/richinsley/gowarp/noise"
)

// ClearColor is the scene background, 0x333333.
var ClearColor = color.RGBA{0x33, 0x33, 0x33, 0xff}

// Light is a point light, or a spot light when Cone is non-zero.
type Light struct {
	Position  mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
	Enabled   bool

	Direction mgl32.Vec3 // spot axis
	Cone      float32    // spot half angle, radians
	Penumbra  float32    // fraction of the cone that fades out
}

// contribution returns the irradiance factor of l at a surface point.
func (l *Light) contribution(p, n mgl32.Vec3) mgl32.Vec3 {
	if !l.Enabled {
		return mgl32.Vec3{}
	}
	d := l.Position.Sub(p)
	dist := d.Len()
	if dist < 1e-6 {
		return mgl32.Vec3{}
	}
	dir := d.Mul(1 / dist)
	ndl := n.Dot(dir)
	if ndl <= 0 {
		return mgl32.Vec3{}
	}
	k := l.Intensity * ndl / (1 + 0.25*dist*dist)
	if l.Cone > 0 {
		cosOuter := math32.Cos(l.Cone)
		cosInner := math32.Cos(l.Cone * (1 - l.Penumbra))
		k *= smoothstep(cosOuter, cosInner, -dir.Dot(l.Direction))
	}
	return l.Color.Mul(k)
}

// FrameState is everything that varies per frame in the scene.
type FrameState struct {
	Elapsed  float64
	Playhead float64
	Anchor   mgl32.Vec3 // blob group position

	PlaneSeed  float64
	PlaneScale float64
	PlanePinch float64
	BlobSeed   float64

	InLight  bool
	OutLight bool
}

// Scene renders the backdrop plane, the rotating box and the deformed blob
// with a point light inside the blob group and a spot light in front.
type Scene struct {
	Camera *Camera

	mu     sync.Mutex
	raster *Rasterizer
	state  FrameState

	plane *mesh.Mesh
	box   *mesh.Mesh
	blob  *mesh.Mesh

	fabric  Fabric
	speckle Speckle
	cells   Cells

	inLight  Light
	outLight Light
	ambient  float32
}

// NewScene builds the scene around blob, which the caller deforms between
// frames.
func NewScene(blob *mesh.Mesh, n noise.Noise, width, height, workers int) *Scene {
	s := &Scene{
		Camera: NewCamera(width, height),
		raster: New(workers),
		plane:  mesh.Plane(4, 4),
		box:    mesh.Box(1, 1, 1),
		blob:   blob,
		fabric: Fabric{
			Noise:      n,
			Color:      Hex(0xb0f0ff),
			Subcolor:   Hex(0x4040f0),
			Background: Hex(0x003000),
		},
		speckle: Speckle{
			Noise:      n,
			Scale:      4,
			Color:      Hex(0xfff000),
			Background: Hex(0x333333),
		},
		cells: Cells{
			Noise:      n,
			Scale:      1,
			Fat:        0.3,
			Amount:     0.5,
			Color:      Hex(0x8040a0),
			Background: Hex(0xf0ffff),
		},
		inLight: Light{
			Color:     mgl32.Vec3{1, 1, 1},
			Intensity: 6,
			Enabled:   true,
		},
		outLight: Light{
			Position:  mgl32.Vec3{0, 0, 7},
			Color:     mgl32.Vec3{1, 1, 1},
			Intensity: 9,
			Enabled:   true,
			Direction: mgl32.Vec3{0, 0, -1},
			Cone:      math32.Pi / 6,
			Penumbra:  0.5,
		},
		ambient: 0.2,
	}
	s.raster.Resize(width, height)
	s.state.Anchor = mgl32.Vec3{-2, 0, -3}
	return s
}

// Update stores the state for the next RenderScene.
func (s *Scene) Update(st FrameState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Resize updates the camera aspect and depth buffer. Non-positive sizes
// are ignored.
func (s *Scene) Resize(width, height int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Camera.SetAspect(width, height) {
		return false
	}
	return s.raster.Resize(width, height)
}

// RenderScene draws the scene into dst, which must match the current size.
func (s *Scene) RenderScene(ctx context.Context, dst *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	vp := s.Camera.ViewProjection()
	s.inLight.Position = st.Anchor
	s.inLight.Enabled = st.InLight
	s.outLight.Enabled = st.OutLight

	planeModel := mgl32.Translate3D(0, 0, -1)
	s.raster.Submit(s.plane, planeModel, vp, false, func(f *Fragment) mgl32.Vec3 {
		albedo := s.fabric.At(f.Local, st.PlaneSeed, st.PlaneScale, st.PlanePinch)
		return s.shade(f, albedo)
	})

	spin := float32(st.Playhead * 2 * math.Pi)
	boxModel := mgl32.HomogRotate3DX(spin).Mul4(mgl32.HomogRotate3DY(spin))
	s.raster.Submit(s.box, boxModel, vp, true, func(f *Fragment) mgl32.Vec3 {
		return s.shade(f, s.speckle.At(f.Local))
	})

	t := float32(st.Elapsed)
	blobModel := mgl32.Translate3D(st.Anchor[0], st.Anchor[1], st.Anchor[2]).
		Mul4(mgl32.HomogRotate3DX(t / 6.5)).
		Mul4(mgl32.HomogRotate3DY(t / 4.6)).
		Mul4(mgl32.HomogRotate3DZ(t / 5.7))
	s.raster.Submit(s.blob, blobModel, vp, true, func(f *Fragment) mgl32.Vec3 {
		albedo := s.cells.At(f.Local, st.BlobSeed)
		c := s.shade(f, albedo)
		if st.InLight {
			// The point light sits inside the blob and shows through it.
			c = c.Add(albedo.Mul(0.45))
		}
		return c
	})

	return s.raster.Flush(ctx, dst, ClearColor)
}

func (s *Scene) shade(f *Fragment, albedo mgl32.Vec3) mgl32.Vec3 {
	light := mgl32.Vec3{s.ambient, s.ambient, s.ambient}
	light = light.Add(s.inLight.contribution(f.World, f.Normal))
	light = light.Add(s.outLight.contribution(f.World, f.Normal))
	return mgl32.Vec3{albedo[0] * light[0], albedo[1] * light[1], albedo[2] * light[2]}
}
