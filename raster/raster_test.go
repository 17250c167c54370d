package raster

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/gowarp/mesh"
	"github.com/richinsley/gowarp/noise"
)

func red(*Fragment) mgl32.Vec3 { return mgl32.Vec3{1, 0, 0} }

func at(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

func TestCameraAspect(t *testing.T) {
	c := NewCamera(200, 100)
	assert.Equal(t, float32(2), c.Aspect())
	assert.False(t, c.SetAspect(0, 100))
	assert.False(t, c.SetAspect(100, -1))
	assert.Equal(t, float32(2), c.Aspect())
}

func TestFlushClearsAndDraws(t *testing.T) {
	r := New(3)
	require.True(t, r.Resize(40, 30))
	cam := NewCamera(40, 30)
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))

	r.Submit(mesh.Plane(1, 1), mgl32.Ident4(), cam.ViewProjection(), true, red)
	require.NoError(t, r.Flush(context.Background(), img, ClearColor))

	assert.Equal(t, color.RGBA{0xff, 0, 0, 0xff}, at(img, 20, 15))
	assert.Equal(t, ClearColor, at(img, 0, 0))
	assert.Equal(t, ClearColor, at(img, 39, 29))
}

func TestBackFacesCulled(t *testing.T) {
	r := New(1)
	r.Resize(40, 30)
	cam := NewCamera(40, 30)
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))

	// Turned away from the camera.
	model := mgl32.HomogRotate3DY(mgl32.DegToRad(180))
	r.Submit(mesh.Plane(1, 1), model, cam.ViewProjection(), true, red)
	require.NoError(t, r.Flush(context.Background(), img, ClearColor))
	assert.Equal(t, ClearColor, at(img, 20, 15))

	var normal mgl32.Vec3
	r.Submit(mesh.Plane(1, 1), model, cam.ViewProjection(), false, func(f *Fragment) mgl32.Vec3 {
		normal = f.Normal
		return mgl32.Vec3{0, 1, 0}
	})
	require.NoError(t, r.Flush(context.Background(), img, ClearColor))
	assert.Equal(t, color.RGBA{0, 0xff, 0, 0xff}, at(img, 20, 15))
	// Double sided faces are lit from the viewer's side.
	assert.Greater(t, normal.Z(), float32(0.9))
}

func TestDepthOrdering(t *testing.T) {
	r := New(1)
	r.Resize(40, 30)
	cam := NewCamera(40, 30)
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	vp := cam.ViewProjection()

	r.Submit(mesh.Plane(1, 1), mgl32.Translate3D(0, 0, 0.5), vp, true, red)
	r.Submit(mesh.Plane(2, 2), mgl32.Ident4(), vp, true, func(*Fragment) mgl32.Vec3 { return mgl32.Vec3{0, 0, 1} })
	require.NoError(t, r.Flush(context.Background(), img, ClearColor))
	assert.Equal(t, color.RGBA{0xff, 0, 0, 0xff}, at(img, 20, 15))
}

func TestSceneRenders(t *testing.T) {
	blob := mesh.Icosphere(1, 4)
	s := NewScene(blob, noise.NewSimplex(0), 64, 48, 2)
	s.Update(FrameState{
		Elapsed:    1,
		Playhead:   0.1,
		Anchor:     mgl32.Vec3{1, 0, 0},
		PlaneScale: 2,
		PlanePinch: 0.5,
		InLight:    true,
		OutLight:   true,
	})
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	require.NoError(t, s.RenderScene(context.Background(), img))

	drawn := 0
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			if at(img, x, y) != ClearColor {
				drawn++
			}
		}
	}
	assert.Greater(t, drawn, 64*48/4)
	// The plane overflows the frame vertically; nothing at the centre is
	// background.
	assert.NotEqual(t, ClearColor, at(img, 32, 24))
}

func TestSceneResize(t *testing.T) {
	s := NewScene(mesh.Icosphere(1, 1), noise.NewSimplex(0), 64, 48, 1)
	assert.False(t, s.Resize(0, 10))
	assert.Equal(t, float32(64)/48, s.Camera.Aspect())
	assert.True(t, s.Resize(100, 50))
	assert.Equal(t, float32(2), s.Camera.Aspect())
}

func TestLightToggle(t *testing.T) {
	l := Light{Position: mgl32.Vec3{0, 0, 2}, Color: mgl32.Vec3{1, 1, 1}, Intensity: 1, Enabled: true}
	n := mgl32.Vec3{0, 0, 1}
	assert.Greater(t, l.contribution(mgl32.Vec3{}, n)[0], float32(0))
	// Lit from behind.
	assert.Zero(t, l.contribution(mgl32.Vec3{}, n.Mul(-1))[0])
	l.Enabled = false
	assert.Zero(t, l.contribution(mgl32.Vec3{}, n)[0])
}

func TestHex(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{1, 240.0 / 255, 0}, Hex(0xfff000))
}
