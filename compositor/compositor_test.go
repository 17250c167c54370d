package compositor

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/gowarp/field"
)

type patternScene struct {
	width, height int
	resizes       int
	renders       int
	during        func()
	err           error
	skipAfter     int // leave dst untouched after this many renders
	last          *image.RGBA
}

func (p *patternScene) Resize(w, h int) bool {
	p.width, p.height = w, h
	p.resizes++
	return true
}

func (p *patternScene) RenderScene(_ context.Context, dst *image.RGBA) error {
	p.renders++
	p.last = dst
	if p.during != nil {
		p.during()
	}
	if p.err != nil {
		return p.err
	}
	if p.skipAfter > 0 && p.renders > p.skipAfter {
		return nil
	}
	b := dst.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			o := y*dst.Stride + x*4
			dst.Pix[o+0] = uint8(x * 7)
			dst.Pix[o+1] = uint8(y * 11)
			dst.Pix[o+2] = uint8(x*3 + y*5)
			dst.Pix[o+3] = 255
		}
	}
	return nil
}

type recordingPresenter struct {
	frames []*image.RGBA
	closed int
}

func (r *recordingPresenter) Present(img *image.RGBA) error {
	r.frames = append(r.frames, img)
	return nil
}

func (r *recordingPresenter) Close() error {
	r.closed++
	return nil
}

func uniforms(scale float64) map[string]float64 {
	return map[string]float64{
		field.UniformDisplacementScale: scale,
		field.UniformTileFactor:        10,
		field.UniformStripeWidth:       10,
		field.UniformStripeAngle:       45,
	}
}

func TestZeroScaleIsIdentity(t *testing.T) {
	scene := &patternScene{}
	c, err := New(scene, nil, 37, 23, Config{Workers: 3})
	require.NoError(t, err)

	for _, k := range []field.Kind{field.Box, field.Stripe} {
		c.RequestField(k)
		out, err := c.Render(context.Background(), uniforms(0))
		require.NoError(t, err)
		assert.Equal(t, scene.last.Pix, out.Pix, "field %s", k)
	}
}

func TestDistortionMovesPixels(t *testing.T) {
	scene := &patternScene{}
	c, err := New(scene, nil, 64, 48, Config{})
	require.NoError(t, err)
	out, err := c.Render(context.Background(), uniforms(0.2))
	require.NoError(t, err)
	assert.NotEqual(t, scene.last.Pix, out.Pix)
}

func TestEachFrameReturnsNewImage(t *testing.T) {
	c, err := New(&patternScene{}, nil, 16, 16, Config{})
	require.NoError(t, err)
	a, err := c.Render(context.Background(), uniforms(0.05))
	require.NoError(t, err)
	b, err := c.Render(context.Background(), uniforms(0.05))
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, a.Pix, b.Pix)
}

func TestFieldSwitchAppliesNextFrame(t *testing.T) {
	const w, h = 48, 32
	scene := &patternScene{}
	c, err := New(scene, nil, w, h, Config{Field: field.Box})
	require.NoError(t, err)

	u := uniforms(0.2)
	src := image.NewRGBA(image.Rect(0, 0, w, h))
	require.NoError(t, (&patternScene{}).RenderScene(context.Background(), src))
	boxRef := image.NewRGBA(src.Rect)
	require.NoError(t, Distort(context.Background(), boxRef, src, field.New(field.Box).Bind(u), 2))
	stripeRef := image.NewRGBA(src.Rect)
	require.NoError(t, Distort(context.Background(), stripeRef, src, field.New(field.Stripe).Bind(u), 2))
	require.NotEqual(t, boxRef.Pix, stripeRef.Pix)

	// Request the switch while the first frame is in its scene pass.
	scene.during = func() {
		c.RequestField(field.Stripe)
		scene.during = nil
	}
	first, err := c.Render(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, boxRef.Pix, first.Pix)
	assert.Equal(t, field.Box, c.ActiveField())

	second, err := c.Render(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, stripeRef.Pix, second.Pix)
	assert.Equal(t, field.Stripe, c.ActiveField())
}

func TestStateOrder(t *testing.T) {
	var states []State
	p := &recordingPresenter{}
	c, err := New(&patternScene{}, p, 8, 8, Config{OnState: func(s State) { states = append(states, s) }})
	require.NoError(t, err)
	_, err = c.Render(context.Background(), uniforms(0.01))
	require.NoError(t, err)
	assert.Equal(t, []State{ScenePass, DistortionPass, Present, Idle}, states)
	assert.Len(t, p.frames, 1)
	assert.Equal(t, Idle, c.State())
}

func TestSceneErrorStopsFrame(t *testing.T) {
	boom := errors.New("boom")
	p := &recordingPresenter{}
	c, err := New(&patternScene{err: boom}, p, 8, 8, Config{})
	require.NoError(t, err)
	_, err = c.Render(context.Background(), uniforms(0))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, p.frames)
	assert.Equal(t, Idle, c.State())
}

func TestResize(t *testing.T) {
	scene := &patternScene{}
	c, err := New(scene, nil, 20, 10, Config{})
	require.NoError(t, err)
	resizes := scene.resizes

	assert.False(t, c.Resize(0, 10))
	assert.False(t, c.Resize(20, -1))
	assert.False(t, c.Resize(20, 10))
	assert.Equal(t, resizes, scene.resizes)

	assert.True(t, c.Resize(40, 30))
	w, h := c.Size()
	assert.Equal(t, 40, w)
	assert.Equal(t, 30, h)
	assert.Equal(t, 40, scene.width)
	assert.Equal(t, 30, scene.height)

	out, err := c.Render(context.Background(), uniforms(0))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 30), out.Rect)
}

func TestInvalidViewport(t *testing.T) {
	_, err := New(&patternScene{}, nil, 0, 10, Config{})
	assert.Error(t, err)
}

func TestDisposeIsIdempotent(t *testing.T) {
	p := &recordingPresenter{}
	c, err := New(&patternScene{}, p, 8, 8, Config{})
	require.NoError(t, err)
	require.NoError(t, c.Dispose())
	require.NoError(t, c.Dispose())
	assert.Equal(t, 1, p.closed)

	_, err = c.Render(context.Background(), uniforms(0))
	assert.ErrorIs(t, err, ErrDisposed)
	assert.False(t, c.Resize(16, 16))
}

type devicePresenter struct {
	recordingPresenter
	kinds []field.Kind
}

func (d *devicePresenter) PresentDistorted(_ *image.RGBA, f *field.Field, u map[string]float64) error {
	d.kinds = append(d.kinds, f.Kind)
	return nil
}

func TestDevicePresenterTakesDistortion(t *testing.T) {
	d := &devicePresenter{}
	c, err := New(&patternScene{}, d, 8, 8, Config{Device: true, Field: field.Stripe})
	require.NoError(t, err)
	out, err := c.Render(context.Background(), uniforms(0.1))
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Equal(t, []field.Kind{field.Stripe}, d.kinds)
	assert.Empty(t, d.frames)
}

func TestSamplerClampsAndFlipsRows(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	// top row red, bottom row blue
	for x := 0; x < 2; x++ {
		img.Pix[x*4+0], img.Pix[x*4+3] = 255, 255
		img.Pix[img.Stride+x*4+2], img.Pix[img.Stride+x*4+3] = 255, 255
	}
	s := newImageSampler(img)
	assert.Equal(t, [4]float64{0, 0, 1, 1}, s.Sample(0.25, 0.25))
	assert.Equal(t, [4]float64{1, 0, 0, 1}, s.Sample(0.75, 0.75))
	assert.Equal(t, [4]float64{1, 0, 0, 1}, s.Sample(-3, 9))
	mid := s.Sample(0.5, 0.5)
	assert.InDelta(t, 0.5, mid[0], 1e-9)
	assert.InDelta(t, 0.5, mid[2], 1e-9)
}

func TestSceneImageIsFreshEachFrame(t *testing.T) {
	scene := &patternScene{skipAfter: 1}
	c, err := New(scene, nil, 12, 9, Config{})
	require.NoError(t, err)

	_, err = c.Render(context.Background(), uniforms(0))
	require.NoError(t, err)
	first := scene.last

	out, err := c.Render(context.Background(), uniforms(0))
	require.NoError(t, err)
	assert.NotSame(t, first, scene.last)
	// The second pass drew nothing, so nothing from the first frame survives.
	assert.Equal(t, make([]byte, len(out.Pix)), out.Pix)
}
