package raster

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/richinsley/gowarp/noise"
)

// Hex converts 0xRRGGBB to an RGB vector in [0,1].
func Hex(c uint32) mgl32.Vec3 {
	return mgl32.Vec3{
		float32((c>>16)&0xff) / 255,
		float32((c>>8)&0xff) / 255,
		float32(c&0xff) / 255,
	}
}

func mix(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	t = mgl32.Clamp(t, 0, 1)
	return a.Mul(1 - t).Add(b.Mul(t))
}

func smoothstep(e0, e1, x float32) float32 {
	t := mgl32.Clamp((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}

// Fabric is a crumpled cloth pattern: ridged noise folds between a bright
// colour and a shadow colour over a background.
type Fabric struct {
	Noise      noise.Noise
	Color      mgl32.Vec3
	Subcolor   mgl32.Vec3
	Background mgl32.Vec3
}

// At evaluates the pattern at a surface point for the animated seed,
// scale and pinch.
func (f *Fabric) At(p mgl32.Vec3, seed, scale, pinch float64) mgl32.Vec3 {
	x, y := float64(p[0])*scale, float64(p[1])*scale
	n := noise.FBM3(f.Noise, x, y, seed, 3, pinch)
	ridge := 1 - math32.Abs(float32(n))
	fold := math32.Pow(ridge, float32(1+4*pinch))
	c := mix(f.Background, f.Subcolor, smoothstep(0.1, 0.6, ridge))
	return mix(c, f.Color, fold)
}

// Speckle is thresholded simplex noise, a colour over a background.
type Speckle struct {
	Noise      noise.Noise
	Scale      float64
	Color      mgl32.Vec3
	Background mgl32.Vec3
}

func (s *Speckle) At(p mgl32.Vec3) mgl32.Vec3 {
	n := s.Noise.Eval3(float64(p[0])*s.Scale, float64(p[1])*s.Scale, float64(p[2])*s.Scale)
	return mix(s.Background, s.Color, float32(n)*0.5+0.5)
}

// Cells is an organic, cell-like pattern: noise bands of a given thickness
// appear where the field crosses a threshold.
type Cells struct {
	Noise      noise.Noise
	Scale      float64
	Fat        float64
	Amount     float64
	Color      mgl32.Vec3
	Background mgl32.Vec3
}

func (c *Cells) At(p mgl32.Vec3, seed float64) mgl32.Vec3 {
	s := c.Scale * 2
	n := c.Noise.Eval3(float64(p[0])*s+seed, float64(p[1])*s, float64(p[2])*s-seed)
	band := math32.Abs(float32(n) - float32(c.Amount-0.5))
	k := 1 - smoothstep(0, float32(c.Fat), band)
	return mix(c.Background, c.Color, k)
}
