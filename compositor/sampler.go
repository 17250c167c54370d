package compositor

import (
	"image"
	"math"
)

// imageSampler reads an RGBA image bilinearly with clamp-to-edge. UVs have
// a bottom-left origin while image row 0 is the top row.
type imageSampler struct {
	img *image.RGBA
	w   int
	h   int
}

func newImageSampler(img *image.RGBA) imageSampler {
	b := img.Bounds()
	return imageSampler{img: img, w: b.Dx(), h: b.Dy()}
}

func (s imageSampler) Sample(u, v float64) [4]float64 {
	u = math.Max(0, math.Min(1, u))
	v = math.Max(0, math.Min(1, v))
	fx := snap(u*float64(s.w) - 0.5)
	fy := snap((1-v)*float64(s.h) - 0.5)

	x0, y0 := math.Floor(fx), math.Floor(fy)
	tx, ty := fx-x0, fy-y0
	ix0, iy0 := clampInt(int(x0), s.w), clampInt(int(y0), s.h)
	ix1, iy1 := clampInt(int(x0)+1, s.w), clampInt(int(y0)+1, s.h)

	var out [4]float64
	for c := 0; c < 4; c++ {
		top := lerp(s.at(ix0, iy0, c), s.at(ix1, iy0, c), tx)
		bot := lerp(s.at(ix0, iy1, c), s.at(ix1, iy1, c), tx)
		out[c] = lerp(top, bot, ty) / 255
	}
	return out
}

func (s imageSampler) at(x, y, c int) float64 {
	return float64(s.img.Pix[y*s.img.Stride+x*4+c])
}

// snap removes rounding noise around texel centres so an undisplaced
// lookup returns the texel exactly.
func snap(f float64) float64 {
	r := math.Round(f)
	if math.Abs(f-r) < 1e-9 {
		return r
	}
	return f
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clampInt(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
