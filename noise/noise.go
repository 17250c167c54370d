// Package noise provides the coherent noise used for mesh deformation and
// procedural materials.
package noise

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Noise is a continuous, deterministic function bounded to [-1,1]. Values
// must be safe for concurrent use.
type Noise interface {
	Eval2(x, y float64) float64
	Eval3(x, y, z float64) float64
}

// Simplex is OpenSimplex noise for a fixed seed.
type Simplex struct {
	n opensimplex.Noise
}

func NewSimplex(seed int64) *Simplex {
	return &Simplex{n: opensimplex.New(seed)}
}

func (s *Simplex) Eval2(x, y float64) float64 {
	if !finite(x) || !finite(y) {
		return 0
	}
	return bound(s.n.Eval2(x, y))
}

func (s *Simplex) Eval3(x, y, z float64) float64 {
	if !finite(x) || !finite(y) || !finite(z) {
		return 0
	}
	return bound(s.n.Eval3(x, y, z))
}

// FBM3 sums octaves of n with doubling frequency and the given persistence,
// normalized back to [-1,1].
func FBM3(n Noise, x, y, z float64, octaves int, persistence float64) float64 {
	var total, maxValue float64
	frequency, amplitude := 1.0, 1.0
	for i := 0; i < octaves; i++ {
		total += n.Eval3(x*frequency, y*frequency, z*frequency) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	if maxValue == 0 {
		return 0
	}
	return total / maxValue
}

func bound(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
