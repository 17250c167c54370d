package noise

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimplexBoundedAndDeterministic(t *testing.T) {
	a, b := NewSimplex(42), NewSimplex(42)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		x, y, z := rng.NormFloat64()*10, rng.NormFloat64()*10, rng.NormFloat64()*10
		v := a.Eval2(x, y)
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0)
		assert.Equal(t, v, b.Eval2(x, y))

		w := a.Eval3(x, y, z)
		assert.GreaterOrEqual(t, w, -1.0)
		assert.LessOrEqual(t, w, 1.0)
	}
}

func TestSimplexIsContinuous(t *testing.T) {
	n := NewSimplex(1)
	for x := 0.0; x < 5; x += 0.37 {
		assert.InDelta(t, n.Eval2(x, 0.5), n.Eval2(x+1e-7, 0.5), 1e-5)
	}
}

func TestSimplexTotal(t *testing.T) {
	n := NewSimplex(1)
	assert.Equal(t, 0.0, n.Eval2(math.NaN(), 0))
	assert.Equal(t, 0.0, n.Eval2(math.Inf(1), 0))
	assert.Equal(t, 0.0, n.Eval3(0, math.Inf(-1), 0))
}

func TestFBM3Bounded(t *testing.T) {
	n := NewSimplex(9)
	for i := 0; i < 100; i++ {
		v := FBM3(n, float64(i)*0.13, 0.2, 0.7, 4, 0.5)
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.Zero(t, FBM3(n, 1, 2, 3, 0, 0.5))
}
