package follow

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartsAtRest(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, DefaultRest, c.Position())
	assert.Equal(t, DefaultRest, c.Target())
}

func TestPointerMapping(t *testing.T) {
	c := New(Config{})
	c.SetBounds(200, 100)
	c.PointerEnter()

	c.PointerMove(100, 50)
	assert.True(t, c.Target().ApproxEqual(mgl32.Vec3{0, 0, 0}))

	c.PointerMove(0, 0)
	assert.True(t, c.Target().ApproxEqual(mgl32.Vec3{-3, 3, 0}))

	c.PointerMove(200, 100)
	assert.True(t, c.Target().ApproxEqual(mgl32.Vec3{3, -3, 0}))

	// Outside the surface counts as away.
	c.PointerMove(250, 10)
	assert.Equal(t, DefaultRest, c.Target())

	c.PointerMove(100, 50)
	c.PointerLeave()
	assert.Equal(t, DefaultRest, c.Target())
}

func TestNoBoundsMeansRest(t *testing.T) {
	c := New(Config{})
	c.SetBounds(0, 10)
	c.PointerEnter()
	c.PointerMove(5, 5)
	assert.Equal(t, DefaultRest, c.Target())
}

func TestLerpConvergesGeometrically(t *testing.T) {
	c := New(Config{})
	c.SetBounds(100, 100)
	c.PointerEnter()
	c.PointerMove(90, 20)
	target := c.Target()
	d0 := float64(c.Position().Sub(target).Len())

	for n := 1; n <= 200; n++ {
		p := c.Update()
		d := float64(p.Sub(target).Len())
		bound := d0 * math.Pow(1-DefaultFactor, float64(n))
		require.LessOrEqual(t, d, bound+1e-5, "step %d", n)
	}
}

func TestLerpNeverOvershoots(t *testing.T) {
	c := New(Config{Factor: 0.5})
	c.SetBounds(10, 10)
	c.PointerEnter()
	c.PointerMove(10, 5)
	target := c.Target()
	for i := 0; i < 40; i++ {
		p := c.Update()
		assert.LessOrEqual(t, p.X(), target.X()+1e-6)
	}
}

func TestReturnsToRestOnLeave(t *testing.T) {
	c := New(Config{})
	c.SetBounds(10, 10)
	c.PointerEnter()
	c.PointerMove(5, 5)
	for i := 0; i < 300; i++ {
		c.Update()
	}
	assert.Less(t, c.Position().Len(), float32(1e-3))

	c.PointerLeave()
	for i := 0; i < 400; i++ {
		c.Update()
	}
	assert.Less(t, c.Position().Sub(DefaultRest).Len(), float32(1e-3))
}

func TestSpringConverges(t *testing.T) {
	c := New(Config{Mode: Spring, FPS: 60})
	for i := 0; i < 600; i++ {
		c.Update()
	}
	assert.Less(t, c.Position().Sub(DefaultRest).Len(), float32(1e-3))

	c.SetBounds(10, 10)
	c.PointerEnter()
	c.PointerMove(5, 5)
	for i := 0; i < 600; i++ {
		c.Update()
	}
	assert.Less(t, c.Position().Len(), float32(1e-2))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("spring")
	require.NoError(t, err)
	assert.Equal(t, Spring, m)
	_, err = ParseMode("bounce")
	assert.Error(t, err)
}

func TestEnterWithoutMoveKeepsRest(t *testing.T) {
	c := New(Config{})
	c.SetBounds(200, 100)
	c.PointerEnter()
	assert.Equal(t, DefaultRest, c.Target())
	c.Update()
	assert.True(t, c.Position().ApproxEqual(DefaultRest))

	c.PointerMove(100, 50)
	assert.True(t, c.Target().ApproxEqual(mgl32.Vec3{0, 0, 0}))

	// A stale position from before leaving is not reused.
	c.PointerLeave()
	c.PointerEnter()
	assert.Equal(t, DefaultRest, c.Target())
}
