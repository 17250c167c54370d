package raster

import "github.com/go-gl/mathgl/mgl32"

// Camera is a perspective camera looking at a fixed target.
type Camera struct {
	FOV    float32 // vertical, degrees
	Near   float32
	Far    float32
	Eye    mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3
	aspect float32
}

// NewCamera returns the sketch camera: 50° at (0,0,4) looking at the origin.
func NewCamera(width, height int) *Camera {
	c := &Camera{
		FOV:    50,
		Near:   0.1,
		Far:    1000,
		Eye:    mgl32.Vec3{0, 0, 4},
		Up:     mgl32.Vec3{0, 1, 0},
		aspect: 1,
	}
	c.SetAspect(width, height)
	return c
}

// SetAspect updates the aspect ratio. Non-positive sizes leave it unchanged.
func (c *Camera) SetAspect(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	c.aspect = float32(width) / float32(height)
	return true
}

func (c *Camera) Aspect() float32 {
	return c.aspect
}

func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.aspect, c.Near, c.Far)
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Target, c.Up)
}

func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}
