// Package mesh holds indexed triangle meshes and the primitives the sketch
// renders.
package mesh

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is an indexed triangle list. Normals are derived from positions and
// must be recomputed after positions change.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2 // optional
	Indices   []uint32
}

// Triangles returns the number of triangles.
func (m *Mesh) Triangles() int {
	return len(m.Indices) / 3
}

// Triangle returns the vertex indices of triangle t.
func (m *Mesh) Triangle(t int) (uint32, uint32, uint32) {
	return m.Indices[3*t], m.Indices[3*t+1], m.Indices[3*t+2]
}

// Clone deep-copies the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Positions: append([]mgl32.Vec3(nil), m.Positions...),
		Normals:   append([]mgl32.Vec3(nil), m.Normals...),
		Indices:   append([]uint32(nil), m.Indices...),
	}
	if m.UVs != nil {
		c.UVs = append([]mgl32.Vec2(nil), m.UVs...)
	}
	return c
}

// FaceNormal returns (c-b)x(a-b): perpendicular to the triangle with a
// length of twice its area.
func FaceNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	return c.Sub(b).Cross(a.Sub(b))
}

// ComputeNormals rebuilds per-vertex normals by accumulating area-weighted
// face normals. A vertex whose faces cancel out falls back to its radial
// direction, then to +Y.
func (m *Mesh) ComputeNormals() {
	if len(m.Normals) != len(m.Positions) {
		m.Normals = make([]mgl32.Vec3, len(m.Positions))
	} else {
		clear(m.Normals)
	}
	for t := 0; t < m.Triangles(); t++ {
		ia, ib, ic := m.Triangle(t)
		n := FaceNormal(m.Positions[ia], m.Positions[ib], m.Positions[ic])
		m.Normals[ia] = m.Normals[ia].Add(n)
		m.Normals[ib] = m.Normals[ib].Add(n)
		m.Normals[ic] = m.Normals[ic].Add(n)
	}
	for i, n := range m.Normals {
		m.Normals[i] = SafeNormalize(n, m.Positions[i])
	}
}

// SafeNormalize returns v scaled to unit length. When v is too short to
// normalize it tries fallback, then the +Y axis.
func SafeNormalize(v, fallback mgl32.Vec3) mgl32.Vec3 {
	const eps = 1e-12
	if l := v.Len(); l > eps && !math32.IsInf(l, 0) {
		return v.Mul(1 / l)
	}
	if l := fallback.Len(); l > eps && !math32.IsInf(l, 0) {
		return fallback.Mul(1 / l)
	}
	return mgl32.Vec3{0, 1, 0}
}
