package mesh

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var icosahedronFaces = [20][3]int{
	{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
	{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
	{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
	{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
}

func icosahedronCorners() [12]mgl32.Vec3 {
	t := (1 + math32.Sqrt(5)) / 2
	return [12]mgl32.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
}

// bary identifies a subdivision point by its integer weights on the twelve
// icosahedron corners. Points shared by neighbouring faces get equal keys,
// so they merge exactly.
type bary [12]uint16

// Icosphere subdivides each icosahedron face into (detail+1)² triangles,
// projects every point onto a sphere of the given radius and merges shared
// vertices. The result is closed: every edge borders exactly two triangles.
func Icosphere(radius float32, detail int) *Mesh {
	if detail < 0 {
		detail = 0
	}
	cols := detail + 1
	corners := icosahedronCorners()

	m := &Mesh{}
	index := make(map[bary]uint32, 10*cols*cols+2)
	vertex := func(k bary) uint32 {
		if i, ok := index[k]; ok {
			return i
		}
		var p mgl32.Vec3
		for c, w := range k {
			if w != 0 {
				p = p.Add(corners[c].Mul(float32(w)))
			}
		}
		i := uint32(len(m.Positions))
		m.Positions = append(m.Positions, p.Normalize().Mul(radius))
		index[k] = i
		return i
	}

	for _, f := range icosahedronFaces {
		a, b, c := f[0], f[1], f[2]
		// grid[i][j] is the point i rows from edge ab towards c and j
		// steps from a's side towards b's side.
		grid := make([][]uint32, cols+1)
		for i := 0; i <= cols; i++ {
			rows := cols - i
			grid[i] = make([]uint32, rows+1)
			for j := 0; j <= rows; j++ {
				var k bary
				k[a] += uint16(rows - j)
				k[b] += uint16(j)
				k[c] += uint16(i)
				grid[i][j] = vertex(k)
			}
		}
		for i := 0; i < cols; i++ {
			for j := 0; j < 2*(cols-i)-1; j++ {
				k := j / 2
				if j%2 == 0 {
					m.addOutward(grid[i][k+1], grid[i+1][k], grid[i][k])
				} else {
					m.addOutward(grid[i][k+1], grid[i+1][k+1], grid[i+1][k])
				}
			}
		}
	}
	m.ComputeNormals()
	return m
}

// addOutward appends a triangle wound so its face normal points away from
// the origin.
func (m *Mesh) addOutward(a, b, c uint32) {
	pa, pb, pc := m.Positions[a], m.Positions[b], m.Positions[c]
	centroid := pa.Add(pb).Add(pc)
	if FaceNormal(pa, pb, pc).Dot(centroid) < 0 {
		b, c = c, b
	}
	m.Indices = append(m.Indices, a, b, c)
}

// Box returns an axis-aligned box centred on the origin with one UV square
// per face and flat normals.
func Box(w, h, d float32) *Mesh {
	type face struct {
		n    mgl32.Vec3
		u, v mgl32.Vec3
	}
	faces := []face{
		{n: mgl32.Vec3{1, 0, 0}, u: mgl32.Vec3{0, 0, -1}, v: mgl32.Vec3{0, 1, 0}},
		{n: mgl32.Vec3{-1, 0, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{0, 1, 0}},
		{n: mgl32.Vec3{0, 1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, -1}},
		{n: mgl32.Vec3{0, -1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, 1}},
		{n: mgl32.Vec3{0, 0, 1}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
		{n: mgl32.Vec3{0, 0, -1}, u: mgl32.Vec3{-1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
	}
	half := mgl32.Vec3{w / 2, h / 2, d / 2}
	scale := func(v mgl32.Vec3) mgl32.Vec3 {
		return mgl32.Vec3{v[0] * half[0], v[1] * half[1], v[2] * half[2]}
	}

	m := &Mesh{}
	for _, f := range faces {
		base := uint32(len(m.Positions))
		center, u, v := scale(f.n), scale(f.u), scale(f.v)
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			m.Positions = append(m.Positions, center.Add(u.Mul(c[0])).Add(v.Mul(c[1])))
			m.Normals = append(m.Normals, f.n)
			m.UVs = append(m.UVs, mgl32.Vec2{(c[0] + 1) / 2, (c[1] + 1) / 2})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// Plane returns a w×h quad in the XY plane facing +Z.
func Plane(w, h float32) *Mesh {
	hx, hy := w/2, h/2
	return &Mesh{
		Positions: []mgl32.Vec3{{-hx, -hy, 0}, {hx, -hy, 0}, {hx, hy, 0}, {-hx, hy, 0}},
		Normals:   []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		UVs:       []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
}
