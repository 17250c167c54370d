// Package raster renders the sketch scene on the CPU with a z-buffered
// triangle rasterizer.
package raster

import (
	"context"
	"image"
	"image/color"
	"math"
	"runtime"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/richinsley/gowarp/mesh"
)

// Fragment carries the interpolated surface attributes of one pixel.
type Fragment struct {
	World  mgl32.Vec3
	Normal mgl32.Vec3
	Local  mgl32.Vec3 // object space position
	UV     mgl32.Vec2
}

// Shader returns the linear RGB colour of a fragment.
type Shader func(f *Fragment) mgl32.Vec3

type screenVertex struct {
	x, y, z float32
	invW    float32
	world   mgl32.Vec3
	normal  mgl32.Vec3
	local   mgl32.Vec3
	uv      mgl32.Vec2
}

type triangle struct {
	v     [3]screenVertex
	area  float32
	flip  bool // back face of a double sided surface
	minY  int
	maxY  int
	shade Shader
}

// Rasterizer collects triangles with Submit and draws them with Flush.
// Flush splits the target into horizontal bands drawn in parallel; each
// band owns its rows of the colour and depth buffers.
type Rasterizer struct {
	width   int
	height  int
	depth   []float32
	tris    []triangle
	workers int
}

func New(workers int) *Rasterizer {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Rasterizer{workers: workers}
}

// Resize reallocates the depth buffer. Non-positive sizes are ignored.
func (r *Rasterizer) Resize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	if width == r.width && height == r.height {
		return true
	}
	r.width, r.height = width, height
	r.depth = make([]float32, width*height)
	return true
}

func (r *Rasterizer) Size() (int, int) {
	return r.width, r.height
}

// Submit transforms m by model and viewProj and queues its triangles.
// Back faces are dropped when cull is set, otherwise they are shaded with
// flipped normals.
func (r *Rasterizer) Submit(m *mesh.Mesh, model, viewProj mgl32.Mat4, cull bool, shade Shader) {
	if r.width == 0 || r.height == 0 {
		return
	}
	normalMat := model.Mat3()
	mvp := viewProj.Mul4(model)
	w, h := float32(r.width), float32(r.height)

	verts := make([]screenVertex, len(m.Positions))
	behind := make([]bool, len(m.Positions))
	for i, p := range m.Positions {
		clip := mvp.Mul4x1(p.Vec4(1))
		if clip.W() < 1e-3 {
			behind[i] = true
			continue
		}
		inv := 1 / clip.W()
		sv := screenVertex{
			x:      (clip.X()*inv + 1) * 0.5 * w,
			y:      (1 - clip.Y()*inv) * 0.5 * h,
			z:      clip.Z() * inv,
			invW:   inv,
			world:  model.Mul4x1(p.Vec4(1)).Vec3(),
			normal: normalMat.Mul3x1(m.Normals[i]),
			local:  p,
		}
		if m.UVs != nil {
			sv.uv = m.UVs[i]
		}
		verts[i] = sv
	}

	for t := 0; t < m.Triangles(); t++ {
		ia, ib, ic := m.Triangle(t)
		if behind[ia] || behind[ib] || behind[ic] {
			continue
		}
		a, b, c := verts[ia], verts[ib], verts[ic]
		area := (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
		if area == 0 {
			continue
		}
		// Screen y points down, so front faces have negative area.
		back := area > 0
		if back && cull {
			continue
		}
		minY := int(math32.Floor(min(a.y, b.y, c.y)))
		maxY := int(math32.Ceil(max(a.y, b.y, c.y)))
		if maxY < 0 || minY >= r.height {
			continue
		}
		r.tris = append(r.tris, triangle{
			v:     [3]screenVertex{a, b, c},
			area:  area,
			flip:  back,
			minY:  max(minY, 0),
			maxY:  min(maxY, r.height-1),
			shade: shade,
		})
	}
}

// Flush clears dst to bg, draws every queued triangle and empties the
// queue. dst must match the rasterizer size.
func (r *Rasterizer) Flush(ctx context.Context, dst *image.RGBA, bg color.RGBA) error {
	defer func() { r.tris = r.tris[:0] }()
	if r.width == 0 || r.height == 0 {
		return nil
	}

	bands := r.workers * 4
	rowsPer := max(1, (r.height+bands-1)/bands)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for y0 := 0; y0 < r.height; y0 += rowsPer {
		y1 := min(y0+rowsPer, r.height)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.drawBand(dst, bg, y0, y1)
			return nil
		})
	}
	return g.Wait()
}

func (r *Rasterizer) drawBand(dst *image.RGBA, bg color.RGBA, y0, y1 int) {
	for y := y0; y < y1; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+r.width*4]
		for x := 0; x < r.width; x++ {
			row[4*x], row[4*x+1], row[4*x+2], row[4*x+3] = bg.R, bg.G, bg.B, bg.A
		}
		depth := r.depth[y*r.width : (y+1)*r.width]
		for i := range depth {
			depth[i] = math.MaxFloat32
		}
	}

	var frag Fragment
	for i := range r.tris {
		t := &r.tris[i]
		if t.maxY < y0 || t.minY >= y1 {
			continue
		}
		a, b, c := &t.v[0], &t.v[1], &t.v[2]
		minX := max(0, int(math32.Floor(min(a.x, b.x, c.x))))
		maxX := min(r.width-1, int(math32.Ceil(max(a.x, b.x, c.x))))
		for y := max(y0, t.minY); y <= min(y1-1, t.maxY); y++ {
			py := float32(y) + 0.5
			for x := minX; x <= maxX; x++ {
				px := float32(x) + 0.5
				w0 := ((b.x-px)*(c.y-py) - (b.y-py)*(c.x-px)) / t.area
				w1 := ((c.x-px)*(a.y-py) - (c.y-py)*(a.x-px)) / t.area
				w2 := 1 - w0 - w1
				if w0 < 0 || w1 < 0 || w2 < 0 {
					continue
				}
				z := w0*a.z + w1*b.z + w2*c.z
				di := y*r.width + x
				if z >= r.depth[di] || z < -1 || z > 1 {
					continue
				}
				r.depth[di] = z

				// Perspective-correct attribute weights.
				p0, p1, p2 := w0*a.invW, w1*b.invW, w2*c.invW
				s := 1 / (p0 + p1 + p2)
				p0, p1, p2 = p0*s, p1*s, p2*s

				frag.World = lerp3(a.world, b.world, c.world, p0, p1, p2)
				frag.Local = lerp3(a.local, b.local, c.local, p0, p1, p2)
				frag.Normal = mesh.SafeNormalize(lerp3(a.normal, b.normal, c.normal, p0, p1, p2), frag.Local)
				if t.flip {
					frag.Normal = frag.Normal.Mul(-1)
				}
				frag.UV = a.uv.Mul(p0).Add(b.uv.Mul(p1)).Add(c.uv.Mul(p2))

				col := t.shade(&frag)
				o := y*dst.Stride + x*4
				dst.Pix[o] = toByte(col[0])
				dst.Pix[o+1] = toByte(col[1])
				dst.Pix[o+2] = toByte(col[2])
				dst.Pix[o+3] = 0xff
			}
		}
	}
}

func lerp3(a, b, c mgl32.Vec3, wa, wb, wc float32) mgl32.Vec3 {
	return mgl32.Vec3{
		a[0]*wa + b[0]*wb + c[0]*wc,
		a[1]*wa + b[1]*wb + c[1]*wc,
		a[2]*wa + b[2]*wb + c[2]*wc,
	}
}

func toByte(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}
