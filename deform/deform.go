// Package deform displaces a closed mesh along its rest directions with
// coherent noise, once per frame.
package deform

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/richinsley/gowarp/mesh"
	"github.com/richinsley/gowarp/noise"
)

const (
	DefaultAmplitude = 0.1
	DefaultRadius    = 1.0

	// minChunk keeps tiny meshes on a single worker.
	minChunk = 512
)

// Config controls a Deformer.
type Config struct {
	Radius  float64 // base distance from the origin
	Workers int     // parallel workers, 0 for GOMAXPROCS
}

// Deformer owns the immutable rest directions of one mesh.
type Deformer struct {
	rest    []mgl32.Vec3
	noise   noise.Noise
	radius  float64
	workers int
}

// New captures the rest direction of every vertex of m. A vertex too close
// to the origin to have a direction is assigned +Y.
func New(m *mesh.Mesh, n noise.Noise, cfg Config) *Deformer {
	if cfg.Radius <= 0 {
		cfg.Radius = DefaultRadius
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	rest := make([]mgl32.Vec3, len(m.Positions))
	for i, p := range m.Positions {
		rest[i] = mesh.SafeNormalize(p, mgl32.Vec3{})
	}
	return &Deformer{rest: rest, noise: n, radius: cfg.Radius, workers: cfg.Workers}
}

// Rest returns the rest direction of vertex i.
func (d *Deformer) Rest(i int) mgl32.Vec3 {
	return d.rest[i]
}

func (d *Deformer) Len() int {
	return len(d.rest)
}

// Displace computes vertex i at time t (seconds). It reads only rest data
// and is safe to call concurrently.
func (d *Deformer) Displace(i int, t, amplitude float64) mgl32.Vec3 {
	dir := d.rest[i]
	x, y, z := float64(dir[0]), float64(dir[1]), float64(dir[2])
	n := d.noise.Eval2(x-z+math.Sin(t), y+z+math.Cos(t))
	return dir.Mul(float32(d.radius + amplitude*n))
}

// Deform writes the displaced positions for time t into m and recomputes
// its normals. Workers own disjoint index ranges. The amplitude is capped
// below the base radius so no vertex can cross the origin.
func (d *Deformer) Deform(ctx context.Context, m *mesh.Mesh, t, amplitude float64) error {
	if len(m.Positions) != len(d.rest) {
		return fmt.Errorf("deform: mesh has %d vertices, rest buffer has %d", len(m.Positions), len(d.rest))
	}
	amplitude = math.Max(0, math.Min(amplitude, 0.95*d.radius))

	chunk := max(minChunk, (len(d.rest)+d.workers-1)/d.workers)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for lo := 0; lo < len(d.rest); lo += chunk {
		hi := min(lo+chunk, len(d.rest))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				m.Positions[i] = d.Displace(i, t, amplitude)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("deform: %w", err)
	}
	m.ComputeNormals()
	return nil
}
