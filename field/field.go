package field

import (
	"fmt"
	"strings"
)

// Kind selects one of the distortion field variants.
type Kind int

const (
	Box Kind = iota
	Stripe
)

func (k Kind) String() string {
	switch k {
	case Box:
		return "box"
	case Stripe:
		return "stripe"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind accepts a variant name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "box":
		return Box, nil
	case "stripe", "stripes":
		return Stripe, nil
	}
	return Box, fmt.Errorf("unknown field kind %q", s)
}

// Uniform names read by the field trees.
const (
	UniformDisplacementScale = "displacementScale"
	UniformTileFactor        = "tileFactor"
	UniformStripeWidth       = "stripeWidth"
	UniformStripeAngle       = "stripeAngleDegrees"
)

// Field is a distortion field variant expressed as expression trees.
//
//	Gradient: scalar pattern in [0,1]
//	Offset:   (g, g) * displacementScale
//	Coord:    clamp(uv + Offset, 0, 1)
//	Output:   scene colour sampled at Coord
type Field struct {
	Kind     Kind
	Gradient *Node
	Offset   *Node
	Coord    *Node
	Output   *Node
}

// New builds the field for kind.
func New(kind Kind) *Field {
	if kind == Stripe {
		return newField(Stripe, stripeGradient())
	}
	return newField(Box, boxGradient())
}

func newField(kind Kind, gradient *Node) *Field {
	offset := Mul(Vec2(gradient, gradient), Uniform(UniformDisplacementScale))
	coord := Clamp(Add(UV(), offset), Const(0), Const(1))
	return &Field{
		Kind:     kind,
		Gradient: gradient,
		Offset:   offset,
		Coord:    coord,
		Output:   Sample(coord),
	}
}

// boxGradient tiles uv into cells and brightens both the cell interior,
// radially from its centre, and a thin band along the cell borders.
func boxGradient() *Node {
	cell := Fract(Mul(UV(), Uniform(UniformTileFactor)))
	centered := Sub(cell, Const(0.5))
	radial := Smoothstep(Const(0), Const(0.95), Length(centered))

	cx, cy := X(cell), Y(cell)
	edgeDist := Min(
		Min(cx, Sub(Const(1), cx)),
		Min(cy, Sub(Const(1), cy)),
	)
	border := Smoothstep(Const(0.05), Const(0), edgeDist)
	return Max(radial, border)
}

// stripeGradient ramps across each stripe of the rotated x axis and
// highlights both stripe edges.
func stripeGradient() *Node {
	rotated := Rotate(UV(), Radians(Uniform(UniformStripeAngle)))
	pos := Fract(Mul(X(rotated), Uniform(UniformStripeWidth)))
	interior := Smoothstep(Const(0), Const(1), pos)
	edges := Max(
		Smoothstep(Const(0.05), Const(0), pos),
		Smoothstep(Const(0.95), Const(1), pos),
	)
	return Max(interior, edges)
}

// Uniforms lists the uniform names the field reads.
func (f *Field) Uniforms() []string {
	return f.Output.Uniforms()
}

// Bind resolves the field's uniforms for one frame.
func (f *Field) Bind(uniforms map[string]float64) *Bound {
	return &Bound{
		Kind:     f.Kind,
		gradient: Bind(f.Gradient, uniforms),
		offset:   Bind(f.Offset, uniforms),
		coord:    Bind(f.Coord, uniforms),
		output:   Bind(f.Output, uniforms),
	}
}

// Bound is a field with its uniforms fixed. It is safe for concurrent use.
type Bound struct {
	Kind     Kind
	gradient *Node
	offset   *Node
	coord    *Node
	output   *Node
}

// Gradient returns the pattern value at (u, v).
func (b *Bound) Gradient(u, v float64) float64 {
	return Eval(b.gradient, &Env{UV: [2]float64{u, v}}).V[0]
}

// Offset returns the displacement added to (u, v).
func (b *Bound) Offset(u, v float64) (float64, float64) {
	r := Eval(b.offset, &Env{UV: [2]float64{u, v}})
	return r.V[0], r.V[1]
}

// Coord returns the clamped sampling coordinate for (u, v).
func (b *Bound) Coord(u, v float64) (float64, float64) {
	r := Eval(b.coord, &Env{UV: [2]float64{u, v}})
	return r.V[0], r.V[1]
}

// Color samples s at the displaced coordinate for (u, v).
func (b *Bound) Color(s Sampler, u, v float64) [4]float64 {
	return Eval(b.output, &Env{UV: [2]float64{u, v}, Sampler: s}).V
}
