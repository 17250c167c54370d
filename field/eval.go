package field

import "math"

// Value is the result of evaluating a node: a scalar or a vector of up to
// four components.
type Value struct {
	N int
	V [4]float64
}

func Scalar(x float64) Value    { return Value{N: 1, V: [4]float64{x}} }
func Vector(x, y float64) Value { return Value{N: 2, V: [4]float64{x, y}} }

// At returns component i, broadcasting scalars.
func (v Value) At(i int) float64 {
	if v.N == 1 {
		return v.V[0]
	}
	return v.V[i]
}

// Sampler looks up scene colour at a UV coordinate with a bottom-left origin.
type Sampler interface {
	Sample(u, v float64) [4]float64
}

// Env carries the per-pixel inputs of an evaluation.
type Env struct {
	UV       [2]float64
	Uniforms map[string]float64
	Sampler  Sampler
}

// Eval evaluates n at the coordinate in env. Missing uniforms read as 0 and
// a missing sampler reads as transparent black.
func Eval(n *Node, env *Env) Value {
	switch n.Op {
	case OpConst:
		return Scalar(n.Value)
	case OpUniform:
		return Scalar(env.Uniforms[n.Name])
	case OpUV:
		return Vector(env.UV[0], env.UV[1])
	case OpAdd:
		return zip(Eval(n.Args[0], env), Eval(n.Args[1], env), func(a, b float64) float64 { return a + b })
	case OpSub:
		return zip(Eval(n.Args[0], env), Eval(n.Args[1], env), func(a, b float64) float64 { return a - b })
	case OpMul:
		return zip(Eval(n.Args[0], env), Eval(n.Args[1], env), func(a, b float64) float64 { return a * b })
	case OpMin:
		return zip(Eval(n.Args[0], env), Eval(n.Args[1], env), math.Min)
	case OpMax:
		return zip(Eval(n.Args[0], env), Eval(n.Args[1], env), math.Max)
	case OpFract:
		return each(Eval(n.Args[0], env), fract)
	case OpRadians:
		return each(Eval(n.Args[0], env), func(d float64) float64 { return d * math.Pi / 180 })
	case OpLength:
		a := Eval(n.Args[0], env)
		var s float64
		for i := 0; i < a.N; i++ {
			s += a.V[i] * a.V[i]
		}
		return Scalar(math.Sqrt(s))
	case OpSmoothstep:
		e0 := Eval(n.Args[0], env).V[0]
		e1 := Eval(n.Args[1], env).V[0]
		x := Eval(n.Args[2], env).V[0]
		return Scalar(smoothstep(e0, e1, x))
	case OpClamp:
		x := Eval(n.Args[0], env)
		lo := Eval(n.Args[1], env)
		hi := Eval(n.Args[2], env)
		for i := 0; i < x.N; i++ {
			x.V[i] = math.Max(lo.At(i), math.Min(hi.At(i), x.V[i]))
		}
		return x
	case OpRotate:
		v := Eval(n.Args[0], env)
		s, c := math.Sincos(Eval(n.Args[1], env).V[0])
		return Vector(v.V[0]*c-v.V[1]*s, v.V[0]*s+v.V[1]*c)
	case OpVec2:
		return Vector(Eval(n.Args[0], env).V[0], Eval(n.Args[1], env).V[0])
	case OpX:
		return Scalar(Eval(n.Args[0], env).V[0])
	case OpY:
		return Scalar(Eval(n.Args[0], env).V[1])
	case OpSample:
		if env.Sampler == nil {
			return Value{N: 4}
		}
		uv := Eval(n.Args[0], env)
		return Value{N: 4, V: env.Sampler.Sample(uv.V[0], uv.V[1])}
	}
	return Value{N: 1}
}

func zip(a, b Value, f func(a, b float64) float64) Value {
	out := Value{N: max(a.N, b.N)}
	for i := 0; i < out.N; i++ {
		out.V[i] = f(a.At(i), b.At(i))
	}
	return out
}

func each(a Value, f func(float64) float64) Value {
	for i := 0; i < a.N; i++ {
		a.V[i] = f(a.V[i])
	}
	return a
}

// smoothstep is the Hermite step between e0 and e1. The edges may be given
// in either order; equal edges degrade to a hard step at e0.
func smoothstep(e0, e1, x float64) float64 {
	if e0 == e1 {
		if x < e0 {
			return 0
		}
		return 1
	}
	t := (x - e0) / (e1 - e0)
	t = math.Max(0, math.Min(1, t))
	return t * t * (3 - 2*t)
}

// fract returns x - floor(x) in [0,1).
func fract(x float64) float64 {
	f := x - math.Floor(x)
	if f >= 1 {
		return 0
	}
	return f
}
