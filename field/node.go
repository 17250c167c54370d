// Package field describes distortion fields as small expression trees.
// A tree is evaluated per pixel on the CPU by Eval and emitted as GLSL by
// Shader; both paths share one definition of every operation.
package field

import "fmt"

// Op identifies a node's operation.
type Op uint8

const (
	OpConst      Op = iota // Value
	OpUniform              // Name, read from the environment
	OpUV                   // the pixel coordinate, vec2 in [0,1]²
	OpAdd                  // a + b
	OpSub                  // a - b
	OpMul                  // a * b
	OpMin                  // min(a, b)
	OpMax                  // max(a, b)
	OpFract                // a - floor(a)
	OpLength               // |a|
	OpRadians              // degrees to radians
	OpSmoothstep           // smoothstep(e0, e1, x)
	OpClamp                // clamp(x, lo, hi)
	OpRotate               // rotate vec2 a by angle b (radians) about the origin
	OpVec2                 // vec2(a, b)
	OpX                    // a.x
	OpY                    // a.y
	OpSample               // scene colour at vec2 a
)

var opNames = [...]string{
	OpConst:      "const",
	OpUniform:    "uniform",
	OpUV:         "uv",
	OpAdd:        "add",
	OpSub:        "sub",
	OpMul:        "mul",
	OpMin:        "min",
	OpMax:        "max",
	OpFract:      "fract",
	OpLength:     "length",
	OpRadians:    "radians",
	OpSmoothstep: "smoothstep",
	OpClamp:      "clamp",
	OpRotate:     "rotate",
	OpVec2:       "vec2",
	OpX:          "x",
	OpY:          "y",
	OpSample:     "sample",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// arity is the number of arguments each operation takes.
func (op Op) arity() int {
	switch op {
	case OpConst, OpUniform, OpUV:
		return 0
	case OpFract, OpLength, OpRadians, OpX, OpY, OpSample:
		return 1
	case OpSmoothstep, OpClamp:
		return 3
	default:
		return 2
	}
}

// Node is one operation in an expression tree. Nodes are immutable once
// built and may be shared between trees.
type Node struct {
	Op    Op
	Args  []*Node
	Value float64
	Name  string
}

func Const(v float64) *Node     { return &Node{Op: OpConst, Value: v} }
func Uniform(name string) *Node { return &Node{Op: OpUniform, Name: name} }
func UV() *Node                 { return &Node{Op: OpUV} }

func Add(a, b *Node) *Node { return &Node{Op: OpAdd, Args: []*Node{a, b}} }
func Sub(a, b *Node) *Node { return &Node{Op: OpSub, Args: []*Node{a, b}} }
func Mul(a, b *Node) *Node { return &Node{Op: OpMul, Args: []*Node{a, b}} }
func Min(a, b *Node) *Node { return &Node{Op: OpMin, Args: []*Node{a, b}} }
func Max(a, b *Node) *Node { return &Node{Op: OpMax, Args: []*Node{a, b}} }

func Fract(a *Node) *Node   { return &Node{Op: OpFract, Args: []*Node{a}} }
func Length(a *Node) *Node  { return &Node{Op: OpLength, Args: []*Node{a}} }
func Radians(a *Node) *Node { return &Node{Op: OpRadians, Args: []*Node{a}} }
func X(a *Node) *Node       { return &Node{Op: OpX, Args: []*Node{a}} }
func Y(a *Node) *Node       { return &Node{Op: OpY, Args: []*Node{a}} }
func Sample(uv *Node) *Node { return &Node{Op: OpSample, Args: []*Node{uv}} }

func Smoothstep(e0, e1, x *Node) *Node {
	return &Node{Op: OpSmoothstep, Args: []*Node{e0, e1, x}}
}

func Clamp(x, lo, hi *Node) *Node {
	return &Node{Op: OpClamp, Args: []*Node{x, lo, hi}}
}

func Rotate(v, angle *Node) *Node { return &Node{Op: OpRotate, Args: []*Node{v, angle}} }
func Vec2(a, b *Node) *Node       { return &Node{Op: OpVec2, Args: []*Node{a, b}} }

// Dim returns the number of components the node produces.
func (n *Node) Dim() int {
	switch n.Op {
	case OpConst, OpUniform, OpLength, OpX, OpY:
		return 1
	case OpUV, OpVec2, OpRotate:
		return 2
	case OpSample:
		return 4
	case OpClamp, OpFract, OpRadians:
		return n.Args[0].Dim()
	}
	d := 1
	for _, a := range n.Args {
		d = max(d, a.Dim())
	}
	return d
}

// Validate checks argument counts and component widths across the tree.
func (n *Node) Validate() error {
	if n == nil {
		return fmt.Errorf("nil node")
	}
	if len(n.Args) != n.Op.arity() {
		return fmt.Errorf("%s: want %d args, got %d", n.Op, n.Op.arity(), len(n.Args))
	}
	for i, a := range n.Args {
		if a == nil {
			return fmt.Errorf("%s: nil arg[%d]", n.Op, i)
		}
		if err := a.Validate(); err != nil {
			return err
		}
	}
	switch n.Op {
	case OpUniform:
		if n.Name == "" {
			return fmt.Errorf("uniform without a name")
		}
	case OpRotate, OpSample:
		if n.Args[0].Dim() != 2 {
			return fmt.Errorf("%s: want vec2 argument, got %d components", n.Op, n.Args[0].Dim())
		}
		if n.Op == OpRotate && n.Args[1].Dim() != 1 {
			return fmt.Errorf("rotate: angle must be scalar")
		}
	case OpX, OpY:
		if n.Args[0].Dim() < 2 {
			return fmt.Errorf("%s: swizzle of a scalar", n.Op)
		}
	case OpVec2, OpSmoothstep:
		for _, a := range n.Args {
			if a.Dim() != 1 {
				return fmt.Errorf("%s: want scalar arguments", n.Op)
			}
		}
	case OpAdd, OpSub, OpMul, OpMin, OpMax, OpClamp:
		for _, a := range n.Args {
			if d := a.Dim(); d != 1 && d != n.Dim() {
				return fmt.Errorf("%s: mixes %d and %d components", n.Op, d, n.Dim())
			}
		}
	}
	return nil
}

// Uniforms returns the distinct uniform names in the tree, in first-use order.
func (n *Node) Uniforms() []string {
	var names []string
	seen := map[string]bool{}
	n.walk(func(m *Node) {
		if m.Op == OpUniform && !seen[m.Name] {
			seen[m.Name] = true
			names = append(names, m.Name)
		}
	})
	return names
}

// walk visits n and its descendants depth first, arguments before parents.
func (n *Node) walk(fn func(*Node)) {
	for _, a := range n.Args {
		a.walk(fn)
	}
	fn(n)
}
