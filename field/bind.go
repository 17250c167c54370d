package field

// Bind substitutes the given uniform values into n and folds every subtree
// that no longer depends on the pixel coordinate into a constant. The
// result evaluates identically to n under the same uniforms, without map
// lookups per pixel.
func Bind(n *Node, uniforms map[string]float64) *Node {
	switch n.Op {
	case OpUniform:
		return Const(uniforms[n.Name])
	case OpConst, OpUV:
		return n
	}

	args := make([]*Node, len(n.Args))
	constant := n.Op != OpSample
	for i, a := range n.Args {
		args[i] = Bind(a, uniforms)
		if args[i].Op != OpConst {
			constant = false
		}
	}
	out := &Node{Op: n.Op, Args: args, Value: n.Value, Name: n.Name}
	if constant && out.Dim() == 1 {
		return Const(Eval(out, &Env{}).V[0])
	}
	return out
}
