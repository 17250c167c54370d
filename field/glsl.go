package field

import (
	"fmt"
	"strconv"
	"strings"
)

// SceneSampler is the sampler uniform the emitted shader reads from.
const SceneSampler = "u_scene"

// glslHelpers mirror smoothstep and the Rotate operation. The builtin
// smoothstep is undefined for reversed edges, which both variants use.
const glslHelpers = `float wf_smoothstep(float e0, float e1, float x) {
    if (e0 == e1) return x < e0 ? 0.0 : 1.0;
    float t = clamp((x - e0) / (e1 - e0), 0.0, 1.0);
    return t * t * (3.0 - 2.0 * t);
}

vec2 wf_rotate(vec2 v, float a) {
    float c = cos(a);
    float s = sin(a);
    return vec2(v.x * c - v.y * s, v.x * s + v.y * c);
}
`

// Shader emits a WebGL2 fragment shader that writes the distorted scene
// colour. It reads the vertex stage's frag_uv and the SceneSampler texture.
func (f *Field) Shader() (string, error) {
	if err := f.Output.Validate(); err != nil {
		return "", fmt.Errorf("%s field: %w", f.Kind, err)
	}
	body, err := Expr(f.Output)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("#version 300 es\n")
	b.WriteString("precision highp float;\n\n")
	b.WriteString("in vec2 frag_uv;\n")
	b.WriteString("out vec4 fragColor;\n\n")
	fmt.Fprintf(&b, "uniform sampler2D %s;\n", SceneSampler)
	for _, name := range f.Uniforms() {
		fmt.Fprintf(&b, "uniform float %s;\n", name)
	}
	b.WriteString("\n")
	b.WriteString(glslHelpers)
	b.WriteString("\nvoid main() {\n")
	fmt.Fprintf(&b, "    fragColor = %s;\n", body)
	b.WriteString("}\n")
	return b.String(), nil
}

// Expr renders n as a single GLSL expression.
func Expr(n *Node) (string, error) {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		s, err := Expr(a)
		if err != nil {
			return "", err
		}
		args[i] = s
	}

	switch n.Op {
	case OpConst:
		return floatLiteral(n.Value), nil
	case OpUniform:
		return n.Name, nil
	case OpUV:
		return "frag_uv", nil
	case OpAdd:
		return "(" + args[0] + " + " + args[1] + ")", nil
	case OpSub:
		return "(" + args[0] + " - " + args[1] + ")", nil
	case OpMul:
		return "(" + args[0] + " * " + args[1] + ")", nil
	case OpMin, OpMax:
		// GLSL only accepts the scalar operand second.
		if n.Args[0].Dim() < n.Args[1].Dim() {
			args[0], args[1] = args[1], args[0]
		}
		return n.Op.String() + "(" + args[0] + ", " + args[1] + ")", nil
	case OpFract, OpLength, OpRadians:
		return n.Op.String() + "(" + args[0] + ")", nil
	case OpSmoothstep:
		return "wf_smoothstep(" + strings.Join(args, ", ") + ")", nil
	case OpClamp:
		return "clamp(" + strings.Join(args, ", ") + ")", nil
	case OpRotate:
		return "wf_rotate(" + args[0] + ", " + args[1] + ")", nil
	case OpVec2:
		return "vec2(" + args[0] + ", " + args[1] + ")", nil
	case OpX:
		return args[0] + ".x", nil
	case OpY:
		return args[0] + ".y", nil
	case OpSample:
		return "texture(" + SceneSampler + ", " + args[0] + ")", nil
	}
	return "", fmt.Errorf("no GLSL form for %s", n.Op)
}

func floatLiteral(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}
