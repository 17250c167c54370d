package shader

import "fmt"

// ────────────────────────────────── Desktop GL ──────────────────────────────────

// The varying name is substituted so it matches whatever name the
// translator gave the fragment stage input.
const vertexShaderSourceGL = `#version 410 core
layout (location = 0) in vec2 in_vert;
out vec2 %s;
void main() {
    %s = in_vert * 0.5 + 0.5;
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

// Frames are uploaded bottom row first, so no flip is needed here.
const blitFragmentShaderSourceGL = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, frag_uv); }
`

// ────────────────────────────────── Public API ─────────────────────────────────

// Varying is the name of the full-screen quad's UV output.
const Varying = "frag_uv"

// GenerateVertexShader returns the full-screen quad vertex stage writing
// its UV to varying. An empty name uses Varying.
func GenerateVertexShader(varying string) string {
	if varying == "" {
		varying = Varying
	}
	return fmt.Sprintf(vertexShaderSourceGL, varying, varying)
}

// GetBlitFragmentShader copies u_texture to the target unchanged.
func GetBlitFragmentShader() string {
	return blitFragmentShaderSourceGL
}
