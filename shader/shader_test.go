package shader

import (
	"testing"

	gst "github.com/richinsley/goshadertranslator"
	"github.com/stretchr/testify/assert"
)

func TestGenerateVertexShader(t *testing.T) {
	src := GenerateVertexShader("")
	assert.Contains(t, src, "out vec2 frag_uv;")
	assert.Contains(t, src, "frag_uv = in_vert * 0.5 + 0.5;")

	src = GenerateVertexShader("_ufrag_uv")
	assert.Contains(t, src, "out vec2 _ufrag_uv;")
	assert.Contains(t, src, "_ufrag_uv = in_vert")
	assert.NotContains(t, src, " frag_uv")
}

func TestBlitShaderReadsTexture(t *testing.T) {
	assert.Contains(t, GetBlitFragmentShader(), "uniform sampler2D u_texture;")
}

func TestMappedNames(t *testing.T) {
	vars := map[string]gst.ShaderVariable{
		"tileFactor": {MappedName: "_utileFactor"},
		"u_scene":    {MappedName: ""},
	}
	got := mappedNames(vars, []string{"tileFactor", "u_scene", "stripeWidth"})
	assert.Equal(t, map[string]string{
		"tileFactor":  "_utileFactor",
		"u_scene":     "u_scene",
		"stripeWidth": "stripeWidth",
	}, got)
}
