package shader

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"

	"github.com/richinsley/gowarp/field"
)

var (
	translatorOnce sync.Once
	translator     *gst.ShaderTranslator
	translatorErr  error
)

// GetTranslator returns the process-wide translator, creating it on first
// use.
func GetTranslator() (*gst.ShaderTranslator, error) {
	translatorOnce.Do(func() {
		translator, translatorErr = gst.NewShaderTranslator(context.Background())
	})
	return translator, translatorErr
}

// Distortion is a field's fragment stage translated for desktop GL.
type Distortion struct {
	Kind     field.Kind
	Vertex   string
	Fragment string
	// Names maps each uniform, the scene sampler included, to the name it
	// has in the translated source.
	Names map[string]string
}

// TranslateField turns the field's WebGL2 shader into GLSL 4.10 together
// with a matching vertex stage.
func TranslateField(f *field.Field) (*Distortion, error) {
	src, err := f.Shader()
	if err != nil {
		return nil, err
	}
	t, err := GetTranslator()
	if err != nil {
		return nil, fmt.Errorf("shader translator: %w", err)
	}
	fs, err := t.TranslateShader(src, "fragment", gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return nil, fmt.Errorf("%s field translation failed: %w", f.Kind, err)
	}

	names := mappedNames(fs.Variables, append(f.Uniforms(), field.SceneSampler, Varying))
	return &Distortion{
		Kind:     f.Kind,
		Vertex:   GenerateVertexShader(names[Varying]),
		Fragment: fs.Code,
		Names:    names,
	}, nil
}

// mappedNames resolves source names through the translator's variable
// table. Names the table does not list keep their source spelling.
func mappedNames(vars map[string]gst.ShaderVariable, names []string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[n] = n
		if v, ok := vars[n]; ok && v.MappedName != "" {
			out[n] = v.MappedName
		}
	}
	return out
}
