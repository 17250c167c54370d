package renderer

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/gowarp/field"
	"github.com/richinsley/gowarp/graphics"
	"github.com/richinsley/gowarp/shader"
)

// ErrNoDevice is returned when no usable GL context could be set up.
var ErrNoDevice = errors.New("no graphics device")

type distortionProgram struct {
	program  uint32
	sceneLoc int32
	uniforms map[string]int32
}

// Window presents frames to a GL context. It uploads CPU frames for a
// plain blit, or uploads the scene and runs the distortion pass on the GPU.
type Window struct {
	context     graphics.Context
	quadVAO     uint32
	quadVBO     uint32
	texture     uint32
	texWidth    int
	texHeight   int
	blitProgram uint32
	blitTexLoc  int32
	programs    map[field.Kind]*distortionProgram
	staging     *image.RGBA
}

var quadVertices = []float32{
	-1.0, 1.0, -1.0, -1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

// NewWindow initializes GL on ctx, which is made current.
func NewWindow(ctx graphics.Context) (*Window, error) {
	ctx.MakeCurrent()
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	w := &Window{context: ctx, programs: make(map[field.Kind]*distortionProgram)}

	gl.GenVertexArrays(1, &w.quadVAO)
	gl.GenBuffers(1, &w.quadVBO)
	gl.BindVertexArray(w.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, w.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	var err error
	w.blitProgram, err = newProgram(shader.GenerateVertexShader(""), shader.GetBlitFragmentShader())
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to create blit program: %w", err)
	}
	w.blitTexLoc = gl.GetUniformLocation(w.blitProgram, gl.Str("u_texture\x00"))

	gl.GenTextures(1, &w.texture)
	gl.BindTexture(gl.TEXTURE_2D, w.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return w, nil
}

// Present blits an already distorted frame.
func (w *Window) Present(img *image.RGBA) error {
	w.upload(img)
	gl.UseProgram(w.blitProgram)
	if w.blitTexLoc != -1 {
		gl.Uniform1i(w.blitTexLoc, 0)
	}
	w.draw()
	return nil
}

// PresentDistorted runs f over the scene image on the GPU.
func (w *Window) PresentDistorted(scene *image.RGBA, f *field.Field, uniforms map[string]float64) error {
	p, err := w.program(f)
	if err != nil {
		return err
	}
	w.upload(scene)
	gl.UseProgram(p.program)
	if p.sceneLoc != -1 {
		gl.Uniform1i(p.sceneLoc, 0)
	}
	for name, loc := range p.uniforms {
		gl.Uniform1f(loc, float32(uniforms[name]))
	}
	w.draw()
	return nil
}

// program compiles the distortion pass for f on first use.
func (w *Window) program(f *field.Field) (*distortionProgram, error) {
	if p, ok := w.programs[f.Kind]; ok {
		return p, nil
	}
	d, err := shader.TranslateField(f)
	if err != nil {
		return nil, err
	}
	prog, err := newProgram(d.Vertex, d.Fragment)
	if err != nil {
		return nil, fmt.Errorf("%s distortion program: %w", f.Kind, err)
	}
	p := &distortionProgram{
		program:  prog,
		sceneLoc: uniformLocation(prog, d.Names[field.SceneSampler]),
		uniforms: make(map[string]int32),
	}
	for _, name := range f.Uniforms() {
		if loc := uniformLocation(prog, d.Names[name]); loc != -1 {
			p.uniforms[name] = loc
		}
	}
	w.programs[f.Kind] = p
	return p, nil
}

func uniformLocation(prog uint32, name string) int32 {
	return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
}

// upload copies img into the frame texture bottom row first, which puts
// UV (0,0) at the image's bottom-left corner.
func (w *Window) upload(img *image.RGBA) {
	width, height := img.Rect.Dx(), img.Rect.Dy()
	if w.staging == nil || !w.staging.Rect.Eq(img.Rect) {
		w.staging = image.NewRGBA(img.Rect)
	}
	vflip(w.staging, img)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, w.texture)
	if width != w.texWidth || height != w.texHeight {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(w.staging.Pix))
		w.texWidth, w.texHeight = width, height
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(w.staging.Pix))
	}
}

func (w *Window) draw() {
	fbWidth, fbHeight := w.context.GetFramebufferSize()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.BindVertexArray(w.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Close releases every GL object. The context itself is left alone.
func (w *Window) Close() error {
	for _, p := range w.programs {
		gl.DeleteProgram(p.program)
	}
	w.programs = map[field.Kind]*distortionProgram{}
	if w.blitProgram != 0 {
		gl.DeleteProgram(w.blitProgram)
		w.blitProgram = 0
	}
	if w.texture != 0 {
		gl.DeleteTextures(1, &w.texture)
		w.texture = 0
	}
	if w.quadVBO != 0 {
		gl.DeleteBuffers(1, &w.quadVBO)
		w.quadVBO = 0
	}
	if w.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &w.quadVAO)
		w.quadVAO = 0
	}
	return nil
}

// vflip copies src into dst with the rows reversed.
func vflip(dst, src *image.RGBA) {
	height := src.Rect.Dy()
	rowSize := src.Rect.Dx() * 4
	for y := 0; y < height; y++ {
		srcRow := src.Pix[(height-1-y)*src.Stride:]
		dstRow := dst.Pix[y*dst.Stride:]
		copy(dstRow[:rowSize], srcRow[:rowSize])
	}
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", log)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return shader, nil
}
