package glfwcontext

import (
	"log"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/gowarp/graphics"
	"github.com/richinsley/gowarp/options"
)

// Context owns a GLFW window and routes its input to the sketch.
type Context struct {
	window       *glfw.Window
	keyCallbacks map[glfw.Key]func()
	onResize     func(width, height int)
	pointer      graphics.PointerSink
}

// New creates a window sized from the options. Must be called from the
// main thread after InitGraphics.
func New(options *options.SketchOptions, visible bool) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	win, err := glfw.CreateWindow(*options.Width, *options.Height, "gowarp", nil, nil)
	if err != nil {
		return nil, err
	}

	c := &Context{
		window:       win,
		keyCallbacks: make(map[glfw.Key]func()),
	}
	win.SetKeyCallback(c.glfwKeyCallback)
	win.SetFramebufferSizeCallback(c.glfwFramebufferSizeCallback)
	win.SetCursorPosCallback(c.glfwCursorPosCallback)
	win.SetCursorEnterCallback(c.glfwCursorEnterCallback)
	return c, nil
}

// RegisterKeyCallback runs f when key is pressed.
func (c *Context) RegisterKeyCallback(key glfw.Key, f func()) {
	c.keyCallbacks[key] = f
}

// OnFramebufferResize runs f with the new framebuffer size.
func (c *Context) OnFramebufferResize(f func(width, height int)) {
	c.onResize = f
}

// AttachPointer forwards cursor events to sink.
func (c *Context) AttachPointer(sink graphics.PointerSink) {
	c.pointer = sink
}

// Detach drops every registered callback.
func (c *Context) Detach() {
	c.pointer = nil
	c.onResize = nil
	c.keyCallbacks = make(map[glfw.Key]func())
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
	if action == glfw.Press {
		if callback, ok := c.keyCallbacks[key]; ok {
			callback()
		}
	}
}

func (c *Context) glfwFramebufferSizeCallback(w *glfw.Window, width, height int) {
	if c.onResize != nil {
		c.onResize(width, height)
	}
}

// Cursor positions arrive in window coordinates; scale them to the
// framebuffer so they match the render size on high-DPI displays.
func (c *Context) glfwCursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	if c.pointer == nil {
		return
	}
	fbWidth, fbHeight := c.GetFramebufferSize()
	winWidth, winHeight := w.GetSize()
	scaleX, scaleY := 1.0, 1.0
	if winWidth > 0 && winHeight > 0 {
		scaleX = float64(fbWidth) / float64(winWidth)
		scaleY = float64(fbHeight) / float64(winHeight)
	}
	c.pointer.OnPointerMove(xpos*scaleX, ypos*scaleY)
}

func (c *Context) glfwCursorEnterCallback(w *glfw.Window, entered bool) {
	if c.pointer == nil {
		return
	}
	if entered {
		c.pointer.OnPointerEnter()
	} else {
		c.pointer.OnPointerLeave()
	}
}

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

func (c *Context) Shutdown() {
	c.Detach()
	c.window.Destroy()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

// InitGraphics initializes GLFW. Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Printf("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts GLFW down. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Printf("GLFW Terminated")
}

var _ graphics.Context = (*Context)(nil)
