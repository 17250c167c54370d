package graphics

// Context defines the interface for an OpenGL context.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	EndFrame()
	GetFramebufferSize() (int, int)
	Time() float64
}

// PointerSink receives pointer events in framebuffer pixels, origin top-left.
type PointerSink interface {
	OnPointerMove(x, y float64)
	OnPointerEnter()
	OnPointerLeave()
}
