package gltfview

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Window wraps the GLFW window the viewer draws into. GLFW calls must come
// from the main thread, which the caller locks.
type Window struct {
	glfw    *glfw.Window
	backend RendererName
}

// OpenWindow initializes GLFW and creates the window. For OpenGL it carries
// a 4.1 core context made current on the calling thread. A hidden window is
// used to own the context for offscreen rendering.
func OpenWindow(cfg WindowConfig, backend RendererName, hidden bool) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Resizable, glfw.True)
	if hidden {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}
	switch backend {
	case RendererGL:
		glfw.WindowHint(glfw.ContextVersionMajor, 4)
		glfw.WindowHint(glfw.ContextVersionMinor, 1)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	default:
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	}

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	if backend == RendererGL {
		win.MakeContextCurrent()
		glfw.SwapInterval(1)
	}

	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})
	return &Window{glfw: win, backend: backend}, nil
}

func (w *Window) ShouldClose() bool {
	return w.glfw.ShouldClose()
}

func (w *Window) FramebufferSize() (int, int) {
	return w.glfw.GetFramebufferSize()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// Present shows the finished frame. WebGPU presents from EndFrame.
func (w *Window) Present() {
	if w.backend == RendererGL {
		w.glfw.SwapBuffers()
	}
}

func (w *Window) Close() {
	w.glfw.Destroy()
	glfw.Terminate()
}
