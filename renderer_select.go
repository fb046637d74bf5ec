package gltfview

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gekko3d/gltfview/gpu"
	"github.com/gekko3d/gltfview/gpu/glbackend"
	"github.com/gekko3d/gltfview/gpu/wgpubackend"
)

// RendererName identifies a graphics backend.
type RendererName string

const (
	RendererGL   RendererName = "gl"
	RendererWGPU RendererName = "wgpu"
)

var ErrUnknownBackend = errors.New("unknown backend")

// ParseRendererName accepts the backend names case-insensitively. An empty
// name selects OpenGL.
func ParseRendererName(s string) (RendererName, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "gl", "opengl":
		return RendererGL, nil
	case "wgpu", "webgpu":
		return RendererWGPU, nil
	}
	return "", fmt.Errorf("%w %q (want gl or wgpu)", ErrUnknownBackend, s)
}

// Backend is a device that can also render offscreen. Both built-in backends
// are.
type Backend interface {
	gpu.Device
	gpu.Offscreen
}

type resizer interface {
	Resize(width, height int)
}

// openBackend creates the device for name. win may be nil only for a
// headless WebGPU device. The GL context of win must be current.
func openBackend(name RendererName, win *Window, logger Logger) (Backend, error) {
	switch name {
	case RendererGL:
		if win == nil {
			return nil, errors.New("gl backend needs a window")
		}
		d, err := glbackend.New(logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	case RendererWGPU:
		var (
			d   *wgpubackend.Device
			err error
		)
		if win == nil {
			d, err = wgpubackend.NewHeadless(logger)
		} else {
			d, err = wgpubackend.New(win.glfw, logger)
		}
		if err != nil {
			return nil, fmt.Errorf("wgpu: %w", err)
		}
		return d, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownBackend, name)
}
