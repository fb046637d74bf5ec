// Package wgpubackend implements gpu.Device on WebGPU. WebGPU has no vertex
// array objects or loose uniforms, so both are recorded on the CPU and
// turned into pipelines, bind groups and dynamic uniform offsets when a
// frame is submitted.
package wgpubackend

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/gltfview/gpu"
	"github.com/gekko3d/gltfview/scene"
	"github.com/gekko3d/gltfview/shaders"
)

type deviceBuffer struct {
	buf *wgpu.Buffer
	// data is kept to widen 8-bit indices, which WebGPU cannot draw.
	data []byte
}

type Device struct {
	logger gpu.Logger

	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surface       *wgpu.Surface
	surfaceConfig *wgpu.SurfaceConfiguration

	shader         *wgpu.ShaderModule
	uniformLayout  *wgpu.BindGroupLayout
	textureLayout  *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	pipelines      map[pipelineKey]*wgpu.RenderPipeline

	buffers      []deviceBuffer
	vertexArrays []gpu.VertexArrayDesc
	textures     []*wgpu.BindGroup
	fallback     *wgpu.BindGroup
	zero         *wgpu.Buffer
	widened      map[widenKey]*wgpu.Buffer
	warned       map[string]bool

	uniformBuf   *wgpu.Buffer
	uniformGroup *wgpu.BindGroup
	uniformCap   int

	depthView   *wgpu.TextureView
	depthWidth  uint32
	depthHeight uint32
	offscreen   *renderTarget
	frame       frameRecorder
}

var (
	_ gpu.Device    = (*Device)(nil)
	_ gpu.Offscreen = (*Device)(nil)
)

// New creates a device presenting to window.
func New(window *glfw.Window, logger gpu.Logger) (*Device, error) {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	d, err := newDevice(adapter, logger)
	if err != nil {
		return nil, err
	}

	width, height := window.GetFramebufferSize()
	caps := surface.GetCapabilities(adapter)
	d.surface = surface
	d.surfaceConfig = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, d.device, d.surfaceConfig)
	return d, nil
}

// NewHeadless creates a device without a surface. Frames are only produced
// through RenderToImage.
func NewHeadless(logger gpu.Logger) (*Device, error) {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	return newDevice(adapter, logger)
}

func newDevice(adapter *wgpu.Adapter, logger gpu.Logger) (*Device, error) {
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "gltfview device",
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	d := &Device{
		logger:    gpu.OrNop(logger),
		adapter:   adapter,
		device:    device,
		queue:     device.GetQueue(),
		pipelines: make(map[pipelineKey]*wgpu.RenderPipeline),
		widened:   make(map[widenKey]*wgpu.Buffer),
		warned:    make(map[string]bool),
	}
	if err := d.createLayouts(); err != nil {
		return nil, err
	}
	d.zero = d.createBuffer("zero attribute", make([]byte, 16), wgpu.BufferUsageVertex)
	d.growUniforms(64)
	d.fallback = d.createTextureGroup(scene.WhiteImage(), gpu.DefaultSampler())
	return d, nil
}

func (d *Device) createLayouts() error {
	shader, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "forward",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ForwardWGSL},
	})
	if err != nil {
		return fmt.Errorf("forward shader: %w", err)
	}
	d.shader = shader

	d.uniformLayout, err = d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "draw uniforms",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   shaders.UniformBlockSize,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("uniform layout: %w", err)
	}

	d.textureLayout, err = d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "base color",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("texture layout: %w", err)
	}

	d.pipelineLayout, err = d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "forward",
		BindGroupLayouts: []*wgpu.BindGroupLayout{d.uniformLayout, d.textureLayout},
	})
	if err != nil {
		return fmt.Errorf("pipeline layout: %w", err)
	}
	return nil
}

// Resize reconfigures the surface after the framebuffer changed size.
func (d *Device) Resize(width, height int) {
	if d.surface == nil || width <= 0 || height <= 0 {
		return
	}
	d.surfaceConfig.Width = uint32(width)
	d.surfaceConfig.Height = uint32(height)
	d.surface.Configure(d.adapter, d.device, d.surfaceConfig)
}

func (d *Device) createBuffer(label string, data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	if len(data) == 0 {
		// zero sized init buffers are rejected
		data = make([]byte, 4)
	}
	buf, err := d.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: data,
		Usage:    usage,
	})
	if err != nil {
		panic(err)
	}
	return buf
}

func (d *Device) CreateBuffer(data []byte) gpu.Buffer {
	// glTF buffers are padded to 4 bytes, writes and vertex offsets need it too
	padded := data
	if rem := len(data) % 4; rem != 0 {
		padded = append(append([]byte(nil), data...), make([]byte, 4-rem)...)
	}
	buf := d.createBuffer(fmt.Sprintf("gltf buffer %d", len(d.buffers)), padded,
		wgpu.BufferUsageVertex|wgpu.BufferUsageIndex|wgpu.BufferUsageCopyDst)
	d.buffers = append(d.buffers, deviceBuffer{buf: buf, data: data})
	return gpu.Buffer(len(d.buffers))
}

func (d *Device) CreateVertexArray(desc gpu.VertexArrayDesc) gpu.VertexArray {
	d.vertexArrays = append(d.vertexArrays, desc)
	return gpu.VertexArray(len(d.vertexArrays))
}

func (d *Device) CreateTexture(img *scene.Image, sampler gpu.SamplerDesc) gpu.Texture {
	d.textures = append(d.textures, d.createTextureGroup(img, sampler))
	return gpu.Texture(len(d.textures))
}

func (d *Device) buffer(h gpu.Buffer) (deviceBuffer, bool) {
	if h == 0 || int(h) > len(d.buffers) {
		return deviceBuffer{}, false
	}
	return d.buffers[h-1], true
}

func (d *Device) textureGroup(h gpu.Texture) *wgpu.BindGroup {
	if h == 0 || int(h) > len(d.textures) {
		return d.fallback
	}
	return d.textures[h-1]
}

func (d *Device) warnOnce(key, format string, args ...any) {
	if d.warned[key] {
		return
	}
	d.warned[key] = true
	d.logger.Warnf(format, args...)
}
