package wgpubackend

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/gltfview/gpu"
)

const (
	uniformSlotSize = 256 // minUniformBufferOffsetAlignment
	depthFormat     = wgpu.TextureFormatDepth24Plus
)

// drawUniforms mirrors the Uniforms struct in forward.wgsl, padded to one
// dynamic offset slot.
type drawUniforms struct {
	MVP             mgl32.Mat4
	ModelView       mgl32.Mat4
	Normal          mgl32.Mat4
	LightDirection  mgl32.Vec4
	LightIntensity  mgl32.Vec4
	BaseColorFactor mgl32.Vec4
	_               mgl32.Vec4
}

type drawCmd struct {
	vao       gpu.VertexArray
	texture   gpu.Texture
	mode      gpu.DrawMode
	indexed   bool
	indexType gpu.ComponentType
	offset    int
	first     int
	count     int
	uniform   int
}

// frameRecorder holds the GL style state set between BeginFrame and EndFrame
// and the draws issued against it.
type frameRecorder struct {
	active   bool
	viewport gpu.Viewport
	clear    [4]float32
	current  drawUniforms
	texture  gpu.Texture
	vao      gpu.VertexArray
	slots    []drawUniforms
	draws    []drawCmd
}

func (f *frameRecorder) begin(vp gpu.Viewport, clear [4]float32) {
	f.active = true
	f.viewport = vp
	f.clear = clear
	f.slots = f.slots[:0]
	f.draws = f.draws[:0]
}

func (f *frameRecorder) setMat4(u gpu.Uniform, m mgl32.Mat4) {
	switch u {
	case gpu.UniformModelViewProj:
		f.current.MVP = m
	case gpu.UniformModelView:
		f.current.ModelView = m
	case gpu.UniformNormalMatrix:
		f.current.Normal = m
	}
}

func (f *frameRecorder) setVec4(u gpu.Uniform, v mgl32.Vec4) {
	switch u {
	case gpu.UniformLightDirection:
		f.current.LightDirection = v
	case gpu.UniformLightIntensity:
		f.current.LightIntensity = v
	case gpu.UniformBaseColorFactor:
		f.current.BaseColorFactor = v
	}
}

// record snapshots the current uniforms into a new slot.
func (f *frameRecorder) record(cmd drawCmd) {
	cmd.vao = f.vao
	cmd.texture = f.texture
	cmd.uniform = len(f.slots)
	f.slots = append(f.slots, f.current)
	f.draws = append(f.draws, cmd)
}

func (d *Device) BeginFrame(vp gpu.Viewport, clear [4]float32) {
	d.frame.begin(vp, clear)
}

func (d *Device) SetMat4(u gpu.Uniform, m mgl32.Mat4) { d.frame.setMat4(u, m) }
func (d *Device) SetVec3(u gpu.Uniform, v mgl32.Vec3) { d.frame.setVec4(u, v.Vec4(0)) }
func (d *Device) SetVec4(u gpu.Uniform, v mgl32.Vec4) { d.frame.setVec4(u, v) }

func (d *Device) BindTexture(unit uint32, tex gpu.Texture) {
	if unit != gpu.BaseColorTextureUnit {
		d.warnOnce("texture unit", "texture unit %d is not bound by the forward shader", unit)
		return
	}
	d.frame.texture = tex
}

func (d *Device) BindVertexArray(vao gpu.VertexArray) {
	d.frame.vao = vao
}

func (d *Device) DrawElements(mode gpu.DrawMode, count int, typ gpu.ComponentType, offset int) {
	d.frame.record(drawCmd{mode: mode, indexed: true, indexType: typ, offset: offset, count: count})
}

func (d *Device) DrawArrays(mode gpu.DrawMode, first, count int) {
	d.frame.record(drawCmd{mode: mode, first: first, count: count})
}

// EndFrame encodes the recorded draws into one render pass and submits it,
// presenting unless an offscreen target is active.
func (d *Device) EndFrame() {
	if !d.frame.active {
		return
	}
	d.frame.active = false

	if d.offscreen != nil {
		if err := d.submit(d.offscreen.view, d.offscreen.format, d.offscreen.width, d.offscreen.height); err != nil {
			panic(err)
		}
		return
	}
	if d.surface == nil {
		d.warnOnce("no surface", "headless device has no surface, frame dropped")
		return
	}

	next, err := d.surface.GetCurrentTexture()
	if err != nil {
		panic(err)
	}
	view, err := next.CreateView(nil)
	if err != nil {
		panic(err)
	}
	defer view.Release()

	if err := d.submit(view, d.surfaceConfig.Format, d.surfaceConfig.Width, d.surfaceConfig.Height); err != nil {
		panic(err)
	}
	d.surface.Present()
}

func (d *Device) submit(target *wgpu.TextureView, format wgpu.TextureFormat, width, height uint32) error {
	d.ensureDepth(width, height)
	if len(d.frame.slots) > d.uniformCap {
		d.growUniforms(len(d.frame.slots))
	}
	if len(d.frame.slots) > 0 {
		if err := d.queue.WriteBuffer(d.uniformBuf, 0, wgpu.ToBytes(d.frame.slots)); err != nil {
			return fmt.Errorf("write uniforms: %w", err)
		}
	}

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	c := d.frame.clear
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       target,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            d.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	defer pass.Release()

	x, y, w, h := viewportRect(d.frame.viewport, width, height)
	pass.SetViewport(x, y, w, h, 0, 1)
	for _, cmd := range d.frame.draws {
		d.encodeDraw(pass, cmd, format)
	}
	if err := pass.End(); err != nil {
		return err
	}

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer cmdBuffer.Release()
	d.queue.Submit(cmdBuffer)
	return nil
}

// viewportRect converts a bottom-left origin viewport to WebGPU's top-left
// origin, clamped to the target. An empty viewport covers the target.
func viewportRect(vp gpu.Viewport, width, height uint32) (x, y, w, h float32) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return 0, 0, float32(width), float32(height)
	}
	x = float32(vp.X)
	y = float32(int(height) - vp.Y - vp.Height)
	w = float32(vp.Width)
	h = float32(vp.Height)
	if x < 0 {
		w += x
		x = 0
	}
	if y < 0 {
		h += y
		y = 0
	}
	w = min(w, float32(width)-x)
	h = min(h, float32(height)-y)
	return x, y, max(w, 0), max(h, 0)
}

func (d *Device) encodeDraw(pass *wgpu.RenderPassEncoder, cmd drawCmd, color wgpu.TextureFormat) {
	if cmd.count <= 0 {
		return
	}
	if cmd.vao == 0 || int(cmd.vao) > len(d.vertexArrays) {
		d.warnOnce("no vao", "draw without a vertex array skipped")
		return
	}
	topo, ok := topology(cmd.mode)
	if !ok {
		d.warnOnce("mode "+cmd.mode.String(), "%s primitives are not supported by WebGPU, skipped", cmd.mode)
		return
	}
	desc := d.vertexArrays[cmd.vao-1]
	key := pipelineKey{topology: topo, color: color}
	bindings := d.vertexState(desc, &key)

	var (
		indexBuf    *wgpu.Buffer
		indexFormat wgpu.IndexFormat
		indexOffset uint64
	)
	if cmd.indexed {
		indexBuf, indexFormat, indexOffset, ok = d.indexBinding(desc.Indices, cmd.indexType, cmd.offset, cmd.count)
		if !ok {
			return
		}
		if isStrip(topo) {
			key.stripIndex = indexFormat
		}
	}

	pass.SetPipeline(d.pipeline(key))
	pass.SetBindGroup(0, d.uniformGroup, []uint32{uint32(cmd.uniform * uniformSlotSize)})
	pass.SetBindGroup(1, d.textureGroup(cmd.texture), nil)
	for slot, b := range bindings {
		pass.SetVertexBuffer(uint32(slot), b.buf, b.offset, wgpu.WholeSize)
	}
	if cmd.indexed {
		pass.SetIndexBuffer(indexBuf, indexFormat, indexOffset, wgpu.WholeSize)
		pass.DrawIndexed(uint32(cmd.count), 1, 0, 0, 0)
		return
	}
	pass.Draw(uint32(cmd.count), 1, uint32(cmd.first), 0)
}

// growUniforms reallocates the uniform ring to hold at least n slots.
func (d *Device) growUniforms(n int) {
	capacity := max(d.uniformCap, 64)
	for capacity < n {
		capacity *= 2
	}
	if d.uniformBuf != nil {
		d.uniformGroup.Release()
		d.uniformBuf.Release()
	}
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "draw uniforms",
		Size:  uint64(capacity * uniformSlotSize),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	group, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "draw uniforms",
		Layout: d.uniformLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buf, Offset: 0, Size: uniformSlotSize},
		},
	})
	if err != nil {
		panic(err)
	}
	d.uniformBuf = buf
	d.uniformGroup = group
	d.uniformCap = capacity
}

func (d *Device) ensureDepth(width, height uint32) {
	if d.depthView != nil && d.depthWidth == width && d.depthHeight == height {
		return
	}
	if d.depthView != nil {
		d.depthView.Release()
	}
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "depth",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	defer tex.Release()
	d.depthView, err = tex.CreateView(nil)
	if err != nil {
		panic(err)
	}
	d.depthWidth, d.depthHeight = width, height
}
