// Package glbackend implements gpu.Device on an OpenGL 4.1 core context.
// The context must be current on the calling thread for every call.
package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/gltfview/gpu"
	"github.com/gekko3d/gltfview/scene"
	"github.com/gekko3d/gltfview/shaders"
)

var uniformNames = map[gpu.Uniform]string{
	gpu.UniformModelViewProj:   "uModelViewProjMatrix",
	gpu.UniformModelView:       "uModelViewMatrix",
	gpu.UniformNormalMatrix:    "uNormalMatrix",
	gpu.UniformLightDirection:  "uLightDirection",
	gpu.UniformLightIntensity:  "uLightIntensity",
	gpu.UniformBaseColorFactor: "uBaseColorFactor",
}

type Device struct {
	logger   gpu.Logger
	program  uint32
	uniforms map[gpu.Uniform]int32
	sampler  int32
}

var (
	_ gpu.Device    = (*Device)(nil)
	_ gpu.Offscreen = (*Device)(nil)
)

// New loads GL entry points for the current context and compiles the
// forward shading program.
func New(logger gpu.Logger) (*Device, error) {
	logger = gpu.OrNop(logger)
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	logger.Infof("OpenGL %s", gl.GoStr(gl.GetString(gl.VERSION)))

	program, err := newProgram(shaders.ForwardVertexGLSL, shaders.DiffuseDirectionalLightFragmentGLSL)
	if err != nil {
		return nil, err
	}
	d := &Device{
		logger:   logger,
		program:  program,
		uniforms: make(map[gpu.Uniform]int32, len(uniformNames)),
		sampler:  uniformLocation(program, "uBaseColorTexture"),
	}
	for u, name := range uniformNames {
		loc := uniformLocation(program, name)
		if loc < 0 {
			logger.Debugf("uniform %s is not active", name)
		}
		d.uniforms[u] = loc
	}
	gl.Enable(gl.DEPTH_TEST)
	return d, nil
}

func (d *Device) CreateBuffer(data []byte) gpu.Buffer {
	var buf uint32
	gl.GenBuffers(1, &buf)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data), gl.Ptr(data), gl.STATIC_DRAW)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return gpu.Buffer(buf)
}

func (d *Device) CreateVertexArray(desc gpu.VertexArrayDesc) gpu.VertexArray {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	for _, attr := range desc.Attributes {
		gl.EnableVertexAttribArray(attr.Slot)
		gl.BindBuffer(gl.ARRAY_BUFFER, uint32(attr.Buffer))
		gl.VertexAttribPointerWithOffset(attr.Slot, int32(attr.Components), uint32(attr.Type),
			attr.Normalized, int32(attr.Stride), uintptr(attr.Offset))
	}
	if desc.Indices != 0 {
		// element buffer binding is vertex array state
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(desc.Indices))
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return gpu.VertexArray(vao)
}

func pixelFormat(channels int) (internal int32, format uint32) {
	switch channels {
	case 1:
		return gl.R8, gl.RED
	case 2:
		return gl.RG8, gl.RG
	case 3:
		return gl.RGB8, gl.RGB
	}
	return gl.RGBA8, gl.RGBA
}

// swizzle maps the R8 and RG8 uploads of gray and gray-alpha images back to
// luminance when sampled.
func swizzle(channels int) ([4]int32, bool) {
	switch channels {
	case 1:
		return [4]int32{gl.RED, gl.RED, gl.RED, gl.ONE}, true
	case 2:
		return [4]int32{gl.RED, gl.RED, gl.RED, gl.GREEN}, true
	}
	return [4]int32{}, false
}

func (d *Device) CreateTexture(img *scene.Image, sampler gpu.SamplerDesc) gpu.Texture {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	internal, format := pixelFormat(img.Channels)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(img.Width), int32(img.Height), 0,
		format, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	if sw, ok := swizzle(img.Channels); ok {
		gl.TexParameteriv(gl.TEXTURE_2D, gl.TEXTURE_SWIZZLE_RGBA, &sw[0])
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, int32(sampler.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, int32(sampler.MagFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, int32(sampler.WrapS))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, int32(sampler.WrapT))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_R, int32(sampler.WrapR))
	if sampler.MinFilter.Mipmapped() {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return gpu.Texture(tex)
}

func (d *Device) BeginFrame(vp gpu.Viewport, clear [4]float32) {
	gl.Viewport(int32(vp.X), int32(vp.Y), int32(vp.Width), int32(vp.Height))
	gl.ClearColor(clear[0], clear[1], clear[2], clear[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.UseProgram(d.program)
	gl.Uniform1i(d.sampler, int32(gpu.BaseColorTextureUnit))
}

func (d *Device) SetMat4(u gpu.Uniform, m mgl32.Mat4) {
	gl.UniformMatrix4fv(d.uniforms[u], 1, false, &m[0])
}

func (d *Device) SetVec3(u gpu.Uniform, v mgl32.Vec3) {
	gl.Uniform3f(d.uniforms[u], v[0], v[1], v[2])
}

func (d *Device) SetVec4(u gpu.Uniform, v mgl32.Vec4) {
	gl.Uniform4f(d.uniforms[u], v[0], v[1], v[2], v[3])
}

func (d *Device) BindTexture(unit uint32, tex gpu.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
}

func (d *Device) BindVertexArray(vao gpu.VertexArray) {
	gl.BindVertexArray(uint32(vao))
}

func (d *Device) DrawElements(mode gpu.DrawMode, count int, typ gpu.ComponentType, offset int) {
	gl.DrawElements(uint32(mode), int32(count), uint32(typ), gl.PtrOffset(offset))
}

func (d *Device) DrawArrays(mode gpu.DrawMode, first, count int) {
	gl.DrawArrays(uint32(mode), int32(first), int32(count))
}

func (d *Device) EndFrame() {
	gl.BindVertexArray(0)
}
