// Package gputest provides a gpu.Device that records calls instead of
// talking to a graphics API.
package gputest

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/gltfview/gpu"
	"github.com/gekko3d/gltfview/scene"
)

type TextureUpload struct {
	Handle  gpu.Texture
	Image   *scene.Image
	Sampler gpu.SamplerDesc
}

// Draw is one draw call with the state bound when it was issued.
type Draw struct {
	Indexed     bool
	Mode        gpu.DrawMode
	Count       int
	First       int
	Type        gpu.ComponentType
	Offset      int
	VertexArray gpu.VertexArray
	Texture     gpu.Texture
	ModelView   mgl32.Mat4
	MVP         mgl32.Mat4
	Normal      mgl32.Mat4
	BaseColor   mgl32.Vec4
}

// Recorder implements gpu.Device and gpu.Offscreen. Handles start at 1 and
// are unique per kind.
type Recorder struct {
	Buffers      [][]byte
	VertexArrays []gpu.VertexArrayDesc
	Textures     []TextureUpload
	Draws        []Draw
	Frames       int
	Viewports    []gpu.Viewport

	mats     map[gpu.Uniform]mgl32.Mat4
	vec3s    map[gpu.Uniform]mgl32.Vec3
	vec4s    map[gpu.Uniform]mgl32.Vec4
	textures map[uint32]gpu.Texture
	vao      gpu.VertexArray
}

var (
	_ gpu.Device    = (*Recorder)(nil)
	_ gpu.Offscreen = (*Recorder)(nil)
)

func NewRecorder() *Recorder {
	return &Recorder{
		mats:     make(map[gpu.Uniform]mgl32.Mat4),
		vec3s:    make(map[gpu.Uniform]mgl32.Vec3),
		vec4s:    make(map[gpu.Uniform]mgl32.Vec4),
		textures: make(map[uint32]gpu.Texture),
	}
}

func (r *Recorder) CreateBuffer(data []byte) gpu.Buffer {
	r.Buffers = append(r.Buffers, data)
	return gpu.Buffer(len(r.Buffers))
}

func (r *Recorder) CreateVertexArray(desc gpu.VertexArrayDesc) gpu.VertexArray {
	r.VertexArrays = append(r.VertexArrays, desc)
	return gpu.VertexArray(len(r.VertexArrays))
}

func (r *Recorder) CreateTexture(img *scene.Image, sampler gpu.SamplerDesc) gpu.Texture {
	h := gpu.Texture(len(r.Textures) + 1)
	r.Textures = append(r.Textures, TextureUpload{Handle: h, Image: img, Sampler: sampler})
	return h
}

func (r *Recorder) BeginFrame(viewport gpu.Viewport, clear [4]float32) {
	r.Viewports = append(r.Viewports, viewport)
}

func (r *Recorder) SetMat4(u gpu.Uniform, m mgl32.Mat4) { r.mats[u] = m }
func (r *Recorder) SetVec3(u gpu.Uniform, v mgl32.Vec3) { r.vec3s[u] = v }
func (r *Recorder) SetVec4(u gpu.Uniform, v mgl32.Vec4) { r.vec4s[u] = v }

func (r *Recorder) BindTexture(unit uint32, tex gpu.Texture) { r.textures[unit] = tex }
func (r *Recorder) BindVertexArray(vao gpu.VertexArray)      { r.vao = vao }

func (r *Recorder) DrawElements(mode gpu.DrawMode, count int, typ gpu.ComponentType, offset int) {
	d := r.snapshot()
	d.Indexed = true
	d.Mode = mode
	d.Count = count
	d.Type = typ
	d.Offset = offset
	r.Draws = append(r.Draws, d)
}

func (r *Recorder) DrawArrays(mode gpu.DrawMode, first, count int) {
	d := r.snapshot()
	d.Mode = mode
	d.First = first
	d.Count = count
	r.Draws = append(r.Draws, d)
}

func (r *Recorder) EndFrame() {
	r.Frames++
}

// RenderToImage runs draw and returns a blank image of the requested size.
func (r *Recorder) RenderToImage(width, height int, draw func()) (*image.NRGBA, error) {
	draw()
	return image.NewNRGBA(image.Rect(0, 0, width, height)), nil
}

// Vec3 returns the last value set for u.
func (r *Recorder) Vec3(u gpu.Uniform) mgl32.Vec3 { return r.vec3s[u] }

func (r *Recorder) snapshot() Draw {
	return Draw{
		VertexArray: r.vao,
		Texture:     r.textures[gpu.BaseColorTextureUnit],
		ModelView:   r.mats[gpu.UniformModelView],
		MVP:         r.mats[gpu.UniformModelViewProj],
		Normal:      r.mats[gpu.UniformNormalMatrix],
		BaseColor:   r.vec4s[gpu.UniformBaseColorFactor],
	}
}
