package gpu

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/gltfview/scene"
)

// Handles are opaque and backend assigned. Zero means none.
type (
	Buffer      uint32
	VertexArray uint32
	Texture     uint32
)

// ComponentType uses the GL enum values glTF accessors are declared with.
type ComponentType uint32

const (
	Byte          ComponentType = 0x1400
	UnsignedByte  ComponentType = 0x1401
	Short         ComponentType = 0x1402
	UnsignedShort ComponentType = 0x1403
	UnsignedInt   ComponentType = 0x1405
	Float         ComponentType = 0x1406
)

func (c ComponentType) Size() int {
	switch c {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort:
		return 2
	case UnsignedInt, Float:
		return 4
	}
	return 0
}

// DrawMode uses GL primitive enum values.
type DrawMode uint32

const (
	Points        DrawMode = 0
	Lines         DrawMode = 1
	LineLoop      DrawMode = 2
	LineStrip     DrawMode = 3
	Triangles     DrawMode = 4
	TriangleStrip DrawMode = 5
	TriangleFan   DrawMode = 6
)

func (m DrawMode) String() string {
	switch m {
	case Points:
		return "points"
	case Lines:
		return "lines"
	case LineLoop:
		return "line-loop"
	case LineStrip:
		return "line-strip"
	case Triangles:
		return "triangles"
	case TriangleStrip:
		return "triangle-strip"
	case TriangleFan:
		return "triangle-fan"
	}
	return "unknown"
}

type Uniform int

const (
	UniformModelViewProj Uniform = iota
	UniformModelView
	UniformNormalMatrix
	UniformLightDirection
	UniformLightIntensity
	UniformBaseColorFactor
)

// Fixed attribute slots shared by every shader.
const (
	SlotPosition  uint32 = 0
	SlotNormal    uint32 = 1
	SlotTexCoord0 uint32 = 2
	SlotCount            = 3
)

const BaseColorTextureUnit uint32 = 0

type VertexAttribute struct {
	Slot       uint32
	Buffer     Buffer
	Components int
	Type       ComponentType
	Normalized bool
	Stride     int // 0 means tightly packed
	Offset     int
}

// VertexArrayDesc is everything a vertex array object captures: enabled
// attribute slots and the element buffer.
type VertexArrayDesc struct {
	Attributes []VertexAttribute
	Indices    Buffer
}

func (d VertexArrayDesc) Attribute(slot uint32) (VertexAttribute, bool) {
	for _, a := range d.Attributes {
		if a.Slot == slot {
			return a, true
		}
	}
	return VertexAttribute{}, false
}

// Filter and Wrap use GL enum values.
type Filter uint32

const (
	Nearest              Filter = 0x2600
	Linear               Filter = 0x2601
	NearestMipmapNearest Filter = 0x2700
	LinearMipmapNearest  Filter = 0x2701
	NearestMipmapLinear  Filter = 0x2702
	LinearMipmapLinear   Filter = 0x2703
)

func (f Filter) Mipmapped() bool {
	switch f {
	case NearestMipmapNearest, LinearMipmapNearest, NearestMipmapLinear, LinearMipmapLinear:
		return true
	}
	return false
}

type Wrap uint32

const (
	Repeat         Wrap = 0x2901
	ClampToEdge    Wrap = 0x812F
	MirroredRepeat Wrap = 0x8370
)

type SamplerDesc struct {
	MinFilter Filter
	MagFilter Filter
	WrapS     Wrap
	WrapT     Wrap
	WrapR     Wrap
}

// DefaultSampler is used by textures without a sampler.
func DefaultSampler() SamplerDesc {
	return SamplerDesc{
		MinFilter: Linear,
		MagFilter: Linear,
		WrapS:     Repeat,
		WrapT:     Repeat,
		WrapR:     Repeat,
	}
}

type Viewport struct {
	X, Y          int
	Width, Height int
}

func (v Viewport) Aspect() float32 {
	if v.Height == 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// Device is the slice of a graphics API the builder and walker need.
// Implementations are not safe for concurrent use and must be driven from
// the thread that owns the graphics context.
type Device interface {
	CreateBuffer(data []byte) Buffer
	CreateVertexArray(desc VertexArrayDesc) VertexArray
	CreateTexture(img *scene.Image, sampler SamplerDesc) Texture

	BeginFrame(viewport Viewport, clear [4]float32)
	SetMat4(u Uniform, m mgl32.Mat4)
	SetVec3(u Uniform, v mgl32.Vec3)
	SetVec4(u Uniform, v mgl32.Vec4)
	BindTexture(unit uint32, tex Texture)
	BindVertexArray(vao VertexArray)
	DrawElements(mode DrawMode, count int, typ ComponentType, offset int)
	DrawArrays(mode DrawMode, first, count int)
	EndFrame()
}

// Offscreen is implemented by devices that can render a frame into memory.
// The returned image is top row first.
type Offscreen interface {
	RenderToImage(width, height int, draw func()) (*image.NRGBA, error)
}

// Logger is the logging surface used by this package and the backends.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}

// OrNop returns l, or a logger that drops everything when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return nopLogger{}
	}
	return l
}
