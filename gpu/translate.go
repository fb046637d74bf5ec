package gpu

import "github.com/qmuntal/gltf"

func componentType(c gltf.ComponentType) ComponentType {
	switch c {
	case gltf.ComponentByte:
		return Byte
	case gltf.ComponentUbyte:
		return UnsignedByte
	case gltf.ComponentShort:
		return Short
	case gltf.ComponentUshort:
		return UnsignedShort
	case gltf.ComponentUint:
		return UnsignedInt
	}
	return Float
}

func componentCount(t gltf.AccessorType) int {
	switch t {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4, gltf.AccessorMat2:
		return 4
	case gltf.AccessorMat3:
		return 9
	case gltf.AccessorMat4:
		return 16
	}
	return 0
}

func drawMode(m gltf.PrimitiveMode) DrawMode {
	switch m {
	case gltf.PrimitivePoints:
		return Points
	case gltf.PrimitiveLines:
		return Lines
	case gltf.PrimitiveLineLoop:
		return LineLoop
	case gltf.PrimitiveLineStrip:
		return LineStrip
	case gltf.PrimitiveTriangleStrip:
		return TriangleStrip
	case gltf.PrimitiveTriangleFan:
		return TriangleFan
	}
	return Triangles
}

func minFilter(f gltf.MinFilter) Filter {
	switch f {
	case gltf.MinNearest:
		return Nearest
	case gltf.MinNearestMipMapNearest:
		return NearestMipmapNearest
	case gltf.MinLinearMipMapNearest:
		return LinearMipmapNearest
	case gltf.MinNearestMipMapLinear:
		return NearestMipmapLinear
	case gltf.MinLinearMipMapLinear:
		return LinearMipmapLinear
	}
	return Linear
}

func magFilter(f gltf.MagFilter) Filter {
	if f == gltf.MagNearest {
		return Nearest
	}
	return Linear
}

func wrap(w gltf.WrappingMode) Wrap {
	switch w {
	case gltf.WrapClampToEdge:
		return ClampToEdge
	case gltf.WrapMirroredRepeat:
		return MirroredRepeat
	}
	return Repeat
}

// SamplerFor resolves a texture's sampler. Undefined filters fall back to
// linear and a missing sampler to DefaultSampler.
func SamplerFor(doc *gltf.Document, tex *gltf.Texture) SamplerDesc {
	if tex.Sampler == nil || *tex.Sampler < 0 || *tex.Sampler >= len(doc.Samplers) {
		return DefaultSampler()
	}
	s := doc.Samplers[*tex.Sampler]
	return SamplerDesc{
		MinFilter: minFilter(s.MinFilter),
		MagFilter: magFilter(s.MagFilter),
		WrapS:     wrap(s.WrapS),
		WrapT:     wrap(s.WrapT),
		WrapR:     Repeat,
	}
}

// AccessorByteOffset is where the accessor's first element starts inside its
// buffer.
func AccessorByteOffset(acc *gltf.Accessor, view *gltf.BufferView) int {
	return acc.ByteOffset + view.ByteOffset
}
