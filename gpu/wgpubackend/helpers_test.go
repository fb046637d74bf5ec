package wgpubackend

import (
	"image"
	"image/color"
	"testing"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/gltfview/gpu"
	"github.com/gekko3d/gltfview/shaders"
)

func TestDrawUniformsFillOneSlot(t *testing.T) {
	assert.Equal(t, uintptr(uniformSlotSize), unsafe.Sizeof(drawUniforms{}))
	assert.LessOrEqual(t, shaders.UniformBlockSize, uniformSlotSize)
}

func TestVertexFormat(t *testing.T) {
	cases := []struct {
		name string
		attr gpu.VertexAttribute
		want wgpu.VertexFormat
		ok   bool
	}{
		{"vec3 float", gpu.VertexAttribute{Components: 3, Type: gpu.Float}, wgpu.VertexFormatFloat32x3, true},
		{"vec2 float", gpu.VertexAttribute{Components: 2, Type: gpu.Float}, wgpu.VertexFormatFloat32x2, true},
		{"vec2 unorm16", gpu.VertexAttribute{Components: 2, Type: gpu.UnsignedShort, Normalized: true}, wgpu.VertexFormatUnorm16x2, true},
		{"vec3 snorm8 reads padding", gpu.VertexAttribute{Components: 3, Type: gpu.Byte, Normalized: true}, wgpu.VertexFormatSnorm8x4, true},
		{"vec2 unnormalized ushort", gpu.VertexAttribute{Components: 2, Type: gpu.UnsignedShort}, 0, false},
		{"float with 5 components", gpu.VertexAttribute{Components: 5, Type: gpu.Float}, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := vertexFormat(tc.attr)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestArrayStride(t *testing.T) {
	assert.Equal(t, uint64(12), arrayStride(gpu.VertexAttribute{Components: 3, Type: gpu.Float}))
	assert.Equal(t, uint64(32), arrayStride(gpu.VertexAttribute{Components: 3, Type: gpu.Float, Stride: 32}))
}

func TestTopology(t *testing.T) {
	topo, ok := topology(gpu.TriangleStrip)
	require.True(t, ok)
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleStrip, topo)
	assert.True(t, isStrip(topo))

	topo, ok = topology(gpu.Lines)
	require.True(t, ok)
	assert.False(t, isStrip(topo))

	_, ok = topology(gpu.LineLoop)
	assert.False(t, ok)
	_, ok = topology(gpu.TriangleFan)
	assert.False(t, ok)
}

func TestViewportRect(t *testing.T) {
	x, y, w, h := viewportRect(gpu.Viewport{}, 640, 480)
	assert.Equal(t, [4]float32{0, 0, 640, 480}, [4]float32{x, y, w, h})

	// bottom-left 100x50 region
	x, y, w, h = viewportRect(gpu.Viewport{X: 10, Y: 0, Width: 100, Height: 50}, 640, 480)
	assert.Equal(t, [4]float32{10, 430, 100, 50}, [4]float32{x, y, w, h})

	x, y, w, h = viewportRect(gpu.Viewport{X: 600, Y: 0, Width: 100, Height: 480}, 640, 480)
	assert.Equal(t, [4]float32{600, 0, 40, 480}, [4]float32{x, y, w, h})
}

func TestWidenIndices(t *testing.T) {
	out, err := widenIndices([]byte{9, 0, 1, 2, 9}, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0, 1, 2, 0}, out)

	out, err = widenIndices([]byte{3, 4}, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint16{3, 4}, out)

	_, err = widenIndices([]byte{1, 2}, 1, 2)
	assert.Error(t, err)
}

func TestMipChain(t *testing.T) {
	base := image.NewNRGBA(image.Rect(0, 0, 8, 2))
	for i := range base.Pix {
		base.Pix[i] = 255
	}
	levels := mipChain(base)
	require.Len(t, levels, 4)
	sizes := make([]image.Point, len(levels))
	for i, l := range levels {
		sizes[i] = l.Rect.Size()
	}
	assert.Equal(t, []image.Point{{8, 2}, {4, 1}, {2, 1}, {1, 1}}, sizes)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, levels[3].NRGBAAt(0, 0))

	assert.Len(t, mipChain(image.NewNRGBA(image.Rect(0, 0, 1, 1))), 1)
}

func TestSamplerDescriptor(t *testing.T) {
	d := samplerDescriptor(gpu.SamplerDesc{
		MinFilter: gpu.NearestMipmapLinear,
		MagFilter: gpu.Linear,
		WrapS:     gpu.ClampToEdge,
		WrapT:     gpu.MirroredRepeat,
		WrapR:     gpu.Repeat,
	})
	assert.Equal(t, wgpu.FilterModeNearest, d.MinFilter)
	assert.Equal(t, wgpu.FilterModeLinear, d.MagFilter)
	assert.Equal(t, wgpu.MipmapFilterModeLinear, d.MipmapFilter)
	assert.Equal(t, wgpu.AddressModeClampToEdge, d.AddressModeU)
	assert.Equal(t, wgpu.AddressModeMirrorRepeat, d.AddressModeV)
	assert.Equal(t, wgpu.AddressModeRepeat, d.AddressModeW)
	assert.Equal(t, uint16(1), d.MaxAnisotropy)
}

func TestFrameRecorderSnapshotsUniforms(t *testing.T) {
	var f frameRecorder
	f.begin(gpu.Viewport{Width: 4, Height: 4}, [4]float32{})
	f.setVec4(gpu.UniformBaseColorFactor, mgl32.Vec4{1, 0, 0, 1})
	f.vao = 1
	f.record(drawCmd{mode: gpu.Triangles, count: 3})
	f.setVec4(gpu.UniformBaseColorFactor, mgl32.Vec4{0, 1, 0, 1})
	f.record(drawCmd{mode: gpu.Triangles, count: 3})

	require.Len(t, f.draws, 2)
	assert.Equal(t, 0, f.draws[0].uniform)
	assert.Equal(t, 1, f.draws[1].uniform)
	assert.Equal(t, gpu.VertexArray(1), f.draws[1].vao)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, f.slots[0].BaseColorFactor)
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, f.slots[1].BaseColorFactor)

	f.begin(gpu.Viewport{}, [4]float32{})
	assert.Empty(t, f.draws)
	assert.Empty(t, f.slots)
}

func TestUnpadRows(t *testing.T) {
	// 1x2 image with 8 byte pitch
	data := []byte{1, 2, 3, 4, 0, 0, 0, 0, 5, 6, 7, 8, 0, 0, 0, 0}
	img := unpadRows(data, 1, 2, 8)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, img.Pix)
	assert.Equal(t, uint32(256), paddedRowSize(1))
	assert.Equal(t, uint32(512), paddedRowSize(65))
}
