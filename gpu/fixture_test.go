package gpu_test

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/gltfview/gpu"
	"github.com/gekko3d/gltfview/scene"
)

func floatBytes(vals ...float32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func pngDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func grayPNGDataURI(t *testing.T, v uint8) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	img.SetGray(0, 0, color.Gray{Y: v})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// fixtureDoc:
//
//	node 0 (mesh 0, translate 1,0,0)
//	└── node 1 (mesh 1, translate 0,2,0)
//	node 2 (no mesh)
//
// mesh 0 has an indexed textured primitive and a non-indexed untextured one,
// mesh 1 has a primitive without POSITION and one without attributes.
func fixtureDoc(t *testing.T) *gltf.Document {
	positions := floatBytes(0, 0, 0, 1, 0, 0, 0, 1, 0)
	normals := floatBytes(0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1)
	vertexData := append(append([]byte{}, positions...), normals...)
	indexData := []byte{0xAA, 0xAA, 0, 0, 1, 0, 2, 0}

	factor := [4]float64{0.5, 0.25, 1, 1}
	return &gltf.Document{
		Buffers: []*gltf.Buffer{
			{ByteLength: len(vertexData), Data: vertexData},
			{ByteLength: len(indexData), Data: indexData},
		},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: 36, Target: gltf.TargetArrayBuffer},
			{Buffer: 0, ByteOffset: 36, ByteLength: 48, ByteStride: 12, Target: gltf.TargetArrayBuffer},
			{Buffer: 1, ByteOffset: 0, ByteLength: 8, Target: gltf.TargetElementArrayBuffer},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Type: gltf.AccessorVec3, Count: 3},
			{BufferView: gltf.Index(1), ByteOffset: 12, ComponentType: gltf.ComponentFloat, Type: gltf.AccessorVec3, Count: 3},
			{BufferView: gltf.Index(2), ByteOffset: 2, ComponentType: gltf.ComponentUshort, Type: gltf.AccessorScalar, Count: 3},
			{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Type: gltf.AccessorVec2, Count: 4},
		},
		Meshes: []*gltf.Mesh{
			{Primitives: []*gltf.Primitive{
				{
					Attributes: map[string]int{gltf.POSITION: 0, gltf.NORMAL: 1},
					Indices:    gltf.Index(2),
					Material:   gltf.Index(0),
				},
				{
					Attributes: map[string]int{gltf.POSITION: 0},
					Material:   gltf.Index(1),
					Mode:       gltf.PrimitiveLines,
				},
			}},
			{Primitives: []*gltf.Primitive{
				{Attributes: map[string]int{gltf.TEXCOORD_0: 3, gltf.NORMAL: 1}},
				{Attributes: map[string]int{}},
			}},
		},
		Materials: []*gltf.Material{
			{PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor:  &factor,
				BaseColorTexture: &gltf.TextureInfo{Index: 0},
			}},
			{},
		},
		Textures: []*gltf.Texture{
			{Source: gltf.Index(0), Sampler: gltf.Index(0)},
			{},
		},
		Samplers: []*gltf.Sampler{
			{MinFilter: gltf.MinLinearMipMapLinear, MagFilter: gltf.MagNearest, WrapS: gltf.WrapClampToEdge, WrapT: gltf.WrapMirroredRepeat},
		},
		Images: []*gltf.Image{{URI: pngDataURI(t)}},
		Nodes: []*gltf.Node{
			{Mesh: gltf.Index(0), Translation: [3]float64{1, 0, 0}, Children: []int{1}},
			{Mesh: gltf.Index(1), Translation: [3]float64{0, 2, 0}},
			{},
		},
		Scenes: []*gltf.Scene{{Nodes: []int{0, 2}}},
		Scene:  gltf.Index(0),
	}
}

func fixtureAsset(t *testing.T) *scene.Asset {
	return scene.NewAsset(fixtureDoc(t), "")
}

// contractPanic runs f and returns the *ContractError it panicked with.
func contractPanic(t *testing.T, f func()) (ce *gpu.ContractError) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		var ok bool
		ce, ok = r.(*gpu.ContractError)
		require.True(t, ok, "panic value %T is not *ContractError", r)
	}()
	f()
	return nil
}
