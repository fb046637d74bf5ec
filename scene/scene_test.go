package scene

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatBytes(vals ...float32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// triangleDoc has one triangle mesh referenced by a parent and a child node.
func triangleDoc(withMinMax bool) *gltf.Document {
	acc := &gltf.Accessor{
		BufferView:    gltf.Index(0),
		ComponentType: gltf.ComponentFloat,
		Type:          gltf.AccessorVec3,
		Count:         3,
	}
	if withMinMax {
		acc.Min = []float64{0, 0, 0}
		acc.Max = []float64{1, 1, 0}
	}
	return &gltf.Document{
		Buffers:     []*gltf.Buffer{{ByteLength: 36, Data: floatBytes(0, 0, 0, 1, 0, 0, 0, 1, 0)}},
		BufferViews: []*gltf.BufferView{{Buffer: 0, ByteLength: 36, Target: gltf.TargetArrayBuffer}},
		Accessors:   []*gltf.Accessor{acc},
		Meshes: []*gltf.Mesh{{
			Primitives: []*gltf.Primitive{{Attributes: map[string]int{gltf.POSITION: 0}}},
		}},
		Nodes: []*gltf.Node{
			{Mesh: gltf.Index(0), Translation: [3]float64{10, 0, 0}, Children: []int{1}},
			{Mesh: gltf.Index(0), Translation: [3]float64{0, 5, 0}},
		},
		Scenes: []*gltf.Scene{{Nodes: []int{0}}},
		Scene:  gltf.Index(0),
	}
}

func TestLocalMatrix_ZeroNodeIsIdentity(t *testing.T) {
	assert.Equal(t, mgl32.Ident4(), LocalMatrix(&gltf.Node{}))
}

func TestLocalMatrix_IdentityMatrixFallsBackToTRS(t *testing.T) {
	node := &gltf.Node{
		Matrix:      gltf.DefaultMatrix,
		Translation: [3]float64{4, 5, 6},
	}
	assert.Equal(t, mgl32.Translate3D(4, 5, 6), LocalMatrix(node))
}

func TestLocalMatrix_TRS(t *testing.T) {
	s := math.Sin(math.Pi / 4)
	node := &gltf.Node{
		Translation: [3]float64{1, 2, 3},
		Rotation:    [4]float64{0, 0, s, s},
		Scale:       [3]float64{2, 2, 2},
	}
	p := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, LocalMatrix(node))
	assert.True(t, p.ApproxEqualThreshold(mgl32.Vec3{1, 4, 3}, 1e-5), "got %v", p)
}

func TestLocalMatrix_ExplicitMatrixWins(t *testing.T) {
	node := &gltf.Node{
		Matrix:      [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 7, 8, 9, 1},
		Translation: [3]float64{100, 100, 100},
	}
	assert.Equal(t, mgl32.Translate3D(7, 8, 9), LocalMatrix(node))
}

func TestWalk_ChildWorldIsParentTimesLocal(t *testing.T) {
	a := NewAsset(triangleDoc(true), "")

	var order []int
	Walk(a, func(index int, _ *gltf.Node, _ mgl32.Mat4) { order = append(order, index) })
	assert.Equal(t, []int{0, 1}, order)

	worlds := WorldMatrices(a)
	require.Len(t, worlds, 2)
	assert.Equal(t, LocalMatrix(a.Doc.Nodes[0]), worlds[0])
	assert.Equal(t, worlds[0].Mul4(LocalMatrix(a.Doc.Nodes[1])), worlds[1])
	assert.Equal(t, mgl32.Vec3{10, 5, 0}, worlds[1].Col(3).Vec3())
}

func TestActiveScene(t *testing.T) {
	doc := triangleDoc(true)
	a := NewAsset(doc, "")
	_, ok := a.ActiveScene()
	assert.True(t, ok)

	doc.Scene = nil
	_, ok = a.ActiveScene()
	assert.False(t, ok)
	assert.Empty(t, WorldMatrices(a))

	doc.Scene = gltf.Index(3)
	_, ok = a.ActiveScene()
	assert.False(t, ok)
	assert.Contains(t, a.Warnings()[0], "out of range")
}

func TestNewAsset_AssignsIDAndDir(t *testing.T) {
	a := NewAsset(&gltf.Document{}, filepath.Join("models", "box.gltf"))
	b := NewAsset(&gltf.Document{}, "")
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "models", a.Dir)
	assert.Equal(t, ".", b.Dir)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.gltf")
	src := `{"asset":{"version":"2.0"},"scene":0,"scenes":[{"nodes":[0]}],"nodes":[{"name":"root"}]}`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	a, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, a.Dir)
	sc, ok := a.ActiveScene()
	require.True(t, ok)
	assert.Equal(t, []int{0}, sc.Nodes)

	_, err = Load(filepath.Join(dir, "missing.gltf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.gltf")
}

func TestComputeBounds(t *testing.T) {
	for _, withMinMax := range []bool{true, false} {
		b, err := ComputeBounds(NewAsset(triangleDoc(withMinMax), ""))
		require.NoError(t, err)
		assert.Equal(t, mgl32.Vec3{10, 0, 0}, b.Min, "minmax=%v", withMinMax)
		assert.Equal(t, mgl32.Vec3{11, 6, 0}, b.Max, "minmax=%v", withMinMax)
	}
}

func TestComputeBounds_NoSceneIsEmpty(t *testing.T) {
	doc := triangleDoc(true)
	doc.Scene = nil
	b, err := ComputeBounds(NewAsset(doc, ""))
	require.NoError(t, err)
	assert.False(t, b.Valid())
}

func TestLight_ViewDirection(t *testing.T) {
	l := DefaultLight()
	view := mgl32.HomogRotate3DY(mgl32.DegToRad(90))
	d := l.ViewDirection(view)
	assert.InDelta(t, 1, d.Len(), 1e-5)
	want := view.Mul4x1(mgl32.Vec4{1, 1, 1, 0}).Vec3().Normalize()
	assert.True(t, d.ApproxEqualThreshold(want, 1e-5))

	l.FromCamera = true
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, l.ViewDirection(view))
}
