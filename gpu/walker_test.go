package gpu_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/gltfview/gpu"
	"github.com/gekko3d/gltfview/gpu/gputest"
	"github.com/gekko3d/gltfview/scene"
)

func buildFixture(t *testing.T) (*gputest.Recorder, *scene.Asset, *gpu.ResourceSet) {
	t.Helper()
	rec := gputest.NewRecorder()
	a := fixtureAsset(t)
	res, err := gpu.NewBuilder(rec, nil, gpu.Options{}).Build(a)
	require.NoError(t, err)
	return rec, a, res
}

func TestDrawScene_Draws(t *testing.T) {
	rec, a, res := buildFixture(t)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(70), 1.5, 0.1, 100)

	gpu.NewWalker(rec, a, res).DrawScene(view, proj, scene.DefaultLight())

	require.Len(t, rec.Draws, 3, "primitive without attributes is skipped")

	indexed := rec.Draws[0]
	assert.True(t, indexed.Indexed)
	assert.Equal(t, gpu.Triangles, indexed.Mode)
	assert.Equal(t, 3, indexed.Count)
	assert.Equal(t, gpu.UnsignedShort, indexed.Type)
	assert.Equal(t, 2, indexed.Offset)
	assert.Equal(t, res.VertexArrays[0], indexed.VertexArray)
	assert.Equal(t, res.Textures[0], indexed.Texture)
	assert.Equal(t, mgl32.Vec4{0.5, 0.25, 1, 1}, indexed.BaseColor)

	lines := rec.Draws[1]
	assert.False(t, lines.Indexed)
	assert.Equal(t, gpu.Lines, lines.Mode)
	assert.Equal(t, 0, lines.First)
	assert.Equal(t, 3, lines.Count)
	assert.Equal(t, res.WhiteTexture, lines.Texture)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, lines.BaseColor)

	child := rec.Draws[2]
	assert.Equal(t, 3, child.Count, "NORMAL sorts before TEXCOORD_0")
	assert.Equal(t, res.VertexArrays[res.MeshRanges[1].Begin], child.VertexArray)
	assert.Equal(t, res.WhiteTexture, child.Texture)
}

func TestDrawScene_Matrices(t *testing.T) {
	rec, a, res := buildFixture(t)
	view := mgl32.Translate3D(0, 0, -10)
	proj := mgl32.Perspective(mgl32.DegToRad(70), 1, 0.1, 100)

	gpu.NewWalker(rec, a, res).DrawScene(view, proj, scene.DefaultLight())
	require.Len(t, rec.Draws, 3)

	rootWorld := mgl32.Translate3D(1, 0, 0)
	childWorld := rootWorld.Mul4(mgl32.Translate3D(0, 2, 0))

	root := rec.Draws[0]
	assert.Equal(t, view.Mul4(rootWorld), root.ModelView)
	assert.Equal(t, proj.Mul4(view.Mul4(rootWorld)), root.MVP)
	assert.Equal(t, root.ModelView.Inv().Transpose(), root.Normal)

	child := rec.Draws[2]
	assert.Equal(t, view.Mul4(childWorld), child.ModelView)
	assert.Equal(t, mgl32.Vec3{1, 2, -10}, child.ModelView.Col(3).Vec3())
}

func TestDrawScene_Light(t *testing.T) {
	rec, a, res := buildFixture(t)
	light := scene.Light{Direction: mgl32.Vec3{0, 0, 2}, Intensity: mgl32.Vec3{3, 2, 1}}

	gpu.NewWalker(rec, a, res).DrawScene(mgl32.Ident4(), mgl32.Ident4(), light)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, rec.Vec3(gpu.UniformLightDirection))
	assert.Equal(t, mgl32.Vec3{3, 2, 1}, rec.Vec3(gpu.UniformLightIntensity))
}

func TestDrawScene_NoActiveScene(t *testing.T) {
	rec, a, res := buildFixture(t)
	a.Doc.Scene = nil

	gpu.NewWalker(rec, a, res).DrawScene(mgl32.Ident4(), mgl32.Ident4(), scene.DefaultLight())
	assert.Empty(t, rec.Draws)
}

func TestDrawFrame_BracketsScene(t *testing.T) {
	rec, a, res := buildFixture(t)
	vp := gpu.Viewport{Width: 640, Height: 480}

	w := gpu.NewWalker(rec, a, res)
	w.DrawFrame(vp, [4]float32{0, 0, 0, 1}, mgl32.Ident4(), mgl32.Ident4(), scene.DefaultLight())
	w.DrawFrame(vp, [4]float32{0, 0, 0, 1}, mgl32.Ident4(), mgl32.Ident4(), scene.DefaultLight())

	assert.Equal(t, 2, rec.Frames)
	assert.Equal(t, []gpu.Viewport{vp, vp}, rec.Viewports)
	assert.Len(t, rec.Draws, 6)
}
