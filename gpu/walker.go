package gpu

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"

	"github.com/gekko3d/gltfview/scene"
)

// Walker issues the draw calls for an asset whose resources were built by
// Builder.
type Walker struct {
	device Device
	asset  *scene.Asset
	res    *ResourceSet
}

func NewWalker(device Device, asset *scene.Asset, res *ResourceSet) *Walker {
	return &Walker{device: device, asset: asset, res: res}
}

// DrawFrame clears the viewport and draws the active scene.
func (w *Walker) DrawFrame(vp Viewport, clear [4]float32, view, proj mgl32.Mat4, light scene.Light) {
	w.device.BeginFrame(vp, clear)
	w.DrawScene(view, proj, light)
	w.device.EndFrame()
}

// DrawScene draws every mesh node of the active scene, parents before
// children, in declaration order. Without an active scene nothing is drawn.
func (w *Walker) DrawScene(view, proj mgl32.Mat4, light scene.Light) {
	w.device.SetVec3(UniformLightDirection, light.ViewDirection(view))
	w.device.SetVec3(UniformLightIntensity, light.Intensity)

	scene.Walk(w.asset, func(_ int, node *gltf.Node, world mgl32.Mat4) {
		if node.Mesh != nil {
			w.drawMesh(*node.Mesh, world, view, proj)
		}
	})
}

func (w *Walker) drawMesh(meshIdx int, world, view, proj mgl32.Mat4) {
	mv := view.Mul4(world)
	mvp := proj.Mul4(mv)
	normal := mv.Inv().Transpose()
	w.device.SetMat4(UniformModelViewProj, mvp)
	w.device.SetMat4(UniformModelView, mv)
	w.device.SetMat4(UniformNormalMatrix, normal)

	doc := w.asset.Doc
	rng := w.res.MeshRanges[meshIdx]
	for p, prim := range doc.Meshes[meshIdx].Primitives {
		tex, factor := w.material(prim.Material)
		w.device.BindTexture(BaseColorTextureUnit, tex)
		w.device.SetVec4(UniformBaseColorFactor, factor)
		w.device.BindVertexArray(w.res.VertexArrays[rng.Begin+p])

		mode := drawMode(prim.Mode)
		if prim.Indices != nil {
			acc := doc.Accessors[*prim.Indices]
			view := doc.BufferViews[*acc.BufferView]
			w.device.DrawElements(mode, acc.Count, componentType(acc.ComponentType), AccessorByteOffset(acc, view))
			continue
		}
		if count, ok := vertexCount(doc, prim); ok {
			w.device.DrawArrays(mode, 0, count)
		}
	}
}

// material returns the base color texture and factor of a primitive's
// material, falling back to white.
func (w *Walker) material(idx *int) (Texture, mgl32.Vec4) {
	factor := mgl32.Vec4{1, 1, 1, 1}
	if idx == nil {
		return w.res.WhiteTexture, factor
	}
	pbr := w.asset.Doc.Materials[*idx].PBRMetallicRoughness
	if pbr == nil {
		return w.res.WhiteTexture, factor
	}
	if f := pbr.BaseColorFactor; f != nil {
		factor = mgl32.Vec4{float32(f[0]), float32(f[1]), float32(f[2]), float32(f[3])}
	}
	if pbr.BaseColorTexture == nil {
		return w.res.WhiteTexture, factor
	}
	return w.res.Textures[pbr.BaseColorTexture.Index], factor
}

// vertexCount picks the count for a non-indexed draw: POSITION when present,
// else the first attribute by name. A primitive without attributes has none.
func vertexCount(doc *gltf.Document, prim *gltf.Primitive) (int, bool) {
	if idx, ok := prim.Attributes[gltf.POSITION]; ok {
		return doc.Accessors[idx].Count, true
	}
	if len(prim.Attributes) == 0 {
		return 0, false
	}
	names := make([]string, 0, len(prim.Attributes))
	for name := range prim.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return doc.Accessors[prim.Attributes[names[0]]].Count, true
}
