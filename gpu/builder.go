package gpu

import (
	"fmt"

	"github.com/qmuntal/gltf"

	"github.com/gekko3d/gltfview/scene"
)

type Options struct {
	// InferTargets accepts buffer views that omit their target and assumes
	// the one implied by how the view is used.
	InferTargets bool
}

// VaoRange locates the vertex arrays of one mesh in ResourceSet.VertexArrays.
type VaoRange struct {
	Begin int
	Count int
}

// ResourceSet is everything uploaded for one asset.
type ResourceSet struct {
	Buffers      []Buffer
	VertexArrays []VertexArray
	MeshRanges   []VaoRange
	Textures     []Texture
	WhiteTexture Texture
}

type Builder struct {
	device Device
	logger Logger
	opts   Options
}

func NewBuilder(device Device, logger Logger, opts Options) *Builder {
	return &Builder{device: device, logger: OrNop(logger), opts: opts}
}

// Build uploads buffers, then vertex arrays, then textures. Decode failures
// are returned; malformed references panic with *ContractError.
func (b *Builder) Build(a *scene.Asset) (*ResourceSet, error) {
	buffers := b.BuildBuffers(a.Doc)
	vaos, ranges := b.BuildVertexArrays(a.Doc, buffers)
	textures, white, err := b.BuildTextures(a)
	if err != nil {
		return nil, err
	}
	return &ResourceSet{
		Buffers:      buffers,
		VertexArrays: vaos,
		MeshRanges:   ranges,
		Textures:     textures,
		WhiteTexture: white,
	}, nil
}

func (b *Builder) BuildBuffers(doc *gltf.Document) []Buffer {
	buffers := make([]Buffer, len(doc.Buffers))
	for i, buf := range doc.Buffers {
		buffers[i] = b.device.CreateBuffer(buf.Data)
	}
	b.logger.Debugf("uploaded %d buffers", len(buffers))
	return buffers
}

var vertexAttributes = []struct {
	name string
	slot uint32
}{
	{gltf.POSITION, SlotPosition},
	{gltf.NORMAL, SlotNormal},
	{gltf.TEXCOORD_0, SlotTexCoord0},
}

func (b *Builder) BuildVertexArrays(doc *gltf.Document, buffers []Buffer) ([]VertexArray, []VaoRange) {
	var vaos []VertexArray
	ranges := make([]VaoRange, len(doc.Meshes))
	for meshIdx, mesh := range doc.Meshes {
		ranges[meshIdx] = VaoRange{Begin: len(vaos), Count: len(mesh.Primitives)}
		for primIdx, prim := range mesh.Primitives {
			where := fmt.Sprintf("mesh %d primitive %d", meshIdx, primIdx)
			var desc VertexArrayDesc
			for _, attr := range vertexAttributes {
				accIdx, ok := prim.Attributes[attr.name]
				if !ok {
					continue
				}
				acc, view := b.resolve(doc, accIdx, where+" "+attr.name)
				b.checkTarget(view, gltf.TargetArrayBuffer, where+" "+attr.name)
				desc.Attributes = append(desc.Attributes, VertexAttribute{
					Slot:       attr.slot,
					Buffer:     bufferHandle(buffers, view.Buffer, where),
					Components: componentCount(acc.Type),
					Type:       componentType(acc.ComponentType),
					Normalized: acc.Normalized,
					Stride:     view.ByteStride,
					Offset:     AccessorByteOffset(acc, view),
				})
			}
			if prim.Indices != nil {
				_, view := b.resolve(doc, *prim.Indices, where+" indices")
				b.checkTarget(view, gltf.TargetElementArrayBuffer, where+" indices")
				desc.Indices = bufferHandle(buffers, view.Buffer, where)
			}
			vaos = append(vaos, b.device.CreateVertexArray(desc))
		}
	}
	b.logger.Infof("created %d vertex arrays for %d meshes", len(vaos), len(doc.Meshes))
	return vaos, ranges
}

// resolve follows accessor -> buffer view -> buffer, panicking on anything
// that does not exist.
func (b *Builder) resolve(doc *gltf.Document, accIdx int, where string) (*gltf.Accessor, *gltf.BufferView) {
	if accIdx < 0 || accIdx >= len(doc.Accessors) {
		violate("resolve accessor", "%s: accessor %d out of range (%d accessors)", where, accIdx, len(doc.Accessors))
	}
	acc := doc.Accessors[accIdx]
	if acc.BufferView == nil {
		violate("resolve accessor", "%s: accessor %d has no buffer view", where, accIdx)
	}
	viewIdx := *acc.BufferView
	if viewIdx < 0 || viewIdx >= len(doc.BufferViews) {
		violate("resolve buffer view", "%s: buffer view %d out of range (%d views)", where, viewIdx, len(doc.BufferViews))
	}
	view := doc.BufferViews[viewIdx]
	if view.Buffer < 0 || view.Buffer >= len(doc.Buffers) {
		violate("resolve buffer", "%s: buffer %d out of range (%d buffers)", where, view.Buffer, len(doc.Buffers))
	}
	return acc, view
}

func (b *Builder) checkTarget(view *gltf.BufferView, want gltf.Target, where string) {
	switch {
	case view.Target == want:
	case view.Target == gltf.TargetNone && b.opts.InferTargets:
		b.logger.Debugf("%s: buffer view has no target, using %s", where, targetName(want))
	case view.Target == gltf.TargetNone:
		violate("check target", "%s: buffer view has no target, want %s", where, targetName(want))
	default:
		violate("check target", "%s: buffer view target is %s, want %s", where, targetName(view.Target), targetName(want))
	}
}

func targetName(t gltf.Target) string {
	switch t {
	case gltf.TargetArrayBuffer:
		return "ARRAY_BUFFER"
	case gltf.TargetElementArrayBuffer:
		return "ELEMENT_ARRAY_BUFFER"
	}
	return "none"
}

func bufferHandle(buffers []Buffer, idx int, where string) Buffer {
	if idx < 0 || idx >= len(buffers) {
		violate("resolve buffer", "%s: buffer %d has no device handle", where, idx)
	}
	return buffers[idx]
}

// BuildTextures uploads one texture per asset texture plus the shared white
// texture. Textures without a source image reuse the white texture.
func (b *Builder) BuildTextures(a *scene.Asset) ([]Texture, Texture, error) {
	white := b.device.CreateTexture(scene.WhiteImage(), DefaultSampler())
	textures := make([]Texture, len(a.Doc.Textures))
	for i, tex := range a.Doc.Textures {
		if tex.Source == nil {
			b.logger.Warnf("texture %d has no source image, using white", i)
			textures[i] = white
			continue
		}
		img, err := a.DecodeImage(*tex.Source)
		if err != nil {
			return nil, 0, fmt.Errorf("texture %d: %w", i, err)
		}
		textures[i] = b.device.CreateTexture(img, SamplerFor(a.Doc, tex))
	}
	b.logger.Debugf("uploaded %d textures", len(textures))
	return textures, white, nil
}
