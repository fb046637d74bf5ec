package wgpubackend

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/gltfview/gpu"
)

// pipelineKey is the state a WebGPU pipeline bakes in that GL keeps in the
// vertex array or passes to the draw call.
type pipelineKey struct {
	formats    [gpu.SlotCount]wgpu.VertexFormat
	strides    [gpu.SlotCount]uint64
	topology   wgpu.PrimitiveTopology
	stripIndex wgpu.IndexFormat
	color      wgpu.TextureFormat
}

// slotDefaults are the formats bound to the zero buffer for absent attributes.
var slotDefaults = [gpu.SlotCount]wgpu.VertexFormat{
	gpu.SlotPosition:  wgpu.VertexFormatFloat32x3,
	gpu.SlotNormal:    wgpu.VertexFormatFloat32x3,
	gpu.SlotTexCoord0: wgpu.VertexFormatFloat32x2,
}

// vertexFormat maps an attribute to a WebGPU format readable as floats.
// Three component 8 and 16 bit data is read as four components, the extra
// one being the padding glTF requires. Unnormalized integers have no float
// format and are rejected.
func vertexFormat(a gpu.VertexAttribute) (wgpu.VertexFormat, bool) {
	if a.Type == gpu.Float {
		switch a.Components {
		case 1:
			return wgpu.VertexFormatFloat32, true
		case 2:
			return wgpu.VertexFormatFloat32x2, true
		case 3:
			return wgpu.VertexFormatFloat32x3, true
		case 4:
			return wgpu.VertexFormatFloat32x4, true
		}
		return 0, false
	}
	if !a.Normalized {
		return 0, false
	}
	wide := a.Components > 2
	switch a.Type {
	case gpu.UnsignedByte:
		if wide {
			return wgpu.VertexFormatUnorm8x4, true
		}
		return wgpu.VertexFormatUnorm8x2, true
	case gpu.Byte:
		if wide {
			return wgpu.VertexFormatSnorm8x4, true
		}
		return wgpu.VertexFormatSnorm8x2, true
	case gpu.UnsignedShort:
		if wide {
			return wgpu.VertexFormatUnorm16x4, true
		}
		return wgpu.VertexFormatUnorm16x2, true
	case gpu.Short:
		if wide {
			return wgpu.VertexFormatSnorm16x4, true
		}
		return wgpu.VertexFormatSnorm16x2, true
	}
	return 0, false
}

func arrayStride(a gpu.VertexAttribute) uint64 {
	if a.Stride > 0 {
		return uint64(a.Stride)
	}
	return uint64(a.Components * a.Type.Size())
}

func topology(mode gpu.DrawMode) (wgpu.PrimitiveTopology, bool) {
	switch mode {
	case gpu.Points:
		return wgpu.PrimitiveTopologyPointList, true
	case gpu.Lines:
		return wgpu.PrimitiveTopologyLineList, true
	case gpu.LineStrip:
		return wgpu.PrimitiveTopologyLineStrip, true
	case gpu.Triangles:
		return wgpu.PrimitiveTopologyTriangleList, true
	case gpu.TriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip, true
	}
	return 0, false
}

func isStrip(t wgpu.PrimitiveTopology) bool {
	return t == wgpu.PrimitiveTopologyLineStrip || t == wgpu.PrimitiveTopologyTriangleStrip
}

// vertexBinding is what SetVertexBuffer needs for one slot.
type vertexBinding struct {
	buf    *wgpu.Buffer
	offset uint64
}

// vertexState resolves a recorded vertex array into per slot formats,
// strides and buffers. Slots without a usable attribute read the zero
// buffer with stride 0.
func (d *Device) vertexState(desc gpu.VertexArrayDesc, key *pipelineKey) [gpu.SlotCount]vertexBinding {
	var bindings [gpu.SlotCount]vertexBinding
	for slot := uint32(0); slot < gpu.SlotCount; slot++ {
		key.formats[slot] = slotDefaults[slot]
		key.strides[slot] = 0
		bindings[slot] = vertexBinding{buf: d.zero}

		attr, ok := desc.Attribute(slot)
		if !ok {
			continue
		}
		format, ok := vertexFormat(attr)
		if !ok {
			d.warnOnce(fmt.Sprintf("format %d/%d/%v", attr.Type, attr.Components, attr.Normalized),
				"slot %d: %d x 0x%x (normalized=%v) has no WebGPU float format, attribute ignored",
				slot, attr.Components, uint32(attr.Type), attr.Normalized)
			continue
		}
		buf, ok := d.buffer(attr.Buffer)
		if !ok {
			continue
		}
		key.formats[slot] = format
		key.strides[slot] = arrayStride(attr)
		bindings[slot] = vertexBinding{buf: buf.buf, offset: uint64(attr.Offset)}
	}
	return bindings
}

func (d *Device) pipeline(key pipelineKey) *wgpu.RenderPipeline {
	if p, ok := d.pipelines[key]; ok {
		return p
	}

	layouts := make([]wgpu.VertexBufferLayout, gpu.SlotCount)
	for slot := range layouts {
		layouts[slot] = wgpu.VertexBufferLayout{
			ArrayStride: key.strides[slot],
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: key.formats[slot], Offset: 0, ShaderLocation: uint32(slot)},
			},
		}
	}

	p, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "forward",
		Layout: d.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     d.shader,
			EntryPoint: "vs_main",
			Buffers:    layouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     d.shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    key.color,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:         key.topology,
			StripIndexFormat: key.stripIndex,
			FrontFace:        wgpu.FrontFaceCCW,
			CullMode:         wgpu.CullModeNone,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		panic(err)
	}
	d.logger.Debugf("created pipeline %d (topology %d)", len(d.pipelines)+1, key.topology)
	d.pipelines[key] = p
	return p
}
