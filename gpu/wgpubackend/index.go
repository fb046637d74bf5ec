package wgpubackend

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/gltfview/gpu"
)

type widenKey struct {
	buffer gpu.Buffer
	offset int
	count  int
}

// indexBinding returns the buffer, format and byte offset for an indexed
// draw. 8-bit indices are widened to 16 bits once per range and cached.
func (d *Device) indexBinding(h gpu.Buffer, typ gpu.ComponentType, offset, count int) (*wgpu.Buffer, wgpu.IndexFormat, uint64, bool) {
	src, ok := d.buffer(h)
	if !ok {
		d.warnOnce("no index buffer", "indexed draw without an index buffer skipped")
		return nil, 0, 0, false
	}
	switch typ {
	case gpu.UnsignedShort:
		return src.buf, wgpu.IndexFormatUint16, uint64(offset), true
	case gpu.UnsignedInt:
		return src.buf, wgpu.IndexFormatUint32, uint64(offset), true
	case gpu.UnsignedByte:
	default:
		d.warnOnce(fmt.Sprintf("index type %d", typ), "index type 0x%x is not valid, draw skipped", uint32(typ))
		return nil, 0, 0, false
	}

	key := widenKey{buffer: h, offset: offset, count: count}
	if buf, ok := d.widened[key]; ok {
		return buf, wgpu.IndexFormatUint16, 0, true
	}
	wide, err := widenIndices(src.data, offset, count)
	if err != nil {
		d.warnOnce(fmt.Sprintf("widen %v", key), "%v, draw skipped", err)
		return nil, 0, 0, false
	}
	buf := d.createBuffer("widened indices", wgpu.ToBytes(wide), wgpu.BufferUsageIndex)
	d.widened[key] = buf
	return buf, wgpu.IndexFormatUint16, 0, true
}

// widenIndices copies count 8-bit indices starting at offset into a uint16
// slice padded to an even length for 4 byte aligned uploads.
func widenIndices(data []byte, offset, count int) ([]uint16, error) {
	if offset < 0 || count < 0 || offset+count > len(data) {
		return nil, fmt.Errorf("index range [%d,%d) exceeds buffer of %d bytes", offset, offset+count, len(data))
	}
	out := make([]uint16, count+count%2)
	for i, v := range data[offset : offset+count] {
		out[i] = uint16(v)
	}
	return out, nil
}
