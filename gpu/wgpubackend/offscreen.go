package wgpubackend

import (
	"errors"
	"fmt"
	"image"

	"github.com/cogentcore/webgpu/wgpu"
)

const offscreenFormat = wgpu.TextureFormatRGBA8Unorm

type renderTarget struct {
	view   *wgpu.TextureView
	format wgpu.TextureFormat
	width  uint32
	height uint32
}

// paddedRowSize is the row pitch CopyTextureToBuffer requires for RGBA8.
func paddedRowSize(width uint32) uint32 {
	return (width*4 + 255) &^ 255
}

// RenderToImage runs draw with frames redirected to an RGBA8 texture and
// reads the result back.
func (d *Device) RenderToImage(width, height int, draw func()) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("offscreen size %dx%d", width, height)
	}
	w, h := uint32(width), uint32(height)

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "offscreen color",
		Size: wgpu.Extent3D{
			Width:              w,
			Height:             h,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        offscreenFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("offscreen texture: %w", err)
	}
	defer tex.Release()
	view, err := tex.CreateView(nil)
	if err != nil {
		return nil, fmt.Errorf("offscreen view: %w", err)
	}
	defer view.Release()

	d.offscreen = &renderTarget{view: view, format: offscreenFormat, width: w, height: h}
	draw()
	d.offscreen = nil

	rowSize := paddedRowSize(w)
	size := uint64(rowSize) * uint64(h)
	readback, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "offscreen readback",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("readback buffer: %w", err)
	}
	defer readback.Release()

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, err
	}
	defer encoder.Release()
	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
		},
		&wgpu.ImageCopyBuffer{
			Buffer: readback,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  rowSize,
				RowsPerImage: h,
			},
		},
		&wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		return nil, err
	}
	defer cmdBuffer.Release()
	d.queue.Submit(cmdBuffer)

	var status wgpu.BufferMapAsyncStatus
	err = readback.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		status = s
	})
	if err != nil {
		return nil, fmt.Errorf("map readback: %w", err)
	}
	d.device.Poll(true, nil)
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, errors.New("map readback: mapping did not succeed")
	}
	defer readback.Unmap()

	mapped := readback.GetMappedRange(0, uint(size))
	return unpadRows(mapped, width, height, int(rowSize)), nil
}

// unpadRows copies rows of a pitched RGBA8 readback into a tight image.
func unpadRows(data []byte, width, height, rowSize int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		copy(img.Pix[y*img.Stride:(y+1)*img.Stride], data[y*rowSize:y*rowSize+width*4])
	}
	return img
}
