package wgpubackend

import (
	"image"

	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/draw"

	"github.com/gekko3d/gltfview/gpu"
	"github.com/gekko3d/gltfview/scene"
)

// mipChain returns base followed by successively halved levels down to 1x1.
func mipChain(base *image.NRGBA) []*image.NRGBA {
	levels := []*image.NRGBA{base}
	w, h := base.Rect.Dx(), base.Rect.Dy()
	for w > 1 || h > 1 {
		w, h = max(w/2, 1), max(h/2, 1)
		prev := levels[len(levels)-1]
		next := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(next, next.Bounds(), prev, prev.Bounds(), draw.Src, nil)
		levels = append(levels, next)
	}
	return levels
}

func addressMode(w gpu.Wrap) wgpu.AddressMode {
	switch w {
	case gpu.ClampToEdge:
		return wgpu.AddressModeClampToEdge
	case gpu.MirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	}
	return wgpu.AddressModeRepeat
}

func filterMode(f gpu.Filter) wgpu.FilterMode {
	switch f {
	case gpu.Nearest, gpu.NearestMipmapNearest, gpu.NearestMipmapLinear:
		return wgpu.FilterModeNearest
	}
	return wgpu.FilterModeLinear
}

func mipmapFilterMode(f gpu.Filter) wgpu.MipmapFilterMode {
	switch f {
	case gpu.NearestMipmapLinear, gpu.LinearMipmapLinear:
		return wgpu.MipmapFilterModeLinear
	}
	return wgpu.MipmapFilterModeNearest
}

func samplerDescriptor(s gpu.SamplerDesc) *wgpu.SamplerDescriptor {
	return &wgpu.SamplerDescriptor{
		AddressModeU:  addressMode(s.WrapS),
		AddressModeV:  addressMode(s.WrapT),
		AddressModeW:  addressMode(s.WrapR),
		MagFilter:     filterMode(s.MagFilter),
		MinFilter:     filterMode(s.MinFilter),
		MipmapFilter:  mipmapFilterMode(s.MinFilter),
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

// createTextureGroup uploads img as RGBA8 and returns the bind group pairing
// it with its sampler.
func (d *Device) createTextureGroup(img *scene.Image, sampler gpu.SamplerDesc) *wgpu.BindGroup {
	levels := []*image.NRGBA{img.RGBA()}
	if sampler.MinFilter.Mipmapped() {
		levels = mipChain(levels[0])
	}

	size := wgpu.Extent3D{
		Width:              uint32(img.Width),
		Height:             uint32(img.Height),
		DepthOrArrayLayers: 1,
	}
	texture, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "base color",
		Size:          size,
		MipLevelCount: uint32(len(levels)),
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	defer texture.Release()

	for level, pix := range levels {
		w, h := uint32(pix.Rect.Dx()), uint32(pix.Rect.Dy())
		err = d.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  texture,
				MipLevel: uint32(level),
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			pix.Pix,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  w * 4,
				RowsPerImage: h,
			},
			&wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		)
		if err != nil {
			panic(err)
		}
	}

	view, err := texture.CreateView(nil)
	if err != nil {
		panic(err)
	}
	samp, err := d.device.CreateSampler(samplerDescriptor(sampler))
	if err != nil {
		panic(err)
	}
	group, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "base color",
		Layout: d.textureLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: samp},
		},
	})
	if err != nil {
		panic(err)
	}
	return group
}
