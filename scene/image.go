package scene

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var (
	ErrUnsupportedImage = errors.New("scene: unsupported image encoding")
	ErrNoImageSource    = errors.New("scene: image has neither uri nor buffer view")
)

// Image is decoded 8-bit pixel data, rows tightly packed top to bottom.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// WhiteImage is the 1x1 opaque white texel bound when a primitive has no
// base color texture.
func WhiteImage() *Image {
	return &Image{Width: 1, Height: 1, Channels: 4, Pix: []byte{255, 255, 255, 255}}
}

// ImageBytes returns the encoded bytes of image i, read from its buffer view,
// a data URI or a file next to the asset.
func (a *Asset) ImageBytes(i int) ([]byte, error) {
	if i < 0 || i >= len(a.Doc.Images) {
		return nil, fmt.Errorf("image %d out of range (%d images)", i, len(a.Doc.Images))
	}
	img := a.Doc.Images[i]
	switch {
	case img.BufferView != nil:
		return a.bufferViewBytes(*img.BufferView)
	case strings.HasPrefix(img.URI, "data:"):
		return decodeDataURI(img.URI)
	case img.URI != "":
		name, err := url.PathUnescape(img.URI)
		if err != nil {
			name = img.URI
		}
		return os.ReadFile(filepath.Join(a.Dir, filepath.FromSlash(name)))
	}
	return nil, fmt.Errorf("image %d: %w", i, ErrNoImageSource)
}

func (a *Asset) bufferViewBytes(idx int) ([]byte, error) {
	if idx < 0 || idx >= len(a.Doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", idx)
	}
	view := a.Doc.BufferViews[idx]
	if view.Buffer < 0 || view.Buffer >= len(a.Doc.Buffers) {
		return nil, fmt.Errorf("buffer view %d: buffer %d out of range", idx, view.Buffer)
	}
	data := a.Doc.Buffers[view.Buffer].Data
	end := view.ByteOffset + view.ByteLength
	if view.ByteOffset < 0 || end > len(data) {
		return nil, fmt.Errorf("buffer view %d: bytes [%d,%d) exceed buffer of %d", idx, view.ByteOffset, end, len(data))
	}
	return data[view.ByteOffset:end], nil
}

func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data uri")
	}
	header, payload := uri[len("data:"):comma], uri[comma+1:]
	if strings.HasSuffix(header, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// DecodeImage decodes image i (PNG, JPEG, BMP or WebP) into tightly packed
// 8-bit channels.
func (a *Asset) DecodeImage(i int) (*Image, error) {
	raw, err := a.ImageBytes(i)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("image %d: %w", i, ErrUnsupportedImage)
		}
		return nil, fmt.Errorf("image %d: %w", i, err)
	}
	return NewImage(img), nil
}

// NewImage converts a decoded image. Gray images keep one channel, YCbCr and
// CMYK become RGB and everything else becomes non-premultiplied RGBA.
func NewImage(img image.Image) *Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	switch src := img.(type) {
	case *image.Gray:
		return &Image{Width: w, Height: h, Channels: 1, Pix: packRows(src.Pix, src.Stride, w, h)}
	case *image.Gray16:
		pix := make([]byte, 0, w*h)
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride:]
			for x := 0; x < w; x++ {
				pix = append(pix, row[x*2])
			}
		}
		return &Image{Width: w, Height: h, Channels: 1, Pix: pix}
	}

	rgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	switch img.(type) {
	case *image.YCbCr, *image.CMYK:
		pix := make([]byte, 0, w*h*3)
		for p := 0; p < len(rgba.Pix); p += 4 {
			pix = append(pix, rgba.Pix[p], rgba.Pix[p+1], rgba.Pix[p+2])
		}
		return &Image{Width: w, Height: h, Channels: 3, Pix: pix}
	}
	return &Image{Width: w, Height: h, Channels: 4, Pix: rgba.Pix}
}

func packRows(src []byte, stride, rowBytes, h int) []byte {
	if stride == rowBytes {
		return append([]byte(nil), src[:rowBytes*h]...)
	}
	out := make([]byte, 0, rowBytes*h)
	for y := 0; y < h; y++ {
		out = append(out, src[y*stride:y*stride+rowBytes]...)
	}
	return out
}

// RGBA expands the image to four channels. One and two channel images are
// luminance and luminance-alpha, so gray is copied into red, green and blue.
// Missing alpha is opaque.
func (im *Image) RGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, im.Width, im.Height))
	if im.Channels == 4 {
		copy(out.Pix, im.Pix)
		return out
	}
	n := im.Width * im.Height
	for p := 0; p < n; p++ {
		px := im.Pix[p*im.Channels : (p+1)*im.Channels]
		dst := out.Pix[p*4 : p*4+4]
		dst[3] = 255
		switch im.Channels {
		case 1:
			dst[0], dst[1], dst[2] = px[0], px[0], px[0]
		case 2:
			dst[0], dst[1], dst[2], dst[3] = px[0], px[0], px[0], px[1]
		default:
			copy(dst[:3], px)
		}
	}
	return out
}
