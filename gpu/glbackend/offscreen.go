package glbackend

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// RenderToImage renders draw into a temporary framebuffer and reads it back.
// GL rows come out bottom first and are flipped.
func (d *Device) RenderToImage(width, height int, draw func()) (*image.NRGBA, error) {
	var fbo, color, depth uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	defer func() {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.DeleteRenderbuffers(1, &depth)
		gl.DeleteTextures(1, &color)
		gl.DeleteFramebuffers(1, &fbo)
	}()

	gl.GenTextures(1, &color)
	gl.BindTexture(gl.TEXTURE_2D, color)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, color, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenRenderbuffers(1, &depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(width), int32(height))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		return nil, fmt.Errorf("offscreen framebuffer incomplete: 0x%x", status)
	}

	draw()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	flipRows(img.Pix, img.Stride, height)
	return img, nil
}

func flipRows(pix []byte, stride, height int) {
	tmp := make([]byte, stride)
	for top, bottom := 0, height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pix[top*stride : (top+1)*stride]
		b := pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
