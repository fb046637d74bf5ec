package gltfview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRendererName(t *testing.T) {
	cases := map[string]RendererName{
		"":       RendererGL,
		"gl":     RendererGL,
		"OpenGL": RendererGL,
		" wgpu ": RendererWGPU,
		"WebGPU": RendererWGPU,
	}
	for in, want := range cases {
		got, err := ParseRendererName(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseRendererName("vulkan")
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestOpenBackend_GLNeedsWindow(t *testing.T) {
	_, err := openBackend(RendererGL, nil, nil)
	assert.Error(t, err)

	_, err = openBackend("dx12", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
