package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gekko3d/gltfview"
)

func TestRun_ArgumentErrors(t *testing.T) {
	assert.Error(t, run(nil), "no file")
	assert.Error(t, run([]string{"a.gltf", "b.gltf"}))
	assert.Error(t, run([]string{"-lookat", "1,2,3", "a.gltf"}))
	assert.Error(t, run([]string{"-w", "0", "a.gltf"}))
	assert.Error(t, run([]string{"-watch", "a.gltf"}), "watch without config")
	assert.ErrorIs(t, run([]string{"-backend", "metal", "a.gltf"}), gltfview.ErrUnknownBackend)
}
