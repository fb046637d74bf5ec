package shaders

import (
	_ "embed"
)

//go:embed forward.vs.glsl
var ForwardVertexGLSL string

//go:embed diffuse_directional_light.fs.glsl
var DiffuseDirectionalLightFragmentGLSL string

//go:embed forward.wgsl
var ForwardWGSL string

// UniformBlockSize is the byte size of the Uniforms struct in forward.wgsl.
const UniformBlockSize = 3*64 + 3*16
