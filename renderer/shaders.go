package renderer

import (
	_ "embed"
)

// Shader sources for the model program. Vertex inputs follow
// gpu.VertexLayout; the matrices are set every frame.
var (
	//go:embed shaders/model.vert
	ModelVertexShader string

	//go:embed shaders/model.frag
	ModelFragmentShader string
)

// Uniform names the render loop sets on the model program.
const (
	UniformProjection = "projectionMatrix"
	UniformView       = "viewMatrix"
	UniformModel      = "modelMatrix"
)
