package gpu

import (
	"autumn3d/core"
	"autumn3d/math"
)

// Device is the subset of a graphics API the uploader and the render loop
// call into. Object handles are plain numbers and zero means the object
// could not be created. All methods must be called from the thread that
// owns the device context.
type Device interface {
	// Geometry
	GenVertexArray() uint32
	GenBuffer() uint32
	BindVertexArray(vao uint32)
	BufferVertices(vbo uint32, vertices []core.Vertex)
	BufferIndices(ebo uint32, indices []uint32)
	VertexAttrib(attr Attribute, stride int32)
	DeleteVertexArray(vao uint32)
	DeleteBuffer(buf uint32)

	// Textures
	GenTexture() uint32
	TexImage2D(tex uint32, width, height int, pixels []byte, params SamplerParams)
	BindTexture(unit int, tex uint32)
	DeleteTexture(tex uint32)

	// Programs
	CompileProgram(vertexSrc, fragmentSrc string) (uint32, error)
	UseProgram(program uint32)
	// UniformLocation returns -1 when the program has no such uniform.
	UniformLocation(program uint32, name string) int32
	UniformMat4(location int32, m math.Mat4)
	Uniform1i(location int32, v int32)
	DeleteProgram(program uint32)

	// Frame
	Viewport(width, height int)
	Clear(c core.Color)
	DrawElements(vao uint32, count int)
	DrawArrays(vao uint32, count int)
}
