package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"autumn3d/core"
	"autumn3d/gpu"
	"autumn3d/internal/logger"
	"autumn3d/math"
)

// Device implements gpu.Device on an OpenGL 4.1 core context.
type Device struct {
	log *zap.Logger
}

// NewDevice loads the GL function pointers and sets fixed pipeline state.
// Must be called after the window's context is made current, on the same
// OS thread.
func NewDevice() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	d := &Device{log: logger.Named("opengl")}
	d.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	return d, nil
}

func (d *Device) GenVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (d *Device) GenBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

func (d *Device) BindVertexArray(vao uint32) {
	gl.BindVertexArray(vao)
}

// BufferVertices fills vbo and leaves it bound to ARRAY_BUFFER for the
// attribute pointers that follow.
func (d *Device) BufferVertices(vbo uint32, vertices []core.Vertex) {
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	var ptr unsafe.Pointer
	if len(vertices) > 0 {
		ptr = gl.Ptr(vertices)
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(gpu.VertexStride), ptr, gl.STATIC_DRAW)
}

// BufferIndices fills ebo. The binding is recorded in the bound vertex array.
func (d *Device) BufferIndices(ebo uint32, indices []uint32) {
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	var ptr unsafe.Pointer
	if len(indices) > 0 {
		ptr = gl.Ptr(indices)
	}
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, ptr, gl.STATIC_DRAW)
}

func (d *Device) VertexAttrib(attr gpu.Attribute, stride int32) {
	gl.EnableVertexAttribArray(attr.Slot)
	switch attr.Type {
	case gpu.AttribInt:
		gl.VertexAttribIPointer(attr.Slot, attr.Size, gl.INT, stride, gl.PtrOffset(int(attr.Offset)))
	default:
		gl.VertexAttribPointer(attr.Slot, attr.Size, gl.FLOAT, false, stride, gl.PtrOffset(int(attr.Offset)))
	}
}

func (d *Device) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }
func (d *Device) DeleteBuffer(buf uint32)      { gl.DeleteBuffers(1, &buf) }

func (d *Device) GenTexture() uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	return tex
}

// TexImage2D uploads RGBA8 pixels to tex and applies the sampler params.
func (d *Device) TexImage2D(tex uint32, width, height int, pixels []byte, params gpu.SamplerParams) {
	gl.BindTexture(gl.TEXTURE_2D, tex)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrapMode(params.WrapS))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrapMode(params.WrapT))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filterMode(params.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filterMode(params.MagFilter))

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(width),
		int32(height),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		unsafe.Pointer(&pixels[0]),
	)
	if params.Mipmaps {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}

	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (d *Device) BindTexture(unit int, tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, tex)
}

func (d *Device) DeleteTexture(tex uint32) { gl.DeleteTextures(1, &tex) }

func (d *Device) CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	return compileProgram(vertexSrc, fragmentSrc)
}

func (d *Device) UseProgram(program uint32) { gl.UseProgram(program) }

func (d *Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

// UniformMat4 uploads a column-major matrix as is (transpose=false).
func (d *Device) UniformMat4(location int32, m math.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0][0])
}

func (d *Device) Uniform1i(location int32, v int32) { gl.Uniform1i(location, v) }

func (d *Device) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (d *Device) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *Device) Clear(c core.Color) {
	gl.ClearColor(c.R, c.G, c.B, c.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Device) DrawElements(vao uint32, count int) {
	gl.BindVertexArray(vao)
	gl.DrawElements(gl.TRIANGLES, int32(count), gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

func (d *Device) DrawArrays(vao uint32, count int) {
	gl.BindVertexArray(vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(count))
	gl.BindVertexArray(0)
}

func wrapMode(w gpu.Wrap) int32 {
	switch w {
	case gpu.WrapClampToEdge:
		return gl.CLAMP_TO_EDGE
	default:
		return gl.REPEAT
	}
}

func filterMode(f gpu.Filter) int32 {
	switch f {
	case gpu.FilterNearest:
		return gl.NEAREST
	case gpu.FilterLinearMipmapLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	default:
		return gl.LINEAR
	}
}

var _ gpu.Device = (*Device)(nil)
