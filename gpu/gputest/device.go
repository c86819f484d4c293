// Package gputest provides an in-memory gpu.Device for tests.
package gputest

import (
	"fmt"

	"autumn3d/core"
	"autumn3d/gpu"
	"autumn3d/math"
)

// Draw records one draw call.
type Draw struct {
	VAO     uint32
	Count   int
	Indexed bool
	// Textures maps texture unit to the texture bound there at draw time.
	Textures map[int]uint32
}

// Texture records one TexImage2D call.
type Texture struct {
	Width, Height int
	Params        gpu.SamplerParams
}

// Device records every call and hands out increasing handles. Set a Fail*
// field to make the matching Gen call return 0.
type Device struct {
	FailVertexArray bool
	FailBuffer      bool
	FailTexture     bool
	FailProgram     error
	// BufferLimit, when positive, fails GenBuffer once that many buffers
	// have been created.
	BufferLimit     int

	// Uniforms are the names the compiled program exposes. Nil accepts any name.
	Uniforms []string

	next    uint32
	buffers int

	VertexArrays map[uint32]bool
	Buffers      map[uint32]bool
	Textures     map[uint32]Texture
	Attribs      []gpu.Attribute
	Vertices     map[uint32]int
	Indices      map[uint32][]uint32

	Program   uint32
	InUse     uint32
	Mat4s     map[string]math.Mat4
	Ints      map[string]int32
	Viewports [][2]int
	Clears    []core.Color
	Draws     []Draw
	// Calls is the ordered list of frame-level calls, e.g. "clear", "use", "draw".
	Calls []string

	bound     map[int]uint32
	locations map[int32]string
}

func New() *Device {
	return &Device{
		VertexArrays: make(map[uint32]bool),
		Buffers:      make(map[uint32]bool),
		Textures:     make(map[uint32]Texture),
		Vertices:     make(map[uint32]int),
		Indices:      make(map[uint32][]uint32),
		Mat4s:        make(map[string]math.Mat4),
		Ints:         make(map[string]int32),
		bound:        make(map[int]uint32),
		locations:    make(map[int32]string),
	}
}

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

func (d *Device) GenVertexArray() uint32 {
	if d.FailVertexArray {
		return 0
	}
	h := d.handle()
	d.VertexArrays[h] = true
	return h
}

func (d *Device) GenBuffer() uint32 {
	if d.FailBuffer || (d.BufferLimit > 0 && d.buffers >= d.BufferLimit) {
		return 0
	}
	d.buffers++
	h := d.handle()
	d.Buffers[h] = true
	return h
}

func (d *Device) BindVertexArray(uint32) {}

func (d *Device) BufferVertices(vbo uint32, vertices []core.Vertex) {
	d.Vertices[vbo] = len(vertices)
}

func (d *Device) BufferIndices(ebo uint32, indices []uint32) {
	d.Indices[ebo] = append([]uint32(nil), indices...)
}

func (d *Device) VertexAttrib(attr gpu.Attribute, _ int32) {
	d.Attribs = append(d.Attribs, attr)
}

func (d *Device) DeleteVertexArray(vao uint32) { delete(d.VertexArrays, vao) }
func (d *Device) DeleteBuffer(buf uint32)      { delete(d.Buffers, buf) }

func (d *Device) GenTexture() uint32 {
	if d.FailTexture {
		return 0
	}
	h := d.handle()
	d.Textures[h] = Texture{}
	return h
}

func (d *Device) TexImage2D(tex uint32, width, height int, _ []byte, params gpu.SamplerParams) {
	d.Textures[tex] = Texture{Width: width, Height: height, Params: params}
}

func (d *Device) BindTexture(unit int, tex uint32) { d.bound[unit] = tex }
func (d *Device) DeleteTexture(tex uint32)         { delete(d.Textures, tex) }

func (d *Device) CompileProgram(_, _ string) (uint32, error) {
	if d.FailProgram != nil {
		return 0, d.FailProgram
	}
	d.Program = d.handle()
	return d.Program, nil
}

func (d *Device) UseProgram(program uint32) {
	d.InUse = program
	d.Calls = append(d.Calls, "use")
}

func (d *Device) UniformLocation(program uint32, name string) int32 {
	if program != d.Program {
		return -1
	}
	if d.Uniforms != nil {
		found := false
		for _, u := range d.Uniforms {
			found = found || u == name
		}
		if !found {
			return -1
		}
	}
	for loc, n := range d.locations {
		if n == name {
			return loc
		}
	}
	loc := int32(len(d.locations))
	d.locations[loc] = name
	return loc
}

func (d *Device) UniformMat4(location int32, m math.Mat4) {
	d.Mat4s[d.name(location)] = m
}

func (d *Device) Uniform1i(location int32, v int32) {
	d.Ints[d.name(location)] = v
}

func (d *Device) name(location int32) string {
	if n, ok := d.locations[location]; ok {
		return n
	}
	return fmt.Sprintf("location%d", location)
}

func (d *Device) DeleteProgram(program uint32) {
	if d.Program == program {
		d.Program = 0
	}
}

func (d *Device) Viewport(width, height int) {
	d.Viewports = append(d.Viewports, [2]int{width, height})
}

func (d *Device) Clear(c core.Color) {
	d.Clears = append(d.Clears, c)
	d.Calls = append(d.Calls, "clear")
}

func (d *Device) DrawElements(vao uint32, count int) { d.draw(vao, count, true) }
func (d *Device) DrawArrays(vao uint32, count int)   { d.draw(vao, count, false) }

func (d *Device) draw(vao uint32, count int, indexed bool) {
	textures := make(map[int]uint32, len(d.bound))
	for unit, tex := range d.bound {
		textures[unit] = tex
	}
	d.Draws = append(d.Draws, Draw{VAO: vao, Count: count, Indexed: indexed, Textures: textures})
	d.Calls = append(d.Calls, "draw")
}

// Live reports how many device objects have not been deleted.
func (d *Device) Live() int {
	n := len(d.VertexArrays) + len(d.Buffers) + len(d.Textures)
	if d.Program != 0 {
		n++
	}
	return n
}

var _ gpu.Device = (*Device)(nil)
