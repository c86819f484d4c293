package gpu

import (
	"unsafe"

	"autumn3d/core"
)

// AttribType is the shader-side type of a vertex attribute.
type AttribType int

const (
	// AttribFloat feeds a float vector from float32 components.
	AttribFloat AttribType = iota
	// AttribInt feeds an integer vector. Integer attributes are never
	// normalized or converted to float.
	AttribInt
)

// Attribute describes one slot of the vertex layout.
type Attribute struct {
	Slot   uint32
	Size   int32
	Type   AttribType
	Offset uintptr
}

var lv core.Vertex

// VertexStride is the byte size of one core.Vertex.
const VertexStride = int32(unsafe.Sizeof(core.Vertex{}))

// VertexLayout is the fixed attribute layout every shader consumes:
//
//	0 position   vec3
//	1 normal     vec3
//	2 texcoords  vec2
//	3 tangent    vec3
//	4 bitangent  vec3
//	5 bone ids   ivec4
//	6 weights    vec4
var VertexLayout = [...]Attribute{
	{Slot: 0, Size: 3, Type: AttribFloat, Offset: unsafe.Offsetof(lv.Position)},
	{Slot: 1, Size: 3, Type: AttribFloat, Offset: unsafe.Offsetof(lv.Normal)},
	{Slot: 2, Size: 2, Type: AttribFloat, Offset: unsafe.Offsetof(lv.TexCoords)},
	{Slot: 3, Size: 3, Type: AttribFloat, Offset: unsafe.Offsetof(lv.Tangent)},
	{Slot: 4, Size: 3, Type: AttribFloat, Offset: unsafe.Offsetof(lv.Bitangent)},
	{Slot: 5, Size: core.MaxBoneInfluences, Type: AttribInt, Offset: unsafe.Offsetof(lv.BoneIDs)},
	{Slot: 6, Size: core.MaxBoneInfluences, Type: AttribFloat, Offset: unsafe.Offsetof(lv.Weights)},
}

// Wrap is a texture coordinate wrap mode.
type Wrap int

const (
	WrapRepeat Wrap = iota
	WrapClampToEdge
)

// Filter is a texture sampling filter.
type Filter int

const (
	FilterLinear Filter = iota
	FilterNearest
	FilterLinearMipmapLinear
)

// SamplerParams configure a 2D texture at upload time.
type SamplerParams struct {
	WrapS, WrapT Wrap
	MinFilter    Filter
	MagFilter    Filter
	Mipmaps      bool
}

// DiffuseSampler tiles and samples trilinearly with generated mipmaps.
var DiffuseSampler = SamplerParams{
	WrapS:     WrapRepeat,
	WrapT:     WrapRepeat,
	MinFilter: FilterLinearMipmapLinear,
	MagFilter: FilterLinear,
	Mipmaps:   true,
}
