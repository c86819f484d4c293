package scene

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	gomath "math"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/require"
)

// docBuilder assembles a single-buffer glTF document in memory.
type docBuilder struct {
	doc *gltf.Document
	buf []byte
}

func newDocBuilder() *docBuilder {
	return &docBuilder{doc: &gltf.Document{
		Asset:   gltf.Asset{Version: "2.0"},
		Buffers: []*gltf.Buffer{{}},
	}}
}

// view appends raw bytes as a new buffer view, 4-byte aligned.
func (b *docBuilder) view(data []byte, stride int) int {
	for len(b.buf)%4 != 0 {
		b.buf = append(b.buf, 0)
	}
	b.doc.BufferViews = append(b.doc.BufferViews, &gltf.BufferView{
		Buffer:     0,
		ByteOffset: len(b.buf),
		ByteLength: len(data),
		ByteStride: stride,
	})
	b.buf = append(b.buf, data...)
	return len(b.doc.BufferViews) - 1
}

func (b *docBuilder) accessor(view int, ct gltf.ComponentType, at gltf.AccessorType, count int) int {
	b.doc.Accessors = append(b.doc.Accessors, &gltf.Accessor{
		BufferView:    gltf.Index(view),
		ComponentType: ct,
		Type:          at,
		Count:         count,
	})
	return len(b.doc.Accessors) - 1
}

func (b *docBuilder) floats(at gltf.AccessorType, vals ...float32) int {
	data := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(data[4*i:], gomath.Float32bits(v))
	}
	return b.accessor(b.view(data, 0), gltf.ComponentFloat, at, len(vals)/at.Components())
}

func (b *docBuilder) ubytes(at gltf.AccessorType, vals ...uint8) int {
	return b.accessor(b.view(append([]byte(nil), vals...), 0), gltf.ComponentUbyte, at, len(vals)/at.Components())
}

func (b *docBuilder) ushorts(at gltf.AccessorType, vals ...uint16) int {
	data := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint16(data[2*i:], v)
	}
	return b.accessor(b.view(data, 0), gltf.ComponentUshort, at, len(vals)/at.Components())
}

func (b *docBuilder) uints(vals ...uint32) int {
	data := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(data[4*i:], v)
	}
	return b.accessor(b.view(data, 0), gltf.ComponentUint, gltf.AccessorScalar, len(vals))
}

// mesh adds a mesh holding the given primitives and a node referencing it.
func (b *docBuilder) mesh(name string, prims ...*gltf.Primitive) int {
	b.doc.Meshes = append(b.doc.Meshes, &gltf.Mesh{Name: name, Primitives: prims})
	mi := len(b.doc.Meshes) - 1
	b.node(mi)
	return mi
}

func (b *docBuilder) node(mesh int) {
	b.doc.Nodes = append(b.doc.Nodes, &gltf.Node{Mesh: gltf.Index(mesh)})
}

// texturedMaterial embeds a w x h PNG and returns a material using it as base colour.
func (b *docBuilder) texturedMaterial(t *testing.T, w, h int, c color.RGBA) int {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var enc bytes.Buffer
	require.NoError(t, png.Encode(&enc, img))

	bv := b.view(enc.Bytes(), 0)
	b.doc.Images = append(b.doc.Images, &gltf.Image{MimeType: "image/png", BufferView: gltf.Index(bv)})
	b.doc.Textures = append(b.doc.Textures, &gltf.Texture{Source: gltf.Index(len(b.doc.Images) - 1)})
	return b.material(len(b.doc.Textures) - 1)
}

func (b *docBuilder) material(texture int) int {
	b.doc.Materials = append(b.doc.Materials, &gltf.Material{
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorTexture: &gltf.TextureInfo{Index: texture},
		},
	})
	return len(b.doc.Materials) - 1
}

func (b *docBuilder) build() *gltf.Document {
	b.doc.Buffers[0].Data = b.buf
	b.doc.Buffers[0].ByteLength = len(b.buf)
	return b.doc
}

// triangle returns a builder with positions for 3 vertices already added.
func triangle() (*docBuilder, int) {
	b := newDocBuilder()
	pos := b.floats(gltf.AccessorVec3,
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	)
	return b, pos
}
