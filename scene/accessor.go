package scene

import (
	"fmt"
	gomath "math"
	"reflect"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"autumn3d/core"
	"autumn3d/math"
)

// Semantic names a primitive attribute channel.
type Semantic string

const (
	Position  Semantic = "POSITION"
	Normal    Semantic = "NORMAL"
	TexCoord0 Semantic = "TEXCOORD_0"
	Tangent   Semantic = "TANGENT"
	Bitangent Semantic = "BITANGENT"
	Joints0   Semantic = "JOINTS_0"
	Weights0  Semantic = "WEIGHTS_0"
)

// Arity is the number of components a vertex field takes from the channel.
func (s Semantic) Arity() int {
	switch s {
	case TexCoord0:
		return 2
	case Joints0, Weights0:
		return core.MaxBoneInfluences
	default:
		return 3
	}
}

// partial reports whether the accessor may supply fewer components than
// Arity. Missing bone slots are zero-filled by the importer.
func (s Semantic) partial() bool {
	return s == Joints0 || s == Weights0
}

func (s Semantic) integer() bool {
	return s == Joints0
}

// View is a read-only, decoded window over accessor data. A view over an
// accessor without a buffer view reads as all zeros.
type View struct {
	// values holds count*components decoded components, normalized
	// integers already mapped to floats. Nil for zero views.
	values     []float64
	count      int
	components int
	arity      int
}

// Len returns the number of elements.
func (v View) Len() int { return v.count }

// Arity returns the number of readable components per element.
func (v View) Arity() int { return v.arity }

// Float reads component c of element i.
func (v View) Float(i, c int) float32 {
	if v.values == nil {
		return 0
	}
	return float32(v.values[i*v.components+c])
}

// Uint reads component c of element i as an unsigned integer. Only valid
// for views resolved with an integer component type.
func (v View) Uint(i, c int) uint32 {
	if v.values == nil {
		return 0
	}
	return uint32(v.values[i*v.components+c])
}

func (v View) Vec3(i int) math.Vec3 {
	return math.Vec3{X: v.Float(i, 0), Y: v.Float(i, 1), Z: v.Float(i, 2)}
}

func (v View) Vec2(i int) math.Vec2 {
	return math.Vec2{X: v.Float(i, 0), Y: v.Float(i, 1)}
}

// Resolver turns accessor references into views over a document's buffers.
type Resolver struct {
	doc *gltf.Document
}

func NewResolver(doc *gltf.Document) *Resolver {
	return &Resolver{doc: doc}
}

// Attribute resolves a semantic from a primitive's attribute map. ok is
// false when the primitive does not declare the semantic. POSITION must be
// backed by a buffer view since it sizes the vertex array.
func (r *Resolver) Attribute(attrs map[string]int, sem Semantic) (view View, ok bool, err error) {
	idx, ok := attrs[string(sem)]
	if !ok {
		return View{}, false, nil
	}
	minArity := sem.Arity()
	if sem.partial() {
		minArity = 1
	}
	view, err = r.resolve(idx, resolveOpts{
		minArity: minArity,
		maxArity: sem.Arity(),
		integer:  sem.integer(),
		backed:   sem == Position,
	})
	return view, true, err
}

// Indices resolves an index accessor. It must be backed by a buffer view.
func (r *Resolver) Indices(accessor int) (View, error) {
	return r.resolve(accessor, resolveOpts{minArity: 1, maxArity: 1, integer: true, backed: true})
}

type resolveOpts struct {
	minArity, maxArity int
	// integer requires an unsigned integer component type.
	integer bool
	// backed rejects accessors without a buffer view.
	backed bool
}

// resolve validates accessor -> buffer view -> buffer, then decodes the
// accessor. No decoding happens before every bound is known to hold.
func (r *Resolver) resolve(index int, opts resolveOpts) (View, error) {
	if index < 0 || index >= len(r.doc.Accessors) {
		return View{}, fmt.Errorf("%w: accessor %d of %d", core.ErrOutOfRange, index, len(r.doc.Accessors))
	}
	acc := r.doc.Accessors[index]
	if acc == nil {
		return View{}, fmt.Errorf("%w: accessor %d is null", core.ErrAssetLoad, index)
	}
	if acc.Sparse != nil {
		return View{}, fmt.Errorf("%w: sparse accessor %d", core.ErrUnsupported, index)
	}

	switch acc.Type {
	case gltf.AccessorScalar, gltf.AccessorVec2, gltf.AccessorVec3, gltf.AccessorVec4:
	default:
		return View{}, fmt.Errorf("%w: accessor %d type %v", core.ErrUnsupported, index, acc.Type)
	}
	switch acc.ComponentType {
	case gltf.ComponentByte, gltf.ComponentUbyte, gltf.ComponentShort, gltf.ComponentUshort, gltf.ComponentUint, gltf.ComponentFloat:
	default:
		return View{}, fmt.Errorf("%w: accessor %d component type %v", core.ErrUnsupported, index, acc.ComponentType)
	}
	components := acc.Type.Components()
	if components < opts.minArity {
		return View{}, fmt.Errorf("%w: accessor %d has %d components, need %d", core.ErrUnsupported, index, components, opts.minArity)
	}
	if opts.integer && !isUnsigned(acc.ComponentType) {
		return View{}, fmt.Errorf("%w: accessor %d component type %v is not an unsigned integer", core.ErrUnsupported, index, acc.ComponentType)
	}
	if acc.Count < 0 || acc.ByteOffset < 0 {
		return View{}, fmt.Errorf("%w: accessor %d count %d offset %d", core.ErrAssetLoad, index, acc.Count, acc.ByteOffset)
	}

	view := View{
		count:      acc.Count,
		components: components,
		arity:      min(components, opts.maxArity),
	}
	if acc.BufferView == nil {
		if opts.backed && acc.Count > 0 {
			return View{}, fmt.Errorf("%w: accessor %d has no buffer view", core.ErrUnsupported, index)
		}
		return view, nil
	}
	if acc.Count == 0 {
		return view, nil
	}

	bvIdx := *acc.BufferView
	bv, _, err := bufferView(r.doc, bvIdx)
	if err != nil {
		return View{}, fmt.Errorf("accessor %d: %w", index, err)
	}

	elemSize := gltf.SizeOfElement(acc.ComponentType, acc.Type)
	stride := elemSize
	if bv.ByteStride != 0 {
		if bv.ByteStride < elemSize {
			return View{}, fmt.Errorf("%w: buffer view %d stride %d smaller than element size %d", core.ErrAssetLoad, bvIdx, bv.ByteStride, elemSize)
		}
		stride = bv.ByteStride
	}

	// Bytes available for elements after the first, relative to the
	// accessor start. Compared by division so large counts cannot wrap.
	room := bv.ByteLength - acc.ByteOffset - elemSize
	if room < 0 || acc.Count-1 > room/stride {
		return View{}, fmt.Errorf("%w: accessor %d with %d elements of stride %d at offset %d exceeds buffer view %d of %d bytes",
			core.ErrOutOfRange, index, acc.Count, stride, acc.ByteOffset, bvIdx, bv.ByteLength)
	}

	data, err := modeler.ReadAccessor(r.doc, acc, nil)
	if err != nil {
		return View{}, fmt.Errorf("%w: accessor %d: %v", core.ErrAssetLoad, index, err)
	}
	values, err := flatten(data, acc.Count, components, acc.Normalized && !opts.integer)
	if err != nil {
		return View{}, fmt.Errorf("%w: accessor %d: %v", core.ErrAssetLoad, index, err)
	}
	view.values = values
	return view, nil
}

// bufferView returns a validated buffer view and the bytes it spans.
func bufferView(doc *gltf.Document, idx int) (*gltf.BufferView, []byte, error) {
	if idx < 0 || idx >= len(doc.BufferViews) {
		return nil, nil, fmt.Errorf("%w: buffer view %d of %d", core.ErrOutOfRange, idx, len(doc.BufferViews))
	}
	bv := doc.BufferViews[idx]
	if bv == nil {
		return nil, nil, fmt.Errorf("%w: buffer view %d is null", core.ErrAssetLoad, idx)
	}
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) || doc.Buffers[bv.Buffer] == nil {
		return nil, nil, fmt.Errorf("%w: buffer view %d references buffer %d of %d", core.ErrOutOfRange, idx, bv.Buffer, len(doc.Buffers))
	}
	buf := doc.Buffers[bv.Buffer]
	if bv.ByteOffset < 0 || bv.ByteLength < 0 || bv.ByteOffset > len(buf.Data)-bv.ByteLength {
		return nil, nil, fmt.Errorf("%w: buffer view %d at offset %d with %d bytes, buffer %d has %d bytes",
			core.ErrOutOfRange, idx, bv.ByteOffset, bv.ByteLength, bv.Buffer, len(buf.Data))
	}
	return bv, buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], nil
}

// flatten copies the typed slice returned by the modeler ([]uint16,
// [][3]float32, [][4]uint8, ...) into count*components float64 values.
// float64 holds every float32 and uint32 component exactly.
func flatten(data any, count, components int, normalized bool) ([]float64, error) {
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice || rv.Len() < count {
		return nil, fmt.Errorf("decoded %T does not hold %d elements", data, count)
	}
	out := make([]float64, 0, count*components)
	for i := 0; i < count; i++ {
		e := rv.Index(i)
		if e.Kind() != reflect.Array {
			out = append(out, component(e, normalized))
			continue
		}
		for c := 0; c < components; c++ {
			out = append(out, component(e.Index(c), normalized))
		}
	}
	return out, nil
}

// component converts one scalar, mapping normalized integers to [0,1] or [-1,1].
func component(v reflect.Value, normalized bool) float64 {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		u := float64(v.Uint())
		if !normalized {
			return u
		}
		switch v.Kind() {
		case reflect.Uint8:
			return u / gomath.MaxUint8
		case reflect.Uint16:
			return u / gomath.MaxUint16
		}
		return u
	case reflect.Int8, reflect.Int16:
		s := float64(v.Int())
		if !normalized {
			return s
		}
		if v.Kind() == reflect.Int8 {
			return max(s/gomath.MaxInt8, -1)
		}
		return max(s/gomath.MaxInt16, -1)
	}
	return 0
}

func isUnsigned(c gltf.ComponentType) bool {
	return c == gltf.ComponentUbyte || c == gltf.ComponentUshort || c == gltf.ComponentUint
}
