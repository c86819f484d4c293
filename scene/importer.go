package scene

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"autumn3d/core"
	"autumn3d/internal/logger"
)

// Load opens a .glb or .gltf file and imports it. Any failure aborts the
// whole import: no partial model is returned.
func Load(path string, gamma bool) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, &core.AssetError{
			Path:      path,
			Mesh:      -1,
			Primitive: -1,
			Err:       fmt.Errorf("%w: %v", core.ErrAssetLoad, err),
		}
	}

	model, err := Import(doc, filepath.Dir(path), gamma)
	if err != nil {
		var ae *core.AssetError
		if errors.As(err, &ae) {
			ae.Path = path
		}
		return nil, err
	}
	return model, nil
}

// Import converts a decoded document into a Model. dir resolves image URIs.
//
// Nodes are visited as a flat list: every node that references a mesh adds
// that mesh's primitives once, and node transforms and children are ignored.
// Each primitive becomes its own Mesh.
func Import(doc *gltf.Document, dir string, gamma bool) (*Model, error) {
	imp := &importer{
		doc:      doc,
		resolver: NewResolver(doc),
		dir:      dir,
		images:   make(map[int]int),
		model:    &Model{Directory: dir, GammaCorrection: gamma},
		log:      logger.Named("scene"),
	}

	for ni, node := range doc.Nodes {
		if node == nil || node.Mesh == nil {
			continue
		}
		mi := *node.Mesh
		if mi < 0 || mi >= len(doc.Meshes) || doc.Meshes[mi] == nil {
			return nil, &core.AssetError{Mesh: mi, Primitive: -1,
				Err: fmt.Errorf("%w: node %d references mesh %d of %d", core.ErrOutOfRange, ni, mi, len(doc.Meshes))}
		}
		if err := imp.mesh(mi, doc.Meshes[mi]); err != nil {
			return nil, err
		}
	}

	imp.log.Info("scene imported",
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("meshes", len(imp.model.Meshes)),
		zap.Int("vertices", imp.model.VertexCount()),
		zap.Int("images", len(imp.model.Images)),
	)
	return imp.model, nil
}

type importer struct {
	doc      *gltf.Document
	resolver *Resolver
	dir      string
	// images maps a glTF image index to its slot in model.Images.
	images map[int]int
	model  *Model
	log    *zap.Logger
}

func (imp *importer) mesh(mi int, gm *gltf.Mesh) error {
	for pi, prim := range gm.Primitives {
		if prim == nil {
			continue
		}
		mesh, err := imp.primitive(mi, pi, gm.Name, prim)
		if err != nil {
			return err
		}
		imp.model.Meshes = append(imp.model.Meshes, mesh)
	}
	return nil
}

func (imp *importer) primitive(mi, pi int, meshName string, prim *gltf.Primitive) (*Mesh, error) {
	fail := func(sem Semantic, err error) error {
		return &core.AssetError{Mesh: mi, Primitive: pi, Attribute: string(sem), Err: err}
	}

	positions, ok, err := imp.resolver.Attribute(prim.Attributes, Position)
	if err != nil {
		return nil, fail(Position, err)
	}
	if !ok {
		return nil, fail(Position, core.ErrMissingAttribute)
	}
	count := positions.Len()

	// Optional channels must cover every vertex; absent ones read as zero.
	optional := func(sem Semantic) (View, error) {
		v, ok, err := imp.resolver.Attribute(prim.Attributes, sem)
		if err != nil {
			return View{}, fail(sem, err)
		}
		if !ok {
			return View{}, nil
		}
		if v.Len() < count && !sem.partial() {
			return View{}, fail(sem, fmt.Errorf("%w: %d elements for %d vertices", core.ErrOutOfRange, v.Len(), count))
		}
		return v, nil
	}

	var views [4]View
	for i, sem := range []Semantic{Normal, TexCoord0, Tangent, Bitangent} {
		if views[i], err = optional(sem); err != nil {
			return nil, err
		}
	}
	normals, texCoords, tangents, bitangents := views[0], views[1], views[2], views[3]

	// Bones are only taken when both channels are present.
	var joints, weights View
	_, hasJoints := prim.Attributes[string(Joints0)]
	_, hasWeights := prim.Attributes[string(Weights0)]
	if hasJoints && hasWeights {
		if joints, err = optional(Joints0); err != nil {
			return nil, err
		}
		if weights, err = optional(Weights0); err != nil {
			return nil, err
		}
	} else if hasJoints || hasWeights {
		imp.log.Debug("ignoring unpaired skin channel", zap.Int("mesh", mi), zap.Int("primitive", pi))
	}
	jointSlots := boneSlots(joints)
	weightSlots := boneSlots(weights)

	vertices := make([]core.Vertex, count)
	for i := range vertices {
		v := &vertices[i]
		v.Position = positions.Vec3(i)
		if i < normals.Len() {
			v.Normal = normals.Vec3(i)
		}
		if i < texCoords.Len() {
			v.TexCoords = texCoords.Vec2(i)
		}
		if i < tangents.Len() {
			v.Tangent = tangents.Vec3(i)
		}
		if i < bitangents.Len() {
			v.Bitangent = bitangents.Vec3(i)
		}
		for j := 0; j < core.MaxBoneInfluences; j++ {
			if j < jointSlots && i < joints.Len() {
				v.BoneIDs[j] = int32(joints.Uint(i, j))
			}
			if j < weightSlots && i < weights.Len() {
				v.Weights[j] = weights.Float(i, j)
			}
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		view, err := imp.resolver.Indices(*prim.Indices)
		if err != nil {
			return nil, fail("indices", err)
		}
		indices = make([]uint32, view.Len())
		for i := range indices {
			idx := view.Uint(i, 0)
			if int(idx) >= count {
				return nil, fail("indices", fmt.Errorf("%w: index %d at %d references vertex beyond %d", core.ErrOutOfRange, idx, i, count))
			}
			indices[i] = idx
		}
	}

	name := fmt.Sprintf("%s_p%d", meshName, pi)
	if meshName == "" {
		name = fmt.Sprintf("mesh%d_p%d", mi, pi)
	}
	mesh := &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
	}

	if prim.Material != nil {
		slot, ok, err := imp.baseColorImage(*prim.Material)
		if err != nil {
			return nil, fail("material", err)
		}
		if ok {
			mesh.Images = append(mesh.Images, slot)
		}
	}

	imp.log.Debug("primitive imported",
		zap.String("mesh", name),
		zap.Int("vertices", len(vertices)),
		zap.Int("indices", len(indices)),
		zap.Bool("indexed", mesh.Indexed()),
		zap.Int("images", len(mesh.Images)),
	)
	return mesh, nil
}

// boneSlots is the number of leading bone slots filled from a channel: a
// slot j is populated only while j is below both the accessor's component
// count and its element count. Remaining slots stay 0 / 0.0.
func boneSlots(v View) int {
	return min(v.Arity(), v.Len(), core.MaxBoneInfluences)
}

// baseColorImage returns the model image slot of a material's base-colour
// texture. Other material channels are not imported.
func (imp *importer) baseColorImage(matIdx int) (slot int, ok bool, err error) {
	doc := imp.doc
	if matIdx < 0 || matIdx >= len(doc.Materials) || doc.Materials[matIdx] == nil {
		return 0, false, fmt.Errorf("%w: material %d of %d", core.ErrOutOfRange, matIdx, len(doc.Materials))
	}
	pbr := doc.Materials[matIdx].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorTexture == nil {
		return 0, false, nil
	}

	texIdx := pbr.BaseColorTexture.Index
	if texIdx < 0 || texIdx >= len(doc.Textures) || doc.Textures[texIdx] == nil {
		return 0, false, fmt.Errorf("%w: texture %d of %d", core.ErrOutOfRange, texIdx, len(doc.Textures))
	}
	src := doc.Textures[texIdx].Source
	if src == nil {
		imp.log.Debug("texture without source", zap.Int("texture", texIdx))
		return 0, false, nil
	}
	imgIdx := *src
	if slot, ok := imp.images[imgIdx]; ok {
		return slot, true, nil
	}
	if imgIdx < 0 || imgIdx >= len(doc.Images) || doc.Images[imgIdx] == nil {
		return 0, false, fmt.Errorf("%w: image %d of %d", core.ErrOutOfRange, imgIdx, len(doc.Images))
	}

	gi := doc.Images[imgIdx]
	raw, err := readImage(doc, gi, imp.dir)
	if err != nil {
		return 0, false, fmt.Errorf("%w: image %d: %v", core.ErrAssetLoad, imgIdx, err)
	}
	name := gi.Name
	if name == "" {
		name = fmt.Sprintf("image%d", imgIdx)
	}
	img, err := decodeImage(name, raw)
	if err != nil {
		return 0, false, fmt.Errorf("%w: image %d: %v", core.ErrAssetLoad, imgIdx, err)
	}

	slot = len(imp.model.Images)
	imp.model.Images = append(imp.model.Images, img)
	imp.images[imgIdx] = slot
	return slot, true, nil
}
