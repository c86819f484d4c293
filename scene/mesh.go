package scene

import (
	"autumn3d/core"
)

// TextureDiffuse is the sampler prefix given to every uploaded image.
const TextureDiffuse = "texture_diffuse"

// Handles are the device objects backing one mesh. Zero means "not created".
type Handles struct {
	VAO uint32
	VBO uint32
	EBO uint32
}

// Uploaded reports whether the mesh has been given device objects.
func (h Handles) Uploaded() bool {
	return h.VAO != 0
}

// Texture is one uploaded image as seen by a mesh.
type Texture struct {
	Handle uint32
	Type   string
}

// Mesh holds one imported primitive. Vertices, Indices and Images are
// fixed at import; GPU and Textures are filled once by the uploader.
type Mesh struct {
	Name     string
	Vertices []core.Vertex
	// Indices is nil when the primitive declares no index accessor; such a
	// mesh is drawn vertex-sequentially.
	Indices []uint32
	// Images indexes Model.Images, in the order the primitive referenced them.
	Images []int

	GPU      Handles
	Textures []Texture
}

// Indexed reports whether the mesh is drawn with an index buffer.
func (m *Mesh) Indexed() bool {
	return m.Indices != nil
}

// Model is everything imported from one scene file.
type Model struct {
	Meshes []*Mesh
	// Images is the arena of decoded images shared by all meshes of the model.
	Images          []Image
	Directory       string
	GammaCorrection bool
}

// VertexCount returns the total number of vertices over all meshes.
func (m *Model) VertexCount() int {
	n := 0
	for _, mesh := range m.Meshes {
		n += len(mesh.Vertices)
	}
	return n
}
