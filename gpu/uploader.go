package gpu

import (
	"fmt"

	"go.uber.org/zap"

	"autumn3d/core"
	"autumn3d/internal/logger"
	"autumn3d/scene"
)

// Uploader moves imported meshes and images onto a Device.
type Uploader struct {
	dev Device
	log *zap.Logger
}

func NewUploader(dev Device) *Uploader {
	return &Uploader{dev: dev, log: logger.Named("gpu")}
}

// UploadModel uploads every image of the model once, then every mesh.
// Each mesh receives one texture record per referenced image, in the order
// the mesh references them, all tagged scene.TextureDiffuse.
func (u *Uploader) UploadModel(model *scene.Model) error {
	textures := make([]uint32, len(model.Images))
	for i, img := range model.Images {
		tex, err := u.UploadImage(img)
		if err != nil {
			u.deleteTextures(textures[:i])
			return err
		}
		textures[i] = tex
	}

	for mi, mesh := range model.Meshes {
		if err := u.UploadMesh(mesh); err != nil {
			for _, done := range model.Meshes[:mi] {
				done.Textures = nil
				u.releaseMesh(done)
			}
			u.deleteTextures(textures)
			return err
		}
		mesh.Textures = make([]scene.Texture, 0, len(mesh.Images))
		for _, slot := range mesh.Images {
			mesh.Textures = append(mesh.Textures, scene.Texture{Handle: textures[slot], Type: scene.TextureDiffuse})
		}
	}

	u.log.Info("model uploaded",
		zap.Int("meshes", len(model.Meshes)),
		zap.Int("textures", len(textures)),
	)
	return nil
}

// UploadMesh creates the vertex array, vertex buffer and, for indexed
// meshes, the index buffer of a mesh and records the vertex layout.
// Handles are assigned once; a second upload fails with ErrAlreadyUploaded.
func (u *Uploader) UploadMesh(mesh *scene.Mesh) error {
	fail := func(err error) error {
		return &core.DeviceError{Op: "upload", Mesh: mesh.Name, Err: err}
	}
	if mesh.GPU.Uploaded() {
		return fail(core.ErrAlreadyUploaded)
	}

	var h scene.Handles
	cleanup := func() {
		if h.EBO != 0 {
			u.dev.DeleteBuffer(h.EBO)
		}
		if h.VBO != 0 {
			u.dev.DeleteBuffer(h.VBO)
		}
		if h.VAO != 0 {
			u.dev.DeleteVertexArray(h.VAO)
		}
	}

	if h.VAO = u.dev.GenVertexArray(); h.VAO == 0 {
		return fail(fmt.Errorf("%w: vertex array", core.ErrUpload))
	}
	if h.VBO = u.dev.GenBuffer(); h.VBO == 0 {
		cleanup()
		return fail(fmt.Errorf("%w: vertex buffer", core.ErrUpload))
	}
	if mesh.Indexed() {
		if h.EBO = u.dev.GenBuffer(); h.EBO == 0 {
			cleanup()
			return fail(fmt.Errorf("%w: index buffer", core.ErrUpload))
		}
	}

	u.dev.BindVertexArray(h.VAO)
	u.dev.BufferVertices(h.VBO, mesh.Vertices)
	if mesh.Indexed() {
		u.dev.BufferIndices(h.EBO, mesh.Indices)
	}
	for _, attr := range VertexLayout {
		u.dev.VertexAttrib(attr, VertexStride)
	}
	u.dev.BindVertexArray(0)

	mesh.GPU = h
	u.log.Debug("mesh uploaded",
		zap.String("mesh", mesh.Name),
		zap.Uint32("vao", h.VAO),
		zap.Uint32("vbo", h.VBO),
		zap.Uint32("ebo", h.EBO),
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("indices", len(mesh.Indices)),
	)
	return nil
}

// UploadImage creates a 2D texture from an RGBA8 image.
func (u *Uploader) UploadImage(img scene.Image) (uint32, error) {
	if want := img.Width * img.Height * 4; img.Width <= 0 || img.Height <= 0 || len(img.Pixels) != want {
		return 0, &core.DeviceError{Op: "upload texture", Mesh: img.Name,
			Err: fmt.Errorf("%w: %dx%d image with %d bytes", core.ErrUpload, img.Width, img.Height, len(img.Pixels))}
	}
	tex := u.dev.GenTexture()
	if tex == 0 {
		return 0, &core.DeviceError{Op: "upload texture", Mesh: img.Name, Err: fmt.Errorf("%w: texture", core.ErrUpload)}
	}
	u.dev.TexImage2D(tex, img.Width, img.Height, img.Pixels, DiffuseSampler)
	u.log.Debug("texture uploaded", zap.String("image", img.Name), zap.Uint32("texture", tex))
	return tex, nil
}

// ReleaseModel deletes every device object created by UploadModel and
// clears the handles so the model could be uploaded again.
func (u *Uploader) ReleaseModel(model *scene.Model) {
	seen := make(map[uint32]bool)
	for _, mesh := range model.Meshes {
		for _, t := range mesh.Textures {
			if !seen[t.Handle] {
				seen[t.Handle] = true
				u.dev.DeleteTexture(t.Handle)
			}
		}
		mesh.Textures = nil
		u.releaseMesh(mesh)
	}
}

func (u *Uploader) releaseMesh(mesh *scene.Mesh) {
	if !mesh.GPU.Uploaded() {
		return
	}
	if mesh.GPU.EBO != 0 {
		u.dev.DeleteBuffer(mesh.GPU.EBO)
	}
	u.dev.DeleteBuffer(mesh.GPU.VBO)
	u.dev.DeleteVertexArray(mesh.GPU.VAO)
	mesh.GPU = scene.Handles{}
}

func (u *Uploader) deleteTextures(textures []uint32) {
	for _, tex := range textures {
		if tex != 0 {
			u.dev.DeleteTexture(tex)
		}
	}
}
