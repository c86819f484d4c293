package core

import (
	"errors"
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestAssetErrorContext(t *testing.T) {
	err := fmt.Errorf("load: %w", &AssetError{
		Path:      "scene.glb",
		Mesh:      2,
		Primitive: 0,
		Attribute: "POSITION",
		Err:       ErrMissingAttribute,
	})

	assert.ErrorIs(t, err, ErrMissingAttribute)
	assert.Contains(t, err.Error(), `"scene.glb" mesh 2 primitive 0 attribute POSITION`)

	var ae *AssetError
	assert.True(t, errors.As(err, &ae))
	assert.Equal(t, 2, ae.Mesh)
}

func TestAssetErrorOmitsUnscopedFields(t *testing.T) {
	err := &AssetError{Path: "x.glb", Mesh: -1, Primitive: -1, Err: ErrAssetLoad}
	assert.Equal(t, `import "x.glb": asset load failure`, err.Error())
}

func TestDeviceAndInputErrors(t *testing.T) {
	err := &DeviceError{Op: "draw", Mesh: "cube_p0", Err: ErrMissingUniform}
	assert.ErrorIs(t, err, ErrMissingUniform)
	assert.Equal(t, "draw cube_p0: shader uniform not found", err.Error())

	assert.ErrorIs(t, &InputError{Direction: Direction(9)}, ErrInvalidDirection)
}

func TestVertexHasNoPadding(t *testing.T) {
	// 3+3+2+3+3 floats, 4 ints, 4 floats
	assert.Equal(t, uintptr(22*4), unsafe.Sizeof(Vertex{}))
}
