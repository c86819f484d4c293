package core

import (
	"errors"
	"fmt"
	"strings"
)

// Asset errors abort the import of one model.
var (
	ErrAssetLoad        = errors.New("asset load failure")
	ErrMissingAttribute = errors.New("required attribute missing")
	ErrOutOfRange       = errors.New("buffer access out of range")
	ErrUnsupported      = errors.New("unsupported accessor layout")
)

// Device errors fail the operation that was attempted.
var (
	ErrUpload          = errors.New("upload failure")
	ErrAlreadyUploaded = errors.New("mesh already uploaded")
	ErrMissingUniform  = errors.New("shader uniform not found")
	ErrInvalidState    = errors.New("invalid renderer state")
)

// ErrInvalidDirection is recovered locally by the caller.
var ErrInvalidDirection = errors.New("invalid movement direction")

// AssetError locates an import failure inside a scene file. Mesh and
// Primitive are -1 when the failure is not scoped to one of them.
type AssetError struct {
	Path      string
	Mesh      int
	Primitive int
	Attribute string
	Err       error
}

func (e *AssetError) Error() string {
	var b strings.Builder
	b.WriteString("import")
	if e.Path != "" {
		fmt.Fprintf(&b, " %q", e.Path)
	}
	if e.Mesh >= 0 {
		fmt.Fprintf(&b, " mesh %d", e.Mesh)
	}
	if e.Primitive >= 0 {
		fmt.Fprintf(&b, " primitive %d", e.Primitive)
	}
	if e.Attribute != "" {
		fmt.Fprintf(&b, " attribute %s", e.Attribute)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *AssetError) Unwrap() error { return e.Err }

// DeviceError reports a failed graphics device operation.
type DeviceError struct {
	Op   string
	Mesh string
	Err  error
}

func (e *DeviceError) Error() string {
	if e.Mesh != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Mesh, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// InputError reports an unrecognized camera movement.
type InputError struct {
	Direction Direction
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%v: %d", ErrInvalidDirection, int(e.Direction))
}

func (e *InputError) Unwrap() error { return ErrInvalidDirection }
