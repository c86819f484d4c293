package core

import (
	"autumn3d/math"
)

// MaxBoneInfluences is the fixed number of joint slots carried by every vertex.
const MaxBoneInfluences = 4

type Color struct {
	R, G, B, A float32
}

var ColorCharcoal = Color{0.05, 0.05, 0.05, 1}

// Vertex is the normalized per-vertex record uploaded verbatim to the GPU.
// Every field is 4 bytes wide so the struct has no padding and its field
// offsets match the attribute layout in package gpu.
type Vertex struct {
	Position  math.Vec3
	Normal    math.Vec3
	TexCoords math.Vec2
	Tangent   math.Vec3
	Bitangent math.Vec3
	BoneIDs   [MaxBoneInfluences]int32
	Weights   [MaxBoneInfluences]float32
}

// Direction is a discrete keyboard-driven camera motion.
type Direction int

const (
	Forward Direction = iota
	Backward
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// Key identifies a keyboard key independently of the windowing backend.
type Key int

const (
	KeyUnknown Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyEscape
)

// InputHandler receives window events. The platform calls it on the
// thread that polls events.
type InputHandler interface {
	OnFramebufferResize(width, height int)
	// OnCursorMove receives absolute cursor coordinates in screen pixels.
	OnCursorMove(x, y float64)
	OnScroll(xoffset, yoffset float64)
}
