package scene

import (
	"autumn3d/core"
	reMath "autumn3d/math"
)

// Camera defaults.
const (
	DefaultYaw         = -90.0
	DefaultPitch       = 0.0
	DefaultSpeed       = 2.5
	DefaultSensitivity = 0.1
	DefaultZoom        = 45.0

	MinZoom  = 1.0
	MaxZoom  = 45.0
	maxPitch = 89.0

	NearPlane = 0.1
	FarPlane  = 100.0
)

// Camera is a fly camera driven by Euler angles. Yaw and pitch are the
// authoritative orientation; front, right and up are derived from them
// whenever they change.
type Camera struct {
	Position         reMath.Vec3
	WorldUp          reMath.Vec3
	MovementSpeed    float32
	MouseSensitivity float32

	yaw   float32
	pitch float32
	zoom  float32

	front reMath.Vec3
	right reMath.Vec3
	up    reMath.Vec3
}

func NewCamera(position reMath.Vec3) *Camera {
	c := &Camera{
		Position:         position,
		WorldUp:          reMath.Vec3Up,
		MovementSpeed:    DefaultSpeed,
		MouseSensitivity: DefaultSensitivity,
		yaw:              DefaultYaw,
		pitch:            DefaultPitch,
		zoom:             DefaultZoom,
	}
	c.updateVectors()
	return c
}

func (c *Camera) Yaw() float32   { return c.yaw }
func (c *Camera) Pitch() float32 { return c.pitch }

// Zoom is the vertical field of view in degrees.
func (c *Camera) Zoom() float32 { return c.zoom }

func (c *Camera) Front() reMath.Vec3 { return c.front }
func (c *Camera) Right() reMath.Vec3 { return c.right }
func (c *Camera) Up() reMath.Vec3    { return c.up }

// SetZoom sets the field of view, clamped to [MinZoom, MaxZoom].
func (c *Camera) SetZoom(zoom float32) {
	c.zoom = reMath.Clamp(zoom, MinZoom, MaxZoom)
}

// ViewMatrix looks from Position along Front.
func (c *Camera) ViewMatrix() reMath.Mat4 {
	return reMath.Mat4LookAt(c.Position, c.Position.Add(c.front), c.up)
}

// ProjectionMatrix builds the perspective for a viewport of the given size.
// A degenerate (minimized) viewport is treated as square.
func (c *Camera) ProjectionMatrix(width, height int) reMath.Mat4 {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	return reMath.Mat4Perspective(reMath.Radians(c.zoom), aspect, NearPlane, FarPlane)
}

// ProcessKeyboard moves the camera along its basis, scaled by elapsed
// seconds. An unknown direction leaves the camera untouched.
func (c *Camera) ProcessKeyboard(direction core.Direction, deltaTime float32) error {
	velocity := c.MovementSpeed * deltaTime
	switch direction {
	case core.Forward:
		c.Position = c.Position.Add(c.front.Mul(velocity))
	case core.Backward:
		c.Position = c.Position.Sub(c.front.Mul(velocity))
	case core.Left:
		c.Position = c.Position.Sub(c.right.Mul(velocity))
	case core.Right:
		c.Position = c.Position.Add(c.right.Mul(velocity))
	default:
		return &core.InputError{Direction: direction}
	}
	return nil
}

// ProcessMouseMovement turns the camera by cursor offsets in pixels.
func (c *Camera) ProcessMouseMovement(xoffset, yoffset float32, constrainPitch bool) {
	c.yaw += xoffset * c.MouseSensitivity
	c.pitch += yoffset * c.MouseSensitivity

	if constrainPitch {
		c.pitch = reMath.Clamp(c.pitch, -maxPitch, maxPitch)
	}
	c.updateVectors()
}

// ProcessMouseScroll narrows or widens the field of view.
func (c *Camera) ProcessMouseScroll(yoffset float32) {
	c.SetZoom(c.zoom - yoffset)
}

func (c *Camera) updateVectors() {
	yaw := reMath.Radians(c.yaw)
	pitch := reMath.Radians(c.pitch)

	c.front = reMath.Vec3{
		X: reMath.Cos(yaw) * reMath.Cos(pitch),
		Y: reMath.Sin(pitch),
		Z: reMath.Sin(yaw) * reMath.Cos(pitch),
	}.Normalize()
	c.right = c.front.Cross(c.WorldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
}
