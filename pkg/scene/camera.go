package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mapstead/overlay3d/pkg/mat"
)

// Camera is derived state: every frame the bridge overwrites projection
// and world transform from host matrices. It has no identity of its own
// beyond the slot it is written into.
type Camera struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3

	projection mgl32.Mat4
}

// NewCamera returns a camera with identity projection and transform.
func NewCamera() *Camera {
	return &Camera{
		Rotation:   mgl32.QuatIdent(),
		Scale:      mgl32.Vec3{1, 1, 1},
		projection: mgl32.Ident4(),
	}
}

// SetProjection sets the projection matrix.
func (c *Camera) SetProjection(m mgl32.Mat4) { c.projection = m }

// Projection returns the current projection matrix.
func (c *Camera) Projection() mgl32.Mat4 { return c.projection }

// SetWorldFromMatrix decomposes m into the camera's position, rotation and
// scale. The matrix must be invertible; a collapsed matrix means the host
// handed over garbage and the frame must not proceed.
func (c *Camera) SetWorldFromMatrix(m mgl32.Mat4) error {
	if _, err := mat.InverseChecked(m); err != nil {
		return fmt.Errorf("camera world matrix: %w", err)
	}
	c.Position, c.Rotation, c.Scale = mat.Decompose(m)
	return nil
}

// WorldMatrix returns the camera's TRS matrix.
func (c *Camera) WorldMatrix() mgl32.Mat4 {
	return mat.Compose(c.Position, c.Rotation, c.Scale)
}

// ViewProjection returns projection * inverse(world).
func (c *Camera) ViewProjection() (mgl32.Mat4, error) {
	view, err := mat.InverseChecked(c.WorldMatrix())
	if err != nil {
		return mgl32.Mat4{}, fmt.Errorf("camera view matrix: %w", err)
	}
	return c.projection.Mul4(view), nil
}
