// Package mat provides matrix helpers on top of mgl32 that the plugin
// needs for camera synchronization: checked inversion and TRS
// decomposition of column-major 4x4 matrices.
package mat

import (
	"errors"
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrSingularMatrix is returned when a matrix has no inverse. Under valid
// host input this never happens; seeing it means the host and plugin
// disagree about the projection contract.
var ErrSingularMatrix = errors.New("matrix is singular, cannot invert")

// detEpsilon is the determinant magnitude below which a matrix is treated
// as singular.
const detEpsilon = 1e-10

// InverseChecked returns the inverse of m, or ErrSingularMatrix when the
// determinant is (numerically) zero. Unlike mgl32.Mat4.Inv, which returns
// the zero matrix for singular input, a failure here is explicit.
func InverseChecked(m mgl32.Mat4) (mgl32.Mat4, error) {
	det := m.Det()
	if gomath.Abs(float64(det)) < detEpsilon {
		return mgl32.Mat4{}, ErrSingularMatrix
	}
	return m.Inv(), nil
}

// Decompose extracts translation, rotation and scale from a TRS matrix.
// A negative determinant is absorbed into a negative X scale so that the
// rotation part stays proper (det +1).
func Decompose(m mgl32.Mat4) (pos mgl32.Vec3, rot mgl32.Quat, scale mgl32.Vec3) {
	pos = mgl32.Vec3{m.At(0, 3), m.At(1, 3), m.At(2, 3)}

	c0 := mgl32.Vec3{m.At(0, 0), m.At(1, 0), m.At(2, 0)}
	c1 := mgl32.Vec3{m.At(0, 1), m.At(1, 1), m.At(2, 1)}
	c2 := mgl32.Vec3{m.At(0, 2), m.At(1, 2), m.At(2, 2)}

	sx := c0.Len()
	sy := c1.Len()
	sz := c2.Len()

	if m.Det() < 0 {
		sx = -sx
	}

	scale = mgl32.Vec3{sx, sy, sz}

	// Guard against zero scale; the rotation is undefined there, fall back
	// to identity rather than dividing by zero.
	if sx == 0 || sy == 0 || sz == 0 {
		return pos, mgl32.QuatIdent(), scale
	}

	r0 := c0.Mul(1 / sx)
	r1 := c1.Mul(1 / sy)
	r2 := c2.Mul(1 / sz)

	rotM := mgl32.Mat4{
		r0.X(), r0.Y(), r0.Z(), 0,
		r1.X(), r1.Y(), r1.Z(), 0,
		r2.X(), r2.Y(), r2.Z(), 0,
		0, 0, 0, 1,
	}
	rot = mgl32.Mat4ToQuat(rotM).Normalize()

	return pos, rot, scale
}

// Compose builds a TRS matrix from translation, rotation and scale.
// It is the inverse of Decompose up to floating-point error.
func Compose(pos mgl32.Vec3, rot mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(pos.X(), pos.Y(), pos.Z())
	r := rot.Normalize().Mat4()
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(r).Mul4(s)
}
