package trs

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats/scalar"
)

// TRS is a translation, rotation and scale triple.
// The rotation is kept at unit length by every constructor and operation.
type TRS struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
	Scale       mgl64.Vec3
}

// Identity returns the transform that leaves every point in place
func Identity() TRS {
	return TRS{
		Translation: mgl64.Vec3{0, 0, 0},
		Rotation:    mgl64.QuatIdent(),
		Scale:       mgl64.Vec3{1, 1, 1},
	}
}

// New creates a transform, normalizing the rotation
func New(translation mgl64.Vec3, rotation mgl64.Quat, scale mgl64.Vec3) TRS {
	return TRS{
		Translation: translation,
		Rotation:    rotation.Normalize(),
		Scale:       scale,
	}
}

// Matrix returns T * R * S, so scale applies first and translation last.
func (t TRS) Matrix() mgl64.Mat4 {
	translation := mgl64.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z())
	scale := mgl64.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translation.Mul4(t.Rotation.Mat4()).Mul4(scale)
}

// Lerp interpolates linearly on translation and scale, and along the shortest arc on rotation.
func (t TRS) Lerp(other TRS, s float64) TRS {
	return TRS{
		Translation: lerpVec3(t.Translation, other.Translation, s),
		Rotation:    Slerp(t.Rotation, other.Rotation, s),
		Scale:       lerpVec3(t.Scale, other.Scale, s),
	}
}

// Slerp is mgl64.QuatSlerp constrained to the shortest arc, with a unit length result.
func Slerp(a, b mgl64.Quat, s float64) mgl64.Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}

	return mgl64.QuatSlerp(a, b, s).Normalize()
}

// ApproxEqual compares translation and scale per component.
// q and -q encode the same rotation, so both signs are accepted.
func (t TRS) ApproxEqual(other TRS, epsilon float64) bool {
	return vec3Equal(t.Translation, other.Translation, epsilon) &&
		vec3Equal(t.Scale, other.Scale, epsilon) &&
		(quatEqual(t.Rotation, other.Rotation, epsilon) || quatEqual(t.Rotation, other.Rotation.Scale(-1), epsilon))
}

func lerpVec3(a, b mgl64.Vec3, s float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(s))
}

func vec3Equal(a, b mgl64.Vec3, epsilon float64) bool {
	return scalar.EqualWithinAbs(a.X(), b.X(), epsilon) &&
		scalar.EqualWithinAbs(a.Y(), b.Y(), epsilon) &&
		scalar.EqualWithinAbs(a.Z(), b.Z(), epsilon)
}

func quatEqual(a, b mgl64.Quat, epsilon float64) bool {
	return scalar.EqualWithinAbs(a.W, b.W, epsilon) && vec3Equal(a.V, b.V, epsilon)
}
