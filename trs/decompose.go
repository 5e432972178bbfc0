package trs

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// AffineTolerance bounds the deviation of the bottom row from (0, 0, 0, 1)
	AffineTolerance = 1e-6
	// ShearTolerance bounds the cosine between two normalized basis columns
	ShearTolerance = 1e-4
	// MinScale is the smallest column length treated as a usable axis
	MinScale = 1e-9
)

// ErrNotDecomposable is matched by every DecomposeError
var ErrNotDecomposable = errors.New("trs: matrix is not decomposable")

// DecomposeError reports a matrix that cannot be written as T * R * S
type DecomposeError struct {
	Reason string
	Matrix mgl64.Mat4
}

func (e *DecomposeError) Error() string {
	return fmt.Sprintf("trs: cannot decompose matrix: %s", e.Reason)
}

func (e *DecomposeError) Unwrap() error {
	return ErrNotDecomposable
}

// FromMatrix splits an affine matrix into translation, rotation and scale.
// A negative determinant is folded into the x scale. Projective, degenerate and
// sheared matrices are rejected with a *DecomposeError.
func FromMatrix(m mgl64.Mat4) (TRS, error) {
	bottom := m.Row(3)
	if math.Abs(bottom.X()) > AffineTolerance || math.Abs(bottom.Y()) > AffineTolerance ||
		math.Abs(bottom.Z()) > AffineTolerance || math.Abs(bottom.W()-1) > AffineTolerance {
		return TRS{}, &DecomposeError{Reason: "bottom row is not (0, 0, 0, 1)", Matrix: m}
	}

	columns := [3]mgl64.Vec3{m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()}
	var scale mgl64.Vec3
	for i, column := range columns {
		length := column.Len()
		if length < MinScale || math.IsNaN(length) || math.IsInf(length, 0) {
			return TRS{}, &DecomposeError{Reason: fmt.Sprintf("axis %d has degenerate scale %g", i, length), Matrix: m}
		}
		scale[i] = length
		columns[i] = column.Mul(1 / length)
	}

	for _, pair := range [3][2]int{{0, 1}, {0, 2}, {1, 2}} {
		if cos := columns[pair[0]].Dot(columns[pair[1]]); math.Abs(cos) > ShearTolerance {
			return TRS{}, &DecomposeError{
				Reason: fmt.Sprintf("axes %d and %d are sheared (cos %g)", pair[0], pair[1], cos),
				Matrix: m,
			}
		}
	}

	basis := mgl64.Mat3FromCols(columns[0], columns[1], columns[2])
	if basis.Det() < 0 {
		scale[0] = -scale[0]
		columns[0] = columns[0].Mul(-1)
		basis = mgl64.Mat3FromCols(columns[0], columns[1], columns[2])
	}

	return TRS{
		Translation: m.Col(3).Vec3(),
		Rotation:    mgl64.Mat4ToQuat(basis.Mat4()).Normalize(),
		Scale:       scale,
	}, nil
}
