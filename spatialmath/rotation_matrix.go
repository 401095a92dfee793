package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// RotationMatrix is a 3x3 matrix in row major order.
// m[3*i + j] refers to the element in the i-th row and j-th column.
type RotationMatrix struct {
	mat [9]float64
}

// NewRotationMatrix creates a rotation matrix from a slice of 9 row-major values.
// The values are not checked for orthonormality.
func NewRotationMatrix(m []float64) (*RotationMatrix, error) {
	if len(m) != 9 {
		return nil, errors.Errorf("input slice has %d elements, need exactly 9", len(m))
	}
	rm := &RotationMatrix{}
	copy(rm.mat[:], m)
	return rm, nil
}

// NewIdentityRotationMatrix returns the identity rotation.
func NewIdentityRotationMatrix() *RotationMatrix {
	return &RotationMatrix{[9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}}
}

// QuatToRotationMatrix converts a quaternion into a rotation matrix. The
// quaternion is normalized implicitly by dividing by its squared norm, so
// non-unit input is accepted. A zero quaternion has no rotation and yields a
// matrix of NaNs; callers must supply a non-zero orientation.
func QuatToRotationMatrix(q Quaternion) *RotationMatrix {
	qi2, qj2, qk2 := q.X*q.X, q.Y*q.Y, q.Z*q.Z

	qij := q.X * q.Y
	qjk := q.Y * q.Z
	qki := q.Z * q.X

	qri := q.W * q.X
	qrj := q.W * q.Y
	qrk := q.W * q.Z

	s := 1.0 / (q.W*q.W + qi2 + qj2 + qk2)
	ss := 2 * s

	return &RotationMatrix{[9]float64{
		1.0 - ss*(qj2+qk2), ss * (qij - qrk), ss * (qki + qrj),
		ss * (qij + qrk), 1.0 - ss*(qi2+qk2), ss * (qjk - qri),
		ss * (qki - qrj), ss * (qjk + qri), 1.0 - ss*(qi2+qj2),
	}}
}

// At returns the value stored at the given row and column.
func (rm *RotationMatrix) At(row, col int) float64 {
	return rm.mat[3*row+col]
}

// Row returns the row of the rotation matrix as a vector.
func (rm *RotationMatrix) Row(row int) r3.Vector {
	return r3.Vector{X: rm.mat[3*row], Y: rm.mat[3*row+1], Z: rm.mat[3*row+2]}
}

// Col returns the column of the rotation matrix as a vector.
func (rm *RotationMatrix) Col(col int) r3.Vector {
	return r3.Vector{X: rm.mat[col], Y: rm.mat[col+3], Z: rm.mat[col+6]}
}

// Mul returns rm * v.
func (rm *RotationMatrix) Mul(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: rm.mat[0]*v.X + rm.mat[1]*v.Y + rm.mat[2]*v.Z,
		Y: rm.mat[3]*v.X + rm.mat[4]*v.Y + rm.mat[5]*v.Z,
		Z: rm.mat[6]*v.X + rm.mat[7]*v.Y + rm.mat[8]*v.Z,
	}
}

// MatMul returns the product rm * other.
func (rm *RotationMatrix) MatMul(other *RotationMatrix) *RotationMatrix {
	out := &RotationMatrix{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.mat[3*i+j] = rm.Row(i).Dot(other.Col(j))
		}
	}
	return out
}

// Transpose returns the transpose of rm.
func (rm *RotationMatrix) Transpose() *RotationMatrix {
	out := &RotationMatrix{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.mat[3*j+i] = rm.mat[3*i+j]
		}
	}
	return out
}

// Inverse returns the matrix inverse of rm, computed by LU decomposition.
// An ill-conditioned matrix is still inverted and only a singular one is an
// error. A matrix with non-finite entries inverts to all NaNs.
func (rm *RotationMatrix) Inverse() (*RotationMatrix, error) {
	for _, v := range rm.mat {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out := &RotationMatrix{}
			for i := range out.mat {
				out.mat[i] = math.NaN()
			}
			return out, nil
		}
	}
	var inv mat.Dense
	if err := inv.Inverse(rm.Dense()); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, errors.Wrap(err, "cannot invert rotation matrix")
		}
	}
	out := &RotationMatrix{}
	copy(out.mat[:], inv.RawMatrix().Data)
	return out, nil
}

// Det returns the determinant of rm.
func (rm *RotationMatrix) Det() float64 {
	return mat.Det(rm.Dense())
}

// Dense returns a copy of rm as a gonum matrix.
func (rm *RotationMatrix) Dense() *mat.Dense {
	data := rm.mat
	return mat.NewDense(3, 3, data[:])
}

// Values returns the nine row-major values of rm.
func (rm *RotationMatrix) Values() [9]float64 {
	return rm.mat
}

// AlmostEqual reports whether every element of rm is within tol of other.
func (rm *RotationMatrix) AlmostEqual(other *RotationMatrix, tol float64) bool {
	for i, v := range rm.mat {
		if math.Abs(v-other.mat[i]) > tol {
			return false
		}
	}
	return true
}

// IsOrthonormal reports whether rm * rm^T is the identity and det(rm) is 1
// within tol.
func (rm *RotationMatrix) IsOrthonormal(tol float64) bool {
	return rm.MatMul(rm.Transpose()).AlmostEqual(NewIdentityRotationMatrix(), tol) && math.Abs(rm.Det()-1) <= tol
}

func (rm *RotationMatrix) String() string {
	return fmt.Sprintf("%v", mat.Formatted(rm.Dense(), mat.Prefix(""), mat.Squeeze()))
}
