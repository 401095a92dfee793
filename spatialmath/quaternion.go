// Package spatialmath defines the rotations and rigid transforms that move
// reconstructed points between camera and world frames.
package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Quaternion is an orientation in the x, y, z, w order used by the pose table.
// It does not need to be unit length.
type Quaternion struct {
	X, Y, Z, W float64
}

// NewZeroOrientation returns the quaternion which signifies no rotation.
func NewZeroOrientation() Quaternion {
	return Quaternion{W: 1}
}

// Number converts q to a gonum quaternion.
func (q Quaternion) Number() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

// QuaternionFromNumber converts a gonum quaternion to a Quaternion.
func QuaternionFromNumber(n quat.Number) Quaternion {
	return Quaternion{X: n.Imag, Y: n.Jmag, Z: n.Kmag, W: n.Real}
}

// Norm2 returns the squared norm of q.
func (q Quaternion) Norm2() float64 {
	return q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W
}

// Normalize returns q scaled to unit length. A zero quaternion yields NaNs.
func (q Quaternion) Normalize() Quaternion {
	n := q.Number()
	return QuaternionFromNumber(quat.Scale(1/quat.Abs(n), n))
}

// IsZero reports whether q has a zero norm and so cannot describe a rotation.
func (q Quaternion) IsZero() bool {
	return q.Norm2() == 0
}

// Rotate rotates v by q using the Hamilton product q*v*conj(q)/|q|^2.
func (q Quaternion) Rotate(x, y, z float64) (float64, float64, float64) {
	n := q.Number()
	p := quat.Mul(quat.Mul(n, quat.Number{Imag: x, Jmag: y, Kmag: z}), quat.Conj(n))
	s := 1 / q.Norm2()
	return p.Imag * s, p.Jmag * s, p.Kmag * s
}

// QuaternionAlmostEqual reports whether two quaternions describe the same
// orientation within tol. q and -q are considered equal.
func QuaternionAlmostEqual(a, b Quaternion, tol float64) bool {
	a, b = a.Normalize(), b.Normalize()
	same := math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol && math.Abs(a.W-b.W) < tol
	flipped := math.Abs(a.X+b.X) < tol && math.Abs(a.Y+b.Y) < tol && math.Abs(a.Z+b.Z) < tol && math.Abs(a.W+b.W) < tol
	return same || flipped
}
