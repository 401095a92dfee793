// Package flow derives dense optical flow fields from projected pixel
// coordinates and renders them for inspection.
package flow

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/TimingSpace/ImageFlow/utils"
)

// PixelGrid returns the integer pixel coordinates of a height x width image,
// the same grid that back-projection walks.
func PixelGrid(height, width int) (u, v *mat.Dense) {
	return utils.Meshgrid(height, width)
}

// Displacement returns du = pu - u and dv = pv - v.
func Displacement(pu, pv, u, v mat.Matrix) (du, dv *mat.Dense, err error) {
	if err := sameShape(pu, pv, u, v); err != nil {
		return nil, nil, err
	}
	du, dv = &mat.Dense{}, &mat.Dense{}
	du.Sub(pu, u)
	dv.Sub(pv, v)
	return du, dv, nil
}

// Polar converts a displacement field to its angle in degrees, in (-180, 180],
// and its magnitude.
func Polar(du, dv mat.Matrix) (angle, magnitude *mat.Dense, err error) {
	if err := sameShape(du, dv); err != nil {
		return nil, nil, err
	}
	rows, cols := du.Dims()
	angle = mat.NewDense(rows, cols, nil)
	magnitude = mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x, y := du.At(r, c), dv.At(r, c)
			rad := math.Atan2(y, x)
			if rad == -math.Pi {
				rad = math.Pi
			}
			angle.Set(r, c, utils.RadToDeg(rad))
			magnitude.Set(r, c, math.Sqrt(x*x+y*y))
		}
	}
	return angle, magnitude, nil
}

func sameShape(ms ...mat.Matrix) error {
	rows, cols := ms[0].Dims()
	for _, m := range ms[1:] {
		if r, c := m.Dims(); r != rows || c != cols {
			return utils.NewShapeMismatchError(r, c, rows, cols)
		}
	}
	return nil
}

// Field is a dense flow field. Every matrix is height x width.
type Field struct {
	// U and V are where each reference pixel lands in the second image.
	U, V *mat.Dense
	// Du and Dv are the pixel displacements.
	Du, Dv *mat.Dense
	// Angle is the displacement direction in degrees.
	Angle *mat.Dense
	// Magnitude is the displacement length in pixels.
	Magnitude *mat.Dense
}

// NewField derives the flow field of projected pixel coordinates pu, pv
// measured against the image's own pixel grid.
func NewField(pu, pv *mat.Dense) (*Field, error) {
	rows, cols := pu.Dims()
	u, v := PixelGrid(rows, cols)
	du, dv, err := Displacement(pu, pv, u, v)
	if err != nil {
		return nil, err
	}
	angle, magnitude, err := Polar(du, dv)
	if err != nil {
		return nil, err
	}
	return &Field{U: pu, V: pv, Du: du, Dv: dv, Angle: angle, Magnitude: magnitude}, nil
}

// Dims returns the height and width of the field.
func (f *Field) Dims() (height, width int) {
	return f.Du.Dims()
}
