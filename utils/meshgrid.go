package utils

import "gonum.org/v1/gonum/mat"

// Meshgrid returns the integer pixel coordinates of a height x width image.
// u holds the column index of every cell and v the row index, so
// u.At(r, c) == c and v.At(r, c) == r.
func Meshgrid(height, width int) (u, v *mat.Dense) {
	u = mat.NewDense(height, width, nil)
	v = mat.NewDense(height, width, nil)
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			u.Set(r, c, float64(c))
			v.Set(r, c, float64(r))
		}
	}
	return u, v
}

// SubFor returns the (row, col) subscript of the row-major linear index idx
// in a grid with the given number of columns.
func SubFor(idx, cols int) (row, col int) {
	if cols <= 0 {
		panic("bad dims")
	}
	if idx < 0 {
		panic("bad index")
	}
	return idx / cols, idx % cols
}
