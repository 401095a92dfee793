// Package rimage holds depth maps and the plain text array dumps used to
// inspect a flow run.
package rimage

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DepthMap is a height x width grid of non-negative depths, one per pixel.
// A zero depth is valid and back-projects to the camera center.
type DepthMap struct {
	width  int
	height int

	data []float64
}

// NewEmptyDepthMap returns a zeroed depth map of the given size.
func NewEmptyDepthMap(width, height int) *DepthMap {
	return &DepthMap{
		width:  width,
		height: height,
		data:   make([]float64, width*height),
	}
}

// NewDepthMapFromDense copies a rows x cols matrix into a depth map.
func NewDepthMapFromDense(m mat.Matrix) (*DepthMap, error) {
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.New("depth map cannot be empty")
	}
	dm := NewEmptyDepthMap(cols, rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			d := m.At(y, x)
			if d < 0 {
				return nil, errors.Errorf("negative depth %v at (%d, %d)", d, x, y)
			}
			dm.Set(x, y, d)
		}
	}
	return dm, nil
}

// Width returns the number of columns.
func (dm *DepthMap) Width() int {
	return dm.width
}

// Height returns the number of rows.
func (dm *DepthMap) Height() int {
	return dm.height
}

// GetDepth returns the depth at column x and row y.
func (dm *DepthMap) GetDepth(x, y int) float64 {
	return dm.data[y*dm.width+x]
}

// Set sets the depth at column x and row y.
func (dm *DepthMap) Set(x, y int, val float64) {
	dm.data[y*dm.width+x] = val
}

// MinMax returns the smallest and largest finite depth. Both are NaN when the
// map holds no finite value.
func (dm *DepthMap) MinMax() (float64, float64) {
	finite := make([]float64, 0, len(dm.data))
	for _, d := range dm.data {
		if !math.IsNaN(d) && !math.IsInf(d, 0) {
			finite = append(finite, d)
		}
	}
	if len(finite) == 0 {
		return math.NaN(), math.NaN()
	}
	return floats.Min(finite), floats.Max(finite)
}

// Dense returns a copy of the depth map as a height x width matrix.
func (dm *DepthMap) Dense() *mat.Dense {
	data := make([]float64, len(dm.data))
	copy(data, dm.data)
	return mat.NewDense(dm.height, dm.width, data)
}
