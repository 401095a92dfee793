package utils

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio"
	goutils "go.viam.com/utils"
	"gonum.org/v1/gonum/mat"
)

// ReadNpyFile reads a two dimensional numeric NumPy array from the given file.
func ReadNpyFile(fn string) (*mat.Dense, error) {
	//nolint:gosec
	f, err := os.Open(fn)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %q", fn)
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	m, err := ReadNpy(f)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %q", fn)
	}
	return m, nil
}

// ReadNpy reads a one or two dimensional numeric NumPy array. A one
// dimensional array becomes a single row. Any float or integer dtype is
// widened to float64.
func ReadNpy(r io.Reader) (*mat.Dense, error) {
	npy, err := npyio.NewReader(r)
	if err != nil {
		return nil, err
	}

	var rows, cols int
	switch shape := npy.Header.Descr.Shape; len(shape) {
	case 1:
		rows, cols = 1, shape[0]
	case 2:
		rows, cols = shape[0], shape[1]
	default:
		return nil, errors.Errorf("expected a 1d or 2d array but got shape %v", shape)
	}
	if rows == 0 || cols == 0 {
		return nil, errors.Errorf("empty array of shape %v", npy.Header.Descr.Shape)
	}

	data, err := readWidened(npy)
	if err != nil {
		return nil, err
	}
	if len(data) != rows*cols {
		return nil, errors.Errorf("array holds %d values but shape %v needs %d", len(data), npy.Header.Descr.Shape, rows*cols)
	}

	if !npy.Header.Descr.Fortran {
		return mat.NewDense(rows, cols, data), nil
	}
	// column-major storage
	var m mat.Dense
	m.CloneFrom(mat.NewDense(cols, rows, data).T())
	return &m, nil
}

func readWidened(npy *npyio.Reader) ([]float64, error) {
	switch dtype := npy.Header.Descr.Type; dtype {
	case "<f8", "f8", "float64":
		var data []float64
		err := npy.Read(&data)
		return data, err
	case "<f4", "f4", "float32":
		var data []float32
		if err := npy.Read(&data); err != nil {
			return nil, err
		}
		return widen(data), nil
	case "<i8", "i8", "int64":
		var data []int64
		if err := npy.Read(&data); err != nil {
			return nil, err
		}
		return widen(data), nil
	case "<i4", "i4", "int32":
		var data []int32
		if err := npy.Read(&data); err != nil {
			return nil, err
		}
		return widen(data), nil
	case "<u2", "u2", "uint16":
		var data []uint16
		if err := npy.Read(&data); err != nil {
			return nil, err
		}
		return widen(data), nil
	default:
		return nil, errors.Errorf("unsupported dtype %q", dtype)
	}
}

func widen[T float32 | int64 | int32 | uint16](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

// WriteNpyFile writes m to the given file as a float64 NumPy array.
func WriteNpyFile(fn string, m mat.Matrix) error {
	return WriteFile(fn, func(w io.Writer) error {
		return npyio.Write(w, m)
	})
}
