package flow

import (
	"path/filepath"

	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"

	"github.com/TimingSpace/ImageFlow/rimage"
)

// DumpFiles names the text dumps written by WriteDumps.
var DumpFiles = []string{"u.dat", "v.dat", "du.dat", "dv.dat", "a.dat", "d.dat"}

// WriteDumps writes the projected coordinates, displacements, angles and
// magnitudes of the field as text matrices into dir. Every file is attempted;
// the returned error combines all failures.
func (f *Field) WriteDumps(dir string) error {
	dumps := []struct {
		m      mat.Matrix
		format rimage.TextFormat
	}{
		{f.U, rimage.PixelFormat},
		{f.V, rimage.PixelFormat},
		{f.Du, rimage.DisplacementFormat},
		{f.Dv, rimage.DisplacementFormat},
		{f.Angle, rimage.PolarFormat},
		{f.Magnitude, rimage.PolarFormat},
	}
	var err error
	for i, d := range dumps {
		err = multierr.Append(err, rimage.WriteText(filepath.Join(dir, DumpFiles[i]), d.m, d.format))
	}
	return err
}
