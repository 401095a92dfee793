package flow

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func TestPixelGrid(t *testing.T) {
	u, v := PixelGrid(2, 3)
	test.That(t, mat.Equal(u, mat.NewDense(2, 3, []float64{0, 1, 2, 0, 1, 2})), test.ShouldBeTrue)
	test.That(t, mat.Equal(v, mat.NewDense(2, 3, []float64{0, 0, 0, 1, 1, 1})), test.ShouldBeTrue)
}

func TestDisplacement(t *testing.T) {
	u, v := PixelGrid(2, 2)
	pu := mat.NewDense(2, 2, []float64{1, 1, 1, 1})
	pv := mat.NewDense(2, 2, []float64{0, 0, 3, 3})

	du, dv, err := Displacement(pu, pv, u, v)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mat.Equal(du, mat.NewDense(2, 2, []float64{1, 0, 1, 0})), test.ShouldBeTrue)
	test.That(t, mat.Equal(dv, mat.NewDense(2, 2, []float64{0, 0, 2, 2})), test.ShouldBeTrue)

	_, _, err = Displacement(pu, pv, u, mat.NewDense(1, 2, nil))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "shape mismatch")
}

func TestPolar(t *testing.T) {
	du := mat.NewDense(1, 5, []float64{1, 0, -1, 0, 3})
	dv := mat.NewDense(1, 5, []float64{0, 1, 0, -1, 4})
	angle, magnitude, err := Polar(du, dv)
	test.That(t, err, test.ShouldBeNil)

	expectedAngle := []float64{0, 90, 180, -90}
	for c, a := range expectedAngle {
		test.That(t, angle.At(0, c), test.ShouldAlmostEqual, a)
		test.That(t, magnitude.At(0, c), test.ShouldAlmostEqual, 1.)
	}
	test.That(t, magnitude.At(0, 4), test.ShouldAlmostEqual, 5.)
	test.That(t, angle.At(0, 4), test.ShouldAlmostEqual, math.Atan2(4, 3)*180/math.Pi)

	_, _, err = Polar(du, mat.NewDense(5, 1, nil))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPolarNegativeZero(t *testing.T) {
	negZero := math.Copysign(0, -1)
	angle, magnitude, err := Polar(mat.NewDense(1, 2, []float64{-1, -2}), mat.NewDense(1, 2, []float64{negZero, 0}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, angle.At(0, 0), test.ShouldEqual, angle.At(0, 1))
	test.That(t, angle.At(0, 0), test.ShouldAlmostEqual, 180.)
	test.That(t, magnitude.At(0, 0), test.ShouldEqual, 1.)
}

func TestPolarNaN(t *testing.T) {
	nan := math.NaN()
	angle, magnitude, err := Polar(mat.NewDense(1, 1, []float64{nan}), mat.NewDense(1, 1, []float64{1}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, math.IsNaN(angle.At(0, 0)), test.ShouldBeTrue)
	test.That(t, math.IsNaN(magnitude.At(0, 0)), test.ShouldBeTrue)
}

func identityField(t *testing.T, height, width int) *Field {
	t.Helper()
	u, v := PixelGrid(height, width)
	f, err := NewField(u, v)
	test.That(t, err, test.ShouldBeNil)
	return f
}

func shiftedField(t *testing.T) *Field {
	t.Helper()
	// every pixel moves one to the right except the last, which is lost
	pu := mat.NewDense(2, 3, []float64{1, 2, 3, 1, 2, math.NaN()})
	_, pv := PixelGrid(2, 3)
	f, err := NewField(pu, pv)
	test.That(t, err, test.ShouldBeNil)
	return f
}

func TestNewField(t *testing.T) {
	f := identityField(t, 3, 4)
	height, width := f.Dims()
	test.That(t, height, test.ShouldEqual, 3)
	test.That(t, width, test.ShouldEqual, 4)
	test.That(t, mat.Equal(f.Du, mat.NewDense(3, 4, nil)), test.ShouldBeTrue)
	test.That(t, mat.Equal(f.Magnitude, mat.NewDense(3, 4, nil)), test.ShouldBeTrue)

	f = shiftedField(t)
	test.That(t, f.Du.At(0, 0), test.ShouldEqual, 1.)
	test.That(t, f.Angle.At(0, 0), test.ShouldEqual, 0.)
	test.That(t, f.Dv.At(1, 1), test.ShouldEqual, 0.)
	test.That(t, math.IsNaN(f.Du.At(1, 2)), test.ShouldBeTrue)

	_, err := NewField(mat.NewDense(2, 3, nil), mat.NewDense(3, 2, nil))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSummary(t *testing.T) {
	f := shiftedField(t)
	s, err := f.Summary()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Pixels, test.ShouldEqual, 6)
	test.That(t, s.NonFinite, test.ShouldEqual, 1)
	test.That(t, s.Mean, test.ShouldAlmostEqual, 1.)
	test.That(t, s.Median, test.ShouldAlmostEqual, 1.)
	test.That(t, s.Max, test.ShouldAlmostEqual, 1.)

	nan := math.NaN()
	f, err = NewField(mat.NewDense(1, 2, []float64{nan, nan}), mat.NewDense(1, 2, nil))
	test.That(t, err, test.ShouldBeNil)
	_, err = f.Summary()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no finite")
}

func TestToImage(t *testing.T) {
	f := shiftedField(t)
	f.Magnitude.Set(0, 1, 2)
	img := f.ToImage()
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 3)
	test.That(t, img.Bounds().Dy(), test.ShouldEqual, 2)

	// non-finite flow is black
	lost := img.NRGBAAt(2, 1)
	test.That(t, lost.R, test.ShouldEqual, uint8(0))
	test.That(t, lost.G, test.ShouldEqual, uint8(0))
	test.That(t, lost.B, test.ShouldEqual, uint8(0))
	test.That(t, lost.A, test.ShouldEqual, uint8(255))

	// the largest magnitude is at full value; angle 0 maps to hue 180, cyan
	peak := img.NRGBAAt(1, 0)
	test.That(t, peak.R, test.ShouldEqual, uint8(0))
	test.That(t, peak.G, test.ShouldEqual, uint8(255))
	test.That(t, peak.B, test.ShouldEqual, uint8(255))

	// the smallest magnitude is at zero value
	low := img.NRGBAAt(0, 0)
	test.That(t, low.R, test.ShouldEqual, uint8(0))
	test.That(t, low.G, test.ShouldEqual, uint8(0))
	test.That(t, low.B, test.ShouldEqual, uint8(0))
}

func TestWritePNGAndPlot(t *testing.T) {
	dir := t.TempDir()
	f := shiftedField(t)

	fn := filepath.Join(dir, "flow.png")
	test.That(t, WritePNG(fn, f.ToImage()), test.ShouldBeNil)
	info, err := os.Stat(fn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)

	plotFn := filepath.Join(dir, "magnitude.png")
	test.That(t, f.PlotMagnitude(plotFn), test.ShouldBeNil)
	info, err = os.Stat(plotFn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)

	test.That(t, WritePNG(filepath.Join(dir, "missing", "flow.png"), f.ToImage()), test.ShouldNotBeNil)
}

func TestWriteDumps(t *testing.T) {
	dir := t.TempDir()
	f := shiftedField(t)
	test.That(t, f.WriteDumps(dir), test.ShouldBeNil)

	for _, name := range DumpFiles {
		_, err := os.Stat(filepath.Join(dir, name))
		test.That(t, err, test.ShouldBeNil)
	}

	//nolint:gosec
	raw, err := os.ReadFile(filepath.Join(dir, "du.dat"))
	test.That(t, err, test.ShouldBeNil)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	test.That(t, lines, test.ShouldResemble, []string{" +1  +1  +1", " +1  +1 nan"})

	//nolint:gosec
	raw, err = os.ReadFile(filepath.Join(dir, "u.dat"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, strings.HasPrefix(string(raw), "   1    2    3\n"), test.ShouldBeTrue)

	err = f.WriteDumps(filepath.Join(dir, "missing"))
	test.That(t, err, test.ShouldNotBeNil)
}
