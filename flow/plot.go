package flow

import (
	"image/color"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/TimingSpace/ImageFlow/utils"
)

// imageGrid adapts an image shaped matrix to plotter.GridXYZ with the first
// image row at the top. Non-finite values are reported as NaN so the heat map
// leaves them blank.
type imageGrid struct {
	m *mat.Dense
}

func (g imageGrid) Dims() (c, r int) {
	rows, cols := g.m.Dims()
	return cols, rows
}

func (g imageGrid) Z(c, r int) float64 {
	rows, _ := g.m.Dims()
	v := g.m.At(rows-1-r, c)
	if !utils.IsFinite(v) {
		return math.NaN()
	}
	return v
}

func (g imageGrid) X(c int) float64 {
	return float64(c)
}

func (g imageGrid) Y(r int) float64 {
	return float64(r)
}

// PlotMagnitude saves a heat map of the flow magnitude. The file format
// follows the extension of fn, e.g. .png or .svg.
func (f *Field) PlotMagnitude(fn string) error {
	summary, err := f.Summary()
	if err != nil {
		return err
	}

	grid := imageGrid{f.Magnitude}
	heatMap := plotter.NewHeatMap(grid, palette.Heat(16, 1))
	heatMap.Min = 0
	heatMap.Max = summary.Max
	if heatMap.Max <= heatMap.Min {
		heatMap.Max = heatMap.Min + 1
	}
	heatMap.NaN = color.Black

	p := plot.New()
	p.Title.Text = "flow magnitude (px)"
	p.X.Label.Text = "u"
	p.Y.Label.Text = "rows from bottom"
	p.Add(heatMap)

	height, width := f.Dims()
	w := vg.Length(width) * vg.Inch / 100
	h := vg.Length(height) * vg.Inch / 100
	if err := p.Save(max(w, 4*vg.Inch), max(h, 3*vg.Inch), fn); err != nil {
		return errors.Wrapf(err, "cannot save magnitude plot %q", fn)
	}
	return nil
}
