package pointcloud

import (
	"bufio"
	"fmt"
	"image/color"
	"io"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/TimingSpace/ImageFlow/utils"
)

const plyHeader = `ply
format ascii 1.0
element vertex %d
property float x
property float y
property float z
property uchar red
property uchar green
property uchar blue
end_header
`

// EncodePLY writes points and their colors as an ASCII PLY file.
func EncodePLY(w io.Writer, points []r3.Vector, colors []color.NRGBA) error {
	if len(points) != len(colors) {
		return errors.Errorf("have %d points but %d colors", len(points), len(colors))
	}
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, plyHeader, len(points)); err != nil {
		return err
	}
	for i, p := range points {
		c := colors[i]
		if _, err := fmt.Fprintf(bw, "%f %f %f %d %d %d\n", p.X, p.Y, p.Z, c.R, c.G, c.B); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WritePLY writes points and their colors to the named ASCII PLY file.
func WritePLY(fn string, points []r3.Vector, colors []color.NRGBA) error {
	return utils.WriteFile(fn, func(w io.Writer) error {
		return EncodePLY(w, points, colors)
	})
}

// ExportOptions controls Export.
type ExportOptions struct {
	// RadiusLimit drops points at or beyond this distance from the origin.
	RadiusLimit float64
	// Palette is the list of "#rrggbb" colors for the distance ramp.
	Palette []string
	// Levels is the number of distance bins.
	Levels int
}

// DefaultExportOptions returns the export settings of a standard run.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		RadiusLimit: 50,
		Palette:     DefaultPalette,
		Levels:      DefaultColorLevels,
	}
}

// Export filters pc by radius, colors the remaining points by distance and
// writes them to fn. It returns the number of points written.
func Export(fn string, pc *PointCloud, opts ExportOptions) (int, error) {
	filtered := FilterByRadius(pc, opts.RadiusLimit)
	colors, err := ColorByDistance(filtered.points, opts.Palette, opts.Levels)
	if err != nil {
		return 0, err
	}
	if err := WritePLY(fn, filtered.points, colors); err != nil {
		return 0, err
	}
	return filtered.Size(), nil
}
