package pointcloud

import (
	"image/color"
	"math"

	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// DefaultPalette is the blue, green, orange, red ramp used for distance coloring.
var DefaultPalette = []string{"#2980b9", "#27ae60", "#f39c12", "#c0392b"}

// DefaultColorLevels is the default number of distance bins.
const DefaultColorLevels = 20

// ParsePalette parses "#rrggbb" colors.
func ParsePalette(hexes []string) ([]colorful.Color, error) {
	if len(hexes) == 0 {
		return nil, errors.New("palette needs at least one color")
	}
	palette := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, errors.Wrapf(err, "bad palette color %d", i)
		}
		palette[i] = c
	}
	return palette, nil
}

// Ramp returns levels colors spread evenly across the palette, blending in RGB
// between neighboring palette entries. The first ramp color is the first
// palette color and, when levels > 1, the last ramp color is the last palette
// color.
func Ramp(palette []colorful.Color, levels int) []color.NRGBA {
	if levels < 1 {
		levels = 1
	}
	ramp := make([]color.NRGBA, levels)
	for k := range ramp {
		var c colorful.Color
		switch {
		case levels == 1 || len(palette) == 1:
			c = palette[0]
		default:
			pos := float64(k) / float64(levels-1) * float64(len(palette)-1)
			i := int(math.Floor(pos))
			if i >= len(palette)-1 {
				c = palette[len(palette)-1]
			} else {
				c = palette[i].BlendRgb(palette[i+1], pos-float64(i))
			}
		}
		r, g, b := c.Clamped().RGB255()
		ramp[k] = color.NRGBA{R: r, G: g, B: b, A: 255}
	}
	return ramp
}

// ColorByDistance colors every point by its distance from the origin. The
// observed [min, max] radius range is split into levels equal bins and each
// bin takes one Ramp color. With a single level or a zero width range every
// point takes the first palette color.
func ColorByDistance(points []r3.Vector, hexes []string, levels int) ([]color.NRGBA, error) {
	palette, err := ParsePalette(hexes)
	if err != nil {
		return nil, err
	}
	ramp := Ramp(palette, levels)

	colors := make([]color.NRGBA, len(points))
	if len(points) == 0 {
		return colors, nil
	}

	radii := make([]float64, len(points))
	for i, p := range points {
		radii[i] = p.Norm()
	}
	lo, hi := floats.Min(radii), floats.Max(radii)
	span := hi - lo

	for i, r := range radii {
		bin := 0
		if len(ramp) > 1 && span > 0 && !math.IsInf(span, 0) {
			bin = int((r - lo) / span * float64(len(ramp)))
			if bin >= len(ramp) {
				bin = len(ramp) - 1
			}
			if bin < 0 {
				bin = 0
			}
		}
		colors[i] = ramp[bin]
	}
	return colors, nil
}
