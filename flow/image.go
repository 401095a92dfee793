package flow

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/TimingSpace/ImageFlow/utils"
)

// ToImage renders the field in false color: hue follows the flow angle,
// saturation is full and value is the magnitude normalized over the field's
// finite range. Pixels with a non-finite angle or magnitude are black.
func (f *Field) ToImage() *image.NRGBA {
	height, width := f.Dims()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	lo, hi := math.Inf(1), math.Inf(-1)
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			if m := f.Magnitude.At(r, c); utils.IsFinite(m) {
				lo, hi = math.Min(lo, m), math.Max(hi, m)
			}
		}
	}
	span := hi - lo

	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			a, m := f.Angle.At(r, c), f.Magnitude.At(r, c)
			if !utils.IsFinite(a) || !utils.IsFinite(m) {
				img.SetNRGBA(c, r, color.NRGBA{A: 255})
				continue
			}
			value := 0.0
			if span > 0 {
				value = (m - lo) / span
			}
			red, green, blue := colorful.Hsv(math.Mod(a+180, 360), 1, value).Clamped().RGB255()
			img.SetNRGBA(c, r, color.NRGBA{R: red, G: green, B: blue, A: 255})
		}
	}
	return img
}

// WritePNG writes img to the named file.
func WritePNG(fn string, img image.Image) error {
	return utils.WriteFile(fn, func(w io.Writer) error {
		return png.Encode(w, img)
	})
}
