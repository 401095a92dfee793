package rimage

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/TimingSpace/ImageFlow/utils"
)

// TextFormat controls how WriteText renders each value.
type TextFormat struct {
	// Verb is the fmt verb used for one value, e.g. "%.2e" or "%+3d".
	Verb string
	// Integer truncates values toward zero before formatting.
	Integer bool
}

// Formats used by the debug dumps.
var (
	DepthFormat        = TextFormat{Verb: "%.2e"}
	PixelFormat        = TextFormat{Verb: "%4d", Integer: true}
	DisplacementFormat = TextFormat{Verb: "%+3d", Integer: true}
	PolarFormat        = TextFormat{Verb: "%+.2e"}
)

// EncodeText writes m to w, one matrix row per line with values separated by
// a single space.
func EncodeText(w io.Writer, m mat.Matrix, format TextFormat) error {
	bw := bufio.NewWriter(w)
	rows, cols := m.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c > 0 {
				if err := bw.WriteByte(' '); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(format.render(m.At(r, c))); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// render formats v. Non-finite values are written as nan, inf or -inf
// whatever the verb.
func (f TextFormat) render(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case f.Integer:
		return fmt.Sprintf(f.Verb, int64(v))
	}
	return fmt.Sprintf(f.Verb, v)
}

// WriteText writes m to the named file with EncodeText.
func WriteText(fn string, m mat.Matrix, format TextFormat) error {
	return utils.WriteFile(fn, func(w io.Writer) error {
		return EncodeText(w, m, format)
	})
}
