package flow

import (
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/TimingSpace/ImageFlow/utils"
)

// Summary describes the magnitudes of a flow field over its finite entries.
type Summary struct {
	Pixels    int
	NonFinite int
	Mean      float64
	Median    float64
	P95       float64
	Max       float64
}

// Summary computes magnitude statistics. It fails when no entry is finite.
func (f *Field) Summary() (Summary, error) {
	raw := f.Magnitude.RawMatrix()
	var data stats.Float64Data
	s := Summary{}
	for r := 0; r < raw.Rows; r++ {
		for _, m := range raw.Data[r*raw.Stride : r*raw.Stride+raw.Cols] {
			s.Pixels++
			if !utils.IsFinite(m) {
				s.NonFinite++
				continue
			}
			data = append(data, m)
		}
	}
	if len(data) == 0 {
		return s, errors.New("flow field has no finite magnitude")
	}

	var err error
	if s.Mean, err = data.Mean(); err != nil {
		return s, err
	}
	if s.Median, err = data.Median(); err != nil {
		return s, err
	}
	if s.P95, err = data.Percentile(95); err != nil {
		return s, err
	}
	if s.Max, err = data.Max(); err != nil {
		return s, err
	}
	return s, nil
}
