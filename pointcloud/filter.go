package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"
)

// FilterByRadius returns the points whose distance from the origin is strictly
// less than limit, in their original order. Points with a NaN coordinate are
// always dropped. It discards degenerate reconstructions before export and is
// not applied to the flow itself.
func FilterByRadius(pc *PointCloud, limit float64) *PointCloud {
	out := make([]r3.Vector, 0, pc.Size())
	for _, p := range pc.points {
		r := p.Norm()
		if math.IsNaN(r) || !(r < limit) {
			continue
		}
		out = append(out, p)
	}
	return newOwned(pc.frame, out)
}
