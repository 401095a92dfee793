// Package pointcloud defines an ordered point cloud and the filtering,
// coloring and PLY export used to inspect reconstructed scenes.
//
// Clouds are immutable. Every operation that changes points returns a new
// cloud and keeps the order of the points it was built from, so a cloud made
// from a depth map can always be reshaped back into the image grid.
package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"
)

// Frames the pipeline expresses clouds in.
const (
	FrameCamera0 = "camera_0"
	FrameCamera1 = "camera_1"
	FrameWorld   = "world"
)

// PointCloud is an ordered set of points in a named reference frame.
type PointCloud struct {
	frame  string
	points []r3.Vector
}

// New returns a cloud holding a copy of points in the given frame.
func New(frame string, points []r3.Vector) *PointCloud {
	cp := make([]r3.Vector, len(points))
	copy(cp, points)
	return &PointCloud{frame: frame, points: cp}
}

// newOwned returns a cloud that takes ownership of points.
func newOwned(frame string, points []r3.Vector) *PointCloud {
	return &PointCloud{frame: frame, points: points}
}

// NewVector convenience method for creating a vector.
func NewVector(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}
}

// Frame returns the name of the frame the points are expressed in.
func (pc *PointCloud) Frame() string {
	return pc.frame
}

// Size returns the number of points in the cloud.
func (pc *PointCloud) Size() int {
	return len(pc.points)
}

// At returns the i-th point.
func (pc *PointCloud) At(i int) r3.Vector {
	return pc.points[i]
}

// Points returns a copy of the points in order.
func (pc *PointCloud) Points() []r3.Vector {
	cp := make([]r3.Vector, len(pc.points))
	copy(cp, pc.points)
	return cp
}

// Iterate calls fn for every point in order. If fn returns false, iteration
// stops after fn returns.
func (pc *PointCloud) Iterate(fn func(i int, p r3.Vector) bool) {
	for i, p := range pc.points {
		if !fn(i, p) {
			return
		}
	}
}

// Transform returns a new cloud in the given frame with fn applied to every point.
func (pc *PointCloud) Transform(frame string, fn func(p r3.Vector) r3.Vector) *PointCloud {
	out := make([]r3.Vector, len(pc.points))
	for i, p := range pc.points {
		out[i] = fn(p)
	}
	return newOwned(frame, out)
}

// MetaData describes the extent of a cloud.
type MetaData struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
	// MaxRadius is the largest finite distance of a point from the origin.
	MaxRadius float64
	// NonFinite counts points with a NaN or infinite coordinate.
	NonFinite int
}

// MetaData scans the cloud and returns its extent over finite points.
func (pc *PointCloud) MetaData() MetaData {
	meta := MetaData{
		MinX: math.Inf(1), MaxX: math.Inf(-1),
		MinY: math.Inf(1), MaxY: math.Inf(-1),
		MinZ: math.Inf(1), MaxZ: math.Inf(-1),
	}
	for _, p := range pc.points {
		if !isFinite(p) {
			meta.NonFinite++
			continue
		}
		meta.MinX, meta.MaxX = math.Min(meta.MinX, p.X), math.Max(meta.MaxX, p.X)
		meta.MinY, meta.MaxY = math.Min(meta.MinY, p.Y), math.Max(meta.MaxY, p.Y)
		meta.MinZ, meta.MaxZ = math.Min(meta.MinZ, p.Z), math.Max(meta.MaxZ, p.Z)
		meta.MaxRadius = math.Max(meta.MaxRadius, p.Norm())
	}
	return meta
}

func isFinite(p r3.Vector) bool {
	for _, v := range []float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
