// Package transform holds the pinhole camera model that moves between depth
// images and 3D points.
package transform

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/TimingSpace/ImageFlow/pointcloud"
	"github.com/TimingSpace/ImageFlow/rimage"
	"github.com/TimingSpace/ImageFlow/spatialmath"
	"github.com/TimingSpace/ImageFlow/utils"
)

// ErrNoIntrinsics is when a camera does not have intrinsics parameters or other parameters.
var ErrNoIntrinsics = errors.New("camera intrinsic parameters are not available")

// NewNoIntrinsicsError is used when the intriniscs are not defined.
func NewNoIntrinsicsError(msg string) error {
	return errors.Wrap(ErrNoIntrinsics, msg)
}

// PinholeCameraIntrinsics holds the parameters necessary to do a perspective projection of a 3D scene to the 2D plane.
type PinholeCameraIntrinsics struct {
	Width  int     `json:"width_px"`
	Height int     `json:"height_px"`
	Fx     float64 `json:"fx"`
	Fy     float64 `json:"fy"`
	Ppx    float64 `json:"ppx"`
	Ppy    float64 `json:"ppy"`
}

// NewPinholeCameraIntrinsics returns a camera with the same focal length on
// both axes and the principal point at the image center.
func NewPinholeCameraIntrinsics(focal float64, height, width int) *PinholeCameraIntrinsics {
	return &PinholeCameraIntrinsics{
		Width:  width,
		Height: height,
		Fx:     focal,
		Fy:     focal,
		Ppx:    float64(width) / 2,
		Ppy:    float64(height) / 2,
	}
}

// CheckValid checks if the fields for PinholeCameraIntrinsics have valid inputs.
func (params *PinholeCameraIntrinsics) CheckValid() error {
	if params == nil {
		return NewNoIntrinsicsError("Intrinsics do not exist")
	}
	if params.Width <= 0 || params.Height <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid size (%#v, %#v)", params.Width, params.Height))
	}
	if params.Fx <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length Fx = %#v", params.Fx))
	}
	if params.Fy <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length Fy = %#v", params.Fy))
	}
	if params.Ppx < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid principal X point Ppx = %#v", params.Ppx))
	}
	if params.Ppy < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid principal Y point Ppy = %#v", params.Ppy))
	}
	return nil
}

// GetCameraMatrix creates a new camera matrix and returns it.
// Camera matrix:
// [[fx 0 ppx],
//
//	[0 fy ppy],
//	[0 0  1]]
func (params *PinholeCameraIntrinsics) GetCameraMatrix() *mat.Dense {
	if params == nil {
		return nil
	}
	cameraMatrix := mat.NewDense(3, 3, nil)
	cameraMatrix.Set(0, 0, params.Fx)
	cameraMatrix.Set(1, 1, params.Fy)
	cameraMatrix.Set(0, 2, params.Ppx)
	cameraMatrix.Set(1, 2, params.Ppy)
	cameraMatrix.Set(2, 2, 1)
	return cameraMatrix
}

// PixelToPoint transforms a pixel with depth to a 3D point in the optical
// frame: x right, y down, z along the optical axis.
func (params *PinholeCameraIntrinsics) PixelToPoint(x, y, z float64) (float64, float64, float64) {
	xm := (x - params.Ppx) * z / params.Fx
	ym := (y - params.Ppy) * z / params.Fy
	return xm, ym, z
}

// PointToPixel projects an optical frame 3D point to a pixel. The result is
// not rounded or clamped, and a point with z = 0 yields infinite or NaN
// coordinates.
func (params *PinholeCameraIntrinsics) PointToPixel(x, y, z float64) (float64, float64) {
	return (x/z)*params.Fx + params.Ppx, (y/z)*params.Fy + params.Ppy
}

// BackProject reconstructs one point per pixel of dm and returns them in the
// forward frame convention, in row-major pixel order. Zero depths produce
// points at the camera center.
func (params *PinholeCameraIntrinsics) BackProject(dm *rimage.DepthMap, frame string) (*pointcloud.PointCloud, error) {
	if dm == nil {
		return nil, errors.New("no depth channel. Cannot project to Pointcloud")
	}
	if params.Width != dm.Width() || params.Height != dm.Height() {
		return nil, errors.Errorf("depth map dimension and intrinsics don't match Depth(%d,%d) != Intrinsics(%d,%d)",
			dm.Width(), dm.Height(), params.Width, params.Height)
	}

	toForward := spatialmath.OpticalToForwardBasis()
	u, v := utils.Meshgrid(params.Height, params.Width)
	pts := make([]r3.Vector, 0, params.Width*params.Height)
	for y := 0; y < params.Height; y++ {
		for x := 0; x < params.Width; x++ {
			px, py, pz := params.PixelToPoint(u.At(y, x), v.At(y, x), dm.GetDepth(x, y))
			pts = append(pts, toForward.Mul(r3.Vector{X: px, Y: py, Z: pz}))
		}
	}
	return pointcloud.New(frame, pts), nil
}

// Project maps every point of a forward frame cloud to pixel coordinates. The
// cloud must hold one point per pixel in row-major order; the returned
// matrices are height x width. Points with zero depth along the optical axis
// project to infinite or NaN coordinates and are left as such.
func (params *PinholeCameraIntrinsics) Project(pc *pointcloud.PointCloud) (u, v *mat.Dense, err error) {
	n := params.Width * params.Height
	if pc.Size() != n {
		return nil, nil, utils.NewSizeMismatchError("point cloud", pc.Size(), params.Height, params.Width)
	}

	pts := mat.NewDense(3, n, nil)
	pc.Iterate(func(i int, p r3.Vector) bool {
		pts.Set(0, i, p.X)
		pts.Set(1, i, p.Y)
		pts.Set(2, i, p.Z)
		return true
	})

	var optical, homogeneous mat.Dense
	optical.Mul(spatialmath.ForwardToOpticalBasis().Dense(), pts)
	homogeneous.Mul(params.GetCameraMatrix(), &optical)

	u = mat.NewDense(params.Height, params.Width, nil)
	v = mat.NewDense(params.Height, params.Width, nil)
	for i := 0; i < n; i++ {
		row, col := utils.SubFor(i, params.Width)
		z := homogeneous.At(2, i)
		u.Set(row, col, homogeneous.At(0, i)/z)
		v.Set(row, col, homogeneous.At(1, i)/z)
	}
	return u, v, nil
}
