package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// PoseTableColumns is the width of one pose table row: tx, ty, tz, qx, qy, qz, qw.
const PoseTableColumns = 7

// Pose is a translation and orientation as stored in the pose table.
type Pose struct {
	Translation r3.Vector
	Orientation Quaternion
}

// NewPoseFromRow builds a Pose from a pose table row.
func NewPoseFromRow(row []float64) (Pose, error) {
	if len(row) != PoseTableColumns {
		return Pose{}, errors.Errorf("pose row has %d values, need %d", len(row), PoseTableColumns)
	}
	return Pose{
		Translation: r3.Vector{X: row[0], Y: row[1], Z: row[2]},
		Orientation: Quaternion{X: row[3], Y: row[4], Z: row[5], W: row[6]},
	}, nil
}

func (p Pose) String() string {
	return fmt.Sprintf("t=(%g, %g, %g) q=(%g, %g, %g, %g)",
		p.Translation.X, p.Translation.Y, p.Translation.Z,
		p.Orientation.X, p.Orientation.Y, p.Orientation.Z, p.Orientation.W)
}

// CameraPose is the rigid transform of one camera derived from its table Pose.
// Rotation is the inverse of the orientation's rotation matrix and Translation
// is the negated table translation. RotationInverse is computed by inverting
// Rotation again rather than reusing the orientation matrix.
type CameraPose struct {
	Rotation        *RotationMatrix
	RotationInverse *RotationMatrix
	Translation     r3.Vector
}

// NewCameraPose derives the camera transform of p.
func NewCameraPose(p Pose) (*CameraPose, error) {
	rot, err := QuatToRotationMatrix(p.Orientation).Inverse()
	if err != nil {
		return nil, errors.Wrapf(err, "pose %v", p)
	}
	rotInv, err := rot.Inverse()
	if err != nil {
		return nil, errors.Wrapf(err, "pose %v", p)
	}
	return &CameraPose{
		Rotation:        rot,
		RotationInverse: rotInv,
		Translation:     p.Translation.Mul(-1),
	}, nil
}

// CameraToWorld expresses camera frame points in the world frame as
// RotationInverse * (X - Translation).
func (cp *CameraPose) CameraToWorld(pts []r3.Vector) []r3.Vector {
	return ApplyAll(cp.RotationInverse, TranslateAll(pts, cp.Translation, Subtract))
}

// WorldToCamera expresses world frame points in this camera's frame as
// Rotation * X + Translation.
func (cp *CameraPose) WorldToCamera(pts []r3.Vector) []r3.Vector {
	return TranslateAll(ApplyAll(cp.Rotation, pts), cp.Translation, Add)
}

// RelativeRotation returns the rotation taking the from camera's frame to the
// to camera's frame, to.Rotation * from.RotationInverse.
func RelativeRotation(from, to *CameraPose) *RotationMatrix {
	return to.Rotation.MatMul(from.RotationInverse)
}
