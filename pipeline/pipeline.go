// Package pipeline computes the optical flow between two posed depth views
// and writes its artifacts.
package pipeline

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/TimingSpace/ImageFlow/config"
	"github.com/TimingSpace/ImageFlow/flow"
	"github.com/TimingSpace/ImageFlow/logging"
	"github.com/TimingSpace/ImageFlow/pointcloud"
	"github.com/TimingSpace/ImageFlow/posestore"
	"github.com/TimingSpace/ImageFlow/rimage"
	"github.com/TimingSpace/ImageFlow/rimage/transform"
	"github.com/TimingSpace/ImageFlow/spatialmath"
	"github.com/TimingSpace/ImageFlow/utils"
)

// Output file names, relative to the output directory.
const (
	DepthDump0File    = "depth_0.dat"
	DepthDump1File    = "depth_1.dat"
	CamCloud0File     = "XInCam_0.ply"
	WorldCloud0File   = "XInWorld_0.ply"
	CamCloud1File     = "XInCam_1.ply"
	WorldCloud1File   = "XInWorld_1.ply"
	Cam0InCam1File    = "X_01.ply"
	FlowImageFile     = "flow.png"
	MagnitudePlotFile = "magnitude.png"
)

// Result holds everything derived for one pair of views.
type Result struct {
	Pose0, Pose1     spatialmath.Pose
	Camera0, Camera1 *spatialmath.CameraPose
	// Relative rotates points from the first camera's frame into the second's.
	Relative *spatialmath.RotationMatrix

	// CamCloud0 and WorldCloud0 are the first view in its camera frame and in
	// the world frame. Cam0InCam1 is the first view seen from the second camera.
	CamCloud0, WorldCloud0, Cam0InCam1 *pointcloud.PointCloud
	// CamCloud1 and WorldCloud1 are the second view. They are only set by Run.
	CamCloud1, WorldCloud1 *pointcloud.PointCloud

	Flow *flow.Field
}

// Compute derives the flow of the first view's pixels into the second camera.
// It performs no I/O.
func Compute(
	intrinsics *transform.PinholeCameraIntrinsics,
	pose0, pose1 *spatialmath.CameraPose,
	depth0 *rimage.DepthMap,
) (*Result, error) {
	if err := intrinsics.CheckValid(); err != nil {
		return nil, err
	}
	cam0, world0, err := backProject(intrinsics, pose0, depth0, pointcloud.FrameCamera0)
	if err != nil {
		return nil, errors.Wrap(err, "first view")
	}
	cam0In1 := pointcloud.New(pointcloud.FrameCamera1, pose1.WorldToCamera(world0.Points()))

	pu, pv, err := intrinsics.Project(cam0In1)
	if err != nil {
		return nil, err
	}
	field, err := flow.NewField(pu, pv)
	if err != nil {
		return nil, err
	}
	return &Result{
		Camera0:     pose0,
		Camera1:     pose1,
		Relative:    spatialmath.RelativeRotation(pose0, pose1),
		CamCloud0:   cam0,
		WorldCloud0: world0,
		Cam0InCam1:  cam0In1,
		Flow:        field,
	}, nil
}

// backProject returns a view's points in its camera frame and in the world frame.
func backProject(
	intrinsics *transform.PinholeCameraIntrinsics,
	pose *spatialmath.CameraPose,
	depth *rimage.DepthMap,
	frame string,
) (cam, world *pointcloud.PointCloud, err error) {
	cam, err = intrinsics.BackProject(depth, frame)
	if err != nil {
		return nil, nil, err
	}
	world = pointcloud.New(pointcloud.FrameWorld, pose.CameraToWorld(cam.Points()))
	return cam, world, nil
}

// Run executes a full run described by cfg: it resolves both poses, loads
// both depth maps, computes the flow and writes the enabled outputs.
func Run(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := posestore.Load(cfg.PoseNamesPath(), cfg.PoseKey, cfg.PoseDataPath())
	if err != nil {
		return nil, err
	}
	logger.Infow("poses loaded", "count", store.Len(), "file", cfg.PoseDataPath())

	pose0, cam0, err := store.CameraPose(cfg.PoseID0)
	if err != nil {
		return nil, err
	}
	pose1, cam1, err := store.CameraPose(cfg.PoseID1)
	if err != nil {
		return nil, err
	}
	logger.Debugw("first pose", "id", cfg.PoseID0, "pose", pose0, "R", cam0.Rotation, "R_inv", cam0.RotationInverse)
	logger.Debugw("second pose", "id", cfg.PoseID1, "pose", pose1, "R", cam1.Rotation, "R_inv", cam1.RotationInverse)

	var depth0, depth1 *rimage.DepthMap
	var loads errgroup.Group
	loads.Go(func() (err error) {
		depth0, err = rimage.ReadDepthMap(cfg.DepthPath(cfg.PoseID0))
		return err
	})
	loads.Go(func() (err error) {
		depth1, err = rimage.ReadDepthMap(cfg.DepthPath(cfg.PoseID1))
		return err
	})
	if err := loads.Wait(); err != nil {
		return nil, err
	}

	intrinsics := cfg.Camera.Intrinsics()
	logger.Debugw("camera", "K", intrinsics.GetCameraMatrix().RawMatrix().Data)

	res, err := Compute(intrinsics, cam0, cam1, depth0)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot compute flow from %q to %q", cfg.PoseID0, cfg.PoseID1)
	}
	res.Pose0, res.Pose1 = pose0, pose1
	logger.Debugw("relative rotation", "R", res.Relative)

	res.CamCloud1, res.WorldCloud1, err = backProject(intrinsics, cam1, depth1, pointcloud.FrameCamera1)
	if err != nil {
		return nil, errors.Wrap(err, "second view")
	}

	if summary, err := res.Flow.Summary(); err != nil {
		logger.Warnw("flow has no finite pixels", "error", err)
	} else {
		logger.Infow("flow computed",
			"pixels", summary.Pixels,
			"non_finite", summary.NonFinite,
			"mean", summary.Mean,
			"median", summary.Median,
			"p95", summary.P95,
			"max", summary.Max)
	}

	if err := writeOutputs(ctx, cfg, res, depth0, depth1, logger); err != nil {
		return nil, err
	}
	return res, nil
}

func writeOutputs(
	ctx context.Context,
	cfg *config.Config,
	res *Result,
	depth0, depth1 *rimage.DepthMap,
	logger logging.Logger,
) error {
	var jobs []utils.Task
	if cfg.WriteDumps {
		jobs = append(jobs,
			func(ctx context.Context) error {
				return rimage.WriteText(cfg.OutPath(DepthDump0File), depth0.Dense(), rimage.DepthFormat)
			},
			func(ctx context.Context) error {
				return rimage.WriteText(cfg.OutPath(DepthDump1File), depth1.Dense(), rimage.DepthFormat)
			},
			func(ctx context.Context) error {
				return res.Flow.WriteDumps(cfg.OutPath(""))
			},
		)
	}
	if cfg.WritePLY {
		opts := cfg.ExportOptions()
		for _, c := range []struct {
			name  string
			cloud *pointcloud.PointCloud
		}{
			{CamCloud0File, res.CamCloud0},
			{WorldCloud0File, res.WorldCloud0},
			{CamCloud1File, res.CamCloud1},
			{WorldCloud1File, res.WorldCloud1},
			{Cam0InCam1File, res.Cam0InCam1},
		} {
			c := c
			jobs = append(jobs, func(ctx context.Context) error {
				n, err := pointcloud.Export(cfg.OutPath(c.name), c.cloud, opts)
				if err != nil {
					return err
				}
				logger.Debugw("point cloud written", "file", c.name, "frame", c.cloud.Frame(), "points", n)
				return nil
			})
		}
	}
	if cfg.Visualize {
		jobs = append(jobs,
			func(ctx context.Context) error {
				return flow.WritePNG(cfg.OutPath(FlowImageFile), res.Flow.ToImage())
			},
			func(ctx context.Context) error {
				if _, err := res.Flow.Summary(); err != nil {
					logger.Warnw("skipping magnitude plot", "error", err)
					return nil
				}
				return res.Flow.PlotMagnitude(cfg.OutPath(MagnitudePlotFile))
			},
		)
	}
	if len(jobs) == 0 {
		return nil
	}

	//nolint:gosec
	if err := os.MkdirAll(cfg.OutPath(""), 0o755); err != nil {
		return errors.Wrapf(err, "cannot create output directory %q", cfg.OutPath(""))
	}
	elapsed, err := utils.RunTasks(ctx, jobs)
	if err != nil {
		return errors.Wrap(err, "cannot write outputs")
	}
	logger.Infow("outputs written", "dir", cfg.OutPath(""), "files", len(jobs), "elapsed", elapsed)
	return nil
}
