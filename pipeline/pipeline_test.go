package pipeline

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/TimingSpace/ImageFlow/flow"
	"github.com/TimingSpace/ImageFlow/logging"
	"github.com/TimingSpace/ImageFlow/posestore"
	"github.com/TimingSpace/ImageFlow/rimage"
	"github.com/TimingSpace/ImageFlow/rimage/transform"
	"github.com/TimingSpace/ImageFlow/spatialmath"
	"github.com/TimingSpace/ImageFlow/testutils"
)

const (
	testHeight = 6
	testWidth  = 8
	testFocal  = 4.
)

var (
	identity = spatialmath.Pose{Orientation: spatialmath.NewZeroOrientation()}
	// 90 degrees about z
	yawed = spatialmath.Pose{
		Translation: r3.Vector{X: 1, Y: 2, Z: 3},
		Orientation: spatialmath.Quaternion{Z: math.Sqrt2 / 2, W: math.Sqrt2 / 2},
	}
	// one unit along the forward axis
	forward = spatialmath.Pose{
		Translation: r3.Vector{X: 1},
		Orientation: spatialmath.NewZeroOrientation(),
	}
)

func cameraPose(t *testing.T, p spatialmath.Pose) *spatialmath.CameraPose {
	t.Helper()
	cp, err := spatialmath.NewCameraPose(p)
	test.That(t, err, test.ShouldBeNil)
	return cp
}

func testIntrinsics() *transform.PinholeCameraIntrinsics {
	return transform.NewPinholeCameraIntrinsics(testFocal, testHeight, testWidth)
}

func compute(t *testing.T, p0, p1 spatialmath.Pose, depth *rimage.DepthMap) *flow.Field {
	t.Helper()
	res, err := Compute(testIntrinsics(), cameraPose(t, p0), cameraPose(t, p1), depth)
	test.That(t, err, test.ShouldBeNil)
	return res.Flow
}

func TestIdenticalPosesHaveNoFlow(t *testing.T) {
	depth := testutils.ConstantDepth(testHeight, testWidth, 10)
	for _, p := range []spatialmath.Pose{identity, yawed} {
		f := compute(t, p, p, depth)
		height, width := f.Dims()
		test.That(t, height, test.ShouldEqual, testHeight)
		test.That(t, width, test.ShouldEqual, testWidth)
		for r := 0; r < height; r++ {
			for c := 0; c < width; c++ {
				test.That(t, f.Du.At(r, c), test.ShouldAlmostEqual, 0, 1e-9)
				test.That(t, f.Dv.At(r, c), test.ShouldAlmostEqual, 0, 1e-9)
				test.That(t, f.Magnitude.At(r, c), test.ShouldAlmostEqual, 0, 1e-9)
			}
		}
	}
}

func TestForwardMotionIsRadial(t *testing.T) {
	f := compute(t, identity, forward, testutils.ConstantDepth(testHeight, testWidth, 10))
	ppx, ppy := testIntrinsics().Ppx, testIntrinsics().Ppy

	for r := 0; r < testHeight; r++ {
		for c := 0; c < testWidth; c++ {
			x, y := float64(c)-ppx, float64(r)-ppy
			du, dv := f.Du.At(r, c), f.Dv.At(r, c)
			// every point is a ninth closer, so it moves out by a ninth
			test.That(t, du, test.ShouldAlmostEqual, x/9, 1e-9)
			test.That(t, dv, test.ShouldAlmostEqual, y/9, 1e-9)
			// parallel to the ray from the principal point
			test.That(t, du*y-dv*x, test.ShouldAlmostEqual, 0, 1e-9)
		}
	}

	// mirrored pixels about the principal point move in opposite directions
	test.That(t, f.Du.At(1, 2), test.ShouldAlmostEqual, -f.Du.At(5, 6), 1e-9)
	test.That(t, f.Dv.At(1, 2), test.ShouldAlmostEqual, -f.Dv.At(5, 6), 1e-9)
	// the principal point does not move
	test.That(t, f.Magnitude.At(3, 4), test.ShouldAlmostEqual, 0, 1e-9)
}

func TestRotationFlowIgnoresDepth(t *testing.T) {
	half := 5 * math.Pi / 180
	turned := spatialmath.Pose{Orientation: spatialmath.Quaternion{Z: math.Sin(half), W: math.Cos(half)}}

	near := compute(t, identity, turned, testutils.ConstantDepth(testHeight, testWidth, 5))
	far := compute(t, identity, turned, testutils.ConstantDepth(testHeight, testWidth, 50))
	for r := 0; r < testHeight; r++ {
		for c := 0; c < testWidth; c++ {
			test.That(t, near.Du.At(r, c), test.ShouldAlmostEqual, far.Du.At(r, c), 1e-9)
			test.That(t, near.Dv.At(r, c), test.ShouldAlmostEqual, far.Dv.At(r, c), 1e-9)
			test.That(t, near.Magnitude.At(r, c), test.ShouldBeGreaterThan, 0)
		}
	}
}

func TestComputeClouds(t *testing.T) {
	depth := testutils.ConstantDepth(testHeight, testWidth, 10)
	res, err := Compute(testIntrinsics(), cameraPose(t, yawed), cameraPose(t, forward), depth)
	test.That(t, err, test.ShouldBeNil)

	n := testHeight * testWidth
	test.That(t, res.CamCloud0.Size(), test.ShouldEqual, n)
	test.That(t, res.WorldCloud0.Size(), test.ShouldEqual, n)
	test.That(t, res.Cam0InCam1.Size(), test.ShouldEqual, n)
	test.That(t, res.CamCloud1, test.ShouldBeNil)

	// first pixel: forward 10, right (0-4)*10/4, down (0-3)*10/4
	p := res.CamCloud0.At(0)
	test.That(t, p, test.ShouldResemble, r3.Vector{X: 10, Y: -10, Z: -7.5})

	// the world point seen from the second camera is the world point shifted back
	w := res.WorldCloud0.At(0)
	q := res.Cam0InCam1.At(0)
	test.That(t, q.X, test.ShouldAlmostEqual, w.X-1, 1e-9)
	test.That(t, q.Y, test.ShouldAlmostEqual, w.Y, 1e-9)
	test.That(t, q.Z, test.ShouldAlmostEqual, w.Z, 1e-9)

	expected := spatialmath.RelativeRotation(res.Camera0, res.Camera1)
	test.That(t, res.Relative.AlmostEqual(expected, 1e-12), test.ShouldBeTrue)
}

func TestComputeErrors(t *testing.T) {
	cp := cameraPose(t, identity)
	_, err := Compute(testIntrinsics(), cp, cp, testutils.ConstantDepth(4, 4, 1))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "don't match")

	bad := transform.NewPinholeCameraIntrinsics(0, testHeight, testWidth)
	_, err = Compute(bad, cp, cp, testutils.ConstantDepth(testHeight, testWidth, 1))
	test.That(t, errors.Is(err, transform.ErrNoIntrinsics), test.ShouldBeTrue)
}

func TestZeroDepthIsNonFinite(t *testing.T) {
	depth := testutils.ConstantDepth(testHeight, testWidth, 10)
	depth.Set(1, 2, 0)
	f := compute(t, identity, identity, depth)
	test.That(t, math.IsNaN(f.Du.At(2, 1)), test.ShouldBeTrue)
	test.That(t, math.IsNaN(f.Magnitude.At(2, 1)), test.ShouldBeTrue)

	summary, err := f.Summary()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, summary.NonFinite, test.ShouldEqual, 1)
	test.That(t, summary.Max, test.ShouldAlmostEqual, 0, 1e-9)
}

func writeTestDataset(t *testing.T) []testutils.View {
	t.Helper()
	return []testutils.View{
		{ID: "000000_490248", Pose: identity, Depth: testutils.ConstantDepth(testHeight, testWidth, 10)},
		{ID: "000013_496146", Pose: forward, Depth: testutils.ConstantDepth(testHeight, testWidth, 9)},
	}
}

func plyVertexCount(t *testing.T, fn string) string {
	t.Helper()
	//nolint:gosec
	raw, err := os.ReadFile(fn)
	test.That(t, err, test.ShouldBeNil)
	for _, line := range strings.Split(string(raw), "\n") {
		if count, ok := strings.CutPrefix(line, "element vertex "); ok {
			return count
		}
	}
	t.Fatalf("%s has no vertex count", fn)
	return ""
}

func TestRun(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	cfg := testutils.WriteDataset(t, testFocal, writeTestDataset(t)...)

	res, err := Run(context.Background(), cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Pose1, test.ShouldResemble, forward)
	test.That(t, res.CamCloud1.Size(), test.ShouldEqual, testHeight*testWidth)
	test.That(t, res.WorldCloud1.Frame(), test.ShouldEqual, "world")
	test.That(t, res.Flow.Du.At(0, 0), test.ShouldAlmostEqual, -4./9, 1e-9)

	for _, name := range append([]string{
		DepthDump0File, DepthDump1File,
		CamCloud0File, WorldCloud0File, CamCloud1File, WorldCloud1File, Cam0InCam1File,
		FlowImageFile, MagnitudePlotFile,
	}, flow.DumpFiles...) {
		info, err := os.Stat(cfg.OutPath(name))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)
	}
	test.That(t, plyVertexCount(t, cfg.OutPath(Cam0InCam1File)), test.ShouldEqual, "48")

	test.That(t, logs.FilterMessage("flow computed").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessage("outputs written").Len(), test.ShouldEqual, 1)
}

func TestRunZeroQuaternion(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	views := writeTestDataset(t)
	views[0].Pose = spatialmath.Pose{Translation: r3.Vector{X: 1}}
	cfg := testutils.WriteDataset(t, testFocal, views...)

	res, err := Run(context.Background(), cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	for _, v := range res.Camera0.Rotation.Values() {
		test.That(t, math.IsNaN(v), test.ShouldBeTrue)
	}
	for r := 0; r < testHeight; r++ {
		for c := 0; c < testWidth; c++ {
			test.That(t, math.IsNaN(res.Flow.Du.At(r, c)), test.ShouldBeTrue)
			test.That(t, math.IsNaN(res.Flow.Dv.At(r, c)), test.ShouldBeTrue)
			test.That(t, math.IsNaN(res.Flow.Magnitude.At(r, c)), test.ShouldBeTrue)
		}
	}

	test.That(t, logs.FilterMessage("flow has no finite pixels").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessage("skipping magnitude plot").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessage("outputs written").Len(), test.ShouldEqual, 1)

	// degenerate points are dropped from the exports
	test.That(t, plyVertexCount(t, cfg.OutPath(CamCloud0File)), test.ShouldEqual, "48")
	test.That(t, plyVertexCount(t, cfg.OutPath(WorldCloud0File)), test.ShouldEqual, "0")
	test.That(t, plyVertexCount(t, cfg.OutPath(Cam0InCam1File)), test.ShouldEqual, "0")
	_, err = os.Stat(cfg.OutPath(FlowImageFile))
	test.That(t, err, test.ShouldBeNil)
	_, err = os.Stat(cfg.OutPath(MagnitudePlotFile))
	test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
}

func TestRunWithoutOutputs(t *testing.T) {
	cfg := testutils.WriteDataset(t, testFocal, writeTestDataset(t)...)
	cfg.WriteDumps, cfg.WritePLY, cfg.Visualize = false, false, false

	_, err := Run(context.Background(), cfg, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	_, err = os.Stat(cfg.OutPath(""))
	test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
}

func TestRunErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)

	cfg := testutils.WriteDataset(t, testFocal, writeTestDataset(t)...)
	cfg.PoseID1 = "000099_000000"
	_, err := Run(context.Background(), cfg, logger)
	test.That(t, errors.Is(err, posestore.ErrUnknownPose), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "000099_000000")

	cfg = testutils.WriteDataset(t, testFocal, writeTestDataset(t)...)
	missing := cfg.DepthPath(cfg.PoseID1)
	test.That(t, os.Remove(missing), test.ShouldBeNil)
	_, err = Run(context.Background(), cfg, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, filepath.Base(missing))

	cfg = testutils.WriteDataset(t, testFocal, writeTestDataset(t)...)
	cfg.Camera.Width++
	_, err = Run(context.Background(), cfg, logger)
	test.That(t, err, test.ShouldNotBeNil)

	cfg.PoseID0 = ""
	_, err = Run(context.Background(), cfg, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "pose_id_0")
}
