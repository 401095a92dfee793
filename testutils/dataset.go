// Package testutils writes small synthetic data sets for tests.
package testutils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"github.com/TimingSpace/ImageFlow/config"
	"github.com/TimingSpace/ImageFlow/rimage"
	"github.com/TimingSpace/ImageFlow/spatialmath"
	"github.com/TimingSpace/ImageFlow/utils"
)

// View is one posed depth image of a synthetic data set.
type View struct {
	ID    string
	Pose  spatialmath.Pose
	Depth *rimage.DepthMap
}

// ConstantDepth returns a height x width depth map with every pixel at d.
func ConstantDepth(height, width int, d float64) *rimage.DepthMap {
	dm := rimage.NewEmptyDepthMap(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dm.Set(x, y, d)
		}
	}
	return dm
}

// PoseRow is the pose table row of p.
func PoseRow(p spatialmath.Pose) []float64 {
	return []float64{
		p.Translation.X, p.Translation.Y, p.Translation.Z,
		p.Orientation.X, p.Orientation.Y, p.Orientation.Z, p.Orientation.W,
	}
}

// WriteDataset lays views out in a fresh temporary directory the way a
// recorded data set is stored and returns a config for a run from the first
// view to the second. The camera matches the depth maps with the given focal
// length.
func WriteDataset(t *testing.T, focal float64, views ...View) *config.Config {
	t.Helper()
	test.That(t, len(views), test.ShouldBeGreaterThanOrEqualTo, 2)

	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.OutDir = "ImageFlow"
	cfg.PoseID0, cfg.PoseID1 = views[0].ID, views[1].ID
	cfg.Camera = config.Camera{
		Focal:  focal,
		Height: views[0].Depth.Height(),
		Width:  views[0].Depth.Width(),
	}

	ids := make([]string, 0, len(views))
	rows := mat.NewDense(len(views), spatialmath.PoseTableColumns, nil)
	test.That(t, os.MkdirAll(filepath.Join(cfg.DataDir, cfg.DepthDir), 0o750), test.ShouldBeNil)
	for i, v := range views {
		ids = append(ids, v.ID)
		rows.SetRow(i, PoseRow(v.Pose))
		test.That(t, rimage.WriteDepthMap(cfg.DepthPath(v.ID), v.Depth), test.ShouldBeNil)
	}

	names, err := json.Marshal(map[string][]string{cfg.PoseKey: ids})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, os.WriteFile(cfg.PoseNamesPath(), names, 0o600), test.ShouldBeNil)
	test.That(t, utils.WriteNpyFile(cfg.PoseDataPath(), rows), test.ShouldBeNil)
	return cfg
}
