// Package config defines the settings of one image flow run.
package config

import (
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/TimingSpace/ImageFlow/pointcloud"
	"github.com/TimingSpace/ImageFlow/posestore"
	"github.com/TimingSpace/ImageFlow/rimage"
	"github.com/TimingSpace/ImageFlow/rimage/transform"
	"github.com/TimingSpace/ImageFlow/utils"
)

// Config describes one run: where the data set lives, which two poses to
// compare, the camera and the outputs to produce. Relative paths other than
// DataDir are resolved against DataDir.
type Config struct {
	ConfigFilePath string `json:"-"`

	DataDir       string `json:"data_dir"`
	PoseNamesFile string `json:"pose_names_file"`
	PoseDataFile  string `json:"pose_data_file"`
	PoseKey       string `json:"pose_key"`
	DepthDir      string `json:"depth_dir"`
	DepthSuffix   string `json:"depth_suffix"`
	DepthExt      string `json:"depth_ext"`
	OutDir        string `json:"out_dir"`

	PoseID0 string `json:"pose_id_0"`
	PoseID1 string `json:"pose_id_1"`

	Camera Camera `json:"camera"`

	DistanceRange float64  `json:"distance_range"`
	Palette       []string `json:"palette"`
	ColorLevels   int      `json:"color_levels"`

	WriteDumps bool `json:"write_dumps"`
	WritePLY   bool `json:"write_ply"`
	Visualize  bool `json:"visualize"`
}

// Camera is the pinhole camera shared by both views.
type Camera struct {
	Focal  float64 `json:"focal"`
	Height int     `json:"height_px"`
	Width  int     `json:"width_px"`
}

// Intrinsics returns the camera model with the principal point at the image
// center.
func (c Camera) Intrinsics() *transform.PinholeCameraIntrinsics {
	return transform.NewPinholeCameraIntrinsics(c.Focal, c.Height, c.Width)
}

// Default returns the settings of a standard run. The data and output
// directories can be moved with IMAGEFLOW_DATA_DIR and IMAGEFLOW_OUT_DIR.
func Default() *Config {
	return &Config{
		DataDir:       utils.LookupEnvDefault(utils.DataDirEnvVar, "./data"),
		PoseNamesFile: "pose_name.json",
		PoseDataFile:  "pose_wo_name.npy",
		PoseKey:       posestore.DefaultKey,
		DepthDir:      "depth_plan",
		DepthSuffix:   "_depth",
		DepthExt:      ".npy",
		OutDir:        utils.LookupEnvDefault(utils.OutDirEnvVar, "ImageFlow"),
		Camera: Camera{
			Focal:  320,
			Height: 360,
			Width:  640,
		},
		DistanceRange: 50,
		Palette:       append([]string(nil), pointcloud.DefaultPalette...),
		ColorLevels:   pointcloud.DefaultColorLevels,
		WriteDumps:    true,
		WritePLY:      true,
		Visualize:     true,
	}
}

// Validate checks the whole config and reports every problem found.
func (c *Config) Validate() error {
	path := c.ConfigFilePath
	if path == "" {
		path = "config"
	}

	var errs error
	for _, f := range []struct {
		name  string
		value string
	}{
		{"data_dir", c.DataDir},
		{"pose_names_file", c.PoseNamesFile},
		{"pose_data_file", c.PoseDataFile},
		{"depth_dir", c.DepthDir},
		{"out_dir", c.OutDir},
		{"pose_id_0", c.PoseID0},
		{"pose_id_1", c.PoseID1},
	} {
		if f.value == "" {
			errs = multierr.Append(errs, goutils.NewConfigValidationFieldRequiredError(path, f.name))
		}
	}
	if err := c.Camera.Intrinsics().CheckValid(); err != nil {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path, err))
	}
	if !(c.DistanceRange > 0) {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path,
			errors.Errorf("distance_range must be positive, got %v", c.DistanceRange)))
	}
	if _, err := pointcloud.ParsePalette(c.Palette); err != nil {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path, err))
	}
	if c.ColorLevels < 1 {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path,
			errors.Errorf("color_levels must be at least 1, got %d", c.ColorLevels)))
	}
	return errs
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

// PoseNamesPath is the JSON file listing the pose ids.
func (c *Config) PoseNamesPath() string {
	return c.resolve(c.PoseNamesFile)
}

// PoseDataPath is the NumPy pose table.
func (c *Config) PoseDataPath() string {
	return c.resolve(c.PoseDataFile)
}

// DepthPath is the depth map file of the given pose id.
func (c *Config) DepthPath(id string) string {
	return rimage.DepthPath(c.resolve(c.DepthDir), id, c.DepthSuffix, c.DepthExt)
}

// OutPath is the named file in the output directory.
func (c *Config) OutPath(name string) string {
	return filepath.Join(c.resolve(c.OutDir), name)
}

// ExportOptions returns the point cloud export settings.
func (c *Config) ExportOptions() pointcloud.ExportOptions {
	return pointcloud.ExportOptions{
		RadiusLimit: c.DistanceRange,
		Palette:     c.Palette,
		Levels:      c.ColorLevels,
	}
}
