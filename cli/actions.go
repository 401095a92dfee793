package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/TimingSpace/ImageFlow/config"
	"github.com/TimingSpace/ImageFlow/logging"
	"github.com/TimingSpace/ImageFlow/pipeline"
	"github.com/TimingSpace/ImageFlow/posestore"
)

// loadConfig reads the config named by the global config flag, or the
// defaults when there is none, and applies the data directory override.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if fn := c.String(flagConfig); fn != "" {
		var err error
		if cfg, err = config.Read(fn); err != nil {
			return nil, err
		}
	}
	if c.IsSet(flagDataDir) {
		cfg.DataDir = c.String(flagDataDir)
	}
	return cfg, nil
}

// RunAction is the corresponding action for 'run'.
func RunAction(c *cli.Context, logger logging.Logger) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet(flagPose0) {
		cfg.PoseID0 = c.String(flagPose0)
	}
	if c.IsSet(flagPose1) {
		cfg.PoseID1 = c.String(flagPose1)
	}
	if c.IsSet(flagOutDir) {
		cfg.OutDir = c.String(flagOutDir)
	}
	if c.Bool(flagNoPLY) {
		cfg.WritePLY = false
	}
	if c.Bool(flagNoDump) {
		cfg.WriteDumps = false
	}
	if c.Bool(flagNoShow) {
		cfg.Visualize = false
	}

	res, err := pipeline.Run(c.Context, cfg, logger.Sublogger("pipeline"))
	if err != nil {
		return err
	}

	height, width := res.Flow.Dims()
	fmt.Fprintf(c.App.Writer, "flow %s -> %s: %dx%d pixels\n", cfg.PoseID0, cfg.PoseID1, width, height)
	if summary, err := res.Flow.Summary(); err == nil {
		t := table.NewWriter()
		t.AppendHeader(table.Row{"Pixels", "Non-finite", "Mean", "Median", "P95", "Max"})
		t.AppendRow(table.Row{
			summary.Pixels,
			summary.NonFinite,
			fmt.Sprintf("%.3f", summary.Mean),
			fmt.Sprintf("%.3f", summary.Median),
			fmt.Sprintf("%.3f", summary.P95),
			fmt.Sprintf("%.3f", summary.Max),
		})
		fmt.Fprintln(c.App.Writer, t.Render())
	}
	if cfg.WriteDumps || cfg.WritePLY || cfg.Visualize {
		fmt.Fprintf(c.App.Writer, "outputs in %s\n", cfg.OutPath(""))
	}
	return nil
}

// PoseAction is the corresponding action for 'pose'.
func PoseAction(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("pose needs exactly one pose id")
	}
	id := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet(flagPoseKey) {
		cfg.PoseKey = c.String(flagPoseKey)
	}

	store, err := posestore.Load(cfg.PoseNamesPath(), cfg.PoseKey, cfg.PoseDataPath())
	if err != nil {
		return err
	}
	p, cp, err := store.CameraPose(id)
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.AppendHeader(table.Row{"ID", "Translation", "Orientation"})
	t.AppendRow(table.Row{
		id,
		fmt.Sprintf("X:%g, Y:%g, Z:%g", p.Translation.X, p.Translation.Y, p.Translation.Z),
		fmt.Sprintf("X:%g, Y:%g, Z:%g, W:%g", p.Orientation.X, p.Orientation.Y, p.Orientation.Z, p.Orientation.W),
	})
	fmt.Fprintln(c.App.Writer, t.Render())
	fmt.Fprintf(c.App.Writer, "R =\n%v\n", cp.Rotation)
	fmt.Fprintf(c.App.Writer, "R_inv =\n%v\n", cp.RotationInverse)
	fmt.Fprintf(c.App.Writer, "T = (%g, %g, %g)\n", cp.Translation.X, cp.Translation.Y, cp.Translation.Z)
	return nil
}
