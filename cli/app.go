// Package cli contains the imageflow command line application.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"

	"github.com/TimingSpace/ImageFlow/logging"
)

const (
	// Flags.
	flagConfig  = "config"
	flagDebug   = "debug"
	flagPose0   = "pose0"
	flagPose1   = "pose1"
	flagDataDir = "data-dir"
	flagOutDir  = "out-dir"
	flagNoPLY   = "no-ply"
	flagNoDump  = "no-dump"
	flagNoShow  = "no-show"
	flagPoseKey = "pose-key"

	appName    = "imageflow"
	loggerName = "imageflow"
)

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	var logger logging.Logger

	app := &cli.App{
		Name:            appName,
		Usage:           "compute the optical flow between two posed depth images",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				logger = logging.NewDebugLogger(loggerName)
			} else {
				logger = logging.NewLogger(loggerName)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if logger != nil {
				//nolint:errcheck
				logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "compute the flow from one pose to another and write its outputs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagPose0,
						Usage: "`ID` of the reference pose",
					},
					&cli.StringFlag{
						Name:  flagPose1,
						Usage: "`ID` of the second pose",
					},
					&cli.StringFlag{
						Name:  flagDataDir,
						Usage: "data set `DIR`",
					},
					&cli.StringFlag{
						Name:  flagOutDir,
						Usage: "output `DIR`, relative to the data set unless absolute",
					},
					&cli.BoolFlag{
						Name:  flagNoPLY,
						Usage: "do not write point clouds",
					},
					&cli.BoolFlag{
						Name:  flagNoDump,
						Usage: "do not write text dumps",
					},
					&cli.BoolFlag{
						Name:  flagNoShow,
						Usage: "do not write the flow image and magnitude plot",
					},
				},
				Action: func(c *cli.Context) error {
					return RunAction(c, logger)
				},
			},
			{
				Name:      "pose",
				Usage:     "print a pose and its camera transform",
				ArgsUsage: "<pose id>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagDataDir,
						Usage: "data set `DIR`",
					},
					&cli.StringFlag{
						Name:  flagPoseKey,
						Usage: "JSON `KEY` of the pose id list",
					},
				},
				Action: PoseAction,
			},
		},
	}
	return app
}
