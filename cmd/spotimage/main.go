// Package main is a command line tool for converting recorded robot image batches.
package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"go.viam.com/spotbridge/logging"
)

const (
	flagConfig    = "config"
	flagDebug     = "debug"
	flagBatch     = "batch"
	flagOut       = "out"
	flagSkew      = "skew"
	flagRobotName = "robot-name"
)

func newApp() *cli.App {
	return &cli.App{
		Name:            "spotimage",
		Usage:           "convert recorded robot image batches into images, camera info and transforms",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load bridge configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "convert",
				Usage:     "convert a JSON image batch into PNG files and print calibrations and transforms",
				UsageText: "spotimage convert --batch <file> [--out <dir>] [--skew <duration>]",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:     flagBatch,
						Required: true,
						Usage:    "JSON encoded image response batch",
					},
					&cli.PathFlag{
						Name:  flagOut,
						Value: ".",
						Usage: "directory PNG files are written to",
					},
					&cli.DurationFlag{
						Name:  flagSkew,
						Usage: "clock skew between the robot and this machine",
					},
					&cli.StringFlag{
						Name:  flagRobotName,
						Usage: "override the configured robot name",
					},
				},
				Action: ConvertAction,
			},
			{
				Name:   "sources",
				Usage:  "list the image sources and topics selected by the configuration",
				Action: SourcesAction,
			},
		},
	}
}

func newLogger(c *cli.Context) logging.Logger {
	if c.Bool(flagDebug) {
		return logging.NewDebugLogger("spotimage")
	}
	return logging.NewLogger("spotimage")
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logging.Global().Error(err)
		os.Exit(1)
	}
}
