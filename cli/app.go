// Package cli contains the twoview command line tools.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	configFlag       = "config"
	debugFlag        = "debug"
	matchesFlag      = "matches"
	camerasFlag      = "cameras"
	observationsFlag = "observations"
	intrinsicsFlag   = "intrinsics"
	thresholdFlag    = "threshold"
	seedFlag         = "seed"
	trialsFlag       = "trials"
	workersFlag      = "workers"
	parallelFlag     = "parallel"
	plotFlag         = "plot"
	tableFlag        = "table"
	logFileFlag      = "log-file"
)

func estimationFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:     matchesFlag,
			Usage:    "read correspondences from `FILE`",
			Required: true,
		},
		&cli.Float64Flag{
			Name:  thresholdFlag,
			Usage: "epipolar distance in pixels below which a correspondence is an inlier",
		},
		&cli.Uint64Flag{
			Name:  seedFlag,
			Usage: "seed of the random sampler",
		},
		&cli.IntFlag{
			Name:  trialsFlag,
			Usage: "maximum number of RANSAC trials",
		},
		&cli.IntFlag{
			Name:  workersFlag,
			Usage: "number of goroutines running trials",
		},
		&cli.BoolFlag{
			Name:  parallelFlag,
			Usage: "run trials on as many goroutines as the machine allows, overrides --workers",
		},
		&cli.BoolFlag{
			Name:  tableFlag,
			Usage: "print a table instead of JSON",
		},
	}, extra...)
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "twoview",
		Usage:           "estimate two-view epipolar geometry and triangulate points",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configFlag,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    debugFlag,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  logFileFlag,
				Usage: "also write logs to `FILE`, rotated every 64MB",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "fmatrix",
				Usage: "robustly estimate the fundamental matrix of a set of correspondences",
				Flags: estimationFlags(&cli.StringFlag{
					Name:  plotFlag,
					Usage: "write an inlier plot of the second image to `PNG`",
				}),
				Action: FundamentalMatrixAction,
			},
			{
				Name:  "compose",
				Usage: "compute the fundamental matrix relating two projection matrices",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     camerasFlag,
						Usage:    "read the two 3x4 projection matrices from `FILE`",
						Required: true,
					},
				},
				Action: ComposeAction,
			},
			{
				Name:  "triangulate",
				Usage: "triangulate points observed by several cameras",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     observationsFlag,
						Usage:    "read projection matrices and observations from `FILE`",
						Required: true,
					},
				},
				Action: TriangulateAction,
			},
			{
				Name:  "pose",
				Usage: "estimate the fundamental matrix then recover the relative camera pose",
				Flags: estimationFlags(&cli.StringFlag{
					Name:  intrinsicsFlag,
					Usage: "read camera intrinsics from `FILE` instead of the config",
				}),
				Action: PoseAction,
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of the config file",
				Action: SchemaAction,
			},
		},
	}
}
