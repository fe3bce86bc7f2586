// Package commands implements the asyncjobs command line: replaying action
// logs into job state, querying the result, and converting logs between
// codecs.
package commands

import (
	"io"

	"github.com/urfave/cli/v3"
)

func envFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "env",
		Usage: "path to a .env file",
		Value: ".env",
	}
}

func fileFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "action log to read (repeatable)",
		Required: true,
	}
}

func codecFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "codec",
		Usage: "action log encoding (json/msgpack); defaults to ASYNCJOBS_CODEC",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "format",
		Usage: "output format (table/json)",
		Value: formatTable,
	}
}

func reporterFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "reporter",
		Usage: "violation reporter (slog/logrus)",
		Value: reporterSlog,
	}
}

func auditFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "audit",
		Usage: "write a JSON-lines audit trail of every transition to this file",
	}
}

func selectFlags() []cli.Flag {
	return []cli.Flag{
		envFlag(),
		fileFlag(),
		codecFlag(),
		formatFlag(),
		reporterFlag(),
		auditFlag(),
		&cli.StringFlag{
			Name:     "name",
			Usage:    "job name",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "compare",
			Usage: "status whose timestamp is compared",
			Value: "PENDING",
		},
		&cli.BoolFlag{
			Name:  "any-status",
			Usage: "consider jobs that are no longer in the compared status",
		},
	}
}

// App builds the asyncjobs command. Results go to stdout, logs to stderr.
func App(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "asyncjobs",
		Usage:     "inspect async job lifecycles recorded as action logs",
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			{
				Name:  "replay",
				Usage: "fold each action log into its own job state and print it",
				Flags: []cli.Flag{
					envFlag(),
					fileFlag(),
					codecFlag(),
					formatFlag(),
					reporterFlag(),
					auditFlag(),
				},
				Action: ReplayAction,
			},
			{
				Name:  "get",
				Usage: "print one job from the combined state of the logs",
				Flags: []cli.Flag{
					envFlag(),
					fileFlag(),
					codecFlag(),
					formatFlag(),
					reporterFlag(),
					auditFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "job ID",
						Required: true,
					},
				},
				Action: GetAction,
			},
			{
				Name:   "latest",
				Usage:  "print the most recent job with a name",
				Flags:  selectFlags(),
				Action: LatestAction,
			},
			{
				Name:   "earliest",
				Usage:  "print the oldest job with a name",
				Flags:  selectFlags(),
				Action: EarliestAction,
			},
			{
				Name:  "encode",
				Usage: "convert an action log between codecs",
				Flags: []cli.Flag{
					envFlag(),
					&cli.StringFlag{
						Name:     "in",
						Usage:    "input action log",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "output file (stdout when empty)",
					},
					&cli.StringFlag{
						Name:  "from",
						Usage: "input codec",
						Value: "json",
					},
					&cli.StringFlag{
						Name:  "to",
						Usage: "output codec",
						Value: "msgpack",
					},
				},
				Action: EncodeAction,
			},
		},
	}
}
