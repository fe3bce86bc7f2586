package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// ReplayAction folds each --file into its own job state and prints it.
func ReplayAction(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	if err := checkFormat(format); err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	results, err := s.replayEach(ctx, cmd.StringSlice("file"))
	if err != nil {
		return err
	}

	if format == formatJSON {
		return writeJSON(s.stdout, results)
	}

	for _, r := range results {
		fmt.Fprintf(s.stdout, "\n=== %s (%d actions, %d rejected) ===\n", r.Path, r.Actions, r.Rejected)
		writeJobsTable(s.stdout, r.State.Jobs())
	}
	return nil
}
