package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/xraph/asyncjobs"
	"github.com/xraph/asyncjobs/job"
	"github.com/xraph/asyncjobs/selector"
	"github.com/xraph/asyncjobs/tracker"
)

// GetAction prints the job with --id from the combined state of the logs.
func GetAction(ctx context.Context, cmd *cli.Command) error {
	return queryAction(ctx, cmd, func(tr *tracker.Tracker) (*job.Job, error) {
		jobID := cmd.String("id")
		j, ok := tr.Job(jobID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", asyncjobs.ErrJobNotFound, jobID)
		}
		return j, nil
	})
}

// LatestAction prints the most recent job named --name.
func LatestAction(ctx context.Context, cmd *cli.Command) error {
	return selectAction(ctx, cmd, (*tracker.Tracker).Latest)
}

// EarliestAction prints the oldest job named --name.
func EarliestAction(ctx context.Context, cmd *cli.Command) error {
	return selectAction(ctx, cmd, (*tracker.Tracker).Earliest)
}

func selectAction(ctx context.Context, cmd *cli.Command, pick func(*tracker.Tracker, selector.Options) (*job.Job, bool)) error {
	opts, err := selectOptions(cmd)
	if err != nil {
		return err
	}
	return queryAction(ctx, cmd, func(tr *tracker.Tracker) (*job.Job, error) {
		j, ok := pick(tr, opts)
		if !ok {
			return nil, fmt.Errorf("%w: no %s job matches", asyncjobs.ErrJobNotFound, opts.Name)
		}
		return j, nil
	})
}

func selectOptions(cmd *cli.Command) (selector.Options, error) {
	opts := selector.Options{
		Name:      cmd.String("name"),
		AnyStatus: cmd.Bool("any-status"),
	}
	if c := cmd.String("compare"); c != "" {
		status, err := job.ParseStatus(c)
		if err != nil {
			return selector.Options{}, err
		}
		opts.CompareStatus = status
	}
	return opts, nil
}

func queryAction(ctx context.Context, cmd *cli.Command, find func(*tracker.Tracker) (*job.Job, error)) error {
	format := cmd.String("format")
	if err := checkFormat(format); err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	tr, err := s.replayAll(ctx, cmd.StringSlice("file"))
	if err != nil {
		return err
	}
	defer tr.Close(ctx)

	j, err := find(tr)
	if err != nil {
		return err
	}

	if format == formatJSON {
		return writeJSON(s.stdout, j)
	}
	writeJobsTable(s.stdout, []*job.Job{j})
	return nil
}
