package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/xraph/asyncjobs"
	"github.com/xraph/asyncjobs/action"
	audithook "github.com/xraph/asyncjobs/audit_hook"
	"github.com/xraph/asyncjobs/reducer"
	"github.com/xraph/asyncjobs/report"
	"github.com/xraph/asyncjobs/tracker"
)

const (
	reporterSlog   = "slog"
	reporterLogrus = "logrus"
)

// session holds what every log-reading command needs.
type session struct {
	cfg      asyncjobs.Config
	logger   *slog.Logger
	reporter report.Reporter
	codec    action.Codec
	stdout   io.Writer

	// audit is nil unless --audit was given.
	audit      *audithook.Extension
	closeAudit func() error
}

func newSession(cmd *cli.Command) (*session, error) {
	cfg, err := LoadConfig(cmd.String("env"))
	if err != nil {
		return nil, err
	}

	stdout, stderr := writers(cmd)
	s := &session{
		cfg:    cfg,
		logger: NewLogger(cfg, stderr),
		stdout: stdout,
	}

	switch r := cmd.String("reporter"); r {
	case reporterSlog, "":
		s.reporter = report.NewSlogReporter(s.logger)
	case reporterLogrus:
		s.reporter = report.NewLogrusReporter(NewLogrusLogger(cfg, stderr))
	default:
		return nil, fmt.Errorf("unknown reporter %q", r)
	}

	codecName := cfg.Codec
	if cmd.IsSet("codec") {
		codecName = cmd.String("codec")
	}
	if s.codec, err = action.GetCodec(codecName); err != nil {
		return nil, err
	}

	if path := cmd.String("audit"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create audit trail: %w", err)
		}
		s.audit = audithook.New(jsonLinesRecorder(f), audithook.WithLogger(s.logger))
		s.closeAudit = f.Close
	}

	return s, nil
}

// close releases the audit trail file, if any.
func (s *session) close() error {
	if s.closeAudit == nil {
		return nil
	}
	return s.closeAudit()
}

// jsonLinesRecorder writes one JSON audit event per line. Trackers replaying
// different files share it, so writes are serialized.
func jsonLinesRecorder(w io.Writer) audithook.Recorder {
	var mu sync.Mutex
	enc := json.NewEncoder(w)
	return audithook.RecorderFunc(func(_ context.Context, evt *audithook.AuditEvent) error {
		mu.Lock()
		defer mu.Unlock()
		return enc.Encode(evt)
	})
}

// writers returns the root command's output streams, falling back to the
// process streams.
func writers(cmd *cli.Command) (stdout, stderr io.Writer) {
	root := cmd.Root()
	stdout, stderr = root.Writer, root.ErrWriter
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return stdout, stderr
}

func (s *session) newTracker(rep report.Reporter) (*tracker.Tracker, error) {
	opts := []tracker.Option{
		tracker.WithConfig(s.cfg),
		tracker.WithLogger(s.logger),
		tracker.WithReporter(rep),
		tracker.WithClock(replayClock(time.Now())),
	}
	if s.audit != nil {
		opts = append(opts, tracker.WithExtension(s.audit))
	}
	return tracker.New(opts...)
}

// replayClock starts at start and advances one millisecond per reading, so
// actions from a log without times keep their order in job timestamps.
func replayClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start.Truncate(time.Millisecond)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(time.Millisecond)
		return t
	}
}

// readLog decodes every action in the file at path.
func readLog(path string, codec action.Codec) ([]action.Action, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open action log: %w", err)
	}
	defer f.Close()

	actions, err := action.ReadAll(f, codec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return actions, nil
}

// replayResult is the state one action log folds into.
type replayResult struct {
	Path     string        `json:"path"`
	Actions  int           `json:"actions"`
	Rejected int           `json:"rejected"`
	State    reducer.State `json:"jobs"`
}

// replayEach folds every log into its own tracker concurrently. Results
// keep the order of paths.
func (s *session) replayEach(ctx context.Context, paths []string) ([]replayResult, error) {
	results := make([]replayResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			actions, err := readLog(path, s.codec)
			if err != nil {
				return err
			}

			rec := &report.Recorder{}
			tr, err := s.newTracker(report.Multi(s.reporter, rec))
			if err != nil {
				return err
			}
			defer tr.Close(ctx)

			if err := tr.Replay(ctx, actions...); err != nil {
				return fmt.Errorf("replay %s: %w", path, err)
			}

			results[i] = replayResult{
				Path:     path,
				Actions:  len(actions),
				Rejected: len(rec.Violations()),
				State:    tr.State(),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// replayAll folds every log, in order, into a single tracker.
func (s *session) replayAll(ctx context.Context, paths []string) (*tracker.Tracker, error) {
	tr, err := s.newTracker(s.reporter)
	if err != nil {
		return nil, err
	}

	for _, path := range paths {
		actions, err := readLog(path, s.codec)
		if err != nil {
			return nil, err
		}
		if err := tr.Replay(ctx, actions...); err != nil {
			return nil, fmt.Errorf("replay %s: %w", path, err)
		}
	}

	s.logger.Debug("action logs replayed",
		slog.Int("files", len(paths)),
		slog.Int("jobs", tr.State().Len()),
	)
	return tr, nil
}
