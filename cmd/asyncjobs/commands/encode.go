package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/xraph/asyncjobs/action"
)

// EncodeAction converts the action log at --in from --from to --to.
func EncodeAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := LoadConfig(cmd.String("env"))
	if err != nil {
		return err
	}
	stdout, stderr := writers(cmd)
	logger := NewLogger(cfg, stderr)

	from, err := action.GetCodec(cmd.String("from"))
	if err != nil {
		return err
	}
	to, err := action.GetCodec(cmd.String("to"))
	if err != nil {
		return err
	}

	actions, err := readLog(cmd.String("in"), from)
	if err != nil {
		return err
	}

	w := stdout
	if out := cmd.String("out"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := action.WriteAll(w, to, actions); err != nil {
		return err
	}

	logger.InfoContext(ctx, "action log converted",
		slog.String("from", from.Name()),
		slog.String("to", to.Name()),
		slog.Int("actions", len(actions)),
	)
	return nil
}
