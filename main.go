// Command examengine runs the Moderation Pipeline once and exits,
// following the same config-load -> connect -> signal-handler -> run ->
// graceful-exit shape as the teacher's main.go, restructured around a
// batch run instead of an HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"examengine/config"
	"examengine/events"
	"examengine/logging"
	"examengine/pipeline"
	"examengine/store"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cmd := "pipeline"
	rest := args
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd = args[0]
		rest = args[1:]
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := loggerFor(cfg)
	runID := uuid.NewString()
	log = log.With("runId", runID, "command", cmd)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if d := cfg.Timeout(); d > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, d)
		defer timeoutCancel()
	}

	st, err := store.Connect(ctx, cfg.MongoDBURI)
	if err != nil {
		return fmt.Errorf("connect store: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := st.Close(closeCtx); err != nil {
			log.Warn("error closing store connection", "error", err)
		}
	}()

	ev := events.NewClient(cfg.SupabaseURL, cfg.SupabaseKey)
	runner := pipeline.New(st, ev, cfg, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatch(gctx, runner, cmd, rest, log)
	})

	start := time.Now()
	err = g.Wait()
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			log.Error("run cancelled", "reason", ctx.Err(), "elapsed", elapsed)
		} else {
			log.Error("run failed", "error", err, "elapsed", elapsed)
		}
		return err
	}
	log.Info("run completed", "elapsed", elapsed)
	return nil
}

// dispatch runs the subcommand named by cmd, following §4.11's four
// operator verbs.
func dispatch(ctx context.Context, runner *pipeline.Runner, cmd string, args []string, log *slog.Logger) error {
	switch cmd {
	case "pipeline":
		return runner.Cycle(ctx)
	case "recover-challenges":
		return runner.RecoverChallenges(ctx)
	case "recover-challenges-since":
		from, to, err := parseSinceWindow(args)
		if err != nil {
			return err
		}
		return runner.RecoverChallengesSince(ctx, from, to)
	case "validate-generations":
		tally, err := runner.ValidateGenerations(ctx)
		if err != nil {
			return err
		}
		log.Info("validate-generations: done", "checked", tally.Checked, "passed", tally.Passed, "failed", tally.Failed)
		if tally.Failed > 0 {
			return fmt.Errorf("validate-generations: %d of %d generations failed validation", tally.Failed, tally.Checked)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q: expected pipeline|recover-challenges|recover-challenges-since|validate-generations", cmd)
	}
}

func parseSinceWindow(args []string) (time.Time, time.Time, error) {
	fs := flag.NewFlagSet("recover-challenges-since", flag.ContinueOnError)
	from := fs.String("from", "", "RFC3339 start of the moderationDate window (inclusive)")
	to := fs.String("to", "", "RFC3339 end of the moderationDate window (exclusive)")
	if err := fs.Parse(args); err != nil {
		return time.Time{}, time.Time{}, err
	}
	fromT, err := time.Parse(time.RFC3339, *from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--from must be RFC3339: %w", err)
	}
	toT, err := time.Parse(time.RFC3339, *to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--to must be RFC3339: %w", err)
	}
	if !toT.After(fromT) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to must be after --from")
	}
	return fromT, toT, nil
}

func loggerFor(cfg *config.Config) *slog.Logger {
	return logging.New(cfg.LogLevel).With("environment", string(cfg.Environment))
}
