// Package pipeline implements the Moderation Pipeline (§4.7), its
// maintenance tasks (§4.8-4.10), and the supporting runner that wires
// them against the document store, the Scorer, and the Moderation
// Scorer.
//
// Grounded on original_source/moderation-service/src/db.rs (task
// bodies). The fixed task sequence runs as a plain sequential loop
// (RunAll); signal handling, the optional timeout and the errgroup
// that runs the selected command live in main.go.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"examengine/config"
	"examengine/events"
	"examengine/store"
)

// Runner holds everything a pipeline task needs: the document store,
// the event-store client, config, and a logger.
type Runner struct {
	Store  *store.Store
	Events *events.Client
	Config *config.Config
	Log    *slog.Logger
}

// New builds a Runner from its dependencies.
func New(st *store.Store, ev *events.Client, cfg *config.Config, log *slog.Logger) *Runner {
	return &Runner{Store: st, Events: ev, Config: cfg, Log: log}
}

// Task is one named, independently-failing step of a Run.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// RunAll executes tasks strictly in order. A task's error is logged and
// does not prevent the next task from running, per §7's "one failure
// does not prevent the rest" rule; RunAll returns the last error seen,
// if any, so the caller can set a non-zero exit code.
func (r *Runner) RunAll(ctx context.Context, tasks []Task) error {
	var last error
	for _, t := range tasks {
		start := time.Now()
		if err := t.Run(ctx); err != nil {
			r.Log.Error("task failed", "task", t.Name, "error", err, "elapsed", time.Since(start))
			last = err
			continue
		}
		r.Log.Info("task completed", "task", t.Name, "elapsed", time.Since(start))
	}
	return last
}

// Cycle runs the full scheduled sequence for one pipeline invocation:
// duplicate remediation, then T1..T5, in the fixed order §4.7 and §4.8
// require.
func (r *Runner) Cycle(ctx context.Context) error {
	return r.RunAll(ctx, []Task{
		{Name: "DuplicateModerationRemediation", Run: r.DuplicateModerationRemediation},
		{Name: "DeletePracticeAttempts", Run: r.DeletePracticeAttempts},
		{Name: "UpdateModerationCollection", Run: r.UpdateModerationCollection},
		{Name: "AutoApproveModerationRecords", Run: r.AutoApproveModerationRecords},
		{Name: "AwardChallengeIds", Run: r.AwardChallengeIds},
		{Name: "DeleteSupabaseEvents", Run: r.DeleteSupabaseEvents},
	})
}
