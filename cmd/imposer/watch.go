package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/imposer/internal/imposition"
	"github.com/jackzampolin/imposer/internal/jobfile"
	"github.com/jackzampolin/imposer/internal/report"
)

var (
	watchFlags    jobFlags
	watchSettle   time.Duration
	watchAttempts uint
)

var watchCmd = &cobra.Command{
	Use:   "watch JOB_FILE",
	Short: "Re-impose whenever the job file or its source PDF changes",
	Long: `Impose JOB_FILE, then keep watching it and its source PDF. Every change
triggers a fresh run once the files have been quiet for --settle.

A source that cannot be read yet (still being exported, say) is retried up to
--attempts times. Other failures are reported and the watch continues.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := loggerFrom(cmd)

		m, job, err := loadJob(ctx, args[0], watchFlags.overrides, logger)
		if err != nil {
			return err
		}

		w := &watcher{
			out:      cmd.OutOrStdout(),
			logger:   logger,
			builder:  jobfile.NewBuilder(m),
			flags:    watchFlags.overrides,
			settle:   watchSettle,
			attempts: watchAttempts,
			trigger:  make(chan struct{}, 1),
		}
		m.OnChange(func(*jobfile.File) { w.poke() })
		if err := m.WatchConfig(ctx); err != nil {
			return err
		}
		return w.run(ctx, job)
	},
}

func init() {
	watchFlags.register(watchCmd)
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 500*time.Millisecond, "quiet period before re-imposing")
	watchCmd.Flags().UintVar(&watchAttempts, "attempts", 5, "attempts per run while the source is unreadable")

	rootCmd.AddCommand(watchCmd)
}

type watcher struct {
	out      io.Writer
	logger   *slog.Logger
	builder  *jobfile.Builder
	flags    jobfile.Overrides
	settle   time.Duration
	attempts uint
	trigger  chan struct{}
}

func (w *watcher) poke() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// run imposes job, then re-imposes on every trigger until ctx is done.
func (w *watcher) run(ctx context.Context, job imposition.Job) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	watchedDir := ""
	follow := func(source string) {
		dir := filepath.Dir(source)
		if dir == watchedDir {
			return
		}
		if watchedDir != "" {
			_ = fsw.Remove(watchedDir)
		}
		if err := fsw.Add(dir); err != nil {
			w.logger.Warn("cannot watch source directory", "dir", dir, "error", err)
			watchedDir = ""
			return
		}
		watchedDir = dir
	}

	follow(job.SourcePath)
	w.impose(ctx, job)

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.settle, func() {
			select {
			case fire <- struct{}{}:
			default:
			}
		})
	}

	w.logger.Info("watching for changes", "source", job.SourcePath)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case <-w.trigger:
			schedule()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) == filepath.Clean(job.SourcePath) &&
				event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				schedule()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("source watcher error", "error", err)
		case <-fire:
			next, err := w.builder.Job(ctx, w.flags)
			if err != nil {
				w.logger.Error("job file no longer builds a job", "error", err)
				continue
			}
			job = next
			follow(job.SourcePath)
			w.impose(ctx, job)
		}
	}
}

// impose runs job, retrying while the source is unreadable, and prints the
// report of the final attempt.
func (w *watcher) impose(ctx context.Context, job imposition.Job) {
	attempts := w.attempts
	if attempts == 0 {
		attempts = 1 // zero means unlimited to retry-go
	}

	var rep *report.Run
	err := retry.Do(
		func() error {
			var err error
			rep, err = imposeOnce(ctx, job, runOptions{})
			if err != nil && !errors.Is(err, imposition.ErrSourceRead) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(w.settle),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			w.logger.Info("source not readable yet, retrying", "attempt", n+1, "error", err)
		}),
	)
	if err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Error("imposition failed", "job", job.Name, "error", err)
	}
	if rep != nil {
		if err := report.Write(w.out, format, rep); err != nil {
			w.logger.Warn("failed to print report", "error", err)
		}
	}
}
