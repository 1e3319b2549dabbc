// Package executor consumes a transfer plan sequentially, delegating each
// copy to the external transfer tool and isolating failures per task.
package executor

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/shutterback/shutterback/internal/errors"
	"github.com/shutterback/shutterback/internal/logging"
	"github.com/shutterback/shutterback/pkg/planner"
)

// Copier is the external transfer mechanism. After a successful Copy the
// file exists under destDir with content identical to src; a failed or
// interrupted invocation leaves no partial destination file.
type Copier interface {
	Copy(ctx context.Context, src, destDir string) error
}

// ProgressFunc is called after every consumed task with the running count.
type ProgressFunc func(done int, task planner.Task)

// Executor runs a plan one task at a time. Single-threaded on purpose: the
// target hardware favors an undivided I/O stream over throughput.
type Executor struct {
	copier   Copier
	progress ProgressFunc
	logger   zerolog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Executor) {
		e.progress = fn
	}
}

// New creates an executor that delegates copies to the given copier.
func New(copier Copier, opts ...Option) *Executor {
	e := &Executor{
		copier: copier,
		logger: logging.GetLogger("executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute consumes the plan and returns the aggregated report. Per-task
// failures are recorded and execution continues with the next task; only
// context cancellation stops consumption, and then the report covers what
// was processed so far.
func (e *Executor) Execute(ctx context.Context, tasks iter.Seq[planner.Task]) *RunReport {
	start := time.Now()
	report := &RunReport{}

	for task := range tasks {
		select {
		case <-ctx.Done():
			e.logger.Warn().Msg("interrupted, stopping after current task")
			report.interrupted = true
			report.Elapsed = time.Since(start)
			return report
		default:
		}

		report.Scanned++
		e.runTask(ctx, task, report)

		if e.progress != nil {
			e.progress(report.Scanned, task)
		}
	}

	report.Elapsed = time.Since(start)
	return report
}

func (e *Executor) runTask(ctx context.Context, task planner.Task, report *RunReport) {
	switch task.Disposition {
	case planner.DispositionCopy:
		if err := e.copy(ctx, task); err != nil {
			e.logger.Error().Err(err).Str("path", task.RelPath).Msg("copy failed")
			report.Failed++
			report.Failures = append(report.Failures, Failure{Path: task.SourcePath, Err: err})
			return
		}
		e.logger.Info().Str("path", task.RelPath).Int64("size", task.Size).Msg("copied")
		report.Copied++
		report.BytesCopied += task.Size

	case planner.DispositionSkipDuplicate:
		e.logger.Info().Str("path", task.RelPath).Str("reason", task.Reason).Msg("skipped duplicate")
		report.Skipped++

	case planner.DispositionSkipChangedPolicy:
		e.logger.Warn().Str("path", task.RelPath).Str("reason", task.Reason).Msg("skipped changed file")
		report.SkippedChanged++

	case planner.DispositionFailed:
		e.logger.Error().Err(task.Err).Str("path", task.SourcePath).Msg("unresolved file")
		report.Failed++
		report.Failures = append(report.Failures, Failure{Path: task.SourcePath, Err: task.Err})
	}
}

func (e *Executor) copy(ctx context.Context, task planner.Task) error {
	destDir := filepath.Dir(task.DestPath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return errors.Wrap(err, errors.ErrTransferFailed, "create destination directory %s", destDir)
	}
	if err := e.copier.Copy(ctx, task.SourcePath, destDir); err != nil {
		return errors.Wrap(err, errors.ErrTransferFailed, "transfer %s", task.RelPath)
	}
	return nil
}
