package executor

import (
	"fmt"
	"io"
	"time"
)

// Failure records one task that could not be completed.
type Failure struct {
	Path string
	Err  error
}

// RunReport aggregates the outcome of a run.
type RunReport struct {
	Scanned        int
	Copied         int
	Skipped        int
	SkippedChanged int
	Failed         int
	BytesCopied    int64
	Elapsed        time.Duration
	Failures       []Failure

	interrupted bool
}

// Interrupted reports whether the run stopped before consuming every task.
// It is set by the executor on context cancellation.
func (r *RunReport) Interrupted() bool {
	return r.interrupted
}

// OK reports whether the run completed with zero failed tasks.
func (r *RunReport) OK() bool {
	return r.Failed == 0
}

// WriteSummary writes the human-readable run summary.
func (r *RunReport) WriteSummary(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Summary ===")
	fmt.Fprintf(w, "Scanned: %d files\n", r.Scanned)
	fmt.Fprintf(w, "Copied: %d files (%s)\n", r.Copied, formatBytes(r.BytesCopied))
	fmt.Fprintf(w, "Skipped duplicates: %d files\n", r.Skipped)
	if r.SkippedChanged > 0 {
		fmt.Fprintf(w, "Skipped changed files (destination preserved): %d\n", r.SkippedChanged)
	}
	if r.Failed > 0 {
		fmt.Fprintf(w, "Failed: %d files\n", r.Failed)
		for _, f := range r.Failures {
			fmt.Fprintf(w, "  %s: %v\n", f.Path, f.Err)
		}
	}
	if r.interrupted {
		fmt.Fprintln(w, "Run interrupted before completion")
	}
	fmt.Fprintf(w, "Duration: %s\n", r.Elapsed.Round(time.Millisecond))
}

// formatBytes formats bytes in human readable form.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
