// Package rsync invokes the external rsync binary to transfer single
// files. Archive mode preserves timestamps and permissions, and rsync's
// write-to-temp-then-rename behavior keeps a failed or interrupted
// transfer from leaving a partial destination file.
package rsync

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const defaultBinary = "rsync"

// Runner copies files by shelling out to rsync.
type Runner struct {
	binary    string
	extraArgs []string
}

// Option configures a Runner.
type Option func(*Runner)

// WithBinary overrides the rsync binary path.
func WithBinary(path string) Option {
	return func(r *Runner) {
		if path != "" {
			r.binary = path
		}
	}
}

// WithExtraArgs appends additional arguments to every invocation.
func WithExtraArgs(args []string) Option {
	return func(r *Runner) {
		r.extraArgs = args
	}
}

// New creates a Runner with defaults.
func New(opts ...Option) *Runner {
	r := &Runner{binary: defaultBinary}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Copy transfers a single file into destDir. Re-invocation with an
// identical source is idempotent: rsync leaves an up-to-date destination
// untouched.
func (r *Runner) Copy(ctx context.Context, src, destDir string) error {
	cmd := exec.CommandContext(ctx, r.binary, r.args(src, destDir)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("rsync %s: %w: %s", src, err, firstLine(msg))
		}
		return fmt.Errorf("rsync %s: %w", src, err)
	}
	return nil
}

func (r *Runner) args(src, destDir string) []string {
	args := []string{"-a"}
	args = append(args, r.extraArgs...)
	// A trailing separator makes rsync treat destDir as a directory to
	// copy into rather than a file to create.
	return append(args, src, destDir+"/")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
