package rsync

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs(t *testing.T) {
	tests := []struct {
		name  string
		extra []string
		want  []string
	}{
		{
			name: "defaults",
			want: []string{"-a", "/lib/a.jpg", "/backup/2023/"},
		},
		{
			name:  "extra args precede paths",
			extra: []string{"--timeout=0", "--partial"},
			want:  []string{"-a", "--timeout=0", "--partial", "/lib/a.jpg", "/backup/2023/"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(WithExtraArgs(tt.extra))
			assert.Equal(t, tt.want, r.args("/lib/a.jpg", "/backup/2023"))
		})
	}
}

func TestCopyFailureIncludesStderr(t *testing.T) {
	// A stub standing in for rsync that always fails with a message.
	dir := t.TempDir()
	stub := filepath.Join(dir, "rsync-stub")
	script := "#!/bin/sh\necho 'rsync error: some files could not be transferred' >&2\nexit 23\n"
	require.NoError(t, os.WriteFile(stub, []byte(script), 0755))

	r := New(WithBinary(stub))
	err := r.Copy(context.Background(), "/lib/a.jpg", dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "some files could not be transferred")
}

func TestCopyMissingBinary(t *testing.T) {
	r := New(WithBinary(filepath.Join(t.TempDir(), "no-such-binary")))
	err := r.Copy(context.Background(), "/lib/a.jpg", t.TempDir())
	assert.Error(t, err)
}

func TestCopyWithRealRsync(t *testing.T) {
	if _, err := exec.LookPath("rsync"); err != nil {
		t.Skip("rsync not installed")
	}

	srcDir := t.TempDir()
	destDir := t.TempDir()
	src := filepath.Join(srcDir, "IMG_0001.jpg")
	require.NoError(t, os.WriteFile(src, []byte("photo bytes"), 0644))

	r := New()
	require.NoError(t, r.Copy(context.Background(), src, destDir))

	copied, err := os.ReadFile(filepath.Join(destDir, "IMG_0001.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "photo bytes", string(copied))

	// Idempotent re-invocation.
	require.NoError(t, r.Copy(context.Background(), src, destDir))
}
