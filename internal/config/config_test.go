package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shutterback/shutterback/internal/errors"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultExtensions, cfg.Backup.Extensions)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadOverridesDefaults(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.toml")
	content := `
[library]
root = "` + tmp + `"
excludes = ["**/derivatives/"]

[backup]
destination = "/mnt/backup"
extensions = [".jpg", ".dng"]
rsync_path = "/opt/bin/rsync"
rsync_args = ["--timeout=0"]

[log]
file = "/var/log/shutterback.log"
level = "debug"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, tmp, cfg.Library.Root)
	assert.Equal(t, []string{"**/derivatives/"}, cfg.Library.Excludes)
	assert.Equal(t, "/mnt/backup", cfg.Backup.Destination)
	assert.Equal(t, []string{".jpg", ".dng"}, cfg.Backup.Extensions)
	assert.Equal(t, "/opt/bin/rsync", cfg.Backup.RsyncPath)
	assert.Equal(t, []string{"--timeout=0"}, cfg.Backup.RsyncArgs)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrConfigLoad, errors.GetCode(err))
}

func TestLoadMalformed(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[library\nroot="), 0644))
	_, err := Load(cfgPath)
	require.Error(t, err)
	assert.Equal(t, errors.ErrConfigLoad, errors.GetCode(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing library root",
			mutate:  func(c *Config) { c.Library.Root = "" },
			wantErr: true,
		},
		{
			name:    "missing destination",
			mutate:  func(c *Config) { c.Backup.Destination = "" },
			wantErr: true,
		},
		{
			name:    "empty extension set",
			mutate:  func(c *Config) { c.Backup.Extensions = nil },
			wantErr: true,
		},
		{
			name:    "extension without dot",
			mutate:  func(c *Config) { c.Backup.Extensions = []string{"jpg"} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Library.Root = "/photos"
			cfg.Backup.Destination = "/backup"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrConfigInvalid, errors.GetCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "Pictures"), ExpandPath("~/Pictures"))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, "/absolute/path", ExpandPath("/absolute/path"))
	assert.Equal(t, "relative/~path", ExpandPath("relative/~path"))
}
