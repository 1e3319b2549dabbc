// Package config handles TOML configuration loading for shutterback.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/shutterback/shutterback/internal/errors"
)

// Config is the root configuration structure. CLI flags override file
// values, which override the defaults.
type Config struct {
	Library LibraryConfig `toml:"library"`
	Backup  BackupConfig  `toml:"backup"`
	Log     LogConfig     `toml:"log"`
}

type LibraryConfig struct {
	Root     string   `toml:"root"`
	Excludes []string `toml:"excludes"`
}

type BackupConfig struct {
	Destination string   `toml:"destination"`
	Extensions  []string `toml:"extensions"`
	RsyncPath   string   `toml:"rsync_path"`
	RsyncArgs   []string `toml:"rsync_args"`
}

type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// DefaultExtensions is the media extension set backed up when no override
// is configured.
var DefaultExtensions = []string{
	".jpg", ".jpeg", ".png", ".heic", ".mov", ".mp4", ".m4v", ".gif", ".raw", ".aaf",
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backup: BackupConfig{
			Extensions: DefaultExtensions,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a TOML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, errors.ErrConfigLoad, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, errors.ErrConfigLoad, "parse config %s", path)
	}

	cfg.Library.Root = ExpandPath(cfg.Library.Root)
	cfg.Backup.Destination = ExpandPath(cfg.Backup.Destination)
	cfg.Log.File = ExpandPath(cfg.Log.File)
	return cfg, nil
}

// Validate checks that the configuration names a usable run.
func (c *Config) Validate() error {
	if c.Library.Root == "" {
		return errors.New(errors.ErrConfigInvalid, "library root is required")
	}
	if c.Backup.Destination == "" {
		return errors.New(errors.ErrConfigInvalid, "backup destination is required")
	}
	if len(c.Backup.Extensions) == 0 {
		return errors.New(errors.ErrConfigInvalid, "extension set must not be empty")
	}
	for _, ext := range c.Backup.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return errors.New(errors.ErrConfigInvalid, "extension %q must start with a dot", ext)
		}
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
	}
	return path
}
