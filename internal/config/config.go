// Package config holds run settings. Values come from defaults, then an
// optional TOML file, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"image-fetcher/internal/modules/downloader"
	"image-fetcher/internal/modules/persistence"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	SaveDir   string
	Timeout   time.Duration
	UserAgent string
	Progress  bool
	Verbose   bool
}

// file mirrors the TOML layout. Timeout is a Go duration string such as "10s".
type file struct {
	SaveDir   string `toml:"save_dir"`
	Timeout   string `toml:"timeout"`
	UserAgent string `toml:"user_agent"`
	Progress  *bool  `toml:"progress"`
	Verbose   *bool  `toml:"verbose"`
}

func Default() Config {
	return Config{
		SaveDir:   persistence.DefaultDownloadDir,
		Timeout:   downloader.DefaultTimeout,
		UserAgent: downloader.DefaultUserAgent,
	}
}

// Load returns the defaults overlaid with the TOML file at path.
// An empty path yields the defaults; a named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	var f file
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if f.SaveDir != "" {
		cfg.SaveDir = f.SaveDir
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("invalid timeout %q in %s: %w", f.Timeout, path, err)
		}
		cfg.Timeout = d
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.Progress != nil {
		cfg.Progress = *f.Progress
	}
	if f.Verbose != nil {
		cfg.Verbose = *f.Verbose
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.SaveDir) == "" {
		return errors.New("save dir must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		return errors.New("user agent must not be empty")
	}
	return nil
}
