// Package config loads and validates locfang settings from file, env and
// defaults.
package config

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/locfang/pkg/scan"
	"github.com/Sumatoshi-tech/locfang/pkg/tally"
)

// Default values applied before any config file or env override.
const (
	// DefaultWorkers of zero means "derive from the CPU count for the
	// selected mode".
	DefaultWorkers = 0

	DefaultMode   = "processes"
	DefaultFormat = "text"

	DefaultMaxFileSize    = scan.DefaultMaxFileSize
	DefaultSniffThreshold = scan.DefaultSniffThreshold
)

// ErrInvalidConfig indicates a configuration value failed validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the top-level configuration struct for locfang.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Workers int        `mapstructure:"workers"`
	Mode    string     `mapstructure:"mode"`
	Format  string     `mapstructure:"format"`
	Scan    ScanConfig `mapstructure:"scan"`
}

// ScanConfig holds file selection knobs. The extension allow-list and the
// directory denylist are configuration, not logic.
type ScanConfig struct {
	Extensions     []string `mapstructure:"extensions"`
	SkipDirs       []string `mapstructure:"skip_dirs"`
	MaxFileSize    int64    `mapstructure:"max_file_size"`
	SniffThreshold int64    `mapstructure:"sniff_threshold"`
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Workers)
	}

	if _, err := ParseMode(c.Mode); err != nil {
		return err
	}

	switch c.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, c.Format)
	}

	if c.Scan.MaxFileSize <= 0 {
		return fmt.Errorf("%w: scan.max_file_size must be positive", ErrInvalidConfig)
	}

	if c.Scan.SniffThreshold <= 0 {
		return fmt.Errorf("%w: scan.sniff_threshold must be positive", ErrInvalidConfig)
	}

	return nil
}

// ParseMode maps a mode name to its tally.Mode.
func ParseMode(name string) (tally.Mode, error) {
	switch name {
	case "serial":
		return tally.ModeSerial, nil
	case "threads":
		return tally.ModeThreads, nil
	case "processes":
		return tally.ModeProcesses, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, name)
	}
}

// ScanOptions translates the scan section into classifier options.
func (c *Config) ScanOptions() scan.Options {
	return scan.Options{
		Extensions:     c.Scan.Extensions,
		SkipDirs:       c.Scan.SkipDirs,
		MaxFileSize:    c.Scan.MaxFileSize,
		SniffThreshold: c.Scan.SniffThreshold,
	}
}
