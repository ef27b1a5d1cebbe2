// Package config provides reviewer configuration.
//
// Configuration comes from an optional TOML or YAML file, chosen by
// extension, followed by ANNOHELPER_* environment overrides. A missing
// file yields the defaults.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the complete reviewer configuration.
type Config struct {
	Log        LogConfig        `toml:"log" yaml:"log"`
	Checkpoint CheckpointConfig `toml:"checkpoint" yaml:"checkpoint"`
	Review     ReviewConfig     `toml:"review" yaml:"review"`
	Watch      WatchConfig      `toml:"watch" yaml:"watch"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level"`
}

// CheckpointConfig configures checkpoint storage.
type CheckpointConfig struct {
	// Path is the checkpoint used when a command gets no file argument.
	Path string `toml:"path" yaml:"path"`
	// Extension is appended to new checkpoints that have none.
	Extension string `toml:"extension" yaml:"extension"`
	// Atomic saves write a temp file and rename it over the target.
	Atomic bool `toml:"atomic" yaml:"atomic"`
	// MaxSize is the largest checkpoint accepted, in bytes. 0 = unlimited.
	MaxSize int64 `toml:"max_size" yaml:"max_size"`
}

// ReviewConfig configures the review workflow.
type ReviewConfig struct {
	// Autosave saves the checkpoint after every cursor move.
	Autosave bool `toml:"autosave" yaml:"autosave"`
}

// WatchConfig configures checkpoint watching.
type WatchConfig struct {
	// Debounce is a duration string such as "200ms".
	Debounce string `toml:"debounce" yaml:"debounce"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Checkpoint: CheckpointConfig{
			Extension: ".check",
			Atomic:    true,
			MaxSize:   10 * 1024 * 1024,
		},
		Watch: WatchConfig{Debounce: "200ms"},
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Field: "log.level", Message: fmt.Sprintf("unknown level %q", c.Log.Level)}
	}
	if c.Checkpoint.MaxSize < 0 {
		return &ValidationError{Field: "checkpoint.max_size", Message: "must not be negative"}
	}
	if ext := c.Checkpoint.Extension; ext != "" && !strings.HasPrefix(ext, ".") {
		return &ValidationError{Field: "checkpoint.extension", Message: fmt.Sprintf("%q must start with a dot", ext)}
	}
	if _, err := c.DebounceDelay(); err != nil {
		return &ValidationError{Field: "watch.debounce", Message: err.Error()}
	}
	return nil
}

// DebounceDelay parses Watch.Debounce.
func (c Config) DebounceDelay() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %s must be positive", d)
	}
	return d, nil
}
