package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/annohelper/internal/vfs"
)

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel   = "ANNOHELPER_LOG_LEVEL"
	EnvCheckpoint = "ANNOHELPER_CHECKPOINT"
	EnvAutosave   = "ANNOHELPER_AUTOSAVE"
	EnvAtomic     = "ANNOHELPER_ATOMIC"
)

// Load reads the config file at path over the defaults, applies the
// process environment, and validates the result.
// An empty path or a missing file yields the defaults.
func Load(fsys vfs.VFS, path string) (Config, error) {
	cfg, err := LoadFile(fsys, path)
	if err != nil {
		return Config{}, err
	}
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads the config file at path over the defaults without
// consulting the environment.
func LoadFile(fsys vfs.VFS, path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil // File doesn't exist, not an error
		}
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			perr := &ParseError{Path: path, Err: err}
			var de *toml.DecodeError
			if errors.As(err, &de) {
				perr.Line, perr.Column = de.Position()
			}
			return Config{}, perr
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, &ParseError{Path: path, Err: err}
		}
	default:
		return Config{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with ANNOHELPER_* variables found by lookup.
// Empty string values are treated as set.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.Log.Level = v
	}
	if v, ok := lookup(EnvCheckpoint); ok {
		cfg.Checkpoint.Path = v
	}
	if v, ok := lookup(EnvAutosave); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &ValidationError{Field: EnvAutosave, Message: fmt.Sprintf("invalid boolean %q", v)}
		}
		cfg.Review.Autosave = b
	}
	if v, ok := lookup(EnvAtomic); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &ValidationError{Field: EnvAtomic, Message: fmt.Sprintf("invalid boolean %q", v)}
		}
		cfg.Checkpoint.Atomic = b
	}
	return nil
}
