//
// Tencent is pleased to support the open source community by making p4clreport available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// p4clreport is licensed under the Apache License Version 2.0.
//

// Package config loads p4clreport settings from YAML, the environment and
// defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvStream    = "P4CLREPORT_STREAM"
	EnvOutputDir = "P4CLREPORT_OUTPUT_DIR"
	EnvP4Bin     = "P4CLREPORT_P4_BIN"
	EnvStrict    = "P4CLREPORT_STRICT"
	EnvP4Port    = "P4PORT"
	EnvP4User    = "P4USER"
	EnvP4Client  = "P4CLIENT"
	EnvP4Charset = "P4CHARSET"
)

// File listing modes.
const (
	FilesModeBatch     = "batch"
	FilesModePerChange = "per-change"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all p4clreport configuration.
type Config struct {
	// Stream is the stream whose workspaces select the reported changes.
	Stream string `yaml:"stream"`
	// OutputDir receives <stream>-CLs-for-<month>-<year>.xlsx.
	OutputDir string `yaml:"output_dir"`
	// DepotPath limits the queried files, //... by default.
	DepotPath string `yaml:"depot_path"`
	// FilePrefix marks the start of the reported file path, "<stream>/" when empty.
	FilePrefix string `yaml:"file_prefix"`
	// Strict turns p4 failures into errors instead of empty output.
	Strict bool `yaml:"strict"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	P4    P4Config    `yaml:"p4"`
	Files FilesConfig `yaml:"files"`
}

// P4Config configures the p4 command line client.
type P4Config struct {
	Bin     string `yaml:"bin"`
	Port    string `yaml:"port"`
	User    string `yaml:"user"`
	Client  string `yaml:"client"`
	Charset string `yaml:"charset"`
	// Timeout bounds each p4 call, e.g. "2m". Empty means no limit.
	Timeout string `yaml:"timeout"`
}

// FilesConfig configures how changed files are listed.
type FilesConfig struct {
	Mode        string   `yaml:"mode"`        // batch or per-change
	BatchSize   int      `yaml:"batch_size"`  // changes per p4 files call in batch mode
	Parallelism int      `yaml:"parallelism"` // concurrent calls in per-change mode
	Exclude     []string `yaml:"exclude"`     // doublestar patterns relative to file_prefix
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OutputDir: os.TempDir(),
		DepotPath: "//...",
		LogLevel:  "info",
		P4: P4Config{
			Bin: "p4",
		},
		Files: FilesConfig{
			Mode:        FilesModeBatch,
			BatchSize:   50,
			Parallelism: 1,
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path yields the defaults with overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides fields with the non-empty environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvStream); v != "" {
		c.Stream = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv(EnvP4Bin); v != "" {
		c.P4.Bin = v
	}
	if v := os.Getenv(EnvStrict); v != "" {
		if strict, err := strconv.ParseBool(v); err == nil {
			c.Strict = strict
		}
	}
	if v := os.Getenv(EnvP4Port); v != "" {
		c.P4.Port = v
	}
	if v := os.Getenv(EnvP4User); v != "" {
		c.P4.User = v
	}
	if v := os.Getenv(EnvP4Client); v != "" {
		c.P4.Client = v
	}
	if v := os.Getenv(EnvP4Charset); v != "" {
		c.P4.Charset = v
	}
}

// EffectiveFilePrefix returns FilePrefix or "<stream>/".
func (c *Config) EffectiveFilePrefix() string {
	if c.FilePrefix != "" {
		return c.FilePrefix
	}
	return strings.TrimSuffix(c.Stream, "/") + "/"
}

// GetP4Timeout parses P4.Timeout, zero when unset.
func (c *Config) GetP4Timeout() time.Duration {
	d, err := time.ParseDuration(c.P4.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Validate checks the fields needed to produce a report.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Stream) == "" {
		return fmt.Errorf("%w: stream is required (set --stream, %s or stream in the config file)", ErrInvalid, EnvStream)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("%w: output_dir is required", ErrInvalid)
	}
	switch c.Files.Mode {
	case FilesModeBatch, FilesModePerChange:
	default:
		return fmt.Errorf("%w: files.mode must be %s or %s, got %q", ErrInvalid, FilesModeBatch, FilesModePerChange, c.Files.Mode)
	}
	if c.Files.BatchSize <= 0 {
		return fmt.Errorf("%w: files.batch_size must be greater than 0", ErrInvalid)
	}
	if c.Files.Parallelism < 0 {
		return fmt.Errorf("%w: files.parallelism must not be negative", ErrInvalid)
	}
	if c.P4.Timeout != "" {
		if d, err := time.ParseDuration(c.P4.Timeout); err != nil || d < 0 {
			return fmt.Errorf("%w: p4.timeout %q is not a duration", ErrInvalid, c.P4.Timeout)
		}
	}
	return nil
}
