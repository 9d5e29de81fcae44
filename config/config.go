// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/host"
	"github.com/ava-labs/countervm/pebble"
	"github.com/ava-labs/countervm/trace"
)

const (
	defaultDataDir = ".counter-cli"

	defaultLogMaxSizeMB  = 8
	defaultLogMaxBackups = 4
	defaultLogMaxAgeDays = 14
)

type Config struct {
	DataDir string `json:"dataDir" yaml:"dataDir"`

	LogLevel      string `json:"logLevel"      yaml:"logLevel"`
	LogFile       string `json:"logFile"       yaml:"logFile"`
	LogMaxSizeMB  int    `json:"logMaxSizeMB"  yaml:"logMaxSizeMB"`
	LogMaxBackups int    `json:"logMaxBackups" yaml:"logMaxBackups"`
	LogMaxAgeDays int    `json:"logMaxAgeDays" yaml:"logMaxAgeDays"`
	LogCompress   bool   `json:"logCompress"   yaml:"logCompress"`

	Pebble pebble.Config `json:"pebble" yaml:"pebble"`
	Trace  trace.Config  `json:"trace"  yaml:"trace"`
	Host   host.Config   `json:"host"   yaml:"host"`
}

func NewDefaultConfig() *Config {
	return &Config{
		DataDir:       defaultDataDir,
		LogLevel:      logging.Info.String(),
		LogMaxSizeMB:  defaultLogMaxSizeMB,
		LogMaxBackups: defaultLogMaxBackups,
		LogMaxAgeDays: defaultLogMaxAgeDays,
		Pebble:        pebble.NewDefaultConfig(),
		Trace: trace.Config{
			Enabled:         false,
			TraceSampleRate: 1,
			Endpoint:        trace.DefaultEndpoint,
			AppName:         consts.Name,
			Agent:           consts.Name,
			Version:         consts.Version,
		},
		Host: host.NewDefaultConfig(),
	}
}

// Load overlays the file at [path] on the defaults. Files ending in .yaml or
// .yml are parsed as YAML and anything else as JSON.
func Load(path string) (*Config, error) {
	c := NewDefaultConfig()
	if len(path) == 0 {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, c)
	default:
		err = json.Unmarshal(b, c)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	if err := c.Verify(); err != nil {
		return nil, err
	}
	return c, nil
}

// Verify checks the values that cannot be corrected by defaults.
func (c *Config) Verify() error {
	if _, err := logging.ToLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}
	if len(c.DataDir) == 0 {
		return fmt.Errorf("%w: data directory is empty", ErrInvalidConfig)
	}
	if c.Host.MaxArgs <= 0 || c.Host.MaxArgSize <= 0 {
		return fmt.Errorf("%w: host argument limits must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) GetDataDir() string { return c.DataDir }

func (c *Config) GetLogLevel() logging.Level {
	level, err := logging.ToLevel(c.LogLevel)
	if err != nil {
		return logging.Info
	}
	return level
}

func (c *Config) GetLogFile() string             { return c.LogFile }
func (c *Config) GetPebbleConfig() pebble.Config { return c.Pebble }
func (c *Config) GetTraceConfig() *trace.Config  { return &c.Trace }
func (c *Config) GetHostConfig() host.Config     { return c.Host }
