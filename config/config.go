// Copyright (c) 2025-present deep.rent GmbH (https://deep.rent)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the runtime settings shared by the logging backend,
// the reporting hook and the host runner from environment variables.
//
// Variables are mapped onto sections by their first underscore:
//
//	LOG_LEVEL=debug         -> log.level
//	LOG_FORMAT=json         -> log.format
//	LOG_FILE=/var/log/x.log -> log.file
//	LOG_MAX_SIZE=50         -> log.max_size
//	SHUTDOWN_TIMEOUT=30s    -> shutdown.timeout
//	SERVER_ADDR=:8080       -> server.addr
//
// A prefix can be configured to namespace the variables of an application
// (e.g., APP_LOG_LEVEL). Settings that are absent fall back to the defaults
// below.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	DefaultLevel   = "info"
	DefaultFormat  = "text"
	DefaultMaxSize = 10
	DefaultTimeout = 10 * time.Second
	DefaultAddr    = "127.0.0.1:3000"
)

// Config holds all settings recognized by this module.
type Config struct {
	Log      Log      `koanf:"log"`
	Shutdown Shutdown `koanf:"shutdown"`
	Server   Server   `koanf:"server"`
}

// Log configures the logging backend and the reporting threshold.
type Log struct {
	// Level is the minimum severity (debug, info, warn, error). Unrecognized
	// values are treated as info by consumers.
	Level string `koanf:"level"`
	// Format is the output format of the logger (text or json).
	Format string `koanf:"format"`
	// File optionally redirects log output into a rotated file.
	File string `koanf:"file"`
	// MaxSize is the size in megabytes at which the log file is rotated.
	MaxSize int `koanf:"max_size"`
}

// Shutdown configures the host runner.
type Shutdown struct {
	// Timeout bounds how long the host may take to drain after the shutdown
	// signal.
	Timeout time.Duration `koanf:"timeout"`
}

// Server configures the example HTTP server.
type Server struct {
	// Addr is the TCP address to listen on.
	Addr string `koanf:"addr"`
}

var sections = []string{"log", "shutdown", "server"}

type options struct {
	prefix string
}

// Option configures Load.
type Option func(*options)

// WithPrefix returns an Option that namespaces all variables with the given
// prefix. For example, WithPrefix("APP_") reads APP_LOG_LEVEL instead of
// LOG_LEVEL.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// defaults is a koanf provider serving the built-in default values.
type defaults map[string]any

var errNoBytes = errors.New("config: defaults cannot be read as bytes")

func (d defaults) ReadBytes() ([]byte, error) { return nil, errNoBytes }
func (d defaults) Read() (map[string]any, error) {
	return d, nil
}

// Load reads the configuration from the environment.
func Load(opts ...Option) (Config, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	k := koanf.New(".")
	if err := k.Load(defaults{
		"log": map[string]any{
			"level":    DefaultLevel,
			"format":   DefaultFormat,
			"max_size": DefaultMaxSize,
		},
		"shutdown": map[string]any{
			"timeout": DefaultTimeout.String(),
		},
		"server": map[string]any{
			"addr": DefaultAddr,
		},
	}, nil); err != nil {
		return Config{}, fmt.Errorf("config: load defaults: %w", err)
	}

	if err := k.Load(env.Provider(o.prefix, ".", transform(o.prefix)), nil); err != nil {
		return Config{}, fmt.Errorf("config: load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LoadLevel reads only the LOG_LEVEL variable, defaulting to DefaultLevel.
// Unlike Load, it never fails because of unrelated settings.
func LoadLevel(opts ...Option) string {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	k := koanf.New(".")
	all := transform(o.prefix)
	only := func(s string) string {
		if key := all(s); key == "log.level" {
			return key
		}
		return ""
	}
	if err := k.Load(env.Provider(o.prefix, ".", only), nil); err != nil {
		return DefaultLevel
	}
	if level := k.String("log.level"); level != "" {
		return level
	}
	return DefaultLevel
}

// transform maps PREFIX_SECTION_KEY_NAME to section.key_name and drops
// variables outside the known sections.
func transform(prefix string) func(string) string {
	return func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, prefix))
		s = strings.Replace(s, "_", ".", 1)
		for _, section := range sections {
			if strings.HasPrefix(s, section+".") {
				return s
			}
		}
		return ""
	}
}

func (c Config) validate() error {
	if c.Log.MaxSize <= 0 {
		return fmt.Errorf("log max size must be positive, got %d", c.Log.MaxSize)
	}
	if c.Server.Addr == "" {
		return errors.New("server address must not be empty")
	}
	if c.Shutdown.Timeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %v", c.Shutdown.Timeout)
	}
	return nil
}
