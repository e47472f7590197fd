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

package config_test

import (
	"testing"
	"time"

	"github.com/deep-rent/graceful/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prefix = "GRACEFUL_CONFIG_TEST_"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(config.WithPrefix(prefix))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultLevel, cfg.Log.Level)
	assert.Equal(t, config.DefaultFormat, cfg.Log.Format)
	assert.Empty(t, cfg.Log.File)
	assert.Equal(t, config.DefaultMaxSize, cfg.Log.MaxSize)
	assert.Equal(t, config.DefaultTimeout, cfg.Shutdown.Timeout)
	assert.Equal(t, config.DefaultAddr, cfg.Server.Addr)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv(prefix+"LOG_LEVEL", "debug")
	t.Setenv(prefix+"LOG_FORMAT", "json")
	t.Setenv(prefix+"LOG_FILE", "/tmp/graceful.log")
	t.Setenv(prefix+"LOG_MAX_SIZE", "25")
	t.Setenv(prefix+"SHUTDOWN_TIMEOUT", "30s")
	t.Setenv(prefix+"SERVER_ADDR", ":8080")
	t.Setenv(prefix+"UNRELATED_KEY", "ignored")

	cfg, err := config.Load(config.WithPrefix(prefix))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/tmp/graceful.log", cfg.Log.File)
	assert.Equal(t, 25, cfg.Log.MaxSize)
	assert.Equal(t, 30*time.Second, cfg.Shutdown.Timeout)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_NoPrefix(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	type test struct {
		name  string
		key   string
		value string
	}

	tests := []test{
		{"zero max size", "LOG_MAX_SIZE", "0"},
		{"negative timeout", "SHUTDOWN_TIMEOUT", "-1s"},
		{"malformed timeout", "SHUTDOWN_TIMEOUT", "soon"},
		{"malformed max size", "LOG_MAX_SIZE", "big"},
		{"empty address", "SERVER_ADDR", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(prefix+tc.key, tc.value)

			_, err := config.Load(config.WithPrefix(prefix))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config:")
		})
	}
}

func TestLoadLevel(t *testing.T) {
	assert.Equal(t, config.DefaultLevel, config.LoadLevel(config.WithPrefix(prefix)))

	t.Setenv(prefix+"LOG_LEVEL", "debug")
	assert.Equal(t, "debug", config.LoadLevel(config.WithPrefix(prefix)))
}

func TestLoadLevel_IgnoresInvalidSettings(t *testing.T) {
	t.Setenv(prefix+"LOG_LEVEL", "error")
	t.Setenv(prefix+"SHUTDOWN_TIMEOUT", "soon")
	t.Setenv(prefix+"LOG_MAX_SIZE", "0")
	t.Setenv(prefix+"SERVER_ADDR", "")

	_, err := config.Load(config.WithPrefix(prefix))
	require.Error(t, err)
	assert.Equal(t, "error", config.LoadLevel(config.WithPrefix(prefix)))
}
