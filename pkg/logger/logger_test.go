/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	config := &Config{
		Level:  "warn",
		Debug:  true,
		Output: "stdout",
	}

	require.NoError(t, Init(config))
	assert.Equal(t, zerolog.DebugLevel, GetLogger().GetLevel())

	require.NoError(t, Init(&Config{Level: "warn"}))
	assert.Equal(t, zerolog.WarnLevel, GetLogger().GetLevel())
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	err := Init(&Config{Level: "chatty"})
	require.Error(t, err)
}

func TestParsedLevelNilConfig(t *testing.T) {
	t.Parallel()

	var cfg *Config

	level, err := cfg.ParsedLevel()
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)
}

func TestWriterLoggerEmitsJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	log := NewWriterLogger(&buf)
	log.Warn().Str("interface", "eth0").Msg("omitted")

	assert.Contains(t, buf.String(), `"interface":"eth0"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_OUTPUT", "stderr")
	t.Setenv("DEBUG", "yes")

	config := DefaultConfig()

	assert.Equal(t, "info", config.Level)
	assert.Equal(t, "stderr", config.Output)
	assert.True(t, config.Debug)
}

func TestWrapSetDebug(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := Wrap(zerolog.New(&buf).Level(zerolog.WarnLevel))
	l.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	l.SetDebug(true)
	l.Debug().Msg("shown")
	assert.Contains(t, buf.String(), "shown")

	c := l.WithComponent("tc")
	c.Info().Msg("component")
	assert.Contains(t, buf.String(), `"component":"tc"`)

	l.SetLevel(zerolog.ErrorLevel)
	buf.Reset()
	l.Info().Msg("dropped")
	assert.Empty(t, buf.String())
}
