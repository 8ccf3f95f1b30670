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
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	config := &Config{
		Level:  "debug",
		Debug:  true,
		Output: "stdout",
	}

	require.NoError(t, Init(config))
	assert.Equal(t, zerolog.DebugLevel, GetLogger().GetLevel())
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	err := Init(&Config{Level: "loud"})
	require.Error(t, err)
}

func TestBuildLevels(t *testing.T) {
	zl, err := Build(&Config{Level: "warn"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, zl.GetLevel())

	zl, err = Build(&Config{Level: "warn", Debug: true})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, zl.GetLevel())
}

func TestWriterLoggerComponent(t *testing.T) {
	var buf bytes.Buffer

	log := NewWriterLogger(&buf, zerolog.InfoLevel).WithComponent("engine")
	log.Debug().Msg("hidden")
	log.Info().Str("service", "auth").Msg("visible")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))

	assert.Equal(t, "engine", entry["component"])
	assert.Equal(t, "auth", entry["service"])
	assert.Equal(t, "visible", entry["message"])
}

func TestTestLoggerDiscards(t *testing.T) {
	log := NewTestLogger()
	assert.False(t, log.Info().Enabled())
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_HEADERS", "x-api-key=abc, tenant = blue,broken")

	config := DefaultConfig()

	assert.Equal(t, "info", config.Level)
	assert.Equal(t, "stdout", config.Output)
	assert.Equal(t, "logquery", config.OTel.ServiceName)
	assert.False(t, config.OTel.Enabled)
	assert.Equal(t, map[string]string{"x-api-key": "abc", "tenant": "blue"}, config.OTel.Headers)
}
