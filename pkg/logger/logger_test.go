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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	log "go.opentelemetry.io/otel/log"
)

func TestResolveLevel(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		want    zerolog.Level
		wantErr bool
	}{
		{name: "empty defaults to info", config: Config{}, want: zerolog.InfoLevel},
		{name: "debug flag wins", config: Config{Level: "error", Debug: true}, want: zerolog.DebugLevel},
		{name: "explicit warn", config: Config{Level: "warn"}, want: zerolog.WarnLevel},
		{name: "garbage", config: Config{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.config.ResolveLevel()
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewWritesStructuredLines(t *testing.T) {
	var buf bytes.Buffer

	l, err := New(&buf, &Config{Level: "info"})
	require.NoError(t, err)

	l.Debug().Msg("hidden")
	l.Info().Str("device", "/dev/ttyUSB0").Msg("sent")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "sent", entry["message"])
	assert.Equal(t, "/dev/ttyUSB0", entry["device"])
	assert.Contains(t, entry, "time")
}

func TestConsoleOutput(t *testing.T) {
	out, err := (&Config{Format: FormatConsole}).ConsoleOutput()
	require.NoError(t, err)
	assert.IsType(t, zerolog.ConsoleWriter{}, out)

	out, err = (&Config{Output: "stderr"}).ConsoleOutput()
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, out)

	_, err = (&Config{Format: "xml"}).ConsoleOutput()
	require.ErrorIs(t, err, errUnknownFormat)
}

func TestOpenFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sysmon.log")

	f, err := OpenFile(path)
	require.NoError(t, err)

	_, err = f.WriteString("one\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = OpenFile(path)
	require.NoError(t, err)

	_, err = f.WriteString("two\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(data))
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("OTEL_LOGS_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_HEADERS", "a=1, b = 2")

	config := DefaultConfig()

	assert.Equal(t, "info", config.Level)
	assert.Equal(t, "stdout", config.Output)
	assert.True(t, config.OTel.Enabled)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, config.OTel.Headers)
	assert.Equal(t, defaultServiceName, config.OTel.ServiceName)
}

func TestDefaultOTelConfigParsing(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_HEADERS", "token=abc,broken, x = y=z")
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_TIMEOUT", "soon")
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_INSECURE", "ON")

	config := DefaultOTelConfig()

	assert.Equal(t, map[string]string{"token": "abc", "x": "y=z"}, config.Headers)
	assert.Equal(t, defaultOTelBatchTimeout, config.BatchTimeout.Std())
	assert.True(t, config.Insecure)

	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_TIMEOUT", "250ms")
	assert.Equal(t, 250*time.Millisecond, DefaultOTelConfig().BatchTimeout.Std())
}

func TestTestLoggerDiscards(t *testing.T) {
	l := NewTestLogger()

	assert.NotPanics(t, func() {
		l.Info().Msg("ignored")
		l.Critical().Msg("ignored")
		l.Warn().Str("component", "driver").Msg("ignored")
	})
}

func TestNewOTELWriterValidation(t *testing.T) {
	_, err := NewOTELWriter(t.Context(), OTelConfig{})
	require.ErrorIs(t, err, ErrOTelLoggingDisabled)

	_, err = NewOTELWriter(t.Context(), OTelConfig{Enabled: true})
	require.ErrorIs(t, err, ErrOTelEndpointRequired)
}

func TestBuildRecordCriticalSeverity(t *testing.T) {
	entry := map[string]interface{}{
		"level":       "error",
		"message":     "collection failed",
		CriticalField: true,
		"time":        "2025-01-02T03:04:05Z",
	}

	record := buildRecord(entry)

	assert.Equal(t, log.SeverityError4, record.Severity())
	assert.Equal(t, "collection failed", record.Body().AsString())
	assert.False(t, record.Timestamp().IsZero())
	assert.NotContains(t, entry, "level")
	assert.Contains(t, entry, CriticalField)
}

func TestTruncateString(t *testing.T) {
	short, truncated := truncateString("abc", 10)
	assert.Equal(t, "abc", short)
	assert.False(t, truncated)

	long, truncated := truncateString("abcdefghij", 6)
	assert.Equal(t, "abc...", long)
	assert.True(t, truncated)
}
