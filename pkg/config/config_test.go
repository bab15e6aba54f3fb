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

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/sysmon-serial/pkg/logger"
	"github.com/carverauto/sysmon-serial/pkg/models"
)

var errTestThreshold = errors.New("threshold must be positive")

type testTLS struct {
	CertFile string `json:"cert_file" yaml:"cert_file"`
}

type testNested struct {
	Level   string            `json:"level" yaml:"level"`
	Headers map[string]string `json:"headers" yaml:"headers"`
	TLS     *testTLS          `json:"tls,omitempty" yaml:"tls,omitempty"`
}

type testConfig struct {
	Device    string          `json:"device" yaml:"device"`
	Interval  models.Duration `json:"interval" yaml:"interval"`
	Timeout   time.Duration   `json:"timeout" yaml:"timeout"`
	KeepOpen  bool            `json:"keep_open" yaml:"keep_open"`
	Threshold int             `json:"threshold" yaml:"threshold"`
	Ratio     float64         `json:"ratio" yaml:"ratio"`
	Patterns  []string        `json:"patterns" yaml:"patterns"`
	Logging   testNested      `json:"logging" yaml:"logging"`

	normalized bool
}

func (c *testConfig) Normalize() {
	c.normalized = true

	if c.Interval == 0 {
		c.Interval = models.Duration(2 * time.Second)
	}
}

func (c *testConfig) Validate() error {
	if c.Threshold < 0 {
		return errTestThreshold
	}

	return nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestFileConfigLoaderFormats(t *testing.T) {
	jsonPath := writeFile(t, "config.json", `{"device":"/dev/ttyACM0","interval":"3s","threshold":7}`)
	yamlPath := writeFile(t, "config.yaml", "device: /dev/ttyACM0\ninterval: 3s\nthreshold: 7\n")

	for _, path := range []string{jsonPath, yamlPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			var cfg testConfig

			require.NoError(t, (&FileConfigLoader{}).Load(t.Context(), path, &cfg))
			assert.Equal(t, "/dev/ttyACM0", cfg.Device)
			assert.Equal(t, 3*time.Second, cfg.Interval.Std())
			assert.Equal(t, 7, cfg.Threshold)
		})
	}
}

func TestFileConfigLoaderRejectsUnknownExtension(t *testing.T) {
	path := writeFile(t, "config.toml", "device = 'x'")

	err := (&FileConfigLoader{}).Load(t.Context(), path, &testConfig{})
	require.ErrorIs(t, err, errUnsupportedConfigFormat)
}

func TestEnvConfigLoader(t *testing.T) {
	t.Setenv("TEST_DEVICE", "/dev/ttyUSB3")
	t.Setenv("TEST_INTERVAL", "500ms")
	t.Setenv("TEST_TIMEOUT", "2s")
	t.Setenv("TEST_KEEP_OPEN", "true")
	t.Setenv("TEST_THRESHOLD", "12")
	t.Setenv("TEST_RATIO", "0.5")
	t.Setenv("TEST_PATTERNS", "/dev/a*, /dev/b*")
	t.Setenv("TEST_LOGGING_LEVEL", "debug")
	t.Setenv("TEST_LOGGING_HEADERS", `{"x":"y"}`)

	cfg := testConfig{Device: "/dev/original"}

	require.NoError(t, NewEnvConfigLoader(nil, "TEST_").Load(t.Context(), "", &cfg))

	assert.Equal(t, "/dev/ttyUSB3", cfg.Device)
	assert.Equal(t, 500*time.Millisecond, cfg.Interval.Std())
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.True(t, cfg.KeepOpen)
	assert.Equal(t, 12, cfg.Threshold)
	assert.InDelta(t, 0.5, cfg.Ratio, 1e-9)
	assert.Equal(t, []string{"/dev/a*", "/dev/b*"}, cfg.Patterns)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, map[string]string{"x": "y"}, cfg.Logging.Headers)
	assert.Nil(t, cfg.Logging.TLS, "unset nested pointer stays nil")
}

func TestEnvConfigLoaderAllocatesPointerWhenSet(t *testing.T) {
	t.Setenv("TEST_LOGGING_TLS_CERT_FILE", "/etc/cert.pem")

	var cfg testConfig

	require.NoError(t, NewEnvConfigLoader(nil, "TEST_").Load(t.Context(), "", &cfg))
	require.NotNil(t, cfg.Logging.TLS)
	assert.Equal(t, "/etc/cert.pem", cfg.Logging.TLS.CertFile)
}

func TestEnvConfigLoaderErrors(t *testing.T) {
	loader := NewEnvConfigLoader(nil, "TEST_")

	require.ErrorIs(t, loader.Load(t.Context(), "", testConfig{}), ErrDstMustBeNonNilPointer)

	s := "x"
	require.ErrorIs(t, loader.Load(t.Context(), "", &s), ErrDstMustBePointerToStruct)

	t.Setenv("TEST_THRESHOLD", "many")
	require.Error(t, loader.Load(t.Context(), "", &testConfig{}))
}

func TestEnvConfigLoaderConfigJSON(t *testing.T) {
	t.Setenv("TEST_CONFIG_JSON", `{"device":"/dev/json","threshold":3}`)
	t.Setenv("TEST_THRESHOLD", "4")

	var cfg testConfig

	require.NoError(t, NewEnvConfigLoader(nil, "TEST_").Load(t.Context(), "", &cfg))
	assert.Equal(t, "/dev/json", cfg.Device)
	assert.Equal(t, 4, cfg.Threshold, "individual variables override CONFIG_JSON")
}

func TestLoadAndValidatePrecedence(t *testing.T) {
	path := writeFile(t, "config.yml", "device: /dev/file\nthreshold: 5\n")
	t.Setenv("TEST_THRESHOLD", "9")

	cfg := testConfig{Device: "/dev/default", Threshold: 1}

	require.NoError(t, NewConfig(logger.NewTestLogger(), "TEST_").LoadAndValidate(t.Context(), path, &cfg))

	assert.Equal(t, "/dev/file", cfg.Device)
	assert.Equal(t, 9, cfg.Threshold)
	assert.True(t, cfg.normalized)
	assert.Equal(t, 2*time.Second, cfg.Interval.Std())
}

func TestLoadAndValidateMissingFileIsNotAnError(t *testing.T) {
	cfg := testConfig{Device: "/dev/default"}
	missing := filepath.Join(t.TempDir(), "absent.json")

	require.NoError(t, NewConfig(nil, "TEST_").LoadAndValidate(t.Context(), missing, &cfg))
	assert.Equal(t, "/dev/default", cfg.Device)
}

func TestLoadAndValidateRejects(t *testing.T) {
	bad := writeFile(t, "config.json", `{"device":`)
	require.Error(t, NewConfig(nil, "TEST_").LoadAndValidate(t.Context(), bad, &testConfig{}))

	t.Setenv("TEST_THRESHOLD", "-1")
	require.ErrorIs(t, NewConfig(nil, "TEST_").LoadAndValidate(t.Context(), "", &testConfig{}), errTestThreshold)
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(present, []byte("{}"), 0o600))

	t.Setenv("TEST_CONFIG_PATH", "")
	assert.Equal(t, present, ResolvePath("TEST_CONFIG_PATH", filepath.Join(dir, "config.json"), present))
	assert.Empty(t, ResolvePath("TEST_CONFIG_PATH", filepath.Join(dir, "none.json")))

	t.Setenv("TEST_CONFIG_PATH", "/explicit.json")
	assert.Equal(t, "/explicit.json", ResolvePath("TEST_CONFIG_PATH", present))
}
