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

package transport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()

	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
}

func TestFindDevicePatternOrder(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "ttyACM0", "ttyUSB1", "ttyUSB0")

	patterns := []string{
		filepath.Join(dir, "ttyUSB*"),
		filepath.Join(dir, "ttyACM*"),
	}

	assert.Equal(t, filepath.Join(dir, "ttyUSB0"), FindDevice(patterns, "/dev/fallback"))
}

func TestFindDeviceLaterPattern(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "ttyACM3", "ttyACM1")

	patterns := []string{
		filepath.Join(dir, "ttyUSB*"),
		filepath.Join(dir, "ttyACM*"),
	}

	assert.Equal(t, filepath.Join(dir, "ttyACM1"), FindDevice(patterns, "/dev/fallback"))
}

func TestFindDeviceFallback(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, "/dev/ttyUSB0", FindDevice([]string{filepath.Join(dir, "ttyUSB*")}, "/dev/ttyUSB0"))
	assert.Equal(t, "COM3", FindDevice(nil, "COM3"))
}

func TestFindDeviceSkipsMalformedPattern(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "ttyUSB0")

	patterns := []string{
		filepath.Join(dir, "tty[USB*"),
		filepath.Join(dir, "ttyUSB*"),
	}

	assert.Equal(t, filepath.Join(dir, "ttyUSB0"), FindDevice(patterns, "/dev/fallback"))
}

func TestFindDeviceIdempotent(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "ttyUSB2", "ttyUSB0")

	patterns := []string{filepath.Join(dir, "ttyUSB*")}

	first := FindDevice(patterns, "/dev/fallback")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, FindDevice(patterns, "/dev/fallback"))
	}
}

func TestDefaultDeviceIsSet(t *testing.T) {
	assert.NotEmpty(t, DefaultDevice())
}
