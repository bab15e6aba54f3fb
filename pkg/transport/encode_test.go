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
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/sysmon-serial/pkg/models"
)

func fullSample() *models.Sample {
	temp := 58.0

	return &models.Sample{
		CPUPercent:    23.5,
		MemoryPercent: 51.3,
		MemoryUsedGB:  8.2,
		MemoryTotalGB: 16.0,
		DiskPercent:   49.0,
		DiskUsedGB:    245.1,
		DiskTotalGB:   500.0,
		Load1:         1.23,
		Load5:         0.99,
		Load15:        0.5,
		CPUTemp:       &temp,
		Timestamp:     "14:03:07",
	}
}

func TestEncodeSingleLineWithAllKeys(t *testing.T) {
	out, err := Encode(fullSample())
	require.NoError(t, err)

	require.True(t, bytes.HasSuffix(out, []byte("\n")))
	assert.Equal(t, 1, bytes.Count(out, []byte("\n")))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Len(t, decoded, 12)

	for _, key := range []string{
		"cpu", "memory_percent", "memory_used", "memory_total",
		"disk_percent", "disk_used", "disk_total",
		"load_1min", "load_5min", "load_15min", "cpu_temp", "timestamp",
	} {
		assert.Contains(t, decoded, key)
	}
}

func TestEncodeFormatsGigabytes(t *testing.T) {
	out, err := Encode(fullSample())
	require.NoError(t, err)

	assert.Contains(t, string(out), `"memory_used": 8.2`)
	assert.Contains(t, string(out), `"memory_total": 16.0`)
	assert.Contains(t, string(out), `"memory_percent": 51.3`)
}

func TestEncodeExactLine(t *testing.T) {
	out, err := Encode(fullSample())
	require.NoError(t, err)

	want := `{"cpu": 23.5, "memory_percent": 51.3, "memory_used": 8.2, "memory_total": 16.0, ` +
		`"disk_percent": 49.0, "disk_used": 245.1, "disk_total": 500.0, ` +
		`"load_1min": 1.23, "load_5min": 0.99, "load_15min": 0.5, ` +
		`"cpu_temp": 58.0, "timestamp": "14:03:07"}` + "\n"
	assert.Equal(t, want, string(out))
}

func TestEncodeMissingTemperatureIsNull(t *testing.T) {
	s := fullSample()
	s.CPUTemp = nil

	out, err := Encode(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"cpu_temp": null`)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Contains(t, decoded, "cpu_temp")
	assert.Nil(t, decoded["cpu_temp"])
}

func TestEncodeRejectsNonFinite(t *testing.T) {
	s := fullSample()
	s.Load5 = math.NaN()

	_, err := Encode(s)
	require.ErrorIs(t, err, ErrEncode)

	s = fullSample()
	inf := math.Inf(1)
	s.CPUTemp = &inf

	_, err = Encode(s)
	require.ErrorIs(t, err, ErrEncode)

	_, err = Encode(nil)
	require.ErrorIs(t, err, ErrEncode)
}

func TestEncodeEscapesTimestamp(t *testing.T) {
	s := fullSample()
	s.Timestamp = "bad\nvalue"

	out, err := Encode(s)
	require.NoError(t, err)
	assert.Equal(t, 1, bytes.Count(out, []byte("\n")))
}
