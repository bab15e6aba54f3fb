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
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/carverauto/sysmon-serial/pkg/models"
)

var (
	// ErrEncode marks a Sample that cannot be represented on the wire. It is a
	// programming error, not a link fault.
	ErrEncode = errors.New("failed to encode sample")

	errNilSample = errors.New("nil sample")
)

// Encode renders s as one JSON object terminated by a single newline. Keys are
// written in a fixed order and every number carries a decimal point, so
// 16 GB is sent as 16.0.
func Encode(s *models.Sample) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, errNilSample)
	}

	numbers := []struct {
		key   string
		value float64
	}{
		{"cpu", s.CPUPercent},
		{"memory_percent", s.MemoryPercent},
		{"memory_used", s.MemoryUsedGB},
		{"memory_total", s.MemoryTotalGB},
		{"disk_percent", s.DiskPercent},
		{"disk_used", s.DiskUsedGB},
		{"disk_total", s.DiskTotalGB},
		{"load_1min", s.Load1},
		{"load_5min", s.Load5},
		{"load_15min", s.Load15},
	}

	buf := make([]byte, 0, 320)
	buf = append(buf, '{')

	for _, n := range numbers {
		if !finite(n.value) {
			return nil, fmt.Errorf("%w: %s is %v", ErrEncode, n.key, n.value)
		}

		buf = appendKey(buf, n.key)
		buf = appendNumber(buf, n.value)
		buf = append(buf, ", "...)
	}

	buf = appendKey(buf, "cpu_temp")

	switch {
	case s.CPUTemp == nil:
		buf = append(buf, "null"...)
	case !finite(*s.CPUTemp):
		return nil, fmt.Errorf("%w: cpu_temp is %v", ErrEncode, *s.CPUTemp)
	default:
		buf = appendNumber(buf, *s.CPUTemp)
	}

	ts, err := json.Marshal(s.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp: %w", ErrEncode, err)
	}

	buf = append(buf, ", "...)
	buf = appendKey(buf, "timestamp")
	buf = append(buf, ts...)
	buf = append(buf, '}', '\n')

	return buf, nil
}

func appendKey(buf []byte, key string) []byte {
	buf = append(buf, '"')
	buf = append(buf, key...)

	return append(buf, '"', ':', ' ')
}

func appendNumber(buf []byte, v float64) []byte {
	start := len(buf)
	buf = strconv.AppendFloat(buf, v, 'f', -1, 64)

	for _, c := range buf[start:] {
		if c == '.' {
			return buf
		}
	}

	return append(buf, '.', '0')
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
