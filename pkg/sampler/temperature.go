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

package sampler

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	defaultThermalZoneGlob = "/sys/class/thermal/thermal_zone*/temp"

	minPlausibleCelsius = 0.0
	maxPlausibleCelsius = 150.0
)

// sensorPrefixes lists CPU sensor families in order of preference.
//
//nolint:gochecknoglobals // fixed lookup table
var sensorPrefixes = []string{
	"coretemp",
	"k10temp",
	"cpu_thermal",
	"cpu-thermal",
	"soc_thermal",
	"acpitz",
}

// cpuTemperature returns the CPU temperature in °C, or nil when no plausible
// reading is available.
func (s *Sampler) cpuTemperature(ctx context.Context) *float64 {
	if t, ok := s.sensorTemperature(ctx); ok {
		return &t
	}

	if t, ok := s.thermalZoneTemperature(); ok {
		return &t
	}

	s.log.Debug().Msg("No CPU temperature sensor available")

	return nil
}

func (s *Sampler) sensorTemperature(ctx context.Context) (float64, bool) {
	// gopsutil can return readings together with a warnings error.
	stats, err := s.sensorCollector(ctx)
	if err != nil {
		s.log.Debug().Err(err).Int("sensors", len(stats)).Msg("Temperature sensor query reported an error")
	}

	for _, prefix := range sensorPrefixes {
		for _, stat := range stats {
			if !strings.HasPrefix(strings.ToLower(stat.SensorKey), prefix) {
				continue
			}

			if plausible(stat.Temperature) {
				return stat.Temperature, true
			}
		}
	}

	return 0, false
}

// thermalZoneTemperature reads the first plausible sysfs thermal zone, in
// millidegrees Celsius.
func (s *Sampler) thermalZoneTemperature() (float64, bool) {
	if s.thermalZoneGlob == "" {
		return 0, false
	}

	zones, err := filepath.Glob(s.thermalZoneGlob)
	if err != nil {
		return 0, false
	}

	sort.Strings(zones)

	for _, zone := range zones {
		data, err := os.ReadFile(zone)
		if err != nil {
			continue
		}

		milli, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
		if err != nil {
			continue
		}

		if c := milli / 1000; plausible(c) {
			return c, true
		}
	}

	return 0, false
}

func plausible(c float64) bool {
	return !math.IsNaN(c) && c > minPlausibleCelsius && c < maxPlausibleCelsius
}
