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

// Package sampler reads host resource metrics and packages them as a models.Sample.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/carverauto/sysmon-serial/pkg/logger"
	"github.com/carverauto/sysmon-serial/pkg/models"
)

var (
	ErrCollectCPU    = errors.New("failed to collect cpu usage")
	ErrCollectMemory = errors.New("failed to collect memory usage")
	ErrCollectDisk   = errors.New("failed to collect disk usage")
	ErrCollectLoad   = errors.New("failed to collect load averages")

	errNoCPUReading = errors.New("no cpu reading returned")
)

const (
	DefaultCPUWindow = time.Second
	DefaultDiskPath  = "/"

	bytesPerGB = 1024 * 1024 * 1024
)

// Config controls what the sampler measures.
type Config struct {
	CPUWindow time.Duration
	DiskPath  string
}

// Sampler collects one Sample per call. The OS queries are function fields so
// tests can substitute them.
type Sampler struct {
	log       logger.Logger
	cpuWindow time.Duration
	diskPath  string

	usageCollector  func(context.Context, time.Duration, bool) ([]float64, error)
	memCollector    func(context.Context) (*mem.VirtualMemoryStat, error)
	diskCollector   func(context.Context, string) (*disk.UsageStat, error)
	loadCollector   func(context.Context) (*load.AvgStat, error)
	sensorCollector func(context.Context) ([]host.TemperatureStat, error)
	thermalZoneGlob string
	now             func() time.Time
}

func NewSampler(log logger.Logger, cfg Config) *Sampler {
	if cfg.CPUWindow <= 0 {
		cfg.CPUWindow = DefaultCPUWindow
	}

	if cfg.DiskPath == "" {
		cfg.DiskPath = DefaultDiskPath
	}

	return &Sampler{
		log:             log,
		cpuWindow:       cfg.CPUWindow,
		diskPath:        cfg.DiskPath,
		usageCollector:  cpu.PercentWithContext,
		memCollector:    mem.VirtualMemoryWithContext,
		diskCollector:   disk.UsageWithContext,
		loadCollector:   load.AvgWithContext,
		sensorCollector: host.SensorsTemperaturesWithContext,
		thermalZoneGlob: defaultThermalZoneGlob,
		now:             time.Now,
	}
}

// Collect returns a fully populated Sample or an error wrapping one of the
// ErrCollect* sentinels. A missing temperature is never an error.
func (s *Sampler) Collect(ctx context.Context) (*models.Sample, error) {
	usage, err := s.usageCollector(ctx, s.cpuWindow, false)
	if err == nil && len(usage) == 0 {
		err = errNoCPUReading
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCollectCPU, err)
	}

	vm, err := s.memCollector(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCollectMemory, err)
	}

	du, err := s.diskCollector(ctx, s.diskPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCollectDisk, s.diskPath, err)
	}

	avg, err := s.loadCollector(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCollectLoad, err)
	}

	sample := &models.Sample{
		CPUPercent:    percent(usage[0]),
		MemoryPercent: percent(vm.UsedPercent),
		MemoryUsedGB:  gigabytes(vm.Used),
		MemoryTotalGB: gigabytes(vm.Total),
		DiskPercent:   percent(du.UsedPercent),
		DiskUsedGB:    gigabytes(du.Used),
		DiskTotalGB:   gigabytes(du.Total),
		Load1:         loadAverage(avg.Load1),
		Load5:         loadAverage(avg.Load5),
		Load15:        loadAverage(avg.Load15),
		CPUTemp:       s.cpuTemperature(ctx),
		Timestamp:     s.now().Format(models.TimestampLayout),
	}

	return sample, nil
}

func percent(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

func gigabytes(b uint64) float64 {
	return roundTo(float64(b)/bytesPerGB, 1)
}

func loadAverage(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}

	return roundTo(v, 2)
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow10(places)

	return math.Round(v*scale) / scale
}
