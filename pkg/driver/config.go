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

package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/carverauto/sysmon-serial/pkg/logger"
	"github.com/carverauto/sysmon-serial/pkg/models"
	"github.com/carverauto/sysmon-serial/pkg/sampler"
	"github.com/carverauto/sysmon-serial/pkg/transport"
)

var (
	errInvalidThreshold = errors.New("reconnect thresholds must be at least 1")
	errInvalidBaudRate  = errors.New("baud rate must be positive")
	errInvalidPause     = errors.New("recovery pause must not be negative")
	errWindowTooLong    = errors.New("cpu window must be shorter than the interval")
)

const (
	defaultInterval             = 2 * time.Second
	defaultRecoveryPause        = 5 * time.Second
	defaultInteractiveThreshold = 5
	defaultBackgroundThreshold  = 10

	minInterval = 500 * time.Millisecond
	maxInterval = time.Hour

	// EnvPrefix prefixes every environment override, e.g. SYSMON_SERIAL_DEVICE.
	EnvPrefix = "SYSMON_SERIAL_"

	stateDirName   = ".sysmon-serial"
	logFileName    = "sysmon-serial.log"
	configFileBase = "config"
)

// Config is the full runtime configuration of the monitor.
type Config struct {
	Device               string          `json:"device" yaml:"device"`
	BaudRate             int             `json:"baud_rate" yaml:"baud_rate"`
	Interval             models.Duration `json:"interval" yaml:"interval"`
	RecoveryPause        models.Duration `json:"recovery_pause" yaml:"recovery_pause"`
	SettleDelay          models.Duration `json:"settle_delay" yaml:"settle_delay"`
	WriteTimeout         models.Duration `json:"write_timeout" yaml:"write_timeout"`
	CPUWindow            models.Duration `json:"cpu_window" yaml:"cpu_window"`
	KeepOpen             bool            `json:"keep_open" yaml:"keep_open"`
	DiskPath             string          `json:"disk_path" yaml:"disk_path"`
	InteractiveThreshold int             `json:"interactive_threshold" yaml:"interactive_threshold"`
	BackgroundThreshold  int             `json:"background_threshold" yaml:"background_threshold"`
	LogFile              string          `json:"log_file" yaml:"log_file"`
	Logging              *logger.Config  `json:"logging" yaml:"logging"`
}

// DefaultConfig returns a configuration with every default filled in.
func DefaultConfig() *Config {
	cfg := &Config{
		SettleDelay: models.Duration(transport.DefaultSettleDelay),
		Logging:     logger.DefaultConfig(),
	}
	cfg.Normalize()

	return cfg
}

// Normalize fills zero values with defaults and clamps the interval.
// A zero settle delay is kept; only a negative one falls back to the default.
func (c *Config) Normalize() {
	if c.BaudRate == 0 {
		c.BaudRate = transport.DefaultBaudRate
	}

	if c.Interval == 0 {
		c.Interval = models.Duration(defaultInterval)
	}

	if d := c.Interval.Std(); d < minInterval {
		c.Interval = models.Duration(minInterval)
	} else if d > maxInterval {
		c.Interval = models.Duration(maxInterval)
	}

	if c.RecoveryPause == 0 {
		c.RecoveryPause = models.Duration(defaultRecoveryPause)
	}

	if c.SettleDelay < 0 {
		c.SettleDelay = models.Duration(transport.DefaultSettleDelay)
	}

	if c.WriteTimeout <= 0 {
		c.WriteTimeout = models.Duration(transport.DefaultWriteTimeout)
	}

	if c.CPUWindow <= 0 {
		c.CPUWindow = models.Duration(sampler.DefaultCPUWindow)
	}

	if c.DiskPath == "" {
		c.DiskPath = sampler.DefaultDiskPath
	}

	if c.InteractiveThreshold == 0 {
		c.InteractiveThreshold = defaultInteractiveThreshold
	}

	if c.BackgroundThreshold == 0 {
		c.BackgroundThreshold = defaultBackgroundThreshold
	}

	if c.LogFile == "" {
		c.LogFile = filepath.Join(StateDir(), logFileName)
	}

	if c.Logging == nil {
		c.Logging = logger.DefaultConfig()
	}
}

// Validate rejects values Normalize cannot repair.
func (c *Config) Validate() error {
	if c.InteractiveThreshold < 1 || c.BackgroundThreshold < 1 {
		return fmt.Errorf("%w: interactive=%d background=%d",
			errInvalidThreshold, c.InteractiveThreshold, c.BackgroundThreshold)
	}

	if c.BaudRate < 0 {
		return fmt.Errorf("%w: %d", errInvalidBaudRate, c.BaudRate)
	}

	if c.RecoveryPause < 0 {
		return fmt.Errorf("%w: %s", errInvalidPause, c.RecoveryPause.Std())
	}

	if c.CPUWindow >= c.Interval {
		return fmt.Errorf("%w: window=%s interval=%s", errWindowTooLong, c.CPUWindow.Std(), c.Interval.Std())
	}

	return nil
}

// Threshold returns the reconnect threshold for mode.
func (c *Config) Threshold(mode Mode) int {
	if mode == ModeBackground {
		return c.BackgroundThreshold
	}

	return c.InteractiveThreshold
}

// SamplerConfig extracts the sampler settings.
func (c *Config) SamplerConfig() sampler.Config {
	return sampler.Config{
		CPUWindow: c.CPUWindow.Std(),
		DiskPath:  c.DiskPath,
	}
}

// TransportConfig extracts the serial link settings.
func (c *Config) TransportConfig() transport.Config {
	return transport.Config{
		BaudRate:     c.BaudRate,
		WriteTimeout: c.WriteTimeout.Std(),
		SettleDelay:  c.SettleDelay.Std(),
		KeepOpen:     c.KeepOpen,
	}
}

// StateDir is $HOME/.sysmon-serial, or a relative .sysmon-serial when no home is known.
func StateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return stateDirName
	}

	return filepath.Join(home, stateDirName)
}

// ConfigCandidates lists the config files looked for when $SYSMON_SERIAL_CONFIG is unset.
func ConfigCandidates() []string {
	dir := StateDir()

	return []string{
		filepath.Join(dir, configFileBase+".json"),
		filepath.Join(dir, configFileBase+".yaml"),
		filepath.Join(dir, configFileBase+".yml"),
	}
}
