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

// Package config loads component configuration from an optional file and
// environment overrides.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/carverauto/sysmon-serial/pkg/logger"
)

var errInvalidConfigPtr = errors.New("config must be a non-nil pointer")

// ConfigLoader populates dst from a source identified by path.
type ConfigLoader interface {
	Load(ctx context.Context, path string, dst interface{}) error
}

// Normalizer fills defaults on a loaded configuration.
type Normalizer interface {
	Normalize()
}

// Validator checks a loaded configuration.
type Validator interface {
	Validate() error
}

// Config holds the configuration loading dependencies.
type Config struct {
	fileLoader ConfigLoader
	envLoader  ConfigLoader
	logger     logger.Logger
}

// NewConfig returns a loader that reads an optional file and then applies
// environment variables named with envPrefix.
func NewConfig(log logger.Logger, envPrefix string) *Config {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Config{
		fileLoader: &FileConfigLoader{logger: log},
		envLoader:  NewEnvConfigLoader(log, envPrefix),
		logger:     log,
	}
}

// ValidateConfig validates a configuration if it implements Validator.
func ValidateConfig(cfg interface{}) error {
	v, ok := cfg.(Validator)
	if !ok {
		return nil
	}

	return v.Validate()
}

// LoadAndValidate layers the file at path (skipped when empty or missing) and the
// environment over cfg, then normalizes and validates the result.
func (c *Config) LoadAndValidate(ctx context.Context, path string, cfg interface{}) error {
	if cfg == nil {
		return errInvalidConfigPtr
	}

	if path != "" {
		err := c.fileLoader.Load(ctx, path, cfg)

		switch {
		case errors.Is(err, fs.ErrNotExist):
			c.logger.Debug().Str("path", path).Msg("Config file not found, using defaults")
		case err != nil:
			return err
		default:
			c.logger.Debug().Str("path", path).Msg("Loaded config file")
		}
	}

	if err := c.envLoader.Load(ctx, "", cfg); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if n, ok := cfg.(Normalizer); ok {
		n.Normalize()
	}

	return ValidateConfig(cfg)
}

// ResolvePath returns the value of envVar when set, otherwise the first candidate
// that exists on disk, otherwise "".
func ResolvePath(envVar string, candidates ...string) string {
	if p := os.Getenv(envVar); p != "" {
		return p
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
