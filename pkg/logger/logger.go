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

// Package logger provides JSON structured logging using zerolog
package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/carverauto/sysmon-serial/pkg/models"
)

var errUnknownFormat = errors.New("unknown log format")

const (
	FormatJSON    = "json"
	FormatConsole = "console"

	consoleTimeFormat = "15:04:05"
)

type Config struct {
	Level      string     `json:"level" yaml:"level"`
	Debug      bool       `json:"debug" yaml:"debug"`
	Output     string     `json:"output" yaml:"output"`
	Format     string     `json:"format" yaml:"format"`
	TimeFormat string     `json:"time_format" yaml:"time_format"`
	File       string     `json:"file" yaml:"file"`
	OTel       OTelConfig `json:"otel" yaml:"otel"`
}

// OTelConfig controls the optional OTLP log exporter.
type OTelConfig struct {
	Enabled      bool              `json:"enabled" yaml:"enabled"`
	Endpoint     string            `json:"endpoint" yaml:"endpoint"`
	Headers      map[string]string `json:"headers" yaml:"headers"`
	ServiceName  string            `json:"service_name" yaml:"service_name"`
	BatchTimeout models.Duration   `json:"batch_timeout" yaml:"batch_timeout"`
	Insecure     bool              `json:"insecure" yaml:"insecure"`
	TLS          *TLSConfig        `json:"tls,omitempty" yaml:"tls,omitempty"`
}

type TLSConfig struct {
	CertFile string `json:"cert_file" yaml:"cert_file"`
	KeyFile  string `json:"key_file" yaml:"key_file"`
	CAFile   string `json:"ca_file,omitempty" yaml:"ca_file,omitempty"`
}

// ResolveLevel maps the Debug and Level settings onto a zerolog level.
func (c *Config) ResolveLevel() (zerolog.Level, error) {
	if c.Debug {
		return zerolog.DebugLevel, nil
	}

	if c.Level == "" {
		return zerolog.InfoLevel, nil
	}

	return zerolog.ParseLevel(c.Level)
}

// ConsoleOutput returns the stream named by Output, wrapped in a human-readable
// zerolog.ConsoleWriter when Format is "console".
func (c *Config) ConsoleOutput() (io.Writer, error) {
	var out io.Writer = os.Stdout
	if c.Output == "stderr" {
		out = os.Stderr
	}

	switch c.Format {
	case "", FormatJSON:
		return out, nil
	case FormatConsole:
		return zerolog.ConsoleWriter{Out: out, TimeFormat: consoleTimeFormat}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownFormat, c.Format)
	}
}

// OpenFile opens path for appending, creating the parent directory when needed.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	return f, nil
}

// New builds a zerolog.Logger writing to w at the configured level.
func New(w io.Writer, config *Config) (zerolog.Logger, error) {
	level, err := config.ResolveLevel()
	if err != nil {
		return zerolog.Nop(), err
	}

	zerolog.TimeFieldFormat = time.RFC3339
	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}
