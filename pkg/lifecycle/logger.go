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

// Package lifecycle wires process-level concerns: logger construction and shutdown signals.
package lifecycle

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/carverauto/sysmon-serial/pkg/logger"
)

// LoggerImpl implements the logger.Logger interface without using global state
type LoggerImpl struct {
	logger  zerolog.Logger
	closers []func() error
}

// NewLoggerImpl creates a logger writing to the configured console stream, plus
// the log file when config.File is set and an OTLP exporter when enabled.
func NewLoggerImpl(ctx context.Context, config *logger.Config) (*LoggerImpl, error) {
	if config == nil {
		config = logger.DefaultConfig()
	}

	console, err := config.ConsoleOutput()
	if err != nil {
		return nil, err
	}

	impl := &LoggerImpl{}
	writers := []io.Writer{console}

	if config.File != "" {
		f, err := logger.OpenFile(config.File)
		if err != nil {
			return nil, err
		}

		writers = append(writers, f)
		impl.closers = append(impl.closers, f.Close)
	}

	if config.OTel.Enabled && config.OTel.Endpoint != "" {
		otelWriter, err := logger.NewOTELWriter(ctx, config.OTel)
		if err != nil {
			_ = impl.Close()
			return nil, err
		}

		writers = append(writers, otelWriter)
		impl.closers = append(impl.closers, otelWriter.Shutdown)
	}

	// A failing writer must not keep the line from the others.
	var output io.Writer = writers[0]
	if len(writers) > 1 {
		output = zerolog.MultiLevelWriter(writers...)
	}

	zlog, err := logger.New(output, config)
	if err != nil {
		_ = impl.Close()
		return nil, err
	}

	impl.logger = zlog

	return impl, nil
}

func (l *LoggerImpl) Debug() *zerolog.Event {
	return l.logger.Debug()
}

func (l *LoggerImpl) Info() *zerolog.Event {
	return l.logger.Info()
}

func (l *LoggerImpl) Warn() *zerolog.Event {
	return l.logger.Warn()
}

func (l *LoggerImpl) Error() *zerolog.Event {
	return l.logger.Error()
}

func (l *LoggerImpl) Critical() *zerolog.Event {
	return l.logger.Error().Bool(logger.CriticalField, true)
}

// Close flushes the exporter and closes the log file, in reverse open order.
func (l *LoggerImpl) Close() error {
	var errs []error

	for i := len(l.closers) - 1; i >= 0; i-- {
		if err := l.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}

	l.closers = nil

	return errors.Join(errs...)
}

// CreateComponentLogger creates a logger for a specific component. The caller
// owns the returned logger and must Close it.
func CreateComponentLogger(ctx context.Context, component string, config *logger.Config) (*LoggerImpl, error) {
	impl, err := NewLoggerImpl(ctx, config)
	if err != nil {
		return nil, err
	}

	impl.logger = impl.logger.With().Str("component", component).Logger()

	return impl, nil
}
