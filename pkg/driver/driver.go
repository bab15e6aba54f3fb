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

// Package driver runs the sample-and-send loop and its retry/reconnect state machine.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/sysmon-serial/pkg/logger"
	"github.com/carverauto/sysmon-serial/pkg/models"
	"github.com/carverauto/sysmon-serial/pkg/transport"
)

// ErrSampleFailed wraps a sampler error that aborted a cycle.
var ErrSampleFailed = errors.New("cycle aborted: sample collection failed")

// CycleResult describes one completed or aborted cycle.
type CycleResult struct {
	Sample   *models.Sample
	Device   string
	Err      error
	State    State
	Failures int
	// Reconnected is set when this cycle's failure triggered rediscovery.
	Reconnected bool
}

// Driver owns the device path and failure state. It is not safe for concurrent use.
type Driver struct {
	log           logger.Logger
	mode          Mode
	sampler       Sampler
	sender        Sender
	clock         Clock
	explicit      string
	interval      time.Duration
	recoveryPause time.Duration
	discover      func() string
	session       string

	device   string
	failures *failureTracker

	// OnCycle, when set, is called after every cycle.
	OnCycle func(CycleResult)
}

// New builds a Driver for mode. An empty cfg.Device means the port is discovered.
func New(log logger.Logger, cfg *Config, mode Mode, s Sampler, sender Sender) *Driver {
	return &Driver{
		log:           log,
		mode:          mode,
		sampler:       s,
		sender:        sender,
		clock:         realClock{},
		explicit:      cfg.Device,
		interval:      cfg.Interval.Std(),
		recoveryPause: cfg.RecoveryPause.Std(),
		discover:      transport.Discover,
		session:       uuid.NewString(),
		failures:      newFailureTracker(cfg.Threshold(mode)),
	}
}

// State is the link state after the last cycle.
func (d *Driver) State() State {
	return d.failures.state
}

// Failures is the current count of consecutive send failures.
func (d *Driver) Failures() int {
	return d.failures.failures
}

// Device is the port in use, empty until it is first resolved.
func (d *Driver) Device() string {
	return d.device
}

// Run resolves and probes the device, then cycles every interval until ctx is
// cancelled. It returns nil on cancellation and a non-nil error only for
// faults that retrying cannot fix.
func (d *Driver) Run(ctx context.Context) error {
	d.start()

	defer func() {
		if err := d.sender.Close(); err != nil {
			d.log.Debug().Err(err).Msg("Releasing serial device failed")
		}
	}()

	ticker := d.clock.Ticker(d.interval)
	defer ticker.Stop()

	for {
		err := d.Cycle(ctx)

		switch {
		case ctx.Err() != nil:
			return d.stopped()
		case errors.Is(err, ErrSampleFailed):
			d.log.Warn().
				Dur("pause", d.recoveryPause).
				Msg("Pausing before next cycle")

			select {
			case <-ctx.Done():
				return d.stopped()
			case <-d.clock.After(d.recoveryPause):
			}
		case err != nil:
			d.log.Error().Err(err).Str("session", d.session).Msg("Stopping on unrecoverable error")
			return err
		}

		select {
		case <-ctx.Done():
			return d.stopped()
		case <-ticker.Chan():
		}
	}
}

// Cycle samples once and sends the result. Retryable send failures are
// absorbed by the state machine and yield nil.
func (d *Driver) Cycle(ctx context.Context) error {
	if d.device == "" {
		d.device = d.resolveDevice()
	}

	sample, err := d.sampler.Collect(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		d.log.Critical().Err(err).Msg("Sample collection failed")
		d.notify(CycleResult{Device: d.device, Err: err})

		return fmt.Errorf("%w: %w", ErrSampleFailed, err)
	}

	device := d.device
	err = d.sender.Send(ctx, sample, device)
	reconnected := false

	switch {
	case err == nil:
		d.recordSuccess()
	case ctx.Err() != nil:
		return ctx.Err()
	case transport.IsRetryable(err):
		reconnected = d.recordFailure(err)
	default:
		return err
	}

	d.notify(CycleResult{Sample: sample, Device: device, Err: err, Reconnected: reconnected})

	return nil
}

// ResolveDevice picks the device path for the next cycle: the configured one
// when set, otherwise the result of discovery.
func (d *Driver) ResolveDevice() string {
	d.device = d.resolveDevice()

	return d.device
}

func (d *Driver) start() {
	if d.device == "" {
		d.device = d.resolveDevice()
	}

	d.log.Info().
		Str("session", d.session).
		Str("mode", d.mode.String()).
		Str("device", d.device).
		Bool("explicit", d.explicit != "").
		Dur("interval", d.interval).
		Int("threshold", d.failures.threshold).
		Msg("Starting system monitor")

	if err := d.sender.Probe(d.device); err != nil {
		d.log.Warn().Err(err).Str("device", d.device).Msg("Connection test failed, continuing anyway")
		return
	}

	d.log.Info().Str("device", d.device).Msg("Connection test passed")
}

func (d *Driver) resolveDevice() string {
	if d.explicit != "" {
		return d.explicit
	}

	return d.discover()
}

func (d *Driver) recordSuccess() {
	if d.failures.failures > 0 {
		d.log.Info().
			Int("after_failures", d.failures.failures).
			Str("device", d.device).
			Msg("Link recovered")
	}

	d.failures.recordSuccess()

	d.log.Debug().Str("device", d.device).Msg("Sample sent")
}

func (d *Driver) recordFailure(err error) bool {
	reconnect := d.failures.recordFailure()

	d.log.Error().
		Err(err).
		Str("device", d.device).
		Int("failures", d.failures.failures).
		Int("threshold", d.failures.threshold).
		Msg("Failed to send sample")

	if reconnect {
		d.reconnect()
	}

	return reconnect
}

// reconnect releases any held port and rediscovers the device path.
func (d *Driver) reconnect() {
	previous := d.device

	if err := d.sender.Close(); err != nil {
		d.log.Debug().Err(err).Msg("Releasing serial device failed")
	}

	d.device = d.resolveDevice()
	d.failures.reconnected()

	d.log.Warn().
		Str("session", d.session).
		Str("previous", previous).
		Str("device", d.device).
		Msg("Reconnected after repeated failures")
}

func (d *Driver) notify(result CycleResult) {
	if d.OnCycle == nil {
		return
	}

	result.State = d.failures.state
	result.Failures = d.failures.failures

	d.OnCycle(result)
}

func (d *Driver) stopped() error {
	d.log.Info().Str("session", d.session).Msg("System monitor stopped")

	return nil
}
