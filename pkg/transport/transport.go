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

// Package transport delivers samples to the display over a serial link.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"go.bug.st/serial"

	"github.com/carverauto/sysmon-serial/pkg/logger"
	"github.com/carverauto/sysmon-serial/pkg/models"
)

//go:generate mockgen -destination=mock_transport.go -package=transport github.com/carverauto/sysmon-serial/pkg/transport Port,Opener

var (
	ErrDeviceNotFound = errors.New("serial device not found")
	ErrTransientIO    = errors.New("transient serial i/o failure")

	errShortWrite   = errors.New("short write")
	errWriteTimeout = errors.New("write timed out")
)

const (
	DefaultBaudRate     = 115200
	DefaultWriteTimeout = time.Second
	DefaultSettleDelay  = 100 * time.Millisecond
)

// Port is an open serial device.
type Port interface {
	Write(p []byte) (int, error)
	Close() error
}

// Opener opens serial devices.
type Opener interface {
	Open(path string, baudRate int) (Port, error)
}

// drainer is implemented by ports that can block until the output buffer is sent.
type drainer interface {
	Drain() error
}

// IsRetryable reports whether err is a link fault the driver should count and retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrDeviceNotFound) || errors.Is(err, ErrTransientIO)
}

// Config holds the serial link settings. Zero values select the defaults,
// except SettleDelay where zero disables the pause.
type Config struct {
	BaudRate     int
	WriteTimeout time.Duration
	SettleDelay  time.Duration
	KeepOpen     bool
}

// Transport writes encoded samples to a serial device. By default the port is
// opened and closed around every send; with KeepOpen it is held until a
// failure, a device change or Close.
type Transport struct {
	log          logger.Logger
	opener       Opener
	baudRate     int
	writeTimeout time.Duration
	settleDelay  time.Duration
	keepOpen     bool

	port     Port
	portPath string
}

// New returns a Transport that opens devices through the system serial driver.
func New(log logger.Logger, cfg Config) *Transport {
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = DefaultBaudRate
	}

	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}

	return &Transport{
		log:          log,
		opener:       serialOpener{},
		baudRate:     cfg.BaudRate,
		writeTimeout: cfg.WriteTimeout,
		settleDelay:  cfg.SettleDelay,
		keepOpen:     cfg.KeepOpen,
	}
}

// Send encodes sample and writes it to devicePath. Link faults are returned
// wrapping ErrDeviceNotFound or ErrTransientIO; encoding faults wrap ErrEncode.
func (t *Transport) Send(ctx context.Context, sample *models.Sample, devicePath string) error {
	payload, err := Encode(sample)
	if err != nil {
		return err
	}

	port, err := t.acquire(devicePath)
	if err != nil {
		return err
	}

	if err := t.write(ctx, port, payload); err != nil {
		t.release(port)
		return err
	}

	if err := sleepCtx(ctx, t.settleDelay); err != nil {
		t.release(port)
		return err
	}

	if !t.keepOpen {
		t.release(port)
	}

	t.log.Debug().
		Str("device", devicePath).
		Int("bytes", len(payload)).
		Bytes("payload", bytes.TrimSpace(payload)).
		Msg("Sample written")

	return nil
}

// Probe opens and closes devicePath once.
func (t *Transport) Probe(devicePath string) error {
	port, err := t.opener.Open(devicePath, t.baudRate)
	if err != nil {
		return err
	}

	if err := port.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrTransientIO, devicePath, err)
	}

	return nil
}

// Close releases a port held open between sends.
func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}

	err := t.port.Close()
	t.port = nil
	t.portPath = ""

	return err
}

func (t *Transport) acquire(devicePath string) (Port, error) {
	if t.port != nil {
		if t.portPath == devicePath {
			return t.port, nil
		}

		if err := t.Close(); err != nil {
			t.log.Debug().Err(err).Msg("Closing previous device failed")
		}
	}

	port, err := t.opener.Open(devicePath, t.baudRate)
	if err != nil {
		return nil, err
	}

	if t.keepOpen {
		t.port = port
		t.portPath = devicePath
	}

	return port, nil
}

// release closes port and forgets it if it was held.
func (t *Transport) release(port Port) {
	if err := port.Close(); err != nil {
		t.log.Debug().Err(err).Msg("Closing serial device failed")
	}

	if t.port == port {
		t.port = nil
		t.portPath = ""
	}
}

type writeResult struct {
	n   int
	err error
}

// write is bounded by writeTimeout. On timeout the writer goroutine is left to
// return once the caller closes the port.
func (t *Transport) write(ctx context.Context, port Port, payload []byte) error {
	done := make(chan writeResult, 1)

	go func() {
		n, err := port.Write(payload)
		if err == nil {
			if d, ok := port.(drainer); ok {
				err = d.Drain()
			}
		}

		done <- writeResult{n: n, err: err}
	}()

	timer := time.NewTimer(t.writeTimeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			return fmt.Errorf("%w: %w", ErrTransientIO, res.err)
		}

		if res.n != len(payload) {
			return fmt.Errorf("%w: %w: %d of %d bytes", ErrTransientIO, errShortWrite, res.n, len(payload))
		}

		return nil
	case <-timer.C:
		return fmt.Errorf("%w: %w after %s", ErrTransientIO, errWriteTimeout, t.writeTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// serialOpener opens real devices at 8N1.
type serialOpener struct{}

func (serialOpener) Open(path string, baudRate int) (Port, error) {
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, classifyOpenError(path, err)
	}

	return port, nil
}

func classifyOpenError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %w", ErrDeviceNotFound, path, err)
	}

	var portErr *serial.PortError
	if errors.As(err, &portErr) && portErr.Code() == serial.PortNotFound {
		return fmt.Errorf("%w: %s: %w", ErrDeviceNotFound, path, err)
	}

	return fmt.Errorf("%w: open %s: %w", ErrTransientIO, path, err)
}
