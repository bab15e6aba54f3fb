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

package console

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/carverauto/sysmon-serial/pkg/driver"
	"github.com/carverauto/sysmon-serial/pkg/models"
)

var errLink = errors.New("link down")

func newTestConsole() (*Console, *bytes.Buffer) {
	var buf bytes.Buffer

	c := New(&buf)
	c.now = func() time.Time { return time.Date(2025, 1, 1, 9, 8, 7, 0, time.Local) }

	return c, &buf
}

func TestReportSuccess(t *testing.T) {
	c, buf := newTestConsole()

	c.Report(driver.CycleResult{Sample: &models.Sample{Timestamp: "14:03:07"}})

	assert.Contains(t, buf.String(), "✓ Data sent at 14:03:07")
}

func TestReportSendFailure(t *testing.T) {
	c, buf := newTestConsole()

	c.Report(driver.CycleResult{
		Sample:   &models.Sample{Timestamp: "14:03:09"},
		Err:      errLink,
		State:    driver.StateDegraded,
		Failures: 3,
	})

	out := buf.String()
	assert.Contains(t, out, "✗ Failed to send data at 14:03:09")
	assert.Contains(t, out, "degraded, 3 consecutive")
	assert.NotContains(t, out, "Reconnecting")
}

func TestReportReconnect(t *testing.T) {
	c, buf := newTestConsole()

	c.Report(driver.CycleResult{
		Sample:      &models.Sample{Timestamp: "14:03:11"},
		Err:         errLink,
		Device:      "/dev/ttyACM0",
		Reconnected: true,
	})

	assert.Contains(t, buf.String(), "Reconnecting, now using /dev/ttyACM0")
}

func TestReportSampleFailureUsesClock(t *testing.T) {
	c, buf := newTestConsole()

	c.Report(driver.CycleResult{Err: errLink})

	assert.Contains(t, buf.String(), "Failed to read system metrics at 09:08:07: link down")
}

func TestBannerAndStopped(t *testing.T) {
	c, buf := newTestConsole()

	c.Banner("/dev/ttyUSB0", driver.ModeInteractive)
	c.Stopped()

	out := buf.String()
	assert.Contains(t, out, "Using serial port:")
	assert.Contains(t, out, "/dev/ttyUSB0")
	assert.Contains(t, out, "interactive")
	assert.Contains(t, out, "Monitoring stopped by user.")
}
