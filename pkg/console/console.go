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

// Package console prints the interactive status lines shown when the monitor
// runs in the foreground.
package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/carverauto/sysmon-serial/pkg/driver"
	"github.com/carverauto/sysmon-serial/pkg/models"
)

// Dracula theme colors.
const (
	draculaCyan    = "#8BE9FD"
	draculaGreen   = "#50FA7B"
	draculaOrange  = "#FFB86C"
	draculaPurple  = "#BD93F9"
	draculaRed     = "#FF5555"
	draculaComment = "#6272A4"

	title     = "System Monitor for ESP32 TFT Display"
	ruleWidth = 40
)

type styles struct {
	title, rule, label, success, failure, warn, hint lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(draculaPurple)),
		rule:    lipgloss.NewStyle().Foreground(lipgloss.Color(draculaComment)),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color(draculaCyan)),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color(draculaGreen)),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color(draculaRed)),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color(draculaOrange)),
		hint:    lipgloss.NewStyle().Foreground(lipgloss.Color(draculaComment)),
	}
}

// Console writes styled status lines to out.
type Console struct {
	out    io.Writer
	styles styles
	now    func() time.Time
}

func New(out io.Writer) *Console {
	return &Console{out: out, styles: newStyles(), now: time.Now}
}

// Banner prints the startup header.
func (c *Console) Banner(device string, mode driver.Mode) {
	c.println(c.styles.title.Render(title))
	c.println(c.styles.rule.Render(strings.Repeat("=", ruleWidth)))
	c.println(c.styles.label.Render("Using serial port: ") + device)
	c.println(c.styles.label.Render("Mode: ") + mode.String())
	c.println(c.styles.hint.Render("Starting system monitoring. Press Ctrl+C to stop."))
	c.println("")
}

// Report prints the outcome of one cycle. It is meant to be installed as
// driver.Driver.OnCycle.
func (c *Console) Report(r driver.CycleResult) {
	at := c.timestamp(r.Sample)

	switch {
	case r.Sample == nil:
		c.println(c.styles.failure.Render(fmt.Sprintf("✗ Failed to read system metrics at %s: %v", at, r.Err)))
	case r.Err != nil:
		c.println(c.styles.failure.Render(fmt.Sprintf("✗ Failed to send data at %s", at)) +
			c.styles.hint.Render(fmt.Sprintf(" (%s, %d consecutive)", r.State, r.Failures)))
	default:
		c.println(c.styles.success.Render(fmt.Sprintf("✓ Data sent at %s", at)))
	}

	if r.Reconnected {
		c.println(c.styles.warn.Render("↻ Reconnecting, now using " + r.Device))
	}
}

// Stopped prints the shutdown line.
func (c *Console) Stopped() {
	c.println("")
	c.println(c.styles.hint.Render("Monitoring stopped by user."))
}

func (c *Console) timestamp(s *models.Sample) string {
	if s != nil && s.Timestamp != "" {
		return s.Timestamp
	}

	return c.now().Format(models.TimestampLayout)
}

func (c *Console) println(line string) {
	_, _ = fmt.Fprintln(c.out, line)
}
