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

// State is the link health seen by the driver loop.
type State int

const (
	// StateRunning - the last send succeeded
	StateRunning State = iota
	// StateDegraded - counting consecutive send failures
	StateDegraded
	// StateReconnecting - the threshold was reached and the device is being rediscovered
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDegraded:
		return "degraded"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Mode selects between interactive and background operation.
type Mode int

const (
	ModeInteractive Mode = iota
	ModeBackground
)

func (m Mode) String() string {
	if m == ModeBackground {
		return "background"
	}

	return "interactive"
}

// failureTracker counts consecutive send failures against a reconnect threshold.
type failureTracker struct {
	threshold int
	failures  int
	state     State
}

func newFailureTracker(threshold int) *failureTracker {
	if threshold < 1 {
		threshold = 1
	}

	return &failureTracker{threshold: threshold, state: StateRunning}
}

func (f *failureTracker) recordSuccess() {
	f.failures = 0
	f.state = StateRunning
}

// recordFailure reports whether the threshold has been reached.
func (f *failureTracker) recordFailure() bool {
	f.failures++

	if f.failures >= f.threshold {
		f.state = StateReconnecting
		return true
	}

	f.state = StateDegraded

	return false
}

func (f *failureTracker) reconnected() {
	f.failures = 0
	f.state = StateRunning
}
