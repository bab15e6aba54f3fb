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

// Package models holds the value types shared by the sampler, transport and driver.
package models

// Sample is one timestamped snapshot of host resource metrics. It is built in full by the
// sampler and handed to the transport; nothing retains it after the send.
type Sample struct {
	CPUPercent    float64  `json:"cpu"`
	MemoryPercent float64  `json:"memory_percent"`
	MemoryUsedGB  float64  `json:"memory_used"`
	MemoryTotalGB float64  `json:"memory_total"`
	DiskPercent   float64  `json:"disk_percent"`
	DiskUsedGB    float64  `json:"disk_used"`
	DiskTotalGB   float64  `json:"disk_total"`
	Load1         float64  `json:"load_1min"`
	Load5         float64  `json:"load_5min"`
	Load15        float64  `json:"load_15min"`
	CPUTemp       *float64 `json:"cpu_temp"`
	Timestamp     string   `json:"timestamp"`
}

// TimestampLayout formats Sample.Timestamp as wall-clock HH:MM:SS.
const TimestampLayout = "15:04:05"

