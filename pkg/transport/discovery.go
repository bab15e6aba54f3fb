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

package transport

import (
	"path/filepath"
	"sort"
)

// FindDevice returns the first path matching patterns, scanned in order, or
// fallback when nothing matches. Matches within a pattern are taken in lexical
// order and malformed patterns are skipped.
func FindDevice(patterns []string, fallback string) string {
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil || len(matches) == 0 {
			continue
		}

		sort.Strings(matches)

		return matches[0]
	}

	return fallback
}

// Discover scans the platform's default patterns.
func Discover() string {
	return FindDevice(DefaultPatterns(), DefaultDevice())
}
