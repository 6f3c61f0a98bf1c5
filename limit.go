// Copyright 2025 The Bodyparser Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bodyparser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MaxLimit is the hard ceiling for any configured body size limit (1 GiB).
// Every parsed limit is clamped to it regardless of configuration, so a
// misconfigured deployment can never expose unbounded memory to a request.
const MaxLimit = 1 << 30

// maxLimitStringLength bounds the accepted size-spec string. Together with
// the anchored fixed-shape pattern below it keeps limit parsing O(1) on
// attacker-supplied input.
const maxLimitStringLength = 20

// limitPattern matches <digits>[.<up to 3 digits>]<unit> with an optional
// space before the unit. Units are case-insensitive.
var limitPattern = regexp.MustCompile(`^(\d+)(?:\.(\d{1,3}))? ?(?i:(b|kb|mb|gb))$`)

// unitMultipliers maps a lowercase unit suffix to its byte multiplier.
var unitMultipliers = map[string]int64{
	"b":  1,
	"kb": 1 << 10,
	"mb": 1 << 20,
	"gb": 1 << 30,
}

// ParseLimit converts a human-readable size specification into a validated
// byte count. It accepts a numeric byte count (int, int64, or float64) or a
// string such as "512kb", "1.5 mb", or "1gb". The result is always clamped
// to [MaxLimit].
//
// Example:
//
//	limit, err := bodyparser.ParseLimit("10mb") // 10 * 1024 * 1024
//
// Errors:
//   - [ErrInvalidLimitFormat]: malformed string, or a negative or
//     non-finite numeric value
//   - [ErrInvalidLimitType]: any other dynamic type
func ParseLimit(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return clampNumericLimit(float64(v))
	case int64:
		return clampNumericLimit(float64(v))
	case float64:
		return clampNumericLimit(v)
	case string:
		return parseLimitString(v)
	default:
		return 0, fmt.Errorf("%w: %T", ErrInvalidLimitType, value)
	}
}

// clampNumericLimit validates a bare numeric limit and clamps it to MaxLimit.
func clampNumericLimit(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w: value must be a non-negative finite number", ErrInvalidLimitFormat)
	}
	if v > MaxLimit {
		return MaxLimit, nil
	}

	return int64(v), nil
}

// parseLimitString converts a size string to bytes. The length bound is
// checked before the pattern so oversized inputs are rejected without any
// pattern work.
func parseLimitString(s string) (int64, error) {
	if len(s) > maxLimitStringLength {
		return 0, fmt.Errorf("%w: string exceeds %d characters", ErrInvalidLimitFormat, maxLimitStringLength)
	}

	match := limitPattern.FindStringSubmatch(s)
	if match == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLimitFormat, s)
	}

	whole, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		// Digits within the length bound cannot overflow int64 except for
		// pathological all-digit strings; treat overflow as a format error.
		return 0, fmt.Errorf("%w: %q", ErrInvalidLimitFormat, s)
	}

	value := float64(whole)
	if match[2] != "" {
		frac, _ := strconv.ParseInt(match[2], 10, 64)
		value += float64(frac) / math.Pow10(len(match[2]))
	}

	multiplier := unitMultipliers[strings.ToLower(match[3])]
	bytes := value * float64(multiplier)
	if bytes > MaxLimit {
		return MaxLimit, nil
	}

	return int64(bytes), nil
}
